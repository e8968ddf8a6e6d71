package repository

import (
	"context"

	"github.com/jackc/pgx/v5/pgxpool"
	"github.com/nnptud/lms-backend/internal/model"
)

const commentColumns = `c.id, c.content, c.user_id, c.assignment_id, c.submission_id, c.created_at, c.updated_at,
	u.id, u.name, u.role`

// CommentRepository handles comment data access.
type CommentRepository struct {
	pool *pgxpool.Pool
}

// NewCommentRepository creates a new CommentRepository.
func NewCommentRepository(pool *pgxpool.Pool) *CommentRepository {
	return &CommentRepository{pool: pool}
}

func scanComment(row rowScanner) (*model.Comment, error) {
	c := &model.Comment{}
	err := row.Scan(
		&c.ID, &c.Content, &c.UserID, &c.AssignmentID, &c.SubmissionID, &c.CreatedAt, &c.UpdatedAt,
		&c.Author.ID, &c.Author.Name, &c.Author.Role,
	)
	if err != nil {
		return nil, translate(err)
	}
	return c, nil
}

// GetByID retrieves a comment with its author.
func (r *CommentRepository) GetByID(ctx context.Context, id int) (*model.Comment, error) {
	return scanComment(r.pool.QueryRow(ctx,
		`SELECT `+commentColumns+` FROM comments c JOIN users u ON u.id = c.user_id WHERE c.id = $1`, id))
}

// Create inserts a new comment.
func (r *CommentRepository) Create(ctx context.Context, c *model.Comment) error {
	err := r.pool.QueryRow(ctx,
		`INSERT INTO comments (content, user_id, assignment_id, submission_id)
		 VALUES ($1, $2, $3, $4)
		 RETURNING id, created_at, updated_at`,
		c.Content, c.UserID, c.AssignmentID, c.SubmissionID,
	).Scan(&c.ID, &c.CreatedAt, &c.UpdatedAt)
	return translate(err)
}

// Update replaces the content of a comment.
func (r *CommentRepository) Update(ctx context.Context, c *model.Comment) error {
	err := r.pool.QueryRow(ctx,
		`UPDATE comments SET content = $1, updated_at = CURRENT_TIMESTAMP
		 WHERE id = $2
		 RETURNING updated_at`,
		c.Content, c.ID,
	).Scan(&c.UpdatedAt)
	return translate(err)
}

// Delete removes a comment by ID.
func (r *CommentRepository) Delete(ctx context.Context, id int) error {
	tag, err := r.pool.Exec(ctx, `DELETE FROM comments WHERE id = $1`, id)
	if err != nil {
		return err
	}
	if tag.RowsAffected() == 0 {
		return ErrNotFound
	}
	return nil
}

// List retrieves the thread of one target in posting order.
func (r *CommentRepository) List(ctx context.Context, f model.CommentFilter) ([]model.Comment, error) {
	query := `SELECT ` + commentColumns + ` FROM comments c JOIN users u ON u.id = c.user_id`
	var arg int
	switch {
	case f.AssignmentID != nil:
		query += ` WHERE c.assignment_id = $1`
		arg = *f.AssignmentID
	case f.SubmissionID != nil:
		query += ` WHERE c.submission_id = $1`
		arg = *f.SubmissionID
	default:
		return []model.Comment{}, nil
	}
	query += ` ORDER BY c.created_at ASC, c.id ASC`

	rows, err := r.pool.Query(ctx, query, arg)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	comments := []model.Comment{}
	for rows.Next() {
		c, err := scanComment(rows)
		if err != nil {
			return nil, err
		}
		comments = append(comments, *c)
	}
	return comments, rows.Err()
}
