package repository

import (
	"context"
	"time"

	"github.com/jackc/pgx/v5/pgxpool"
	"github.com/nnptud/lms-backend/internal/model"
)

const assignmentColumns = `a.id, a.class_id, a.title, a.description, a.file_url, a.start_time, a.due_date,
	a.allow_late, a.max_score, a.created_by, a.created_at, a.updated_at,
	(SELECT COUNT(*) FROM submissions s WHERE s.assignment_id = a.id)`

// AssignmentRepository handles assignment data access.
type AssignmentRepository struct {
	pool *pgxpool.Pool
}

// NewAssignmentRepository creates a new AssignmentRepository.
func NewAssignmentRepository(pool *pgxpool.Pool) *AssignmentRepository {
	return &AssignmentRepository{pool: pool}
}

func assignmentDest(a *model.Assignment) []any {
	return []any{
		&a.ID, &a.ClassID, &a.Title, &a.Description, &a.FileURL, &a.StartTime, &a.DueDate,
		&a.AllowLate, &a.MaxScore, &a.CreatedBy, &a.CreatedAt, &a.UpdatedAt,
		&a.SubmissionCount,
	}
}

// GetByID retrieves an assignment by ID.
func (r *AssignmentRepository) GetByID(ctx context.Context, id int) (*model.Assignment, error) {
	a := &model.Assignment{}
	err := r.pool.QueryRow(ctx,
		`SELECT `+assignmentColumns+` FROM assignments a WHERE a.id = $1`, id,
	).Scan(assignmentDest(a)...)
	if err != nil {
		return nil, translate(err)
	}
	return a, nil
}

// Create inserts a new assignment.
func (r *AssignmentRepository) Create(ctx context.Context, a *model.Assignment) error {
	err := r.pool.QueryRow(ctx,
		`INSERT INTO assignments (class_id, title, description, file_url, start_time, due_date, allow_late, max_score, created_by)
		 VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9)
		 RETURNING id, created_at, updated_at`,
		a.ClassID, a.Title, a.Description, a.FileURL, a.StartTime, a.DueDate, a.AllowLate, a.MaxScore, a.CreatedBy,
	).Scan(&a.ID, &a.CreatedAt, &a.UpdatedAt)
	return translate(err)
}

// Update overwrites the editable fields of an assignment.
func (r *AssignmentRepository) Update(ctx context.Context, a *model.Assignment) error {
	err := r.pool.QueryRow(ctx,
		`UPDATE assignments
		 SET title = $1, description = $2, file_url = $3, start_time = $4, due_date = $5,
		     allow_late = $6, max_score = $7, updated_at = CURRENT_TIMESTAMP
		 WHERE id = $8
		 RETURNING updated_at`,
		a.Title, a.Description, a.FileURL, a.StartTime, a.DueDate, a.AllowLate, a.MaxScore, a.ID,
	).Scan(&a.UpdatedAt)
	return translate(err)
}

// Delete removes an assignment with its submissions, grades and comments.
func (r *AssignmentRepository) Delete(ctx context.Context, id int) error {
	tag, err := r.pool.Exec(ctx, `DELETE FROM assignments WHERE id = $1`, id)
	if err != nil {
		return err
	}
	if tag.RowsAffected() == 0 {
		return ErrNotFound
	}
	return nil
}

// ListByClass retrieves the assignments of a class, earliest due first, undated last.
func (r *AssignmentRepository) ListByClass(ctx context.Context, classID int) ([]model.Assignment, error) {
	rows, err := r.pool.Query(ctx,
		`SELECT `+assignmentColumns+` FROM assignments a
		 WHERE a.class_id = $1
		 ORDER BY a.due_date ASC NULLS LAST, a.id`, classID)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	assignments := []model.Assignment{}
	for rows.Next() {
		var a model.Assignment
		if err := rows.Scan(assignmentDest(&a)...); err != nil {
			return nil, err
		}
		assignments = append(assignments, a)
	}
	return assignments, rows.Err()
}

// ListForStudent retrieves assignments of every ACTIVE class the student is an
// ACTIVE member of, each with the student's own submission and grade if any.
func (r *AssignmentRepository) ListForStudent(ctx context.Context, studentID int) ([]model.StudentAssignment, error) {
	rows, err := r.pool.Query(ctx,
		`SELECT `+assignmentColumns+`, c.id, c.name,
		        s.id, s.content, s.file_url, s.status, s.submitted_at, s.last_updated_at,
		        g.id, g.score, g.graded_by, g.graded_at
		 FROM assignments a
		 JOIN classes c ON c.id = a.class_id AND c.status = 'ACTIVE'
		 JOIN class_members m ON m.class_id = c.id AND m.user_id = $1 AND m.status = 'ACTIVE'
		 LEFT JOIN submissions s ON s.assignment_id = a.id AND s.student_id = $1
		 LEFT JOIN grades g ON g.submission_id = s.id
		 ORDER BY a.due_date ASC NULLS LAST, a.id`, studentID)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	out := []model.StudentAssignment{}
	for rows.Next() {
		var (
			row      model.StudentAssignment
			subID    *int
			content  *string
			fileURL  *string
			status   *model.SubmissionStatus
			subAt    *time.Time
			updAt    *time.Time
			gradeID  *int
			score    *float64
			gradedBy *int
			gradedAt *time.Time
		)
		dest := append(assignmentDest(&row.Assignment),
			&row.Class.ID, &row.Class.Name,
			&subID, &content, &fileURL, &status, &subAt, &updAt,
			&gradeID, &score, &gradedBy, &gradedAt,
		)
		if err := rows.Scan(dest...); err != nil {
			return nil, err
		}
		if subID != nil {
			sub := &model.Submission{
				ID:            *subID,
				AssignmentID:  row.Assignment.ID,
				StudentID:     studentID,
				Content:       content,
				FileURL:       fileURL,
				Status:        *status,
				SubmittedAt:   *subAt,
				LastUpdatedAt: *updAt,
			}
			if gradeID != nil {
				sub.Grade = &model.Grade{
					ID:           *gradeID,
					SubmissionID: *subID,
					Score:        *score,
					GradedBy:     *gradedBy,
					GradedAt:     *gradedAt,
				}
			}
			row.MySubmission = sub
		}
		out = append(out, row)
	}
	return out, rows.Err()
}
