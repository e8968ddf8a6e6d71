package repository

import (
	"context"
	"strconv"
	"strings"

	"github.com/jackc/pgx/v5/pgxpool"
	"github.com/nnptud/lms-backend/internal/model"
)

const classColumns = `c.id, c.name, c.description, c.code, c.teacher_id, c.status, c.created_at, c.updated_at`

// ClassRepository handles class data access.
type ClassRepository struct {
	pool *pgxpool.Pool
}

// NewClassRepository creates a new ClassRepository.
func NewClassRepository(pool *pgxpool.Pool) *ClassRepository {
	return &ClassRepository{pool: pool}
}

func scanClass(row rowScanner) (*model.Class, error) {
	c := &model.Class{}
	err := row.Scan(&c.ID, &c.Name, &c.Description, &c.Code, &c.TeacherID, &c.Status, &c.CreatedAt, &c.UpdatedAt)
	if err != nil {
		return nil, translate(err)
	}
	return c, nil
}

// GetByID retrieves a class by its ID.
func (r *ClassRepository) GetByID(ctx context.Context, id int) (*model.Class, error) {
	return scanClass(r.pool.QueryRow(ctx,
		`SELECT `+classColumns+` FROM classes c WHERE c.id = $1`, id))
}

// GetActiveByCode retrieves the ACTIVE class holding a join code.
func (r *ClassRepository) GetActiveByCode(ctx context.Context, code string) (*model.Class, error) {
	return scanClass(r.pool.QueryRow(ctx,
		`SELECT `+classColumns+` FROM classes c WHERE c.code = $1 AND c.status = 'ACTIVE'`, code))
}

// CodeExists reports whether any class, archived ones included, holds code.
func (r *ClassRepository) CodeExists(ctx context.Context, code string) (bool, error) {
	var exists bool
	err := r.pool.QueryRow(ctx,
		`SELECT EXISTS (SELECT 1 FROM classes WHERE code = $1)`, code,
	).Scan(&exists)
	return exists, err
}

// Create inserts a new class. A join code collision yields ErrDuplicateCode.
func (r *ClassRepository) Create(ctx context.Context, c *model.Class) error {
	err := r.pool.QueryRow(ctx,
		`INSERT INTO classes (name, description, code, teacher_id, status)
		 VALUES ($1, $2, $3, $4, $5)
		 RETURNING id, created_at, updated_at`,
		c.Name, c.Description, c.Code, c.TeacherID, c.Status,
	).Scan(&c.ID, &c.CreatedAt, &c.UpdatedAt)
	if err != nil {
		if uniqueViolation(err, "classes_code_key") {
			return ErrDuplicateCode
		}
		return translate(err)
	}
	return nil
}

// Update modifies name, description and status of a class.
func (r *ClassRepository) Update(ctx context.Context, c *model.Class) error {
	err := r.pool.QueryRow(ctx,
		`UPDATE classes SET name = $1, description = $2, status = $3, updated_at = CURRENT_TIMESTAMP
		 WHERE id = $4
		 RETURNING updated_at`,
		c.Name, c.Description, c.Status, c.ID,
	).Scan(&c.UpdatedAt)
	return translate(err)
}

// Delete removes a class. Memberships, assignments and everything below them cascade.
func (r *ClassRepository) Delete(ctx context.Context, id int) error {
	tag, err := r.pool.Exec(ctx, `DELETE FROM classes WHERE id = $1`, id)
	if err != nil {
		return err
	}
	if tag.RowsAffected() == 0 {
		return ErrNotFound
	}
	return nil
}

// List retrieves classes with their teacher and counters, newest first.
func (r *ClassRepository) List(ctx context.Context, f model.ClassFilter) ([]model.ClassSummary, error) {
	var (
		where []string
		args  []interface{}
	)
	if f.Status != nil {
		args = append(args, *f.Status)
		where = append(where, "c.status = $"+strconv.Itoa(len(args)))
	}
	if f.TeacherID != nil {
		args = append(args, *f.TeacherID)
		where = append(where, "c.teacher_id = $"+strconv.Itoa(len(args)))
	}
	if f.MemberID != nil {
		args = append(args, *f.MemberID)
		where = append(where, `EXISTS (SELECT 1 FROM class_members m
			WHERE m.class_id = c.id AND m.user_id = $`+strconv.Itoa(len(args))+` AND m.status = 'ACTIVE')`)
	}

	query := `SELECT ` + classColumns + `, t.id, t.name, t.email,
		(SELECT COUNT(*) FROM class_members m WHERE m.class_id = c.id AND m.status = 'ACTIVE'),
		(SELECT COUNT(*) FROM assignments a WHERE a.class_id = c.id)
		FROM classes c JOIN users t ON t.id = c.teacher_id`
	if len(where) > 0 {
		query += ` WHERE ` + strings.Join(where, " AND ")
	}
	query += ` ORDER BY c.created_at DESC, c.id DESC`

	rows, err := r.pool.Query(ctx, query, args...)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	classes := []model.ClassSummary{}
	for rows.Next() {
		var s model.ClassSummary
		if err := rows.Scan(
			&s.ID, &s.Name, &s.Description, &s.Code, &s.TeacherID, &s.Status, &s.CreatedAt, &s.UpdatedAt,
			&s.Teacher.ID, &s.Teacher.Name, &s.Teacher.Email,
			&s.StudentCount, &s.AssignmentCount,
		); err != nil {
			return nil, err
		}
		s.Teacher.Role = model.RoleTeacher
		classes = append(classes, s)
	}
	return classes, rows.Err()
}
