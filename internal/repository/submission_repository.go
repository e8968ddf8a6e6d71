package repository

import (
	"context"
	"time"

	"github.com/jackc/pgx/v5/pgxpool"
	"github.com/nnptud/lms-backend/internal/model"
)

const submissionColumns = `s.id, s.assignment_id, s.student_id, s.content, s.file_url, s.status,
	s.submitted_at, s.last_updated_at,
	u.id, u.name, u.email,
	g.id, g.score, g.graded_by, g.graded_at`

const submissionFrom = ` FROM submissions s
	JOIN users u ON u.id = s.student_id
	LEFT JOIN grades g ON g.submission_id = s.id`

// SubmissionRepository handles submission data access.
type SubmissionRepository struct {
	pool *pgxpool.Pool
}

// NewSubmissionRepository creates a new SubmissionRepository.
func NewSubmissionRepository(pool *pgxpool.Pool) *SubmissionRepository {
	return &SubmissionRepository{pool: pool}
}

func scanSubmission(row rowScanner) (*model.Submission, error) {
	var (
		s        model.Submission
		student  model.UserSummary
		gradeID  *int
		score    *float64
		gradedBy *int
		gradedAt *time.Time
	)
	err := row.Scan(
		&s.ID, &s.AssignmentID, &s.StudentID, &s.Content, &s.FileURL, &s.Status,
		&s.SubmittedAt, &s.LastUpdatedAt,
		&student.ID, &student.Name, &student.Email,
		&gradeID, &score, &gradedBy, &gradedAt,
	)
	if err != nil {
		return nil, translate(err)
	}
	student.Role = model.RoleStudent
	s.Student = &student
	if gradeID != nil {
		s.Grade = &model.Grade{
			ID:           *gradeID,
			SubmissionID: s.ID,
			Score:        *score,
			GradedBy:     *gradedBy,
			GradedAt:     *gradedAt,
		}
	}
	return &s, nil
}

// GetByID retrieves a submission with its student and grade.
func (r *SubmissionRepository) GetByID(ctx context.Context, id int) (*model.Submission, error) {
	return scanSubmission(r.pool.QueryRow(ctx,
		`SELECT `+submissionColumns+submissionFrom+` WHERE s.id = $1`, id))
}

// GetByAssignmentAndStudent retrieves the single submission a student made to an assignment.
func (r *SubmissionRepository) GetByAssignmentAndStudent(ctx context.Context, assignmentID, studentID int) (*model.Submission, error) {
	return scanSubmission(r.pool.QueryRow(ctx,
		`SELECT `+submissionColumns+submissionFrom+` WHERE s.assignment_id = $1 AND s.student_id = $2`,
		assignmentID, studentID))
}

// Upsert writes the submission keyed on (assignment_id, student_id).
// Nil content or file_url keep the stored value; status and both timestamps
// always take the new values. The stored row is copied back into s.
func (r *SubmissionRepository) Upsert(ctx context.Context, s *model.Submission) error {
	err := r.pool.QueryRow(ctx,
		`INSERT INTO submissions (assignment_id, student_id, content, file_url, status, submitted_at, last_updated_at)
		 VALUES ($1, $2, $3, $4, $5, $6, $6)
		 ON CONFLICT (assignment_id, student_id) DO UPDATE SET
		     content         = COALESCE(EXCLUDED.content, submissions.content),
		     file_url        = COALESCE(EXCLUDED.file_url, submissions.file_url),
		     status          = EXCLUDED.status,
		     submitted_at    = EXCLUDED.submitted_at,
		     last_updated_at = EXCLUDED.last_updated_at
		 RETURNING id, content, file_url, status, submitted_at, last_updated_at`,
		s.AssignmentID, s.StudentID, s.Content, s.FileURL, s.Status, s.SubmittedAt,
	).Scan(&s.ID, &s.Content, &s.FileURL, &s.Status, &s.SubmittedAt, &s.LastUpdatedAt)
	return translate(err)
}

// ListByAssignment retrieves every submission to an assignment, latest first.
func (r *SubmissionRepository) ListByAssignment(ctx context.Context, assignmentID int) ([]model.Submission, error) {
	rows, err := r.pool.Query(ctx,
		`SELECT `+submissionColumns+submissionFrom+`
		 WHERE s.assignment_id = $1
		 ORDER BY s.submitted_at DESC, s.id DESC`, assignmentID)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	subs := []model.Submission{}
	for rows.Next() {
		s, err := scanSubmission(rows)
		if err != nil {
			return nil, err
		}
		subs = append(subs, *s)
	}
	return subs, rows.Err()
}
