package repository

import (
	"context"

	"github.com/jackc/pgx/v5/pgxpool"
	"github.com/nnptud/lms-backend/internal/model"
)

// GradeRepository handles grade data access.
type GradeRepository struct {
	pool *pgxpool.Pool
}

// NewGradeRepository creates a new GradeRepository.
func NewGradeRepository(pool *pgxpool.Pool) *GradeRepository {
	return &GradeRepository{pool: pool}
}

// GetBySubmission retrieves the grade attached to a submission.
func (r *GradeRepository) GetBySubmission(ctx context.Context, submissionID int) (*model.Grade, error) {
	g := &model.Grade{}
	err := r.pool.QueryRow(ctx,
		`SELECT id, submission_id, score, graded_by, graded_at FROM grades WHERE submission_id = $1`,
		submissionID,
	).Scan(&g.ID, &g.SubmissionID, &g.Score, &g.GradedBy, &g.GradedAt)
	if err != nil {
		return nil, translate(err)
	}
	return g, nil
}

// HighestForAssignment returns the top score posted on any submission of an assignment.
func (r *GradeRepository) HighestForAssignment(ctx context.Context, assignmentID int) (float64, bool, error) {
	var top *float64
	err := r.pool.QueryRow(ctx,
		`SELECT MAX(g.score)
		 FROM grades g
		 JOIN submissions s ON s.id = g.submission_id
		 WHERE s.assignment_id = $1`,
		assignmentID,
	).Scan(&top)
	if err != nil {
		return 0, false, translate(err)
	}
	if top == nil {
		return 0, false, nil
	}
	return *top, true, nil
}

// Upsert creates or replaces the single grade of a submission.
func (r *GradeRepository) Upsert(ctx context.Context, g *model.Grade) error {
	err := r.pool.QueryRow(ctx,
		`INSERT INTO grades (submission_id, score, graded_by, graded_at)
		 VALUES ($1, $2, $3, $4)
		 ON CONFLICT (submission_id) DO UPDATE SET
		     score     = EXCLUDED.score,
		     graded_by = EXCLUDED.graded_by,
		     graded_at = EXCLUDED.graded_at
		 RETURNING id, graded_at`,
		g.SubmissionID, g.Score, g.GradedBy, g.GradedAt,
	).Scan(&g.ID, &g.GradedAt)
	return translate(err)
}
