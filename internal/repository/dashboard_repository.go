package repository

import (
	"context"
	"time"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"
	"github.com/nnptud/lms-backend/internal/model"
)

// DashboardRepository handles admin dashboard data access.
type DashboardRepository struct {
	pool *pgxpool.Pool
}

// NewDashboardRepository creates a new DashboardRepository.
func NewDashboardRepository(pool *pgxpool.Pool) *DashboardRepository {
	return &DashboardRepository{pool: pool}
}

// GetSummary retrieves the headline counters in one round trip.
func (r *DashboardRepository) GetSummary(ctx context.Context) (*model.DashboardSummary, error) {
	s := &model.DashboardSummary{
		Users:       map[model.Role]int{},
		Classes:     map[model.ClassStatus]int{},
		Submissions: map[model.SubmissionStatus]int{},
	}

	batch := &pgx.Batch{}
	batch.Queue(`SELECT role, COUNT(*) FROM users GROUP BY role`)
	batch.Queue(`SELECT status, COUNT(*) FROM classes GROUP BY status`)
	batch.Queue(`SELECT status, COUNT(*) FROM submissions GROUP BY status`)
	batch.Queue(`SELECT
			(SELECT COUNT(*) FROM assignments),
			(SELECT COUNT(*) FROM submissions s LEFT JOIN grades g ON g.submission_id = s.id WHERE g.id IS NULL)`)

	results := r.pool.SendBatch(ctx, batch)
	defer results.Close()

	if err := scanCounts(results, s.Users); err != nil {
		return nil, err
	}
	if err := scanCounts(results, s.Classes); err != nil {
		return nil, err
	}
	if err := scanCounts(results, s.Submissions); err != nil {
		return nil, err
	}
	if err := results.QueryRow().Scan(&s.Assignments, &s.Ungraded); err != nil {
		return nil, err
	}
	return s, nil
}

func scanCounts[K ~string](results pgx.BatchResults, into map[K]int) error {
	rows, err := results.Query()
	if err != nil {
		return err
	}
	defer rows.Close()

	for rows.Next() {
		var key K
		var count int
		if err := rows.Scan(&key, &count); err != nil {
			return err
		}
		into[key] = count
	}
	return rows.Err()
}

// GetUpcomingDeadlines retrieves the next limit assignments due after now in ACTIVE classes.
func (r *DashboardRepository) GetUpcomingDeadlines(ctx context.Context, now time.Time, limit int) ([]model.UpcomingDeadline, error) {
	rows, err := r.pool.Query(ctx,
		`SELECT a.id, a.title, c.id, c.name, a.due_date,
			(SELECT COUNT(*) FROM submissions s WHERE s.assignment_id = a.id),
			(SELECT COUNT(*) FROM class_members m WHERE m.class_id = c.id AND m.status = 'ACTIVE')
		 FROM assignments a
		 JOIN classes c ON c.id = a.class_id
		 WHERE c.status = 'ACTIVE' AND a.due_date > $1
		 ORDER BY a.due_date ASC
		 LIMIT $2`,
		now, limit,
	)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	out := []model.UpcomingDeadline{}
	for rows.Next() {
		var d model.UpcomingDeadline
		if err := rows.Scan(&d.AssignmentID, &d.Title, &d.Class.ID, &d.Class.Name, &d.DueDate, &d.Submitted, &d.Enrolled); err != nil {
			return nil, err
		}
		out = append(out, d)
	}
	return out, rows.Err()
}

// GetRecentResults retrieves the last limit assignments whose due date has
// passed, with grading progress and the average score.
func (r *DashboardRepository) GetRecentResults(ctx context.Context, now time.Time, limit int) ([]model.AssignmentGradeStats, error) {
	rows, err := r.pool.Query(ctx,
		`SELECT a.id, a.title, c.id, c.name, a.due_date, a.max_score,
			COUNT(s.id),
			COUNT(g.id),
			AVG(g.score)
		 FROM assignments a
		 JOIN classes c ON c.id = a.class_id
		 LEFT JOIN submissions s ON s.assignment_id = a.id
		 LEFT JOIN grades g ON g.submission_id = s.id
		 WHERE a.due_date <= $1
		 GROUP BY a.id, c.id
		 ORDER BY a.due_date DESC
		 LIMIT $2`,
		now, limit,
	)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	out := []model.AssignmentGradeStats{}
	for rows.Next() {
		var st model.AssignmentGradeStats
		if err := rows.Scan(&st.AssignmentID, &st.Title, &st.Class.ID, &st.Class.Name, &st.DueDate, &st.MaxScore,
			&st.Submissions, &st.Graded, &st.AverageScore); err != nil {
			return nil, err
		}
		out = append(out, st)
	}
	return out, rows.Err()
}
