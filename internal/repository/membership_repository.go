package repository

import (
	"context"

	"github.com/jackc/pgx/v5/pgxpool"
	"github.com/nnptud/lms-backend/internal/model"
)

// MembershipRepository handles class membership data access.
type MembershipRepository struct {
	pool *pgxpool.Pool
}

// NewMembershipRepository creates a new MembershipRepository.
func NewMembershipRepository(pool *pgxpool.Pool) *MembershipRepository {
	return &MembershipRepository{pool: pool}
}

// Get retrieves the membership of userID in classID, whatever its status.
func (r *MembershipRepository) Get(ctx context.Context, classID, userID int) (*model.ClassMembership, error) {
	m := &model.ClassMembership{}
	err := r.pool.QueryRow(ctx,
		`SELECT id, class_id, user_id, status, joined_at, updated_at
		 FROM class_members WHERE class_id = $1 AND user_id = $2`, classID, userID,
	).Scan(&m.ID, &m.ClassID, &m.UserID, &m.Status, &m.JoinedAt, &m.UpdatedAt)
	if err != nil {
		return nil, translate(err)
	}
	return m, nil
}

// Upsert creates the membership or moves an existing one to status.
// The (class_id, user_id) unique constraint serializes concurrent joins.
func (r *MembershipRepository) Upsert(ctx context.Context, classID, userID int, status model.MembershipStatus) (*model.ClassMembership, error) {
	m := &model.ClassMembership{}
	err := r.pool.QueryRow(ctx,
		`INSERT INTO class_members (class_id, user_id, status)
		 VALUES ($1, $2, $3)
		 ON CONFLICT (class_id, user_id)
		 DO UPDATE SET status = EXCLUDED.status, updated_at = CURRENT_TIMESTAMP
		 RETURNING id, class_id, user_id, status, joined_at, updated_at`,
		classID, userID, status,
	).Scan(&m.ID, &m.ClassID, &m.UserID, &m.Status, &m.JoinedAt, &m.UpdatedAt)
	if err != nil {
		return nil, translate(err)
	}
	return m, nil
}

// ListActiveMembers retrieves the ACTIVE members of a class ordered by name.
func (r *MembershipRepository) ListActiveMembers(ctx context.Context, classID int) ([]model.Member, error) {
	rows, err := r.pool.Query(ctx,
		`SELECT u.id, u.name, u.email, m.joined_at
		 FROM class_members m JOIN users u ON u.id = m.user_id
		 WHERE m.class_id = $1 AND m.status = 'ACTIVE'
		 ORDER BY u.name, u.id`, classID)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	members := []model.Member{}
	for rows.Next() {
		var m model.Member
		if err := rows.Scan(&m.UserID, &m.Name, &m.Email, &m.JoinedAt); err != nil {
			return nil, err
		}
		members = append(members, m)
	}
	return members, rows.Err()
}
