package service

import (
	"context"
	"fmt"

	"github.com/nnptud/lms-backend/internal/model"
	"github.com/nnptud/lms-backend/internal/response"
	"github.com/rs/zerolog"
)

// UserService handles admin account management.
type UserService struct {
	users UserStore
	auth  *AuthService
	log   zerolog.Logger
}

// NewUserService creates a new UserService.
func NewUserService(users UserStore, auth *AuthService, log zerolog.Logger) *UserService {
	return &UserService{
		users: users,
		auth:  auth,
		log:   log.With().Str("component", "user_service").Logger(),
	}
}

// Page size bounds for admin listings.
const (
	DefaultPerPage = 20
	MaxPerPage     = 100
)

// List returns one page of accounts matching the optional role and status filters.
func (s *UserService) List(ctx context.Context, f model.UserFilter, page, perPage int) ([]model.User, *response.Pagination, error) {
	if page < 1 {
		page = 1
	}
	if perPage < 1 {
		perPage = DefaultPerPage
	}
	if perPage > MaxPerPage {
		perPage = MaxPerPage
	}
	f.Limit = perPage
	f.Offset = (page - 1) * perPage

	users, total, err := s.users.List(ctx, f)
	if err != nil {
		return nil, nil, fmt.Errorf("list users: %w", err)
	}

	return users, response.NewPagination(page, perPage, total), nil
}

// Create adds a TEACHER or STUDENT account. Admins are bootstrapped out of band.
func (s *UserService) Create(ctx context.Context, req model.CreateUserRequest) (*model.User, error) {
	if req.Role != model.RoleTeacher && req.Role != model.RoleStudent {
		return nil, newValidationError("role", "role must be TEACHER or STUDENT")
	}
	return s.auth.createUser(ctx, req.Name, req.Email, req.Password, req.Role)
}

// CreateAdmin adds an ADMIN account. Used by the bootstrap commands only.
func (s *UserService) CreateAdmin(ctx context.Context, name, email, password string) (*model.User, error) {
	return s.auth.createUser(ctx, name, email, password, model.RoleAdmin)
}

// UpdateStatus activates or deactivates an account. An admin cannot disable themself.
func (s *UserService) UpdateStatus(ctx context.Context, actor *model.Actor, id int, status model.UserStatus) (*model.User, error) {
	if status != model.UserStatusActive && status != model.UserStatusInactive {
		return nil, newValidationError("status", "status must be ACTIVE or INACTIVE")
	}
	if actor.ID == id && status == model.UserStatusInactive {
		return nil, newValidationError("status", "you cannot disable your own account")
	}
	if err := s.users.UpdateStatus(ctx, id, status); err != nil {
		return nil, fmt.Errorf("update status: %w", err)
	}

	s.log.Info().Int("user_id", id).Str("status", string(status)).Int("by", actor.ID).Msg("User status changed")
	return s.users.GetByID(ctx, id)
}
