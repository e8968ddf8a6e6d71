package model

import "time"

// Role is the coarse authorization role of a user.
type Role string

const (
	RoleAdmin   Role = "ADMIN"
	RoleTeacher Role = "TEACHER"
	RoleStudent Role = "STUDENT"
)

// Valid reports whether r is one of the known roles.
func (r Role) Valid() bool {
	switch r {
	case RoleAdmin, RoleTeacher, RoleStudent:
		return true
	}
	return false
}

// UserStatus enumerates account states. Only admins change it.
type UserStatus string

const (
	UserStatusActive   UserStatus = "ACTIVE"
	UserStatusInactive UserStatus = "INACTIVE"
)

// User represents any account: admin, teacher or student.
type User struct {
	ID           int        `json:"id"`
	Name         string     `json:"name"`
	Email        string     `json:"email"`
	PasswordHash string     `json:"-"`
	Role         Role       `json:"role"`
	Status       UserStatus `json:"status"`
	CreatedAt    time.Time  `json:"created_at"`
	UpdatedAt    time.Time  `json:"updated_at"`
}

// UserSummary is the denormalized user reference embedded in other payloads.
type UserSummary struct {
	ID    int    `json:"id"`
	Name  string `json:"name"`
	Email string `json:"email,omitempty"`
	Role  Role   `json:"role,omitempty"`
}

// UserFilter narrows admin user listings. A zero Limit returns every match.
type UserFilter struct {
	Role   *Role
	Status *UserStatus
	Limit  int
	Offset int
}

// LoginRequest is the payload for authentication.
type LoginRequest struct {
	Email    string `json:"email" binding:"required,email,max=255"`
	Password string `json:"password" binding:"required,min=1,max=128"`
}

// RegisterRequest is the public self-registration payload.
type RegisterRequest struct {
	Name     string `json:"name" binding:"required,notblank,min=2,max=100"`
	Email    string `json:"email" binding:"required,email,max=255"`
	Password string `json:"password" binding:"required,min=6,max=128"`
	Role     Role   `json:"role" binding:"omitempty,oneof=TEACHER STUDENT"`
}

// CreateUserRequest is the admin payload for creating a teacher or student.
type CreateUserRequest struct {
	Name     string `json:"name" binding:"required,notblank,min=2,max=100"`
	Email    string `json:"email" binding:"required,email,max=255"`
	Password string `json:"password" binding:"required,min=6,max=128"`
	Role     Role   `json:"role" binding:"required,oneof=TEACHER STUDENT"`
}

// UpdateUserStatusRequest is the admin payload for (de)activating an account.
type UpdateUserStatusRequest struct {
	Status UserStatus `json:"status" binding:"required,oneof=ACTIVE INACTIVE"`
}
