package service

import (
	"errors"

	"github.com/nnptud/lms-backend/internal/repository"
)

// Sentinel errors shared by the domain services. Handlers translate them
// into response codes in one place.
var (
	ErrNotFound        = repository.ErrNotFound
	ErrForbidden       = errors.New("forbidden")
	ErrValidation      = errors.New("validation failed")
	ErrAlreadyMember   = errors.New("already a member of this class")
	ErrDeadlinePassed  = errors.New("deadline has passed")
	ErrScoreOutOfRange = errors.New("score out of range")
	ErrEmailTaken      = errors.New("email already registered")
)

// ValidationError carries field-level messages for ErrValidation.
type ValidationError struct {
	Fields map[string]string
}

func (e *ValidationError) Error() string { return ErrValidation.Error() }

func (e *ValidationError) Unwrap() error { return ErrValidation }

func newValidationError(field, msg string) error {
	return &ValidationError{Fields: map[string]string{field: msg}}
}
