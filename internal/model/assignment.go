package model

import "time"

// DefaultMaxScore applies when an assignment does not set its own maximum.
const DefaultMaxScore = 10.0

// Assignment is a piece of work published to a class.
// A nil DueDate means the assignment never becomes late.
type Assignment struct {
	ID              int        `json:"id"`
	ClassID         int        `json:"class_id"`
	Title           string     `json:"title"`
	Description     *string    `json:"description"`
	FileURL         *string    `json:"file_url"`
	StartTime       *time.Time `json:"start_time"`
	DueDate         *time.Time `json:"due_date"`
	AllowLate       bool       `json:"allow_late"`
	MaxScore        float64    `json:"max_score"`
	CreatedBy       int        `json:"created_by"`
	SubmissionCount int        `json:"submission_count"`
	CreatedAt       time.Time  `json:"created_at"`
	UpdatedAt       time.Time  `json:"updated_at"`
}

// EffectiveMaxScore returns MaxScore, or DefaultMaxScore when unset.
func (a *Assignment) EffectiveMaxScore() float64 {
	if a.MaxScore <= 0 {
		return DefaultMaxScore
	}
	return a.MaxScore
}

// IsLate reports whether a submission made at t misses the due date.
func (a *Assignment) IsLate(t time.Time) bool {
	return a.DueDate != nil && t.After(*a.DueDate)
}

// StudentAssignment is one row of a student's cross-class assignment list.
type StudentAssignment struct {
	Assignment   Assignment  `json:"assignment"`
	Class        ClassRef    `json:"class"`
	MySubmission *Submission `json:"my_submission"`
}

// ClassRef is the minimal class reference embedded in other payloads.
type ClassRef struct {
	ID   int    `json:"id"`
	Name string `json:"name"`
}

// CreateAssignmentRequest is the payload for creating an assignment.
type CreateAssignmentRequest struct {
	ClassID     int        `json:"class_id" binding:"required,min=1"`
	Title       string     `json:"title" binding:"required,notblank,max=255"`
	Description *string    `json:"description" binding:"omitempty,max=10000"`
	FileURL     *string    `json:"file_url" binding:"omitempty,max=1024"`
	StartTime   *time.Time `json:"start_time" binding:"omitempty"`
	DueDate     *time.Time `json:"due_date" binding:"omitempty"`
	AllowLate   bool       `json:"allow_late"`
	MaxScore    *float64   `json:"max_score" binding:"omitempty,gt=0,max=1000"`
}

// UpdateAssignmentRequest is a partial update. ClearDueDate removes the deadline.
type UpdateAssignmentRequest struct {
	Title        *string    `json:"title" binding:"omitempty,min=1,max=255"`
	Description  *string    `json:"description" binding:"omitempty,max=10000"`
	FileURL      *string    `json:"file_url" binding:"omitempty,max=1024"`
	StartTime    *time.Time `json:"start_time" binding:"omitempty"`
	DueDate      *time.Time `json:"due_date" binding:"omitempty"`
	ClearDueDate bool       `json:"clear_due_date"`
	AllowLate    *bool      `json:"allow_late"`
	MaxScore     *float64   `json:"max_score" binding:"omitempty,gt=0,max=1000"`
}
