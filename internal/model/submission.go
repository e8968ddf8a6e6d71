package model

import "time"

// SubmissionStatus is recomputed against the due date on every write.
type SubmissionStatus string

const (
	SubmissionStatusSubmitted     SubmissionStatus = "SUBMITTED"
	SubmissionStatusLateSubmitted SubmissionStatus = "LATE_SUBMITTED"
)

// Submission is a student's single answer to an assignment.
// (AssignmentID, StudentID) is unique; resubmitting updates in place.
type Submission struct {
	ID            int              `json:"id"`
	AssignmentID  int              `json:"assignment_id"`
	StudentID     int              `json:"student_id"`
	Content       *string          `json:"content"`
	FileURL       *string          `json:"file_url"`
	Status        SubmissionStatus `json:"status"`
	SubmittedAt   time.Time        `json:"submitted_at"`
	LastUpdatedAt time.Time        `json:"last_updated_at"`
	Student       *UserSummary     `json:"student,omitempty"`
	Grade         *Grade           `json:"grade"`
}

// SubmitRequest is the student payload. At least one of Content/FileURL is required.
type SubmitRequest struct {
	AssignmentID int     `json:"assignment_id" binding:"required,min=1"`
	Content      *string `json:"content" binding:"omitempty,max=100000"`
	FileURL      *string `json:"file_url" binding:"omitempty,max=1024"`
}
