package model

import "time"

// Comment targets exactly one of an assignment or a submission.
type Comment struct {
	ID           int         `json:"id"`
	Content      string      `json:"content"`
	UserID       int         `json:"user_id"`
	AssignmentID *int        `json:"assignment_id"`
	SubmissionID *int        `json:"submission_id"`
	Author       UserSummary `json:"user"`
	CreatedAt    time.Time   `json:"created_at"`
	UpdatedAt    time.Time   `json:"updated_at"`
}

// CommentFilter selects a comment thread by target.
type CommentFilter struct {
	AssignmentID *int
	SubmissionID *int
}

// CreateCommentRequest is the payload for posting a comment.
type CreateCommentRequest struct {
	Content      string `json:"content" binding:"required,notblank,max=5000"`
	AssignmentID *int   `json:"assignment_id" binding:"omitempty,min=1"`
	SubmissionID *int   `json:"submission_id" binding:"omitempty,min=1"`
}

// UpdateCommentRequest is the payload for editing a comment.
type UpdateCommentRequest struct {
	Content string `json:"content" binding:"required,notblank,max=5000"`
}
