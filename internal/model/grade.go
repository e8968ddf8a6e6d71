package model

import "time"

// Grade is the 1:1 score attached to a submission.
type Grade struct {
	ID           int       `json:"id"`
	SubmissionID int       `json:"submission_id"`
	Score        float64   `json:"score"`
	GradedBy     int       `json:"graded_by"`
	GradedAt     time.Time `json:"graded_at"`
}

// GradeRequest is the payload for posting or replacing a grade.
type GradeRequest struct {
	SubmissionID int      `json:"submission_id" binding:"required,min=1"`
	Score        *float64 `json:"score" binding:"required"`
}
