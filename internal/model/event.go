package model

import "time"

// EventName identifies a notification published on the fan-out.
type EventName string

const (
	EventSubmissionNew     EventName = "submission:new"
	EventSubmissionUpdated EventName = "submission:updated"
	EventGradeUpdated      EventName = "grade:updated"
	EventCommentNew        EventName = "comment:new"
)

// SubmissionNewPayload is sent to the class topic when a student submits.
type SubmissionNewPayload struct {
	AssignmentID int              `json:"assignment_id"`
	SubmissionID int              `json:"submission_id"`
	StudentID    int              `json:"student_id"`
	SubmittedAt  time.Time        `json:"submitted_at"`
	Status       SubmissionStatus `json:"status"`
}

// SubmissionUpdatedPayload is sent to the assignment topic when a student submits.
type SubmissionUpdatedPayload struct {
	SubmissionID int              `json:"submission_id"`
	StudentID    int              `json:"student_id"`
	Status       SubmissionStatus `json:"status"`
}

// GradePersonalPayload is sent to the graded student's own topic.
type GradePersonalPayload struct {
	SubmissionID    int       `json:"submission_id"`
	Score           float64   `json:"score"`
	GradedAt        time.Time `json:"graded_at"`
	AssignmentTitle string    `json:"assignment_title"`
}

// GradeBroadcastPayload is sent to the assignment and class topics.
type GradeBroadcastPayload struct {
	SubmissionID int     `json:"submission_id"`
	Score        float64 `json:"score"`
	StudentID    int     `json:"student_id"`
}

// CommentNewPayload is sent to the comment's target topic.
type CommentNewPayload struct {
	ID           int       `json:"id"`
	Content      string    `json:"content"`
	AuthorID     int       `json:"author_id"`
	AuthorName   string    `json:"author_name"`
	CreatedAt    time.Time `json:"created_at"`
	AssignmentID *int      `json:"assignment_id"`
	SubmissionID *int      `json:"submission_id"`
}
