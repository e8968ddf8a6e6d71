package model

import "time"

// DashboardSummary holds the headline counters of the admin console.
type DashboardSummary struct {
	Users       map[Role]int             `json:"users"`
	Classes     map[ClassStatus]int      `json:"classes"`
	Assignments int                      `json:"assignments"`
	Submissions map[SubmissionStatus]int `json:"submissions"`
	Ungraded    int                      `json:"ungraded"`
}

// UpcomingDeadline is an assignment whose due date has not yet passed.
type UpcomingDeadline struct {
	AssignmentID int       `json:"assignment_id"`
	Title        string    `json:"title"`
	Class        ClassRef  `json:"class"`
	DueDate      time.Time `json:"due_date"`
	Submitted    int       `json:"submitted"`
	Enrolled     int       `json:"enrolled"`
}

// AssignmentGradeStats summarizes grading on a recently due assignment.
type AssignmentGradeStats struct {
	AssignmentID int        `json:"assignment_id"`
	Title        string     `json:"title"`
	Class        ClassRef   `json:"class"`
	DueDate      *time.Time `json:"due_date"`
	Submissions  int        `json:"submissions"`
	Graded       int        `json:"graded"`
	AverageScore *float64   `json:"average_score"`
	MaxScore     float64    `json:"max_score"`
}

// Dashboard consolidates every admin dashboard section.
type Dashboard struct {
	Summary   DashboardSummary       `json:"summary"`
	Upcoming  []UpcomingDeadline     `json:"upcoming_deadlines"`
	RecentDue []AssignmentGradeStats `json:"recent_results"`
}
