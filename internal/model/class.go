package model

import "time"

// ClassStatus enumerates class states. Archived classes cannot be joined by code.
type ClassStatus string

const (
	ClassStatusActive   ClassStatus = "ACTIVE"
	ClassStatusArchived ClassStatus = "ARCHIVED"
)

// Class represents a teacher-owned class that students join by code.
type Class struct {
	ID          int         `json:"id"`
	Name        string      `json:"name"`
	Description *string     `json:"description"`
	Code        string      `json:"code"`
	TeacherID   int         `json:"teacher_id"`
	Status      ClassStatus `json:"status"`
	CreatedAt   time.Time   `json:"created_at"`
	UpdatedAt   time.Time   `json:"updated_at"`
}

// ClassSummary is a list row with the owning teacher and counters.
type ClassSummary struct {
	Class
	Teacher         UserSummary `json:"teacher"`
	StudentCount    int         `json:"students"`
	AssignmentCount int         `json:"assignments"`
}

// ClassDetail is the single-class view.
type ClassDetail struct {
	Class
	Teacher      UserSummary  `json:"teacher"`
	Members      []Member     `json:"members"`
	Assignments  []Assignment `json:"assignments"`
	StudentCount int          `json:"students"`
}

// ClassFilter narrows class listings. Nil fields are not applied.
type ClassFilter struct {
	Status    *ClassStatus
	TeacherID *int
	MemberID  *int
}

// CreateClassRequest is the payload for creating a class.
// TeacherID is only read for admins, who create classes on a teacher's behalf.
type CreateClassRequest struct {
	Name        string  `json:"name" binding:"required,notblank,max=150"`
	Description *string `json:"description" binding:"omitempty,max=2000"`
	TeacherID   int     `json:"teacher_id" binding:"omitempty,min=1"`
}

// UpdateClassRequest is a partial update of a class.
type UpdateClassRequest struct {
	Name        *string      `json:"name" binding:"omitempty,min=1,max=150"`
	Description *string      `json:"description" binding:"omitempty,max=2000"`
	Status      *ClassStatus `json:"status" binding:"omitempty,oneof=ACTIVE ARCHIVED"`
}

// JoinClassRequest is the student payload for joining by code.
type JoinClassRequest struct {
	Code string `json:"code" binding:"required,notblank,max=16"`
}

// EnrollRequest is the teacher/admin payload for adding a student.
type EnrollRequest struct {
	StudentID int `json:"student_id" binding:"required,min=1"`
}
