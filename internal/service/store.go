package service

import (
	"context"
	"time"

	"github.com/nnptud/lms-backend/internal/model"
)

// The store interfaces below are implemented by the pgx repositories and by
// in-memory fakes in tests. Lookups return ErrNotFound when nothing matches.

type UserStore interface {
	GetByID(ctx context.Context, id int) (*model.User, error)
	GetByEmail(ctx context.Context, email string) (*model.User, error)
	Create(ctx context.Context, u *model.User) error
	List(ctx context.Context, f model.UserFilter) ([]model.User, int, error)
	UpdateStatus(ctx context.Context, id int, status model.UserStatus) error
}

type ClassStore interface {
	GetByID(ctx context.Context, id int) (*model.Class, error)
	GetActiveByCode(ctx context.Context, code string) (*model.Class, error)
	CodeExists(ctx context.Context, code string) (bool, error)
	Create(ctx context.Context, c *model.Class) error
	Update(ctx context.Context, c *model.Class) error
	Delete(ctx context.Context, id int) error
	List(ctx context.Context, f model.ClassFilter) ([]model.ClassSummary, error)
}

type MembershipStore interface {
	Get(ctx context.Context, classID, userID int) (*model.ClassMembership, error)
	Upsert(ctx context.Context, classID, userID int, status model.MembershipStatus) (*model.ClassMembership, error)
	ListActiveMembers(ctx context.Context, classID int) ([]model.Member, error)
}

type AssignmentStore interface {
	GetByID(ctx context.Context, id int) (*model.Assignment, error)
	Create(ctx context.Context, a *model.Assignment) error
	Update(ctx context.Context, a *model.Assignment) error
	Delete(ctx context.Context, id int) error
	ListByClass(ctx context.Context, classID int) ([]model.Assignment, error)
	ListForStudent(ctx context.Context, studentID int) ([]model.StudentAssignment, error)
}

type SubmissionStore interface {
	GetByID(ctx context.Context, id int) (*model.Submission, error)
	GetByAssignmentAndStudent(ctx context.Context, assignmentID, studentID int) (*model.Submission, error)
	Upsert(ctx context.Context, s *model.Submission) error
	ListByAssignment(ctx context.Context, assignmentID int) ([]model.Submission, error)
}

type GradeStore interface {
	GetBySubmission(ctx context.Context, submissionID int) (*model.Grade, error)
	Upsert(ctx context.Context, g *model.Grade) error
	// HighestForAssignment returns the top posted score on an assignment;
	// ok is false when nothing is graded yet.
	HighestForAssignment(ctx context.Context, assignmentID int) (score float64, ok bool, err error)
}

type CommentStore interface {
	GetByID(ctx context.Context, id int) (*model.Comment, error)
	Create(ctx context.Context, c *model.Comment) error
	Update(ctx context.Context, c *model.Comment) error
	Delete(ctx context.Context, id int) error
	List(ctx context.Context, f model.CommentFilter) ([]model.Comment, error)
}

type DashboardStore interface {
	GetSummary(ctx context.Context) (*model.DashboardSummary, error)
	GetUpcomingDeadlines(ctx context.Context, now time.Time, limit int) ([]model.UpcomingDeadline, error)
	GetRecentResults(ctx context.Context, now time.Time, limit int) ([]model.AssignmentGradeStats, error)
}

// Notifier publishes domain events to topics. Delivery is best effort.
type Notifier interface {
	Publish(ctx context.Context, topic string, event model.EventName, data any)
}
