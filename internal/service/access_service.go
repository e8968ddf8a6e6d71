package service

import (
	"context"
	"errors"
	"fmt"
	"strconv"
	"strings"

	"github.com/nnptud/lms-backend/internal/model"
)

// AccessService evaluates who may read or modify classes and everything
// scoped below them. Every check reads storage afresh; nothing is cached.
type AccessService struct {
	classes     ClassStore
	members     MembershipStore
	assignments AssignmentStore
	submissions SubmissionStore
}

// NewAccessService creates a new AccessService.
func NewAccessService(classes ClassStore, members MembershipStore, assignments AssignmentStore, submissions SubmissionStore) *AccessService {
	return &AccessService{
		classes:     classes,
		members:     members,
		assignments: assignments,
		submissions: submissions,
	}
}

// CheckClassAccess grants read access to a class. First matching rule wins:
//   - ADMIN
//   - TEACHER who owns the class
//   - STUDENT with an ACTIVE membership
//
// A missing class is ErrNotFound regardless of the actor.
func (s *AccessService) CheckClassAccess(ctx context.Context, actor *model.Actor, classID int) (*model.Class, error) {
	class, err := s.classes.GetByID(ctx, classID)
	if err != nil {
		return nil, fmt.Errorf("get class: %w", err)
	}

	switch actor.Role {
	case model.RoleAdmin:
		return class, nil
	case model.RoleTeacher:
		if class.TeacherID == actor.ID {
			return class, nil
		}
	case model.RoleStudent:
		active, err := s.isActiveMember(ctx, classID, actor.ID)
		if err != nil {
			return nil, err
		}
		if active {
			return class, nil
		}
	}
	return nil, ErrForbidden
}

// CheckClassManage grants write access to a class: ADMIN or the owning TEACHER.
func (s *AccessService) CheckClassManage(ctx context.Context, actor *model.Actor, classID int) (*model.Class, error) {
	class, err := s.classes.GetByID(ctx, classID)
	if err != nil {
		return nil, fmt.Errorf("get class: %w", err)
	}
	if !canManage(actor, class) {
		return nil, ErrForbidden
	}
	return class, nil
}

// CheckAssignmentAccess grants read access to an assignment through its class.
func (s *AccessService) CheckAssignmentAccess(ctx context.Context, actor *model.Actor, assignmentID int) (*model.Assignment, *model.Class, error) {
	assignment, err := s.assignments.GetByID(ctx, assignmentID)
	if err != nil {
		return nil, nil, fmt.Errorf("get assignment: %w", err)
	}
	class, err := s.CheckClassAccess(ctx, actor, assignment.ClassID)
	if err != nil {
		return nil, nil, err
	}
	return assignment, class, nil
}

// CheckAssignmentManage grants write access to an assignment through its class.
func (s *AccessService) CheckAssignmentManage(ctx context.Context, actor *model.Actor, assignmentID int) (*model.Assignment, *model.Class, error) {
	assignment, err := s.assignments.GetByID(ctx, assignmentID)
	if err != nil {
		return nil, nil, fmt.Errorf("get assignment: %w", err)
	}
	class, err := s.CheckClassManage(ctx, actor, assignment.ClassID)
	if err != nil {
		return nil, nil, err
	}
	return assignment, class, nil
}

// CheckSubmissionAccess grants read access to a submission. Students only
// ever see their own; staff need access to the owning class.
func (s *AccessService) CheckSubmissionAccess(ctx context.Context, actor *model.Actor, submissionID int) (*model.Submission, *model.Assignment, *model.Class, error) {
	sub, err := s.submissions.GetByID(ctx, submissionID)
	if err != nil {
		return nil, nil, nil, fmt.Errorf("get submission: %w", err)
	}
	if actor.IsStudent() && sub.StudentID != actor.ID {
		return nil, nil, nil, ErrForbidden
	}
	assignment, class, err := s.CheckAssignmentAccess(ctx, actor, sub.AssignmentID)
	if err != nil {
		return nil, nil, nil, err
	}
	return sub, assignment, class, nil
}

// CheckCommentModify allows the author, the teacher owning the target's
// class, or an ADMIN to edit or delete a comment.
func (s *AccessService) CheckCommentModify(ctx context.Context, actor *model.Actor, comment *model.Comment) error {
	if actor.IsAdmin() || comment.UserID == actor.ID {
		return nil
	}
	if !actor.IsTeacher() {
		return ErrForbidden
	}

	classID, err := s.commentClassID(ctx, comment)
	if err != nil {
		return err
	}
	class, err := s.classes.GetByID(ctx, classID)
	if err != nil {
		return fmt.Errorf("get class: %w", err)
	}
	if class.TeacherID != actor.ID {
		return ErrForbidden
	}
	return nil
}

// AuthorizeTopic decides whether actor may subscribe to a notification topic.
// Class and assignment topics carry every student's submission status and
// score, so only staff who manage the class may hold them. Students follow
// their own results on user_{id} and submission:{id}.
func (s *AccessService) AuthorizeTopic(ctx context.Context, actor *model.Actor, topic string) error {
	kind, id, ok := ParseTopic(topic)
	if !ok {
		return newValidationError("topic", "unknown topic")
	}

	var err error
	switch kind {
	case TopicUser:
		if id != actor.ID {
			return ErrForbidden
		}
	case TopicClass:
		_, err = s.CheckClassManage(ctx, actor, id)
	case TopicAssignment:
		_, _, err = s.CheckAssignmentManage(ctx, actor, id)
	case TopicSubmission:
		_, _, _, err = s.CheckSubmissionAccess(ctx, actor, id)
	}
	return err
}

func (s *AccessService) commentClassID(ctx context.Context, comment *model.Comment) (int, error) {
	assignmentID := 0
	switch {
	case comment.AssignmentID != nil:
		assignmentID = *comment.AssignmentID
	case comment.SubmissionID != nil:
		sub, err := s.submissions.GetByID(ctx, *comment.SubmissionID)
		if err != nil {
			return 0, fmt.Errorf("get submission: %w", err)
		}
		assignmentID = sub.AssignmentID
	default:
		return 0, ErrNotFound
	}

	assignment, err := s.assignments.GetByID(ctx, assignmentID)
	if err != nil {
		return 0, fmt.Errorf("get assignment: %w", err)
	}
	return assignment.ClassID, nil
}

func (s *AccessService) isActiveMember(ctx context.Context, classID, userID int) (bool, error) {
	m, err := s.members.Get(ctx, classID, userID)
	if err != nil {
		if errors.Is(err, ErrNotFound) {
			return false, nil
		}
		return false, fmt.Errorf("get membership: %w", err)
	}
	return m.Status == model.MembershipStatusActive, nil
}

func canManage(actor *model.Actor, class *model.Class) bool {
	return actor.IsAdmin() || (actor.IsTeacher() && class.TeacherID == actor.ID)
}

// TopicKind classifies notification topics.
type TopicKind string

const (
	TopicUser       TopicKind = "user"
	TopicClass      TopicKind = "class"
	TopicAssignment TopicKind = "assignment"
	TopicSubmission TopicKind = "submission"
)

// ParseTopic splits a topic name such as "class:12" or "user_7" into its
// kind and numeric id. Only the canonical spelling is accepted: "user_007"
// or "class:+5" would authorize an id whose events are published elsewhere.
func ParseTopic(topic string) (TopicKind, int, bool) {
	var kind TopicKind
	var raw string
	switch {
	case strings.HasPrefix(topic, "user_"):
		kind, raw = TopicUser, strings.TrimPrefix(topic, "user_")
	case strings.HasPrefix(topic, "class:"):
		kind, raw = TopicClass, strings.TrimPrefix(topic, "class:")
	case strings.HasPrefix(topic, "assignment:"):
		kind, raw = TopicAssignment, strings.TrimPrefix(topic, "assignment:")
	case strings.HasPrefix(topic, "submission:"):
		kind, raw = TopicSubmission, strings.TrimPrefix(topic, "submission:")
	default:
		return "", 0, false
	}
	id, err := strconv.Atoi(raw)
	if err != nil || id <= 0 || strconv.Itoa(id) != raw {
		return "", 0, false
	}
	return kind, id, true
}
