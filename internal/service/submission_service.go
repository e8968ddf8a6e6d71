package service

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/nnptud/lms-backend/internal/config"
	"github.com/nnptud/lms-backend/internal/model"
	"github.com/rs/zerolog"
)

// SubmissionService runs the submission lifecycle: lateness, the single
// submission per student and assignment, and its notifications.
type SubmissionService struct {
	submissions SubmissionStore
	assignments AssignmentStore
	members     MembershipStore
	access      *AccessService
	notifier    Notifier
	log         zerolog.Logger
	now         func() time.Time
}

// NewSubmissionService creates a new SubmissionService.
func NewSubmissionService(
	submissions SubmissionStore,
	assignments AssignmentStore,
	members MembershipStore,
	access *AccessService,
	notifier Notifier,
	log zerolog.Logger,
) *SubmissionService {
	return &SubmissionService{
		submissions: submissions,
		assignments: assignments,
		members:     members,
		access:      access,
		notifier:    notifier,
		log:         log.With().Str("component", "submission_service").Logger(),
		now:         time.Now,
	}
}

// Submit creates or replaces the actor's submission to an assignment.
//
// Lateness is evaluated against the time of this call, including on
// resubmission, and submitted_at moves to now. A late submission to an
// assignment that does not allow late work is rejected and nothing is written.
// Content or file left empty keep their previously stored value.
func (s *SubmissionService) Submit(ctx context.Context, actor *model.Actor, req model.SubmitRequest) (*model.Submission, error) {
	if !actor.IsStudent() {
		return nil, ErrForbidden
	}

	content := nonBlank(req.Content)
	fileURL := nonBlank(req.FileURL)
	if content == nil && fileURL == nil {
		return nil, newValidationError("content", "content or file_url is required")
	}

	assignment, err := s.assignments.GetByID(ctx, req.AssignmentID)
	if err != nil {
		return nil, fmt.Errorf("get assignment: %w", err)
	}

	m, err := s.members.Get(ctx, assignment.ClassID, actor.ID)
	if err != nil {
		if errors.Is(err, ErrNotFound) {
			return nil, ErrForbidden
		}
		return nil, fmt.Errorf("get membership: %w", err)
	}
	if m.Status != model.MembershipStatusActive {
		return nil, ErrForbidden
	}

	now := s.now()
	late := assignment.IsLate(now)
	if late && !assignment.AllowLate {
		return nil, ErrDeadlinePassed
	}

	sub := &model.Submission{
		AssignmentID: assignment.ID,
		StudentID:    actor.ID,
		Content:      content,
		FileURL:      fileURL,
		Status:       model.SubmissionStatusSubmitted,
		SubmittedAt:  now,
	}
	if late {
		sub.Status = model.SubmissionStatusLateSubmitted
	}

	if err := s.submissions.Upsert(ctx, sub); err != nil {
		return nil, fmt.Errorf("save submission: %w", err)
	}

	s.log.Info().
		Int("submission_id", sub.ID).
		Int("assignment_id", assignment.ID).
		Int("student_id", actor.ID).
		Str("status", string(sub.Status)).
		Msg("Submission accepted")

	s.notifier.Publish(ctx, config.TopicKey.Class(assignment.ClassID), model.EventSubmissionNew, model.SubmissionNewPayload{
		AssignmentID: assignment.ID,
		SubmissionID: sub.ID,
		StudentID:    actor.ID,
		SubmittedAt:  sub.SubmittedAt,
		Status:       sub.Status,
	})
	s.notifier.Publish(ctx, config.TopicKey.Assignment(assignment.ID), model.EventSubmissionUpdated, model.SubmissionUpdatedPayload{
		SubmissionID: sub.ID,
		StudentID:    actor.ID,
		Status:       sub.Status,
	})

	return sub, nil
}

// Get returns a single submission readable by the actor.
func (s *SubmissionService) Get(ctx context.Context, actor *model.Actor, id int) (*model.Submission, error) {
	sub, _, _, err := s.access.CheckSubmissionAccess(ctx, actor, id)
	return sub, err
}

// ListByAssignment returns all submissions to an assignment for staff, and
// only the actor's own for students.
func (s *SubmissionService) ListByAssignment(ctx context.Context, actor *model.Actor, assignmentID int) ([]model.Submission, error) {
	if actor.IsStudent() {
		if _, _, err := s.access.CheckAssignmentAccess(ctx, actor, assignmentID); err != nil {
			return nil, err
		}
		sub, err := s.submissions.GetByAssignmentAndStudent(ctx, assignmentID, actor.ID)
		if err != nil {
			if errors.Is(err, ErrNotFound) {
				return []model.Submission{}, nil
			}
			return nil, fmt.Errorf("get own submission: %w", err)
		}
		return []model.Submission{*sub}, nil
	}

	if _, _, err := s.access.CheckAssignmentManage(ctx, actor, assignmentID); err != nil {
		return nil, err
	}
	return s.submissions.ListByAssignment(ctx, assignmentID)
}

// nonBlank returns v unless it is nil or only whitespace.
func nonBlank(v *string) *string {
	if v == nil || strings.TrimSpace(*v) == "" {
		return nil
	}
	return v
}
