package service

import (
	"context"
	"fmt"
	"math"
	"time"

	"github.com/nnptud/lms-backend/internal/config"
	"github.com/nnptud/lms-backend/internal/model"
	"github.com/rs/zerolog"
)

// GradeService posts and replaces the single grade of a submission.
type GradeService struct {
	grades      GradeStore
	submissions SubmissionStore
	access      *AccessService
	notifier    Notifier
	log         zerolog.Logger
	now         func() time.Time
}

// NewGradeService creates a new GradeService.
func NewGradeService(grades GradeStore, submissions SubmissionStore, access *AccessService, notifier Notifier, log zerolog.Logger) *GradeService {
	return &GradeService{
		grades:      grades,
		submissions: submissions,
		access:      access,
		notifier:    notifier,
		log:         log.With().Str("component", "grade_service").Logger(),
		now:         time.Now,
	}
}

// Grade stores score for a submission in a class the actor manages.
// The score must lie in [0, max_score] of the assignment; an out of range
// score leaves any existing grade untouched.
func (s *GradeService) Grade(ctx context.Context, actor *model.Actor, submissionID int, score float64) (*model.Grade, error) {
	if !actor.HasRole(model.RoleTeacher, model.RoleAdmin) {
		return nil, ErrForbidden
	}

	sub, err := s.submissions.GetByID(ctx, submissionID)
	if err != nil {
		return nil, fmt.Errorf("get submission: %w", err)
	}

	assignment, class, err := s.access.CheckAssignmentManage(ctx, actor, sub.AssignmentID)
	if err != nil {
		return nil, err
	}

	maxScore := assignment.EffectiveMaxScore()
	if math.IsNaN(score) || score < 0 || score > maxScore {
		return nil, fmt.Errorf("%w: score %v not in [0, %v]", ErrScoreOutOfRange, score, maxScore)
	}

	g := &model.Grade{
		SubmissionID: sub.ID,
		Score:        score,
		GradedBy:     actor.ID,
		GradedAt:     s.now(),
	}
	if err := s.grades.Upsert(ctx, g); err != nil {
		return nil, fmt.Errorf("save grade: %w", err)
	}

	s.log.Info().
		Int("submission_id", sub.ID).
		Int("assignment_id", assignment.ID).
		Int("student_id", sub.StudentID).
		Float64("score", score).
		Int("by", actor.ID).
		Msg("Grade posted")

	s.notifier.Publish(ctx, config.TopicKey.User(sub.StudentID), model.EventGradeUpdated, model.GradePersonalPayload{
		SubmissionID:    sub.ID,
		Score:           g.Score,
		GradedAt:        g.GradedAt,
		AssignmentTitle: assignment.Title,
	})
	broadcast := model.GradeBroadcastPayload{
		SubmissionID: sub.ID,
		Score:        g.Score,
		StudentID:    sub.StudentID,
	}
	s.notifier.Publish(ctx, config.TopicKey.Assignment(assignment.ID), model.EventGradeUpdated, broadcast)
	s.notifier.Publish(ctx, config.TopicKey.Class(class.ID), model.EventGradeUpdated, broadcast)

	return g, nil
}
