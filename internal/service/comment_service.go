package service

import (
	"context"
	"fmt"
	"strings"

	"github.com/nnptud/lms-backend/internal/config"
	"github.com/nnptud/lms-backend/internal/model"
	"github.com/rs/zerolog"
)

// CommentService handles discussion threads on assignments and submissions.
type CommentService struct {
	comments CommentStore
	access   *AccessService
	notifier Notifier
	log      zerolog.Logger
}

// NewCommentService creates a new CommentService.
func NewCommentService(comments CommentStore, access *AccessService, notifier Notifier, log zerolog.Logger) *CommentService {
	return &CommentService{
		comments: comments,
		access:   access,
		notifier: notifier,
		log:      log.With().Str("component", "comment_service").Logger(),
	}
}

// Create posts a comment on exactly one assignment or submission the actor can read.
func (s *CommentService) Create(ctx context.Context, actor *model.Actor, req model.CreateCommentRequest) (*model.Comment, error) {
	if err := checkSingleTarget(req.AssignmentID, req.SubmissionID); err != nil {
		return nil, err
	}
	content := strings.TrimSpace(req.Content)
	if content == "" {
		return nil, newValidationError("content", "content is required")
	}

	var (
		topic string
		owner int
	)
	if req.AssignmentID != nil {
		if _, _, err := s.access.CheckAssignmentAccess(ctx, actor, *req.AssignmentID); err != nil {
			return nil, err
		}
		topic = config.TopicKey.Assignment(*req.AssignmentID)
	} else {
		sub, _, _, err := s.access.CheckSubmissionAccess(ctx, actor, *req.SubmissionID)
		if err != nil {
			return nil, err
		}
		topic = config.TopicKey.Submission(*req.SubmissionID)
		owner = sub.StudentID
	}

	c := &model.Comment{
		Content:      content,
		UserID:       actor.ID,
		AssignmentID: req.AssignmentID,
		SubmissionID: req.SubmissionID,
		Author:       model.UserSummary{ID: actor.ID, Name: actor.Name, Role: actor.Role},
	}
	if err := s.comments.Create(ctx, c); err != nil {
		return nil, fmt.Errorf("create comment: %w", err)
	}

	payload := model.CommentNewPayload{
		ID:           c.ID,
		Content:      c.Content,
		AuthorID:     actor.ID,
		AuthorName:   actor.Name,
		CreatedAt:    c.CreatedAt,
		AssignmentID: c.AssignmentID,
		SubmissionID: c.SubmissionID,
	}
	s.notifier.Publish(ctx, topic, model.EventCommentNew, payload)
	if owner != 0 && owner != actor.ID {
		s.notifier.Publish(ctx, config.TopicKey.User(owner), model.EventCommentNew, payload)
	}
	return c, nil
}

// List returns the thread of one target the actor can read.
func (s *CommentService) List(ctx context.Context, actor *model.Actor, f model.CommentFilter) ([]model.Comment, error) {
	if err := checkSingleTarget(f.AssignmentID, f.SubmissionID); err != nil {
		return nil, err
	}
	if f.AssignmentID != nil {
		if _, _, err := s.access.CheckAssignmentAccess(ctx, actor, *f.AssignmentID); err != nil {
			return nil, err
		}
	} else {
		if _, _, _, err := s.access.CheckSubmissionAccess(ctx, actor, *f.SubmissionID); err != nil {
			return nil, err
		}
	}
	return s.comments.List(ctx, f)
}

// Update edits the content of a comment.
func (s *CommentService) Update(ctx context.Context, actor *model.Actor, id int, content string) (*model.Comment, error) {
	content = strings.TrimSpace(content)
	if content == "" {
		return nil, newValidationError("content", "content is required")
	}

	c, err := s.comments.GetByID(ctx, id)
	if err != nil {
		return nil, fmt.Errorf("get comment: %w", err)
	}
	if err := s.access.CheckCommentModify(ctx, actor, c); err != nil {
		return nil, err
	}

	c.Content = content
	if err := s.comments.Update(ctx, c); err != nil {
		return nil, fmt.Errorf("update comment: %w", err)
	}
	return c, nil
}

// Delete removes a comment.
func (s *CommentService) Delete(ctx context.Context, actor *model.Actor, id int) error {
	c, err := s.comments.GetByID(ctx, id)
	if err != nil {
		return fmt.Errorf("get comment: %w", err)
	}
	if err := s.access.CheckCommentModify(ctx, actor, c); err != nil {
		return err
	}
	if err := s.comments.Delete(ctx, id); err != nil {
		return fmt.Errorf("delete comment: %w", err)
	}
	return nil
}

func checkSingleTarget(assignmentID, submissionID *int) error {
	if (assignmentID == nil) == (submissionID == nil) {
		return newValidationError("target", "exactly one of assignment_id or submission_id is required")
	}
	return nil
}
