package service

import (
	"context"
	"fmt"
	"strings"

	"github.com/nnptud/lms-backend/internal/model"
	"github.com/rs/zerolog"
)

// AssignmentService handles assignments published to classes.
type AssignmentService struct {
	assignments AssignmentStore
	grades      GradeStore
	access      *AccessService
	log         zerolog.Logger
}

// NewAssignmentService creates a new AssignmentService.
func NewAssignmentService(assignments AssignmentStore, grades GradeStore, access *AccessService, log zerolog.Logger) *AssignmentService {
	return &AssignmentService{
		assignments: assignments,
		grades:      grades,
		access:      access,
		log:         log.With().Str("component", "assignment_service").Logger(),
	}
}

// Create publishes a new assignment to a class the actor manages.
func (s *AssignmentService) Create(ctx context.Context, actor *model.Actor, req model.CreateAssignmentRequest) (*model.Assignment, error) {
	if _, err := s.access.CheckClassManage(ctx, actor, req.ClassID); err != nil {
		return nil, err
	}

	a := &model.Assignment{
		ClassID:     req.ClassID,
		Title:       strings.TrimSpace(req.Title),
		Description: req.Description,
		FileURL:     req.FileURL,
		StartTime:   req.StartTime,
		DueDate:     req.DueDate,
		AllowLate:   req.AllowLate,
		MaxScore:    model.DefaultMaxScore,
		CreatedBy:   actor.ID,
	}
	if req.MaxScore != nil {
		a.MaxScore = *req.MaxScore
	}
	if err := validateAssignment(a); err != nil {
		return nil, err
	}

	if err := s.assignments.Create(ctx, a); err != nil {
		return nil, fmt.Errorf("create assignment: %w", err)
	}

	s.log.Info().Int("assignment_id", a.ID).Int("class_id", a.ClassID).Msg("Assignment created")
	return a, nil
}

// Get returns an assignment readable by the actor.
func (s *AssignmentService) Get(ctx context.Context, actor *model.Actor, id int) (*model.Assignment, error) {
	a, _, err := s.access.CheckAssignmentAccess(ctx, actor, id)
	return a, err
}

// Update applies a partial update to an assignment.
func (s *AssignmentService) Update(ctx context.Context, actor *model.Actor, id int, req model.UpdateAssignmentRequest) (*model.Assignment, error) {
	a, _, err := s.access.CheckAssignmentManage(ctx, actor, id)
	if err != nil {
		return nil, err
	}

	if req.Title != nil {
		a.Title = strings.TrimSpace(*req.Title)
	}
	if req.Description != nil {
		a.Description = req.Description
	}
	if req.FileURL != nil {
		a.FileURL = req.FileURL
	}
	if req.StartTime != nil {
		a.StartTime = req.StartTime
	}
	if req.ClearDueDate {
		a.DueDate = nil
	} else if req.DueDate != nil {
		a.DueDate = req.DueDate
	}
	if req.AllowLate != nil {
		a.AllowLate = *req.AllowLate
	}
	lowered := req.MaxScore != nil && *req.MaxScore < a.MaxScore
	if req.MaxScore != nil {
		a.MaxScore = *req.MaxScore
	}
	if err := validateAssignment(a); err != nil {
		return nil, err
	}
	if lowered {
		// Posted grades must stay within [0, max_score].
		top, graded, err := s.grades.HighestForAssignment(ctx, a.ID)
		if err != nil {
			return nil, fmt.Errorf("highest grade: %w", err)
		}
		if graded && top > a.MaxScore {
			return nil, newValidationError("max_score",
				fmt.Sprintf("max_score cannot be below an existing grade of %g", top))
		}
	}

	if err := s.assignments.Update(ctx, a); err != nil {
		return nil, fmt.Errorf("update assignment: %w", err)
	}
	return a, nil
}

// Delete removes an assignment with its submissions, grades and comments.
func (s *AssignmentService) Delete(ctx context.Context, actor *model.Actor, id int) error {
	if _, _, err := s.access.CheckAssignmentManage(ctx, actor, id); err != nil {
		return err
	}
	if err := s.assignments.Delete(ctx, id); err != nil {
		return fmt.Errorf("delete assignment: %w", err)
	}
	s.log.Info().Int("assignment_id", id).Int("by", actor.ID).Msg("Assignment deleted")
	return nil
}

// ListByClass returns the assignments of a class readable by the actor.
func (s *AssignmentService) ListByClass(ctx context.Context, actor *model.Actor, classID int) ([]model.Assignment, error) {
	if _, err := s.access.CheckClassAccess(ctx, actor, classID); err != nil {
		return nil, err
	}
	return s.assignments.ListByClass(ctx, classID)
}

// ListForStudent returns the student's assignments across all active classes.
func (s *AssignmentService) ListForStudent(ctx context.Context, actor *model.Actor) ([]model.StudentAssignment, error) {
	if !actor.IsStudent() {
		return nil, ErrForbidden
	}
	return s.assignments.ListForStudent(ctx, actor.ID)
}

func validateAssignment(a *model.Assignment) error {
	if a.Title == "" {
		return newValidationError("title", "title is required")
	}
	if a.MaxScore <= 0 {
		return newValidationError("max_score", "max_score must be greater than 0")
	}
	if a.StartTime != nil && a.DueDate != nil && a.DueDate.Before(*a.StartTime) {
		return newValidationError("due_date", "due_date must not be before start_time")
	}
	return nil
}
