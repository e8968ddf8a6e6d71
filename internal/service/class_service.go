package service

import (
	"context"
	"crypto/rand"
	"errors"
	"fmt"
	"math/big"
	"strings"

	"github.com/nnptud/lms-backend/internal/model"
	"github.com/nnptud/lms-backend/internal/repository"
	"github.com/rs/zerolog"
)

// JoinCodeAlphabet excludes I, O, 0 and 1 so codes survive being read aloud.
const JoinCodeAlphabet = "ABCDEFGHJKLMNPQRSTUVWXYZ23456789"

// JoinCodeLength is the number of symbols in a class join code.
const JoinCodeLength = 6

// ClassService handles classes and their membership registry.
type ClassService struct {
	classes     ClassStore
	members     MembershipStore
	assignments AssignmentStore
	users       UserStore
	access      *AccessService
	log         zerolog.Logger
}

// NewClassService creates a new ClassService.
func NewClassService(
	classes ClassStore,
	members MembershipStore,
	assignments AssignmentStore,
	users UserStore,
	access *AccessService,
	log zerolog.Logger,
) *ClassService {
	return &ClassService{
		classes:     classes,
		members:     members,
		assignments: assignments,
		users:       users,
		access:      access,
		log:         log.With().Str("component", "class_service").Logger(),
	}
}

// GenerateUniqueJoinCode draws codes until one is not held by any class,
// archived classes included.
func (s *ClassService) GenerateUniqueJoinCode(ctx context.Context) (string, error) {
	for {
		code, err := randomJoinCode()
		if err != nil {
			return "", err
		}
		exists, err := s.classes.CodeExists(ctx, code)
		if err != nil {
			return "", fmt.Errorf("check join code: %w", err)
		}
		if !exists {
			return code, nil
		}
		if err := ctx.Err(); err != nil {
			return "", err
		}
	}
}

func randomJoinCode() (string, error) {
	base := big.NewInt(int64(len(JoinCodeAlphabet)))
	var sb strings.Builder
	sb.Grow(JoinCodeLength)
	for i := 0; i < JoinCodeLength; i++ {
		n, err := rand.Int(rand.Reader, base)
		if err != nil {
			return "", fmt.Errorf("read random: %w", err)
		}
		sb.WriteByte(JoinCodeAlphabet[n.Int64()])
	}
	return sb.String(), nil
}

// NormalizeJoinCode trims and upper-cases user input.
func NormalizeJoinCode(code string) string {
	return strings.ToUpper(strings.TrimSpace(code))
}

// Create creates a class. Teachers own what they create; admins must name
// the owning teacher.
func (s *ClassService) Create(ctx context.Context, actor *model.Actor, req model.CreateClassRequest) (*model.Class, error) {
	teacherID := actor.ID
	switch actor.Role {
	case model.RoleTeacher:
	case model.RoleAdmin:
		if req.TeacherID <= 0 {
			return nil, newValidationError("teacher_id", "teacher_id is required")
		}
		teacher, err := s.users.GetByID(ctx, req.TeacherID)
		if err != nil {
			if errors.Is(err, ErrNotFound) {
				return nil, newValidationError("teacher_id", "teacher does not exist")
			}
			return nil, fmt.Errorf("get teacher: %w", err)
		}
		if teacher.Role != model.RoleTeacher {
			return nil, newValidationError("teacher_id", "user is not a teacher")
		}
		teacherID = teacher.ID
	default:
		return nil, ErrForbidden
	}

	name := strings.TrimSpace(req.Name)
	if name == "" {
		return nil, newValidationError("name", "name is required")
	}

	class := &model.Class{
		Name:        name,
		Description: req.Description,
		TeacherID:   teacherID,
		Status:      model.ClassStatusActive,
	}

	// The existence check and the insert race with other creators; the
	// unique constraint decides and the loser draws again.
	for {
		code, err := s.GenerateUniqueJoinCode(ctx)
		if err != nil {
			return nil, err
		}
		class.Code = code

		err = s.classes.Create(ctx, class)
		if err == nil {
			break
		}
		if !errors.Is(err, repository.ErrDuplicateCode) {
			return nil, fmt.Errorf("create class: %w", err)
		}
		s.log.Debug().Str("code", code).Msg("Join code collided on insert, retrying")
	}

	s.log.Info().Int("class_id", class.ID).Int("teacher_id", teacherID).Msg("Class created")
	return class, nil
}

// List returns the ACTIVE classes visible to the actor.
func (s *ClassService) List(ctx context.Context, actor *model.Actor) ([]model.ClassSummary, error) {
	active := model.ClassStatusActive
	f := model.ClassFilter{Status: &active}
	switch actor.Role {
	case model.RoleAdmin:
	case model.RoleTeacher:
		f.TeacherID = &actor.ID
	case model.RoleStudent:
		f.MemberID = &actor.ID
	default:
		return nil, ErrForbidden
	}
	return s.classes.List(ctx, f)
}

// ListAll returns every class regardless of status, for the admin console.
func (s *ClassService) ListAll(ctx context.Context, actor *model.Actor) ([]model.ClassSummary, error) {
	if !actor.IsAdmin() {
		return nil, ErrForbidden
	}
	return s.classes.List(ctx, model.ClassFilter{})
}

// Get returns a class with its teacher, active members and assignments.
func (s *ClassService) Get(ctx context.Context, actor *model.Actor, id int) (*model.ClassDetail, error) {
	class, err := s.access.CheckClassAccess(ctx, actor, id)
	if err != nil {
		return nil, err
	}

	detail := &model.ClassDetail{Class: *class}

	teacher, err := s.users.GetByID(ctx, class.TeacherID)
	if err != nil {
		return nil, fmt.Errorf("get teacher: %w", err)
	}
	detail.Teacher = model.UserSummary{ID: teacher.ID, Name: teacher.Name, Email: teacher.Email, Role: teacher.Role}

	if detail.Members, err = s.members.ListActiveMembers(ctx, id); err != nil {
		return nil, fmt.Errorf("list members: %w", err)
	}
	if detail.Assignments, err = s.assignments.ListByClass(ctx, id); err != nil {
		return nil, fmt.Errorf("list assignments: %w", err)
	}
	detail.StudentCount = len(detail.Members)
	return detail, nil
}

// Update changes name, description or status of a class.
func (s *ClassService) Update(ctx context.Context, actor *model.Actor, id int, req model.UpdateClassRequest) (*model.Class, error) {
	class, err := s.access.CheckClassManage(ctx, actor, id)
	if err != nil {
		return nil, err
	}

	if req.Name != nil {
		name := strings.TrimSpace(*req.Name)
		if name == "" {
			return nil, newValidationError("name", "name cannot be empty")
		}
		class.Name = name
	}
	if req.Description != nil {
		class.Description = req.Description
	}
	if req.Status != nil {
		if *req.Status != model.ClassStatusActive && *req.Status != model.ClassStatusArchived {
			return nil, newValidationError("status", "status must be ACTIVE or ARCHIVED")
		}
		class.Status = *req.Status
	}

	if err := s.classes.Update(ctx, class); err != nil {
		return nil, fmt.Errorf("update class: %w", err)
	}
	return class, nil
}

// Delete removes a class and everything scoped below it.
func (s *ClassService) Delete(ctx context.Context, actor *model.Actor, id int) error {
	if _, err := s.access.CheckClassManage(ctx, actor, id); err != nil {
		return err
	}
	if err := s.classes.Delete(ctx, id); err != nil {
		return fmt.Errorf("delete class: %w", err)
	}
	s.log.Info().Int("class_id", id).Int("by", actor.ID).Msg("Class deleted")
	return nil
}

// Join adds a student to the ACTIVE class holding code. An INACTIVE
// membership is reactivated in place.
func (s *ClassService) Join(ctx context.Context, actor *model.Actor, code string) (*model.Class, error) {
	if !actor.IsStudent() {
		return nil, ErrForbidden
	}

	code = NormalizeJoinCode(code)
	if code == "" {
		return nil, newValidationError("code", "code is required")
	}

	class, err := s.classes.GetActiveByCode(ctx, code)
	if err != nil {
		return nil, fmt.Errorf("find class by code: %w", err)
	}

	existing, err := s.members.Get(ctx, class.ID, actor.ID)
	switch {
	case err == nil && existing.Status == model.MembershipStatusActive:
		return nil, ErrAlreadyMember
	case err != nil && !errors.Is(err, ErrNotFound):
		return nil, fmt.Errorf("get membership: %w", err)
	}

	if _, err := s.members.Upsert(ctx, class.ID, actor.ID, model.MembershipStatusActive); err != nil {
		return nil, fmt.Errorf("join class: %w", err)
	}

	s.log.Info().Int("class_id", class.ID).Int("student_id", actor.ID).Msg("Student joined class")
	return class, nil
}

// Enroll adds a student to a class on behalf of its teacher or an admin.
func (s *ClassService) Enroll(ctx context.Context, actor *model.Actor, classID, studentID int) (*model.ClassMembership, error) {
	if _, err := s.access.CheckClassManage(ctx, actor, classID); err != nil {
		return nil, err
	}

	student, err := s.users.GetByID(ctx, studentID)
	if err != nil {
		if errors.Is(err, ErrNotFound) {
			return nil, newValidationError("student_id", "student does not exist")
		}
		return nil, fmt.Errorf("get student: %w", err)
	}
	if student.Role != model.RoleStudent {
		return nil, newValidationError("student_id", "user is not a student")
	}

	m, err := s.members.Upsert(ctx, classID, studentID, model.MembershipStatusActive)
	if err != nil {
		return nil, fmt.Errorf("enroll student: %w", err)
	}

	s.log.Info().Int("class_id", classID).Int("student_id", studentID).Int("by", actor.ID).Msg("Student enrolled")
	return m, nil
}

// RemoveMember soft-removes a student by marking the membership INACTIVE.
func (s *ClassService) RemoveMember(ctx context.Context, actor *model.Actor, classID, studentID int) error {
	if _, err := s.access.CheckClassManage(ctx, actor, classID); err != nil {
		return err
	}
	if _, err := s.members.Get(ctx, classID, studentID); err != nil {
		return fmt.Errorf("get membership: %w", err)
	}
	if _, err := s.members.Upsert(ctx, classID, studentID, model.MembershipStatusInactive); err != nil {
		return fmt.Errorf("remove member: %w", err)
	}

	s.log.Info().Int("class_id", classID).Int("student_id", studentID).Int("by", actor.ID).Msg("Student removed from class")
	return nil
}
