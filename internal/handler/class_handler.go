package handler

import (
	"net/http"

	"github.com/gin-gonic/gin"
	"github.com/nnptud/lms-backend/internal/model"
	"github.com/nnptud/lms-backend/internal/response"
	"github.com/nnptud/lms-backend/internal/service"
	"github.com/nnptud/lms-backend/internal/validator"
	"github.com/rs/zerolog"
)

// ClassHandler handles class and membership endpoints.
type ClassHandler struct {
	classService      *service.ClassService
	assignmentService *service.AssignmentService
	log               zerolog.Logger
}

// NewClassHandler creates a new ClassHandler.
func NewClassHandler(classService *service.ClassService, assignmentService *service.AssignmentService, log zerolog.Logger) *ClassHandler {
	return &ClassHandler{
		classService:      classService,
		assignmentService: assignmentService,
		log:               log.With().Str("component", "class_handler").Logger(),
	}
}

// ListClasses godoc
// GET /api/v1/classes
// Lists the active classes visible to the caller.
func (h *ClassHandler) ListClasses(c *gin.Context) {
	actor, ok := requireActor(c)
	if !ok {
		return
	}

	classes, err := h.classService.List(c.Request.Context(), actor)
	if err != nil {
		failFromError(c, h.log, err)
		return
	}

	response.Success(c, http.StatusOK, classes)
}

// ListAllClasses godoc
// GET /api/v1/admin/classes
// Lists every class regardless of status.
func (h *ClassHandler) ListAllClasses(c *gin.Context) {
	actor, ok := requireActor(c)
	if !ok {
		return
	}

	classes, err := h.classService.ListAll(c.Request.Context(), actor)
	if err != nil {
		failFromError(c, h.log, err)
		return
	}

	response.Success(c, http.StatusOK, classes)
}

// CreateClass godoc
// POST /api/v1/classes
// Creates a class with a fresh join code.
func (h *ClassHandler) CreateClass(c *gin.Context) {
	actor, ok := requireActor(c)
	if !ok {
		return
	}

	var req model.CreateClassRequest
	if fields := validator.Bind(c, &req); fields != nil {
		response.FailWithFields(c, http.StatusBadRequest, response.ErrValidation, fields)
		return
	}

	class, err := h.classService.Create(c.Request.Context(), actor, req)
	if err != nil {
		failFromError(c, h.log, err)
		return
	}

	response.Success(c, http.StatusCreated, class)
}

// JoinClass godoc
// POST /api/v1/classes/join
// Enrolls the calling student using a class join code.
func (h *ClassHandler) JoinClass(c *gin.Context) {
	actor, ok := requireActor(c)
	if !ok {
		return
	}

	var req model.JoinClassRequest
	if fields := validator.Bind(c, &req); fields != nil {
		response.FailWithFields(c, http.StatusBadRequest, response.ErrValidation, fields)
		return
	}

	class, err := h.classService.Join(c.Request.Context(), actor, req.Code)
	if err != nil {
		failFromError(c, h.log, err)
		return
	}

	response.Success(c, http.StatusOK, class)
}

// GetClass godoc
// GET /api/v1/classes/:id
// Returns a class with its teacher, members and assignments.
func (h *ClassHandler) GetClass(c *gin.Context) {
	actor, ok := requireActor(c)
	if !ok {
		return
	}
	id, ok := paramID(c, "id")
	if !ok {
		return
	}

	detail, err := h.classService.Get(c.Request.Context(), actor, id)
	if err != nil {
		failFromError(c, h.log, err)
		return
	}

	response.Success(c, http.StatusOK, detail)
}

// UpdateClass godoc
// PATCH /api/v1/classes/:id
// Partially updates a class.
func (h *ClassHandler) UpdateClass(c *gin.Context) {
	actor, ok := requireActor(c)
	if !ok {
		return
	}
	id, ok := paramID(c, "id")
	if !ok {
		return
	}

	var req model.UpdateClassRequest
	if fields := validator.Bind(c, &req); fields != nil {
		response.FailWithFields(c, http.StatusBadRequest, response.ErrValidation, fields)
		return
	}

	class, err := h.classService.Update(c.Request.Context(), actor, id, req)
	if err != nil {
		failFromError(c, h.log, err)
		return
	}

	response.Success(c, http.StatusOK, class)
}

// DeleteClass godoc
// DELETE /api/v1/classes/:id
// Deletes a class together with its memberships and coursework.
func (h *ClassHandler) DeleteClass(c *gin.Context) {
	actor, ok := requireActor(c)
	if !ok {
		return
	}
	id, ok := paramID(c, "id")
	if !ok {
		return
	}

	if err := h.classService.Delete(c.Request.Context(), actor, id); err != nil {
		failFromError(c, h.log, err)
		return
	}

	response.Success(c, http.StatusOK, gin.H{"id": id})
}

// EnrollStudent godoc
// POST /api/v1/classes/:id/enroll
// Adds (or reactivates) a student in the class.
func (h *ClassHandler) EnrollStudent(c *gin.Context) {
	actor, ok := requireActor(c)
	if !ok {
		return
	}
	id, ok := paramID(c, "id")
	if !ok {
		return
	}

	var req model.EnrollRequest
	if fields := validator.Bind(c, &req); fields != nil {
		response.FailWithFields(c, http.StatusBadRequest, response.ErrValidation, fields)
		return
	}

	membership, err := h.classService.Enroll(c.Request.Context(), actor, id, req.StudentID)
	if err != nil {
		failFromError(c, h.log, err)
		return
	}

	response.Success(c, http.StatusOK, membership)
}

// RemoveMember godoc
// DELETE /api/v1/classes/:id/members/:user_id
// Deactivates a student's membership.
func (h *ClassHandler) RemoveMember(c *gin.Context) {
	actor, ok := requireActor(c)
	if !ok {
		return
	}
	id, ok := paramID(c, "id")
	if !ok {
		return
	}
	userID, ok := paramID(c, "user_id")
	if !ok {
		return
	}

	if err := h.classService.RemoveMember(c.Request.Context(), actor, id, userID); err != nil {
		failFromError(c, h.log, err)
		return
	}

	response.Success(c, http.StatusOK, gin.H{"class_id": id, "user_id": userID})
}

// ListClassAssignments godoc
// GET /api/v1/classes/:id/assignments
func (h *ClassHandler) ListClassAssignments(c *gin.Context) {
	actor, ok := requireActor(c)
	if !ok {
		return
	}
	id, ok := paramID(c, "id")
	if !ok {
		return
	}

	assignments, err := h.assignmentService.ListByClass(c.Request.Context(), actor, id)
	if err != nil {
		failFromError(c, h.log, err)
		return
	}

	response.Success(c, http.StatusOK, assignments)
}
