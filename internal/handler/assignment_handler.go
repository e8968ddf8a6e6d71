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

// AssignmentHandler handles assignment endpoints.
type AssignmentHandler struct {
	assignmentService *service.AssignmentService
	submissionService *service.SubmissionService
	log               zerolog.Logger
}

// NewAssignmentHandler creates a new AssignmentHandler.
func NewAssignmentHandler(assignmentService *service.AssignmentService, submissionService *service.SubmissionService, log zerolog.Logger) *AssignmentHandler {
	return &AssignmentHandler{
		assignmentService: assignmentService,
		submissionService: submissionService,
		log:               log.With().Str("component", "assignment_handler").Logger(),
	}
}

// CreateAssignment godoc
// POST /api/v1/assignments
// Creates an assignment in a class the caller manages.
func (h *AssignmentHandler) CreateAssignment(c *gin.Context) {
	actor, ok := requireActor(c)
	if !ok {
		return
	}

	var req model.CreateAssignmentRequest
	if fields := validator.Bind(c, &req); fields != nil {
		response.FailWithFields(c, http.StatusBadRequest, response.ErrValidation, fields)
		return
	}

	a, err := h.assignmentService.Create(c.Request.Context(), actor, req)
	if err != nil {
		failFromError(c, h.log, err)
		return
	}

	response.Success(c, http.StatusCreated, a)
}

// GetAssignment godoc
// GET /api/v1/assignments/:id
func (h *AssignmentHandler) GetAssignment(c *gin.Context) {
	actor, ok := requireActor(c)
	if !ok {
		return
	}
	id, ok := paramID(c, "id")
	if !ok {
		return
	}

	a, err := h.assignmentService.Get(c.Request.Context(), actor, id)
	if err != nil {
		failFromError(c, h.log, err)
		return
	}

	response.Success(c, http.StatusOK, a)
}

// UpdateAssignment godoc
// PATCH /api/v1/assignments/:id
// Partially updates an assignment. clear_due_date removes the deadline.
func (h *AssignmentHandler) UpdateAssignment(c *gin.Context) {
	actor, ok := requireActor(c)
	if !ok {
		return
	}
	id, ok := paramID(c, "id")
	if !ok {
		return
	}

	var req model.UpdateAssignmentRequest
	if fields := validator.Bind(c, &req); fields != nil {
		response.FailWithFields(c, http.StatusBadRequest, response.ErrValidation, fields)
		return
	}

	a, err := h.assignmentService.Update(c.Request.Context(), actor, id, req)
	if err != nil {
		failFromError(c, h.log, err)
		return
	}

	response.Success(c, http.StatusOK, a)
}

// DeleteAssignment godoc
// DELETE /api/v1/assignments/:id
func (h *AssignmentHandler) DeleteAssignment(c *gin.Context) {
	actor, ok := requireActor(c)
	if !ok {
		return
	}
	id, ok := paramID(c, "id")
	if !ok {
		return
	}

	if err := h.assignmentService.Delete(c.Request.Context(), actor, id); err != nil {
		failFromError(c, h.log, err)
		return
	}

	response.Success(c, http.StatusOK, gin.H{"id": id})
}

// ListSubmissions godoc
// GET /api/v1/assignments/:id/submissions
// Managers see every submission; a student sees only their own.
func (h *AssignmentHandler) ListSubmissions(c *gin.Context) {
	actor, ok := requireActor(c)
	if !ok {
		return
	}
	id, ok := paramID(c, "id")
	if !ok {
		return
	}

	subs, err := h.submissionService.ListByAssignment(c.Request.Context(), actor, id)
	if err != nil {
		failFromError(c, h.log, err)
		return
	}

	response.Success(c, http.StatusOK, subs)
}

// ListStudentAssignments godoc
// GET /api/v1/student/assignments
// Lists assignments across the student's active classes with their own submission state.
func (h *AssignmentHandler) ListStudentAssignments(c *gin.Context) {
	actor, ok := requireActor(c)
	if !ok {
		return
	}

	items, err := h.assignmentService.ListForStudent(c.Request.Context(), actor)
	if err != nil {
		failFromError(c, h.log, err)
		return
	}

	response.Success(c, http.StatusOK, items)
}
