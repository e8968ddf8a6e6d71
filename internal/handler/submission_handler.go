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

// SubmissionHandler handles submission and grading endpoints.
type SubmissionHandler struct {
	submissionService *service.SubmissionService
	gradeService      *service.GradeService
	log               zerolog.Logger
}

// NewSubmissionHandler creates a new SubmissionHandler.
func NewSubmissionHandler(submissionService *service.SubmissionService, gradeService *service.GradeService, log zerolog.Logger) *SubmissionHandler {
	return &SubmissionHandler{
		submissionService: submissionService,
		gradeService:      gradeService,
		log:               log.With().Str("component", "submission_handler").Logger(),
	}
}

// Submit godoc
// POST /api/v1/submissions
// Creates or replaces the caller's submission for an assignment.
func (h *SubmissionHandler) Submit(c *gin.Context) {
	actor, ok := requireActor(c)
	if !ok {
		return
	}

	var req model.SubmitRequest
	if fields := validator.Bind(c, &req); fields != nil {
		response.FailWithFields(c, http.StatusBadRequest, response.ErrValidation, fields)
		return
	}

	sub, err := h.submissionService.Submit(c.Request.Context(), actor, req)
	if err != nil {
		failFromError(c, h.log, err)
		return
	}

	// Created covers both the first submission and a resubmission upsert.
	response.Success(c, http.StatusCreated, sub)
}

// GetSubmission godoc
// GET /api/v1/submissions/:id
func (h *SubmissionHandler) GetSubmission(c *gin.Context) {
	actor, ok := requireActor(c)
	if !ok {
		return
	}
	id, ok := paramID(c, "id")
	if !ok {
		return
	}

	sub, err := h.submissionService.Get(c.Request.Context(), actor, id)
	if err != nil {
		failFromError(c, h.log, err)
		return
	}

	response.Success(c, http.StatusOK, sub)
}

// GradeSubmission godoc
// POST /api/v1/grades
// Records or replaces the grade of a submission.
func (h *SubmissionHandler) GradeSubmission(c *gin.Context) {
	actor, ok := requireActor(c)
	if !ok {
		return
	}

	var req model.GradeRequest
	if fields := validator.Bind(c, &req); fields != nil {
		response.FailWithFields(c, http.StatusBadRequest, response.ErrValidation, fields)
		return
	}

	grade, err := h.gradeService.Grade(c.Request.Context(), actor, req.SubmissionID, *req.Score)
	if err != nil {
		failFromError(c, h.log, err)
		return
	}

	response.Success(c, http.StatusOK, grade)
}
