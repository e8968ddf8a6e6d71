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

// CommentHandler handles discussion endpoints on assignments and submissions.
type CommentHandler struct {
	commentService *service.CommentService
	log            zerolog.Logger
}

// NewCommentHandler creates a new CommentHandler.
func NewCommentHandler(commentService *service.CommentService, log zerolog.Logger) *CommentHandler {
	return &CommentHandler{
		commentService: commentService,
		log:            log.With().Str("component", "comment_handler").Logger(),
	}
}

// CreateComment godoc
// POST /api/v1/comments
func (h *CommentHandler) CreateComment(c *gin.Context) {
	actor, ok := requireActor(c)
	if !ok {
		return
	}

	var req model.CreateCommentRequest
	if fields := validator.Bind(c, &req); fields != nil {
		response.FailWithFields(c, http.StatusBadRequest, response.ErrValidation, fields)
		return
	}

	comment, err := h.commentService.Create(c.Request.Context(), actor, req)
	if err != nil {
		failFromError(c, h.log, err)
		return
	}

	response.Success(c, http.StatusCreated, comment)
}

// ListComments godoc
// GET /api/v1/comments?assignment_id=|submission_id=
// Exactly one of the two query parameters must be given.
func (h *CommentHandler) ListComments(c *gin.Context) {
	actor, ok := requireActor(c)
	if !ok {
		return
	}

	assignmentID, ok := queryID(c, "assignment_id")
	if !ok {
		return
	}
	submissionID, ok := queryID(c, "submission_id")
	if !ok {
		return
	}

	comments, err := h.commentService.List(c.Request.Context(), actor, model.CommentFilter{
		AssignmentID: assignmentID,
		SubmissionID: submissionID,
	})
	if err != nil {
		failFromError(c, h.log, err)
		return
	}

	response.Success(c, http.StatusOK, comments)
}

// UpdateComment godoc
// PATCH /api/v1/comments/:id
func (h *CommentHandler) UpdateComment(c *gin.Context) {
	actor, ok := requireActor(c)
	if !ok {
		return
	}
	id, ok := paramID(c, "id")
	if !ok {
		return
	}

	var req model.UpdateCommentRequest
	if fields := validator.Bind(c, &req); fields != nil {
		response.FailWithFields(c, http.StatusBadRequest, response.ErrValidation, fields)
		return
	}

	comment, err := h.commentService.Update(c.Request.Context(), actor, id, req.Content)
	if err != nil {
		failFromError(c, h.log, err)
		return
	}

	response.Success(c, http.StatusOK, comment)
}

// DeleteComment godoc
// DELETE /api/v1/comments/:id
func (h *CommentHandler) DeleteComment(c *gin.Context) {
	actor, ok := requireActor(c)
	if !ok {
		return
	}
	id, ok := paramID(c, "id")
	if !ok {
		return
	}

	if err := h.commentService.Delete(c.Request.Context(), actor, id); err != nil {
		failFromError(c, h.log, err)
		return
	}

	response.Success(c, http.StatusOK, gin.H{"id": id})
}
