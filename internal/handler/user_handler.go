package handler

import (
	"net/http"
	"strconv"

	"github.com/gin-gonic/gin"
	"github.com/nnptud/lms-backend/internal/model"
	"github.com/nnptud/lms-backend/internal/response"
	"github.com/nnptud/lms-backend/internal/service"
	"github.com/nnptud/lms-backend/internal/validator"
	"github.com/rs/zerolog"
)

// UserHandler handles admin account management endpoints.
type UserHandler struct {
	userService *service.UserService
	log         zerolog.Logger
}

// NewUserHandler creates a new UserHandler.
func NewUserHandler(userService *service.UserService, log zerolog.Logger) *UserHandler {
	return &UserHandler{
		userService: userService,
		log:         log.With().Str("component", "user_handler").Logger(),
	}
}

// ListUsers godoc
// GET /api/v1/admin/users?role=&status=&page=&per_page=
// Lists accounts newest first, optionally filtered by role and status.
func (h *UserHandler) ListUsers(c *gin.Context) {
	var f model.UserFilter
	if raw := c.Query("role"); raw != "" {
		role := model.Role(raw)
		if !role.Valid() {
			response.FailWithFields(c, http.StatusBadRequest, response.ErrValidation,
				map[string]string{"role": "role must be one of ADMIN TEACHER STUDENT"})
			return
		}
		f.Role = &role
	}
	if raw := c.Query("status"); raw != "" {
		status := model.UserStatus(raw)
		if status != model.UserStatusActive && status != model.UserStatusInactive {
			response.FailWithFields(c, http.StatusBadRequest, response.ErrValidation,
				map[string]string{"status": "status must be one of ACTIVE INACTIVE"})
			return
		}
		f.Status = &status
	}

	page, _ := strconv.Atoi(c.DefaultQuery("page", "1"))
	perPage, _ := strconv.Atoi(c.DefaultQuery("per_page", strconv.Itoa(service.DefaultPerPage)))

	users, pagination, err := h.userService.List(c.Request.Context(), f, page, perPage)
	if err != nil {
		failFromError(c, h.log, err)
		return
	}

	response.SuccessWithPagination(c, http.StatusOK, users, pagination)
}

// CreateUser godoc
// POST /api/v1/admin/users
// Creates a TEACHER or STUDENT account.
func (h *UserHandler) CreateUser(c *gin.Context) {
	var req model.CreateUserRequest
	if fields := validator.Bind(c, &req); fields != nil {
		response.FailWithFields(c, http.StatusBadRequest, response.ErrValidation, fields)
		return
	}

	user, err := h.userService.Create(c.Request.Context(), req)
	if err != nil {
		failFromError(c, h.log, err)
		return
	}

	response.Success(c, http.StatusCreated, user)
}

// UpdateUserStatus godoc
// PATCH /api/v1/admin/users/:id
// Activates or deactivates an account.
func (h *UserHandler) UpdateUserStatus(c *gin.Context) {
	actor, ok := requireActor(c)
	if !ok {
		return
	}
	id, ok := paramID(c, "id")
	if !ok {
		return
	}

	var req model.UpdateUserStatusRequest
	if fields := validator.Bind(c, &req); fields != nil {
		response.FailWithFields(c, http.StatusBadRequest, response.ErrValidation, fields)
		return
	}

	user, err := h.userService.UpdateStatus(c.Request.Context(), actor, id, req.Status)
	if err != nil {
		failFromError(c, h.log, err)
		return
	}

	response.Success(c, http.StatusOK, user)
}
