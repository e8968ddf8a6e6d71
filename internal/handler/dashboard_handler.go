package handler

import (
	"net/http"

	"github.com/gin-gonic/gin"
	"github.com/nnptud/lms-backend/internal/response"
	"github.com/nnptud/lms-backend/internal/service"
	"github.com/rs/zerolog"
)

// DashboardHandler handles admin dashboard endpoints.
type DashboardHandler struct {
	dashboardService *service.DashboardService
	log              zerolog.Logger
}

// NewDashboardHandler creates a new DashboardHandler.
func NewDashboardHandler(dashboardService *service.DashboardService, log zerolog.Logger) *DashboardHandler {
	return &DashboardHandler{
		dashboardService: dashboardService,
		log:              log.With().Str("component", "dashboard_handler").Logger(),
	}
}

// GetDashboard godoc
// GET /api/v1/admin/dashboard
// Returns user, class and submission counters, upcoming deadlines and recent grading results.
func (h *DashboardHandler) GetDashboard(c *gin.Context) {
	actor, ok := requireActor(c)
	if !ok {
		return
	}

	data, err := h.dashboardService.GetDashboard(c.Request.Context(), actor)
	if err != nil {
		failFromError(c, h.log, err)
		return
	}

	response.Success(c, http.StatusOK, data)
}
