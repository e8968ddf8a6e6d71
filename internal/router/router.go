package router

import (
	"context"
	"time"

	"github.com/gin-contrib/cors"
	"github.com/gin-gonic/gin"
	"github.com/nnptud/lms-backend/internal/config"
	"github.com/nnptud/lms-backend/internal/handler"
	"github.com/nnptud/lms-backend/internal/middleware"
	"github.com/nnptud/lms-backend/internal/model"
	"github.com/nnptud/lms-backend/internal/response"
)

// Handlers groups all handler instances for route setup.
type Handlers struct {
	Auth       *handler.AuthHandler
	User       *handler.UserHandler
	Class      *handler.ClassHandler
	Assignment *handler.AssignmentHandler
	Submission *handler.SubmissionHandler
	Comment    *handler.CommentHandler
	Media      *handler.MediaHandler
	WS         *handler.WSHandler
	Dashboard  *handler.DashboardHandler
	System     *handler.SystemHandler
}

// SetupRouter configures all Gin route groups with appropriate middlewares.
// ctx bounds the lifetime of background helpers such as the rate limiter sweeper.
func SetupRouter(
	ctx context.Context,
	auth middleware.Authenticator,
	handlers *Handlers,
	cfg *config.Config,
) *gin.Engine {
	gin.SetMode(cfg.GinMode)
	router := gin.Default()

	// ─── CORS ──────────────────────────────────────────────────────────
	// If AllowedOrigins is set in config, restrict to that list;
	// otherwise allow all (*) so dev works without extra config.
	corsConfig := cors.DefaultConfig()
	if len(cfg.AllowedOrigins) > 0 {
		corsConfig.AllowOrigins = cfg.AllowedOrigins
	} else {
		corsConfig.AllowAllOrigins = true
	}
	corsConfig.AllowMethods = []string{"GET", "POST", "PUT", "PATCH", "DELETE", "OPTIONS"}
	corsConfig.AllowHeaders = []string{"Origin", "Content-Type", "Authorization", response.HeaderRequestID}
	corsConfig.ExposeHeaders = []string{response.HeaderRequestID, "Retry-After"}
	corsConfig.MaxAge = 12 * time.Hour
	router.Use(cors.New(corsConfig))

	// Apply request ID middleware globally so every response includes metadata.
	router.Use(response.RequestIDMiddleware())

	// Uploaded files are already compressed formats in most cases.
	brotliConfig := middleware.DefaultBrotliConfig
	brotliConfig.ExcludedPrefixes = []string{"/uploads"}
	router.Use(middleware.BrotliWithConfig(brotliConfig))

	// Serve uploaded media files statically with aggressive caching (1 year).
	uploadsGroup := router.Group("/uploads")
	uploadsGroup.Use(middleware.CacheControl(31536000))
	{
		uploadsGroup.Static("/", cfg.UploadDir)
	}

	router.GET("/health", handlers.System.Health)

	requireAuth := middleware.RequireAuth(auth)
	managers := middleware.RequireRole(model.RoleTeacher, model.RoleAdmin)
	students := middleware.RequireRole(model.RoleStudent)

	// Rate limiter for unauthenticated auth routes, per IP.
	authLimiter := middleware.NewRateLimiter(ctx, cfg.AuthRateLimit, time.Minute)

	api := router.Group("/api/v1")
	api.Use(middleware.NoStore())

	// ─── 1. Auth Group ─────────────────────────────────────────────────
	authAPI := api.Group("/auth")
	{
		authAPI.POST("/register", authLimiter.Middleware(), handlers.Auth.Register)
		authAPI.POST("/login", authLimiter.Middleware(), handlers.Auth.Login)
		authAPI.GET("/me", requireAuth, handlers.Auth.Me)
	}

	// ─── 2. Authenticated Group ────────────────────────────────────────
	authed := api.Group("")
	authed.Use(requireAuth)
	{
		authed.POST("/upload", handlers.Media.UploadMedia)

		// Classes
		authed.GET("/classes", handlers.Class.ListClasses)
		authed.POST("/classes", managers, handlers.Class.CreateClass)
		authed.POST("/classes/join", students, handlers.Class.JoinClass)
		authed.GET("/classes/:id", handlers.Class.GetClass)
		authed.PATCH("/classes/:id", managers, handlers.Class.UpdateClass)
		authed.DELETE("/classes/:id", managers, handlers.Class.DeleteClass)
		authed.POST("/classes/:id/enroll", managers, handlers.Class.EnrollStudent)
		authed.DELETE("/classes/:id/members/:user_id", managers, handlers.Class.RemoveMember)
		authed.GET("/classes/:id/assignments", handlers.Class.ListClassAssignments)

		// Assignments
		authed.POST("/assignments", managers, handlers.Assignment.CreateAssignment)
		authed.GET("/assignments/:id", handlers.Assignment.GetAssignment)
		authed.PATCH("/assignments/:id", managers, handlers.Assignment.UpdateAssignment)
		authed.DELETE("/assignments/:id", managers, handlers.Assignment.DeleteAssignment)
		authed.GET("/assignments/:id/submissions", handlers.Assignment.ListSubmissions)
		authed.GET("/student/assignments", students, handlers.Assignment.ListStudentAssignments)

		// Submissions & grading
		authed.POST("/submissions", students, handlers.Submission.Submit)
		authed.GET("/submissions/:id", handlers.Submission.GetSubmission)
		authed.POST("/grades", managers, handlers.Submission.GradeSubmission)

		// Comments
		authed.POST("/comments", handlers.Comment.CreateComment)
		authed.GET("/comments", handlers.Comment.ListComments)
		authed.PATCH("/comments/:id", handlers.Comment.UpdateComment)
		authed.DELETE("/comments/:id", handlers.Comment.DeleteComment)
	}

	// ─── 3. Admin Group ────────────────────────────────────────────────
	adminAPI := api.Group("/admin")
	adminAPI.Use(requireAuth, middleware.RequireRole(model.RoleAdmin))
	{
		adminAPI.GET("/users", handlers.User.ListUsers)
		adminAPI.POST("/users", handlers.User.CreateUser)
		adminAPI.PATCH("/users/:id", handlers.User.UpdateUserStatus)
		adminAPI.GET("/classes", handlers.Class.ListAllClasses)
		adminAPI.GET("/dashboard", handlers.Dashboard.GetDashboard)
		adminAPI.GET("/system/metrics", handlers.System.SystemMetricsSSE)
	}

	// ─── 4. WebSocket Group ────────────────────────────────────────────
	ws := router.Group("/ws/v1")
	ws.Use(requireAuth)
	{
		ws.GET("/notifications", handlers.WS.Notifications)
	}

	return router
}
