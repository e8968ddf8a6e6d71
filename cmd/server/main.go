package main

import (
	"context"
	"net/http"
	"os"
	"os/signal"
	"sync"
	"syscall"
	"time"

	"github.com/nnptud/lms-backend/internal/config"
	"github.com/nnptud/lms-backend/internal/database"
	"github.com/nnptud/lms-backend/internal/handler"
	"github.com/nnptud/lms-backend/internal/logger"
	"github.com/nnptud/lms-backend/internal/notify"
	"github.com/nnptud/lms-backend/internal/repository"
	"github.com/nnptud/lms-backend/internal/router"
	"github.com/nnptud/lms-backend/internal/service"
	"github.com/nnptud/lms-backend/internal/storage"
	"github.com/nnptud/lms-backend/internal/validator"
	"github.com/nnptud/lms-backend/internal/worker"
	"github.com/rs/zerolog"
)

func main() {
	// ─── Load Configuration ────────────────────────────────────────────
	cfg := config.Load()

	// ─── Initialize Logger ─────────────────────────────────────────────
	log := logger.Setup(cfg.LogLevel, cfg.LogFormat)
	log.Info().
		Str("port", cfg.ServerPort).
		Str("mode", cfg.GinMode).
		Str("log_level", cfg.LogLevel).
		Str("storage", cfg.StorageDriver).
		Bool("relay", cfg.RelayEnabled()).
		Msg("Starting LMS Backend")

	// ─── Initialize Validator ──────────────────────────────────────────
	validator.Setup()

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	// ─── Connect to PostgreSQL ─────────────────────────────────────────
	pool, err := database.NewPostgresPool(ctx, cfg, log)
	if err != nil {
		log.Fatal().Err(err).Msg("Failed to connect to PostgreSQL")
	}
	defer pool.Close()

	// ─── Connect to Redis ──────────────────────────────────────────────
	rdb, err := database.NewRedisClient(ctx, cfg, log)
	if err != nil {
		log.Fatal().Err(err).Msg("Failed to connect to Redis")
	}
	defer rdb.Close()

	// ─── Initialize Blob Storage ───────────────────────────────────────
	blobs, err := storage.New(cfg, log)
	if err != nil {
		log.Fatal().Err(err).Msg("Failed to initialize storage")
	}

	// ─── Initialize Repositories ───────────────────────────────────────
	userRepo := repository.NewUserRepository(pool)
	classRepo := repository.NewClassRepository(pool)
	membershipRepo := repository.NewMembershipRepository(pool)
	assignmentRepo := repository.NewAssignmentRepository(pool)
	submissionRepo := repository.NewSubmissionRepository(pool)
	gradeRepo := repository.NewGradeRepository(pool)
	commentRepo := repository.NewCommentRepository(pool)
	dashboardRepo := repository.NewDashboardRepository(pool)

	// ─── Initialize Notification Fan-out ───────────────────────────────
	fanout := notify.NewFanout(rdb, cfg.NotifyChannelPrefix, cfg.RelayEnabled(), log)

	// ─── Initialize Services ──────────────────────────────────────────
	accessService := service.NewAccessService(classRepo, membershipRepo, assignmentRepo, submissionRepo)
	authService := service.NewAuthService(cfg, userRepo, log)
	userService := service.NewUserService(userRepo, authService, log)
	classService := service.NewClassService(classRepo, membershipRepo, assignmentRepo, userRepo, accessService, log)
	assignmentService := service.NewAssignmentService(assignmentRepo, gradeRepo, accessService, log)
	submissionService := service.NewSubmissionService(submissionRepo, assignmentRepo, membershipRepo, accessService, fanout, log)
	gradeService := service.NewGradeService(gradeRepo, submissionRepo, accessService, fanout, log)
	commentService := service.NewCommentService(commentRepo, accessService, fanout, log)
	mediaService := service.NewMediaService(cfg, blobs, log)
	dashboardService := service.NewDashboardService(dashboardRepo)

	hub := notify.NewHub(rdb, cfg.NotifyChannelPrefix, accessService, log)

	// ─── Initialize Handlers ──────────────────────────────────────────
	handlers := &router.Handlers{
		Auth:       handler.NewAuthHandler(authService, log),
		User:       handler.NewUserHandler(userService, log),
		Class:      handler.NewClassHandler(classService, assignmentService, log),
		Assignment: handler.NewAssignmentHandler(assignmentService, submissionService, log),
		Submission: handler.NewSubmissionHandler(submissionService, gradeService, log),
		Comment:    handler.NewCommentHandler(commentService, log),
		Media:      handler.NewMediaHandler(mediaService, log),
		WS:         handler.NewWSHandler(hub, log, cfg.AllowedOrigins),
		Dashboard:  handler.NewDashboardHandler(dashboardService, log),
		System:     handler.NewSystemHandler(pool, rdb, log),
	}

	// ─── Start Background Workers ─────────────────────────────────────
	workerCtx, workerCancel := context.WithCancel(context.Background())
	var workers sync.WaitGroup

	if cfg.RelayEnabled() {
		amqpConn, amqpCh, err := database.NewRabbitMQChannel(cfg, log)
		if err != nil {
			log.Fatal().Err(err).Msg("Failed to connect to RabbitMQ")
		}
		defer amqpConn.Close()
		defer amqpCh.Close()

		relayWorker := worker.NewEventRelayWorker(rdb, amqpCh, cfg.AMQPExchange, log)
		workers.Add(1)
		go func() {
			defer workers.Done()
			relayWorker.Start(workerCtx)
		}()
	}

	// ─── Setup Router ──────────────────────────────────────────────────
	r := router.SetupRouter(ctx, authService, handlers, cfg)

	// ─── Create HTTP Server ────────────────────────────────────────────
	srv := &http.Server{
		Addr:              ":" + cfg.ServerPort,
		Handler:           r,
		ReadHeaderTimeout: 10 * time.Second,
	}

	// ─── Start Server in Goroutine ─────────────────────────────────────
	go func() {
		log.Info().Str("addr", ":"+cfg.ServerPort).Msg("Server listening")
		if err := srv.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			log.Fatal().Err(err).Msg("Server error")
		}
	}()

	// ─── Graceful Shutdown ─────────────────────────────────────────────
	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
	sig := <-quit

	log.Info().Str("signal", sig.String()).Msg("Shutting down gracefully...")

	// 1. Stop accepting new HTTP requests (5s timeout).
	shutdownCtx, shutdownCancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer shutdownCancel()

	if err := srv.Shutdown(shutdownCtx); err != nil {
		log.Error().Err(err).Msg("HTTP server shutdown error")
	}

	// 2. Stop background workers and wait for the relay to flush.
	workerCancel()
	workers.Wait()

	log.Info().Msg("Shutdown complete")
}

// init sets zerolog global defaults before main runs.
func init() {
	zerolog.TimeFieldFormat = time.RFC3339
}
