package main

import (
	"context"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/rs/zerolog"

	"github.com/stemsi/onlinexam-backend/internal/config"
	"github.com/stemsi/onlinexam-backend/internal/database"
	"github.com/stemsi/onlinexam-backend/internal/handler"
	"github.com/stemsi/onlinexam-backend/internal/history"
	"github.com/stemsi/onlinexam-backend/internal/logger"
	"github.com/stemsi/onlinexam-backend/internal/middleware"
	"github.com/stemsi/onlinexam-backend/internal/repository"
	"github.com/stemsi/onlinexam-backend/internal/router"
	"github.com/stemsi/onlinexam-backend/internal/service"
	"github.com/stemsi/onlinexam-backend/internal/validator"
	"github.com/stemsi/onlinexam-backend/internal/worker"
)

// prewarmExams is how many recent exams are cached before serving.
const prewarmExams = 50

func main() {
	// ─── Load Configuration ────────────────────────────────────────────
	cfg := config.Load()

	// ─── Initialize Logger ─────────────────────────────────────────────
	log := logger.Setup(cfg.LogLevel, cfg.LogFormat)
	log.Info().
		Str("port", cfg.ServerPort).
		Str("mode", cfg.GinMode).
		Str("log_level", cfg.LogLevel).
		Str("history_backend", cfg.HistoryBackend).
		Msg("Starting online exam backend")

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

	// ─── Open Attempt History ──────────────────────────────────────────
	historyBackend, closeHistory, err := history.Open(ctx, cfg, pool, rdb, log)
	if err != nil {
		log.Fatal().Err(err).Msg("Failed to open attempt history")
	}
	defer closeHistory()

	// ─── Initialize Repositories ───────────────────────────────────────
	userRepo := repository.NewUserRepository(pool)
	courseRepo := repository.NewCourseRepository(pool)
	subjectRepo := repository.NewSubjectRepository(pool)
	examRepo := repository.NewExamRepository(pool)
	questionRepo := repository.NewQuestionRepository(pool)
	dashboardRepo := repository.NewDashboardRepository(pool)

	// ─── Initialize Services ──────────────────────────────────────────
	authService := service.NewAuthService(cfg, userRepo, log)
	userService := service.NewUserService(userRepo, authService, log)
	courseService := service.NewCourseService(courseRepo)
	subjectService := service.NewSubjectService(subjectRepo)
	examService := service.NewExamService(examRepo, questionRepo, rdb, cfg, log)
	questionService := service.NewQuestionService(questionRepo, examService, log)
	sessionService := service.NewExamSessionService(examService, historyBackend, cfg.HistoryTimeout, log)
	mediaService := service.NewMediaService(cfg)
	dashboardService := service.NewDashboardService(dashboardRepo, historyBackend)

	// ─── Initialize Handlers ──────────────────────────────────────────
	handlers := &router.Handlers{
		Auth:      handler.NewAuthHandler(authService),
		User:      handler.NewUserHandler(userService),
		Course:    handler.NewCourseHandler(courseService),
		Subject:   handler.NewSubjectHandler(subjectService),
		Exam:      handler.NewExamHandler(examService),
		Question:  handler.NewQuestionHandler(questionService),
		Attempt:   handler.NewAttemptHandler(sessionService),
		Media:     handler.NewMediaHandler(mediaService),
		Dashboard: handler.NewDashboardHandler(dashboardService),
		WS:        handler.NewWSHandler(sessionService, log, cfg.AllowedOrigins),
	}

	// ─── Start Background Workers ─────────────────────────────────────
	workerCtx, workerCancel := context.WithCancel(context.Background())

	sweeper := worker.NewSessionSweeper(sessionService, cfg.SessionIdleTTL, worker.DefaultSweepInterval, log)
	go sweeper.Start(workerCtx)

	authLimiter := middleware.NewRateLimiter("auth", cfg.AuthRatePerMin, time.Minute, rdb, log)
	go authLimiter.StartCleanup(workerCtx)

	// ─── Prewarm Redis Caches ─────────────────────────────────────────
	// Load recent exams before accepting traffic so the first takers
	// do not all miss the cache at once.
	if err := examService.PrewarmCache(ctx, prewarmExams); err != nil {
		log.Warn().Err(err).Msg("Cache prewarm failed")
	}

	// ─── Setup Router ──────────────────────────────────────────────────
	r := router.SetupRouter(authService, handlers, authLimiter, cfg, log)

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

	// 2. Stop background workers. Open attempts are dropped unrecorded.
	workerCancel()
	log.Info().Int("open_attempts", sessionService.Len()).Msg("Shutdown complete")
}

// init sets zerolog global defaults before main runs.
func init() {
	zerolog.TimeFieldFormat = time.RFC3339
}
