package main

import (
	"context"
	"net/http"
	"os"
	"os/signal"
	"strconv"
	"syscall"
	"time"

	"github.com/jmoiron/sqlx"
	"github.com/labstack/echo/v4"
	"github.com/labstack/echo/v4/middleware"

	"github.com/onurcolak/contact-dispatch-service/environments"
	"github.com/onurcolak/contact-dispatch-service/handlers"
	"github.com/onurcolak/contact-dispatch-service/internal/contacts"
	"github.com/onurcolak/contact-dispatch-service/internal/dispatch"
	"github.com/onurcolak/contact-dispatch-service/internal/domain"
	"github.com/onurcolak/contact-dispatch-service/internal/jobs"
	"github.com/onurcolak/contact-dispatch-service/internal/middlewares"
	"github.com/onurcolak/contact-dispatch-service/internal/repository"
	"github.com/onurcolak/contact-dispatch-service/internal/scheduler"
	"github.com/onurcolak/contact-dispatch-service/internal/service"
	"github.com/onurcolak/contact-dispatch-service/pkg/database"
	"github.com/onurcolak/contact-dispatch-service/pkg/logger"
	"github.com/onurcolak/contact-dispatch-service/pkg/metrics"
	"github.com/onurcolak/contact-dispatch-service/pkg/redis"
	"github.com/onurcolak/contact-dispatch-service/pkg/validator"
	"github.com/onurcolak/contact-dispatch-service/pkg/webhook"
	"github.com/onurcolak/contact-dispatch-service/routes"

	_ "github.com/onurcolak/contact-dispatch-service/docs" // swagger docs
)

// auditStore and summaryStore let the optional backends stay nil
// interfaces when they are disabled.
type auditStore interface {
	Create(ctx context.Context, msg *domain.DispatchMessage) error
	GetByJob(ctx context.Context, jobID string, page, pageSize int) ([]domain.DispatchMessage, int64, error)
	GetStats(ctx context.Context) (sent, failed int64, err error)
}

type summaryStore interface {
	CacheJobSummary(ctx context.Context, snap domain.JobSnapshot) error
	GetCachedJobSummary(ctx context.Context, jobID string) (*domain.JobSnapshot, error)
	GetAllCachedJobSummaries(ctx context.Context) (map[string]*domain.JobSnapshot, error)
}

// @title Contact Dispatch Service API
// @version 1.0
// @description Matches uploaded contact sheets against filter rules and sends templated messages on schedule

// @contact.name API Support

// @license.name MIT
// @license.url https://opensource.org/licenses/MIT

// @host localhost:8080
// @BasePath /

// @schemes http https
func main() {
	// Load config
	cfg := environments.Load()

	logger.Init(cfg.Log.Level, cfg.Log.File)

	if cfg.Webhook.AuthKey == "" {
		logger.Warnf("WEBHOOK_AUTH_KEY is not set, messages are sent without an auth header")
	}

	policy, err := contacts.PolicyFromConfig(cfg.Dispatch)
	if err != nil {
		logger.Fatalf("Invalid dispatch configuration: %v", err)
	}

	logger.Infof("Starting Contact Dispatch Service...")

	// Init DB
	var (
		db    *sqlx.DB
		audit auditStore
	)
	if cfg.Database.Enabled {
		db, err = database.NewMySQLDB(cfg.Database)
		if err != nil {
			logger.Fatalf("Failed to connect to database: %v", err)
		}

		if err := database.RunMigrations(db); err != nil {
			logger.Fatalf("Failed to run migrations: %v", err)
		}

		audit = repository.NewMessageRepository(db)
	} else {
		logger.Infof("Database disabled, send attempts are not stored")
	}

	// Init redis
	var (
		redisClient *redis.Client
		summaries   summaryStore
	)
	if cfg.Redis.Enabled {
		redisClient, err = redis.NewRedisClient(cfg.Redis)
		if err != nil {
			logger.Warnf("Redis not available, caching disabled: %v", err)
			redisClient = nil
		} else {
			summaries = redisClient
		}
	}

	// Initialize webhook client
	webhookClient := webhook.NewWebhookClient(cfg.Webhook)
	logger.Infof("Webhook configured: %s", webhookClient.GetURL())

	m := metrics.New()

	dispatcher := dispatch.NewDispatcher(webhookClient, audit, m, dispatch.Config{
		WaitTime:         cfg.Dispatch.WaitTime,
		PhonePolicy:      policy,
		MaxContentLength: cfg.Dispatch.MaxContentLength,
	})
	logger.Infof("Dispatch configured: wait %s after each send, phone policy %s, up to %d concurrent jobs",
		cfg.Dispatch.WaitTime, policy, cfg.Dispatch.MaxConcurrentJobs)

	store := jobs.NewStore()
	sched := scheduler.NewScheduler(dispatcher, store, summaries, m, cfg.Dispatch.MaxConcurrentJobs)

	dispatchService := service.NewDispatchService(sched, dispatcher, store, audit, summaries)

	// Initialize handlers
	healthHandler := handlers.NewHealthHandler(db, redisClient)
	jobHandler := handlers.NewJobHandler(dispatchService, time.Local)
	schedulerHandler := handlers.NewSchedulerHandler(sched)

	e := echo.New()
	e.HideBanner = true
	e.Validator = validator.New()

	// Middleware
	e.Use(middleware.Logger())
	e.Use(middleware.RequestID())
	e.Use(middleware.Recover())
	e.Use(middleware.BodyLimit(strconv.FormatInt(cfg.Server.MaxUploadBytes, 10) + "B"))
	e.Use(middlewares.RequestMetrics(m, "/metrics"))
	e.Use(middleware.CORSWithConfig(middleware.CORSConfig{
		AllowOrigins: []string{"*"},
		AllowMethods: []string{http.MethodGet, http.MethodPost, http.MethodOptions},
		AllowHeaders: []string{
			echo.HeaderOrigin,
			echo.HeaderContentType,
			echo.HeaderAccept,
		},
	}))

	// Setup routes
	routes.RegisterRoutes(e, healthHandler, jobHandler, schedulerHandler, m.Handler())

	// Start server in goroutine
	go func() {
		addr := ":" + cfg.Server.Port
		logger.Infof("Server starting on http://localhost%s", addr)
		logger.Infof("Swagger docs available at http://localhost%s/swagger/index.html", addr)
		if err := e.Start(addr); err != nil && err != http.ErrServerClosed {
			logger.Fatalf("Failed to start server: %v", err)
		}
	}()

	// Graceful shutdown
	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
	<-quit

	logger.Infof("Shutting down gracefully...")

	// Stop accepting requests first so no job is submitted mid-shutdown.
	shutdownCtx, shutdownCancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer shutdownCancel()

	logger.Infof("Shutting down HTTP server...")
	if err := e.Shutdown(shutdownCtx); err != nil {
		logger.Errorf("Server forced to shutdown: %v", err)
	} else {
		logger.Infof("HTTP server stopped successfully")
	}

	// Cancel running jobs and wait for them (with timeout)
	logger.Infof("Stopping scheduler...")
	stopCtx, stopCancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer stopCancel()

	done := make(chan error, 1)
	go func() {
		done <- sched.Stop()
	}()

	select {
	case err := <-done:
		if err != nil {
			logger.Errorf("Error stopping scheduler: %v", err)
		} else {
			logger.Infof("Scheduler stopped successfully")
		}
	case <-stopCtx.Done():
		logger.Warnf("Scheduler stop timeout, forcing shutdown")
	}

	if db != nil {
		logger.Infof("Closing database connection...")
		if err := db.Close(); err != nil {
			logger.Errorf("Error closing database: %v", err)
		}
	}

	if redisClient != nil {
		logger.Infof("Closing Redis connection...")
		if err := redisClient.Close(); err != nil {
			logger.Errorf("Error closing Redis: %v", err)
		}
	}

	logger.Infof("Graceful shutdown completed")
}
