package main

import (
	"context"
	"log"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/getsentry/sentry-go"
	sentrygin "github.com/getsentry/sentry-go/gin"
	"github.com/gin-contrib/gzip"
	_ "github.com/joho/godotenv/autoload"

	"github.com/ycmovement/membership-api/internal/config"
	"github.com/ycmovement/membership-api/internal/database"
	"github.com/ycmovement/membership-api/internal/handlers"
	"github.com/ycmovement/membership-api/internal/jobs"
	"github.com/ycmovement/membership-api/internal/middleware"
	"github.com/ycmovement/membership-api/internal/models"
	"github.com/ycmovement/membership-api/internal/repository"
	"github.com/ycmovement/membership-api/internal/services"
	"github.com/ycmovement/membership-api/internal/storage"
	"github.com/ycmovement/membership-api/pkg/logger"

	"github.com/gin-gonic/gin"
)

// @title YCM Membership API
// @version 1.0
// @description REST API for the Youth Change Movement membership registration system

// @host localhost:8080
// @BasePath /api/v1
// @schemes http
// @securityDefinitions.apikey BearerAuth
// @in header
// @name Authorization
func main() {
	// Load configuration
	cfg, err := config.Load()
	if err != nil {
		log.Fatalf("Failed to load configuration: %v", err)
	}

	// Initialize logger
	logger.Setup(cfg.Environment)

	// Initialize Sentry when DSN is configured
	if cfg.SentryDSN != "" {
		if err := sentry.Init(sentry.ClientOptions{
			Dsn:              cfg.SentryDSN,
			TracesSampleRate: 0.2,
			Environment:      cfg.Environment,
		}); err != nil {
			logger.Error("Sentry initialization failed", "error", err)
		} else {
			logger.Info("Sentry initialized")
		}
	}

	// Warn if Resend email is not configured; verification emails are skipped
	if cfg.ResendAPIKey == "" || cfg.FromEmail == "" {
		logger.Warn("Resend email disabled: RESEND_API_KEY or FROM_EMAIL not set. Verification and decision emails will be skipped.")
	}

	// Set Gin mode
	if cfg.Environment == "production" {
		gin.SetMode(gin.ReleaseMode)
	}

	// Connect to database
	db, err := database.Connect(cfg.DatabaseURL)
	if err != nil {
		logger.Error("Failed to connect to database", "error", err)
		os.Exit(1)
	}
	logger.Info("Connected to database")

	// Initialize storage for uploaded member documents
	store, err := storage.NewLocalStorage(cfg.StoragePath)
	if err != nil {
		logger.Error("Failed to initialize storage", "error", err)
		os.Exit(1)
	}
	logger.Info("Initialized local storage", "path", cfg.StoragePath)

	// Initialize repositories
	repos := repository.NewRepositories(db)

	// Initialize background worker
	worker := jobs.NewWorker(cfg.WorkerCount)
	logger.Info("Started background worker", "goroutines", cfg.WorkerCount)

	// Initialize services
	svcs := services.NewServices(repos, worker, store, cfg, db)

	// Schedule recurring jobs
	scheduleJobs(worker, store)

	// Initialize handlers
	h := handlers.NewHandlers(svcs)

	// Setup router
	router := setupRouter(h, cfg)

	// Create HTTP server
	server := &http.Server{
		Addr:         ":" + cfg.Port,
		Handler:      router,
		ReadTimeout:  15 * time.Second,
		WriteTimeout: 15 * time.Second,
		IdleTimeout:  60 * time.Second,
	}

	// Start server in a goroutine
	go func() {
		logger.Info("Server starting", "port", cfg.Port)
		if err := server.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			logger.Error("Failed to start server", "error", err)
			os.Exit(1)
		}
	}()

	// Wait for interrupt signal for graceful shutdown
	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
	<-quit
	logger.Info("Shutting down server...")

	// Create context with timeout for shutdown
	ctx, cancel := context.WithTimeout(context.Background(), 30*time.Second)
	defer cancel()

	// Shutdown HTTP server
	if err := server.Shutdown(ctx); err != nil {
		logger.Error("Server forced to shutdown", "error", err)
	}

	// Shutdown background worker
	worker.Shutdown()
	logger.Info("Background worker stopped")

	// Close database connection pool
	if err := database.Close(db); err != nil {
		logger.Error("Failed to close database", "error", err)
	}

	// Flush Sentry events before exit
	if cfg.SentryDSN != "" {
		sentry.Flush(5 * time.Second)
	}

	logger.Info("Server exited gracefully")
}

func setupRouter(h *handlers.Handlers, cfg *config.Config) *gin.Engine {
	router := gin.New()

	// Global middleware
	if cfg.SentryDSN != "" {
		router.Use(sentrygin.New(sentrygin.Options{Repanic: true}))
	}
	router.Use(gin.Recovery())
	router.Use(middleware.RequestLogger())
	router.Use(middleware.CORS(cfg.AllowedOrigins))
	router.Use(gzip.Gzip(gzip.DefaultCompression))

	// Submitting the registration form with the wrong verb must answer 405,
	// not 404
	router.HandleMethodNotAllowed = true
	router.NoMethod(func(c *gin.Context) {
		c.JSON(http.StatusMethodNotAllowed, gin.H{"error": "Method not allowed"})
	})

	// API v1 routes
	v1 := router.Group("/api/v1")
	{
		// Health check (public)
		v1.GET("/health", h.Health.Index)

		// Reference data (public)
		v1.GET("/states", h.Reference.States)
		v1.GET("/lgas", h.Reference.LGAs)

		// Registration (public)
		v1.POST("/register", h.Registration.Register)
		v1.GET("/verify", h.Registration.Verify)

		// Admin authentication (public)
		auth := v1.Group("/auth")
		{
			auth.POST("/login", h.Auth.Login)
			auth.POST("/refresh", h.Auth.Refresh)
			auth.POST("/logout", h.Auth.Logout)
		}

		// Admin routes (requires authentication)
		admin := v1.Group("/admin")
		admin.Use(middleware.Auth(cfg.JWTSecret))
		{
			// Application viewing (any admin role)
			admin.GET("/members", h.Member.Index)
			admin.GET("/members/export", h.Member.Export)
			admin.GET("/members/:member_id", h.Member.Show)
			admin.GET("/members/:member_id/card_pdf", h.Member.CardPDF)

			// Review decisions (editor and above)
			editor := admin.Group("")
			editor.Use(middleware.RequireRole(models.RoleEditor))
			{
				editor.POST("/members/:member_id/approve", h.Member.Approve)
				editor.POST("/members/:member_id/reject", h.Member.Reject)
			}

			// Audit trail (any admin role)
			admin.GET("/audits", h.Audit.Index)
		}
	}

	return router
}

func scheduleJobs(worker *jobs.Worker, store *storage.LocalStorage) {
	// Sweep orphaned upload staging directories hourly. Runs once at boot so
	// leftovers from a crash are cleared promptly.
	worker.ScheduleEveryImmediate(1*time.Hour, func(ctx context.Context) error {
		removed, err := store.SweepStaleTempDirs(24 * time.Hour)
		if err != nil {
			return err
		}
		if removed > 0 {
			logger.Info("[Job] Removed stale upload staging directories", "count", removed)
		}
		return nil
	})

	logger.Info("Scheduled recurring jobs")
}
