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

	"github.com/landfolio/cfd-api/internal/config"
	"github.com/landfolio/cfd-api/internal/database"
	"github.com/landfolio/cfd-api/internal/handlers"
	"github.com/landfolio/cfd-api/internal/middleware"
	"github.com/landfolio/cfd-api/internal/repository"
	"github.com/landfolio/cfd-api/internal/services"
	"github.com/landfolio/cfd-api/pkg/logger"

	"github.com/gin-gonic/gin"
)

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

	if err := database.Migrate(db); err != nil {
		logger.Error("Failed to run migrations", "error", err)
		os.Exit(1)
	}

	// Initialize repositories, services and handlers
	repos := repository.NewRepositories(db)
	svcs := services.NewServices(repos)
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

	// API v1 routes
	v1 := router.Group("/api/v1")
	{
		// Health check
		v1.GET("/health", h.Health.Show)

		// Contracts
		contracts := v1.Group("/contracts")
		{
			contracts.GET("", h.Contract.Index)
			contracts.POST("", h.Contract.Create)
			contracts.POST("/import", h.Import.Create)
			contracts.GET("/:contract_id", h.Contract.Show)
			contracts.PATCH("/:contract_id", h.Contract.Update)
			contracts.DELETE("/:contract_id", h.Contract.Destroy)
			contracts.PUT("/:contract_id/status", h.Contract.UpdateStatus)
			contracts.POST("/:contract_id/documents", h.Contract.AddDocument)

			// Per-contract payments, schedule and audit trail
			contracts.GET("/:contract_id/payments", h.Payment.ListByContract)
			contracts.POST("/:contract_id/payments", h.Payment.Create)
			contracts.GET("/:contract_id/installments", h.Installment.ListByContract)
			contracts.GET("/:contract_id/audit_log", h.Audit.ListForContract)
		}

		// Payments
		v1.GET("/payments", h.Payment.Index)
		v1.PATCH("/payments/:payment_id", h.Payment.Update)
		v1.DELETE("/payments/:payment_id", h.Payment.Destroy)

		// Installments
		v1.POST("/installments/:installment_id/mark_paid", h.Installment.MarkPaid)

		// Data-quality sweep
		v1.GET("/exceptions", h.Exception.Index)

		// Reports
		reports := v1.Group("/reports")
		{
			reports.GET("/tax_schedule", h.Report.TaxSchedule)
			reports.GET("/subledger", h.Report.Subledger)
			reports.GET("/cash_flow", h.Report.CashFlow)
			reports.GET("/pre_deed_tie_out", h.Report.PreDeedTieOut)
		}
	}

	return router
}
