package main

import (
	"log/slog"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/getsentry/sentry-go"
	sentryfiber "github.com/getsentry/sentry-go/fiber"

	"github.com/gofiber/fiber/v2"
	fiberlogger "github.com/gofiber/fiber/v2/middleware/logger"
	"github.com/gofiber/fiber/v2/middleware/recover"
	"github.com/gofiber/fiber/v2/middleware/requestid"
	"github.com/vortexmedx/medconnect-backend/internal/accounts"
	"github.com/vortexmedx/medconnect-backend/internal/config"
	"github.com/vortexmedx/medconnect-backend/internal/database"
	"github.com/vortexmedx/medconnect-backend/internal/handlers"
	"github.com/vortexmedx/medconnect-backend/internal/identity"
	"github.com/vortexmedx/medconnect-backend/internal/logging"
	"github.com/vortexmedx/medconnect-backend/internal/middleware"
	"github.com/vortexmedx/medconnect-backend/internal/profiles"
	"github.com/vortexmedx/medconnect-backend/internal/routes"
	"github.com/vortexmedx/medconnect-backend/internal/sections"
	"github.com/vortexmedx/medconnect-backend/internal/sections/doctor"
	"github.com/vortexmedx/medconnect-backend/internal/sections/lab"
	"github.com/vortexmedx/medconnect-backend/internal/sections/patient"
	"github.com/vortexmedx/medconnect-backend/internal/session"
	"github.com/vortexmedx/medconnect-backend/internal/storage"
	"github.com/vortexmedx/medconnect-backend/internal/uploads"
)

func main() {
	// Structured logging (JSON to stdout)
	logging.Setup()

	cfg := config.Load()

	if cfg.JWTSecret == "" {
		slog.Error("JWT_SECRET environment variable is required")
		os.Exit(1)
	}
	if cfg.DBPassword == "" {
		slog.Error("DB_PASSWORD environment variable is required")
		os.Exit(1)
	}

	// Database
	if err := database.Connect(cfg); err != nil {
		slog.Error("database connection failed", "error", err)
		os.Exit(1)
	}

	// Migrate shared models
	if err := database.MigrateShared(); err != nil {
		slog.Error("shared migration failed", "error", err)
		os.Exit(1)
	}

	// Audit log handler (ERROR+ async batch into audit_logs)
	auditHandler := logging.NewAuditHandler(database.DB)
	slog.SetDefault(slog.New(logging.NewMultiHandler(
		slog.NewJSONHandler(os.Stdout, &slog.HandlerOptions{Level: slog.LevelInfo}),
		auditHandler,
	)))

	// Audit log cleanup (30-day retention)
	cleanupDone := make(chan struct{})
	logging.StartCleanup(database.DB, cleanupDone)

	// Identity, profiles, session gate
	provider := identity.NewService(database.DB, cfg)
	profileRepo := profiles.NewRepository(database.DB)
	resolver := profiles.NewResolver(profileRepo)
	gate := session.NewGate(resolver)
	provider.Subscribe(gate.HandleAuthEvent)

	// Object storage; in-memory fallback keeps local development working
	// without a bucket.
	var store storage.ObjectStore
	if cfg.StorageURL != "" {
		store = storage.NewBucketClient(cfg)
	} else {
		slog.Warn("STORAGE_URL not set, using in-memory object store")
		store = storage.NewMemoryStore()
	}

	accountsSvc := accounts.NewService(provider, profileRepo)
	uploader := uploads.NewCoordinator(
		store,
		uploads.NewRequestStore(database.DB),
		uploads.NewResultStore(database.DB),
		uploads.NewFileStore(database.DB),
	)

	deps := sections.Deps{
		DB:       database.DB,
		Profiles: profileRepo,
		Store:    store,
		Uploader: uploader,
	}

	// Role sections
	roleSections := []sections.Section{
		patient.New(),
		doctor.New(),
		lab.New(),
	}

	// Migrate section models
	for _, s := range roleSections {
		if models := s.Models(); len(models) > 0 {
			if err := database.MigrateModels(models); err != nil {
				slog.Error("section migration failed", "section", string(s.ID()), "error", err)
				os.Exit(1)
			}
			slog.Info("section migrated", "section", string(s.ID()), "models", len(models))
		}
	}

	// Handlers
	authHandler := handlers.NewAuthHandler(accountsSvc, provider, resolver, gate)
	sessionHandler := handlers.NewSessionHandler(provider, gate)
	healthHandler := handlers.NewHealthHandler()

	// Sentry error tracking
	if dsn := os.Getenv("SENTRY_DSN"); dsn != "" {
		if err := sentry.Init(sentry.ClientOptions{
			Dsn:              dsn,
			EnableTracing:    true,
			TracesSampleRate: 0.2,
			Environment:      os.Getenv("APP_ENV"),
		}); err != nil {
			slog.Error("sentry init failed", "error", err)
		} else {
			defer sentry.Flush(2 * time.Second)
		}
	}

	// Fiber app
	app := fiber.New(fiber.Config{
		BodyLimit:    12 * 1024 * 1024,
		ErrorHandler: customErrorHandler,
	})

	// Sentry middleware
	app.Use(sentryfiber.New(sentryfiber.Options{
		Repanic:         true,
		WaitForDelivery: false,
	}))

	// Global middleware
	app.Use(recover.New())
	app.Use(requestid.New())
	app.Use(fiberlogger.New(fiberlogger.Config{
		Format: "${time} | ${status} | ${latency} | ${ip} | ${method} | ${path}\n",
	}))
	app.Use(middleware.CORS(cfg))
	app.Use(func(c *fiber.Ctx) error {
		c.Set("X-Content-Type-Options", "nosniff")
		c.Set("X-Frame-Options", "DENY")
		c.Set("X-XSS-Protection", "1; mode=block")
		return c.Next()
	})

	// Routes
	routes.Setup(app, cfg, deps, authHandler, sessionHandler, healthHandler, roleSections)

	// Graceful shutdown
	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)

	go func() {
		slog.Info("server starting", "port", cfg.Port)
		if err := app.Listen(":" + cfg.Port); err != nil {
			slog.Error("server failed to start", "error", err)
			os.Exit(1)
		}
	}()

	<-quit
	slog.Info("shutting down server...")

	close(cleanupDone)
	auditHandler.Stop()
	sentry.Flush(2 * time.Second)

	if err := app.Shutdown(); err != nil {
		slog.Error("server shutdown error", "error", err)
	}

	// Close database connections
	if sqlDB, err := database.DB.DB(); err == nil {
		if err := sqlDB.Close(); err != nil {
			slog.Error("database close error", "error", err)
		}
	}

	slog.Info("server stopped")
}

func customErrorHandler(c *fiber.Ctx, err error) error {
	code := fiber.StatusInternalServerError
	message := "Internal server error"
	if e, ok := err.(*fiber.Error); ok {
		code = e.Code
		message = e.Message
	}

	// Only expose error details for client errors (4xx), not server errors (5xx)
	if code >= 500 {
		slog.Error("unhandled server error", "method", c.Method(), "path", c.Path(), "error", err.Error())
		message = "Internal server error"
	}

	return c.Status(code).JSON(fiber.Map{
		"error":   true,
		"message": message,
	})
}
