package main

import (
	"context"
	"errors"
	"log/slog"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/getsentry/sentry-go"
	sentryfiber "github.com/getsentry/sentry-go/fiber"

	"github.com/ahmetcoskunkizilkaya/realestate-backend/internal/apps"
	"github.com/ahmetcoskunkizilkaya/realestate-backend/internal/apps/favorites"
	"github.com/ahmetcoskunkizilkaya/realestate-backend/internal/apps/listings"
	"github.com/ahmetcoskunkizilkaya/realestate-backend/internal/apps/messages"
	"github.com/ahmetcoskunkizilkaya/realestate-backend/internal/cache"
	"github.com/ahmetcoskunkizilkaya/realestate-backend/internal/config"
	"github.com/ahmetcoskunkizilkaya/realestate-backend/internal/database"
	"github.com/ahmetcoskunkizilkaya/realestate-backend/internal/events"
	"github.com/ahmetcoskunkizilkaya/realestate-backend/internal/handlers"
	"github.com/ahmetcoskunkizilkaya/realestate-backend/internal/imagestore"
	"github.com/ahmetcoskunkizilkaya/realestate-backend/internal/logging"
	"github.com/ahmetcoskunkizilkaya/realestate-backend/internal/mailer"
	"github.com/ahmetcoskunkizilkaya/realestate-backend/internal/middleware"
	"github.com/ahmetcoskunkizilkaya/realestate-backend/internal/routes"
	"github.com/ahmetcoskunkizilkaya/realestate-backend/internal/services"
	"github.com/gofiber/fiber/v2"
	fiberlogger "github.com/gofiber/fiber/v2/middleware/logger"
	"github.com/gofiber/fiber/v2/middleware/recover"
	"github.com/gofiber/fiber/v2/middleware/requestid"
)

// Ten 7MB images plus form fields.
const bodyLimit = 75 * 1024 * 1024

func runServer() error {
	// Structured logging (JSON to stdout)
	logging.Setup()

	cfg := config.Load()

	if cfg.JWTSecret == "" {
		return errors.New("JWT_SECRET environment variable is required")
	}
	if cfg.DBPassword == "" {
		return errors.New("DB_PASSWORD environment variable is required")
	}

	ctx := context.Background()

	// Database
	db, err := database.Connect(cfg)
	if err != nil {
		return err
	}
	defer func() {
		if sqlDB, err := db.DB(); err == nil {
			if err := sqlDB.Close(); err != nil {
				slog.Error("database close error", "error", err)
			}
		}
	}()

	if err := database.MigrateModels(db, database.SharedModels()); err != nil {
		return err
	}

	// PostgreSQL log handler (ERROR+ async batch)
	pgLogHandler := logging.NewPGHandler(db)
	defer pgLogHandler.Stop()
	slog.SetDefault(slog.New(logging.NewMultiHandler(
		logging.NewStdoutHandler(),
		pgLogHandler,
	)))

	cleanupDone := make(chan struct{})
	defer close(cleanupDone)
	logging.StartCleanup(db, cfg.LogRetentionDays, cleanupDone)

	// Image store
	images, err := imagestore.NewMinIO(ctx, imagestore.MinIOConfig{
		Endpoint:  cfg.MinIOEndpoint,
		AccessKey: cfg.MinIOAccessKey,
		SecretKey: cfg.MinIOSecretKey,
		Bucket:    cfg.MinIOBucket,
		UseSSL:    cfg.MinIOUseSSL,
		PublicURL: cfg.MinIOPublicURL,
	})
	if err != nil {
		return err
	}

	// Listing cache (optional)
	var listingCache cache.ListingCache = cache.Noop{}
	if cfg.RedisAddr != "" {
		redisCache, err := cache.NewRedis(ctx, cfg.RedisAddr, cfg.RedisPassword, cfg.ListingCacheTTL)
		if err != nil {
			slog.Warn("redis unavailable, listing cache disabled", "addr", cfg.RedisAddr, "error", err)
		} else {
			defer redisCache.Close()
			listingCache = redisCache
		}
	}

	// Domain events (optional)
	var publisher events.Publisher = events.Noop{}
	if cfg.NATSURL != "" {
		natsPublisher, err := events.NewNATS(cfg.NATSURL)
		if err != nil {
			slog.Warn("nats unavailable, events disabled", "url", cfg.NATSURL, "error", err)
		} else {
			defer natsPublisher.Close()
			publisher = natsPublisher
		}
	}

	// Mail
	var mail mailer.Mailer = mailer.LogMailer{}
	if cfg.SMTPUser != "" {
		mail = mailer.NewSMTPMailer(mailer.SMTPConfig{
			Host:     cfg.SMTPHost,
			Port:     cfg.SMTPPort,
			User:     cfg.SMTPUser,
			Password: cfg.SMTPPassword,
			From:     cfg.SMTPFrom,
		})
	}

	// Services
	tokens := services.NewTokenIssuer(cfg.JWTSecret, cfg.JWTExpiry)
	google := services.NewGoogleVerifier(cfg.GoogleClientID, services.GoogleJWKSURL)
	authService := services.NewAuthService(db, tokens, images, google, mail, cfg.FrontendURL)
	listingService := listings.NewListingService(db, images, listingCache, publisher)
	messageService := messages.NewMessageService(db, services.NewContentFilter(), publisher)

	modules := []apps.Module{
		listings.New(listingService),
		favorites.New(db),
		messages.New(messageService),
	}

	// Migrate module models
	for _, m := range modules {
		if models := m.Models(); len(models) > 0 {
			if err := database.MigrateModels(db, models); err != nil {
				slog.Error("module migration failed", "module", m.ID(), "error", err)
				return err
			}
			slog.Info("module migrated", "module", m.ID(), "models", len(models))
		}
	}

	// Handlers
	authHandler := handlers.NewAuthHandler(authService, tokens.TTL(), cfg.CookieSecure)
	healthHandler := handlers.NewHealthHandler(db)
	adminHandler := handlers.NewAdminHandler(db)

	// Sentry error tracking
	if dsn := os.Getenv("SENTRY_DSN"); dsn != "" {
		if err := sentry.Init(sentry.ClientOptions{
			Dsn:              dsn,
			EnableTracing:    true,
			TracesSampleRate: 0.2,
			Environment:      cfg.AppEnv,
		}); err != nil {
			slog.Error("sentry init failed", "error", err)
		} else {
			defer sentry.Flush(2 * time.Second)
		}
	}

	// Fiber app
	app := fiber.New(fiber.Config{
		BodyLimit:    bodyLimit,
		ErrorHandler: handlers.ErrorHandler(!cfg.IsProduction()),
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
		Format: "${time} | ${status} | ${latency} | ${ip} | ${method} | ${path} | ${respHeader:X-Request-ID}\n",
	}))
	app.Use(middleware.CORS(cfg))
	app.Use(middleware.SecurityHeaders())
	app.Use(middleware.RequestTimeout(cfg.RequestTimeout))

	routes.Setup(app, cfg, db, authHandler, healthHandler, adminHandler, modules)

	// Graceful shutdown
	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)

	listenErr := make(chan error, 1)
	go func() {
		slog.Info("server starting", "port", cfg.Port)
		listenErr <- app.Listen(":" + cfg.Port)
	}()

	select {
	case err := <-listenErr:
		slog.Error("server failed to start", "error", err)
		return err
	case <-quit:
	}

	slog.Info("shutting down server...")
	if err := app.ShutdownWithTimeout(10 * time.Second); err != nil {
		slog.Error("server shutdown error", "error", err)
	}

	slog.Info("server stopped")
	return nil
}
