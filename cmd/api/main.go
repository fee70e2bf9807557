package main

import (
	"context"
	"fmt"
	"log/slog"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/joho/godotenv"

	"github.com/retroconnect/idverify/internal/account"
	"github.com/retroconnect/idverify/internal/admin"
	"github.com/retroconnect/idverify/internal/api"
	"github.com/retroconnect/idverify/internal/audit"
	"github.com/retroconnect/idverify/internal/config"
	"github.com/retroconnect/idverify/internal/database"
	"github.com/retroconnect/idverify/internal/events"
	"github.com/retroconnect/idverify/internal/notify"
	"github.com/retroconnect/idverify/internal/registration"
	"github.com/retroconnect/idverify/internal/repository"
	"github.com/retroconnect/idverify/internal/service"
	"github.com/retroconnect/idverify/internal/storage/backend"
	"github.com/retroconnect/idverify/internal/upload"
	"github.com/retroconnect/idverify/internal/vision"
)

func main() {
	if err := run(); err != nil {
		fmt.Fprintf(os.Stderr, "error: %v\n", err)
		os.Exit(1)
	}
}

func run() error {
	// A .env file is optional; real deployments set the environment directly.
	_ = godotenv.Load()

	// Load configuration
	cfg, err := config.Load()
	if err != nil {
		return fmt.Errorf("failed to load config: %w", err)
	}

	// Initialize logger
	logger := cfg.NewLogger(os.Stdout)
	slog.SetDefault(logger)

	logger.Info("starting ID Verify API",
		slog.String("environment", cfg.Environment),
		slog.Int("port", cfg.Port),
		slog.String("vision_provider", cfg.VisionProvider),
		slog.String("storage_provider", cfg.StorageProvider),
	)

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	pool, err := database.NewPool(ctx, database.DefaultPoolConfig(cfg.DatabaseURL))
	if err != nil {
		return fmt.Errorf("failed to connect to database: %w", err)
	}
	defer pool.Close()

	auditLogger := audit.NewSlogLogger(logger)

	visionProvider, err := vision.NewProvider(ctx, cfg, auditLogger)
	if err != nil {
		return fmt.Errorf("failed to create vision provider: %w", err)
	}

	store, err := backend.New(cfg)
	if err != nil {
		return fmt.Errorf("failed to create storage: %w", err)
	}

	var publisher service.VerificationPublisher = events.NoopPublisher{}
	if cfg.EventsEnabled() {
		natsPublisher, err := events.Connect(cfg.NATSURL, cfg.NATSSubject, logger)
		if err != nil {
			return err
		}
		defer natsPublisher.Close()
		publisher = natsPublisher
	}

	users := repository.NewUserRepository(pool)
	attempts := repository.NewVerificationAttemptRepository(pool)

	verifier := service.NewVerificationService(store, cfg.StorageBucket, visionProvider,
		service.WithAttemptRepository(attempts),
		service.WithPublisher(publisher),
		service.WithAuditLogger(auditLogger),
		service.WithLogger(logger),
	)

	mailConfig := notify.DefaultConfig()
	mailConfig.APIKey = cfg.ResendAPIKey
	mailConfig.BaseURL = cfg.ResendURL
	mailConfig.From = cfg.EmailFrom
	mailer := notify.NewClient(mailConfig, logger)

	moderation := service.NewModerationService(users, mailer, auditLogger, logger)

	submitter := registration.NewSubmitter(
		upload.NewCoordinator(store, cfg.StorageBucket, logger),
		verifier,
		account.NewService(users, logger),
		registration.WithTimeout(cfg.VerifyTimeout),
		registration.WithLogger(logger),
	)

	router := api.NewRouter(logger, &api.Dependencies{
		DB:           pool,
		Verifier:     verifier,
		Moderation:   moderation,
		Submitter:    submitter,
		Tokens:       admin.NewJWTService(cfg.AdminJWTSecret, cfg.AdminJWTIssuer, 24*time.Hour),
		RateLimitMax: cfg.VerifyRateLimit,
	})
	router.Setup()

	// Start server in goroutine
	errChan := make(chan error, 1)
	go func() {
		addr := fmt.Sprintf(":%d", cfg.Port)
		logger.Info("server listening", slog.String("addr", addr))
		if err := router.Listen(addr); err != nil {
			errChan <- err
		}
	}()

	// Wait for shutdown signal or error
	select {
	case <-ctx.Done():
		logger.Info("shutdown signal received")
	case err := <-errChan:
		return fmt.Errorf("server error: %w", err)
	}

	logger.Info("shutting down server...")
	if err := router.Shutdown(); err != nil {
		logger.Error("shutdown error", slog.Any("error", err))
	}

	logger.Info("server stopped")
	return nil
}
