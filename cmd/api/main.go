package main

import (
	"context"
	"fmt"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"candle-labels/internal/asset"
	"candle-labels/internal/auth"
	"candle-labels/internal/config"
	"candle-labels/internal/database"
	"candle-labels/internal/handler"
	"candle-labels/internal/repository"
	"candle-labels/internal/router"
	"candle-labels/internal/service"

	"github.com/joho/godotenv"
)

func main() {
	if err := run(); err != nil {
		fmt.Fprintf(os.Stderr, "Error: %v\n", err)
		os.Exit(1)
	}
}

func run() error {
	// .env is optional; real environment variables win
	_ = godotenv.Load()

	cfg, err := config.Load()
	if err != nil {
		return fmt.Errorf("failed to load configuration: %w", err)
	}

	logger := config.NewLogger(cfg.Logger)
	logger.Info().Msg("starting candle label API server")

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	pool, err := database.NewPool(ctx, cfg.Database, logger)
	if err != nil {
		return fmt.Errorf("failed to initialize database: %w", err)
	}
	defer pool.Close()

	if err := database.Migrate(ctx, pool, logger); err != nil {
		return fmt.Errorf("failed to migrate database: %w", err)
	}

	// Repositories
	candleRepo := repository.NewCandleRepository(pool, logger)
	categoryRepo := repository.NewCategoryRepository(pool, logger)
	labelSetRepo := repository.NewLabelSetRepository(pool, logger)

	// Asset storage: local disk, optionally fronted by S3
	fileStore := asset.NewFileStore(cfg.Uploads.Path, logger)
	store := fileStore
	if cfg.S3.Enabled {
		s3Store, err := asset.NewS3Store(ctx, cfg.S3.Bucket, cfg.S3.Region, cfg.S3.Prefix, logger)
		if err != nil {
			logger.Warn().
				Err(err).
				Msg("failed to initialise S3 store, falling back to local file system only")
		} else {
			store = asset.NewFallbackStore(s3Store, fileStore, true, logger)
		}
	} else {
		logger.Info().Str("path", cfg.Uploads.Path).Msg("using local file system for uploads (S3 disabled)")
	}

	tokens := auth.NewTokenManager(cfg.Auth.JWTSecret, cfg.Auth.TokenTTL)
	authenticator := auth.NewAuthenticator(cfg.Auth.AdminLogin, cfg.Auth.AdminPasswordHash, tokens, logger)

	// Services
	candleService := service.NewCandleService(candleRepo, categoryRepo, logger)
	categoryService := service.NewCategoryService(categoryRepo, logger)
	labelSetService := service.NewLabelSetService(labelSetRepo, candleRepo, logger)
	labelService := service.NewLabelService(
		candleRepo,
		labelSetRepo,
		asset.NewInliner(store, logger),
		service.LabelDefaults{
			Logo:          cfg.Labels.DefaultLogo,
			QR:            cfg.Labels.DefaultQR,
			Uncategorized: cfg.Labels.Uncategorized,
		},
		logger,
	)
	importService := service.NewImportService(candleRepo, categoryRepo, logger)
	uploadService := service.NewUploadService(store, logger)

	handlers := router.Handlers{
		Auth:     handler.NewAuthHandler(authenticator, logger),
		Candle:   handler.NewCandleHandler(candleService, logger),
		Category: handler.NewCategoryHandler(categoryService, logger),
		Label:    handler.NewLabelHandler(labelService, labelSetService, logger),
		File:     handler.NewFileHandler(importService, uploadService, cfg.Uploads.MaxUploadBytes(), logger),
	}

	mux := router.New(handlers, router.Options{
		Tokens:         tokens,
		AllowedOrigins: cfg.CORS.AllowedOrigins,
	}, logger)

	server := &http.Server{
		Addr:         cfg.Server.Address(),
		Handler:      mux,
		ReadTimeout:  30 * time.Second,
		WriteTimeout: 60 * time.Second,
		IdleTimeout:  60 * time.Second,
	}

	serverErrors := make(chan error, 1)

	go func() {
		logger.Info().
			Str("address", cfg.Server.Address()).
			Msg("HTTP server started")
		serverErrors <- server.ListenAndServe()
	}()

	shutdown := make(chan os.Signal, 1)
	signal.Notify(shutdown, os.Interrupt, syscall.SIGTERM)

	select {
	case err := <-serverErrors:
		return fmt.Errorf("server error: %w", err)

	case sig := <-shutdown:
		logger.Info().
			Str("signal", sig.String()).
			Msg("shutdown signal received, starting graceful shutdown")

		shutdownCtx, shutdownCancel := context.WithTimeout(context.Background(), 30*time.Second)
		defer shutdownCancel()

		if err := server.Shutdown(shutdownCtx); err != nil {
			logger.Error().Err(err).Msg("failed to shutdown server gracefully")
			if closeErr := server.Close(); closeErr != nil {
				logger.Error().Err(closeErr).Msg("failed to close server")
			}
			return fmt.Errorf("server shutdown failed: %w", err)
		}

		logger.Info().Msg("server shutdown completed")
	}

	return nil
}
