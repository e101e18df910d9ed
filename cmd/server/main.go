package main

import (
	"context"
	"errors"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/labstack/echo/v4"

	"github.com/anonto42/spire/backend/internal/router"
	"github.com/anonto42/spire/backend/internal/services"
	"github.com/anonto42/spire/backend/pkg/config"
	"github.com/anonto42/spire/backend/pkg/firebase"
	"github.com/anonto42/spire/backend/pkg/logger"
	"github.com/anonto42/spire/backend/pkg/pagination"
	"github.com/anonto42/spire/backend/pkg/storage"
)

func main() {
	// Load configuration
	cfg, err := config.Load()
	if err != nil {
		logger.L().Fatal().Err(err).Msg("failed to load configuration")
	}

	logger.Init(logger.Config{
		Level:       cfg.Log.Level,
		Pretty:      !cfg.IsProduction(),
		ServiceName: "spire-api",
	})
	l := logger.L()

	// Initialize database connections
	db, err := config.InitDB(cfg)
	if err != nil {
		l.Fatal().Err(err).Msg("failed to initialize databases")
	}
	defer db.CloseDB()

	ctx := context.Background()

	store, err := storage.New(ctx, storage.Config{
		Driver: cfg.Storage.Driver,
		S3: storage.S3Config{
			Endpoint:        cfg.Storage.Endpoint,
			Region:          cfg.Storage.Region,
			Bucket:          cfg.Storage.Bucket,
			AccessKeyID:     cfg.Storage.AccessKey,
			SecretAccessKey: cfg.Storage.SecretKey,
			UsePathStyle:    cfg.Storage.PathStyle,
			PublicURL:       cfg.Storage.PublicURL,
		},
		Local: storage.LocalConfig{BasePath: cfg.Storage.BasePath},
	})
	if err != nil {
		l.Fatal().Err(err).Msg("failed to initialize storage")
	}
	l.Info().Str("driver", cfg.Storage.Driver).Msg("storage initialized")

	// Firebase is optional; without it firebase-login answers 503.
	var verifier services.IDTokenVerifier
	if cfg.Firebase.CredentialsPath != "" {
		app, err := firebase.InitFirebase(ctx, cfg.Firebase.CredentialsPath)
		if err != nil {
			l.Fatal().Err(err).Msg("failed to initialize Firebase")
		}
		verifier = app.AuthClient
	} else {
		l.Warn().Msg("Firebase not configured, firebase-login is disabled")
	}

	e := echo.New()
	e.HideBanner = true
	e.HidePort = true

	config.SetupMiddleware(e, *l)

	err = router.SetupRoutes(ctx, e, router.Dependencies{
		DB:       db,
		Storage:  store,
		Firebase: verifier,
		Auth: services.AuthConfig{
			Secret: cfg.JWT.Secret,
			TTL:    cfg.JWT.TTL,
		},
		Pagination: pagination.Bounds{
			DefaultLimit: cfg.Pagination.DefaultLimit,
			MaxLimit:     cfg.Pagination.MaxLimit,
		},
		MongoDB: cfg.Mongo.Database,
	})
	if err != nil {
		l.Fatal().Err(err).Msg("failed to set up routes")
	}

	// Start server in goroutine
	go func() {
		l.Info().Str("port", cfg.Port).Msg("server listening")
		if err := e.Start(":" + cfg.Port); err != nil && !errors.Is(err, http.ErrServerClosed) {
			l.Fatal().Err(err).Msg("server error")
		}
	}()

	// Wait for interrupt signal
	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
	<-quit

	l.Info().Msg("shutting down server")

	shutdownCtx, cancel := context.WithTimeout(context.Background(), 15*time.Second)
	defer cancel()
	if err := e.Shutdown(shutdownCtx); err != nil {
		l.Error().Err(err).Msg("server forced to shutdown")
	}
	l.Info().Msg("server stopped")
}
