// Command placeshare-server starts the placeshare HTTP API.
package main

import (
	"context"
	"errors"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/joho/godotenv"
	"go.uber.org/zap"

	"github.com/placeshare/placeshare/internal/config"
	"github.com/placeshare/placeshare/internal/geocode"
	"github.com/placeshare/placeshare/internal/migrate"
	"github.com/placeshare/placeshare/internal/repository/postgres"
	httpserver "github.com/placeshare/placeshare/internal/server/http"
	"github.com/placeshare/placeshare/internal/service"
	"github.com/placeshare/placeshare/internal/storage"
	"github.com/placeshare/placeshare/internal/token"
)

var (
	version   = "dev"
	buildDate = "unknown"
)

// main loads configuration, runs migrations, and starts the HTTP server.
func main() {
	// Best-effort .env load; real env and flags still win.
	_ = godotenv.Load()

	cfg, err := config.Load(os.Args[1:])
	if err != nil {
		os.Exit(2)
	}

	logger, _ := zap.NewProduction()
	defer func() { _ = logger.Sync() }()
	logger.Info("starting",
		zap.String("version", version),
		zap.String("buildDate", buildDate),
		zap.String("addr", cfg.HTTPAddr),
	)

	if cfg.JWTSecret == "" {
		logger.Fatal("missing jwt signing key (--jwt-key or JWT_SECRET)")
	}

	// Context with OS signals
	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	if err := migrate.Up(ctx, cfg.DatabaseDSN); err != nil {
		logger.Fatal("migrate up", zap.Error(err))
	}

	// DB pool
	db, err := postgres.New(ctx, cfg.DatabaseDSN)
	if err != nil {
		logger.Fatal("postgres.New", zap.Error(err))
	}
	defer db.Close()

	// External collaborators
	blobs, err := storage.New(ctx, storage.Options{
		Endpoint:  cfg.S3Endpoint,
		Region:    cfg.S3Region,
		Bucket:    cfg.S3Bucket,
		AccessKey: cfg.S3AccessKey,
		SecretKey: cfg.S3SecretKey,
		Timeout:   cfg.HTTPClientTimeout,
	})
	if err != nil {
		logger.Fatal("storage.New", zap.Error(err))
	}
	geo := geocode.New(cfg.GeocoderEndpoint, cfg.HTTPClientTimeout)

	// Repositories and services
	userRepo := postgres.NewUserRepo(db)
	placeRepo := postgres.NewPlaceRepo(db)

	issuer := token.NewIssuer([]byte(cfg.JWTSecret), cfg.TokenTTL)
	userSvc := service.NewUserService(userRepo, blobs, issuer, logger)
	placeSvc := service.NewPlaceService(placeRepo, userRepo, geo, blobs, logger)

	api := httpserver.New(userSvc, placeSvc, blobs, issuer, logger)
	srv := &http.Server{
		Addr:         cfg.HTTPAddr,
		Handler:      api.Handler(),
		ReadTimeout:  cfg.ReadTimeout,
		WriteTimeout: cfg.WriteTimeout,
	}

	errCh := make(chan error, 1)
	go func() {
		logger.Info("listening", zap.String("addr", cfg.HTTPAddr))
		errCh <- srv.ListenAndServe()
	}()

	// Wait for stop
	select {
	case <-ctx.Done():
		shutdownCtx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
		defer cancel()
		if err := srv.Shutdown(shutdownCtx); err != nil {
			_ = srv.Close()
		}
	case err := <-errCh:
		if !errors.Is(err, http.ErrServerClosed) {
			logger.Error("server error", zap.Error(err))
			os.Exit(1)
		}
	}

	logger.Info("shutdown complete")
}
