// Package main is the entry point for the AgriKlima API server.
//
// It loads configuration, connects to PostgreSQL (and optionally Redis),
// wires the repositories and domain services into the HTTP handlers, mounts
// the core chassis (middleware, routing, health checks), and serves until a
// shutdown signal arrives.
package main

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/redis/go-redis/v9"

	"agriklima/internal/api/handlers"
	"agriklima/internal/auth"
	"agriklima/internal/config"
	"agriklima/internal/core"
	"agriklima/internal/db"
	"agriklima/internal/farming"
	"agriklima/internal/weather"
)

func main() {
	if err := run(); err != nil {
		fmt.Fprintf(os.Stderr, "fatal: %v\n", err)
		os.Exit(1)
	}
}

// run encapsulates the startup lifecycle so main() can cleanly exit on error.
func run() error {
	cfg, err := config.Load()
	if err != nil {
		return fmt.Errorf("loading configuration: %w", err)
	}

	logger := newLogger(cfg.LogLevel)
	logger.Info("agriklima API starting",
		"environment", cfg.Environment,
		"service", cfg.Service,
		"port", cfg.Server.Port,
	)

	ctx := context.Background()

	pool, err := db.NewPool(ctx, cfg.Database)
	if err != nil {
		return fmt.Errorf("connecting to database: %w", err)
	}

	// Repositories.
	userRepo := db.NewUserRepository(pool)
	cropRepo := db.NewCropRepository(pool)
	pestRepo := db.NewPestRepository(pool)
	newsRepo := db.NewNewsRepository(pool)
	weatherRepo := db.NewWeatherRepository(pool)
	taskRepo := db.NewTaskRepository(pool)
	trackingRepo := db.NewTrackingRepository(pool)
	ruleSetRepo := db.NewRuleSetRepository(pool, pool)

	// Domain services.
	hasher := auth.NewPasswordHasher(cfg.Security.BcryptCost)
	tokens := auth.NewTokenService(
		[]byte(cfg.Auth.JWTSecret.Unmask()),
		cfg.Auth.TokenTTL,
		cfg.Auth.Issuer,
		nil,
	)
	ruleStore := farming.NewRuleStore(ruleSetRepo, nil, logger)

	var cache redis.UniversalClient
	if cfg.Redis.Addr != "" {
		cache = redis.NewClient(&redis.Options{
			Addr:     cfg.Redis.Addr,
			Password: cfg.Redis.Password.Unmask(),
			DB:       cfg.Redis.DB,
		})
		logger.Info("weather cache enabled", "addr", cfg.Redis.Addr)
	}

	provider := weather.NewProviderClient(cfg.Weather)
	weatherSvc := weather.NewService(
		weatherRepo,
		provider,
		cache,
		cfg.Redis.CacheTTL,
		cfg.Weather.MaxConcurrent,
		logger,
	)

	// Server chassis.
	srv, err := core.NewServer(cfg, logger)
	if err != nil {
		return fmt.Errorf("creating server: %w", err)
	}
	srv.Authenticator = tokens
	srv.HealthProbes = append(srv.HealthProbes, db.HealthProbe{Pool: pool})

	srv.OnShutdown(func(context.Context) error {
		pool.Close()
		return nil
	})
	if cache != nil {
		srv.OnShutdown(func(context.Context) error {
			return cache.Close()
		})
	}

	// Handlers.
	authHandler := handlers.NewAuthHandler(
		userRepo, hasher, tokens, srv.Validator,
		cfg.Security.MinPasswordLength, logger,
	)
	userAdminHandler := handlers.NewUserAdminHandler(userRepo, logger)
	cropHandler := handlers.NewCropHandler(cropRepo, srv.Validator, logger)
	pestHandler := handlers.NewPestHandler(pestRepo, srv.Validator, logger)
	newsHandler := handlers.NewNewsHandler(newsRepo, srv.Validator, logger)
	weatherHandler := handlers.NewWeatherHandler(weatherSvc, logger)
	taskHandler := handlers.NewTaskHandler(taskRepo, srv.Validator, logger)
	trackingHandler := handlers.NewTrackingHandler(trackingRepo, cropRepo, srv.Validator, nil, logger)
	conditionsHandler := handlers.NewConditionsHandler(ruleStore, weatherSvc, logger)

	srv.V1RouteRegistrars = append(srv.V1RouteRegistrars,
		func(r chi.Router) { authHandler.RegisterRoutes(r) },
		func(r chi.Router) { userAdminHandler.RegisterRoutes(r) },
		func(r chi.Router) { cropHandler.RegisterRoutes(r) },
		func(r chi.Router) { pestHandler.RegisterRoutes(r) },
		func(r chi.Router) { newsHandler.RegisterRoutes(r) },
		func(r chi.Router) { weatherHandler.RegisterRoutes(r) },
		func(r chi.Router) { taskHandler.RegisterRoutes(r) },
		func(r chi.Router) { trackingHandler.RegisterRoutes(r) },
		func(r chi.Router) { conditionsHandler.RegisterRoutes(r) },
	)

	srv.MountRoutes()

	return runHTTPServer(srv, cfg, logger)
}

// runHTTPServer starts the server with graceful shutdown on SIGINT/SIGTERM.
func runHTTPServer(srv *core.Server, cfg *config.Config, logger *slog.Logger) error {
	addr := ":" + cfg.Server.Port

	httpServer := &http.Server{
		Addr:              addr,
		Handler:           srv.Handler(),
		ReadHeaderTimeout: 10 * time.Second,
		ReadTimeout:       30 * time.Second,
		WriteTimeout:      30 * time.Second,
		IdleTimeout:       120 * time.Second,
	}

	serverErr := make(chan error, 1)
	go func() {
		logger.Info("HTTP server listening", "addr", addr)
		if err := httpServer.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			serverErr <- err
		}
		close(serverErr)
	}()

	shutdown := make(chan os.Signal, 1)
	signal.Notify(shutdown, syscall.SIGINT, syscall.SIGTERM)

	select {
	case sig := <-shutdown:
		logger.Info("shutdown signal received", "signal", sig.String())
	case err := <-serverErr:
		if err != nil {
			return fmt.Errorf("server error: %w", err)
		}
	}

	logger.Info("initiating graceful shutdown")
	ctx, cancel := context.WithTimeout(context.Background(), cfg.Server.ShutdownTimeout)
	defer cancel()

	if err := httpServer.Shutdown(ctx); err != nil {
		logger.Error("HTTP server shutdown error", "error", err)
	}
	if err := srv.Shutdown(ctx); err != nil {
		return fmt.Errorf("server shutdown: %w", err)
	}

	logger.Info("server stopped cleanly")
	return nil
}

// newLogger creates a structured JSON logger at the configured level.
func newLogger(level string) *slog.Logger {
	var lvl slog.Level
	switch level {
	case "debug":
		lvl = slog.LevelDebug
	case "warn":
		lvl = slog.LevelWarn
	case "error":
		lvl = slog.LevelError
	default:
		lvl = slog.LevelInfo
	}

	return slog.New(slog.NewJSONHandler(os.Stdout, &slog.HandlerOptions{Level: lvl}))
}
