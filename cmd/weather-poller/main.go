// Package main is the entry point for the AgriKlima weather poller.
//
// The poller refreshes the stored weather snapshot for every configured
// location on a fixed interval, fanning out provider fetches with a bounded
// level of concurrency. One failing location never blocks the others; a
// cycle only counts as failed when every location fails.
package main

import (
	"context"
	"fmt"
	"log/slog"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/redis/go-redis/v9"

	"agriklima/internal/config"
	"agriklima/internal/db"
	"agriklima/internal/weather"
)

func main() {
	if err := run(); err != nil {
		fmt.Fprintf(os.Stderr, "fatal: %v\n", err)
		os.Exit(1)
	}
}

func run() error {
	cfg, err := config.Load()
	if err != nil {
		return fmt.Errorf("loading configuration: %w", err)
	}

	logger := slog.New(slog.NewJSONHandler(os.Stdout, &slog.HandlerOptions{
		Level: slog.LevelInfo,
	}))
	logger.Info("weather poller starting",
		"environment", cfg.Environment,
		"interval", cfg.Weather.PollInterval.String(),
		"locations", cfg.Weather.Locations,
	)

	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	pool, err := db.NewPool(ctx, cfg.Database)
	if err != nil {
		return fmt.Errorf("connecting to database: %w", err)
	}
	defer pool.Close()

	var cache redis.UniversalClient
	if cfg.Redis.Addr != "" {
		cache = redis.NewClient(&redis.Options{
			Addr:     cfg.Redis.Addr,
			Password: cfg.Redis.Password.Unmask(),
			DB:       cfg.Redis.DB,
		})
		defer cache.Close()
	}

	svc := weather.NewService(
		db.NewWeatherRepository(pool),
		weather.NewProviderClient(cfg.Weather),
		cache,
		cfg.Redis.CacheTTL,
		cfg.Weather.MaxConcurrent,
		logger,
	)

	// Refresh immediately on startup, then on every tick.
	refresh(ctx, svc, cfg.Weather.Locations, logger)

	ticker := time.NewTicker(cfg.Weather.PollInterval)
	defer ticker.Stop()

	for {
		select {
		case <-ctx.Done():
			logger.Info("weather poller stopping")
			return nil
		case <-ticker.C:
			refresh(ctx, svc, cfg.Weather.Locations, logger)
		}
	}
}

// refresh runs one poll cycle and logs the outcome.
func refresh(ctx context.Context, svc *weather.Service, locations []string, logger *slog.Logger) {
	started := time.Now()
	ok, err := svc.Refresh(ctx, locations)
	if err != nil {
		logger.Error("refresh cycle failed", "error", err, "elapsed", time.Since(started).String())
		return
	}
	logger.Info("refresh cycle complete",
		"refreshed", ok,
		"total", len(locations),
		"elapsed", time.Since(started).String(),
	)
}
