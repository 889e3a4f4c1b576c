package main

import (
	"context"
	"log"
	"os/signal"
	"syscall"
	"time"

	httpapi "github.com/i474232898/resort-conditions-aggregation/internal/api/http"
	"github.com/i474232898/resort-conditions-aggregation/internal/app"
	"github.com/i474232898/resort-conditions-aggregation/internal/config"
	"github.com/i474232898/resort-conditions-aggregation/internal/observability"
	"github.com/i474232898/resort-conditions-aggregation/internal/scheduler"
)

func main() {
	// Load configuration.
	cfg, err := config.Load()
	if err != nil {
		log.Fatalf("failed to load config: %v", err)
	}

	logger, err := observability.NewLogger(cfg.LogLevel)
	if err != nil {
		log.Fatalf("failed to create logger: %v", err)
	}
	defer func() { _ = logger.Sync() }()

	metrics := observability.NewMetrics()

	// Core service orchestrating the upstream fallback chains.
	service := app.NewService(cfg, logger, metrics)

	// Scheduler that periodically probes upstream availability.
	sched := scheduler.New(service, app.ProbeResort(cfg), cfg.ProbeInterval, cfg.HTTPTimeout*4, logger)
	if err := sched.Start(); err != nil {
		logger.Fatalw("failed to start scheduler", "error", err)
	}
	defer sched.Stop()

	server := httpapi.NewApp(service)

	go func() {
		logger.Infow("listening", "port", cfg.Port)
		if err := server.Listen(":" + cfg.Port); err != nil {
			logger.Errorw("fiber server stopped", "error", err)
		}
	}()

	// Wait for termination signal
	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	<-ctx.Done()
	logger.Info("shutting down")

	shutdownCtx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()

	if err := server.ShutdownWithContext(shutdownCtx); err != nil {
		logger.Errorw("error during shutdown", "error", err)
	}
}
