package main

import (
	"context"
	"log"
	"os"
	"os/signal"
	"syscall"

	"github.com/joho/godotenv"

	"github.com/sidirok-cf-server/internal/api"
	"github.com/sidirok-cf-server/internal/app"
	"github.com/sidirok-cf-server/internal/config"
	"github.com/sidirok-cf-server/internal/logging"
)

func main() {
	// .env is optional
	if err := godotenv.Load(); err != nil && !os.IsNotExist(err) {
		log.Printf("Failed to load .env: %v", err)
	}

	// Load configuration
	configManager, err := config.NewManager()
	if err != nil {
		log.Fatalf("Failed to load configuration: %v", err)
	}

	// Validate configuration
	if err := configManager.Validate(); err != nil {
		log.Fatalf("Configuration validation failed: %v", err)
	}

	cfg := configManager.GetConfig()
	logger := logging.NewLogger(cfg.Logging)
	logger.WithField("addr", cfg.Server.Host).WithField("port", cfg.Server.Port).Info("Starting sidirok diagnosis server")

	// Setup graceful shutdown
	ctx, cancel := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer cancel()

	deps, err := app.New(ctx, cfg, logger)
	if err != nil {
		logger.WithError(err).Fatal("Failed to initialise dependencies")
	}
	defer deps.Close()

	server := api.NewServer(configManager, api.Dependencies{
		Knowledge: deps.Knowledge,
		Diagnosis: deps.Diagnosis,
		Metrics:   deps.Metrics,
		Logger:    logger,
		Checks:    deps.Checks,
	})

	if err := server.Start(ctx); err != nil {
		logger.WithError(err).Error("Server failed")
		deps.Close()
		os.Exit(1)
	}

	logger.Info("Server stopped")
}
