// Command mcp-server serves the diagnosis tools over stdio using the full
// configured stack (Postgres knowledge base, cache tiers, configured history).
package main

import (
	"context"
	"log"
	"os"
	"os/signal"
	"syscall"

	"github.com/joho/godotenv"

	"github.com/sidirok-cf-server/internal/app"
	"github.com/sidirok-cf-server/internal/config"
	"github.com/sidirok-cf-server/internal/logging"
	"github.com/sidirok-cf-server/internal/mcp"
)

func main() {
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
	// stdout belongs to the MCP transport
	cfg.Logging.Output = "stderr"
	logger := logging.NewLogger(cfg.Logging)

	ctx, cancel := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer cancel()

	deps, err := app.New(ctx, cfg, logger)
	if err != nil {
		logger.WithError(err).Fatal("Failed to initialise dependencies")
	}
	defer deps.Close()

	userID := os.Getenv("SIDIROK_USER_ID")
	if userID == "" {
		userID = "local"
	}

	mcpServer, err := mcp.NewServer(mcp.Options{
		Knowledge: deps.Knowledge,
		Diagnosis: deps.Diagnosis,
		History:   deps.History,
		UserID:    userID,
		ExportDir: os.Getenv("SIDIROK_EXPORT_DIR"),
		Logger:    logger,
	})
	if err != nil {
		logger.WithError(err).Fatal("Failed to create MCP server")
	}

	if err := mcpServer.Start(ctx); err != nil {
		logger.WithError(err).Error("MCP server failed")
		deps.Close()
		os.Exit(1)
	}

	logger.Info("MCP server stopped")
}
