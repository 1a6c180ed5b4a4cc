// Package main provides the lightweight entry point for the sidirok MCP server.
// It requires no external services: the knowledge base is built in and
// history is kept in SQLite under the data directory.
package main

import (
	"context"
	"log"
	"os/signal"
	"syscall"

	"github.com/sidirok-cf-server/internal/config"
	"github.com/sidirok-cf-server/internal/mcp"
)

func main() {
	// Load lightweight configuration
	cfg := config.LoadLiteConfig()

	server, err := mcp.NewLiteServer(cfg)
	if err != nil {
		log.Fatalf("Failed to create MCP server: %v", err)
	}
	defer server.Close()

	ctx, cancel := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer cancel()

	if err := server.Start(ctx); err != nil {
		server.Close()
		log.Fatalf("MCP server failed: %v", err)
	}
}
