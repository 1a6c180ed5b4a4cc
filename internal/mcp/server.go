// Package mcp exposes the diagnosis engine as Model Context Protocol tools.
package mcp

import (
	"context"
	"errors"
	"fmt"

	"github.com/modelcontextprotocol/go-sdk/mcp"
	"github.com/sirupsen/logrus"

	"github.com/sidirok-cf-server/internal/history"
	"github.com/sidirok-cf-server/internal/service"
)

// Server identity reported during the MCP handshake.
const (
	ServerName    = "sidirok-cf-server"
	ServerVersion = "v1.0.0"
)

// Options are the collaborators a tool server is built from.
type Options struct {
	Knowledge *service.KnowledgeService
	Diagnosis *service.DiagnosisService
	// History backs export and import. It may be nil.
	History history.Store
	// UserID is recorded on diagnoses saved through the tools.
	UserID string
	// ExportDir receives history exports.
	ExportDir string
	Logger    *logrus.Logger
}

// Server represents the MCP server
type Server struct {
	mcpServer *mcp.Server
	knowledge *service.KnowledgeService
	diagnosis *service.DiagnosisService
	history   history.Store
	userID    string
	exportDir string
	logger    *logrus.Logger
}

// NewServer creates a new MCP server instance with every tool registered.
func NewServer(opts Options) (*Server, error) {
	if opts.Knowledge == nil || opts.Diagnosis == nil {
		return nil, errors.New("knowledge and diagnosis services are required")
	}
	logger := opts.Logger
	if logger == nil {
		logger = logrus.New()
	}

	server := &Server{
		knowledge: opts.Knowledge,
		diagnosis: opts.Diagnosis,
		history:   opts.History,
		userID:    opts.UserID,
		exportDir: opts.ExportDir,
		logger:    logger,
	}

	serverInfo := &mcp.Implementation{
		Name:    ServerName,
		Version: ServerVersion,
	}
	server.mcpServer = mcp.NewServer(serverInfo, nil)
	server.registerTools()

	return server, nil
}

// registerTools registers every tool with the MCP SDK.
func (s *Server) registerTools() {
	mcp.AddTool(s.mcpServer, &mcp.Tool{
		Name:        ToolDiagnoseSymptoms,
		Description: "Infer smoking-related diseases from reported symptoms using certainty factors, adjusted by the smoking risk profile.",
	}, s.handleDiagnoseSymptoms)

	mcp.AddTool(s.mcpServer, &mcp.Tool{
		Name:        ToolCalculateRiskFactor,
		Description: "Score the behavioural risk of a smoking profile (age, years smoked, cigarettes per day) between 0 and 1.",
	}, s.handleCalculateRiskFactor)

	mcp.AddTool(s.mcpServer, &mcp.Tool{
		Name:        ToolListSymptoms,
		Description: "List the symptoms that can be reported, optionally restricted to one category.",
	}, s.handleListSymptoms)

	mcp.AddTool(s.mcpServer, &mcp.Tool{
		Name:        ToolDiagnosisHistory,
		Description: "Browse saved diagnoses: list, get, delete, statistics, export or import.",
	}, s.handleDiagnosisHistory)

	s.logger.WithField("tool_count", len(toolNames)).Info("Registered MCP tools")
}

// Start serves the tools over stdio until ctx is cancelled.
func (s *Server) Start(ctx context.Context) error {
	s.logger.WithField("transport", "stdio").Info("Starting MCP server")

	if err := s.mcpServer.Run(ctx, &mcp.StdioTransport{}); err != nil && !errors.Is(err, context.Canceled) {
		return fmt.Errorf("MCP server failed: %w", err)
	}
	return nil
}
