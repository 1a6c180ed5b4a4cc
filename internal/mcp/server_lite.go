package mcp

import (
	"context"
	"fmt"

	"github.com/sirupsen/logrus"

	"github.com/sidirok-cf-server/internal/cache"
	"github.com/sidirok-cf-server/internal/catalog"
	litecfg "github.com/sidirok-cf-server/internal/config"
	"github.com/sidirok-cf-server/internal/domain"
	"github.com/sidirok-cf-server/internal/history"
	"github.com/sidirok-cf-server/internal/logging"
	"github.com/sidirok-cf-server/internal/service"
	"github.com/sidirok-cf-server/pkg/certainty"
)

// LiteServer is a lightweight MCP server that requires no external databases.
// It answers from the built-in knowledge base and keeps history in SQLite.
type LiteServer struct {
	*Server
	config       *litecfg.LiteConfig
	historyStore history.Store
	cache        *cache.MemoryCache
	logger       *logrus.Logger
}

// LiteServerOption is a functional option for LiteServer.
type LiteServerOption func(*LiteServer) error

// WithHistoryStore sets a custom history store.
func WithHistoryStore(store history.Store) LiteServerOption {
	return func(s *LiteServer) error {
		s.historyStore = store
		return nil
	}
}

// WithLogger sets a custom logger.
func WithLogger(logger *logrus.Logger) LiteServerOption {
	return func(s *LiteServer) error {
		s.logger = logger
		return nil
	}
}

// NewLiteServer creates a new lightweight MCP server instance.
func NewLiteServer(cfg *litecfg.LiteConfig, opts ...LiteServerOption) (*LiteServer, error) {
	server := &LiteServer{
		config: cfg,
		logger: logging.NewLogger(domain.LoggingConfig{
			Level:  cfg.LogLevel,
			Format: cfg.LogFormat,
			Output: "stderr",
		}),
	}

	for _, opt := range opts {
		if err := opt(server); err != nil {
			return nil, fmt.Errorf("failed to apply option: %w", err)
		}
	}

	if err := cfg.EnsureDataDir(); err != nil {
		return nil, fmt.Errorf("failed to create data directory: %w", err)
	}

	if server.historyStore == nil {
		store, err := history.NewSQLiteStore(cfg.HistoryDBPath())
		if err != nil {
			return nil, fmt.Errorf("failed to create history store: %w", err)
		}
		server.historyStore = store
	}

	server.cache = cache.NewMemoryCache(cfg.CacheMaxItems, cfg.CacheTTL)
	knowledge := service.NewKnowledgeService(catalog.NewStore(), server.logger, service.WithCacheTiers(server.cache))
	engine := certainty.NewEngine(certainty.WithMaxAlternatives(cfg.MaxAlternatives))
	diagnosis := service.NewDiagnosisService(knowledge, engine, server.historyStore, nil, server.logger)

	base, err := NewServer(Options{
		Knowledge: knowledge,
		Diagnosis: diagnosis,
		History:   server.historyStore,
		UserID:    cfg.UserID,
		ExportDir: cfg.ExportDir(),
		Logger:    server.logger,
	})
	if err != nil {
		server.historyStore.Close()
		return nil, err
	}
	server.Server = base

	server.logger.WithField("data_dir", cfg.DataDir).Info("Lite server initialized successfully")
	return server, nil
}

// Start serves the tools over stdio until ctx is cancelled.
func (s *LiteServer) Start(ctx context.Context) error {
	s.logger.Info("Starting sidirok MCP server (lite)")
	return s.Server.Start(ctx)
}

// Close cleans up server resources.
func (s *LiteServer) Close() error {
	if s.historyStore != nil {
		if err := s.historyStore.Close(); err != nil {
			s.logger.WithError(err).Error("Failed to close history store")
			return err
		}
	}
	return nil
}

// HistoryStore returns the history store for external access.
func (s *LiteServer) HistoryStore() history.Store {
	return s.historyStore
}

// Cache returns the knowledge snapshot cache.
func (s *LiteServer) Cache() *cache.MemoryCache {
	return s.cache
}
