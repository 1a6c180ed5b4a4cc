// Package app wires configuration into the stores, caches and services shared
// by the HTTP server and the full MCP server.
package app

import (
	"context"
	"fmt"
	"os"
	"path/filepath"

	"github.com/sirupsen/logrus"

	"github.com/sidirok-cf-server/internal/api"
	"github.com/sidirok-cf-server/internal/cache"
	"github.com/sidirok-cf-server/internal/catalog"
	"github.com/sidirok-cf-server/internal/config"
	"github.com/sidirok-cf-server/internal/database"
	"github.com/sidirok-cf-server/internal/domain"
	"github.com/sidirok-cf-server/internal/history"
	"github.com/sidirok-cf-server/internal/metrics"
	"github.com/sidirok-cf-server/internal/repository"
	"github.com/sidirok-cf-server/internal/service"
	"github.com/sidirok-cf-server/pkg/certainty"
)

// History backends.
const (
	HistoryPostgres = "postgres"
	HistorySQLite   = "sqlite"
	HistoryNone     = "none"
)

// App holds the long-lived dependencies of a server process.
type App struct {
	Config    *domain.Config
	Logger    *logrus.Logger
	Metrics   *metrics.Metrics
	Knowledge *service.KnowledgeService
	Diagnosis *service.DiagnosisService
	History   history.Store
	Checks    map[string]api.HealthCheck

	closers []func()
}

// New builds every dependency described by cfg. On error anything already
// opened is closed again.
func New(ctx context.Context, cfg *domain.Config, logger *logrus.Logger) (_ *App, err error) {
	a := &App{
		Config:  cfg,
		Logger:  logger,
		Metrics: metrics.New(),
		Checks:  make(map[string]api.HealthCheck),
	}
	defer func() {
		if err != nil {
			a.Close()
		}
	}()

	store, err := a.openKnowledgeStore(ctx)
	if err != nil {
		return nil, err
	}

	tiers := []cache.Tier{cache.NewMemoryCache(cfg.Cache.MemoryMaxItems, cfg.Cache.MemoryTTL)}
	if cfg.Cache.RedisEnabled {
		redisCache, err := cache.NewRedisCache(cfg.Cache)
		if err != nil {
			logger.WithError(err).Warn("Redis cache unavailable, continuing without it")
		} else {
			tiers = append(tiers, redisCache)
			a.Checks["redis"] = redisCache.Ping
			a.onClose(func() {
				if err := redisCache.Close(); err != nil {
					logger.WithError(err).Warn("Failed to close Redis client")
				}
			})
		}
	}

	if a.History, err = a.openHistory(); err != nil {
		return nil, err
	}

	engine := certainty.NewEngine(
		certainty.WithRiskParams(certainty.RiskParamsFromConfig(cfg.Engine.Risk)),
		certainty.WithMaxAlternatives(cfg.Engine.MaxAlternatives),
	)

	a.Knowledge = service.NewKnowledgeService(store, logger,
		service.WithCacheTiers(tiers...),
		service.WithKnowledgeMetrics(a.Metrics),
	)
	a.Diagnosis = service.NewDiagnosisService(a.Knowledge, engine, a.History, a.Metrics, logger)

	logger.WithFields(logrus.Fields{
		"database":    cfg.Database.Enabled,
		"cache_tiers": len(tiers),
		"history":     cfg.History.Backend,
	}).Info("Application dependencies ready")

	return a, nil
}

// openKnowledgeStore returns the Postgres repository when the database is
// enabled and the built-in catalog otherwise.
func (a *App) openKnowledgeStore(ctx context.Context) (domain.KnowledgeStore, error) {
	cfg := a.Config.Database
	if !cfg.Enabled {
		a.Logger.Info("Database disabled, serving the built-in knowledge base")
		return catalog.NewStore(), nil
	}

	if cfg.AutoMigrate {
		if err := database.Migrate(ctx, config.DatabaseURL(cfg), cfg.MigrationsPath, a.Logger); err != nil {
			return nil, fmt.Errorf("failed to run migrations: %w", err)
		}
	}

	db, err := database.NewConnection(ctx, database.ConfigFromDomain(cfg), a.Logger)
	if err != nil {
		return nil, err
	}
	a.onClose(db.Close)
	a.Checks["database"] = db.Health

	repo := repository.NewKnowledgeRepository(db.Pool, a.Logger)
	if cfg.SeedOnStart {
		result, err := repo.Seed(ctx, catalog.Default())
		if err != nil {
			return nil, fmt.Errorf("failed to seed knowledge base: %w", err)
		}
		a.Logger.WithFields(logrus.Fields{
			"symptoms": result.Symptoms,
			"diseases": result.Diseases,
			"rules":    result.Rules,
		}).Info("Knowledge base seeded")
	}
	return repo, nil
}

func (a *App) openHistory() (history.Store, error) {
	cfg := a.Config
	switch cfg.History.Backend {
	case HistoryPostgres:
		store, err := history.NewPostgresStoreFromURL(config.DatabaseURL(cfg.Database), cfg.Database)
		if err != nil {
			return nil, fmt.Errorf("failed to open postgres history: %w", err)
		}
		a.onClose(func() { store.Close() })
		return store, nil

	case HistorySQLite:
		if err := os.MkdirAll(filepath.Dir(cfg.History.SQLitePath), 0755); err != nil {
			return nil, fmt.Errorf("failed to create history directory: %w", err)
		}
		store, err := history.NewSQLiteStore(cfg.History.SQLitePath)
		if err != nil {
			return nil, fmt.Errorf("failed to open sqlite history: %w", err)
		}
		a.onClose(func() { store.Close() })
		return store, nil

	case HistoryNone, "":
		a.Logger.Info("Diagnosis history disabled")
		return nil, nil
	}
	return nil, fmt.Errorf("unknown history backend: %s", cfg.History.Backend)
}

func (a *App) onClose(fn func()) {
	a.closers = append(a.closers, fn)
}

// Close releases resources in reverse order of acquisition.
func (a *App) Close() {
	for i := len(a.closers) - 1; i >= 0; i-- {
		a.closers[i]()
	}
	a.closers = nil
}
