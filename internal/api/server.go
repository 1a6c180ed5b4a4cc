package api

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/sirupsen/logrus"

	"github.com/sidirok-cf-server/internal/domain"
	"github.com/sidirok-cf-server/internal/metrics"
	"github.com/sidirok-cf-server/internal/middleware"
	"github.com/sidirok-cf-server/internal/service"
)

// Version is reported by the health endpoint.
const Version = "1.0.0"

// HealthCheck probes one dependency. A nil error means healthy.
type HealthCheck func(ctx context.Context) error

// Dependencies are the services the HTTP server exposes.
type Dependencies struct {
	Knowledge *service.KnowledgeService
	Diagnosis *service.DiagnosisService
	Metrics   *metrics.Metrics
	Logger    *logrus.Logger
	// Checks are run by /health, keyed by dependency name.
	Checks map[string]HealthCheck
}

// Server represents the HTTP server
type Server struct {
	configManager domain.ConfigManager
	router        *gin.Engine
	server        *http.Server

	knowledge *service.KnowledgeService
	diagnosis *service.DiagnosisService
	metrics   *metrics.Metrics
	checks    map[string]HealthCheck
	log       *logrus.Logger
}

// NewServer creates a new HTTP server instance
func NewServer(configManager domain.ConfigManager, deps Dependencies) *Server {
	cfg := configManager.GetConfig()

	switch cfg.Server.Mode {
	case gin.DebugMode, gin.TestMode:
		gin.SetMode(cfg.Server.Mode)
	default:
		gin.SetMode(gin.ReleaseMode)
	}

	logger := deps.Logger
	if logger == nil {
		logger = logrus.New()
	}

	router := gin.New()
	router.Use(middleware.CorrelationID())
	router.Use(middleware.Recovery(logger))
	router.Use(middleware.RequestLogger(logger))
	router.Use(middleware.SecurityHeaders())
	router.Use(middleware.CORS())
	if deps.Metrics != nil {
		router.Use(middleware.Metrics(deps.Metrics))
	}
	if cfg.RateLimit.Enabled {
		router.Use(middleware.RateLimit(middleware.NewRateLimiter(cfg.RateLimit.RequestsPerSecond, cfg.RateLimit.Burst)))
	}
	router.Use(middleware.RequestTimeout(cfg.Server.WriteTimeout))

	server := &Server{
		configManager: configManager,
		router:        router,
		knowledge:     deps.Knowledge,
		diagnosis:     deps.Diagnosis,
		metrics:       deps.Metrics,
		checks:        deps.Checks,
		log:           logger,
	}

	server.setupRoutes()

	return server
}

// Handler returns the routed handler, for tests and embedding.
func (s *Server) Handler() http.Handler {
	return s.router
}

// Start serves HTTP until ctx is cancelled, then shuts down gracefully.
func (s *Server) Start(ctx context.Context) error {
	cfg := s.configManager.GetServerConfig()
	addr := fmt.Sprintf("%s:%d", cfg.Host, cfg.Port)

	s.server = &http.Server{
		Addr:         addr,
		Handler:      s.router,
		ReadTimeout:  cfg.ReadTimeout,
		WriteTimeout: cfg.WriteTimeout,
		IdleTimeout:  cfg.IdleTimeout,
	}

	errCh := make(chan error, 1)
	go func() {
		s.log.WithField("addr", addr).Info("HTTP server listening")
		if err := s.server.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			errCh <- err
		}
		close(errCh)
	}()

	select {
	case err := <-errCh:
		if err != nil {
			return fmt.Errorf("failed to start server: %w", err)
		}
		return nil
	case <-ctx.Done():
	}

	timeout := cfg.ShutdownTimeout
	if timeout <= 0 {
		timeout = 30 * time.Second
	}
	shutdownCtx, cancel := context.WithTimeout(context.Background(), timeout)
	defer cancel()

	s.log.Info("Shutting down HTTP server")
	return s.server.Shutdown(shutdownCtx)
}

// setupRoutes configures the API routes
func (s *Server) setupRoutes() {
	s.router.GET("/health", s.handleHealth)
	if s.metrics != nil {
		s.router.GET("/metrics", gin.WrapH(s.metrics.Handler()))
	}

	v1 := s.router.Group("/api/v1")
	{
		v1.GET("/symptoms", s.handleListSymptoms)
		v1.GET("/symptoms/categories", s.handleSymptomCategories)
		v1.GET("/symptoms/:id", s.handleGetSymptom)

		v1.GET("/diseases", s.handleListDiseases)
		v1.GET("/diseases/:id", s.handleGetDisease)

		v1.GET("/rules", s.handleListRules)
		v1.GET("/rules/:id", s.handleGetRule)
		v1.POST("/rules", s.handleCreateRule)

		v1.POST("/diagnosis", s.handleDiagnose)
		v1.POST("/diagnosis/risk", s.handleRiskFactor)
		v1.GET("/diagnosis/history", s.handleListHistory)
		v1.GET("/diagnosis/history/:id", s.handleGetHistory)
		v1.DELETE("/diagnosis/history/:id", s.handleDeleteHistory)
		v1.GET("/diagnosis/statistics", s.handleStatistics)
	}
}

// handleHealth runs every dependency check. Any failure reports 503.
func (s *Server) handleHealth(c *gin.Context) {
	ctx, cancel := context.WithTimeout(c.Request.Context(), 5*time.Second)
	defer cancel()

	status := "healthy"
	code := http.StatusOK
	checks := make(map[string]string, len(s.checks))
	for name, check := range s.checks {
		if err := check(ctx); err != nil {
			s.log.WithError(err).WithField("dependency", name).Warn("Health check failed")
			checks[name] = "unavailable"
			status = "degraded"
			code = http.StatusServiceUnavailable
			continue
		}
		checks[name] = "ok"
	}

	c.JSON(code, gin.H{
		"status":    status,
		"timestamp": time.Now().UTC(),
		"version":   Version,
		"checks":    checks,
	})
}
