package main

import (
	"context"
	"fmt"
	"net/http"
	"os"
	"os/signal"
	"syscall"

	"github.com/prometheus/client_golang/prometheus/promhttp"
	"go.uber.org/zap"

	"github.com/taskmind-ai/taskmind/agent/store"
	"github.com/taskmind-ai/taskmind/api/handlers"
	"github.com/taskmind-ai/taskmind/config"
	"github.com/taskmind-ai/taskmind/internal/metrics"
	"github.com/taskmind-ai/taskmind/internal/server"
	"github.com/taskmind-ai/taskmind/internal/telemetry"
)

// Server wires the configuration, agent store, handlers and HTTP listeners
// into a runnable service.
type Server struct {
	cfg       *config.Config
	logger    *zap.Logger
	telemetry *telemetry.Providers

	collector *metrics.Collector
	store     store.AgentStore

	httpServer    *server.Server
	metricsServer *server.Server

	rateLimiterCancel context.CancelFunc
}

// NewServer creates the service from a resolved configuration.
func NewServer(cfg *config.Config, logger *zap.Logger, providers *telemetry.Providers) *Server {
	return &Server{
		cfg:       cfg,
		logger:    logger,
		telemetry: providers,
	}
}

// Start opens the agent store, ensures its schema, and brings up the API
// and metrics listeners.
func (s *Server) Start() error {
	s.collector = metrics.NewCollector("taskmind", nil, s.logger)

	st, err := store.NewAgentStore(s.cfg.Store, s.logger)
	if err != nil {
		return fmt.Errorf("failed to create agent store: %w", err)
	}
	s.store = st

	ctx := context.Background()
	if err := st.EnsureSchema(ctx); err != nil {
		st.Close()
		return fmt.Errorf("failed to ensure store schema: %w", err)
	}

	handler := s.buildHandler()

	s.httpServer = server.New(handler, server.Config{
		Addr:            fmt.Sprintf(":%d", s.cfg.Server.HTTPPort),
		ReadTimeout:     s.cfg.Server.ReadTimeout,
		WriteTimeout:    s.cfg.Server.WriteTimeout,
		IdleTimeout:     s.cfg.Server.IdleTimeout,
		MaxHeaderBytes:  1 << 20,
		ShutdownTimeout: s.cfg.Server.ShutdownTimeout,
	}, s.logger)

	if err := s.httpServer.Start(); err != nil {
		st.Close()
		return fmt.Errorf("failed to start API server: %w", err)
	}

	if s.cfg.Server.MetricsPort > 0 {
		metricsMux := http.NewServeMux()
		metricsMux.Handle("/metrics", promhttp.Handler())

		s.metricsServer = server.New(metricsMux, server.Config{
			Addr:            fmt.Sprintf(":%d", s.cfg.Server.MetricsPort),
			ShutdownTimeout: s.cfg.Server.ShutdownTimeout,
		}, s.logger.With(zap.String("listener", "metrics")))

		if err := s.metricsServer.Start(); err != nil {
			s.logger.Warn("failed to start metrics server", zap.Error(err))
			s.metricsServer = nil
		}
	}

	s.logger.Info("TaskMind server started",
		zap.Int("http_port", s.cfg.Server.HTTPPort),
		zap.Int("metrics_port", s.cfg.Server.MetricsPort),
		zap.String("store_type", string(s.cfg.Store.Type)),
	)

	return nil
}

// buildHandler assembles the route table and middleware chain.
func (s *Server) buildHandler() http.Handler {
	workflowHandler := handlers.NewWorkflowHandler(s.store, s.cfg.Workflow, s.logger, s.collector)
	agentHandler := handlers.NewAgentHandler(s.store, s.logger)

	healthHandler := handlers.NewHealthHandler(s.logger)
	healthHandler.RegisterCheck(handlers.NewStoreHealthCheck("agent_store", s.store.Ping))

	mux := http.NewServeMux()
	mux.HandleFunc("GET /health", healthHandler.HandleHealth)
	mux.HandleFunc("GET /healthz", healthHandler.HandleHealth)
	mux.HandleFunc("GET /ready", healthHandler.HandleReady)
	mux.HandleFunc("GET /version", healthHandler.HandleVersion(Version, BuildTime, GitCommit))

	mux.HandleFunc("POST /api/v1/workflows/execute", workflowHandler.HandleExecute)
	mux.HandleFunc("GET /api/v1/agents", agentHandler.HandleList)
	mux.HandleFunc("GET /api/v1/agents/{id}", agentHandler.HandleGet)

	rlCtx, cancel := context.WithCancel(context.Background())
	s.rateLimiterCancel = cancel

	middlewares := []Middleware{
		Recovery(s.logger),
		RequestID(),
		SecurityHeaders(),
		RequestLogger(s.logger),
		OTelTracing("taskmind-http"),
		MetricsMiddleware(s.collector),
	}
	if len(s.cfg.Server.CORSAllowedOrigins) > 0 {
		middlewares = append(middlewares, CORS(s.cfg.Server.CORSAllowedOrigins))
	}
	if s.cfg.Server.RateLimitRPS > 0 {
		middlewares = append(middlewares, RateLimiter(rlCtx, s.cfg.Server.RateLimitRPS, s.cfg.Server.RateLimitBurst))
	}

	return Chain(mux, middlewares...)
}

// WaitForShutdown blocks until SIGINT/SIGTERM or a listener failure, then
// shuts everything down in order.
func (s *Server) WaitForShutdown() {
	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
	defer signal.Stop(quit)

	select {
	case sig := <-quit:
		s.logger.Info("received shutdown signal", zap.String("signal", sig.String()))
	case err := <-s.httpServer.Errors():
		if err != nil {
			s.logger.Error("API server exited unexpectedly", zap.Error(err))
		}
	}

	s.Shutdown()
}

// Shutdown stops listeners, flushes telemetry and closes the store.
func (s *Server) Shutdown() {
	ctx := context.Background()

	if s.rateLimiterCancel != nil {
		s.rateLimiterCancel()
	}

	if s.httpServer != nil {
		if err := s.httpServer.Shutdown(ctx); err != nil {
			s.logger.Error("API server shutdown failed", zap.Error(err))
		}
	}
	if s.metricsServer != nil {
		if err := s.metricsServer.Shutdown(ctx); err != nil {
			s.logger.Error("metrics server shutdown failed", zap.Error(err))
		}
	}

	if s.telemetry != nil {
		if err := s.telemetry.Shutdown(ctx); err != nil {
			s.logger.Warn("telemetry shutdown failed", zap.Error(err))
		}
	}

	if s.store != nil {
		if err := s.store.Close(); err != nil {
			s.logger.Error("agent store close failed", zap.Error(err))
		}
	}
}
