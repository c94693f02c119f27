// Package server exposes the pit wall engine over HTTP.
package server

import (
	"context"
	"fmt"
	"log/slog"
	"net/http"
	"sync"
	"time"

	"github.com/prometheus/client_golang/prometheus"

	"github.com/haskel/pitwall/internal/config"
	"github.com/haskel/pitwall/internal/engine"
	"github.com/haskel/pitwall/internal/metrics"
	"github.com/haskel/pitwall/internal/monitor"
	"github.com/haskel/pitwall/internal/server/middleware"
)

type Server struct {
	httpServer *http.Server
	engine     *engine.Engine
	aggregator *monitor.Aggregator
	recorder   metrics.Recorder
	gatherer   prometheus.Gatherer
	logger     *slog.Logger
	version    string
	authConfig *middleware.AuthConfig

	mu     sync.RWMutex
	config *config.Config
}

// New builds the server. agg may be nil, in which case /status reports no
// resource usage. rec and gatherer back the metrics endpoint; nil uses the
// no-op recorder and the default gatherer.
func New(cfg *config.Config, eng *engine.Engine, agg *monitor.Aggregator, rec metrics.Recorder, gatherer prometheus.Gatherer, logger *slog.Logger, version string) *Server {
	if rec == nil {
		rec = metrics.NopRecorder{}
	}

	authConfig := &middleware.AuthConfig{
		Enabled:  cfg.Auth.Enabled,
		User:     cfg.Auth.User,
		Password: cfg.Auth.Password,
	}

	s := &Server{
		engine:     eng,
		aggregator: agg,
		recorder:   rec,
		gatherer:   gatherer,
		logger:     logger,
		version:    version,
		authConfig: authConfig,
		config:     cfg,
	}

	rl := cfg.Server.RateLimit
	handler := middleware.Chain(
		s.setupRoutes(),
		middleware.Recovery(logger),
		middleware.RequestID(),
		middleware.Logging(logger, rec),
		middleware.SecurityHeaders(),
		middleware.RateLimit(middleware.RateLimitConfig{
			Enabled:           rl.Enabled,
			RequestsPerSecond: rl.RequestsPerSecond,
			Burst:             rl.Burst,
		}),
		middleware.MaxBody(cfg.Server.MaxBodyBytes),
		// /debug has its own auth.
		middleware.Auth(authConfig, "/health", "/debug/*"),
	)

	s.httpServer = &http.Server{
		Addr:         fmt.Sprintf("%s:%d", cfg.Server.Host, cfg.Server.Port),
		Handler:      handler,
		ReadTimeout:  10 * time.Second,
		WriteTimeout: 30 * time.Second,
		IdleTimeout:  60 * time.Second,
	}

	return s
}

// Handler returns the fully wrapped HTTP handler.
func (s *Server) Handler() http.Handler {
	return s.httpServer.Handler
}

// ReloadConfig applies the settings that can change at runtime and drops
// every cached model. Host, port, rate limits and routes need a restart.
func (s *Server) ReloadConfig(cfg *config.Config) {
	s.logger.Info("reloading configuration")

	s.authConfig.Update(cfg.Auth.Enabled, cfg.Auth.User, cfg.Auth.Password)
	s.engine.UpdateLimits(cfg.Simulation)
	s.engine.ReloadAll()

	s.mu.Lock()
	s.config = cfg
	s.mu.Unlock()

	s.logger.Info("configuration reloaded",
		"auth_enabled", cfg.Auth.Enabled,
		"max_laps_remaining", cfg.Simulation.MaxLapsRemaining,
		"max_tire_age", cfg.Simulation.MaxTireAge,
	)
}

func (s *Server) Start() error {
	s.logger.Info("server starting",
		"addr", s.httpServer.Addr,
		"data_dir", s.engine.Registry().DataDir(),
	)
	return s.httpServer.ListenAndServe()
}

func (s *Server) Shutdown(ctx context.Context) error {
	s.logger.Info("server shutting down")
	return s.httpServer.Shutdown(ctx)
}

func (s *Server) Addr() string {
	return s.httpServer.Addr
}
