package server

import (
	"net/http"
	"net/http/pprof"

	"github.com/haskel/pitwall/internal/metrics"
	"github.com/haskel/pitwall/internal/server/middleware"
)

func (s *Server) setupRoutes() *http.ServeMux {
	mux := http.NewServeMux()

	mux.HandleFunc("GET /{$}", s.handleInfo)
	mux.HandleFunc("GET /health", s.handleHealth)
	mux.HandleFunc("GET /status", s.handleStatus)

	if s.config.Metrics.Enabled {
		mux.Handle("GET "+s.config.Metrics.Path, metrics.Handler(s.gatherer))
	}

	mux.HandleFunc("GET /v1/circuits", s.handleCircuits)
	mux.HandleFunc("GET /v1/circuits/{circuit}", s.handleCircuit)
	mux.HandleFunc("GET /v1/circuits/{circuit}/analysis", s.handleAnalysis)
	mux.HandleFunc("POST /v1/circuits/{circuit}/predict", s.handlePredict)
	mux.HandleFunc("POST /v1/circuits/{circuit}/caution", s.handleCaution)
	mux.HandleFunc("POST /v1/circuits/{circuit}/battle", s.handleBattle)
	mux.HandleFunc("POST /v1/circuits/{circuit}/reload", s.handleReload)

	s.setupDebugRoutes(mux)

	return mux
}

// setupDebugRoutes mounts profiling and cache inspection behind debug auth.
func (s *Server) setupDebugRoutes(mux *http.ServeMux) {
	profilingEnabled := s.config.Server.Profiling.Enabled
	debugEnabled := s.config.Debug.Enabled

	if !profilingEnabled && !debugEnabled {
		return
	}

	debugAuth := middleware.DebugAuth(&middleware.DebugAuthConfig{
		Token:    s.config.Debug.Auth.Token,
		Fallback: s.authConfig,
	})

	if profilingEnabled {
		s.logger.Info("profiling endpoints enabled at /debug/pprof/ (auth required)")
		mux.Handle("GET /debug/pprof/{$}", debugAuth(http.HandlerFunc(pprof.Index)))
		mux.Handle("GET /debug/pprof/cmdline", debugAuth(http.HandlerFunc(pprof.Cmdline)))
		mux.Handle("GET /debug/pprof/profile", debugAuth(http.HandlerFunc(pprof.Profile)))
		mux.Handle("GET /debug/pprof/symbol", debugAuth(http.HandlerFunc(pprof.Symbol)))
		mux.Handle("POST /debug/pprof/symbol", debugAuth(http.HandlerFunc(pprof.Symbol)))
		mux.Handle("GET /debug/pprof/trace", debugAuth(http.HandlerFunc(pprof.Trace)))
		mux.Handle("GET /debug/pprof/{name}", debugAuth(http.HandlerFunc(pprof.Index)))
	}

	if debugEnabled {
		s.logger.Warn("debug endpoints enabled (auth required)")
		mux.Handle("GET /debug/cache", debugAuth(http.HandlerFunc(s.handleDebugCache)))
		mux.Handle("POST /debug/cache/clear", debugAuth(http.HandlerFunc(s.handleDebugClear)))
	}
}
