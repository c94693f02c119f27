package server

import (
	"net/http"
	"runtime"
	"time"
)

var startedAt = time.Now()

// DebugCacheResponse is the body of GET /debug/cache.
type DebugCacheResponse struct {
	CachedCircuits []string `json:"cached_circuits"`
	Goroutines     int      `json:"goroutines"`
	HeapAllocBytes uint64   `json:"heap_alloc_bytes"`
	Uptime         string   `json:"uptime"`
}

// handleDebugCache handles GET /debug/cache.
func (s *Server) handleDebugCache(w http.ResponseWriter, r *http.Request) {
	var ms runtime.MemStats
	runtime.ReadMemStats(&ms)

	s.writeJSON(w, http.StatusOK, DebugCacheResponse{
		CachedCircuits: s.engine.Registry().CachedCircuits(),
		Goroutines:     runtime.NumGoroutine(),
		HeapAllocBytes: ms.HeapAlloc,
		Uptime:         time.Since(startedAt).Round(time.Second).String(),
	})
}

// handleDebugClear handles POST /debug/cache/clear. Every model and dataset
// is reloaded on next use.
func (s *Server) handleDebugClear(w http.ResponseWriter, r *http.Request) {
	cleared := s.engine.Registry().CachedCircuits()
	s.engine.ReloadAll()
	s.logger.Info("caches cleared via debug endpoint", "circuits", cleared)
	s.writeJSON(w, http.StatusOK, map[string]any{"cleared": cleared})
}
