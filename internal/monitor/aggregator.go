package monitor

import (
	"context"
	"log/slog"
	"sync"
	"time"
)

// Aggregator polls its monitors on an interval and keeps the latest state.
type Aggregator struct {
	monitors []Monitor
	state    State
	interval time.Duration
	started  time.Time
	mu       sync.RWMutex
	logger   *slog.Logger
}

// NewAggregator creates an aggregator. It does not poll until Start.
func NewAggregator(monitors []Monitor, interval time.Duration, logger *slog.Logger) *Aggregator {
	return &Aggregator{
		monitors: monitors,
		interval: interval,
		started:  time.Now(),
		logger:   logger,
	}
}

// Default builds an aggregator over the process and host memory monitors.
// A process monitor that cannot attach is left out.
func Default(interval time.Duration, logger *slog.Logger) *Aggregator {
	monitors := []Monitor{NewMemoryMonitor()}
	if pm, err := NewProcessMonitor(); err == nil {
		monitors = append(monitors, pm)
	} else {
		logger.Warn("process monitor unavailable", "error", err)
	}
	return NewAggregator(monitors, interval, logger)
}

// Start collects once and then polls until ctx is cancelled.
func (a *Aggregator) Start(ctx context.Context) {
	a.Collect()
	go a.runLoop(ctx)
	a.logger.Debug("monitor started", "interval", a.interval, "monitors", len(a.monitors))
}

// State returns the latest sample.
func (a *Aggregator) State() State {
	a.mu.RLock()
	defer a.mu.RUnlock()

	s := a.state
	s.Uptime = time.Since(a.started).Truncate(time.Second).String()
	return s
}

func (a *Aggregator) runLoop(ctx context.Context) {
	ticker := time.NewTicker(a.interval)
	defer ticker.Stop()

	for {
		select {
		case <-ticker.C:
			a.Collect()
		case <-ctx.Done():
			return
		}
	}
}

// Collect samples every monitor now.
func (a *Aggregator) Collect() {
	newState := State{Timestamp: time.Now()}

	for _, m := range a.monitors {
		data, err := m.Collect()
		if err != nil {
			a.logger.Warn("monitor collection failed",
				"monitor", m.Name(),
				"error", err,
			)
			continue
		}

		switch s := data.(type) {
		case *ProcessState:
			newState.Process = *s
		case *MemoryState:
			newState.Memory = *s
		}
	}

	a.mu.Lock()
	a.state = newState
	a.mu.Unlock()
}
