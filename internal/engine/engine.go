// Package engine answers pit wall questions for a circuit: next-lap
// prediction, pit-under-caution and undercut/overcut battles. It ties the
// model registry, the pit cost calibration and the strategy simulators
// together and is shared by the HTTP server and the local CLI commands.
package engine

import (
	"errors"
	"fmt"
	"log/slog"
	"sort"
	"sync"
	"time"

	"github.com/samber/lo"

	"github.com/haskel/pitwall/internal/calibration"
	"github.com/haskel/pitwall/internal/config"
	"github.com/haskel/pitwall/internal/metrics"
	"github.com/haskel/pitwall/internal/predictor"
	"github.com/haskel/pitwall/internal/storage"
	"github.com/haskel/pitwall/internal/strategy"
)

// ErrUnknownCircuit is returned for circuits that are neither calibrated
// nor present in the data dir.
var ErrUnknownCircuit = errors.New("unknown circuit")

type Engine struct {
	registry *storage.Registry
	metrics  metrics.Recorder
	logger   *slog.Logger

	mu     sync.RWMutex
	limits config.SimulationConfig
}

// New creates an Engine. A nil recorder disables metrics.
func New(registry *storage.Registry, limits config.SimulationConfig, rec metrics.Recorder, logger *slog.Logger) *Engine {
	if rec == nil {
		rec = metrics.NopRecorder{}
	}
	return &Engine{
		registry: registry,
		metrics:  rec,
		logger:   logger.With("component", "engine"),
		limits:   limits,
	}
}

// Registry returns the underlying model registry.
func (e *Engine) Registry() *storage.Registry {
	return e.registry
}

// Limits returns the active request limits.
func (e *Engine) Limits() config.SimulationConfig {
	e.mu.RLock()
	defer e.mu.RUnlock()
	return e.limits
}

// UpdateLimits swaps the request limits, e.g. after a config reload.
func (e *Engine) UpdateLimits(limits config.SimulationConfig) {
	e.mu.Lock()
	defer e.mu.Unlock()
	e.limits = limits
}

func (e *Engine) cycleLaps() int {
	if n := e.Limits().CycleLaps; n > 0 {
		return n
	}
	return strategy.DefaultCycleLaps
}

// Circuits lists every circuit that is calibrated or has a data directory.
func (e *Engine) Circuits() ([]string, error) {
	onDisk, err := e.registry.Circuits()
	if err != nil {
		return nil, fmt.Errorf("list data dir: %w", err)
	}
	names := lo.Uniq(append(calibration.Circuits(), onDisk...))
	sort.Strings(names)
	return names, nil
}

// checkCircuit rejects malformed names and circuits nothing is known about.
func (e *Engine) checkCircuit(circuit string) error {
	if err := storage.ValidateCircuit(circuit); err != nil {
		return err
	}
	if _, calibrated := calibration.Lookup(circuit); calibrated || e.registry.Exists(circuit) {
		return nil
	}
	return fmt.Errorf("%w: %s", ErrUnknownCircuit, circuit)
}

// predictor returns the circuit's predictor, counting load failures.
func (e *Engine) predictor(circuit string) (*predictor.Predictor, error) {
	if err := e.checkCircuit(circuit); err != nil {
		return nil, err
	}
	p, err := e.registry.Predictor(circuit)
	if err != nil {
		e.metrics.RecordLoadFailure(circuit)
		return nil, err
	}
	e.metrics.SetCachedModels(e.registry.Cached())
	return p, nil
}

// Reload drops the cached model and dataset of a circuit and tries to load
// the model again.
func (e *Engine) Reload(circuit string) (*ReloadResponse, error) {
	if err := e.checkCircuit(circuit); err != nil {
		return nil, err
	}

	e.registry.Invalidate(circuit)
	resp := &ReloadResponse{Circuit: circuit}
	if p, err := e.predictor(circuit); err != nil {
		resp.Error = err.Error()
	} else {
		resp.Available = true
		resp.Features = p.Features()
	}
	e.metrics.SetCachedModels(e.registry.Cached())

	e.logger.Info("circuit reloaded", "circuit", circuit, "available", resp.Available)
	return resp, nil
}

// ReloadAll drops every cached model and dataset.
func (e *Engine) ReloadAll() {
	e.registry.InvalidateAll()
	e.metrics.SetCachedModels(0)
}

// Predict returns the predicted delta at the given tyre age and on the
// following lap.
func (e *Engine) Predict(circuit string, req PredictRequest) (*PredictResponse, error) {
	if err := req.validate(e.Limits().MaxTireAge); err != nil {
		return nil, err
	}
	p, err := e.predictor(circuit)
	if err != nil {
		return nil, err
	}

	c := req.conditions()
	resp := &PredictResponse{
		Circuit:        circuit,
		TireAgeLaps:    req.TireAgeLaps,
		Delta:          p.PredictConditions(c),
		NextLapTireAge: req.TireAgeLaps + 1,
		Features:       p.Features(),
		IgnoredInputs:  p.Ignored(),
	}
	c.TireAgeLaps++
	resp.NextLapDelta = p.PredictConditions(c)

	e.metrics.RecordPrediction(circuit)
	return resp, nil
}

// Caution compares pitting now under full course yellow with staying out
// until the target lap.
func (e *Engine) Caution(circuit string, req CautionRequest) (*CautionResponse, error) {
	if req.TargetPitLap == 0 {
		req.TargetPitLap = min(DefaultTargetPitLap, req.LapsRemaining)
	}
	costs := calibration.For(circuit)
	params := strategy.RemainingParams{
		TireAgeLaps:    req.TireAgeLaps,
		LapsRemaining:  req.LapsRemaining,
		TrackTempC:     req.TrackTempC,
		Aggressiveness: req.Aggressiveness,
		TargetPitLap:   req.TargetPitLap,
		GreenPitCost:   costs.Green,
		YellowPitCost:  costs.Yellow,
	}

	limits := e.Limits()
	if err := params.Validate(limits.MaxLapsRemaining, limits.MaxTireAge); err != nil {
		return nil, err
	}
	if err := checkFinite(req.TrackTempC, req.Aggressiveness); err != nil {
		return nil, err
	}
	p, err := e.predictor(circuit)
	if err != nil {
		return nil, err
	}

	start := time.Now()
	verdict := strategy.DecideCaution(p, params)
	resp := &CautionResponse{
		Circuit:       circuit,
		Costs:         costs,
		TargetPitLap:  req.TargetPitLap,
		Verdict:       verdict,
		IgnoredInputs: p.Ignored(),
	}
	if req.Trace {
		params.PitNow = true
		now := strategy.TraceRemaining(p, params)
		params.PitNow = false
		later := strategy.TraceRemaining(p, params)
		resp.PitNowTrace, resp.StayOutTrace = &now, &later
	}

	outcome := "stay_out"
	if verdict.PitNow {
		outcome = "pit_now"
	}
	e.metrics.RecordSimulation(circuit, "caution", outcome, time.Since(start))
	return resp, nil
}

// Battle simulates an undercut or overcut over the pit cycle.
func (e *Engine) Battle(circuit string, req BattleRequest) (*BattleResponse, error) {
	costs := calibration.For(circuit)
	b := strategy.Battle{
		Mode:             req.Mode,
		OwnTireAgeLaps:   req.OwnTireAgeLaps,
		RivalTireAgeLaps: req.RivalTireAgeLaps,
		TrackTempC:       req.TrackTempC,
		Aggressiveness:   req.Aggressiveness,
		GreenPitCost:     costs.Green,
		GapSeconds:       req.GapSeconds,
		CycleLaps:        e.cycleLaps(),
	}
	if b.Mode == "" {
		b.Mode = strategy.Undercut
	}

	if err := b.Validate(e.Limits().MaxTireAge); err != nil {
		return nil, err
	}
	if err := checkFinite(req.TrackTempC, req.Aggressiveness, req.GapSeconds); err != nil {
		return nil, err
	}
	p, err := e.predictor(circuit)
	if err != nil {
		return nil, err
	}

	start := time.Now()
	verdict := strategy.DecideBattle(p, b)
	resp := &BattleResponse{
		Circuit:       circuit,
		Costs:         costs,
		CycleLaps:     b.CycleLaps,
		Verdict:       verdict,
		Summary:       verdict.String(),
		IgnoredInputs: p.Ignored(),
	}
	if req.Trace {
		ownLap, rivalLap := b.Mode.PitLaps()
		own := strategy.TraceBattle(p, b.Params(b.OwnTireAgeLaps, ownLap))
		rival := strategy.TraceBattle(p, b.Params(b.RivalTireAgeLaps, rivalLap))
		resp.OwnTrace, resp.RivalTrace = &own, &rival
	}

	outcome := "fails"
	if verdict.Success {
		outcome = "succeeds"
	}
	e.metrics.RecordSimulation(circuit, string(b.Mode), outcome, time.Since(start))
	return resp, nil
}
