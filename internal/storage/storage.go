// Package storage is the on-disk registry of per-circuit model artifacts
// and lap datasets.
//
// Layout:
//
//	<data_dir>/<Circuit>/model.json
//	<data_dir>/<Circuit>/R1_processed.parquet (or .csv)
//	<data_dir>/<Circuit>/R2_processed.parquet (or .csv)
package storage

import (
	"errors"
	"fmt"
	"log/slog"
	"os"
	"path/filepath"
	"regexp"
	"sort"
	"sync"

	"github.com/samber/lo"

	"github.com/haskel/pitwall/internal/dataset"
	"github.com/haskel/pitwall/internal/model"
	"github.com/haskel/pitwall/internal/predictor"
)

const modelFileName = "model.json"

// ErrInvalidCircuit is returned for circuit names that are not a plain
// directory name.
var ErrInvalidCircuit = errors.New("invalid circuit name")

var circuitPattern = regexp.MustCompile(`^[A-Za-z0-9][A-Za-z0-9_-]*$`)

// ValidateCircuit checks that a circuit name is safe to use as a path
// element.
func ValidateCircuit(circuit string) error {
	if !circuitPattern.MatchString(circuit) {
		return fmt.Errorf("%w: %q", ErrInvalidCircuit, circuit)
	}
	return nil
}

type entry struct {
	predictor *predictor.Predictor
	artifact  *model.Artifact
}

// Registry loads models and datasets on first use and keeps them for the
// process lifetime. Failed loads are never cached, so a later request sees
// a fixed file, and they never evict a good cached entry. A load that
// overlaps an invalidation of its circuit is returned but not cached.
type Registry struct {
	dataDir string
	logger  *slog.Logger

	mu       sync.RWMutex
	models   map[string]*entry
	datasets map[string]*dataset.Dataset
	gens     map[string]uint64
	epoch    uint64

	// loaded runs between a load and its caching. Tests only.
	loaded func(circuit string)
}

// New creates a new Registry rooted at dataDir.
func New(dataDir string, logger *slog.Logger) *Registry {
	return &Registry{
		dataDir:  dataDir,
		logger:   logger.With("component", "registry"),
		models:   make(map[string]*entry),
		datasets: make(map[string]*dataset.Dataset),
		gens:     make(map[string]uint64),
	}
}

// generation changes whenever the circuit is invalidated. Callers hold mu.
func (r *Registry) generation(circuit string) uint64 {
	return r.epoch + r.gens[circuit]
}

// DataDir returns the registry root.
func (r *Registry) DataDir() string {
	return r.dataDir
}

func (r *Registry) circuitDir(circuit string) string {
	return filepath.Join(r.dataDir, circuit)
}

// ModelPath returns where the artifact of a circuit lives.
func (r *Registry) ModelPath(circuit string) string {
	return filepath.Join(r.circuitDir(circuit), modelFileName)
}

// Circuits lists the circuit directories under the data dir.
func (r *Registry) Circuits() ([]string, error) {
	entries, err := os.ReadDir(r.dataDir)
	if err != nil {
		if os.IsNotExist(err) {
			return nil, nil
		}
		return nil, err
	}

	var circuits []string
	for _, e := range entries {
		if e.IsDir() && ValidateCircuit(e.Name()) == nil {
			circuits = append(circuits, e.Name())
		}
	}
	sort.Strings(circuits)
	return circuits, nil
}

// Exists reports whether the circuit has a directory under the data dir.
func (r *Registry) Exists(circuit string) bool {
	if ValidateCircuit(circuit) != nil {
		return false
	}
	fi, err := os.Stat(r.circuitDir(circuit))
	return err == nil && fi.IsDir()
}

// HasDataset reports whether lap files exist for the circuit without
// loading them.
func (r *Registry) HasDataset(circuit string) bool {
	return ValidateCircuit(circuit) == nil && dataset.Available(r.circuitDir(circuit))
}

// Predictor returns the cached predictor of a circuit, loading it on first
// use. Load failures are *predictor.LoadError.
func (r *Registry) Predictor(circuit string) (*predictor.Predictor, error) {
	e, err := r.entry(circuit)
	if err != nil {
		return nil, err
	}
	return e.predictor, nil
}

// Artifact returns the metadata of the loaded model of a circuit.
func (r *Registry) Artifact(circuit string) (*model.Artifact, error) {
	e, err := r.entry(circuit)
	if err != nil {
		return nil, err
	}
	return e.artifact, nil
}

func (r *Registry) entry(circuit string) (*entry, error) {
	if err := ValidateCircuit(circuit); err != nil {
		return nil, &predictor.LoadError{Circuit: circuit, Err: err}
	}

	r.mu.RLock()
	e, ok := r.models[circuit]
	gen := r.generation(circuit)
	r.mu.RUnlock()
	if ok {
		return e, nil
	}

	e, err := r.load(circuit)
	if err != nil {
		r.logger.Warn("model unavailable", "circuit", circuit, "error", err)
		return nil, err
	}
	if r.loaded != nil {
		r.loaded(circuit)
	}

	r.mu.Lock()
	defer r.mu.Unlock()
	if cached, ok := r.models[circuit]; ok {
		return cached, nil
	}
	if r.generation(circuit) != gen {
		r.logger.Debug("model changed while loading, not caching", "circuit", circuit)
		return e, nil
	}
	r.models[circuit] = e
	r.logger.Info("loaded model",
		"circuit", circuit,
		"type", e.artifact.Type,
		"features", e.artifact.Features,
	)
	return e, nil
}

func (r *Registry) load(circuit string) (*entry, error) {
	path := r.ModelPath(circuit)
	fail := func(err error) (*entry, error) {
		return nil, &predictor.LoadError{Circuit: circuit, Path: path, Err: err}
	}

	art, err := readArtifact(path)
	if err != nil {
		return fail(err)
	}
	reg, err := art.Regressor()
	if err != nil {
		return fail(err)
	}
	p, err := predictor.New(reg)
	if err != nil {
		return fail(err)
	}
	return &entry{predictor: p, artifact: art}, nil
}

// Dataset returns the cached lap history of a circuit.
func (r *Registry) Dataset(circuit string) (*dataset.Dataset, error) {
	if err := ValidateCircuit(circuit); err != nil {
		return nil, err
	}

	r.mu.RLock()
	ds, ok := r.datasets[circuit]
	gen := r.generation(circuit)
	r.mu.RUnlock()
	if ok {
		return ds, nil
	}

	ds, err := dataset.Load(circuit, r.circuitDir(circuit))
	if err != nil {
		return nil, err
	}

	r.mu.Lock()
	defer r.mu.Unlock()
	if cached, ok := r.datasets[circuit]; ok {
		return cached, nil
	}
	if r.generation(circuit) != gen {
		return ds, nil
	}
	r.datasets[circuit] = ds
	r.logger.Info("loaded dataset", "circuit", circuit, "laps", len(ds.Laps))
	return ds, nil
}

// Invalidate drops the cached model and dataset of a circuit.
func (r *Registry) Invalidate(circuit string) {
	r.mu.Lock()
	defer r.mu.Unlock()

	_, hadModel := r.models[circuit]
	_, hadData := r.datasets[circuit]
	delete(r.models, circuit)
	delete(r.datasets, circuit)
	r.gens[circuit]++

	if hadModel || hadData {
		r.logger.Info("invalidated cache", "circuit", circuit)
	}
}

// InvalidateAll drops every cached entry.
func (r *Registry) InvalidateAll() {
	r.mu.Lock()
	defer r.mu.Unlock()

	r.models = make(map[string]*entry)
	r.datasets = make(map[string]*dataset.Dataset)
	r.epoch++
	r.logger.Info("invalidated all caches")
}

// Cached returns the number of cached models.
func (r *Registry) Cached() int {
	r.mu.RLock()
	defer r.mu.RUnlock()
	return len(r.models)
}

// CachedCircuits lists the circuits whose model is loaded, sorted.
func (r *Registry) CachedCircuits() []string {
	r.mu.RLock()
	names := lo.Keys(r.models)
	r.mu.RUnlock()
	sort.Strings(names)
	return names
}

// IsCached reports whether a circuit's model is loaded.
func (r *Registry) IsCached(circuit string) bool {
	r.mu.RLock()
	defer r.mu.RUnlock()
	_, ok := r.models[circuit]
	return ok
}
