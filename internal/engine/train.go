package engine

import (
	"fmt"
	"time"

	"github.com/haskel/pitwall/internal/model"
	"github.com/haskel/pitwall/internal/predictor"
	"github.com/haskel/pitwall/internal/strategy"
)

// Train fits a regressor on the circuit's laps and saves it as the
// circuit's model. An empty feature list trains on every canonical
// feature.
func (e *Engine) Train(circuit string, features []string, cfg model.Config) (*model.Artifact, error) {
	if err := e.checkCircuit(circuit); err != nil {
		return nil, err
	}
	if len(features) == 0 {
		features = predictor.CanonicalFeatures()
	}
	for _, f := range features {
		if !predictor.Known(f) {
			return nil, fmt.Errorf("%w: %w: %q", strategy.ErrInvalidParams, predictor.ErrUnsupportedFeature, f)
		}
	}

	ds, err := e.registry.Dataset(circuit)
	if err != nil {
		return nil, err
	}
	X, y, err := ds.Matrix(features)
	if err != nil {
		return nil, err
	}

	start := time.Now()
	reg, m, err := model.NewFactory(cfg).Train(features, X, y)
	if err != nil {
		return nil, fmt.Errorf("train %s model for %s: %w", cfg.Type, circuit, err)
	}
	art, err := model.NewArtifact(circuit, reg, m)
	if err != nil {
		return nil, err
	}
	if err := e.registry.SaveModel(circuit, art); err != nil {
		return nil, err
	}

	e.logger.Info("model trained",
		"circuit", circuit,
		"type", art.Type,
		"features", features,
		"samples", m.Samples,
		"r2", m.R2,
		"mae", m.MAE,
		"duration", time.Since(start),
	)
	return art, nil
}
