package engine

import (
	"errors"
	"time"

	"github.com/haskel/pitwall/internal/calibration"
	"github.com/haskel/pitwall/internal/dataset"
	"github.com/haskel/pitwall/internal/model"
	"github.com/haskel/pitwall/internal/predictor"
	"github.com/haskel/pitwall/internal/storage"
)

// CircuitSummary is one row of the circuit list.
type CircuitSummary struct {
	Circuit    string            `json:"circuit"`
	Costs      calibration.Costs `json:"costs"`
	Model      storage.ModelInfo `json:"model"`
	HasDataset bool              `json:"has_dataset"`
}

// CircuitDetail describes the loaded model of a circuit. Available is
// false when the model cannot be loaded; Error then says why.
type CircuitDetail struct {
	CircuitSummary
	Available     bool            `json:"available"`
	Error         string          `json:"error,omitempty"`
	ModelType     model.ModelType `json:"model_type,omitempty"`
	Features      []string        `json:"features,omitempty"`
	IgnoredInputs []string        `json:"ignored_inputs,omitempty"`
	Metrics       *model.Metrics  `json:"metrics,omitempty"`
	TrainedAt     *time.Time      `json:"trained_at,omitempty"`
	Ranges        *dataset.Ranges `json:"ranges,omitempty"`
}

func (e *Engine) summary(circuit string) CircuitSummary {
	return CircuitSummary{
		Circuit:    circuit,
		Costs:      calibration.For(circuit),
		Model:      e.registry.Info(circuit),
		HasDataset: e.registry.HasDataset(circuit),
	}
}

// ListCircuits summarises every known circuit without loading models.
func (e *Engine) ListCircuits() ([]CircuitSummary, error) {
	names, err := e.Circuits()
	if err != nil {
		return nil, err
	}
	out := make([]CircuitSummary, 0, len(names))
	for _, name := range names {
		out = append(out, e.summary(name))
	}
	return out, nil
}

// Circuit loads the model of a circuit and describes it. An unavailable
// model is reported in the result, not as an error.
func (e *Engine) Circuit(circuit string) (*CircuitDetail, error) {
	if err := e.checkCircuit(circuit); err != nil {
		return nil, err
	}

	d := &CircuitDetail{CircuitSummary: e.summary(circuit)}

	p, err := e.predictor(circuit)
	switch {
	case errors.Is(err, predictor.ErrUnavailable):
		d.Error = err.Error()
	case err != nil:
		return nil, err
	default:
		d.Available = true
		d.Features = p.Features()
		d.IgnoredInputs = p.Ignored()
		d.Model.Cached = true
		if art, err := e.registry.Artifact(circuit); err == nil {
			d.ModelType = art.Type
			d.Metrics = &art.Metrics
			d.TrainedAt = &art.TrainedAt
		}
	}

	if d.HasDataset {
		if ds, err := e.registry.Dataset(circuit); err == nil {
			r := ds.Ranges()
			d.Ranges = &r
		} else {
			e.logger.Warn("dataset unavailable", "circuit", circuit, "error", err)
		}
	}
	return d, nil
}
