// Package predictor wraps a trained regression model as a lap-delta
// predictor: tyre age, track temperature and driver aggressiveness in,
// seconds lost against the car's best lap out.
package predictor

import (
	"fmt"
	"slices"
)

// Regressor is a trained single-output model.
type Regressor interface {
	// Features returns the ordered feature names the model was trained on.
	Features() []string
	// PredictRow predicts one row laid out in Features() order.
	PredictRow(row []float64) float64
}

// Predictor is immutable after New and safe for concurrent use.
type Predictor struct {
	reg      Regressor
	features []string
}

// New wraps a regressor. Every declared feature must be known.
func New(reg Regressor) (*Predictor, error) {
	if reg == nil {
		return nil, fmt.Errorf("nil regressor")
	}

	features := slices.Clone(reg.Features())
	if len(features) == 0 {
		return nil, fmt.Errorf("model declares no features")
	}

	seen := make(map[string]bool, len(features))
	for _, f := range features {
		if !Known(f) {
			return nil, fmt.Errorf("%w: %q", ErrUnsupportedFeature, f)
		}
		if seen[f] {
			return nil, fmt.Errorf("duplicate feature %q", f)
		}
		seen[f] = true
	}

	return &Predictor{reg: reg, features: features}, nil
}

// Predict returns the predicted lap delta in seconds. Arguments for
// features the model was not trained with are ignored.
func (p *Predictor) Predict(tireAgeLaps int, trackTempC, aggressiveness float64) float64 {
	return p.PredictConditions(Conditions{
		TireAgeLaps:          tireAgeLaps,
		TrackTempC:           trackTempC,
		DriverAggressiveness: aggressiveness,
	})
}

// PredictConditions is Predict taking a Conditions value.
func (p *Predictor) PredictConditions(c Conditions) float64 {
	return p.reg.PredictRow(p.Input(c).Values)
}

// Input returns the row that would be sent to the model for c.
func (p *Predictor) Input(c Conditions) Input {
	return BuildInput(p.features, c)
}

// Features returns the model's declared features.
func (p *Predictor) Features() []string {
	return slices.Clone(p.features)
}

// Uses reports whether the model takes the named feature.
func (p *Predictor) Uses(feature string) bool {
	return slices.Contains(p.features, feature)
}

// Ignored lists the canonical inputs this model does not take, e.g.
// TRACK_TEMP for a circuit whose weather data was unusable.
func (p *Predictor) Ignored() []string {
	var out []string
	for _, f := range CanonicalFeatures() {
		if !p.Uses(f) {
			out = append(out, f)
		}
	}
	return out
}
