package model

import (
	"math"

	"gonum.org/v1/gonum/stat"
)

// Evaluate scores a fitted regressor on X and y.
func Evaluate(reg Regressor, X [][]float64, y []float64) Metrics {
	if len(X) == 0 {
		return Metrics{}
	}

	pred := make([]float64, len(X))
	absErr := 0.0
	for i, row := range X {
		pred[i] = reg.PredictRow(row)
		absErr += math.Abs(pred[i] - y[i])
	}

	return Metrics{
		R2:      stat.RSquaredFrom(pred, y, nil),
		MAE:     absErr / float64(len(X)),
		Samples: len(X),
	}
}

// Train creates a regressor from the factory configuration, fits it and
// scores it on the training data.
func (f *Factory) Train(features []string, X [][]float64, y []float64) (Regressor, Metrics, error) {
	reg, err := f.Create()
	if err != nil {
		return nil, Metrics{}, err
	}
	if err := reg.Fit(features, X, y); err != nil {
		return nil, Metrics{}, err
	}
	return reg, Evaluate(reg, X, y), nil
}
