// Package model holds the regressors that back a lap-delta predictor and
// the artifact format they are stored in.
package model

import (
	"errors"
	"io"
)

// ModelType represents the type of regressor.
type ModelType string

const (
	ModelTypeMean   ModelType = "mean"
	ModelTypeLinear ModelType = "linear"
	ModelTypeForest ModelType = "forest"
)

// IsValid checks if the model type is valid.
func (m ModelType) IsValid() bool {
	switch m {
	case ModelTypeMean, ModelTypeLinear, ModelTypeForest:
		return true
	}
	return false
}

// String returns string representation.
func (m ModelType) String() string {
	return string(m)
}

var (
	// ErrNotFitted is returned when saving a regressor that was never fitted.
	ErrNotFitted = errors.New("model not fitted")

	// ErrNoSamples is returned by Fit for an empty training set.
	ErrNoSamples = errors.New("no training samples")
)

// Regressor is a single-output regression model over named features.
type Regressor interface {
	// Name returns the model type name.
	Name() string

	// Features returns the ordered feature names of the training matrix.
	Features() []string

	// Fit trains on X (one row per sample, columns in features order) and y.
	Fit(features []string, X [][]float64, y []float64) error

	// PredictRow predicts one sample.
	PredictRow(row []float64) float64

	// Persistence of the fitted parameters.
	Save(w io.Writer) error
	Load(r io.Reader) error
}

func checkShape(features []string, X [][]float64, y []float64) error {
	if len(X) == 0 {
		return ErrNoSamples
	}
	if len(X) != len(y) {
		return errors.New("row count does not match target count")
	}
	for _, row := range X {
		if len(row) != len(features) {
			return errors.New("row width does not match feature count")
		}
	}
	return nil
}
