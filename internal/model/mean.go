package model

import (
	"encoding/json"
	"io"
	"slices"

	"gonum.org/v1/gonum/stat"
)

// MeanModel predicts the training mean for every row. It is the baseline
// the other models are judged against.
type MeanModel struct {
	features []string
	mean     float64
	fitted   bool
}

type meanState struct {
	Features []string `json:"features"`
	Mean     float64  `json:"mean"`
}

// NewMeanModel creates an unfitted mean model.
func NewMeanModel() *MeanModel {
	return &MeanModel{}
}

// Name returns the model name.
func (m *MeanModel) Name() string {
	return string(ModelTypeMean)
}

// Features returns the training features.
func (m *MeanModel) Features() []string {
	return slices.Clone(m.features)
}

// Fit stores the mean of y.
func (m *MeanModel) Fit(features []string, X [][]float64, y []float64) error {
	if err := checkShape(features, X, y); err != nil {
		return err
	}
	m.features = slices.Clone(features)
	m.mean = stat.Mean(y, nil)
	m.fitted = true
	return nil
}

// PredictRow returns the training mean.
func (m *MeanModel) PredictRow([]float64) float64 {
	return m.mean
}

// Save serializes the model state to a writer.
func (m *MeanModel) Save(w io.Writer) error {
	if !m.fitted {
		return ErrNotFitted
	}
	return json.NewEncoder(w).Encode(meanState{Features: m.features, Mean: m.mean})
}

// Load deserializes the model state from a reader.
func (m *MeanModel) Load(r io.Reader) error {
	var state meanState
	if err := json.NewDecoder(r).Decode(&state); err != nil {
		return err
	}
	m.features = state.Features
	m.mean = state.Mean
	m.fitted = true
	return nil
}
