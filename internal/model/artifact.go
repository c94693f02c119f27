package model

import (
	"bytes"
	"encoding/json"
	"fmt"
	"io"
	"slices"
	"time"
)

// ArtifactVersion is the current artifact format version.
const ArtifactVersion = 1

// Metrics describe the fit on the training data.
type Metrics struct {
	R2      float64 `json:"r2"`
	MAE     float64 `json:"mae"`
	Samples int     `json:"samples"`
}

// Artifact is the on-disk envelope of a trained regressor.
type Artifact struct {
	Version   int             `json:"version"`
	Type      ModelType       `json:"type"`
	Circuit   string          `json:"circuit"`
	Features  []string        `json:"features"`
	TrainedAt time.Time       `json:"trained_at"`
	Metrics   Metrics         `json:"metrics"`
	Params    json.RawMessage `json:"params"`
}

// NewArtifact packs a fitted regressor.
func NewArtifact(circuit string, reg Regressor, metrics Metrics) (*Artifact, error) {
	var buf bytes.Buffer
	if err := reg.Save(&buf); err != nil {
		return nil, fmt.Errorf("save %s params: %w", reg.Name(), err)
	}
	return &Artifact{
		Version:   ArtifactVersion,
		Type:      ModelType(reg.Name()),
		Circuit:   circuit,
		Features:  reg.Features(),
		TrainedAt: time.Now().UTC(),
		Metrics:   metrics,
		Params:    json.RawMessage(bytes.TrimSpace(buf.Bytes())),
	}, nil
}

// Regressor rebuilds the regressor stored in the artifact.
func (a *Artifact) Regressor() (Regressor, error) {
	if a.Version != ArtifactVersion {
		return nil, fmt.Errorf("unsupported artifact version %d", a.Version)
	}
	if !a.Type.IsValid() {
		return nil, fmt.Errorf("unknown model type: %s", a.Type)
	}

	reg, err := NewFactory(DefaultConfig()).CreateByType(a.Type)
	if err != nil {
		return nil, err
	}
	if err := reg.Load(bytes.NewReader(a.Params)); err != nil {
		return nil, fmt.Errorf("decode %s params: %w", a.Type, err)
	}
	if !slices.Equal(reg.Features(), a.Features) {
		return nil, fmt.Errorf("artifact features %v do not match model features %v", a.Features, reg.Features())
	}
	return reg, nil
}

// Encode writes the artifact as indented JSON.
func Encode(w io.Writer, a *Artifact) error {
	enc := json.NewEncoder(w)
	enc.SetIndent("", "  ")
	return enc.Encode(a)
}

// Decode reads an artifact.
func Decode(r io.Reader) (*Artifact, error) {
	var a Artifact
	if err := json.NewDecoder(r).Decode(&a); err != nil {
		return nil, err
	}
	return &a, nil
}
