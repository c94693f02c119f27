package storage

import (
	"fmt"
	"os"
	"path/filepath"
	"time"

	"github.com/haskel/pitwall/internal/model"
)

// SaveModel writes a circuit's artifact and drops its cached predictor so
// the next request loads the new one.
func (r *Registry) SaveModel(circuit string, art *model.Artifact) error {
	if err := ValidateCircuit(circuit); err != nil {
		return err
	}

	path := r.ModelPath(circuit)
	if err := writeArtifact(path, art); err != nil {
		return err
	}

	r.Invalidate(circuit)
	r.logger.Info("saved model", "circuit", circuit, "path", path, "type", art.Type)
	return nil
}

func readArtifact(path string) (*model.Artifact, error) {
	file, err := os.Open(path)
	if err != nil {
		return nil, err
	}
	defer file.Close()

	art, err := model.Decode(file)
	if err != nil {
		return nil, fmt.Errorf("decode artifact: %w", err)
	}
	return art, nil
}

func writeArtifact(path string, art *model.Artifact) error {
	if err := os.MkdirAll(filepath.Dir(path), 0755); err != nil {
		return fmt.Errorf("failed to create circuit directory: %w", err)
	}

	tempPath := path + ".tmp"
	file, err := os.Create(tempPath)
	if err != nil {
		return fmt.Errorf("failed to create temp file: %w", err)
	}

	if err := model.Encode(file, art); err != nil {
		file.Close()
		os.Remove(tempPath)
		return fmt.Errorf("failed to save model: %w", err)
	}

	if err := file.Close(); err != nil {
		os.Remove(tempPath)
		return fmt.Errorf("failed to close temp file: %w", err)
	}

	// Atomic rename
	if err := os.Rename(tempPath, path); err != nil {
		os.Remove(tempPath)
		return fmt.Errorf("failed to rename temp file: %w", err)
	}
	return nil
}

// ModelInfo describes the artifact file of a circuit.
type ModelInfo struct {
	Exists    bool      `json:"exists"`
	Path      string    `json:"path"`
	Size      int64     `json:"size,omitempty"`
	UpdatedAt time.Time `json:"updated_at,omitempty"`
	Cached    bool      `json:"cached"`
}

// Info returns information about the saved model of a circuit.
func (r *Registry) Info(circuit string) ModelInfo {
	path := r.ModelPath(circuit)
	info := ModelInfo{
		Path:   path,
		Cached: r.IsCached(circuit),
	}

	stat, err := os.Stat(path)
	if err != nil {
		return info
	}

	info.Exists = true
	info.Size = stat.Size()
	info.UpdatedAt = stat.ModTime()
	return info
}

// DeleteModel removes the artifact of a circuit.
func (r *Registry) DeleteModel(circuit string) error {
	if err := ValidateCircuit(circuit); err != nil {
		return err
	}
	if err := os.Remove(r.ModelPath(circuit)); err != nil && !os.IsNotExist(err) {
		return fmt.Errorf("failed to delete model file: %w", err)
	}
	r.Invalidate(circuit)
	return nil
}
