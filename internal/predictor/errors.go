package predictor

import (
	"errors"
	"fmt"
)

var (
	// ErrUnavailable marks a circuit whose model cannot be used.
	ErrUnavailable = errors.New("circuit unavailable")

	// ErrUnsupportedFeature is returned for models that declare a feature
	// no extractor exists for.
	ErrUnsupportedFeature = errors.New("unsupported feature")
)

// LoadError is returned when a model artifact cannot be located or decoded.
// It matches ErrUnavailable with errors.Is.
type LoadError struct {
	Circuit string
	Path    string
	Err     error
}

func (e *LoadError) Error() string {
	if e.Path == "" {
		return fmt.Sprintf("load model for %s: %v", e.Circuit, e.Err)
	}
	return fmt.Sprintf("load model for %s from %s: %v", e.Circuit, e.Path, e.Err)
}

func (e *LoadError) Unwrap() []error {
	return []error{ErrUnavailable, e.Err}
}
