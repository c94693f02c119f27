package model

import "fmt"

// Config holds model configuration.
type Config struct {
	Type ModelType

	// Forest params
	NEstimators    int
	MaxDepth       int
	MinSamplesLeaf int
	Seed           uint64
}

// DefaultConfig returns default model configuration.
func DefaultConfig() Config {
	fc := DefaultForestConfig()
	return Config{
		Type:           ModelTypeForest,
		NEstimators:    fc.NEstimators,
		MaxDepth:       fc.MaxDepth,
		MinSamplesLeaf: fc.MinSamplesLeaf,
		Seed:           fc.Seed,
	}
}

// Factory creates regressors.
type Factory struct {
	config Config
}

// NewFactory creates a new model factory.
func NewFactory(cfg Config) *Factory {
	return &Factory{config: cfg}
}

// Create creates a regressor based on configuration.
func (f *Factory) Create() (Regressor, error) {
	return f.CreateByType(f.config.Type)
}

// CreateByType creates a regressor of the specified type.
func (f *Factory) CreateByType(modelType ModelType) (Regressor, error) {
	switch modelType {
	case ModelTypeMean:
		return NewMeanModel(), nil

	case ModelTypeLinear:
		return NewLinearModel(), nil

	case ModelTypeForest:
		return NewForestModel(ForestConfig{
			NEstimators:    f.config.NEstimators,
			MaxDepth:       f.config.MaxDepth,
			MinSamplesLeaf: f.config.MinSamplesLeaf,
			Seed:           f.config.Seed,
		}), nil

	default:
		return nil, fmt.Errorf("unknown model type: %s", modelType)
	}
}

// AvailableTypes returns list of available model types.
func AvailableTypes() []ModelType {
	return []ModelType{ModelTypeMean, ModelTypeLinear, ModelTypeForest}
}
