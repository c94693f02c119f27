package config

import (
	"errors"
	"fmt"
	"strings"

	"github.com/haskel/pitwall/internal/model"
)

func (c *Config) Validate() error {
	var errs []error

	if err := c.Server.Validate(); err != nil {
		errs = append(errs, fmt.Errorf("server: %w", err))
	}

	if err := c.Logging.Validate(); err != nil {
		errs = append(errs, fmt.Errorf("logging: %w", err))
	}

	if err := c.Auth.Validate(); err != nil {
		errs = append(errs, fmt.Errorf("auth: %w", err))
	}

	if err := c.Data.Validate(); err != nil {
		errs = append(errs, fmt.Errorf("data: %w", err))
	}

	if err := c.Simulation.Validate(); err != nil {
		errs = append(errs, fmt.Errorf("simulation: %w", err))
	}

	if err := c.Training.Validate(); err != nil {
		errs = append(errs, fmt.Errorf("training: %w", err))
	}

	if err := c.Metrics.Validate(); err != nil {
		errs = append(errs, fmt.Errorf("metrics: %w", err))
	}

	if err := c.Monitoring.Validate(); err != nil {
		errs = append(errs, fmt.Errorf("monitoring: %w", err))
	}

	return errors.Join(errs...)
}

func (s *ServerConfig) Validate() error {
	var errs []error

	if s.Port < 1 || s.Port > 65535 {
		errs = append(errs, fmt.Errorf("port must be between 1 and 65535, got %d", s.Port))
	}
	if s.RateLimit.Enabled {
		if s.RateLimit.RequestsPerSecond <= 0 {
			errs = append(errs, fmt.Errorf("rate_limit.requests_per_second must be positive"))
		}
		if s.RateLimit.Burst < 1 {
			errs = append(errs, fmt.Errorf("rate_limit.burst must be at least 1"))
		}
	}
	if s.MaxBodyBytes < 0 {
		errs = append(errs, fmt.Errorf("max_body_bytes must be non-negative"))
	}

	return errors.Join(errs...)
}

func (l *LoggingConfig) Validate() error {
	validLevels := map[string]bool{
		"debug": true,
		"info":  true,
		"warn":  true,
		"error": true,
	}
	if !validLevels[l.Level] {
		return fmt.Errorf("invalid log level: %s (valid: debug, info, warn, error)", l.Level)
	}

	validFormats := map[string]bool{
		"json": true,
		"text": true,
	}
	if !validFormats[l.Format] {
		return fmt.Errorf("invalid log format: %s (valid: json, text)", l.Format)
	}

	return nil
}

func (a *AuthConfig) Validate() error {
	if a.Enabled {
		if a.User == "" {
			return fmt.Errorf("user cannot be empty when auth is enabled")
		}
		if a.Password == "" {
			return fmt.Errorf("password cannot be empty when auth is enabled")
		}
	}
	return nil
}

func (d *DataConfig) Validate() error {
	if d.Dir == "" {
		return fmt.Errorf("dir cannot be empty")
	}
	return nil
}

func (s *SimulationConfig) Validate() error {
	var errs []error

	if s.MaxLapsRemaining < 1 {
		errs = append(errs, fmt.Errorf("max_laps_remaining must be at least 1"))
	}
	if s.MaxTireAge < 1 {
		errs = append(errs, fmt.Errorf("max_tire_age must be at least 1"))
	}
	if s.CycleLaps < 2 {
		errs = append(errs, fmt.Errorf("cycle_laps must be at least 2, got %d", s.CycleLaps))
	}

	return errors.Join(errs...)
}

func (t *TrainingConfig) Validate() error {
	var errs []error

	if !model.ModelType(t.Model).IsValid() {
		valid := make([]string, 0, 3)
		for _, mt := range model.AvailableTypes() {
			valid = append(valid, mt.String())
		}
		errs = append(errs, fmt.Errorf("invalid model: %s (valid: %s)", t.Model, strings.Join(valid, ", ")))
	}
	if t.NEstimators < 1 {
		errs = append(errs, fmt.Errorf("n_estimators must be at least 1"))
	}
	if t.MaxDepth < 0 {
		errs = append(errs, fmt.Errorf("max_depth must be non-negative"))
	}
	if t.MinSamplesLeaf < 1 {
		errs = append(errs, fmt.Errorf("min_samples_leaf must be at least 1"))
	}

	return errors.Join(errs...)
}

func (m *MetricsConfig) Validate() error {
	if m.Enabled && !strings.HasPrefix(m.Path, "/") {
		return fmt.Errorf("path must start with /, got %q", m.Path)
	}
	return nil
}

func (m *MonitoringConfig) Validate() error {
	if m.IntervalMS < 100 {
		return fmt.Errorf("interval_ms must be at least 100, got %d", m.IntervalMS)
	}
	return nil
}

// ModelConfig maps the training section to a model factory configuration.
func (t *TrainingConfig) ModelConfig() model.Config {
	return model.Config{
		Type:           model.ModelType(t.Model),
		NEstimators:    t.NEstimators,
		MaxDepth:       t.MaxDepth,
		MinSamplesLeaf: t.MinSamplesLeaf,
		Seed:           t.Seed,
	}
}
