package config

import "time"

type Config struct {
	Server     ServerConfig     `yaml:"server"`
	Auth       AuthConfig       `yaml:"auth"`
	Debug      DebugConfig      `yaml:"debug"`
	Logging    LoggingConfig    `yaml:"logging"`
	Data       DataConfig       `yaml:"data"`
	Simulation SimulationConfig `yaml:"simulation"`
	Training   TrainingConfig   `yaml:"training"`
	Metrics    MetricsConfig    `yaml:"metrics"`
	Monitoring MonitoringConfig `yaml:"monitoring"`
}

// DebugConfig holds debug endpoint configuration.
type DebugConfig struct {
	// Enabled exposes the cache inspection endpoints under /debug.
	Enabled bool `yaml:"enabled"`
	// Auth holds debug-specific authentication.
	// If set, debug endpoints require this token.
	// If not set but main auth is enabled, main auth is used.
	Auth DebugAuthConfig `yaml:"auth"`
}

// DebugAuthConfig holds debug endpoint authentication.
type DebugAuthConfig struct {
	// Token for Bearer authentication on debug endpoints.
	// If empty, falls back to main auth.
	Token string `yaml:"token"`
}

type ServerConfig struct {
	Host         string          `yaml:"host"`
	Port         int             `yaml:"port"`
	PIDFile      string          `yaml:"pid_file"`
	Profiling    ProfilingConfig `yaml:"profiling"`
	RateLimit    RateLimitConfig `yaml:"rate_limit"`
	MaxBodyBytes int64           `yaml:"max_body_bytes"`
}

type ProfilingConfig struct {
	Enabled bool `yaml:"enabled"`
}

// RateLimitConfig limits requests per client IP.
type RateLimitConfig struct {
	Enabled           bool    `yaml:"enabled"`
	RequestsPerSecond float64 `yaml:"requests_per_second"`
	Burst             int     `yaml:"burst"`
}

type AuthConfig struct {
	Enabled  bool   `yaml:"enabled"`
	User     string `yaml:"user"`
	Password string `yaml:"password"`
}

type LoggingConfig struct {
	Level  string `yaml:"level"`
	Format string `yaml:"format"`
}

// DataConfig locates the per-circuit model and lap files.
type DataConfig struct {
	Dir string `yaml:"dir"`
	// Watch drops cached models when their files change.
	Watch bool `yaml:"watch"`
}

// SimulationConfig bounds strategy requests.
type SimulationConfig struct {
	MaxLapsRemaining int `yaml:"max_laps_remaining"`
	MaxTireAge       int `yaml:"max_tire_age"`
	CycleLaps        int `yaml:"cycle_laps"`
}

// TrainingConfig selects the regressor fitted by the train command.
type TrainingConfig struct {
	// Model type: mean, linear, forest
	Model          string `yaml:"model"`
	NEstimators    int    `yaml:"n_estimators"`
	MaxDepth       int    `yaml:"max_depth"`
	MinSamplesLeaf int    `yaml:"min_samples_leaf"`
	Seed           uint64 `yaml:"seed"`
}

type MetricsConfig struct {
	Enabled bool   `yaml:"enabled"`
	Path    string `yaml:"path"`
}

type MonitoringConfig struct {
	IntervalMS int `yaml:"interval_ms"`
}

func (c *Config) MonitoringInterval() time.Duration {
	return time.Duration(c.Monitoring.IntervalMS) * time.Millisecond
}
