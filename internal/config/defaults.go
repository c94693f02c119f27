package config

func Default() *Config {
	return &Config{
		Server: ServerConfig{
			Host:    "0.0.0.0",
			Port:    8080,
			PIDFile: "/var/run/pitwall.pid",
			RateLimit: RateLimitConfig{
				Enabled:           false,
				RequestsPerSecond: 50,
				Burst:             100,
			},
			MaxBodyBytes: 64 * 1024,
		},
		Auth: AuthConfig{
			Enabled:  false,
			User:     "",
			Password: "",
		},
		Logging: LoggingConfig{
			Level:  "info",
			Format: "json",
		},
		Data: DataConfig{
			Dir:   "processed_data",
			Watch: true,
		},
		Simulation: SimulationConfig{
			MaxLapsRemaining: 40,
			MaxTireAge:       25,
			CycleLaps:        3,
		},
		Training: TrainingConfig{
			Model:          "forest",
			NEstimators:    100,
			MaxDepth:       0,
			MinSamplesLeaf: 1,
			Seed:           42,
		},
		Metrics: MetricsConfig{
			Enabled: true,
			Path:    "/metrics",
		},
		Monitoring: MonitoringConfig{
			IntervalMS: 5000,
		},
	}
}
