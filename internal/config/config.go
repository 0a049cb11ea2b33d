package config

import (
	"fmt"
	"os"
	"strconv"

	"powersim/domain/core"
)

// Config represents the complete application configuration
type Config struct {
	Server     ServerConfig
	Database   DatabaseConfig
	Simulation SimulationConfig
}

// ServerConfig holds HTTP API settings
type ServerConfig struct {
	Port string
}

// DatabaseConfig holds optional curve-store settings; persistence is off
// unless a URL is configured.
type DatabaseConfig struct {
	URL     string
	Enabled bool
}

// SimulationConfig holds sweep defaults overridable per request
type SimulationConfig struct {
	Replications int
	Alpha        float64
	Workers      int
	Seed         int64
}

// Load reads configuration from environment variables and validates it
func Load() (*Config, error) {
	cfg := &Config{
		Server: ServerConfig{
			Port: envOr("PORT", "8080"),
		},
		Database: DatabaseConfig{
			URL: os.Getenv("DATABASE_URL"),
		},
		Simulation: SimulationConfig{
			Replications: 1000,
			Alpha:        0.05,
			Workers:      0, // 0: one worker per CPU
			Seed:         1,
		},
	}
	cfg.Database.Enabled = cfg.Database.URL != ""

	var err error
	if cfg.Simulation.Replications, err = envInt("SIM_REPLICATIONS", cfg.Simulation.Replications); err != nil {
		return nil, err
	}
	if cfg.Simulation.Workers, err = envInt("SIM_WORKERS", cfg.Simulation.Workers); err != nil {
		return nil, err
	}
	if raw := os.Getenv("SIM_ALPHA"); raw != "" {
		a, err := strconv.ParseFloat(raw, 64)
		if err != nil {
			return nil, fmt.Errorf("%w: SIM_ALPHA: %v", core.ErrInvalidParameter, err)
		}
		cfg.Simulation.Alpha = a
	}
	if raw := os.Getenv("SIM_SEED"); raw != "" {
		s, err := strconv.ParseInt(raw, 10, 64)
		if err != nil {
			return nil, fmt.Errorf("%w: SIM_SEED: %v", core.ErrInvalidParameter, err)
		}
		cfg.Simulation.Seed = s
	}

	if err := cfg.validate(); err != nil {
		return nil, err
	}
	return cfg, nil
}

func (c *Config) validate() error {
	if c.Simulation.Replications < 1 {
		return core.NewParameterError("SIM_REPLICATIONS", "must be >= 1")
	}
	if c.Simulation.Alpha <= 0 || c.Simulation.Alpha >= 1 {
		return core.NewParameterError("SIM_ALPHA", "must be in (0,1)")
	}
	if c.Simulation.Workers < 0 {
		return core.NewParameterError("SIM_WORKERS", "must be >= 0")
	}
	return nil
}

func envOr(key, fallback string) string {
	if v := os.Getenv(key); v != "" {
		return v
	}
	return fallback
}

func envInt(key string, fallback int) (int, error) {
	raw := os.Getenv(key)
	if raw == "" {
		return fallback, nil
	}
	v, err := strconv.Atoi(raw)
	if err != nil {
		return 0, fmt.Errorf("%w: %s: %v", core.ErrInvalidParameter, key, err)
	}
	return v, nil
}
