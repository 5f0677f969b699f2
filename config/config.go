// Package config loads neighbor-search defaults from the environment.
package config

import (
	"github.com/kelseyhightower/envconfig"

	"github.com/YuminosukeSato/scigo-neighbors/pkg/errors"
)

// Prefix is the environment variable prefix, e.g. SCIGO_LEAF_SIZE.
const Prefix = "SCIGO"

// Config holds the tunables of the collections and the CLI.
// Enum-valued fields are parsed by the neighbors package.
type Config struct {
	LeafSize       int    `envconfig:"LEAF_SIZE" default:"40"`
	PivotSelection string `envconfig:"PIVOT_SELECTION" default:"furthest_pair"`
	Construction   string `envconfig:"CONSTRUCTION" default:"nearest_pivot"`
	Center         string `envconfig:"CENTER" default:"centroid"`
	Parallel       bool   `envconfig:"PARALLEL" default:"false"`
	Workers        int    `envconfig:"WORKERS" default:"0"` // 0 means runtime.NumCPU()
	ForkThreshold  int    `envconfig:"FORK_THRESHOLD" default:"256"`
	Seed           uint64 `envconfig:"SEED" default:"1"`
	Metric         string `envconfig:"METRIC" default:"euclidean"`
	LogLevel       string `envconfig:"LOG_LEVEL" default:"info"`
	LogFormat      string `envconfig:"LOG_FORMAT" default:"json"`
}

// Load reads the configuration from SCIGO_* variables and validates it.
func Load() (*Config, error) {
	var cfg Config
	if err := envconfig.Process(Prefix, &cfg); err != nil {
		return nil, errors.Wrap(err, "config: process environment")
	}
	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	return &cfg, nil
}

// Default returns the configuration with every default applied.
func Default() Config {
	return Config{
		LeafSize:       40,
		PivotSelection: "furthest_pair",
		Construction:   "nearest_pivot",
		Center:         "centroid",
		ForkThreshold:  256,
		Seed:           1,
		Metric:         "euclidean",
		LogLevel:       "info",
		LogFormat:      "json",
	}
}

// Validate checks the numeric fields and the log format.
func (c *Config) Validate() error {
	if c.LeafSize <= 0 {
		return errors.NewValidationError("LEAF_SIZE", "must be positive", c.LeafSize)
	}
	if c.Workers < 0 {
		return errors.NewValidationError("WORKERS", "must be non-negative", c.Workers)
	}
	if c.ForkThreshold <= 0 {
		return errors.NewValidationError("FORK_THRESHOLD", "must be positive", c.ForkThreshold)
	}
	switch c.LogFormat {
	case "json", "console", "slog":
	default:
		return errors.NewValidationError("LOG_FORMAT", "must be json, console or slog", c.LogFormat)
	}
	return nil
}
