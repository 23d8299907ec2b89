package state

import (
	"fmt"
	"os"

	"github.com/goccy/go-yaml"
)

// NodeId is an opaque identifier for a node in the topology.
type NodeId string

// SimConfig holds the per-run simulation parameters.
type SimConfig struct {
	ErrorRate      float64 `yaml:"error_rate"`
	DisruptionRate float64 `yaml:"disruption_rate"`
	// MaxRetriesPerLink caps recovery retries on a disrupted link. Zero
	// means unset: ApplyDefaults replaces it with
	// DefaultMaxRetriesPerLink, so a retry-free run is not expressible
	// through this field.
	MaxRetriesPerLink     int `yaml:"max_retries_per_link"`
	MaxAlternatePaths     int `yaml:"max_alternate_paths"`
	BufferCapacityPerNode int `yaml:"buffer_capacity_per_node"`
	MaxSearchDepth        int     `yaml:"max_search_depth,omitempty"`
	// MaxLogicalDelay bounds the accumulated logical delay in seconds.
	// Zero means no budget.
	MaxLogicalDelay float64 `yaml:"max_logical_delay,omitempty"`
	// Seed for the run's private random source. Zero picks a
	// time-derived seed at run start.
	Seed uint64 `yaml:"seed,omitempty"`
}

// Settings is the on-disk YAML settings document.
type Settings struct {
	Simulation SimConfig `yaml:"simulation"`
	LogPath    string    `yaml:"log_path,omitempty"`
	ResultsDir string    `yaml:"results_dir,omitempty"`
}

type ConfigError struct {
	Field  string
	Reason string
}

func (e *ConfigError) Error() string {
	return fmt.Sprintf("config: %s: %s", e.Field, e.Reason)
}

func (c *SimConfig) ApplyDefaults() {
	if c.MaxRetriesPerLink == 0 {
		c.MaxRetriesPerLink = DefaultMaxRetriesPerLink
	}
	if c.MaxAlternatePaths == 0 {
		c.MaxAlternatePaths = DefaultMaxAlternatePaths
	}
	if c.BufferCapacityPerNode == 0 {
		c.BufferCapacityPerNode = DefaultBufferCapacityPerNode
	}
	if c.MaxSearchDepth == 0 {
		c.MaxSearchDepth = DefaultMaxSearchDepth
	}
}

func SimConfigValidator(cfg *SimConfig) error {
	if cfg.ErrorRate < 0 || cfg.ErrorRate > 1 {
		return &ConfigError{"error_rate", fmt.Sprintf("%v is not in [0, 1]", cfg.ErrorRate)}
	}
	if cfg.DisruptionRate < 0 || cfg.DisruptionRate > 1 {
		return &ConfigError{"disruption_rate", fmt.Sprintf("%v is not in [0, 1]", cfg.DisruptionRate)}
	}
	if cfg.MaxRetriesPerLink < 0 {
		return &ConfigError{"max_retries_per_link", "must be >= 0"}
	}
	if cfg.MaxAlternatePaths < 1 {
		return &ConfigError{"max_alternate_paths", "must be >= 1"}
	}
	if cfg.BufferCapacityPerNode < 1 {
		return &ConfigError{"buffer_capacity_per_node", "must be >= 1"}
	}
	if cfg.MaxSearchDepth < 1 {
		return &ConfigError{"max_search_depth", "must be >= 1"}
	}
	if cfg.MaxLogicalDelay < 0 {
		return &ConfigError{"max_logical_delay", "must be >= 0"}
	}
	return nil
}

func LoadSettings(path string) (*Settings, error) {
	var settings Settings
	file, err := os.ReadFile(path)
	if err != nil {
		return nil, err
	}
	err = yaml.Unmarshal(file, &settings)
	if err != nil {
		return nil, err
	}
	settings.Simulation.ApplyDefaults()
	err = SimConfigValidator(&settings.Simulation)
	if err != nil {
		return nil, err
	}
	return &settings, nil
}
