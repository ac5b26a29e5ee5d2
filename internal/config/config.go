// Package config handles run configuration loading.
package config

import (
	"fmt"
	"os"

	"gopkg.in/yaml.v3"
)

// #region types
// Config is the root configuration structure for one adaptive run.
type Config struct {
	RunID     string `yaml:"run_id"`
	BaseDir   string `yaml:"base_dir"`
	SPT       int    `yaml:"spt"`
	TPR       int    `yaml:"tpr"`
	LagTime   int    `yaml:"lag_time"`
	MaxRounds int    `yaml:"max_rounds"`
	Workers   int    `yaml:"workers"`

	Simulator   SimulatorConfig   `yaml:"simulator"`
	Convergence ConvergenceConfig `yaml:"convergence"`
}

// SimulatorConfig selects and parameterizes the trajectory source.
type SimulatorConfig struct {
	// Type is one of "tmat", "walker", "remote".
	Type string `yaml:"type"`
	// Seed fixes the random source for the built-in simulators.
	Seed int64 `yaml:"seed"`
	// Matrix is the row-stochastic transition matrix for type "tmat".
	Matrix [][]float64 `yaml:"matrix"`
	// URL is the ws:// endpoint for type "remote".
	URL string `yaml:"url"`
	// Kind is the frame representation a remote service produces:
	// "discrete" or "vector".
	Kind string `yaml:"kind"`
	// InitialStates seed round 0 for discrete simulators.
	InitialStates []int `yaml:"initial_states"`
	// InitialPoints seed round 0 for continuous simulators.
	InitialPoints [][]float64 `yaml:"initial_points"`
}

// ConvergenceConfig picks at most one built-in stopping rule; zero values
// leave the run bounded only by max_rounds.
type ConvergenceConfig struct {
	MinCountPerState int `yaml:"min_count_per_state"`
	MinTotalCounts   int `yaml:"min_total_counts"`
	AllStatesFound   int `yaml:"all_states_found"`
}

// #endregion types

// #region defaults
// ApplyDefaults fills unset fields with workable values.
func (c *Config) ApplyDefaults() {
	if c.BaseDir == "" {
		c.BaseDir = "runs"
	}
	if c.SPT == 0 {
		c.SPT = 100
	}
	if c.TPR == 0 {
		c.TPR = 10
	}
	if c.LagTime == 0 {
		c.LagTime = 1
	}
	if c.Simulator.Type == "" {
		c.Simulator.Type = "walker"
	}
	if c.Simulator.Seed == 0 {
		c.Simulator.Seed = 42
	}
}

// #endregion defaults

// #region load
// Load reads and validates a YAML config file.
func Load(path string) (*Config, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("read config: %w", err)
	}
	var c Config
	if err := yaml.Unmarshal(data, &c); err != nil {
		return nil, fmt.Errorf("parse config: %w", err)
	}
	c.ApplyDefaults()
	if err := c.Validate(); err != nil {
		return nil, err
	}
	return &c, nil
}

// Validate rejects configurations the controller cannot run.
func (c *Config) Validate() error {
	if c.SPT < 1 || c.TPR < 1 || c.LagTime < 1 {
		return fmt.Errorf("spt, tpr and lag_time must be positive (got %d, %d, %d)", c.SPT, c.TPR, c.LagTime)
	}
	if c.MaxRounds < 0 {
		return fmt.Errorf("max_rounds must not be negative, got %d", c.MaxRounds)
	}
	switch c.Simulator.Type {
	case "tmat":
		if len(c.Simulator.Matrix) == 0 {
			return fmt.Errorf("simulator type tmat requires a matrix")
		}
	case "walker":
	case "remote":
		if c.Simulator.URL == "" {
			return fmt.Errorf("simulator type remote requires a url")
		}
		if c.Simulator.Kind != "discrete" && c.Simulator.Kind != "vector" {
			return fmt.Errorf("simulator type remote requires kind discrete or vector, got %q", c.Simulator.Kind)
		}
	default:
		return fmt.Errorf("unknown simulator type %q", c.Simulator.Type)
	}
	return nil
}

// #endregion load
