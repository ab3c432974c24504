// Package config handles the run configuration of the hmm CLI.
package config

import (
	"fmt"
	"os"

	"gopkg.in/yaml.v3"
)

// Config is the root configuration structure.
type Config struct {
	Train TrainConfig `yaml:"train"`
	Data  DataConfig  `yaml:"data"`
}

// TrainConfig holds training hyperparameters.
type TrainConfig struct {
	Algorithm     string  `yaml:"algorithm"`
	Pseudocount   float64 `yaml:"pseudocount"`
	Threshold     float64 `yaml:"threshold"`
	MinIterations int     `yaml:"min_iterations"`
	MaxIterations int     `yaml:"max_iterations"`
}

// DataConfig holds the observation data settings.
type DataConfig struct {
	SequenceFile string `yaml:"sequence_file"`
}

// Default returns the default configuration.
func Default() *Config {
	return &Config{
		Train: TrainConfig{
			Algorithm:     "baum-welch",
			Pseudocount:   0,
			Threshold:     1e-9,
			MinIterations: 2,
			MaxIterations: 500,
		},
	}
}

// Load reads the configuration from a YAML file, filling unset fields
// with defaults.
func Load(path string) (*Config, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("config: %w", err)
	}
	cfg := Default()
	if err := yaml.Unmarshal(data, cfg); err != nil {
		return nil, fmt.Errorf("config: parse %s: %w", path, err)
	}
	return cfg, nil
}

// LoadOrDefault reads the configuration from path, returning the
// defaults when path is empty or the file does not exist.
func LoadOrDefault(path string) (*Config, error) {
	if path == "" {
		return Default(), nil
	}
	if _, err := os.Stat(path); os.IsNotExist(err) {
		return Default(), nil
	}
	return Load(path)
}
