// Package config holds the bridge's own configuration: where run traces
// live, which model to open by default and how the live view paces itself.
// Values come from a YAML file layered over defaults, with environment
// variables taking precedence over both.
package config

import (
	"fmt"
	"os"

	"github.com/caarlos0/env/v11"
	"gopkg.in/yaml.v3"
)

const (
	DefaultDataDir   = ".mjbridge"
	DefaultFrameRate = 30
)

type Config struct {
	DataDir   string `yaml:"data_dir" env:"MJBRIDGE_DATA_DIR"`
	ModelPath string `yaml:"model" env:"MJBRIDGE_MODEL"`
	FrameRate int    `yaml:"frame_rate" env:"MJBRIDGE_FPS"`
	Quiet     bool   `yaml:"quiet" env:"MJBRIDGE_QUIET"`
}

func DefaultConfig() *Config {
	return &Config{
		DataDir:   DefaultDataDir,
		FrameRate: DefaultFrameRate,
	}
}

// Load reads a YAML config over the defaults, then applies environment
// overrides. An empty path skips the file and still honors the
// environment.
func Load(path string) (*Config, error) {
	cfg := DefaultConfig()

	if path != "" {
		data, err := os.ReadFile(path)
		if err != nil {
			return nil, err
		}
		if err := yaml.Unmarshal(data, cfg); err != nil {
			return nil, fmt.Errorf("parse config %s: %w", path, err)
		}
	}

	if err := env.Parse(cfg); err != nil {
		return nil, fmt.Errorf("parse env: %w", err)
	}

	if cfg.FrameRate < 1 {
		cfg.FrameRate = DefaultFrameRate
	}
	return cfg, nil
}

func Save(path string, cfg *Config) error {
	data, err := yaml.Marshal(cfg)
	if err != nil {
		return err
	}
	return os.WriteFile(path, data, 0644)
}
