// Package rmconfig loads the record manager's YAML configuration: buffer
// pool sizing, page replacement policy and log level.
package rmconfig

import (
	"fmt"
	"os"

	"gopkg.in/yaml.v3"
)

// Config is the record manager's runtime configuration.
type Config struct {
	BufferPoolFrames  int    `yaml:"bufferPoolFrames"`
	ReplacementPolicy string `yaml:"replacementPolicy"`
	LogLevel          string `yaml:"logLevel"`
}

// Default returns the configuration used when no config file is supplied:
// 5 buffer frames, LRU replacement, info-level logging.
func Default() Config {
	return Config{
		BufferPoolFrames:  5,
		ReplacementPolicy: "lru",
		LogLevel:          "info",
	}
}

// Load reads and parses a YAML config file at path, filling in defaults for
// any field the file omits.
func Load(path string) (Config, error) {
	cfg := Default()

	data, err := os.ReadFile(path)
	if err != nil {
		return Config{}, fmt.Errorf("rmconfig: read %q: %w", path, err)
	}
	if err := yaml.Unmarshal(data, &cfg); err != nil {
		return Config{}, fmt.Errorf("rmconfig: parse %q: %w", path, err)
	}

	if err := cfg.Validate(); err != nil {
		return Config{}, err
	}
	return cfg, nil
}

// Validate checks that the configuration's fields have sane values.
func (c Config) Validate() error {
	if c.BufferPoolFrames <= 0 {
		return fmt.Errorf("rmconfig: bufferPoolFrames must be positive, got %d", c.BufferPoolFrames)
	}
	switch c.ReplacementPolicy {
	case "lru", "clock":
	default:
		return fmt.Errorf("rmconfig: unknown replacementPolicy %q", c.ReplacementPolicy)
	}
	switch c.LogLevel {
	case "debug", "info", "warn", "error":
	default:
		return fmt.Errorf("rmconfig: unknown logLevel %q", c.LogLevel)
	}
	return nil
}
