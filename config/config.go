// Package config loads and validates the reclaim service configuration.
// Configuration is a single JSON document: connection settings for NATS,
// logging and HTTP options, and a map of component instances keyed by
// instance name.
package config

import (
	"encoding/json"
	"fmt"
	"os"
	"time"

	"github.com/c360/reclaim/errors"
)

// Config is the root service configuration.
type Config struct {
	NATS       NATSConfig                 `json:"nats"`
	Logging    LoggingConfig              `json:"logging"`
	HTTP       HTTPConfig                 `json:"http"`
	Components map[string]ComponentConfig `json:"components"`
}

// NATSConfig holds connection settings for the NATS server.
type NATSConfig struct {
	URL           string   `json:"url"`
	Name          string   `json:"name"`
	MaxReconnects int      `json:"maxReconnects"`
	ReconnectWait Duration `json:"reconnectWait"`
}

// LoggingConfig selects the log level and output format.
type LoggingConfig struct {
	Level  string `json:"level"`
	Format string `json:"format"`
}

// HTTPConfig holds the listen address for the metrics and health endpoints.
type HTTPConfig struct {
	Addr string `json:"addr"`
}

// ComponentConfig describes one component instance: its registered type
// and the type-specific configuration passed to the factory verbatim.
type ComponentConfig struct {
	Type   string          `json:"type"`
	Config json.RawMessage `json:"config,omitempty"`
}

// Default returns the configuration used when no file is provided: a local
// NATS server, JSON logging at info, and a single recovery processor.
func Default() *Config {
	return &Config{
		NATS: NATSConfig{
			URL:           "nats://localhost:4222",
			Name:          "reclaim",
			MaxReconnects: -1,
			ReconnectWait: Duration(2 * time.Second),
		},
		Logging: LoggingConfig{
			Level:  "info",
			Format: "json",
		},
		HTTP: HTTPConfig{
			Addr: ":8080",
		},
		Components: map[string]ComponentConfig{
			"recovery": {Type: "processor-recovery"},
		},
	}
}

// Load reads and validates a configuration file. Fields absent from the
// file keep their defaults.
func Load(path string) (*Config, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, errors.WrapFatal(err, "Config", "Load", "read config file")
	}

	// Components from the file replace the defaults wholesale rather than
	// merging into them.
	cfg := Default()
	cfg.Components = nil
	if err := json.Unmarshal(data, cfg); err != nil {
		return nil, errors.WrapInvalid(err, "Config", "Load", "parse config file")
	}
	if cfg.Components == nil {
		cfg.Components = Default().Components
	}

	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	return cfg, nil
}

// Validate checks required fields and enumerated values.
func (c *Config) Validate() error {
	if c.NATS.URL == "" {
		return errors.WrapInvalid(errors.ErrInvalidConfig, "Config", "Validate", "nats url check")
	}

	switch c.Logging.Level {
	case "debug", "info", "warn", "error":
	default:
		return errors.WrapInvalid(
			fmt.Errorf("unknown log level %q", c.Logging.Level),
			"Config", "Validate", "log level check")
	}

	switch c.Logging.Format {
	case "json", "text":
	default:
		return errors.WrapInvalid(
			fmt.Errorf("unknown log format %q", c.Logging.Format),
			"Config", "Validate", "log format check")
	}

	if len(c.Components) == 0 {
		return errors.WrapInvalid(
			fmt.Errorf("no components configured"),
			"Config", "Validate", "component check")
	}
	for name, comp := range c.Components {
		if comp.Type == "" {
			return errors.WrapInvalid(
				fmt.Errorf("component %q has no type", name),
				"Config", "Validate", "component type check")
		}
	}
	return nil
}
