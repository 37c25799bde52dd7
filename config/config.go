package config

import (
	"fmt"
	"path/filepath"
	"strings"

	"github.com/knadh/koanf/parsers/json"
	"github.com/knadh/koanf/parsers/yaml"
	"github.com/knadh/koanf/providers/env"
	"github.com/knadh/koanf/providers/file"
	"github.com/knadh/koanf/v2"

	"github.com/kilianp07/robotsim/core/metrics"
	"github.com/kilianp07/robotsim/core/world"
	"github.com/kilianp07/robotsim/infra/logger"
	"github.com/kilianp07/robotsim/infra/mqtt"
)

// EnvPrefix prefixes every environment override. Nested keys are separated
// by a double underscore, e.g. ROBOTSIM_SIMULATION__ROBOTS=8.
const EnvPrefix = "ROBOTSIM_"

// DefaultRobots is the fleet size used when none is configured.
const DefaultRobots = 1

type Config struct {
	MQTT       mqtt.Config    `json:"mqtt"`
	Simulation world.Config   `json:"simulation"`
	Metrics    metrics.Config `json:"metrics"`
	Logging    logger.Options `json:"logging"`
	Sentry     SentryConfig   `json:"sentry"`
	API        APIConfig      `json:"api"`
}

// Default returns a configuration with every default applied.
func Default() *Config {
	cfg := &Config{Simulation: world.DefaultConfig()}
	cfg.SetDefaults()
	return cfg
}

// Load reads the YAML or JSON file at path, applies environment overrides,
// fills defaults and validates the result. An empty path loads defaults and
// the environment only.
func Load(path string) (*Config, error) {
	k := koanf.New(".")
	if path != "" {
		ext := strings.ToLower(filepath.Ext(path))
		var parser koanf.Parser
		switch ext {
		case ".yaml", ".yml":
			parser = yaml.Parser()
		case ".json":
			parser = json.Parser()
		default:
			return nil, fmt.Errorf("unsupported config format: %s", ext)
		}
		if err := k.Load(file.Provider(path), parser); err != nil {
			return nil, err
		}
	}
	// Optional environment overrides
	prefix := strings.ToLower(EnvPrefix)
	if err := k.Load(env.Provider(EnvPrefix, ".", func(s string) string {
		s = strings.TrimPrefix(strings.ToLower(s), prefix)
		return strings.ReplaceAll(s, "__", ".")
	}), nil); err != nil {
		return nil, err
	}
	// Keys absent from every source keep these values.
	cfg := Config{Simulation: world.DefaultConfig()}
	if err := k.UnmarshalWithConf("", &cfg, koanf.UnmarshalConf{Tag: "json"}); err != nil {
		return nil, err
	}
	cfg.SetDefaults()
	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	return &cfg, nil
}

// SetDefaults fills unset values in every section.
func (c *Config) SetDefaults() {
	if c.Simulation.Robots == 0 {
		c.Simulation.Robots = DefaultRobots
	}
	c.Simulation.SetDefaults()
	c.MQTT.SetDefaults()
	c.Logging.SetDefaults()
}

// Validate checks every section.
func (c Config) Validate() error {
	if err := c.Simulation.Validate(); err != nil {
		return fmt.Errorf("simulation: %w", err)
	}
	if err := c.MQTT.Validate(); err != nil {
		return fmt.Errorf("mqtt: %w", err)
	}
	if err := c.Logging.Validate(); err != nil {
		return fmt.Errorf("logging: %w", err)
	}
	if c.Sentry.TracesSampleRate < 0 || c.Sentry.TracesSampleRate > 1 {
		return fmt.Errorf("sentry: traces_sample_rate must be within [0, 1]")
	}
	return nil
}
