package vrp

import (
	"fmt"
	"os"

	"gopkg.in/yaml.v3"
)

// SolverConfig describes the external solver service
type SolverConfig struct {
	URL            string `yaml:"url" json:"url"`
	TimeoutSeconds int    `yaml:"timeoutSeconds,omitempty" json:"timeoutSeconds,omitempty"`
}

// CanvasConfig describes the editor canvas geometry
type CanvasConfig struct {
	Width  float64 `yaml:"width,omitempty" json:"width,omitempty"`
	Height float64 `yaml:"height,omitempty" json:"height,omitempty"`
	Scale  float64 `yaml:"scale,omitempty" json:"scale,omitempty"`
}

// MQTTConfig describes the broker used for solve event broadcasts.
// The section is optional; without a broker the service runs standalone.
type MQTTConfig struct {
	Broker        string `yaml:"broker,omitempty" json:"broker,omitempty"`
	PublishPrefix string `yaml:"publishPrefix,omitempty" json:"publishPrefix,omitempty"`
	ClientID      string `yaml:"clientId,omitempty" json:"clientId,omitempty"`
	Username      string `yaml:"username,omitempty" json:"username,omitempty"`
	Password      string `yaml:"password,omitempty" json:"password,omitempty"`
}

// Config is the unified service configuration
type Config struct {
	Solver   SolverConfig `yaml:"solver" json:"solver"`
	Canvas   CanvasConfig `yaml:"canvas,omitempty" json:"canvas,omitempty"`
	MQTT     MQTTConfig   `yaml:"mqtt,omitempty" json:"mqtt,omitempty"`
	HTTPPort int          `yaml:"httpPort,omitempty" json:"httpPort,omitempty"`
}

// DefaultConfig returns a configuration with all defaults applied and
// no solver endpoint set.
func DefaultConfig() *Config {
	cfg := &Config{}
	cfg.applyDefaults()
	return cfg
}

func (c *Config) applyDefaults() {
	if c.Solver.TimeoutSeconds <= 0 {
		c.Solver.TimeoutSeconds = int(DefaultSolveTimeout.Seconds())
	}
	if c.Canvas.Width <= 0 {
		c.Canvas.Width = DefaultCanvasW
	}
	if c.Canvas.Height <= 0 {
		c.Canvas.Height = DefaultCanvasH
	}
	if c.Canvas.Scale <= 0 {
		c.Canvas.Scale = DefaultScaleFactor
	}
	if c.HTTPPort <= 0 {
		c.HTTPPort = 8080
	}
}

// LoadConfig loads the unified configuration from a YAML file
func LoadConfig(path string) (*Config, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		if os.IsNotExist(err) {
			return nil, fmt.Errorf("config file not found: %s", path)
		}
		return nil, fmt.Errorf("reading config file: %w", err)
	}

	var config Config
	if err := yaml.Unmarshal(data, &config); err != nil {
		return nil, fmt.Errorf("parsing config YAML: %w", err)
	}

	// Validate required fields
	if config.Solver.URL == "" {
		return nil, fmt.Errorf("solver.url is required")
	}
	if config.Canvas.Scale < 0 {
		return nil, fmt.Errorf("canvas.scale must not be negative")
	}

	config.applyDefaults()

	return &config, nil
}

// SaveConfig saves the configuration to a YAML file
func SaveConfig(path string, config *Config) error {
	data, err := yaml.Marshal(config)
	if err != nil {
		return fmt.Errorf("marshaling config YAML: %w", err)
	}

	if err := os.WriteFile(path, data, 0644); err != nil {
		return fmt.Errorf("writing config file: %w", err)
	}

	return nil
}
