package config

import (
	"fmt"

	"github.com/skillsenselab/callscribe/audio"
	"github.com/skillsenselab/callscribe/logger"
	"github.com/skillsenselab/callscribe/server"
	"github.com/skillsenselab/callscribe/session"
	"github.com/skillsenselab/callscribe/transcription"
)

// Config is the full application configuration.
type Config struct {
	ServiceConfig `yaml:",inline" mapstructure:",squash"`

	Server        server.Config        `yaml:"server" mapstructure:"server"`
	Audio         audio.Config         `yaml:"audio" mapstructure:"audio"`
	Transcription transcription.Config `yaml:"transcription" mapstructure:"transcription"`
	Session       session.Config       `yaml:"session" mapstructure:"session"`
}

// ApplyDefaults applies default values to every section.
func (c *Config) ApplyDefaults() {
	if c.Name == "" {
		c.Name = "callscribe"
	}
	c.ServiceConfig.ApplyDefaults()
	c.Server.ApplyDefaults()
	c.Audio.ApplyDefaults()
	c.Transcription.ApplyDefaults()
	c.Session.ApplyDefaults()
}

// Validate validates every section.
func (c *Config) Validate() error {
	if err := c.ServiceConfig.Validate(); err != nil {
		return err
	}
	if err := c.Server.Validate(); err != nil {
		return err
	}
	if err := c.Audio.Validate(); err != nil {
		return err
	}
	if err := c.Transcription.Validate(); err != nil {
		return err
	}
	if err := c.Session.Validate(); err != nil {
		return err
	}
	return nil
}

// ServiceConfig contains the base fields every section builds on.
type ServiceConfig struct {
	Name        string        `yaml:"name" mapstructure:"name"`
	Environment string        `yaml:"environment" mapstructure:"environment"`
	Version     string        `yaml:"version" mapstructure:"version"`
	Debug       bool          `yaml:"debug" mapstructure:"debug"`
	Logging     logger.Config `yaml:"logging" mapstructure:"logging"`
}

// ApplyDefaults applies default values to the base configuration.
func (c *ServiceConfig) ApplyDefaults() {
	if c.Environment == "" {
		c.Environment = "development"
	}
	if c.Environment == "development" {
		c.Debug = true
	}
	// Propagate service name into logging so Init() uses the right tag.
	if c.Logging.ServiceName == "" && c.Name != "" {
		c.Logging.ServiceName = c.Name
	}
	c.Logging.ApplyDefaults()
}

// Validate validates the base configuration fields.
func (c *ServiceConfig) Validate() error {
	if c.Name == "" {
		return fmt.Errorf("config.name is required")
	}
	validEnvs := []string{"development", "staging", "production"}
	found := false
	for _, v := range validEnvs {
		if c.Environment == v {
			found = true
			break
		}
	}
	if !found {
		return fmt.Errorf("config.environment must be one of [development, staging, production] (got: %s)", c.Environment)
	}
	if err := c.Logging.Validate(); err != nil {
		return fmt.Errorf("config.logging: %w", err)
	}
	return nil
}

// Load loads, defaults, and validates the full application configuration.
func Load(opts ...LoaderOption) (*Config, error) {
	var cfg Config
	if err := LoadConfig("callscribe", &cfg, opts...); err != nil {
		return nil, err
	}
	cfg.ApplyDefaults()
	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	return &cfg, nil
}
