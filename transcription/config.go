package transcription

import (
	"fmt"
	"time"
)

// Config holds transcription pipeline configuration.
type Config struct {
	// Provider selects the active backend by registry name.
	Provider string `yaml:"provider" mapstructure:"provider"`
	// Model is the default model tier when the request does not pick one.
	Model string `yaml:"model" mapstructure:"model"`
	// Language is the default language hint when the request does not pick one.
	Language string `yaml:"language" mapstructure:"language"`
	// Timeout bounds a single backend call; expiry maps to BACKEND_UNAVAILABLE.
	Timeout time.Duration `yaml:"timeout" mapstructure:"timeout"`
	// CacheMaxEntries bounds the result cache (LRU); 0 means unbounded.
	CacheMaxEntries int `yaml:"cache_max_entries" mapstructure:"cache_max_entries"`
	// Providers carries backend-specific settings, keyed by provider name,
	// passed verbatim to the provider factory.
	Providers map[string]map[string]any `yaml:"providers" mapstructure:"providers"`
}

// ApplyDefaults sets default values for unset fields.
func (c *Config) ApplyDefaults() {
	if c.Provider == "" {
		c.Provider = "whisper"
	}
	if c.Model == "" {
		c.Model = DefaultModel
	}
	if c.Language == "" {
		c.Language = DefaultLanguage
	}
	if c.Timeout == 0 {
		c.Timeout = 120 * time.Second
	}
}

// Validate checks the configuration for invalid values.
func (c *Config) Validate() error {
	if !IsValidModel(c.Model) {
		return fmt.Errorf("transcription.model must be one of %v (got: %s)", ModelNames(), c.Model)
	}
	if !IsValidLanguage(c.Language) {
		return fmt.Errorf("transcription.language must be one of %v (got: %s)", LanguageCodes(), c.Language)
	}
	if c.Timeout < 0 {
		return fmt.Errorf("transcription.timeout must be non-negative (got: %s)", c.Timeout)
	}
	if c.CacheMaxEntries < 0 {
		return fmt.Errorf("transcription.cache_max_entries must be non-negative (got: %d)", c.CacheMaxEntries)
	}
	return nil
}
