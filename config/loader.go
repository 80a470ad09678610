package config

import (
	"fmt"
	"os"
	"strings"

	"github.com/joho/godotenv"
	"github.com/spf13/viper"
)

// FileSystem abstracts file operations so loading is testable.
type FileSystem interface {
	Exists(path string) bool
	LoadEnv(path string) error
}

// RealFileSystem implements FileSystem using actual file operations.
type RealFileSystem struct{}

func (rfs *RealFileSystem) Exists(path string) bool {
	_, err := os.Stat(path)
	return err == nil
}

func (rfs *RealFileSystem) LoadEnv(path string) error {
	return godotenv.Load(path)
}

// LoaderConfig holds dependencies and optional file overrides.
type LoaderConfig struct {
	FileSystem FileSystem
	ConfigFile string // explicit config file path (optional)
	EnvFile    string // explicit .env file path (optional)
}

// LoaderOption is a functional option for LoadConfig.
type LoaderOption func(*LoaderConfig)

// WithFileSystem sets a custom filesystem for the loader.
func WithFileSystem(fs FileSystem) LoaderOption {
	return func(lc *LoaderConfig) { lc.FileSystem = fs }
}

// WithConfigFile sets an explicit config file path.
func WithConfigFile(path string) LoaderOption {
	return func(lc *LoaderConfig) { lc.ConfigFile = path }
}

// WithEnvFile sets an explicit .env file path.
func WithEnvFile(path string) LoaderOption {
	return func(lc *LoaderConfig) { lc.EnvFile = path }
}

// LoadConfig loads configuration for a service into the provided cfg struct.
// It searches for config.yml and .env files in standard locations, binds
// environment variables, and unmarshals the result into cfg.
func LoadConfig(serviceName string, cfg interface{}, opts ...LoaderOption) error {
	var lc LoaderConfig
	for _, opt := range opts {
		opt(&lc)
	}
	if lc.FileSystem == nil {
		lc.FileSystem = &RealFileSystem{}
	}
	if lc.ConfigFile == "" {
		lc.ConfigFile = findFile(lc.FileSystem, serviceName, "config.yml")
	}
	if lc.EnvFile == "" {
		lc.EnvFile = findFile(lc.FileSystem, serviceName, ".env")
	}

	v := viper.New()

	// 1. Load YAML config first (base configuration)
	if lc.ConfigFile != "" && lc.FileSystem.Exists(lc.ConfigFile) {
		v.SetConfigFile(lc.ConfigFile)
		if err := v.ReadInConfig(); err != nil {
			return fmt.Errorf("failed to read config file %s: %w", lc.ConfigFile, err)
		}
	}

	// 2. Enable environment variable overrides
	v.AutomaticEnv()
	autoBindEnvVars(v)

	// 3. Load .env file and re-bind to pick up its variables
	if lc.EnvFile != "" && lc.FileSystem.Exists(lc.EnvFile) {
		if err := lc.FileSystem.LoadEnv(lc.EnvFile); err != nil {
			return fmt.Errorf("failed to load env file %s: %w", lc.EnvFile, err)
		}
		autoBindEnvVars(v)
	}

	// 4. Unmarshal into config struct
	if err := v.Unmarshal(cfg); err != nil {
		return fmt.Errorf("failed to unmarshal config for service %s: %w", serviceName, err)
	}

	return nil
}

// findFile searches standard locations for a config or env file.
func findFile(fs FileSystem, serviceName, fileName string) string {
	searchPaths := []string{
		fmt.Sprintf("./cmd/%s/%s", serviceName, fileName),
		fmt.Sprintf("../cmd/%s/%s", serviceName, fileName),
		fmt.Sprintf("./config/%s", fileName),
		fmt.Sprintf("../config/%s", fileName),
		"./" + fileName,
		"../" + fileName,
	}
	for _, path := range searchPaths {
		if fs.Exists(path) {
			return path
		}
	}
	return ""
}

// autoBindEnvVars binds environment variables to Viper by converting
// UPPER_CASE_WITH_UNDERSCORES names to nested key variants, so
// TRANSCRIPTION_CACHE_MAX_ENTRIES reaches transcription.cache_max_entries.
func autoBindEnvVars(v *viper.Viper) {
	for _, env := range os.Environ() {
		pair := strings.SplitN(env, "=", 2)
		if len(pair) != 2 {
			continue
		}
		for _, variant := range envKeyVariants(pair[0]) {
			v.Set(variant, pair[1])
		}
	}
}

// envKeyVariants generates nested key variants for an environment variable:
//
//	SERVER_PORT -> [server_port, server.port]
//	TRANSCRIPTION_CACHE_MAX_ENTRIES -> [..., transcription.cache_max_entries, ...]
func envKeyVariants(envKey string) []string {
	lowerKey := strings.ToLower(envKey)
	parts := strings.Split(lowerKey, "_")
	if len(parts) <= 1 {
		return []string{lowerKey}
	}

	variants := []string{
		lowerKey,
		strings.ReplaceAll(lowerKey, "_", "."),
	}

	// Each split point between a dotted prefix and an underscored suffix.
	for i := 1; i < len(parts); i++ {
		variants = append(variants, strings.Join(parts[:i], ".")+"."+strings.Join(parts[i:], "_"))
	}

	return removeDuplicates(variants)
}

func removeDuplicates(items []string) []string {
	seen := make(map[string]bool, len(items))
	result := make([]string, 0, len(items))
	for _, item := range items {
		if !seen[item] {
			seen[item] = true
			result = append(result, item)
		}
	}
	return result
}
