// Package config loads and saves the TOML application configuration.
package config

import (
	"fmt"
	"os"
	"path/filepath"

	"github.com/BurntSushi/toml"
)

const (
	// AppName is the application name used for config directory
	AppName = "skilltrack"
	// ConfigFile is the name of the TOML configuration file
	ConfigFile = "config.toml"
)

// Config represents the application configuration
type Config struct {
	// DataDir overrides the root directory for user data ("" = default)
	DataDir string `toml:"data_dir"`
	// DefaultRangeDays is the report range used when none is given
	DefaultRangeDays int `toml:"default_range_days"`
}

// DefaultConfig returns a Config with sensible defaults.
// - data_dir: "" (use the platform config directory)
// - default_range_days: 7 (reports cover the last week)
func DefaultConfig() Config {
	return Config{
		DataDir:          "",
		DefaultRangeDays: 7,
	}
}

// Validate checks the configuration for invalid values
func (c Config) Validate() error {
	if c.DefaultRangeDays < 1 {
		return fmt.Errorf("default_range_days must be at least 1, got %d", c.DefaultRangeDays)
	}
	return nil
}

// GetConfigPath returns the path to the config file.
// Uses os.UserConfigDir() for cross-platform XDG-compliant config directory.
// Creates the config directory if it doesn't exist.
func GetConfigPath() (string, error) {
	configDir, err := os.UserConfigDir()
	if err != nil {
		return "", err
	}

	appDir := filepath.Join(configDir, AppName)

	if err := os.MkdirAll(appDir, 0755); err != nil {
		return "", err
	}

	return filepath.Join(appDir, ConfigFile), nil
}

// LoadOrDefault loads the config file at path, returning defaults if the
// file doesn't exist. Returns an error only for an unreadable or
// malformed file.
func LoadOrDefault(path string) (Config, error) {
	cfg := DefaultConfig()

	if _, err := os.Stat(path); os.IsNotExist(err) {
		return cfg, nil
	}

	if _, err := toml.DecodeFile(path, &cfg); err != nil {
		return cfg, fmt.Errorf("failed to parse config: %w", err)
	}

	if err := cfg.Validate(); err != nil {
		return cfg, err
	}

	return cfg, nil
}

// Save writes the config to path as TOML
func Save(path string, cfg Config) error {
	file, err := os.Create(path)
	if err != nil {
		return err
	}
	defer func() { _ = file.Close() }()

	return toml.NewEncoder(file).Encode(cfg)
}
