package config

import (
	"errors"
	"fmt"
	"os"
	"path/filepath"

	"gopkg.in/yaml.v3"

	"jettower/pkg/logging"
)

const (
	userConfigDir  = ".config/jettower"
	configFileName = "config.yaml"

	// EnvConfigPath overrides the default configuration file path.
	EnvConfigPath = "JETTOWER_CONFIG"
)

// osUserHomeDir is replaced in tests.
var osUserHomeDir = os.UserHomeDir

// DefaultConfigPath returns the configuration file path from JETTOWER_CONFIG,
// or ~/.config/jettower/config.yaml.
func DefaultConfigPath() (string, error) {
	if path := os.Getenv(EnvConfigPath); path != "" {
		return path, nil
	}

	homeDir, err := osUserHomeDir()
	if err != nil {
		return "", fmt.Errorf("could not determine user home directory: %w", err)
	}
	return filepath.Join(homeDir, userConfigDir, configFileName), nil
}

// LoadConfig reads and validates the configuration file at path. A missing
// file yields the defaults.
func LoadConfig(path string) (Config, error) {
	config := GetDefaultConfig()

	data, err := os.ReadFile(path)
	if err != nil {
		if errors.Is(err, os.ErrNotExist) {
			logging.Debug("ConfigLoader", "No config found at %s, using defaults", path)
			return config, nil
		}
		return Config{}, NewConfigurationError(path, "io", err.Error())
	}

	if err := yaml.Unmarshal(data, &config); err != nil {
		configErr := NewConfigurationError(path, "parse", err.Error())
		var typeErr *yaml.TypeError
		if errors.As(err, &typeErr) && len(typeErr.Errors) > 0 {
			configErr.Details = typeErr.Errors[0]
		}
		return Config{}, configErr
	}

	if err := config.Validate(path); err != nil {
		return Config{}, err
	}

	logging.Debug("ConfigLoader", "Loaded configuration from %s with %d instance(s)", path, len(config.Instances))
	return config, nil
}

// SaveConfig writes config to path as YAML, creating parent directories.
func SaveConfig(path string, config Config) error {
	data, err := yaml.Marshal(&config)
	if err != nil {
		return fmt.Errorf("failed to encode configuration: %w", err)
	}

	if err := os.MkdirAll(filepath.Dir(path), 0o755); err != nil {
		return fmt.Errorf("failed to create configuration directory: %w", err)
	}

	if err := os.WriteFile(path, data, 0o600); err != nil {
		return fmt.Errorf("failed to write configuration to %s: %w", path, err)
	}
	return nil
}
