package config

import (
	"fmt"
	"os"
	"path/filepath"

	"gopkg.in/yaml.v3"
)

// CatalogConfig represents catalog access settings from the config file.
type CatalogConfig struct {
	BaseURL     string `yaml:"base_url"`
	Timeout     string `yaml:"timeout"`
	Concurrency int    `yaml:"concurrency"`
}

// HistoryConfig represents lookup history settings from the config file.
type HistoryConfig struct {
	Enabled bool   `yaml:"enabled"`
	DSN     string `yaml:"dsn"`
}

// ServerConfig represents HTTP API settings from the config file.
type ServerConfig struct {
	Addr string `yaml:"addr"`
}

// FileConfig represents the structure of ~/.mipsize/config.yaml.
type FileConfig struct {
	Catalog CatalogConfig `yaml:"catalog"`
	History HistoryConfig `yaml:"history"`
	Server  ServerConfig  `yaml:"server"`
}

// ConfigFilePath returns the path of the config file in the user's home
// directory.
func ConfigFilePath() (string, error) {
	homeDir, err := os.UserHomeDir()
	if err != nil {
		return "", fmt.Errorf("failed to get user home directory: %w", err)
	}

	return filepath.Join(homeDir, ".mipsize", "config.yaml"), nil
}

// LoadConfigFile loads configuration from ~/.mipsize/config.yaml. Returns nil
// if the file doesn't exist (not an error). Returns error if the file exists
// but cannot be parsed.
func LoadConfigFile() (*FileConfig, error) {
	configPath, err := ConfigFilePath()
	if err != nil {
		return nil, err
	}

	data, err := os.ReadFile(configPath)
	if os.IsNotExist(err) {
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("failed to read config file: %w", err)
	}

	var cfg FileConfig
	if err := yaml.Unmarshal(data, &cfg); err != nil {
		return nil, fmt.Errorf("failed to parse config file: %w", err)
	}

	return &cfg, nil
}

const defaultConfigTemplate = `# mipsize configuration
catalog:
  # Site serving instance_details_<model>.html pages
  base_url: %q
  # Per-request timeout; 0s keeps the HTTP client default
  timeout: %q
  # Lookups in flight when resolving several paths
  concurrency: %d
history:
  # Record every resolution in a local SQLite database
  enabled: false
  dsn: %q
server:
  addr: %q
`

// WriteDefaultConfigFile writes a config file holding the default settings.
// It returns false without touching an existing file unless force is set.
func WriteDefaultConfigFile(force bool) (bool, error) {
	configPath, err := ConfigFilePath()
	if err != nil {
		return false, err
	}

	if _, err := os.Stat(configPath); err == nil && !force {
		return false, nil
	}

	if err := os.MkdirAll(filepath.Dir(configPath), 0o700); err != nil {
		return false, fmt.Errorf("failed to create config directory: %w", err)
	}

	defaults := Defaults()
	content := fmt.Sprintf(defaultConfigTemplate,
		defaults.CatalogURL,
		defaults.Timeout.String(),
		defaults.Concurrency,
		defaults.HistoryDSN,
		defaults.ServerAddr,
	)

	if err := os.WriteFile(configPath, []byte(content), 0o600); err != nil {
		return false, fmt.Errorf("failed to write config file: %w", err)
	}

	return true, nil
}
