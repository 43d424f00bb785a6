package config

import (
	"fmt"
	"os"
	"path/filepath"
	"strconv"
	"time"

	"github.com/adrg/xdg"
	"github.com/pevans/mipsize/autosize"
)

// AppName names the per-user config and data directories.
const AppName = "mipsize"

// Environment variables overriding the config file.
const (
	EnvCatalogURL  = "MIPSIZE_CATALOG_URL"
	EnvTimeout     = "MIPSIZE_CATALOG_TIMEOUT"
	EnvConcurrency = "MIPSIZE_CONCURRENCY"
	EnvHistoryDSN  = "MIPSIZE_HISTORY_DSN"
	EnvServerAddr  = "MIPSIZE_SERVER_ADDR"
)

// Settings is the effective configuration after applying defaults, the
// config file and the environment.
type Settings struct {
	CatalogURL     string
	Timeout        time.Duration
	Concurrency    int
	HistoryEnabled bool
	HistoryDSN     string
	ServerAddr     string
}

// DefaultHistoryDSN returns the history database path under the XDG data
// directory.
func DefaultHistoryDSN() string {
	return filepath.Join(xdg.DataHome, AppName, "history.db")
}

// Defaults returns the settings used when nothing is configured.
func Defaults() *Settings {
	return &Settings{
		CatalogURL:  autosize.DefaultCatalogURL,
		Timeout:     0,
		Concurrency: autosize.DefaultConcurrency,
		HistoryDSN:  DefaultHistoryDSN(),
		ServerAddr:  "localhost:8080",
	}
}

// Load resolves settings with precedence:
// 1. Environment variables (highest priority)
// 2. Configuration file (~/.mipsize/config.yaml)
// 3. Default values (lowest priority)
func Load() (*Settings, error) {
	cfg, err := LoadConfigFile()
	if err != nil {
		return nil, err
	}

	settings := Defaults()
	if err := settings.applyFile(cfg); err != nil {
		return nil, err
	}
	if err := settings.applyEnv(); err != nil {
		return nil, err
	}

	return settings, nil
}

func (s *Settings) applyFile(cfg *FileConfig) error {
	if cfg == nil {
		return nil
	}

	if cfg.Catalog.BaseURL != "" {
		s.CatalogURL = cfg.Catalog.BaseURL
	}
	if cfg.Catalog.Timeout != "" {
		d, err := time.ParseDuration(cfg.Catalog.Timeout)
		if err != nil {
			return fmt.Errorf("invalid catalog.timeout %q: %w", cfg.Catalog.Timeout, err)
		}
		s.Timeout = d
	}
	if cfg.Catalog.Concurrency != 0 {
		if cfg.Catalog.Concurrency < 0 {
			return fmt.Errorf("invalid catalog.concurrency %d: must be positive", cfg.Catalog.Concurrency)
		}
		s.Concurrency = cfg.Catalog.Concurrency
	}

	s.HistoryEnabled = cfg.History.Enabled
	if cfg.History.DSN != "" {
		s.HistoryDSN = cfg.History.DSN
	}

	if cfg.Server.Addr != "" {
		s.ServerAddr = cfg.Server.Addr
	}

	return nil
}

func (s *Settings) applyEnv() error {
	if val := os.Getenv(EnvCatalogURL); val != "" {
		s.CatalogURL = val
	}
	if val := os.Getenv(EnvTimeout); val != "" {
		d, err := time.ParseDuration(val)
		if err != nil {
			return fmt.Errorf("invalid %s %q: %w", EnvTimeout, val, err)
		}
		s.Timeout = d
	}
	if val := os.Getenv(EnvConcurrency); val != "" {
		n, err := strconv.Atoi(val)
		if err != nil || n <= 0 {
			return fmt.Errorf("invalid %s %q: must be a positive integer", EnvConcurrency, val)
		}
		s.Concurrency = n
	}
	// Naming a history database turns history on.
	if val := os.Getenv(EnvHistoryDSN); val != "" {
		s.HistoryDSN = val
		s.HistoryEnabled = true
	}
	if val := os.Getenv(EnvServerAddr); val != "" {
		s.ServerAddr = val
	}

	return nil
}
