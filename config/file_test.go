package config

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// Test helper: point HOME at a fresh directory and return it
func setupTestHome(t *testing.T) string {
	tmpDir := t.TempDir()
	t.Setenv("HOME", tmpDir)
	return tmpDir
}

// Test helper: write ~/.mipsize/config.yaml under home
func writeTestConfig(t *testing.T, home, content string) {
	dir := filepath.Join(home, ".mipsize")
	require.NoError(t, os.MkdirAll(dir, 0o700))
	require.NoError(t, os.WriteFile(filepath.Join(dir, "config.yaml"), []byte(content), 0o600))
}

func TestLoadConfigFile_NoFile(t *testing.T) {
	setupTestHome(t)

	cfg, err := LoadConfigFile()
	require.NoError(t, err)
	assert.Nil(t, cfg, "Should return nil when config file doesn't exist")
}

func TestLoadConfigFile_ValidConfig(t *testing.T) {
	home := setupTestHome(t)
	writeTestConfig(t, home, `catalog:
  base_url: "http://mirror.example.com"
  timeout: "15s"
  concurrency: 8
history:
  enabled: true
  dsn: "/path/to/history.db"
server:
  addr: "0.0.0.0:9090"
`)

	cfg, err := LoadConfigFile()
	require.NoError(t, err)
	require.NotNil(t, cfg)

	assert.Equal(t, "http://mirror.example.com", cfg.Catalog.BaseURL)
	assert.Equal(t, "15s", cfg.Catalog.Timeout)
	assert.Equal(t, 8, cfg.Catalog.Concurrency)
	assert.True(t, cfg.History.Enabled)
	assert.Equal(t, "/path/to/history.db", cfg.History.DSN)
	assert.Equal(t, "0.0.0.0:9090", cfg.Server.Addr)
}

func TestLoadConfigFile_InvalidYAML(t *testing.T) {
	home := setupTestHome(t)
	writeTestConfig(t, home, `catalog:
  - this is invalid yaml because catalog should be an object not a list
`)

	cfg, err := LoadConfigFile()
	assert.Error(t, err)
	assert.Nil(t, cfg)
	assert.Contains(t, err.Error(), "failed to parse config file")
}

func TestLoadConfigFile_PartialConfig(t *testing.T) {
	home := setupTestHome(t)
	writeTestConfig(t, home, `catalog:
  base_url: "http://mirror.example.com"
`)

	cfg, err := LoadConfigFile()
	require.NoError(t, err)
	require.NotNil(t, cfg)

	assert.Equal(t, "http://mirror.example.com", cfg.Catalog.BaseURL)
	assert.Equal(t, "", cfg.Catalog.Timeout, "Unspecified timeout should be empty string")
	assert.False(t, cfg.History.Enabled)
	assert.Equal(t, "", cfg.Server.Addr)
}

func TestWriteDefaultConfigFile_CreatesFile(t *testing.T) {
	home := setupTestHome(t)

	created, err := WriteDefaultConfigFile(false)
	require.NoError(t, err)
	assert.True(t, created)

	info, err := os.Stat(filepath.Join(home, ".mipsize", "config.yaml"))
	require.NoError(t, err)
	assert.Equal(t, os.FileMode(0o600), info.Mode().Perm())

	cfg, err := LoadConfigFile()
	require.NoError(t, err)
	require.NotNil(t, cfg, "written file should parse")
	assert.Equal(t, "https://miplib.zib.de", cfg.Catalog.BaseURL)
	assert.Equal(t, "0s", cfg.Catalog.Timeout)
	assert.False(t, cfg.History.Enabled)
	assert.Equal(t, DefaultHistoryDSN(), cfg.History.DSN)
}

func TestWriteDefaultConfigFile_KeepsExisting(t *testing.T) {
	home := setupTestHome(t)
	writeTestConfig(t, home, "server:\n  addr: \"custom:1\"\n")

	created, err := WriteDefaultConfigFile(false)
	require.NoError(t, err)
	assert.False(t, created, "should not overwrite without force")

	cfg, err := LoadConfigFile()
	require.NoError(t, err)
	assert.Equal(t, "custom:1", cfg.Server.Addr)

	created, err = WriteDefaultConfigFile(true)
	require.NoError(t, err)
	assert.True(t, created)

	cfg, err = LoadConfigFile()
	require.NoError(t, err)
	assert.Equal(t, "localhost:8080", cfg.Server.Addr)
}
