package config

import (
	"os"
	"path/filepath"
	"testing"
	"time"

	"sales-dashboard/src/helpers"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func writeConfig(t *testing.T, body string) string {
	t.Helper()
	path := filepath.Join(t.TempDir(), "config.yaml")
	require.NoError(t, os.WriteFile(path, []byte(body), 0644))
	return path
}

func TestDefaultIsValid(t *testing.T) {
	cfg := Default()
	require.NoError(t, cfg.Validate())

	assert.Equal(t, 10, cfg.Sync.MaxReconnectAttempts)
	assert.Equal(t, 2*time.Second, cfg.ReconnectBaseDelay())
	assert.Equal(t, 15*time.Second, cfg.ProbeInterval())
	assert.Equal(t, 10*time.Second, cfg.PollInterval())
	assert.Equal(t, 15*time.Second, cfg.HistoryInterval())
	assert.Equal(t, 120, cfg.Backend.HistoryLimit)
}

func TestNewConfigOverlaysDefaults(t *testing.T) {
	path := writeConfig(t, `
name: shop-floor
backend:
  base_url: https://sales.example.com
sync:
  poll_interval_seconds: 3
`)

	cfg, err := NewConfig(path)
	require.NoError(t, err)

	assert.Equal(t, "shop-floor", cfg.Name)
	assert.Equal(t, 3*time.Second, cfg.PollInterval())
	// untouched keys keep defaults
	assert.Equal(t, "/api/data", cfg.Backend.SnapshotPath)
	assert.Equal(t, 10, cfg.Sync.MaxReconnectAttempts)
	assert.Equal(t, "wss://sales.example.com/ws", cfg.ChannelURL())
}

func TestChannelURLPlainHTTP(t *testing.T) {
	cfg := Default()
	cfg.Backend.BaseURL = "http://localhost:8000/"
	assert.Equal(t, "ws://localhost:8000/ws", cfg.ChannelURL())
}

func TestValidateRejects(t *testing.T) {
	cases := map[string]func(c *Config){
		"empty name":       func(c *Config) { c.Name = "" },
		"bad scheme":       func(c *Config) { c.Backend.BaseURL = "ftp://x" },
		"no host":          func(c *Config) { c.Backend.BaseURL = "http://" },
		"zero limit":       func(c *Config) { c.Backend.HistoryLimit = 0 },
		"negative retries": func(c *Config) { c.Backend.MaxRetries = -1 },
		"zero base delay":  func(c *Config) { c.Sync.ReconnectBaseDelayMs = 0 },
		"zero poll":        func(c *Config) { c.Sync.PollIntervalSeconds = 0 },
		"sqlite no path":   func(c *Config) { c.Storage.DBType = "sqlite"; c.Storage.DBPath = "" },
		"postgres no dsn":  func(c *Config) { c.Storage.DBType = "postgres" },
		"unknown db":       func(c *Config) { c.Storage.DBType = "mongo" },
		"negative keep":    func(c *Config) { c.Storage.RetentionDays = -1 },
	}
	for name, mutate := range cases {
		t.Run(name, func(t *testing.T) {
			cfg := Default()
			mutate(cfg)
			err := cfg.Validate()
			require.Error(t, err)
			assert.True(t, helpers.IsConfiguration(err))
		})
	}
}

func TestNewConfigErrors(t *testing.T) {
	_, err := NewConfig(filepath.Join(t.TempDir(), "missing.yaml"))
	assert.Error(t, err)

	_, err = NewConfig(writeConfig(t, "name: [unterminated"))
	assert.Error(t, err)

	_, err = NewConfig(writeConfig(t, "backend:\n  history_limit: -5\n"))
	assert.True(t, helpers.IsConfiguration(err))
}

func TestSaveRoundTrip(t *testing.T) {
	cfg := Default()
	cfg.Name = "saved"
	path := filepath.Join(t.TempDir(), "out.yaml")
	require.NoError(t, cfg.Save(path))

	loaded, err := NewConfig(path)
	require.NoError(t, err)
	assert.Equal(t, "saved", loaded.Name)
	assert.Equal(t, cfg.Sync, loaded.Sync)
}

func TestShippedDefaultFileLoads(t *testing.T) {
	cfg, err := NewConfig(filepath.Join("..", "..", "config", "default.yaml"))
	require.NoError(t, err)
	assert.Equal(t, "none", cfg.Storage.DBType)
	assert.Equal(t, 8090, cfg.View.Port)
}
