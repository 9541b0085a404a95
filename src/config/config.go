package config

import (
	"fmt"
	"net/url"
	"os"
	"time"

	"sales-dashboard/src/helpers"
	"sales-dashboard/src/models"

	"gopkg.in/yaml.v3"
)

// -----------------------------------------------------------------------------

// Config wraps models.MConfig and provides business logic methods
type Config struct {
	*models.MConfig
}

// -----------------------------------------------------------------------------

// Default returns the built-in settings used when the file leaves a key out.
func Default() *Config {
	return &Config{MConfig: &models.MConfig{
		Name:     "sales-dashboard",
		LogLevel: "INFO",
		GrpcHost: "127.0.0.1",
		GrpcPort: 0,
		Backend: models.MBackendConfig{
			BaseURL:        "http://127.0.0.1:8000",
			SnapshotPath:   "/api/data",
			HistoryPath:    "/api/historico",
			ChannelPath:    "/ws",
			HistoryLimit:   120,
			RequestTimeout: 10,
			MaxRetries:     0,
			UserAgent:      "sales-dashboard/1.0",
		},
		Sync: models.MSyncConfig{
			MaxReconnectAttempts:   10,
			ReconnectBaseDelayMs:   2000,
			ProbeIntervalSeconds:   15,
			PollIntervalSeconds:    10,
			HistoryIntervalSeconds: 15,
			HistoryOnSnapshot:      true,
			EventLogSize:           256,
		},
		View: models.MViewConfig{
			Host:        "127.0.0.1",
			Port:        8090,
			ChartWidth:  800,
			ChartHeight: 400,
		},
		Storage: models.MStorageConfig{
			DBType:        "none",
			DBPath:        "./data/snapshots.db",
			RetentionDays: 7,
		},
	}}
}

// -----------------------------------------------------------------------------

// NewConfig creates a new Config instance from YAML file.
// Keys missing from the file keep their Default() values.
func NewConfig(configPath string) (*Config, error) {
	// 1. Read the YAML file content
	data, err := os.ReadFile(configPath)
	if err != nil {
		return nil, fmt.Errorf("failed to read config file '%s': %w", configPath, err)
	}

	// 2. Unmarshal data over the defaults
	config := Default()
	if err := yaml.Unmarshal(data, config.MConfig); err != nil {
		return nil, fmt.Errorf("failed to parse config from YAML: %w", err)
	}

	// 3. Validate the loaded configuration
	if err := config.Validate(); err != nil {
		return nil, fmt.Errorf("config validation failed: %w", err)
	}

	return config, nil
}

// -----------------------------------------------------------------------------

// Validate performs basic configuration validation
func (c *Config) Validate() error {
	if c.Name == "" {
		return helpers.NewConfigurationError("application name cannot be empty")
	}

	// Backend
	u, err := url.Parse(c.Backend.BaseURL)
	if err != nil || u.Host == "" {
		return helpers.NewConfigurationError("invalid backend base_url: %q", c.Backend.BaseURL)
	}
	if u.Scheme != "http" && u.Scheme != "https" {
		return helpers.NewConfigurationError("backend base_url must be http or https, got %q", u.Scheme)
	}
	if c.Backend.SnapshotPath == "" || c.Backend.HistoryPath == "" || c.Backend.ChannelPath == "" {
		return helpers.NewConfigurationError("backend paths cannot be empty")
	}
	if c.Backend.HistoryLimit <= 0 {
		return helpers.NewConfigurationError("history limit must be greater than 0")
	}
	if c.Backend.RequestTimeout <= 0 {
		return helpers.NewConfigurationError("request timeout must be greater than 0")
	}
	if c.Backend.MaxRetries < 0 {
		return helpers.NewConfigurationError("max retries cannot be negative")
	}

	// Sync
	if c.Sync.MaxReconnectAttempts < 0 {
		return helpers.NewConfigurationError("max reconnect attempts cannot be negative")
	}
	if c.Sync.ReconnectBaseDelayMs <= 0 {
		return helpers.NewConfigurationError("reconnect base delay must be greater than 0")
	}
	if c.Sync.ProbeIntervalSeconds <= 0 || c.Sync.PollIntervalSeconds <= 0 || c.Sync.HistoryIntervalSeconds <= 0 {
		return helpers.NewConfigurationError("sync intervals must be greater than 0")
	}

	// View
	if c.View.Host == "" {
		return helpers.NewConfigurationError("view host cannot be empty")
	}
	if c.View.Port < 0 || c.View.Port > 65535 {
		return helpers.NewConfigurationError("invalid view port number: %d", c.View.Port)
	}
	if c.View.ChartWidth <= 0 || c.View.ChartHeight <= 0 {
		return helpers.NewConfigurationError("chart dimensions must be greater than 0")
	}

	if c.GrpcPort < 0 || c.GrpcPort > 65535 {
		return helpers.NewConfigurationError("invalid grpc port number: %d", c.GrpcPort)
	}

	// Storage
	if c.Storage.RetentionDays < 0 {
		return helpers.NewConfigurationError("retention days cannot be negative")
	}
	switch c.Storage.DBType {
	case "", "none":
	case "sqlite":
		if c.Storage.DBPath == "" {
			return helpers.NewConfigurationError("database path cannot be empty for sqlite")
		}
	case "postgres":
		if c.Storage.DBConnectionString == "" {
			return helpers.NewConfigurationError("connection string cannot be empty for postgres")
		}
	default:
		return helpers.NewConfigurationError("unsupported database type: %s", c.Storage.DBType)
	}

	return nil
}

// -----------------------------------------------------------------------------
// Derived values
// -----------------------------------------------------------------------------

func (c *Config) RequestTimeout() time.Duration {
	return time.Duration(c.Backend.RequestTimeout) * time.Second
}

func (c *Config) ReconnectBaseDelay() time.Duration {
	return time.Duration(c.Sync.ReconnectBaseDelayMs) * time.Millisecond
}

func (c *Config) ProbeInterval() time.Duration {
	return time.Duration(c.Sync.ProbeIntervalSeconds) * time.Second
}

func (c *Config) PollInterval() time.Duration {
	return time.Duration(c.Sync.PollIntervalSeconds) * time.Second
}

func (c *Config) HistoryInterval() time.Duration {
	return time.Duration(c.Sync.HistoryIntervalSeconds) * time.Second
}

// ChannelURL maps the backend base URL onto ws:// or wss:// plus the channel path.
func (c *Config) ChannelURL() string {
	u, err := url.Parse(c.Backend.BaseURL)
	if err != nil {
		return ""
	}
	if u.Scheme == "https" {
		u.Scheme = "wss"
	} else {
		u.Scheme = "ws"
	}
	u.Path = c.Backend.ChannelPath
	u.RawQuery = ""
	return u.String()
}

// -----------------------------------------------------------------------------

// Save persists the current configuration to the specified YAML file path
func (c *Config) Save(configPath string) error {
	// 1. Marshal the struct to YAML
	data, err := yaml.Marshal(c.MConfig)
	if err != nil {
		return fmt.Errorf("failed to marshal config to YAML: %w", err)
	}

	// 2. Write to file (0644 permissions)
	if err := os.WriteFile(configPath, data, 0644); err != nil {
		return fmt.Errorf("failed to write config to file '%s': %w", configPath, err)
	}

	return nil
}
