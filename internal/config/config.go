// Package config handles Verdin client configuration loading and validation.
package config

import (
	"fmt"
	"os"
	"path/filepath"
	"time"
)

// Config is the root configuration structure for the Verdin client.
type Config struct {
	// API settings for the REST backend.
	API APIConfig `yaml:"api" mapstructure:"api"`

	// Push settings for the real-time notification channel.
	Push PushConfig `yaml:"push" mapstructure:"push"`

	// Quota settings for the daily interaction allowance.
	Quota QuotaConfig `yaml:"quota" mapstructure:"quota"`

	// Storage settings for the local cache database.
	Storage StorageConfig `yaml:"storage" mapstructure:"storage"`

	// History settings for the recent-search list.
	History HistoryConfig `yaml:"history" mapstructure:"history"`

	// Logging settings.
	Logging LoggingConfig `yaml:"logging" mapstructure:"logging"`
}

// APIConfig configures the REST client.
type APIConfig struct {
	// BaseURL is the backend root, without a trailing slash.
	BaseURL string `yaml:"base_url" mapstructure:"base_url"`

	// Timeout bounds each request.
	Timeout time.Duration `yaml:"timeout" mapstructure:"timeout"`
}

// PushConfig configures the real-time channel.
type PushConfig struct {
	// URL is the NATS endpoint delivering push notifications.
	URL string `yaml:"url" mapstructure:"url"`

	// SubjectPrefix namespaces the per-session topics.
	SubjectPrefix string `yaml:"subject_prefix" mapstructure:"subject_prefix"`

	// ReconnectWait is the fixed delay between reconnect attempts.
	ReconnectWait time.Duration `yaml:"reconnect_wait" mapstructure:"reconnect_wait"`
}

// QuotaConfig configures the daily interaction quota mirror.
type QuotaConfig struct {
	// DailyLimit caps likes and comments per day.
	DailyLimit int `yaml:"daily_limit" mapstructure:"daily_limit"`
}

// StorageConfig configures the local store.
type StorageConfig struct {
	// Path is the SQLite file backing local storage.
	Path string `yaml:"path" mapstructure:"path"`
}

// HistoryConfig configures the recent-search list.
type HistoryConfig struct {
	// Capacity is how many recent searches are kept.
	Capacity int `yaml:"capacity" mapstructure:"capacity"`
}

// LoggingConfig contains logging settings.
type LoggingConfig struct {
	Level        string `yaml:"level" mapstructure:"level"`
	Format       string `yaml:"format" mapstructure:"format"`
	EnableCaller bool   `yaml:"enable_caller" mapstructure:"enable_caller"`
}

// DefaultConfig returns the default client configuration.
func DefaultConfig() *Config {
	dataDir := defaultDataDir()
	return &Config{
		API: APIConfig{
			BaseURL: "https://api.verdin.app",
			Timeout: 15 * time.Second,
		},
		Push: PushConfig{
			URL:           "nats://localhost:4222",
			SubjectPrefix: "verdin",
			ReconnectWait: 2 * time.Second,
		},
		Quota: QuotaConfig{
			DailyLimit: 50,
		},
		Storage: StorageConfig{
			Path: filepath.Join(dataDir, "local.db"),
		},
		History: HistoryConfig{
			Capacity: 7,
		},
		Logging: LoggingConfig{
			Level:  "info",
			Format: "console",
		},
	}
}

func defaultDataDir() string {
	if xdg := os.Getenv("XDG_DATA_HOME"); xdg != "" {
		return filepath.Join(xdg, "verdin")
	}
	home, err := os.UserHomeDir()
	if err != nil {
		return filepath.Join(".", ".verdin")
	}
	return filepath.Join(home, ".local", "share", "verdin")
}

// Validate checks the configuration for consistency.
func (c *Config) Validate() error {
	if c.API.BaseURL == "" {
		return fmt.Errorf("api.base_url is required")
	}
	if c.API.Timeout <= 0 {
		return fmt.Errorf("api.timeout must be positive, got %v", c.API.Timeout)
	}
	if c.Push.URL == "" {
		return fmt.Errorf("push.url is required")
	}
	if c.Push.SubjectPrefix == "" {
		return fmt.Errorf("push.subject_prefix is required")
	}
	if c.Push.ReconnectWait <= 0 {
		return fmt.Errorf("push.reconnect_wait must be positive, got %v", c.Push.ReconnectWait)
	}
	if c.Quota.DailyLimit <= 0 {
		return fmt.Errorf("quota.daily_limit must be positive, got %d", c.Quota.DailyLimit)
	}
	if c.Storage.Path == "" {
		return fmt.Errorf("storage.path is required")
	}
	if c.History.Capacity <= 0 {
		return fmt.Errorf("history.capacity must be positive, got %d", c.History.Capacity)
	}
	switch c.Logging.Level {
	case "trace", "debug", "info", "warn", "warning", "error", "fatal":
	default:
		return fmt.Errorf("logging.level %q is not valid", c.Logging.Level)
	}
	switch c.Logging.Format {
	case "json", "console":
	default:
		return fmt.Errorf("logging.format %q is not valid", c.Logging.Format)
	}
	return nil
}

// EnsureDirectories creates the directories the client writes into.
func (c *Config) EnsureDirectories() error {
	if err := os.MkdirAll(filepath.Dir(c.Storage.Path), 0o755); err != nil {
		return fmt.Errorf("failed to create storage directory: %w", err)
	}
	return nil
}
