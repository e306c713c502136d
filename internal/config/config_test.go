package config

import (
	"os"
	"path/filepath"
	"testing"
	"time"
)

func TestDefaultConfigIsValid(t *testing.T) {
	cfg := DefaultConfig()
	if err := cfg.Validate(); err != nil {
		t.Fatalf("default config invalid: %v", err)
	}
	if cfg.History.Capacity != 7 {
		t.Errorf("history.capacity = %d, want 7", cfg.History.Capacity)
	}
	if cfg.Quota.DailyLimit != 50 {
		t.Errorf("quota.daily_limit = %d, want 50", cfg.Quota.DailyLimit)
	}
}

func TestValidateRejectsBadValues(t *testing.T) {
	tests := []struct {
		name   string
		mutate func(*Config)
	}{
		{"empty base url", func(c *Config) { c.API.BaseURL = "" }},
		{"non-positive timeout", func(c *Config) { c.API.Timeout = 0 }},
		{"empty push url", func(c *Config) { c.Push.URL = "" }},
		{"empty subject prefix", func(c *Config) { c.Push.SubjectPrefix = "" }},
		{"non-positive reconnect wait", func(c *Config) { c.Push.ReconnectWait = -time.Second }},
		{"non-positive quota", func(c *Config) { c.Quota.DailyLimit = 0 }},
		{"empty storage path", func(c *Config) { c.Storage.Path = "" }},
		{"non-positive history capacity", func(c *Config) { c.History.Capacity = 0 }},
		{"bad log level", func(c *Config) { c.Logging.Level = "loud" }},
		{"bad log format", func(c *Config) { c.Logging.Format = "xml" }},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			cfg := DefaultConfig()
			tt.mutate(cfg)
			if err := cfg.Validate(); err == nil {
				t.Error("Validate() should have failed")
			}
		})
	}
}

func TestLoadFromFile(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, "config.yaml")
	content := `
api:
  base_url: https://staging.verdin.app
quota:
  daily_limit: 10
history:
  capacity: 3
logging:
  level: debug
  format: json
`
	if err := os.WriteFile(path, []byte(content), 0o644); err != nil {
		t.Fatal(err)
	}

	cfg, err := LoadFromFile(path)
	if err != nil {
		t.Fatalf("LoadFromFile: %v", err)
	}

	if cfg.API.BaseURL != "https://staging.verdin.app" {
		t.Errorf("base_url = %s", cfg.API.BaseURL)
	}
	if cfg.Quota.DailyLimit != 10 {
		t.Errorf("daily_limit = %d", cfg.Quota.DailyLimit)
	}
	if cfg.History.Capacity != 3 {
		t.Errorf("capacity = %d", cfg.History.Capacity)
	}
	if cfg.Logging.Level != "debug" || cfg.Logging.Format != "json" {
		t.Errorf("logging = %+v", cfg.Logging)
	}
	// Unset keys keep defaults.
	if cfg.Push.SubjectPrefix != "verdin" {
		t.Errorf("subject_prefix = %s, want default", cfg.Push.SubjectPrefix)
	}
}

func TestLoadMissingExplicitFileFails(t *testing.T) {
	if _, err := LoadFromFile(filepath.Join(t.TempDir(), "nope.yaml")); err == nil {
		t.Error("explicitly specified missing config file should fail")
	}
}

func TestEnvOverride(t *testing.T) {
	t.Setenv("VERDIN_API_BASE_URL", "https://env.verdin.app")
	t.Setenv("VERDIN_QUOTA_DAILY_LIMIT", "5")

	cfg, err := LoadDefault()
	if err != nil {
		t.Fatalf("LoadDefault: %v", err)
	}
	if cfg.API.BaseURL != "https://env.verdin.app" {
		t.Errorf("base_url = %s, want env value", cfg.API.BaseURL)
	}
	if cfg.Quota.DailyLimit != 5 {
		t.Errorf("daily_limit = %d, want 5", cfg.Quota.DailyLimit)
	}
}
