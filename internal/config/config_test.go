package config

import (
	"path/filepath"
	"strings"
	"testing"
	"time"

	"golang.org/x/crypto/bcrypt"
)

func validConfig(t *testing.T) Config {
	t.Helper()
	dir := t.TempDir()
	return Config{
		Port:              "8081",
		SQLiteDBPath:      filepath.Join(dir, "qlct.db"),
		SessionFile:       filepath.Join(dir, "session.json"),
		BcryptCost:        bcrypt.DefaultCost,
		CacheTTL:          5 * time.Minute,
		CacheMaxSize:      256,
		ReconcileInterval: 15 * time.Minute,
	}
}

func TestConfig_Validate(t *testing.T) {
	tests := []struct {
		name        string
		mutate      func(*Config)
		errorString string
	}{
		{
			name:   "valid config",
			mutate: func(c *Config) {},
		},
		{
			name:        "invalid port - non-numeric",
			mutate:      func(c *Config) { c.Port = "abc" },
			errorString: "invalid port 'abc': must be a number",
		},
		{
			name:        "invalid port - out of range",
			mutate:      func(c *Config) { c.Port = "70000" },
			errorString: "invalid port 70000: must be between 1 and 65535",
		},
		{
			name:        "empty database path",
			mutate:      func(c *Config) { c.SQLiteDBPath = "" },
			errorString: "SQLite database path cannot be empty",
		},
		{
			name:        "empty session file",
			mutate:      func(c *Config) { c.SessionFile = "" },
			errorString: "session file path cannot be empty",
		},
		{
			name:        "bcrypt cost out of range",
			mutate:      func(c *Config) { c.BcryptCost = 99 },
			errorString: "invalid bcrypt cost 99",
		},
		{
			name:        "cache TTL too small",
			mutate:      func(c *Config) { c.CacheTTL = 10 * time.Millisecond },
			errorString: "invalid cache TTL",
		},
		{
			name:        "cache size too small",
			mutate:      func(c *Config) { c.CacheMaxSize = 0 },
			errorString: "invalid cache size 0",
		},
		{
			name:        "reconcile interval too small",
			mutate:      func(c *Config) { c.ReconcileInterval = time.Second },
			errorString: "invalid reconcile interval",
		},
		{
			name:        "reconcile interval too large",
			mutate:      func(c *Config) { c.ReconcileInterval = 48 * time.Hour },
			errorString: "must be at most 24 hours",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			cfg := validConfig(t)
			tt.mutate(&cfg)
			err := cfg.Validate()
			if tt.errorString == "" {
				if err != nil {
					t.Fatalf("Validate() unexpected error: %v", err)
				}
				return
			}
			if err == nil {
				t.Fatal("Validate() expected error, got nil")
			}
			if !strings.Contains(err.Error(), tt.errorString) {
				t.Fatalf("Validate() error %q does not contain %q", err, tt.errorString)
			}
		})
	}
}

func TestConfig_ValidateCollectsAllErrors(t *testing.T) {
	cfg := validConfig(t)
	cfg.Port = "abc"
	cfg.CacheMaxSize = 0

	err := cfg.Validate()
	if err == nil {
		t.Fatal("Validate() expected error, got nil")
	}
	for _, want := range []string{"invalid port", "invalid cache size"} {
		if !strings.Contains(err.Error(), want) {
			t.Errorf("error %q missing %q", err, want)
		}
	}
}

func TestLoadDefaults(t *testing.T) {
	cfg := Load()

	if cfg.Port != "8081" {
		t.Errorf("Port = %q, want 8081", cfg.Port)
	}
	if cfg.SQLiteDBPath != "./data/qlct.db" {
		t.Errorf("SQLiteDBPath = %q", cfg.SQLiteDBPath)
	}
	if cfg.CacheTTL != 5*time.Minute {
		t.Errorf("CacheTTL = %v", cfg.CacheTTL)
	}
	if cfg.SeedDemo {
		t.Error("SeedDemo should default to false")
	}
}

func TestLoadEnvOverrides(t *testing.T) {
	t.Setenv("PORT", "9000")
	t.Setenv("CACHE_TTL", "30s")
	t.Setenv("SEED_DEMO", "true")
	t.Setenv("BCRYPT_COST", "6")

	cfg := Load()
	if cfg.Port != "9000" {
		t.Errorf("Port = %q, want 9000", cfg.Port)
	}
	if cfg.CacheTTL != 30*time.Second {
		t.Errorf("CacheTTL = %v, want 30s", cfg.CacheTTL)
	}
	if !cfg.SeedDemo {
		t.Error("SeedDemo not overridden")
	}
	if cfg.BcryptCost != 6 {
		t.Errorf("BcryptCost = %d, want 6", cfg.BcryptCost)
	}
}
