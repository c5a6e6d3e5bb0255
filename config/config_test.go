package config

import (
	"os"
	"path/filepath"
	"testing"
	"time"
)

func writeConfig(t *testing.T, body string) string {
	t.Helper()
	path := filepath.Join(t.TempDir(), "storecached.yaml")
	if err := os.WriteFile(path, []byte(body), 0o600); err != nil {
		t.Fatalf("write config: %v", err)
	}
	return path
}

func TestLoadDefaults(t *testing.T) {
	cfg, err := Load("")
	if err != nil {
		t.Fatalf("Load() error = %v", err)
	}

	if cfg.Server.Address != ":8080" {
		t.Fatalf("Address = %q", cfg.Server.Address)
	}
	if cfg.Cache.DefaultTTL.Std() != 30*time.Minute {
		t.Fatalf("DefaultTTL = %v", cfg.Cache.DefaultTTL)
	}
	if cfg.Cache.DefaultWindow.Std() != 20*time.Minute {
		t.Fatalf("DefaultWindow = %v", cfg.Cache.DefaultWindow)
	}
	if cfg.Cache.SweepInterval.Std() != time.Minute {
		t.Fatalf("SweepInterval = %v", cfg.Cache.SweepInterval)
	}
	if cfg.Catalog.SimulatedSize != 32 {
		t.Fatalf("SimulatedSize = %d", cfg.Catalog.SimulatedSize)
	}
}

func TestLoadFile(t *testing.T) {
	path := writeConfig(t, `
server:
  address: ":9090"
cache:
  default_ttl: 10m
  sweep_interval: 30s
catalog:
  simulated_size: 5
admin:
  token_hash: "$2a$10$fake"
`)

	cfg, err := Load(path)
	if err != nil {
		t.Fatalf("Load() error = %v", err)
	}

	if cfg.Server.Address != ":9090" {
		t.Fatalf("Address = %q", cfg.Server.Address)
	}
	if cfg.Cache.DefaultTTL.Std() != 10*time.Minute {
		t.Fatalf("DefaultTTL = %v", cfg.Cache.DefaultTTL)
	}
	if cfg.Cache.SweepInterval.Std() != 30*time.Second {
		t.Fatalf("SweepInterval = %v", cfg.Cache.SweepInterval)
	}
	if cfg.Catalog.SimulatedSize != 5 {
		t.Fatalf("SimulatedSize = %d", cfg.Catalog.SimulatedSize)
	}
	if cfg.Admin.TokenHash != "$2a$10$fake" {
		t.Fatalf("TokenHash = %q", cfg.Admin.TokenHash)
	}
}

func TestEnvOverridesFile(t *testing.T) {
	path := writeConfig(t, `
server:
  address: ":9090"
cache:
  default_ttl: 10m
`)

	t.Setenv("STORECACHE_ADDRESS", ":7070")
	t.Setenv("STORECACHE_DEFAULT_TTL", "5m")
	t.Setenv("STORECACHE_POSTGRES_DSN", "postgres://env/override")

	cfg, err := Load(path)
	if err != nil {
		t.Fatalf("Load() error = %v", err)
	}

	if cfg.Server.Address != ":7070" {
		t.Fatalf("Address = %q, env override lost", cfg.Server.Address)
	}
	if cfg.Cache.DefaultTTL.Std() != 5*time.Minute {
		t.Fatalf("DefaultTTL = %v, env override lost", cfg.Cache.DefaultTTL)
	}
	if cfg.Catalog.PostgresDSN != "postgres://env/override" {
		t.Fatalf("PostgresDSN = %q", cfg.Catalog.PostgresDSN)
	}
}

func TestLoadRejectsBadDuration(t *testing.T) {
	t.Setenv("STORECACHE_DEFAULT_TTL", "not-a-duration")

	if _, err := Load(""); err == nil {
		t.Fatal("Load() accepted a malformed duration")
	}
}

func TestLoadMissingFile(t *testing.T) {
	if _, err := Load(filepath.Join(t.TempDir(), "absent.yaml")); err == nil {
		t.Fatal("Load() accepted a missing file")
	}
}
