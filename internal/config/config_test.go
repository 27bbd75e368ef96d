package config

import (
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/parth2411/sepa-iot-platform/internal/timeparse"
)

func TestLoad(t *testing.T) {
	yaml := `
api:
  bounds_url: https://bounds.example.com/dev
  fetch_url: https://fetch.example.com/dev
devices:
  file: testdata/devices.json
database:
  host: localhost
  port: 5432
  name: sepa_telemetry
  user: collector
  password: testpass
`
	path := writeTempFile(t, yaml)

	cfg, err := Load(path)
	if err != nil {
		t.Fatalf("Load failed: %v", err)
	}

	if cfg.API.BoundsURL != "https://bounds.example.com/dev" {
		t.Errorf("API.BoundsURL = %q, want %q", cfg.API.BoundsURL, "https://bounds.example.com/dev")
	}
	if cfg.Devices.File != "testdata/devices.json" {
		t.Errorf("Devices.File = %q, want %q", cfg.Devices.File, "testdata/devices.json")
	}
	if cfg.Database.Host != "localhost" {
		t.Errorf("Database.Host = %q, want %q", cfg.Database.Host, "localhost")
	}
}

func TestLoadWithEnvSubstitution(t *testing.T) {
	t.Setenv("TEST_DB_PASSWORD", "secret123")

	yaml := `
database:
  host: localhost
  name: sepa_telemetry
  user: collector
  password: ${TEST_DB_PASSWORD}
`
	path := writeTempFile(t, yaml)

	cfg, err := Load(path)
	if err != nil {
		t.Fatalf("Load failed: %v", err)
	}

	if cfg.Database.Password != "secret123" {
		t.Errorf("Database.Password = %q, want %q", cfg.Database.Password, "secret123")
	}
}

func TestLoadWithDefaults(t *testing.T) {
	yaml := `
database:
  host: localhost
  name: sepa_telemetry
  user: collector
  password: testpass
`
	path := writeTempFile(t, yaml)

	cfg, err := LoadWithDefaults(path)
	if err != nil {
		t.Fatalf("LoadWithDefaults failed: %v", err)
	}

	if cfg.API.BoundsURL != DefaultBoundsURL {
		t.Errorf("API.BoundsURL = %q, want default %q", cfg.API.BoundsURL, DefaultBoundsURL)
	}
	if cfg.API.FetchTimeout != 30*time.Second {
		t.Errorf("API.FetchTimeout = %v, want 30s", cfg.API.FetchTimeout)
	}
	if cfg.Collection.BatchDelay != DefaultBatchDelay {
		t.Errorf("Collection.BatchDelay = %v, want %v", cfg.Collection.BatchDelay, DefaultBatchDelay)
	}
	if cfg.Collection.OnBadTimestamp != timeparse.PolicySubstituteNow {
		t.Errorf("Collection.OnBadTimestamp = %q, want %q", cfg.Collection.OnBadTimestamp, timeparse.PolicySubstituteNow)
	}
	if cfg.Database.Port != 5432 {
		t.Errorf("Database.Port = %d, want 5432", cfg.Database.Port)
	}
	if cfg.Metrics.Path != "/metrics" {
		t.Errorf("Metrics.Path = %q, want /metrics", cfg.Metrics.Path)
	}
}

func TestValidate(t *testing.T) {
	valid := func() *CollectorConfig {
		cfg := &CollectorConfig{}
		cfg.Database.Host = "localhost"
		cfg.Database.Name = "sepa_telemetry"
		cfg.Database.User = "collector"
		cfg.Database.Password = "testpass"
		cfg.applyDefaults()
		return cfg
	}

	t.Run("valid config passes", func(t *testing.T) {
		if err := valid().Validate(); err != nil {
			t.Errorf("Validate failed on valid config: %v", err)
		}
	})

	t.Run("missing database host", func(t *testing.T) {
		cfg := valid()
		cfg.Database.Host = ""
		if err := cfg.Validate(); err == nil {
			t.Error("expected error for missing database.host")
		}
	})

	t.Run("missing database password", func(t *testing.T) {
		cfg := valid()
		cfg.Database.Password = ""
		if err := cfg.Validate(); err == nil {
			t.Error("expected error for missing database.password")
		}
	})

	t.Run("bad timestamp policy", func(t *testing.T) {
		cfg := valid()
		cfg.Collection.OnBadTimestamp = "explode"
		if err := cfg.Validate(); err == nil {
			t.Error("expected error for invalid on_bad_timestamp")
		}
	})

	t.Run("min conns exceed max conns", func(t *testing.T) {
		cfg := valid()
		cfg.Database.MinConns = 20
		cfg.Database.MaxConns = 4
		if err := cfg.Validate(); err == nil {
			t.Error("expected error for min_conns > max_conns")
		}
	})

	t.Run("port out of range", func(t *testing.T) {
		cfg := valid()
		cfg.Server.Port = 70000
		if err := cfg.Validate(); err == nil {
			t.Error("expected error for out-of-range server.port")
		}
	})
}

func TestLoadAndValidateMissingFile(t *testing.T) {
	if _, err := LoadAndValidate(filepath.Join(t.TempDir(), "nope.yaml")); err == nil {
		t.Error("expected error for missing config file")
	}
}

func writeTempFile(t *testing.T, content string) string {
	t.Helper()
	path := filepath.Join(t.TempDir(), "config.yaml")
	if err := os.WriteFile(path, []byte(content), 0o644); err != nil {
		t.Fatalf("write temp config: %v", err)
	}
	return path
}
