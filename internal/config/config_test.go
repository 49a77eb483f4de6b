// Package config defines the tokfactory configuration structure.
package config

import (
	"os"
	"path/filepath"
	"strings"
	"testing"
	"time"
)

func TestDefault(t *testing.T) {
	cfg := Default()

	if cfg.Registry.ReserveAddress != DefaultReserveAddress {
		t.Errorf("Registry.ReserveAddress = %q, want %q", cfg.Registry.ReserveAddress, DefaultReserveAddress)
	}
	if cfg.Registry.ShardCount != DefaultShardCount {
		t.Errorf("Registry.ShardCount = %d, want %d", cfg.Registry.ShardCount, DefaultShardCount)
	}
	if cfg.Storage.Backend != BackendMemory {
		t.Errorf("Storage.Backend = %q, want %q", cfg.Storage.Backend, BackendMemory)
	}
	if !cfg.Storage.SyncWrites {
		t.Error("Storage.SyncWrites should default to true")
	}
	if cfg.Storage.GCInterval != DefaultGCInterval {
		t.Errorf("Storage.GCInterval = %v, want %v", cfg.Storage.GCInterval, DefaultGCInterval)
	}
	if cfg.Log.Level != DefaultLogLevel {
		t.Errorf("Log.Level = %q, want %q", cfg.Log.Level, DefaultLogLevel)
	}
	if cfg.Log.Format != DefaultLogFormat {
		t.Errorf("Log.Format = %q, want %q", cfg.Log.Format, DefaultLogFormat)
	}
	if !cfg.Metrics.Enabled {
		t.Error("Metrics should be enabled by default")
	}

	if err := Verify(cfg); err != nil {
		t.Errorf("Verify(Default()) error = %v", err)
	}
}

func TestVerify(t *testing.T) {
	tests := []struct {
		name    string
		mutate  func(c *Config)
		wantErr string
	}{
		{"defaults", func(c *Config) {}, ""},
		{"empty reserve", func(c *Config) { c.Registry.ReserveAddress = " " }, "reserve_address"},
		{"zero shards", func(c *Config) { c.Registry.ShardCount = 0 }, "shard_count"},
		{"non power of two shards", func(c *Config) { c.Registry.ShardCount = 12 }, "shard_count"},
		{"unknown backend", func(c *Config) { c.Storage.Backend = "postgres" }, "storage.backend"},
		{"badger without dir", func(c *Config) { c.Storage.Backend = BackendBadger; c.Storage.DataDir = "" }, "data_dir"},
		{"badger with dir", func(c *Config) { c.Storage.Backend = BackendBadger }, ""},
		{"memory without dir", func(c *Config) { c.Storage.DataDir = "" }, ""},
		{"negative gc", func(c *Config) { c.Storage.GCInterval = -time.Second }, "gc_interval"},
		{"bad level", func(c *Config) { c.Log.Level = "loud" }, "log.level"},
		{"uppercase level", func(c *Config) { c.Log.Level = "DEBUG" }, ""},
		{"bad format", func(c *Config) { c.Log.Format = "xml" }, "log.format"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			cfg := Default()
			tt.mutate(cfg)

			err := Verify(cfg)
			if tt.wantErr == "" {
				if err != nil {
					t.Errorf("Verify() error = %v, want nil", err)
				}
				return
			}
			if err == nil || !strings.Contains(err.Error(), tt.wantErr) {
				t.Errorf("Verify() error = %v, want mention of %q", err, tt.wantErr)
			}
		})
	}
}

func TestVerify_Nil(t *testing.T) {
	if err := Verify(nil); err == nil {
		t.Error("Verify(nil) should return error")
	}
}

func TestLoad(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, "tokfactory.yaml")
	content := `
registry:
  reserve_address: treasury
storage:
  backend: badger
  data_dir: ` + dir + `
  gc_interval: 1m
log:
  format: text
`
	if err := os.WriteFile(path, []byte(content), 0644); err != nil {
		t.Fatalf("WriteFile() error = %v", err)
	}
	t.Setenv("TOKFACTORY_REGISTRY_SHARD_COUNT", "8")

	cfg, err := Load(path, map[string]any{"log.level": "debug"})
	if err != nil {
		t.Fatalf("Load() error = %v", err)
	}

	if cfg.Registry.ReserveAddress != "treasury" {
		t.Errorf("ReserveAddress = %q, want %q", cfg.Registry.ReserveAddress, "treasury")
	}
	if cfg.Registry.ShardCount != 8 {
		t.Errorf("ShardCount = %d, want 8", cfg.Registry.ShardCount)
	}
	if cfg.Storage.Backend != BackendBadger || cfg.Storage.DataDir != dir {
		t.Errorf("Storage = %+v, want badger at %s", cfg.Storage, dir)
	}
	if cfg.Storage.GCInterval != time.Minute {
		t.Errorf("GCInterval = %v, want 1m", cfg.Storage.GCInterval)
	}
	if !cfg.Storage.SyncWrites {
		t.Error("SyncWrites default should survive a file that omits it")
	}
	if cfg.Log.Level != "debug" || cfg.Log.Format != "text" {
		t.Errorf("Log = %+v, want debug/text", cfg.Log)
	}
}

func TestLoad_NoFile(t *testing.T) {
	cfg, err := Load("", nil)
	if err != nil {
		t.Fatalf("Load() error = %v", err)
	}
	if cfg.Storage.Backend != DefaultBackend {
		t.Errorf("Backend = %q, want %q", cfg.Storage.Backend, DefaultBackend)
	}
}

func TestLoad_Invalid(t *testing.T) {
	_, err := Load("", map[string]any{"storage.backend": "tape"})
	if err == nil || !strings.Contains(err.Error(), "invalid configuration") {
		t.Errorf("Load() error = %v, want invalid configuration", err)
	}
}

func TestLoad_MissingFile(t *testing.T) {
	if _, err := Load("/nonexistent/tokfactory.yaml", nil); err == nil {
		t.Error("Load() should fail for a missing file")
	}
}
