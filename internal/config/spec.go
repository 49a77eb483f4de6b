// Package config defines the tokfactory configuration structure.
package config

import "time"

// Config is the root configuration for a token factory.
type Config struct {
	Registry RegistrySection `koanf:"registry"`
	Storage  StorageSection  `koanf:"storage"`
	Log      LogSection      `koanf:"log"`
	Metrics  MetricsSection  `koanf:"metrics"`
}

// RegistrySection configures the token registry.
type RegistrySection struct {
	// ReserveAddress receives supply not allocated to a token's creator.
	ReserveAddress string `koanf:"reserve_address"`

	// ShardCount is the number of shards per registry index.
	// Must be a power of two.
	ShardCount int `koanf:"shard_count"`
}

// StorageSection configures persistence.
type StorageSection struct {
	// Backend is "memory" or "badger".
	Backend string `koanf:"backend"`

	// DataDir is the Badger directory. Required for the badger backend.
	DataDir string `koanf:"data_dir"`

	// SyncWrites fsyncs every write before acknowledging it.
	SyncWrites bool `koanf:"sync_writes"`

	// GCInterval is the interval between value log GC runs. Zero disables GC.
	GCInterval time.Duration `koanf:"gc_interval"`
}

// LogSection configures logging.
type LogSection struct {
	Level  string `koanf:"level"`  // debug, info, warn, error
	Format string `koanf:"format"` // json, text
}

// MetricsSection configures Prometheus metrics.
type MetricsSection struct {
	Enabled   bool   `koanf:"enabled"`
	Namespace string `koanf:"namespace"`
}
