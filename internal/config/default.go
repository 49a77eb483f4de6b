// Package config defines the tokfactory configuration structure.
package config

import "time"

// Storage backends.
const (
	BackendMemory = "memory"
	BackendBadger = "badger"
)

// Default configuration values.
const (
	DefaultReserveAddress = "factory"
	DefaultShardCount     = 32

	DefaultBackend    = BackendMemory
	DefaultDataDir    = "/var/lib/tokfactory/data"
	DefaultGCInterval = 10 * time.Minute

	DefaultLogLevel  = "info"
	DefaultLogFormat = "json"

	DefaultMetricsNamespace = "tokfactory"
)

// Default returns the default configuration.
func Default() *Config {
	return &Config{
		Registry: RegistrySection{
			ReserveAddress: DefaultReserveAddress,
			ShardCount:     DefaultShardCount,
		},
		Storage: StorageSection{
			Backend:    DefaultBackend,
			DataDir:    DefaultDataDir,
			SyncWrites: true,
			GCInterval: DefaultGCInterval,
		},
		Log: LogSection{
			Level:  DefaultLogLevel,
			Format: DefaultLogFormat,
		},
		Metrics: MetricsSection{
			Enabled:   true,
			Namespace: DefaultMetricsNamespace,
		},
	}
}
