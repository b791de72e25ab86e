// Package config defines engine configuration structures and loading hooks.
//
// Conventions:
//   - Provide New() to build a Config with defaults, Load(ctx) to layer
//     file and environment overrides on top.
//   - External errors must be wrapped via this package's error kinds.
package config

import (
	"runtime"
	"time"
)

// Config contains process configuration. Extend as needed.
type Config struct {
	// LogLevel controls verbosity: debug, info, warn, error.
	LogLevel string `koanf:"log_level"`

	// Addr configures the HTTP listen address, e.g. ":8090".
	Addr string `koanf:"addr"`

	// MongoURI is the connection string for the pick store.
	MongoURI string `koanf:"mongo_uri"`

	// MongoDatabase names the database holding users, races and drivers.
	MongoDatabase string `koanf:"mongo_database"`

	// CacheTTLSeconds bounds how long a season snapshot is served without
	// recomputation. Staleness up to this window is accepted.
	CacheTTLSeconds int `koanf:"cache_ttl_seconds"`

	// StoreTimeoutMS bounds the batch-fetch step of an aggregation pass.
	StoreTimeoutMS int `koanf:"store_timeout_ms"`

	// WorkerCount sets the number of concurrent per-user resolution goroutines.
	WorkerCount int `koanf:"worker_count"`

	// TopScoresLimit caps the top single-race score and driver stat rankings.
	TopScoresLimit int `koanf:"top_scores_limit"`
}

// CacheTTL returns the snapshot TTL as a duration.
func (c *Config) CacheTTL() time.Duration {
	return time.Duration(c.CacheTTLSeconds) * time.Second
}

// StoreTimeout returns the store timeout as a duration.
func (c *Config) StoreTimeout() time.Duration {
	return time.Duration(c.StoreTimeoutMS) * time.Millisecond
}

// New creates a Config populated with defaults.
func New() *Config {
	return &Config{
		LogLevel:        "info",
		Addr:            ":8090",
		MongoURI:        "mongodb://localhost:27017",
		MongoDatabase:   "backmarker",
		CacheTTLSeconds: 300,
		StoreTimeoutMS:  5_000,
		WorkerCount:     runtime.NumCPU() * 2,
		TopScoresLimit:  10,
	}
}
