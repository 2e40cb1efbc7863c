// Tactica - Chess Puzzle Content API
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/tactica

// Package config loads Tactica configuration from defaults, an optional YAML
// file and environment variables, in that order of precedence.
package config

import (
	"net"
	"strconv"
	"time"
)

// Config is the root configuration tree.
type Config struct {
	Server   ServerConfig   `koanf:"server"`
	Database DatabaseConfig `koanf:"database"`
	KV       KVConfig       `koanf:"kv"`
	Security SecurityConfig `koanf:"security"`
	Import   ImportConfig   `koanf:"import"`
	Daily    DailyConfig    `koanf:"daily"`
	Cache    CacheConfig    `koanf:"cache"`
	Logging  LoggingConfig  `koanf:"logging"`
}

// ServerConfig configures the HTTP listener.
type ServerConfig struct {
	Host            string        `koanf:"host"`
	Port            int           `koanf:"port"`
	Timeout         time.Duration `koanf:"timeout"`
	ShutdownTimeout time.Duration `koanf:"shutdown_timeout"`
}

// DatabaseConfig configures the embedded DuckDB store.
type DatabaseConfig struct {
	Path      string `koanf:"path"` // ":memory:" for an ephemeral store
	MaxMemory string `koanf:"max_memory"`
	Threads   int    `koanf:"threads"` // 0 = runtime.NumCPU()
}

// KVConfig configures the Badger store that holds the daily puzzle pointer
// and import progress.
type KVConfig struct {
	Path     string `koanf:"path"`
	InMemory bool   `koanf:"in_memory"`
}

// SecurityConfig holds the pre-shared credentials and HTTP protections.
type SecurityConfig struct {
	APIKey            string        `koanf:"api_key"`
	CronSecret        string        `koanf:"cron_secret"`
	CORSOrigins       []string      `koanf:"cors_origins"`
	RateLimitReqs     int           `koanf:"rate_limit_reqs"`
	RateLimitWindow   time.Duration `koanf:"rate_limit_window"`
	RateLimitDisabled bool          `koanf:"rate_limit_disabled"`
}

// Connect pipeline failure policies.
const (
	ConnectPolicyAtomic    = "atomic"
	ConnectPolicyPerRecord = "per_record"
)

// ImportConfig configures the archive pipelines.
type ImportConfig struct {
	ArchivePath      string `koanf:"archive_path"`
	EntryName        string `koanf:"entry_name"`
	ImportBatchSize  int    `koanf:"import_batch_size"`
	ConnectBatchSize int    `koanf:"connect_batch_size"`

	// ConnectPolicy is "atomic" (one transaction per batch) or
	// "per_record" (one transaction per puzzle, failures counted).
	ConnectPolicy string `koanf:"connect_policy"`

	// ValidateFEN skips rows whose position is not a six-field FEN.
	ValidateFEN bool `koanf:"validate_fen"`

	DryRun bool `koanf:"dry_run"`

	// AutoStart runs every pipeline once when the server starts.
	AutoStart bool `koanf:"auto_start"`
}

// DailyConfig configures puzzle-of-the-day selection.
type DailyConfig struct {
	RatingMin        int    `koanf:"rating_min"`
	RatingMax        int    `koanf:"rating_max"`
	SchedulerEnabled bool   `koanf:"scheduler_enabled"`
	Schedule         string `koanf:"schedule"` // 5-field cron expression
	Timezone         string `koanf:"timezone"`
}

// CacheConfig configures the in-process response cache.
type CacheConfig struct {
	Enabled bool          `koanf:"enabled"`
	TTL     time.Duration `koanf:"ttl"`

	// MaxEntries bounds the puzzle-by-id cache.
	MaxEntries int64 `koanf:"max_entries"`
}

// LoggingConfig mirrors logging.Config.
type LoggingConfig struct {
	Level  string `koanf:"level"`
	Format string `koanf:"format"`
	Caller bool   `koanf:"caller"`
}

// Load reads configuration from all sources and validates it.
func Load() (*Config, error) {
	return LoadWithKoanf()
}

// Addr returns host:port for http.Server.
func (s ServerConfig) Addr() string {
	return net.JoinHostPort(s.Host, strconv.Itoa(s.Port))
}
