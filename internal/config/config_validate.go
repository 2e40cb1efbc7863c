// Tactica - Chess Puzzle Content API
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/tactica

package config

import (
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/robfig/cron/v3"
)

// Rating bounds accepted anywhere a rating is configured or queried.
const (
	MinRating = 0
	MaxRating = 5000
)

// Validate checks that configuration values are usable.
func (c *Config) Validate() error {
	if err := c.validateServer(); err != nil {
		return err
	}
	if err := c.validateDatabase(); err != nil {
		return err
	}
	if err := c.validateSecurity(); err != nil {
		return err
	}
	if err := c.validateImport(); err != nil {
		return err
	}
	if err := c.validateDaily(); err != nil {
		return err
	}
	return c.validateLogging()
}

func (c *Config) validateServer() error {
	if c.Server.Port < 1 || c.Server.Port > 65535 {
		return fmt.Errorf("HTTP_PORT must be between 1 and 65535, got %d", c.Server.Port)
	}
	if c.Server.Timeout <= 0 {
		return errors.New("HTTP_TIMEOUT must be positive")
	}
	return nil
}

func (c *Config) validateDatabase() error {
	if strings.TrimSpace(c.Database.Path) == "" {
		return errors.New("DUCKDB_PATH is required")
	}
	if c.Database.Threads < 0 {
		return fmt.Errorf("DUCKDB_THREADS must be >= 0, got %d", c.Database.Threads)
	}
	if !c.KV.InMemory && strings.TrimSpace(c.KV.Path) == "" {
		return errors.New("BADGER_PATH is required unless BADGER_IN_MEMORY=true")
	}
	return nil
}

// validateSecurity does not require API_KEY: requests are answered with a
// server configuration error until one is set.
func (c *Config) validateSecurity() error {
	if c.Security.RateLimitDisabled {
		return nil
	}
	if c.Security.RateLimitReqs < 1 {
		return fmt.Errorf("RATE_LIMIT_REQUESTS must be at least 1, got %d", c.Security.RateLimitReqs)
	}
	if c.Security.RateLimitWindow < time.Second {
		return fmt.Errorf("RATE_LIMIT_WINDOW must be at least 1s, got %v", c.Security.RateLimitWindow)
	}
	return nil
}

func (c *Config) validateImport() error {
	if c.Import.ImportBatchSize < 1 {
		return fmt.Errorf("IMPORT_BATCH_SIZE must be at least 1, got %d", c.Import.ImportBatchSize)
	}
	if c.Import.ConnectBatchSize < 1 {
		return fmt.Errorf("CONNECT_BATCH_SIZE must be at least 1, got %d", c.Import.ConnectBatchSize)
	}
	if strings.TrimSpace(c.Import.EntryName) == "" {
		return errors.New("PUZZLE_ARCHIVE_ENTRY must not be empty")
	}
	switch c.Import.ConnectPolicy {
	case ConnectPolicyAtomic, ConnectPolicyPerRecord:
		return nil
	default:
		return fmt.Errorf("CONNECT_POLICY must be %q or %q, got %q",
			ConnectPolicyAtomic, ConnectPolicyPerRecord, c.Import.ConnectPolicy)
	}
}

func (c *Config) validateDaily() error {
	d := c.Daily
	if d.RatingMin < MinRating || d.RatingMax > MaxRating {
		return fmt.Errorf("daily rating range must lie within [%d, %d]", MinRating, MaxRating)
	}
	if d.RatingMin > d.RatingMax {
		return fmt.Errorf("DAILY_RATING_MIN (%d) exceeds DAILY_RATING_MAX (%d)", d.RatingMin, d.RatingMax)
	}
	if _, err := time.LoadLocation(d.Timezone); err != nil {
		return fmt.Errorf("DAILY_TIMEZONE is invalid: %w", err)
	}
	if d.SchedulerEnabled {
		if _, err := cron.ParseStandard(d.Schedule); err != nil {
			return fmt.Errorf("DAILY_SCHEDULE %q is not a valid cron expression: %w", d.Schedule, err)
		}
	}
	return nil
}

func (c *Config) validateLogging() error {
	switch strings.ToLower(c.Logging.Level) {
	case "trace", "debug", "info", "warn", "warning", "error", "fatal", "panic", "disabled":
	default:
		return fmt.Errorf("LOG_LEVEL %q is not a known level", c.Logging.Level)
	}
	switch c.Logging.Format {
	case "json", "console":
		return nil
	default:
		return fmt.Errorf("LOG_FORMAT must be json or console, got %q", c.Logging.Format)
	}
}
