// Tactica - Chess Puzzle Content API
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/tactica

package api

import (
	"context"
	"fmt"
	"time"

	"github.com/tomtom215/tactica/internal/cache"
	"github.com/tomtom215/tactica/internal/config"
	"github.com/tomtom215/tactica/internal/logging"
	"github.com/tomtom215/tactica/internal/middleware"
	"github.com/tomtom215/tactica/internal/models"
)

// Catalog is the read side of the puzzle store. *database.DB implements it.
type Catalog interface {
	GetPuzzle(ctx context.Context, id string) (*models.Puzzle, error)
	RandomPuzzleID(ctx context.Context, filter models.PuzzleFilter) (string, error)
	ListThemes(ctx context.Context) ([]models.Theme, error)
	Counts(ctx context.Context) (models.CatalogCounts, error)
	Ping(ctx context.Context) error
}

// DailyPuzzles is the puzzle-of-the-day service. *daily.Service implements it.
type DailyPuzzles interface {
	Select(ctx context.Context, trigger string) (string, error)
	Current(ctx context.Context) (*models.Puzzle, error)
}

const themesCacheKey = "themes"

// latencySamples is how many recent requests /health summarizes.
const latencySamples = 1000

// Handler contains dependencies for API handlers
//
// Handler methods are split across files:
//   - handlers_puzzles.go: random, by id, solve, hint
//   - handlers_daily.go: daily puzzle and cron trigger
//   - handlers_themes.go: theme catalog
//   - handlers_health.go: health
type Handler struct {
	catalog   Catalog
	daily     DailyPuzzles
	config    *config.Config
	startTime time.Time

	themes  *cache.Cache[[]models.Theme]
	puzzles *cache.Cache[*models.Puzzle]
	latency *middleware.LatencyTracker
}

// NewHandler wires the handlers. Caches are created only when cfg.Cache.Enabled;
// a nil cache is a pass-through.
func NewHandler(catalog Catalog, daily DailyPuzzles, cfg *config.Config) (*Handler, error) {
	h := &Handler{
		catalog:   catalog,
		daily:     daily,
		config:    cfg,
		startTime: time.Now(),
		latency:   middleware.NewLatencyTracker(latencySamples),
	}

	if cfg.Cache.Enabled {
		var err error
		if h.themes, err = cache.New[[]models.Theme]("themes", 16, cfg.Cache.TTL); err != nil {
			return nil, fmt.Errorf("create themes cache: %w", err)
		}
		if h.puzzles, err = cache.New[*models.Puzzle]("puzzles", cfg.Cache.MaxEntries, cfg.Cache.TTL); err != nil {
			h.themes.Close()
			return nil, fmt.Errorf("create puzzles cache: %w", err)
		}
	}
	return h, nil
}

// ClearCache drops cached themes and puzzles. Called after every completed
// import so readers see the new catalog.
func (h *Handler) ClearCache() {
	h.themes.Clear()
	h.puzzles.Clear()
	logging.Debug().Msg("Response caches cleared")
}

// Close releases cache resources.
func (h *Handler) Close() {
	h.themes.Close()
	h.puzzles.Close()
}

// puzzle loads a puzzle through the cache.
func (h *Handler) puzzle(ctx context.Context, id string) (*models.Puzzle, error) {
	if p, ok := h.puzzles.Get(id); ok {
		return p, nil
	}
	p, err := h.catalog.GetPuzzle(ctx, id)
	if err != nil {
		return nil, err
	}
	h.puzzles.Set(id, p)
	return p, nil
}
