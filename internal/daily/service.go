// Tactica - Chess Puzzle Content API
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/tactica

package daily

import (
	"context"
	"errors"
	"fmt"
	"time"

	gobreaker "github.com/sony/gobreaker/v2"

	"github.com/tomtom215/tactica/internal/config"
	"github.com/tomtom215/tactica/internal/database"
	"github.com/tomtom215/tactica/internal/logging"
	"github.com/tomtom215/tactica/internal/metrics"
	"github.com/tomtom215/tactica/internal/models"
)

// Selection triggers, used as metric labels.
const (
	TriggerHTTP      = "cron_http"
	TriggerScheduler = "scheduler"
	TriggerCLI       = "cli"
)

var (
	// ErrNoCandidate is returned when no puzzle lies in the daily rating range.
	ErrNoCandidate = errors.New("no puzzle in the daily rating range")

	// ErrPuzzleMissing is returned when the pointer names a puzzle that no
	// longer exists.
	ErrPuzzleMissing = errors.New("daily puzzle no longer exists")
)

// Catalog is the read side of the puzzle store.
type Catalog interface {
	RandomPuzzleID(ctx context.Context, filter models.PuzzleFilter) (string, error)
	GetPuzzle(ctx context.Context, id string) (*models.Puzzle, error)
}

// Service selects and serves the puzzle of the day. Pointer store access
// goes through a circuit breaker; the catalog is called directly.
type Service struct {
	catalog   Catalog
	pointers  PointerStore
	cb        *gobreaker.CircuitBreaker[string]
	ratingMin int
	ratingMax int
}

// NewService builds a Service for the configured rating window.
func NewService(cfg *config.DailyConfig, catalog Catalog, pointers PointerStore) *Service {
	const cbName = "pointer-store"
	metrics.PointerStoreBreakerState.Set(0)

	cb := gobreaker.NewCircuitBreaker[string](gobreaker.Settings{
		Name:        cbName,
		MaxRequests: 1,
		Interval:    time.Minute,
		Timeout:     30 * time.Second,

		ReadyToTrip: func(counts gobreaker.Counts) bool {
			trip := counts.ConsecutiveFailures >= 5
			if trip {
				logging.Warn().Uint32("consecutive_failures", counts.ConsecutiveFailures).Msg("[CIRCUIT BREAKER] Opening pointer store circuit")
			}
			return trip
		},

		// An unset pointer is a normal answer, not a store failure.
		IsSuccessful: func(err error) bool {
			return err == nil || errors.Is(err, ErrPointerNotSet) || errors.Is(err, context.Canceled)
		},

		OnStateChange: func(name string, from, to gobreaker.State) {
			logging.Info().Str("breaker", name).Str("from", from.String()).Str("to", to.String()).Msg("[CIRCUIT BREAKER] State transition")
			metrics.PointerStoreBreakerState.Set(stateToFloat(to))
		},
	})

	return &Service{
		catalog:   catalog,
		pointers:  pointers,
		cb:        cb,
		ratingMin: cfg.RatingMin,
		ratingMax: cfg.RatingMax,
	}
}

// Select picks a random puzzle in the rating window and stores it as the
// puzzle of the day.
func (s *Service) Select(ctx context.Context, trigger string) (id string, err error) {
	defer func() { metrics.RecordDailySelection(trigger, err) }()

	ratingMin, ratingMax := s.ratingMin, s.ratingMax
	id, err = s.catalog.RandomPuzzleID(ctx, models.PuzzleFilter{RatingMin: &ratingMin, RatingMax: &ratingMax})
	if errors.Is(err, database.ErrNotFound) {
		return "", ErrNoCandidate
	}
	if err != nil {
		return "", fmt.Errorf("select daily puzzle: %w", err)
	}

	if _, err = s.cb.Execute(func() (string, error) {
		return id, s.pointers.Set(ctx, id)
	}); err != nil {
		return "", fmt.Errorf("store daily puzzle: %w", err)
	}

	logging.Ctx(ctx).Info().
		Str("puzzle_id", id).
		Str("trigger", trigger).
		Int("rating_min", ratingMin).
		Int("rating_max", ratingMax).
		Msg("Daily puzzle selected")
	return id, nil
}

// CurrentID returns the stored pointer or ErrPointerNotSet.
func (s *Service) CurrentID(ctx context.Context) (string, error) {
	return s.cb.Execute(func() (string, error) {
		return s.pointers.Get(ctx)
	})
}

// Current returns the puzzle the pointer names.
func (s *Service) Current(ctx context.Context) (*models.Puzzle, error) {
	id, err := s.CurrentID(ctx)
	if err != nil {
		return nil, err
	}
	puzzle, err := s.catalog.GetPuzzle(ctx, id)
	if errors.Is(err, database.ErrNotFound) {
		logging.Ctx(ctx).Warn().Str("puzzle_id", id).Msg("Daily pointer names a missing puzzle")
		return nil, ErrPuzzleMissing
	}
	if err != nil {
		return nil, err
	}
	return puzzle, nil
}

// BreakerState reports the pointer store circuit state.
func (s *Service) BreakerState() gobreaker.State {
	return s.cb.State()
}

func stateToFloat(state gobreaker.State) float64 {
	switch state {
	case gobreaker.StateHalfOpen:
		return 1
	case gobreaker.StateOpen:
		return 2
	default:
		return 0
	}
}
