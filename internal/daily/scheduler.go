// Tactica - Chess Puzzle Content API
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/tactica

package daily

import (
	"context"
	"fmt"
	"sync"
	"time"

	"github.com/robfig/cron/v3"
	"github.com/rs/zerolog"

	"github.com/tomtom215/tactica/internal/config"
	"github.com/tomtom215/tactica/internal/logging"
)

// Selector is satisfied by *Service.
type Selector interface {
	Select(ctx context.Context, trigger string) (string, error)
}

// Scheduler runs the daily selection on a cron schedule.
type Scheduler struct {
	selector Selector
	schedule cron.Schedule
	expr     string
	loc      *time.Location
	timeout  time.Duration
	logger   zerolog.Logger

	mu      sync.Mutex
	running bool
	stopCh  chan struct{}
	doneCh  chan struct{}
	lastRun time.Time
	lastErr error
}

// NewScheduler parses cfg.Schedule (standard 5-field cron) in cfg.Timezone.
func NewScheduler(selector Selector, cfg *config.DailyConfig) (*Scheduler, error) {
	schedule, err := cron.ParseStandard(cfg.Schedule)
	if err != nil {
		return nil, fmt.Errorf("parse daily schedule %q: %w", cfg.Schedule, err)
	}
	loc := time.UTC
	if cfg.Timezone != "" {
		if loc, err = time.LoadLocation(cfg.Timezone); err != nil {
			return nil, fmt.Errorf("invalid timezone %q: %w", cfg.Timezone, err)
		}
	}
	return &Scheduler{
		selector: selector,
		schedule: schedule,
		expr:     cfg.Schedule,
		loc:      loc,
		timeout:  time.Minute,
		logger:   logging.WithComponent("daily-scheduler"),
	}, nil
}

// NextRun returns the first scheduled time after t.
func (s *Scheduler) NextRun(t time.Time) time.Time {
	return s.schedule.Next(t.In(s.loc))
}

// Start launches the scheduling loop.
func (s *Scheduler) Start(ctx context.Context) error {
	s.mu.Lock()
	if s.running {
		s.mu.Unlock()
		return fmt.Errorf("scheduler already running")
	}
	s.running = true
	s.stopCh = make(chan struct{})
	s.doneCh = make(chan struct{})
	s.mu.Unlock()

	s.logger.Info().
		Str("schedule", s.expr).
		Str("timezone", s.loc.String()).
		Time("next_run", s.NextRun(time.Now())).
		Msg("Starting daily puzzle scheduler")

	go s.run(ctx)
	return nil
}

// Stop ends the loop and waits for it to exit.
func (s *Scheduler) Stop() error {
	s.mu.Lock()
	if !s.running {
		s.mu.Unlock()
		return nil
	}
	stopCh, doneCh := s.stopCh, s.doneCh
	s.mu.Unlock()

	close(stopCh)
	<-doneCh

	s.mu.Lock()
	s.running = false
	s.mu.Unlock()

	s.logger.Info().Msg("Daily puzzle scheduler stopped")
	return nil
}

// LastRun returns when the last selection ran and its error.
func (s *Scheduler) LastRun() (time.Time, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.lastRun, s.lastErr
}

func (s *Scheduler) run(ctx context.Context) {
	defer close(s.doneCh)

	for {
		next := s.NextRun(time.Now())
		timer := time.NewTimer(time.Until(next))

		select {
		case <-timer.C:
			s.fire(ctx)
		case <-s.stopCh:
			timer.Stop()
			return
		case <-ctx.Done():
			timer.Stop()
			return
		}
	}
}

func (s *Scheduler) fire(ctx context.Context) {
	runCtx, cancel := context.WithTimeout(ctx, s.timeout)
	defer cancel()
	runCtx = logging.ContextWithRunID(runCtx, logging.GenerateRunID())

	id, err := s.selector.Select(runCtx, TriggerScheduler)

	s.mu.Lock()
	s.lastRun = time.Now()
	s.lastErr = err
	s.mu.Unlock()

	if err != nil {
		s.logger.Error().Err(err).Msg("Scheduled daily selection failed")
		return
	}
	s.logger.Info().Str("puzzle_id", id).Time("next_run", s.NextRun(time.Now())).Msg("Scheduled daily selection done")
}
