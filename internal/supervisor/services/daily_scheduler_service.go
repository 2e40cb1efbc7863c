// Tactica - Chess Puzzle Content API
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/tactica

package services

import (
	"context"
	"fmt"
)

// Scheduler is implemented by *daily.Scheduler.
type Scheduler interface {
	Start(ctx context.Context) error
	Stop() error
}

// DailySchedulerService runs the puzzle-of-the-day scheduler.
type DailySchedulerService struct {
	scheduler Scheduler
}

func NewDailySchedulerService(scheduler Scheduler) *DailySchedulerService {
	return &DailySchedulerService{scheduler: scheduler}
}

// Serve implements suture.Service.
func (s *DailySchedulerService) Serve(ctx context.Context) error {
	if err := s.scheduler.Start(ctx); err != nil {
		return fmt.Errorf("daily scheduler start failed: %w", err)
	}

	<-ctx.Done()

	if err := s.scheduler.Stop(); err != nil {
		return fmt.Errorf("daily scheduler stop failed: %w", err)
	}
	return ctx.Err()
}

func (s *DailySchedulerService) String() string {
	return "daily-scheduler"
}
