// Tactica - Chess Puzzle Content API
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/tactica

package services

import (
	"context"
	"errors"
	"sync/atomic"

	puzzleimport "github.com/tomtom215/tactica/internal/import"
	"github.com/tomtom215/tactica/internal/logging"
)

// Importer is the subset of *puzzleimport.Runner the service needs.
type Importer interface {
	Run(ctx context.Context, p puzzleimport.Pipeline, opts puzzleimport.Options) (*puzzleimport.ImportStats, error)
	IsRunning() bool
	Stop() error
}

// ImportService owns the import runner's lifetime. With autoStart it runs
// every pipeline once; otherwise runs are triggered over HTTP or the CLI.
type ImportService struct {
	importer  Importer
	autoStart bool

	// attempted keeps a supervisor restart from repeating the startup run.
	attempted atomic.Bool
}

// NewImportService wraps importer.
func NewImportService(importer Importer, autoStart bool) *ImportService {
	return &ImportService{
		importer:  importer,
		autoStart: autoStart,
	}
}

// Serve implements suture.Service. Import failures are logged, not returned:
// a bad archive would fail again on every restart.
func (s *ImportService) Serve(ctx context.Context) error {
	if s.autoStart && s.attempted.CompareAndSwap(false, true) {
		s.runAll(ctx)
	} else if !s.autoStart {
		logging.Info().Msg("Import service started (on-demand mode)")
	}

	<-ctx.Done()

	if s.importer.IsRunning() {
		logging.Info().Msg("Stopping running import due to shutdown")
		if err := s.importer.Stop(); err != nil && !errors.Is(err, puzzleimport.ErrNoImportRunning) {
			logging.Warn().Err(err).Msg("Failed to stop import")
		}
	}
	return ctx.Err()
}

func (s *ImportService) runAll(ctx context.Context) {
	logging.Info().Msg("Starting automatic import of all pipelines")
	stats, err := s.importer.Run(ctx, puzzleimport.PipelineAll, puzzleimport.Options{})
	switch {
	case err == nil:
		logging.Info().
			Str("last_pipeline", string(stats.Pipeline)).
			Int64("processed", stats.Processed).
			Msg("Automatic import completed")
	case ctx.Err() != nil:
		logging.Info().Msg("Automatic import canceled due to shutdown")
	case errors.Is(err, puzzleimport.ErrImportInProgress):
		logging.Info().Msg("Skipping automatic import: a run is already in progress")
	default:
		logging.Error().Err(err).Msg("Automatic import failed")
	}
}

func (s *ImportService) String() string {
	return "puzzle-import"
}
