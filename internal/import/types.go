// Tactica - Chess Puzzle Content API
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/tactica

package puzzleimport

import (
	"fmt"
	"time"
)

// Pipeline names one import pass.
type Pipeline string

const (
	PipelinePuzzles Pipeline = "puzzles"
	PipelineThemes  Pipeline = "themes"
	PipelineConnect Pipeline = "connect"

	// PipelineAll runs puzzles, themes and connect in that order.
	PipelineAll Pipeline = "all"
)

// Pipelines lists the concrete pipelines in the order PipelineAll runs them.
var Pipelines = []Pipeline{PipelinePuzzles, PipelineThemes, PipelineConnect}

// ParsePipeline validates a pipeline name.
func ParsePipeline(s string) (Pipeline, error) {
	switch p := Pipeline(s); p {
	case PipelinePuzzles, PipelineThemes, PipelineConnect, PipelineAll:
		return p, nil
	default:
		return "", fmt.Errorf("unknown pipeline %q (want puzzles, themes, connect or all)", s)
	}
}

// ImportStats holds the counters of one pipeline run.
type ImportStats struct {
	Pipeline Pipeline `json:"pipeline"`
	RunID    string   `json:"run_id"`

	// Rows is the number of data rows decoded from the archive.
	Rows int64 `json:"rows"`

	// Skipped is the number of rows the normalizer rejected.
	Skipped int64 `json:"skipped"`

	// Processed is the cumulative number of records in committed batches.
	Processed int64 `json:"processed"`

	// Batches is the number of committed batches.
	Batches int64 `json:"batches"`

	// Inserted counts new puzzles or themes; Duplicates counts ones that
	// already existed.
	Inserted   int64 `json:"inserted"`
	Duplicates int64 `json:"duplicates"`

	// Linked counts new puzzle-theme associations.
	Linked int64 `json:"linked"`

	// UnresolvedPuzzles counts connect records whose FEN is not in the
	// catalog; UnresolvedThemes counts theme tokens with no catalog slug.
	UnresolvedPuzzles int64 `json:"unresolved_puzzles"`
	UnresolvedThemes  int64 `json:"unresolved_themes"`

	// Failed counts records whose write failed under the per_record policy.
	Failed int64 `json:"failed"`

	StartTime time.Time `json:"start_time"`
	EndTime   time.Time `json:"end_time,omitempty"`
	DryRun    bool      `json:"dry_run"`
	Error     string    `json:"error,omitempty"`
}

// Duration returns the elapsed time of the run.
func (s *ImportStats) Duration() time.Duration {
	if s.EndTime.IsZero() {
		return time.Since(s.StartTime)
	}
	return s.EndTime.Sub(s.StartTime)
}

// RecordsPerSecond returns the commit rate.
func (s *ImportStats) RecordsPerSecond() float64 {
	duration := s.Duration().Seconds()
	if duration == 0 {
		return 0
	}
	return float64(s.Processed) / duration
}

// ProgressSummary is the reporting view of ImportStats.
type ProgressSummary struct {
	*ImportStats
	Status         string  `json:"status"`
	RecordsPerSec  float64 `json:"records_per_second"`
	ElapsedSeconds float64 `json:"elapsed_seconds"`
}

// ToSummary derives the status and rates for reporting.
func (s *ImportStats) ToSummary(running bool) *ProgressSummary {
	statsCopy := *s
	summary := &ProgressSummary{
		ImportStats:    &statsCopy,
		RecordsPerSec:  s.RecordsPerSecond(),
		ElapsedSeconds: s.Duration().Seconds(),
	}

	switch {
	case running:
		summary.Status = "running"
	case s.Error != "":
		summary.Status = "failed"
	case s.EndTime.IsZero():
		summary.Status = "pending"
	default:
		summary.Status = "completed"
	}
	return summary
}
