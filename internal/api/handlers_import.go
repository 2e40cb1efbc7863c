// Tactica - Chess Puzzle Content API
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/tactica

package api

import (
	"context"
	"errors"
	"net/http"
	"strconv"

	"github.com/go-chi/chi/v5"

	puzzleimport "github.com/tomtom215/tactica/internal/import"
	"github.com/tomtom215/tactica/internal/logging"
)

// ImportController manages archive imports. *puzzleimport.Runner implements it.
type ImportController interface {
	Start(p puzzleimport.Pipeline, opts puzzleimport.Options) error
	Stop() error
	IsRunning() bool
	GetStats() *puzzleimport.ImportStats
	LastStats() map[puzzleimport.Pipeline]*puzzleimport.ImportStats
	ClearProgress(ctx context.Context) error
}

// ImportHandlers holds the import management handlers.
type ImportHandlers struct {
	importer ImportController
}

// NewImportHandlers creates a new set of import handlers.
func NewImportHandlers(importer ImportController) *ImportHandlers {
	return &ImportHandlers{importer: importer}
}

// ImportStatus is the body of GET /api/v1/import/status.
type ImportStatus struct {
	Running bool                                                    `json:"running"`
	Current *puzzleimport.ProgressSummary                           `json:"current,omitempty"`
	Last    map[puzzleimport.Pipeline]*puzzleimport.ProgressSummary `json:"last,omitempty"`
}

// HandleStartImport handles POST /api/v1/import/{pipeline}[?dry_run=true].
// The run uses the configured archive; the response is 202 and the run
// continues in the background.
func (h *ImportHandlers) HandleStartImport(w http.ResponseWriter, r *http.Request) {
	rw := NewResponseWriter(w, r)

	pipeline, err := puzzleimport.ParsePipeline(chi.URLParam(r, "pipeline"))
	if err != nil {
		rw.BadRequest(err.Error())
		return
	}

	var opts puzzleimport.Options
	if raw := r.URL.Query().Get("dry_run"); raw != "" {
		if opts.DryRun, err = strconv.ParseBool(raw); err != nil {
			rw.BadRequest("dry_run must be a boolean")
			return
		}
	}

	err = h.importer.Start(pipeline, opts)
	if errors.Is(err, puzzleimport.ErrImportInProgress) {
		rw.Conflict("import already in progress", h.currentSummary())
		return
	}
	if err != nil {
		logging.Ctx(r.Context()).Error().Err(err).Str("pipeline", string(pipeline)).Msg("Failed to start import")
		rw.InternalError("failed to start import")
		return
	}

	logging.Ctx(r.Context()).Info().
		Str("pipeline", string(pipeline)).
		Bool("dry_run", opts.DryRun).
		Msg("Import started over HTTP")
	rw.Accepted(map[string]interface{}{
		"pipeline": pipeline,
		"dry_run":  opts.DryRun,
		"status":   "started",
	})
}

// HandleGetImportStatus handles GET /api/v1/import/status.
func (h *ImportHandlers) HandleGetImportStatus(w http.ResponseWriter, r *http.Request) {
	status := ImportStatus{
		Running: h.importer.IsRunning(),
		Current: h.currentSummary(),
	}
	if last := h.importer.LastStats(); len(last) > 0 {
		status.Last = make(map[puzzleimport.Pipeline]*puzzleimport.ProgressSummary, len(last))
		for p, s := range last {
			status.Last[p] = s.ToSummary(false)
		}
	}
	NewResponseWriter(w, r).Success(status)
}

// HandleStopImport handles DELETE /api/v1/import.
func (h *ImportHandlers) HandleStopImport(w http.ResponseWriter, r *http.Request) {
	rw := NewResponseWriter(w, r)

	err := h.importer.Stop()
	if errors.Is(err, puzzleimport.ErrNoImportRunning) {
		rw.BadRequest("no import in progress")
		return
	}
	if err != nil {
		rw.InternalError("failed to stop import")
		return
	}
	rw.Success(map[string]string{"status": "stop requested"})
}

// HandleClearProgress handles DELETE /api/v1/import/progress.
func (h *ImportHandlers) HandleClearProgress(w http.ResponseWriter, r *http.Request) {
	rw := NewResponseWriter(w, r)

	err := h.importer.ClearProgress(r.Context())
	if errors.Is(err, puzzleimport.ErrImportInProgress) {
		rw.Conflict("cannot clear progress while import is running", nil)
		return
	}
	if err != nil {
		logging.Ctx(r.Context()).Error().Err(err).Msg("Failed to clear import progress")
		rw.InternalError("failed to clear progress")
		return
	}
	rw.Success(map[string]string{"status": "progress cleared"})
}

func (h *ImportHandlers) currentSummary() *puzzleimport.ProgressSummary {
	stats := h.importer.GetStats()
	if stats == nil {
		return nil
	}
	return stats.ToSummary(h.importer.IsRunning())
}
