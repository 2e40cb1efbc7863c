// Tactica - Chess Puzzle Content API
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/tactica

package api

import (
	"errors"
	"net/http"

	"github.com/sony/gobreaker/v2"

	"github.com/tomtom215/tactica/internal/daily"
	"github.com/tomtom215/tactica/internal/logging"
	"github.com/tomtom215/tactica/internal/models"
)

// DailyPuzzle handles GET /api/v1/puzzles/daily.
func (h *Handler) DailyPuzzle(w http.ResponseWriter, r *http.Request) {
	rw := NewResponseWriter(w, r)

	puzzle, err := h.daily.Current(r.Context())
	switch {
	case err == nil:
		rw.Success(puzzle)
	case errors.Is(err, daily.ErrPointerNotSet):
		rw.NotFound(msgDailyNotSet)
	case errors.Is(err, daily.ErrPuzzleMissing):
		rw.NotFound(msgDailyMissing)
	case breakerRejected(err):
		rw.ServiceUnavailable(msgPointerStoreDown)
	default:
		logging.Ctx(r.Context()).Error().Err(err).Msg("Failed to read daily puzzle")
		rw.InternalError("Something went wrong")
	}
}

// SelectDailyPuzzle handles GET and POST /api/cron/select-daily-puzzle. The
// route is guarded by the cron secret, not the API key.
func (h *Handler) SelectDailyPuzzle(w http.ResponseWriter, r *http.Request) {
	rw := NewResponseWriter(w, r)

	id, err := h.daily.Select(r.Context(), daily.TriggerHTTP)
	switch {
	case err == nil:
		rw.Success(models.DailySelection{
			PuzzleID: id,
			Message:  "Successfully set Puzzle of the Day to: " + id,
		})
	case errors.Is(err, daily.ErrNoCandidate):
		rw.NotFound(msgNoDailyCandidate)
	case breakerRejected(err):
		rw.ServiceUnavailable(msgPointerStoreDown)
	default:
		logging.Ctx(r.Context()).Error().Err(err).Msg("Cron job failed")
		rw.InternalError("Cron job failed")
	}
}

func breakerRejected(err error) bool {
	return errors.Is(err, gobreaker.ErrOpenState) || errors.Is(err, gobreaker.ErrTooManyRequests)
}
