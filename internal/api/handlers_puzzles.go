// Tactica - Chess Puzzle Content API
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/tactica

package api

import (
	"errors"
	"net/http"

	"github.com/go-chi/chi/v5"

	"github.com/tomtom215/tactica/internal/database"
	"github.com/tomtom215/tactica/internal/logging"
	"github.com/tomtom215/tactica/internal/models"
	"github.com/tomtom215/tactica/internal/validation"
)

// randomCacheControl lets shared caches serve a random pick briefly.
const randomCacheControl = "public, s-maxage=60, stale-while-revalidate=120"

// RandomPuzzle handles GET /api/v1/random.
//
// Query parameters:
//   - ratingMin, ratingMax: integers in [0, 5000]; ratingMax >= ratingMin
//   - themes: comma-separated slugs, at most 10; a puzzle must carry all of them
func (h *Handler) RandomPuzzle(w http.ResponseWriter, r *http.Request) {
	rw := NewResponseWriter(w, r)

	req, msg := parseRandomRequest(r.URL.Query())
	if msg != "" {
		rw.BadRequest(msg)
		return
	}
	if verr := validation.ValidateStruct(req); verr != nil {
		rw.ValidationError("", verr)
		return
	}

	ctx := r.Context()
	id, err := h.catalog.RandomPuzzleID(ctx, filterFor(req))
	if errors.Is(err, database.ErrNotFound) {
		rw.NotFound(msgNoPuzzleMatch)
		return
	}
	if err != nil {
		rw.DatabaseError(err)
		return
	}

	puzzle, err := h.puzzle(ctx, id)
	if errors.Is(err, database.ErrNotFound) {
		// Deleted between the pick and the read.
		rw.NotFound(msgNoPuzzleMatch)
		return
	}
	if err != nil {
		rw.DatabaseError(err)
		return
	}

	w.Header().Set("Cache-Control", randomCacheControl)
	rw.Success(puzzle)
}

// PuzzleByID handles GET /api/v1/puzzles/{id}.
func (h *Handler) PuzzleByID(w http.ResponseWriter, r *http.Request) {
	rw := NewResponseWriter(w, r)

	puzzle, ok := h.loadPuzzle(rw, r)
	if !ok {
		return
	}
	rw.Success(puzzle)
}

// SolvePuzzle handles POST /api/v1/puzzles/{id}/solve with {"moves": [...]}.
func (h *Handler) SolvePuzzle(w http.ResponseWriter, r *http.Request) {
	rw := NewResponseWriter(w, r)

	var req models.SolveRequest
	if err := decodeJSONBody(w, r, &req); err != nil {
		badBody(rw, err, msgMovesInvalid)
		return
	}
	if verr := validation.ValidateStruct(&req); verr != nil {
		rw.ValidationError(msgMovesInvalid, verr)
		return
	}

	puzzle, ok := h.loadPuzzle(rw, r)
	if !ok {
		return
	}

	result := checkSolution(puzzle.SolutionMoves, req.Moves)
	logging.Ctx(r.Context()).Debug().
		Str("puzzle_id", puzzle.ID).
		Bool("correct", result.Correct).
		Msg("Solution checked")
	rw.Success(result)
}

// PuzzleHint handles POST /api/v1/puzzles/{id}/hint with {"played_moves": [...]}.
func (h *Handler) PuzzleHint(w http.ResponseWriter, r *http.Request) {
	rw := NewResponseWriter(w, r)

	var req models.HintRequest
	if err := decodeJSONBody(w, r, &req); err != nil {
		badBody(rw, err, msgPlayedInvalid)
		return
	}
	if verr := validation.ValidateStruct(&req); verr != nil {
		rw.ValidationError(msgPlayedInvalid, verr)
		return
	}

	puzzle, ok := h.loadPuzzle(rw, r)
	if !ok {
		return
	}

	hint, err := nextHint(puzzle.SolutionMoves, req.PlayedMoves)
	if err != nil {
		rw.BadRequest(msgInvalidSequence)
		return
	}
	rw.Success(hint)
}

// loadPuzzle reads the {id} URL parameter and writes 404 or 500 on failure.
func (h *Handler) loadPuzzle(rw *ResponseWriter, r *http.Request) (*models.Puzzle, bool) {
	id := chi.URLParam(r, "id")
	if id == "" {
		rw.BadRequest("Could not parse Puzzle ID from the URL.")
		return nil, false
	}

	puzzle, err := h.puzzle(r.Context(), id)
	if errors.Is(err, database.ErrNotFound) {
		rw.NotFound(msgPuzzleNotFound)
		return nil, false
	}
	if err != nil {
		rw.DatabaseError(err)
		return nil, false
	}
	return puzzle, true
}

func badBody(rw *ResponseWriter, err error, shapeMsg string) {
	if errors.Is(err, errBodyShape) {
		rw.BadRequest(shapeMsg)
		return
	}
	rw.BadRequest(msgInvalidJSON)
}
