// Tactica - Chess Puzzle Content API
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/tactica

package api

import (
	"slices"

	"github.com/tomtom215/tactica/internal/models"
)

// checkSolution compares a submitted line with the solution move by move.
// Only an exact match solves the puzzle.
func checkSolution(solution, moves []string) models.SolveResponse {
	if slices.Equal(solution, moves) {
		return models.SolveResponse{Correct: true, Status: models.SolveStatusSolved}
	}
	return models.SolveResponse{Correct: false, Status: models.SolveStatusIncorrectMove}
}

// nextHint returns the move that follows played. played must be a prefix of
// solution; a line that runs past the solution is not a prefix.
func nextHint(solution, played []string) (models.HintResponse, error) {
	if len(played) > len(solution) || !slices.Equal(solution[:len(played)], played) {
		return models.HintResponse{}, ErrInvalidSequence
	}
	if len(played) == len(solution) {
		return models.HintResponse{Message: msgAlreadySolved, Solved: true}, nil
	}
	return models.HintResponse{Hint: solution[len(played)]}, nil
}
