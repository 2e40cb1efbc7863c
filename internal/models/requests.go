// Tactica - Chess Puzzle Content API
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/tactica

package models

// Random selection limits.
const (
	MinRating     = 0
	MaxRating     = 5000
	MaxThemeCount = 10
)

// RandomPuzzleRequest holds the parsed query of GET /api/v1/random.
type RandomPuzzleRequest struct {
	RatingMin *int     `json:"ratingMin" validate:"omitempty,gte=0,lte=5000"`
	RatingMax *int     `json:"ratingMax" validate:"omitempty,gte=0,lte=5000"`
	Themes    []string `json:"themes" validate:"max=10,dive,slug"`
}

// SolveRequest is the body of POST /api/v1/puzzles/{id}/solve.
type SolveRequest struct {
	Moves []string `json:"moves" validate:"required"`
}

// HintRequest is the body of POST /api/v1/puzzles/{id}/hint.
type HintRequest struct {
	PlayedMoves []string `json:"played_moves" validate:"required"`
}

// Solve statuses.
const (
	SolveStatusSolved        = "solved"
	SolveStatusIncorrectMove = "incorrect_move"
)

// SolveResponse reports whether a submitted line matches the solution.
type SolveResponse struct {
	Correct bool   `json:"correct"`
	Status  string `json:"status"`
}

// HintResponse carries either the next move or a terminal message.
type HintResponse struct {
	Hint    string `json:"hint,omitempty"`
	Message string `json:"message,omitempty"`
	Solved  bool   `json:"solved"`
}

// DailySelection is returned by the cron trigger.
type DailySelection struct {
	PuzzleID string `json:"puzzleId"`
	Message  string `json:"message"`
}
