// Tactica - Chess Puzzle Content API
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/tactica

package api

import "errors"

var (
	// ErrInvalidSequence means the played moves are not a prefix of the solution.
	ErrInvalidSequence = errors.New("played moves do not follow the solution")

	// ErrImporterUnavailable means the server was started without an import runner.
	ErrImporterUnavailable = errors.New("import runner is not configured")
)

// User-facing messages.
const (
	msgPuzzleNotFound    = "Puzzle not found"
	msgNoPuzzleMatch     = "No puzzle found matching your criteria"
	msgDailyNotSet       = "Puzzle of the Day has not been set yet. Please check back later."
	msgDailyMissing      = "Could not retrieve the daily puzzle."
	msgNoDailyCandidate  = "No suitable puzzles found in the specified rating range."
	msgInvalidJSON       = "Invalid JSON body"
	msgInvalidSequence   = "Invalid sequence of played moves."
	msgAlreadySolved     = "Puzzle is already solved, no more hints available."
	msgMovesInvalid      = "'moves' array is missing or invalid."
	msgPlayedInvalid     = "'played_moves' array is missing or invalid."
	msgPointerStoreDown  = "Daily puzzle store is temporarily unavailable"
	msgTooManyThemesFmt  = "Too many themes specified (maximum %d)"
	msgRatingNotNumber   = "Invalid %s: must be a number"
	msgRatingOutOfRange  = "Invalid %s: must be between %d and %d"
	msgRatingMaxBelowMin = "ratingMax must be greater than or equal to ratingMin"
)
