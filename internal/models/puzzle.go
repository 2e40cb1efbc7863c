// Tactica - Chess Puzzle Content API
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/tactica

package models

import "time"

// Puzzle is a stored tactics puzzle. FEN is the natural key.
type Puzzle struct {
	ID            string     `json:"id"`
	FEN           string     `json:"fen"`
	SolutionMoves []string   `json:"solution_moves"`
	Rating        int        `json:"rating"`
	Themes        []ThemeRef `json:"themes,omitempty"`
	CreatedAt     time.Time  `json:"created_at"`
}

// ThemeRef is the slice of a theme embedded in puzzle responses.
type ThemeRef struct {
	Slug string `json:"slug"`
	Name string `json:"name"`
}

// Theme is an entry of the theme catalog. Slug is the natural key.
type Theme struct {
	ID   string `json:"id"`
	Slug string `json:"slug"`
	Name string `json:"name"`
}

// ThemeLink attaches one theme to one puzzle by storage id.
type ThemeLink struct {
	PuzzleID string
	ThemeID  string
}

// PuzzleFilter narrows random selection. Nil bounds are open.
// Every slug in ThemeSlugs must be attached to a matching puzzle.
type PuzzleFilter struct {
	RatingMin  *int
	RatingMax  *int
	ThemeSlugs []string
}

// CatalogCounts summarizes table sizes for the health endpoint.
type CatalogCounts struct {
	Puzzles int64 `json:"puzzles"`
	Themes  int64 `json:"themes"`
	Links   int64 `json:"puzzle_themes"`
}
