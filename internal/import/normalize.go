// Tactica - Chess Puzzle Content API
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/tactica

package puzzleimport

import (
	"strconv"
	"strings"
	"unicode"

	"github.com/tomtom215/tactica/internal/models"
	"github.com/tomtom215/tactica/internal/validation"
)

// ConnectRecord is a puzzle's FEN with the theme tokens it should carry.
type ConnectRecord struct {
	FEN    string
	Themes []string
}

// Normalizer turns decoded rows into typed records.
type Normalizer struct {
	// ValidateFEN skips rows whose FEN is structurally malformed.
	ValidateFEN bool
}

// Puzzle returns the puzzle in row, or false when FEN, Moves or Rating is
// missing or Rating is not an integer.
func (n Normalizer) Puzzle(row Row) (*models.Puzzle, bool) {
	fen, ok := n.fen(row)
	if !ok {
		return nil, false
	}

	movesField, _ := row.Get(ColumnMoves)
	moves := strings.Fields(movesField)
	if len(moves) == 0 {
		return nil, false
	}

	ratingField, ok := row.Get(ColumnRating)
	if !ok {
		return nil, false
	}
	rating, err := strconv.Atoi(strings.TrimSpace(ratingField))
	if err != nil {
		return nil, false
	}

	return &models.Puzzle{FEN: fen, SolutionMoves: moves, Rating: rating}, true
}

// ThemeTokens returns the whitespace-separated tokens of the Themes column.
// A missing or empty column yields no tokens.
func (n Normalizer) ThemeTokens(row Row) []string {
	field, _ := row.Get(ColumnThemes)
	return strings.Fields(field)
}

// Connect returns the FEN and theme tokens of row, or false when either is
// missing or no token survives.
func (n Normalizer) Connect(row Row) (ConnectRecord, bool) {
	fen, ok := n.fen(row)
	if !ok {
		return ConnectRecord{}, false
	}
	themes := n.ThemeTokens(row)
	if len(themes) == 0 {
		return ConnectRecord{}, false
	}
	return ConnectRecord{FEN: fen, Themes: themes}, true
}

func (n Normalizer) fen(row Row) (string, bool) {
	fen, _ := row.Get(ColumnFEN)
	fen = strings.TrimSpace(fen)
	if fen == "" {
		return "", false
	}
	if n.ValidateFEN && !validation.IsFEN(fen) {
		return "", false
	}
	return fen, true
}

// ThemeDisplayName derives a label from a camel-case slug:
// "mateIn2" becomes "Mate In2" and "backRankMate" becomes "Back Rank Mate".
func ThemeDisplayName(slug string) string {
	var sb strings.Builder
	sb.Grow(len(slug) + 4)
	for i, r := range []rune(slug) {
		switch {
		case i == 0:
			sb.WriteRune(unicode.ToUpper(r))
		case unicode.IsUpper(r):
			sb.WriteByte(' ')
			sb.WriteRune(r)
		default:
			sb.WriteRune(r)
		}
	}
	return strings.TrimSpace(sb.String())
}
