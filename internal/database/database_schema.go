// Tactica - Chess Puzzle Content API
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/tactica

/*
database_schema.go - puzzle catalog schema

Tables:
  - puzzles: one row per position. fen is UNIQUE and is the import's
    natural key. solution_moves holds the move tokens joined by single spaces.
  - themes: the theme catalog. slug is UNIQUE.
  - puzzle_themes: membership set, primary key (puzzle_id, theme_id).

Every write relies on these constraints through ON CONFLICT DO NOTHING,
so re-running any pipeline is safe.
*/

//nolint:staticcheck // File documentation, not package doc
package database

import (
	"context"
	"fmt"
	"time"
)

func schemaContext() (context.Context, context.CancelFunc) {
	return context.WithTimeout(context.Background(), 60*time.Second)
}

func (db *DB) createTables() error {
	ctx, cancel := schemaContext()
	defer cancel()

	for _, query := range schemaQueries {
		if _, err := db.conn.ExecContext(ctx, query); err != nil {
			return fmt.Errorf("failed to execute query: %s: %w", query, err)
		}
	}
	return nil
}

var schemaQueries = []string{
	`CREATE TABLE IF NOT EXISTS puzzles (
		id VARCHAR PRIMARY KEY,
		fen VARCHAR NOT NULL UNIQUE,
		solution_moves VARCHAR NOT NULL,
		rating INTEGER NOT NULL,
		created_at TIMESTAMP NOT NULL DEFAULT current_timestamp
	)`,
	`CREATE TABLE IF NOT EXISTS themes (
		id VARCHAR PRIMARY KEY,
		slug VARCHAR NOT NULL UNIQUE,
		name VARCHAR NOT NULL
	)`,
	`CREATE TABLE IF NOT EXISTS puzzle_themes (
		puzzle_id VARCHAR NOT NULL,
		theme_id VARCHAR NOT NULL,
		PRIMARY KEY (puzzle_id, theme_id)
	)`,
	`CREATE INDEX IF NOT EXISTS idx_puzzles_rating ON puzzles(rating)`,
	`CREATE INDEX IF NOT EXISTS idx_puzzle_themes_theme ON puzzle_themes(theme_id)`,
}
