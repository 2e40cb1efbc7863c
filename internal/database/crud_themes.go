// Tactica - Chess Puzzle Content API
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/tactica

package database

import (
	"context"
	"fmt"
	"time"

	"github.com/google/uuid"

	"github.com/tomtom215/tactica/internal/metrics"
	"github.com/tomtom215/tactica/internal/models"
)

// UpsertTheme inserts the theme if its slug is new. An existing slug keeps
// its id and name; created reports which case happened.
func (db *DB) UpsertTheme(ctx context.Context, slug, name string) (created bool, err error) {
	ctx, cancel := ensureContext(ctx)
	defer cancel()

	start := time.Now()
	defer func() { metrics.RecordDBQuery("upsert", "themes", time.Since(start), err) }()

	result, err := db.conn.ExecContext(ctx,
		`INSERT INTO themes (id, slug, name) VALUES (?, ?, ?) ON CONFLICT (slug) DO NOTHING`,
		uuid.NewString(), slug, name)
	if err != nil {
		return false, fmt.Errorf("failed to upsert theme %q: %w", slug, err)
	}
	affected, err := result.RowsAffected()
	if err != nil {
		return false, fmt.Errorf("failed to read rows affected: %w", err)
	}
	return affected > 0, nil
}

// ListThemes returns the whole catalog ordered by display name.
func (db *DB) ListThemes(ctx context.Context) ([]models.Theme, error) {
	ctx, cancel := ensureContext(ctx)
	defer cancel()

	start := time.Now()
	rows, err := db.conn.QueryContext(ctx, `SELECT id, slug, name FROM themes ORDER BY name, slug`)
	metrics.RecordDBQuery("list", "themes", time.Since(start), err)
	if err != nil {
		return nil, fmt.Errorf("failed to list themes: %w", err)
	}
	defer closeWithLog(rows, "rows")

	themes := []models.Theme{}
	for rows.Next() {
		var t models.Theme
		if err := rows.Scan(&t.ID, &t.Slug, &t.Name); err != nil {
			return nil, fmt.Errorf("failed to scan theme: %w", err)
		}
		themes = append(themes, t)
	}
	return themes, rows.Err()
}

// ResolveThemeIDs maps each known slug to its theme id. Unknown slugs are
// absent from the result.
func (db *DB) ResolveThemeIDs(ctx context.Context, slugs []string) (map[string]string, error) {
	return db.resolveKeys(ctx, "themes", "slug", slugs)
}
