// Tactica - Chess Puzzle Content API
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/tactica

package database

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/google/uuid"

	"github.com/tomtom215/tactica/internal/logging"
	"github.com/tomtom215/tactica/internal/metrics"
	"github.com/tomtom215/tactica/internal/models"
)

// maxInListParams caps the placeholders in one IN (...) lookup.
const maxInListParams = 1000

// InsertPuzzlesBatch inserts a batch in one transaction. A puzzle whose FEN
// already exists is skipped and counted as a duplicate; any other error rolls
// back the whole batch.
func (db *DB) InsertPuzzlesBatch(ctx context.Context, puzzles []*models.Puzzle) (inserted int, duplicates int, err error) {
	if len(puzzles) == 0 {
		return 0, 0, nil
	}
	start := time.Now()
	defer func() { metrics.RecordDBQuery("insert_batch", "puzzles", time.Since(start), err) }()

	tx, err := db.conn.BeginTx(ctx, nil)
	if err != nil {
		return 0, 0, fmt.Errorf("failed to begin transaction: %w", err)
	}
	defer func() {
		if err != nil {
			if rbErr := tx.Rollback(); rbErr != nil {
				logging.Error().Err(rbErr).AnErr("original_error", err).Msg("Transaction rollback failed")
			}
		}
	}()

	stmt, err := tx.PrepareContext(ctx, `INSERT INTO puzzles (id, fen, solution_moves, rating, created_at)
		VALUES (?, ?, ?, ?, ?)
		ON CONFLICT (fen) DO NOTHING`)
	if err != nil {
		return 0, 0, fmt.Errorf("failed to prepare statement: %w", err)
	}
	defer closeWithLog(stmt, "prepared statement")

	now := time.Now().UTC()
	for i, p := range puzzles {
		if p.ID == "" {
			p.ID = uuid.NewString()
		}
		if p.CreatedAt.IsZero() {
			p.CreatedAt = now
		}

		result, execErr := stmt.ExecContext(ctx, p.ID, p.FEN, strings.Join(p.SolutionMoves, " "), p.Rating, p.CreatedAt)
		if execErr != nil {
			err = fmt.Errorf("failed to insert puzzle %d of batch: %w", i, execErr)
			return 0, 0, err
		}
		affected, raErr := result.RowsAffected()
		if raErr != nil {
			err = fmt.Errorf("failed to read rows affected: %w", raErr)
			return 0, 0, err
		}
		if affected > 0 {
			inserted++
		} else {
			duplicates++
		}
	}

	if err = tx.Commit(); err != nil {
		return 0, 0, fmt.Errorf("failed to commit transaction: %w", err)
	}
	return inserted, duplicates, nil
}

// GetPuzzle returns a puzzle with its themes, or ErrNotFound.
func (db *DB) GetPuzzle(ctx context.Context, id string) (*models.Puzzle, error) {
	ctx, cancel := ensureContext(ctx)
	defer cancel()

	start := time.Now()
	var p models.Puzzle
	var moves string
	err := db.conn.QueryRowContext(ctx,
		`SELECT id, fen, solution_moves, rating, created_at FROM puzzles WHERE id = ?`, id,
	).Scan(&p.ID, &p.FEN, &moves, &p.Rating, &p.CreatedAt)
	metrics.RecordDBQuery("get", "puzzles", time.Since(start), ignoreNoRows(err))
	if errors.Is(err, sql.ErrNoRows) {
		return nil, ErrNotFound
	}
	if err != nil {
		return nil, fmt.Errorf("failed to get puzzle %s: %w", id, err)
	}
	p.SolutionMoves = strings.Fields(moves)

	themes, err := db.puzzleThemes(ctx, p.ID)
	if err != nil {
		return nil, err
	}
	p.Themes = themes
	return &p, nil
}

func (db *DB) puzzleThemes(ctx context.Context, puzzleID string) ([]models.ThemeRef, error) {
	rows, err := db.conn.QueryContext(ctx, `
		SELECT t.slug, t.name
		FROM puzzle_themes pt
		JOIN themes t ON t.id = pt.theme_id
		WHERE pt.puzzle_id = ?
		ORDER BY t.name, t.slug`, puzzleID)
	if err != nil {
		return nil, fmt.Errorf("failed to query puzzle themes: %w", err)
	}
	defer closeWithLog(rows, "rows")

	themes := []models.ThemeRef{}
	for rows.Next() {
		var ref models.ThemeRef
		if err := rows.Scan(&ref.Slug, &ref.Name); err != nil {
			return nil, fmt.Errorf("failed to scan theme: %w", err)
		}
		themes = append(themes, ref)
	}
	return themes, rows.Err()
}

// RandomPuzzleID picks one puzzle id matching the filter uniformly at
// random, or returns ErrNotFound. Theme slugs combine with AND.
func (db *DB) RandomPuzzleID(ctx context.Context, filter models.PuzzleFilter) (string, error) {
	ctx, cancel := ensureContext(ctx)
	defer cancel()

	query, args := buildRandomQuery(filter)

	start := time.Now()
	var id string
	err := db.conn.QueryRowContext(ctx, query, args...).Scan(&id)
	metrics.RecordDBQuery("select_random", "puzzles", time.Since(start), ignoreNoRows(err))
	if errors.Is(err, sql.ErrNoRows) {
		return "", ErrNotFound
	}
	if err != nil {
		return "", fmt.Errorf("failed to select random puzzle: %w", err)
	}
	return id, nil
}

func buildRandomQuery(filter models.PuzzleFilter) (string, []any) {
	var (
		where []string
		args  []any
	)
	if filter.RatingMin != nil {
		where = append(where, "p.rating >= ?")
		args = append(args, *filter.RatingMin)
	}
	if filter.RatingMax != nil {
		where = append(where, "p.rating <= ?")
		args = append(args, *filter.RatingMax)
	}

	slugs := dedupe(filter.ThemeSlugs)
	if len(slugs) > 0 {
		where = append(where, fmt.Sprintf(`p.id IN (
			SELECT pt.puzzle_id
			FROM puzzle_themes pt
			JOIN themes t ON t.id = pt.theme_id
			WHERE t.slug IN (%s)
			GROUP BY pt.puzzle_id
			HAVING COUNT(DISTINCT t.slug) = ?)`, placeholders(len(slugs))))
		for _, s := range slugs {
			args = append(args, s)
		}
		args = append(args, len(slugs))
	}

	var sb strings.Builder
	sb.WriteString("SELECT p.id FROM puzzles p")
	if len(where) > 0 {
		sb.WriteString(" WHERE ")
		sb.WriteString(strings.Join(where, " AND "))
	}
	sb.WriteString(" ORDER BY random() LIMIT 1")
	return sb.String(), args
}

// ResolvePuzzleIDs maps each known FEN to its puzzle id. Unknown FENs are
// absent from the result.
func (db *DB) ResolvePuzzleIDs(ctx context.Context, fens []string) (map[string]string, error) {
	return db.resolveKeys(ctx, "puzzles", "fen", fens)
}

// resolveKeys runs SELECT id, <column> ... WHERE <column> IN (...) over
// distinct keys, chunked to maxInListParams.
func (db *DB) resolveKeys(ctx context.Context, table, column string, keys []string) (map[string]string, error) {
	keys = dedupe(keys)
	resolved := make(map[string]string, len(keys))
	if len(keys) == 0 {
		return resolved, nil
	}

	start := time.Now()
	var err error
	defer func() { metrics.RecordDBQuery("resolve_"+column, table, time.Since(start), err) }()

	for lo := 0; lo < len(keys); lo += maxInListParams {
		hi := min(lo+maxInListParams, len(keys))
		chunk := keys[lo:hi]

		args := make([]any, len(chunk))
		for i, k := range chunk {
			args[i] = k
		}
		query := fmt.Sprintf("SELECT id, %s FROM %s WHERE %s IN (%s)", column, table, column, placeholders(len(chunk)))

		var rows *sql.Rows
		rows, err = db.conn.QueryContext(ctx, query, args...)
		if err != nil {
			return nil, fmt.Errorf("failed to resolve %s.%s: %w", table, column, err)
		}
		for rows.Next() {
			var id, key string
			if err = rows.Scan(&id, &key); err != nil {
				closeQuietly(rows)
				return nil, fmt.Errorf("failed to scan %s.%s: %w", table, column, err)
			}
			resolved[key] = id
		}
		err = rows.Err()
		closeQuietly(rows)
		if err != nil {
			return nil, fmt.Errorf("failed to iterate %s.%s: %w", table, column, err)
		}
	}
	return resolved, nil
}

// AttachThemes inserts every link in one transaction. Links that already
// exist are left alone. Any error rolls back all links in the call.
func (db *DB) AttachThemes(ctx context.Context, links []models.ThemeLink) (linked int, err error) {
	if len(links) == 0 {
		return 0, nil
	}
	start := time.Now()
	defer func() { metrics.RecordDBQuery("attach_themes", "puzzle_themes", time.Since(start), err) }()

	tx, err := db.conn.BeginTx(ctx, nil)
	if err != nil {
		return 0, fmt.Errorf("failed to begin transaction: %w", err)
	}
	defer func() {
		if err != nil {
			if rbErr := tx.Rollback(); rbErr != nil {
				logging.Error().Err(rbErr).AnErr("original_error", err).Msg("Transaction rollback failed")
			}
		}
	}()

	stmt, err := tx.PrepareContext(ctx, `INSERT INTO puzzle_themes (puzzle_id, theme_id)
		VALUES (?, ?)
		ON CONFLICT DO NOTHING`)
	if err != nil {
		return 0, fmt.Errorf("failed to prepare statement: %w", err)
	}
	defer closeWithLog(stmt, "prepared statement")

	for _, link := range links {
		result, execErr := stmt.ExecContext(ctx, link.PuzzleID, link.ThemeID)
		if execErr != nil {
			err = fmt.Errorf("failed to link puzzle %s to theme %s: %w", link.PuzzleID, link.ThemeID, execErr)
			return 0, err
		}
		if affected, raErr := result.RowsAffected(); raErr == nil && affected > 0 {
			linked++
		}
	}

	if err = tx.Commit(); err != nil {
		return 0, fmt.Errorf("failed to commit transaction: %w", err)
	}
	return linked, nil
}

// Counts returns table sizes.
func (db *DB) Counts(ctx context.Context) (models.CatalogCounts, error) {
	ctx, cancel := ensureContext(ctx)
	defer cancel()

	var c models.CatalogCounts
	err := db.conn.QueryRowContext(ctx, `SELECT
		(SELECT COUNT(*) FROM puzzles),
		(SELECT COUNT(*) FROM themes),
		(SELECT COUNT(*) FROM puzzle_themes)`).Scan(&c.Puzzles, &c.Themes, &c.Links)
	if err != nil {
		return c, fmt.Errorf("failed to count catalog: %w", err)
	}
	return c, nil
}

func ignoreNoRows(err error) error {
	if errors.Is(err, sql.ErrNoRows) {
		return nil
	}
	return err
}

func placeholders(n int) string {
	if n <= 0 {
		return ""
	}
	return strings.TrimSuffix(strings.Repeat("?, ", n), ", ")
}

// dedupe drops blanks and repeats, keeping first-seen order.
func dedupe(keys []string) []string {
	seen := make(map[string]struct{}, len(keys))
	out := make([]string, 0, len(keys))
	for _, k := range keys {
		if k == "" {
			continue
		}
		if _, ok := seen[k]; ok {
			continue
		}
		seen[k] = struct{}{}
		out = append(out, k)
	}
	return out
}
