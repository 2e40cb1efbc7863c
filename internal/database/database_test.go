// Tactica - Chess Puzzle Content API
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/tactica

package database

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/tomtom215/tactica/internal/config"
	"github.com/tomtom215/tactica/internal/models"
)

// testDBSemaphore serializes DuckDB use across tests. It is held for the
// whole test, released in t.Cleanup.
var testDBSemaphore = make(chan struct{}, 1)

// setupTestDB opens a fresh in-memory database, failing after 120s if the
// driver hangs.
func setupTestDB(t *testing.T) *DB {
	t.Helper()

	testDBSemaphore <- struct{}{}
	t.Cleanup(func() {
		<-testDBSemaphore
	})

	cfg := &config.DatabaseConfig{
		Path:      ":memory:",
		MaxMemory: "512MB",
		Threads:   2,
	}

	type result struct {
		db  *DB
		err error
	}
	resultCh := make(chan result, 1)
	go func() {
		db, err := New(cfg)
		resultCh <- result{db: db, err: err}
	}()

	select {
	case res := <-resultCh:
		if res.err != nil {
			t.Fatalf("Failed to create test database: %v", res.err)
		}
		t.Cleanup(func() {
			if err := res.db.Close(); err != nil {
				t.Logf("close test database: %v", err)
			}
		})
		return res.db
	case <-time.After(120 * time.Second):
		t.Fatalf("Timeout: database creation took longer than 120s")
		return nil
	}
}

func checkNoError(t *testing.T, err error) {
	t.Helper()
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
}

func intPtr(v int) *int { return &v }

func newPuzzle(fen string, rating int, moves ...string) *models.Puzzle {
	return &models.Puzzle{FEN: fen, Rating: rating, SolutionMoves: moves}
}

// seedCatalog inserts puzzles and themes and links them. links maps FEN to slugs.
func seedCatalog(t *testing.T, db *DB, puzzles []*models.Puzzle, links map[string][]string) {
	t.Helper()
	ctx := context.Background()

	_, _, err := db.InsertPuzzlesBatch(ctx, puzzles)
	checkNoError(t, err)

	var fens, slugs []string
	for fen, ss := range links {
		fens = append(fens, fen)
		for _, s := range ss {
			_, err := db.UpsertTheme(ctx, s, s)
			checkNoError(t, err)
			slugs = append(slugs, s)
		}
	}
	puzzleIDs, err := db.ResolvePuzzleIDs(ctx, fens)
	checkNoError(t, err)
	themeIDs, err := db.ResolveThemeIDs(ctx, slugs)
	checkNoError(t, err)

	var ls []models.ThemeLink
	for fen, ss := range links {
		for _, s := range ss {
			ls = append(ls, models.ThemeLink{PuzzleID: puzzleIDs[fen], ThemeID: themeIDs[s]})
		}
	}
	_, err = db.AttachThemes(ctx, ls)
	checkNoError(t, err)
}

const (
	fenA = "r1bqkbnr/pppp1ppp/2n5/4p3/4P3/5N2/PPPP1PPP/RNBQKB1R w KQkq - 2 3"
	fenB = "rnbqkbnr/pppppppp/8/8/4P3/8/PPPP1PPP/RNBQKBNR b KQkq - 0 1"
	fenC = "8/8/8/4k3/8/8/4K3/8 w - - 0 1"
)

func TestNew_CreatesSchema(t *testing.T) {
	db := setupTestDB(t)

	checkNoError(t, db.Ping(context.Background()))
	counts, err := db.Counts(context.Background())
	checkNoError(t, err)
	if counts != (models.CatalogCounts{}) {
		t.Errorf("fresh database counts = %+v, want zero", counts)
	}
}

func TestInsertPuzzlesBatch_SkipsDuplicateFEN(t *testing.T) {
	db := setupTestDB(t)
	ctx := context.Background()

	inserted, dups, err := db.InsertPuzzlesBatch(ctx, []*models.Puzzle{
		newPuzzle(fenA, 1500, "e2e4", "e7e5"),
		newPuzzle(fenB, 1200, "d7d5"),
	})
	checkNoError(t, err)
	if inserted != 2 || dups != 0 {
		t.Fatalf("first batch inserted=%d dups=%d, want 2/0", inserted, dups)
	}

	inserted, dups, err = db.InsertPuzzlesBatch(ctx, []*models.Puzzle{
		newPuzzle(fenA, 9999, "a2a3"),
		newPuzzle(fenC, 800, "e2e3"),
	})
	checkNoError(t, err)
	if inserted != 1 || dups != 1 {
		t.Fatalf("second batch inserted=%d dups=%d, want 1/1", inserted, dups)
	}

	ids, err := db.ResolvePuzzleIDs(ctx, []string{fenA})
	checkNoError(t, err)
	p, err := db.GetPuzzle(ctx, ids[fenA])
	checkNoError(t, err)
	if p.Rating != 1500 {
		t.Errorf("duplicate overwrote existing row: rating = %d, want 1500", p.Rating)
	}
	if len(p.SolutionMoves) != 2 || p.SolutionMoves[0] != "e2e4" {
		t.Errorf("solution moves = %v, want [e2e4 e7e5]", p.SolutionMoves)
	}
}

func TestInsertPuzzlesBatch_Empty(t *testing.T) {
	db := setupTestDB(t)
	inserted, dups, err := db.InsertPuzzlesBatch(context.Background(), nil)
	checkNoError(t, err)
	if inserted != 0 || dups != 0 {
		t.Errorf("got %d/%d, want 0/0", inserted, dups)
	}
}

func TestGetPuzzle_NotFound(t *testing.T) {
	db := setupTestDB(t)
	_, err := db.GetPuzzle(context.Background(), "missing")
	if !errors.Is(err, ErrNotFound) {
		t.Fatalf("err = %v, want ErrNotFound", err)
	}
}

func TestGetPuzzle_IncludesThemes(t *testing.T) {
	db := setupTestDB(t)
	seedCatalog(t, db,
		[]*models.Puzzle{newPuzzle(fenA, 1500, "e2e4")},
		map[string][]string{fenA: {"mateIn2", "fork"}})

	ids, err := db.ResolvePuzzleIDs(context.Background(), []string{fenA})
	checkNoError(t, err)
	p, err := db.GetPuzzle(context.Background(), ids[fenA])
	checkNoError(t, err)
	if len(p.Themes) != 2 {
		t.Fatalf("themes = %v, want 2", p.Themes)
	}
	if p.Themes[0].Slug != "fork" {
		t.Errorf("themes not ordered by name: %v", p.Themes)
	}
}

func TestRandomPuzzleID_Filters(t *testing.T) {
	db := setupTestDB(t)
	seedCatalog(t, db,
		[]*models.Puzzle{
			newPuzzle(fenA, 1500, "e2e4"),
			newPuzzle(fenB, 1200, "d7d5"),
			newPuzzle(fenC, 2100, "e2e3"),
		},
		map[string][]string{
			fenA: {"fork", "short"},
			fenB: {"fork"},
			fenC: {"endgame"},
		})
	ids, err := db.ResolvePuzzleIDs(context.Background(), []string{fenA, fenB, fenC})
	checkNoError(t, err)

	tests := []struct {
		name   string
		filter models.PuzzleFilter
		want   map[string]bool
	}{
		{"no filter", models.PuzzleFilter{}, map[string]bool{ids[fenA]: true, ids[fenB]: true, ids[fenC]: true}},
		{"rating window", models.PuzzleFilter{RatingMin: intPtr(1300), RatingMax: intPtr(1600)}, map[string]bool{ids[fenA]: true}},
		{"single theme", models.PuzzleFilter{ThemeSlugs: []string{"fork"}}, map[string]bool{ids[fenA]: true, ids[fenB]: true}},
		{"themes are ANDed", models.PuzzleFilter{ThemeSlugs: []string{"fork", "short"}}, map[string]bool{ids[fenA]: true}},
		{"repeated slug", models.PuzzleFilter{ThemeSlugs: []string{"fork", "fork", "short"}}, map[string]bool{ids[fenA]: true}},
		{"theme and rating", models.PuzzleFilter{RatingMax: intPtr(1300), ThemeSlugs: []string{"fork"}}, map[string]bool{ids[fenB]: true}},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			for i := 0; i < 10; i++ {
				id, err := db.RandomPuzzleID(context.Background(), tt.filter)
				checkNoError(t, err)
				if !tt.want[id] {
					t.Fatalf("picked %s outside the matching set", id)
				}
			}
		})
	}
}

func TestRandomPuzzleID_NoMatch(t *testing.T) {
	db := setupTestDB(t)
	seedCatalog(t, db, []*models.Puzzle{newPuzzle(fenA, 1500, "e2e4")}, map[string][]string{fenA: {"fork"}})

	filters := []models.PuzzleFilter{
		{RatingMin: intPtr(3000)},
		{ThemeSlugs: []string{"unknownTheme"}},
		{ThemeSlugs: []string{"fork", "unknownTheme"}},
	}
	for _, f := range filters {
		if _, err := db.RandomPuzzleID(context.Background(), f); !errors.Is(err, ErrNotFound) {
			t.Errorf("filter %+v: err = %v, want ErrNotFound", f, err)
		}
	}
}

func TestUpsertTheme_KeepsExisting(t *testing.T) {
	db := setupTestDB(t)
	ctx := context.Background()

	created, err := db.UpsertTheme(ctx, "mateIn2", "Mate In2")
	checkNoError(t, err)
	if !created {
		t.Fatal("first upsert should create")
	}
	created, err = db.UpsertTheme(ctx, "mateIn2", "Something Else")
	checkNoError(t, err)
	if created {
		t.Fatal("second upsert should not create")
	}

	themes, err := db.ListThemes(ctx)
	checkNoError(t, err)
	if len(themes) != 1 || themes[0].Name != "Mate In2" {
		t.Fatalf("themes = %+v", themes)
	}
}

func TestResolveThemeIDs_UnknownAbsent(t *testing.T) {
	db := setupTestDB(t)
	ctx := context.Background()
	_, err := db.UpsertTheme(ctx, "fork", "Fork")
	checkNoError(t, err)

	got, err := db.ResolveThemeIDs(ctx, []string{"fork", "pin", "", "fork"})
	checkNoError(t, err)
	if len(got) != 1 || got["fork"] == "" {
		t.Fatalf("resolved = %v", got)
	}
}

func TestAttachThemes_Idempotent(t *testing.T) {
	db := setupTestDB(t)
	links := map[string][]string{fenA: {"fork", "pin"}}
	seedCatalog(t, db, []*models.Puzzle{newPuzzle(fenA, 1500, "e2e4")}, links)

	ctx := context.Background()
	pids, err := db.ResolvePuzzleIDs(ctx, []string{fenA})
	checkNoError(t, err)
	tids, err := db.ResolveThemeIDs(ctx, []string{"fork", "pin"})
	checkNoError(t, err)

	linked, err := db.AttachThemes(ctx, []models.ThemeLink{
		{PuzzleID: pids[fenA], ThemeID: tids["fork"]},
		{PuzzleID: pids[fenA], ThemeID: tids["pin"]},
	})
	checkNoError(t, err)
	if linked != 0 {
		t.Errorf("relinking created %d rows, want 0", linked)
	}

	counts, err := db.Counts(ctx)
	checkNoError(t, err)
	if counts.Links != 2 {
		t.Errorf("links = %d, want 2", counts.Links)
	}
}

func TestBuildRandomQuery(t *testing.T) {
	q, args := buildRandomQuery(models.PuzzleFilter{})
	if q != "SELECT p.id FROM puzzles p ORDER BY random() LIMIT 1" || len(args) != 0 {
		t.Errorf("unfiltered query = %q args=%v", q, args)
	}

	_, args = buildRandomQuery(models.PuzzleFilter{
		RatingMin:  intPtr(100),
		ThemeSlugs: []string{"a", "b", "a"},
	})
	// min, two distinct slugs, and the HAVING count
	if len(args) != 4 || args[3] != 2 {
		t.Errorf("args = %v", args)
	}
}
