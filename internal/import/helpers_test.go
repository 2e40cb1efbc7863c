// Tactica - Chess Puzzle Content API
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/tactica

package puzzleimport

import (
	"archive/zip"
	"bytes"
	"context"
	"encoding/csv"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"sync"
	"testing"

	"github.com/google/uuid"

	"github.com/tomtom215/tactica/internal/config"
	"github.com/tomtom215/tactica/internal/models"
)

const testEntry = "lichess_db_puzzle.csv"

var lichessHeader = []string{
	"PuzzleId", "FEN", "Moves", "Rating", "RatingDeviation",
	"Popularity", "NbPlays", "Themes", "GameUrl", "OpeningTags",
}

type archiveEntry struct {
	name string
	body []byte
}

// writeArchive writes a zip with the given entries in order and returns its path.
func writeArchive(t *testing.T, entries ...archiveEntry) string {
	t.Helper()
	var buf bytes.Buffer
	zw := zip.NewWriter(&buf)
	for _, e := range entries {
		w, err := zw.Create(e.name)
		if err != nil {
			t.Fatalf("create entry: %v", err)
		}
		if _, err := w.Write(e.body); err != nil {
			t.Fatalf("write entry: %v", err)
		}
	}
	if err := zw.Close(); err != nil {
		t.Fatalf("close zip: %v", err)
	}
	path := filepath.Join(t.TempDir(), "puzzles.csv.zip")
	if err := os.WriteFile(path, buf.Bytes(), 0o600); err != nil {
		t.Fatalf("write archive: %v", err)
	}
	return path
}

// puzzleRow is one line of the Lichess CSV.
type puzzleRow struct {
	fen, moves, rating, themes string
}

func lichessCSV(t *testing.T, rows ...puzzleRow) []byte {
	t.Helper()
	var buf bytes.Buffer
	w := csv.NewWriter(&buf)
	if err := w.Write(lichessHeader); err != nil {
		t.Fatal(err)
	}
	for i, r := range rows {
		rec := []string{fmt.Sprintf("p%05d", i), r.fen, r.moves, r.rating, "75", "90", "100", r.themes, "https://lichess.org/x", ""}
		if err := w.Write(rec); err != nil {
			t.Fatal(err)
		}
	}
	w.Flush()
	return buf.Bytes()
}

// fenN returns a distinct, structurally valid FEN per n.
func fenN(n int) string {
	return fmt.Sprintf("8/8/8/8/8/8/8/K6k w - - 0 %d", n+1)
}

func testImportConfig(archive string) *config.ImportConfig {
	return &config.ImportConfig{
		ArchivePath:      archive,
		EntryName:        testEntry,
		ImportBatchSize:  1000,
		ConnectBatchSize: 500,
		ConnectPolicy:    config.ConnectPolicyAtomic,
	}
}

// fakeStore is an in-memory Store with the same insert-or-skip semantics as
// the DuckDB catalog.
type fakeStore struct {
	mu          sync.Mutex
	puzzles     map[string]string // fen -> id
	themes      map[string]string // slug -> id
	names       map[string]string // slug -> name
	links       map[models.ThemeLink]struct{}
	insertSizes []int
	attachCalls int

	// failAttachFor makes AttachThemes fail when a link names this puzzle id.
	failAttachFor string

	// insertEntered and insertRelease let a test hold InsertPuzzlesBatch.
	insertEntered chan struct{}
	insertRelease chan struct{}
}

func newFakeStore() *fakeStore {
	return &fakeStore{
		puzzles: make(map[string]string),
		themes:  make(map[string]string),
		names:   make(map[string]string),
		links:   make(map[models.ThemeLink]struct{}),
	}
}

func (s *fakeStore) InsertPuzzlesBatch(_ context.Context, puzzles []*models.Puzzle) (int, int, error) {
	if s.insertEntered != nil {
		select {
		case s.insertEntered <- struct{}{}:
		default:
		}
		<-s.insertRelease
	}
	s.mu.Lock()
	defer s.mu.Unlock()
	s.insertSizes = append(s.insertSizes, len(puzzles))
	var inserted, dups int
	for _, p := range puzzles {
		if _, ok := s.puzzles[p.FEN]; ok {
			dups++
			continue
		}
		s.puzzles[p.FEN] = uuid.NewString()
		inserted++
	}
	return inserted, dups, nil
}

func (s *fakeStore) UpsertTheme(_ context.Context, slug, name string) (bool, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if _, ok := s.themes[slug]; ok {
		return false, nil
	}
	s.themes[slug] = uuid.NewString()
	s.names[slug] = name
	return true, nil
}

func (s *fakeStore) ResolvePuzzleIDs(_ context.Context, fens []string) (map[string]string, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	out := make(map[string]string)
	for _, f := range fens {
		if id, ok := s.puzzles[f]; ok {
			out[f] = id
		}
	}
	return out, nil
}

func (s *fakeStore) ResolveThemeIDs(_ context.Context, slugs []string) (map[string]string, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	out := make(map[string]string)
	for _, slug := range slugs {
		if id, ok := s.themes[slug]; ok {
			out[slug] = id
		}
	}
	return out, nil
}

func (s *fakeStore) AttachThemes(_ context.Context, links []models.ThemeLink) (int, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.attachCalls++
	for _, l := range links {
		if s.failAttachFor != "" && l.PuzzleID == s.failAttachFor {
			return 0, errors.New("attach failed")
		}
	}
	var n int
	for _, l := range links {
		if _, ok := s.links[l]; ok {
			continue
		}
		s.links[l] = struct{}{}
		n++
	}
	return n, nil
}

// themesOf returns the slugs linked to the puzzle with the given FEN.
func (s *fakeStore) themesOf(fen string) map[string]bool {
	s.mu.Lock()
	defer s.mu.Unlock()
	pid := s.puzzles[fen]
	bySlugID := make(map[string]string, len(s.themes))
	for slug, id := range s.themes {
		bySlugID[id] = slug
	}
	out := make(map[string]bool)
	for l := range s.links {
		if l.PuzzleID == pid {
			out[bySlugID[l.ThemeID]] = true
		}
	}
	return out
}
