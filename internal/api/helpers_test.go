// Tactica - Chess Puzzle Content API
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/tactica

package api

import (
	"bytes"
	"context"
	"net/http"
	"net/http/httptest"
	"sync"
	"testing"
	"time"

	"github.com/goccy/go-json"

	"github.com/tomtom215/tactica/internal/config"
	"github.com/tomtom215/tactica/internal/daily"
	"github.com/tomtom215/tactica/internal/database"
	puzzleimport "github.com/tomtom215/tactica/internal/import"
	"github.com/tomtom215/tactica/internal/models"
)

const (
	testAPIKey     = "test-api-key"
	testCronSecret = "test-cron-secret"
)

// fakeCatalog serves a fixed set of puzzles. RandomPuzzleID returns the first
// puzzle, in insertion order, that matches the filter.
type fakeCatalog struct {
	mu        sync.Mutex
	order     []string
	puzzles   map[string]*models.Puzzle
	themes    []models.Theme
	pingErr   error
	lastQuery models.PuzzleFilter

	getCalls   int
	themeCalls int
}

func newFakeCatalog(puzzles ...*models.Puzzle) *fakeCatalog {
	c := &fakeCatalog{puzzles: make(map[string]*models.Puzzle)}
	for _, p := range puzzles {
		c.order = append(c.order, p.ID)
		c.puzzles[p.ID] = p
	}
	return c
}

func (c *fakeCatalog) GetPuzzle(_ context.Context, id string) (*models.Puzzle, error) {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.getCalls++
	p, ok := c.puzzles[id]
	if !ok {
		return nil, database.ErrNotFound
	}
	return p, nil
}

func (c *fakeCatalog) RandomPuzzleID(_ context.Context, f models.PuzzleFilter) (string, error) {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.lastQuery = f
	for _, id := range c.order {
		p := c.puzzles[id]
		if f.RatingMin != nil && p.Rating < *f.RatingMin {
			continue
		}
		if f.RatingMax != nil && p.Rating > *f.RatingMax {
			continue
		}
		if hasAllThemes(p, f.ThemeSlugs) {
			return id, nil
		}
	}
	return "", database.ErrNotFound
}

func hasAllThemes(p *models.Puzzle, slugs []string) bool {
	for _, want := range slugs {
		found := false
		for _, t := range p.Themes {
			if t.Slug == want {
				found = true
				break
			}
		}
		if !found {
			return false
		}
	}
	return true
}

func (c *fakeCatalog) ListThemes(context.Context) ([]models.Theme, error) {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.themeCalls++
	return c.themes, nil
}

func (c *fakeCatalog) Counts(context.Context) (models.CatalogCounts, error) {
	c.mu.Lock()
	defer c.mu.Unlock()
	return models.CatalogCounts{Puzzles: int64(len(c.puzzles)), Themes: int64(len(c.themes))}, nil
}

func (c *fakeCatalog) Ping(context.Context) error { return c.pingErr }

// fakeDaily records selections and serves a configurable current puzzle.
type fakeDaily struct {
	current    *models.Puzzle
	currentErr error
	selectID   string
	selectErr  error
	triggers   []string
}

func (d *fakeDaily) Select(_ context.Context, trigger string) (string, error) {
	d.triggers = append(d.triggers, trigger)
	return d.selectID, d.selectErr
}

func (d *fakeDaily) Current(context.Context) (*models.Puzzle, error) {
	return d.current, d.currentErr
}

// fakeImporter implements ImportController without running anything.
type fakeImporter struct {
	running  bool
	started  []puzzleimport.Pipeline
	opts     []puzzleimport.Options
	stats    *puzzleimport.ImportStats
	last     map[puzzleimport.Pipeline]*puzzleimport.ImportStats
	cleared  int
	stopped  int
	startErr error
}

func (f *fakeImporter) Start(p puzzleimport.Pipeline, opts puzzleimport.Options) error {
	if f.running {
		return puzzleimport.ErrImportInProgress
	}
	if f.startErr != nil {
		return f.startErr
	}
	f.started = append(f.started, p)
	f.opts = append(f.opts, opts)
	return nil
}

func (f *fakeImporter) Stop() error {
	if !f.running {
		return puzzleimport.ErrNoImportRunning
	}
	f.stopped++
	return nil
}

func (f *fakeImporter) IsRunning() bool                     { return f.running }
func (f *fakeImporter) GetStats() *puzzleimport.ImportStats { return f.stats }
func (f *fakeImporter) LastStats() map[puzzleimport.Pipeline]*puzzleimport.ImportStats {
	return f.last
}

func (f *fakeImporter) ClearProgress(context.Context) error {
	if f.running {
		return puzzleimport.ErrImportInProgress
	}
	f.cleared++
	return nil
}

func testConfig() *config.Config {
	return &config.Config{
		Security: config.SecurityConfig{
			APIKey:            testAPIKey,
			CronSecret:        testCronSecret,
			RateLimitDisabled: true,
		},
		Cache: config.CacheConfig{Enabled: false},
		Daily: config.DailyConfig{RatingMin: 1400, RatingMax: 1800},
	}
}

// samplePuzzle has solution e4 e5 Nf3 and themes fork and short.
func samplePuzzle() *models.Puzzle {
	return &models.Puzzle{
		ID:            "p1",
		FEN:           "rnbqkbnr/pppppppp/8/8/8/8/PPPPPPPP/RNBQKBNR w KQkq - 0 1",
		SolutionMoves: []string{"e4", "e5", "Nf3"},
		Rating:        1500,
		Themes:        []models.ThemeRef{{Slug: "fork", Name: "Fork"}, {Slug: "short", Name: "Short"}},
		CreatedAt:     time.Date(2026, 1, 1, 0, 0, 0, 0, time.UTC),
	}
}

type testServer struct {
	handler  *Handler
	catalog  *fakeCatalog
	daily    *fakeDaily
	importer *fakeImporter
	router   http.Handler
}

func newTestServer(t *testing.T, cfg *config.Config, puzzles ...*models.Puzzle) *testServer {
	t.Helper()
	if cfg == nil {
		cfg = testConfig()
	}
	catalog := newFakeCatalog(puzzles...)
	dailySvc := &fakeDaily{currentErr: daily.ErrPointerNotSet}
	importer := &fakeImporter{}

	h, err := NewHandler(catalog, dailySvc, cfg)
	if err != nil {
		t.Fatalf("NewHandler: %v", err)
	}
	t.Cleanup(h.Close)

	router := NewRouter(h, &cfg.Security)
	router.ConfigureImport(NewImportHandlers(importer))

	return &testServer{
		handler:  h,
		catalog:  catalog,
		daily:    dailySvc,
		importer: importer,
		router:   router.SetupChi(),
	}
}

// do sends a request with the API key unless headers override it.
func (s *testServer) do(t *testing.T, method, target string, body interface{}, headers map[string]string) *httptest.ResponseRecorder {
	t.Helper()
	var buf bytes.Buffer
	switch b := body.(type) {
	case nil:
	case string:
		buf.WriteString(b)
	default:
		if err := json.NewEncoder(&buf).Encode(b); err != nil {
			t.Fatalf("encode body: %v", err)
		}
	}

	req := httptest.NewRequest(method, target, &buf)
	req.Header.Set("X-API-Key", testAPIKey)
	for k, v := range headers {
		if v == "" {
			req.Header.Del(k)
			continue
		}
		req.Header.Set(k, v)
	}
	rec := httptest.NewRecorder()
	s.router.ServeHTTP(rec, req)
	return rec
}

// envelope decodes a response, unmarshalling data into dst when non-nil.
type envelope struct {
	Success bool            `json:"success"`
	Data    json.RawMessage `json:"data"`
	Error   *APIError       `json:"error"`
	Meta    *APIMeta        `json:"meta"`
}

func decodeEnvelope(t *testing.T, rec *httptest.ResponseRecorder, dst interface{}) envelope {
	t.Helper()
	var env envelope
	if err := json.Unmarshal(rec.Body.Bytes(), &env); err != nil {
		t.Fatalf("decode response %q: %v", rec.Body.String(), err)
	}
	if dst != nil && len(env.Data) > 0 {
		if err := json.Unmarshal(env.Data, dst); err != nil {
			t.Fatalf("decode data %s: %v", env.Data, err)
		}
	}
	return env
}

func expectStatus(t *testing.T, rec *httptest.ResponseRecorder, want int) {
	t.Helper()
	if rec.Code != want {
		t.Fatalf("status = %d, want %d; body: %s", rec.Code, want, rec.Body.String())
	}
}

func expectErrorMessage(t *testing.T, rec *httptest.ResponseRecorder, want string) {
	t.Helper()
	env := decodeEnvelope(t, rec, nil)
	if env.Success || env.Error == nil {
		t.Fatalf("expected error envelope, got %s", rec.Body.String())
	}
	if env.Error.Message != want {
		t.Errorf("error message = %q, want %q", env.Error.Message, want)
	}
}
