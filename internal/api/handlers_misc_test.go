// Tactica - Chess Puzzle Content API
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/tactica

package api

import (
	"errors"
	"net/http"
	"testing"
	"time"

	"github.com/sony/gobreaker/v2"

	"github.com/tomtom215/tactica/internal/config"
	"github.com/tomtom215/tactica/internal/daily"
	puzzleimport "github.com/tomtom215/tactica/internal/import"
	"github.com/tomtom215/tactica/internal/models"
)

func configCacheEnabled() config.CacheConfig {
	return config.CacheConfig{Enabled: true, TTL: time.Minute, MaxEntries: 100}
}

func TestThemes(t *testing.T) {
	cfg := testConfig()
	cfg.Cache = configCacheEnabled()
	s := newTestServer(t, cfg)
	s.catalog.themes = []models.Theme{
		{ID: "t1", Slug: "backRankMate", Name: "Back Rank Mate"},
		{ID: "t2", Slug: "fork", Name: "Fork"},
	}

	rec := s.do(t, http.MethodGet, "/api/v1/themes", nil, nil)
	expectStatus(t, rec, http.StatusOK)

	var themes []models.Theme
	env := decodeEnvelope(t, rec, &themes)
	if len(themes) != 2 || themes[0].Name != "Back Rank Mate" {
		t.Errorf("themes = %+v", themes)
	}
	if env.Meta == nil || env.Meta.Count == nil || *env.Meta.Count != 2 {
		t.Errorf("meta.count missing: %s", rec.Body.String())
	}

	s.handler.themes.Wait()
	expectStatus(t, s.do(t, http.MethodGet, "/api/v1/themes", nil, nil), http.StatusOK)
	if s.catalog.themeCalls != 1 {
		t.Errorf("ListThemes calls = %d, want 1", s.catalog.themeCalls)
	}
}

func TestDailyPuzzle(t *testing.T) {
	tests := []struct {
		name   string
		err    error
		status int
		msg    string
	}{
		{"pointer unset", daily.ErrPointerNotSet, http.StatusNotFound, "Puzzle of the Day has not been set yet. Please check back later."},
		{"dangling pointer", daily.ErrPuzzleMissing, http.StatusNotFound, "Could not retrieve the daily puzzle."},
		{"breaker open", gobreaker.ErrOpenState, http.StatusServiceUnavailable, "Daily puzzle store is temporarily unavailable"},
		{"store failure", errors.New("disk gone"), http.StatusInternalServerError, "Something went wrong"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			s := newTestServer(t, nil)
			s.daily.currentErr = tt.err

			rec := s.do(t, http.MethodGet, "/api/v1/puzzles/daily", nil, nil)
			expectStatus(t, rec, tt.status)
			expectErrorMessage(t, rec, tt.msg)
		})
	}

	t.Run("set", func(t *testing.T) {
		s := newTestServer(t, nil)
		s.daily.current, s.daily.currentErr = samplePuzzle(), nil

		rec := s.do(t, http.MethodGet, "/api/v1/puzzles/daily", nil, nil)
		expectStatus(t, rec, http.StatusOK)
		var p models.Puzzle
		decodeEnvelope(t, rec, &p)
		if p.ID != "p1" {
			t.Errorf("daily puzzle id = %q", p.ID)
		}
	})
}

func TestSelectDailyPuzzle(t *testing.T) {
	bearer := map[string]string{"Authorization": "Bearer " + testCronSecret, "X-API-Key": ""}

	for _, method := range []string{http.MethodGet, http.MethodPost} {
		t.Run(method, func(t *testing.T) {
			s := newTestServer(t, nil)
			s.daily.selectID = "p9"

			rec := s.do(t, method, "/api/cron/select-daily-puzzle", nil, bearer)
			expectStatus(t, rec, http.StatusOK)

			var sel models.DailySelection
			decodeEnvelope(t, rec, &sel)
			if sel.PuzzleID != "p9" {
				t.Errorf("puzzleId = %q", sel.PuzzleID)
			}
			if len(s.daily.triggers) != 1 || s.daily.triggers[0] != daily.TriggerHTTP {
				t.Errorf("triggers = %v", s.daily.triggers)
			}
		})
	}

	t.Run("no candidate", func(t *testing.T) {
		s := newTestServer(t, nil)
		s.daily.selectErr = daily.ErrNoCandidate

		rec := s.do(t, http.MethodPost, "/api/cron/select-daily-puzzle", nil, bearer)
		expectStatus(t, rec, http.StatusNotFound)
	})

	t.Run("api key is not enough", func(t *testing.T) {
		s := newTestServer(t, nil)

		rec := s.do(t, http.MethodPost, "/api/cron/select-daily-puzzle", nil, nil)
		expectStatus(t, rec, http.StatusUnauthorized)
		if len(s.daily.triggers) != 0 {
			t.Error("selection ran without the cron secret")
		}
	})

	t.Run("secret not configured", func(t *testing.T) {
		cfg := testConfig()
		cfg.Security.CronSecret = ""
		s := newTestServer(t, cfg)

		rec := s.do(t, http.MethodPost, "/api/cron/select-daily-puzzle", nil, map[string]string{"Authorization": "Bearer "})
		expectStatus(t, rec, http.StatusInternalServerError)
		expectErrorMessage(t, rec, "Server configuration error")
	})
}

func TestImportHandlers(t *testing.T) {
	t.Run("start", func(t *testing.T) {
		s := newTestServer(t, nil)

		rec := s.do(t, http.MethodPost, "/api/v1/import/puzzles?dry_run=true", nil, nil)
		expectStatus(t, rec, http.StatusAccepted)
		if len(s.importer.started) != 1 || s.importer.started[0] != puzzleimport.PipelinePuzzles {
			t.Fatalf("started = %v", s.importer.started)
		}
		if !s.importer.opts[0].DryRun {
			t.Error("dry_run not passed through")
		}
	})

	t.Run("unknown pipeline", func(t *testing.T) {
		s := newTestServer(t, nil)
		rec := s.do(t, http.MethodPost, "/api/v1/import/games", nil, nil)
		expectStatus(t, rec, http.StatusBadRequest)
	})

	t.Run("bad dry_run", func(t *testing.T) {
		s := newTestServer(t, nil)
		rec := s.do(t, http.MethodPost, "/api/v1/import/themes?dry_run=maybe", nil, nil)
		expectStatus(t, rec, http.StatusBadRequest)
	})

	t.Run("already running", func(t *testing.T) {
		s := newTestServer(t, nil)
		s.importer.running = true
		s.importer.stats = &puzzleimport.ImportStats{Pipeline: puzzleimport.PipelineConnect, StartTime: time.Now()}

		rec := s.do(t, http.MethodPost, "/api/v1/import/all", nil, nil)
		expectStatus(t, rec, http.StatusConflict)
	})

	t.Run("status", func(t *testing.T) {
		s := newTestServer(t, nil)
		start := time.Now().Add(-time.Second)
		s.importer.stats = &puzzleimport.ImportStats{Pipeline: puzzleimport.PipelineThemes, StartTime: start, EndTime: time.Now()}
		s.importer.last = map[puzzleimport.Pipeline]*puzzleimport.ImportStats{
			puzzleimport.PipelineThemes: s.importer.stats,
		}

		rec := s.do(t, http.MethodGet, "/api/v1/import/status", nil, nil)
		expectStatus(t, rec, http.StatusOK)

		var status ImportStatus
		decodeEnvelope(t, rec, &status)
		if status.Running || status.Current == nil || status.Current.Status != "completed" {
			t.Errorf("status = %+v", status)
		}
		if status.Last[puzzleimport.PipelineThemes] == nil {
			t.Errorf("last stats missing: %s", rec.Body.String())
		}
	})

	t.Run("stop without run", func(t *testing.T) {
		s := newTestServer(t, nil)
		rec := s.do(t, http.MethodDelete, "/api/v1/import", nil, nil)
		expectStatus(t, rec, http.StatusBadRequest)
	})

	t.Run("stop", func(t *testing.T) {
		s := newTestServer(t, nil)
		s.importer.running = true
		rec := s.do(t, http.MethodDelete, "/api/v1/import", nil, nil)
		expectStatus(t, rec, http.StatusOK)
		if s.importer.stopped != 1 {
			t.Errorf("stopped = %d", s.importer.stopped)
		}
	})

	t.Run("clear progress while running", func(t *testing.T) {
		s := newTestServer(t, nil)
		s.importer.running = true
		rec := s.do(t, http.MethodDelete, "/api/v1/import/progress", nil, nil)
		expectStatus(t, rec, http.StatusConflict)
	})

	t.Run("clear progress", func(t *testing.T) {
		s := newTestServer(t, nil)
		rec := s.do(t, http.MethodDelete, "/api/v1/import/progress", nil, nil)
		expectStatus(t, rec, http.StatusOK)
		if s.importer.cleared != 1 {
			t.Errorf("cleared = %d", s.importer.cleared)
		}
	})
}

func TestHealth(t *testing.T) {
	s := newTestServer(t, nil, samplePuzzle())

	rec := s.do(t, http.MethodGet, "/health", nil, map[string]string{"X-API-Key": ""})
	expectStatus(t, rec, http.StatusOK)

	var status HealthStatus
	decodeEnvelope(t, rec, &status)
	if status.Status != "healthy" || status.Catalog == nil || status.Catalog.Puzzles != 1 {
		t.Errorf("health = %+v", status)
	}

	s.catalog.pingErr = errors.New("closed")
	rec = s.do(t, http.MethodGet, "/health", nil, nil)
	expectStatus(t, rec, http.StatusServiceUnavailable)
}
