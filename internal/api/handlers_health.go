// Tactica - Chess Puzzle Content API
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/tactica

package api

import (
	"context"
	"net/http"
	"time"

	"github.com/tomtom215/tactica/internal/cache"
	"github.com/tomtom215/tactica/internal/middleware"
	"github.com/tomtom215/tactica/internal/models"
)

// healthTimeout bounds the database probe.
const healthTimeout = 2 * time.Second

// HealthStatus is the body of GET /health.
type HealthStatus struct {
	Status        string                       `json:"status"`
	Database      string                       `json:"database"`
	UptimeSeconds float64                      `json:"uptime_seconds"`
	Catalog       *models.CatalogCounts        `json:"catalog,omitempty"`
	Cache         map[string]cache.Stats       `json:"cache,omitempty"`
	Endpoints     []middleware.EndpointLatency `json:"endpoints,omitempty"`
}

// Health handles GET /health. It returns 503 when the database is unreachable.
func (h *Handler) Health(w http.ResponseWriter, r *http.Request) {
	rw := NewResponseWriter(w, r)

	ctx, cancel := context.WithTimeout(r.Context(), healthTimeout)
	defer cancel()

	status := HealthStatus{
		Status:        "healthy",
		Database:      "connected",
		UptimeSeconds: time.Since(h.startTime).Seconds(),
		Endpoints:     h.latency.Snapshot(),
	}
	if h.config.Cache.Enabled {
		status.Cache = map[string]cache.Stats{
			"themes":  h.themes.Stats(),
			"puzzles": h.puzzles.Stats(),
		}
	}

	if err := h.catalog.Ping(ctx); err != nil {
		status.Status = "degraded"
		status.Database = "unreachable"
		rw.ErrorWithDetails(http.StatusServiceUnavailable, ErrCodeServiceUnavailable, "Database unreachable", status)
		return
	}

	if counts, err := h.catalog.Counts(ctx); err == nil {
		status.Catalog = &counts
	}
	rw.Success(status)
}
