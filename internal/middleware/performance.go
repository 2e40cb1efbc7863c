// Tactica - Chess Puzzle Content API
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/tactica

package middleware

import (
	"net/http"
	"slices"
	"strings"
	"sync"
	"time"

	"github.com/tomtom215/tactica/internal/logging"
)

// DefaultSlowRequestThreshold is the latency above which a request is logged.
const DefaultSlowRequestThreshold = time.Second

// RequestSample is one observed request.
type RequestSample struct {
	Route      string
	Method     string
	Duration   time.Duration
	StatusCode int
}

// EndpointLatency summarizes the retained samples of one route.
type EndpointLatency struct {
	Endpoint string  `json:"endpoint"`
	Count    int     `json:"count"`
	AvgMs    float64 `json:"avg_ms"`
	P50Ms    int64   `json:"p50_ms"`
	P95Ms    int64   `json:"p95_ms"`
	P99Ms    int64   `json:"p99_ms"`
	MaxMs    int64   `json:"max_ms"`
	Errors   int     `json:"errors"`
}

// LatencyTracker keeps a ring of the most recent request samples.
type LatencyTracker struct {
	mu            sync.RWMutex
	samples       []RequestSample
	next          int
	full          bool
	slowThreshold time.Duration
}

// NewLatencyTracker retains up to capacity samples; capacity below 1 is 1.
func NewLatencyTracker(capacity int) *LatencyTracker {
	if capacity < 1 {
		capacity = 1
	}
	return &LatencyTracker{
		samples:       make([]RequestSample, capacity),
		slowThreshold: DefaultSlowRequestThreshold,
	}
}

// Record stores a sample, evicting the oldest when the ring is full.
func (lt *LatencyTracker) Record(s RequestSample) {
	lt.mu.Lock()
	lt.samples[lt.next] = s
	lt.next++
	if lt.next == len(lt.samples) {
		lt.next = 0
		lt.full = true
	}
	lt.mu.Unlock()
}

// Len returns the number of retained samples.
func (lt *LatencyTracker) Len() int {
	lt.mu.RLock()
	defer lt.mu.RUnlock()
	if lt.full {
		return len(lt.samples)
	}
	return lt.next
}

// Snapshot returns per-endpoint latency, busiest endpoint first.
func (lt *LatencyTracker) Snapshot() []EndpointLatency {
	lt.mu.RLock()
	n := lt.next
	if lt.full {
		n = len(lt.samples)
	}
	byEndpoint := make(map[string][]RequestSample)
	for _, s := range lt.samples[:n] {
		key := s.Method + " " + s.Route
		byEndpoint[key] = append(byEndpoint[key], s)
	}
	lt.mu.RUnlock()

	out := make([]EndpointLatency, 0, len(byEndpoint))
	for endpoint, samples := range byEndpoint {
		durations := make([]int64, len(samples))
		var sum int64
		errs := 0
		for i, s := range samples {
			durations[i] = s.Duration.Milliseconds()
			sum += durations[i]
			if s.StatusCode >= http.StatusInternalServerError {
				errs++
			}
		}
		slices.Sort(durations)
		out = append(out, EndpointLatency{
			Endpoint: endpoint,
			Count:    len(durations),
			AvgMs:    float64(sum) / float64(len(durations)),
			P50Ms:    percentile(durations, 0.50),
			P95Ms:    percentile(durations, 0.95),
			P99Ms:    percentile(durations, 0.99),
			MaxMs:    durations[len(durations)-1],
			Errors:   errs,
		})
	}

	slices.SortFunc(out, func(a, b EndpointLatency) int {
		if a.Count != b.Count {
			return b.Count - a.Count
		}
		return strings.Compare(a.Endpoint, b.Endpoint)
	})
	return out
}

// Middleware samples every request and logs the slow ones.
func (lt *LatencyTracker) Middleware(next http.HandlerFunc) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		start := time.Now()
		rec := newStatusRecorder(w)

		next(rec, r)

		elapsed := time.Since(start)
		route := routeLabel(r)
		lt.Record(RequestSample{
			Route:      route,
			Method:     r.Method,
			Duration:   elapsed,
			StatusCode: rec.statusCode,
		})

		if elapsed > lt.slowThreshold {
			logging.Ctx(r.Context()).Warn().
				Str("method", r.Method).
				Str("route", route).
				Dur("duration", elapsed).
				Msg("Slow request detected")
		}
	}
}

func percentile(sorted []int64, p float64) int64 {
	if len(sorted) == 0 {
		return 0
	}
	return sorted[int(float64(len(sorted)-1)*p)]
}
