// Tactica - Chess Puzzle Content API
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/tactica

// Package metrics holds the Prometheus collectors exported on /metrics.
package metrics

import (
	"context"
	"errors"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

var (
	// Database
	DBQueryDuration = promauto.NewHistogramVec(
		prometheus.HistogramOpts{
			Name:    "duckdb_query_duration_seconds",
			Help:    "Duration of DuckDB queries in seconds",
			Buckets: prometheus.DefBuckets,
		},
		[]string{"operation", "table"},
	)

	DBQueryErrors = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "duckdb_query_errors_total",
			Help: "Total number of DuckDB query errors",
		},
		[]string{"operation", "table", "error_type"},
	)

	// API
	APIRequestsTotal = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "api_requests_total",
			Help: "Total number of API requests",
		},
		[]string{"method", "endpoint", "status_code"},
	)

	APIRequestDuration = promauto.NewHistogramVec(
		prometheus.HistogramOpts{
			Name:    "api_request_duration_seconds",
			Help:    "API request duration in seconds",
			Buckets: []float64{0.005, 0.01, 0.025, 0.05, 0.1, 0.25, 0.5, 1, 2.5, 5},
		},
		[]string{"method", "endpoint"},
	)

	APIActiveRequests = promauto.NewGauge(
		prometheus.GaugeOpts{
			Name: "api_active_requests",
			Help: "Current number of active API requests",
		},
	)

	APIAuthFailures = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "api_auth_failures_total",
			Help: "Requests rejected for a missing or wrong credential",
		},
		[]string{"scheme"}, // "api_key", "cron_bearer"
	)

	// Import pipelines
	ImportBatchesCommitted = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "import_batches_committed_total",
			Help: "Batches committed by the import pipelines",
		},
		[]string{"pipeline"},
	)

	ImportRecords = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "import_records_total",
			Help: "Records seen by the import pipelines, by outcome",
		},
		[]string{"pipeline", "outcome"}, // inserted, duplicate, skipped, linked, failed
	)

	ImportBatchDuration = promauto.NewHistogramVec(
		prometheus.HistogramOpts{
			Name:    "import_batch_duration_seconds",
			Help:    "Time spent committing one batch",
			Buckets: []float64{0.01, 0.05, 0.1, 0.25, 0.5, 1, 2.5, 5, 10, 30},
		},
		[]string{"pipeline"},
	)

	ImportRunsTotal = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "import_runs_total",
			Help: "Completed pipeline runs by result",
		},
		[]string{"pipeline", "result"}, // success, failure
	)

	ImportLastSuccess = promauto.NewGaugeVec(
		prometheus.GaugeOpts{
			Name: "import_last_success_timestamp",
			Help: "Unix timestamp of the last successful run",
		},
		[]string{"pipeline"},
	)

	// Daily puzzle
	DailySelections = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "daily_puzzle_selections_total",
			Help: "Daily puzzle selections by trigger and result",
		},
		[]string{"trigger", "result"}, // trigger: cron_http, scheduler
	)

	PointerStoreBreakerState = promauto.NewGauge(
		prometheus.GaugeOpts{
			Name: "pointer_store_circuit_breaker_state",
			Help: "Circuit breaker state for the pointer store (0=closed, 1=half-open, 2=open)",
		},
	)

	// Response cache
	CacheHits = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "cache_hits_total",
			Help: "Total number of cache hits",
		},
		[]string{"cache_type"},
	)

	CacheMisses = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "cache_misses_total",
			Help: "Total number of cache misses",
		},
		[]string{"cache_type"},
	)
)

// RecordDBQuery records a database query metric.
func RecordDBQuery(operation, table string, duration time.Duration, err error) {
	DBQueryDuration.WithLabelValues(operation, table).Observe(duration.Seconds())
	if err != nil {
		DBQueryErrors.WithLabelValues(operation, table, classifyError(err)).Inc()
	}
}

// classifyError keeps the error_type label bounded.
func classifyError(err error) string {
	switch {
	case errors.Is(err, context.DeadlineExceeded):
		return "timeout"
	case errors.Is(err, context.Canceled):
		return "canceled"
	default:
		return "other"
	}
}

// RecordAPIRequest records an API request metric.
func RecordAPIRequest(method, endpoint, statusCode string, duration time.Duration) {
	APIRequestsTotal.WithLabelValues(method, endpoint, statusCode).Inc()
	APIRequestDuration.WithLabelValues(method, endpoint).Observe(duration.Seconds())
}

// TrackActiveRequest moves the active request gauge.
func TrackActiveRequest(inc bool) {
	if inc {
		APIActiveRequests.Inc()
	} else {
		APIActiveRequests.Dec()
	}
}

// RecordImportBatch records one committed batch and its per-outcome counts.
func RecordImportBatch(pipeline string, duration time.Duration, outcomes map[string]int) {
	ImportBatchesCommitted.WithLabelValues(pipeline).Inc()
	ImportBatchDuration.WithLabelValues(pipeline).Observe(duration.Seconds())
	for outcome, n := range outcomes {
		if n > 0 {
			ImportRecords.WithLabelValues(pipeline, outcome).Add(float64(n))
		}
	}
}

// RecordImportRun records the end of a pipeline run.
func RecordImportRun(pipeline string, err error) {
	if err != nil {
		ImportRunsTotal.WithLabelValues(pipeline, "failure").Inc()
		return
	}
	ImportRunsTotal.WithLabelValues(pipeline, "success").Inc()
	ImportLastSuccess.WithLabelValues(pipeline).Set(float64(time.Now().Unix()))
}

// RecordDailySelection records a daily puzzle selection attempt.
func RecordDailySelection(trigger string, err error) {
	result := "success"
	if err != nil {
		result = "failure"
	}
	DailySelections.WithLabelValues(trigger, result).Inc()
}

// RecordAuthFailure counts a rejected credential.
func RecordAuthFailure(scheme string) {
	APIAuthFailures.WithLabelValues(scheme).Inc()
}
