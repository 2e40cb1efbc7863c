// Tactica - Chess Puzzle Content API
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/tactica

/*
Package middleware provides the HTTP middleware shared by every route group.

Key Components:

  - RequestID: X-Request-ID propagation into the logging context
  - PrometheusMetrics: request counters and latency histograms by route pattern
  - APIKey: X-API-Key check for the /api/v1 routes
  - CronSecret: Authorization: Bearer check for the cron trigger
  - LatencyTracker: in-process latency percentiles reported by /health

Middleware written as func(http.HandlerFunc) http.HandlerFunc is adapted to
chi's func(http.Handler) http.Handler by the router.

Credential checks use crypto/subtle so that comparison time does not depend
on how many leading bytes match. An unset credential is a server
misconfiguration and yields 500 rather than letting every request through.
*/
package middleware
