// Tactica - Chess Puzzle Content API
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/tactica

// Package services adapts Tactica components to suture.Service.
//
// Each wrapper's Serve blocks until its context is cancelled and then shuts
// the component down, so the supervisor owns every component's lifetime:
//
//   - HTTPServerService: http.Server with graceful shutdown
//   - ImportService: optional run of every pipeline at startup
//   - DailySchedulerService: cron-driven puzzle-of-the-day selection
package services
