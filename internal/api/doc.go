// Tactica - Chess Puzzle Content API
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/tactica

/*
Package api provides the HTTP surface of Tactica.

Routes:

	GET    /health                           liveness plus catalog counts (no key)
	GET    /metrics                          Prometheus exposition (no key)
	GET    /api/v1/random                    random puzzle by rating range and themes
	GET    /api/v1/themes                    theme catalog ordered by name
	GET    /api/v1/puzzles/daily             current puzzle of the day
	GET    /api/v1/puzzles/{id}              puzzle by id
	POST   /api/v1/puzzles/{id}/solve        check a full solution
	POST   /api/v1/puzzles/{id}/hint         next move after a played prefix
	POST   /api/v1/import/{pipeline}         start an import run
	GET    /api/v1/import/status             running flag and last run stats
	DELETE /api/v1/import                    stop the running import
	DELETE /api/v1/import/progress           clear persisted progress
	GET    /api/cron/select-daily-puzzle     pick a new puzzle of the day (POST too)

Everything under /api/v1 requires the X-API-Key header. The cron trigger
requires Authorization: Bearer <cron secret> instead.

Responses use one envelope:

	{"success": true,  "data": {...}, "meta": {"request_id": "...", "timestamp": "..."}}
	{"success": false, "error": {"code": "NOT_FOUND", "message": "..."}, "meta": {...}}

Domain payloads (puzzles, solve and hint results) travel in data.
*/
package api
