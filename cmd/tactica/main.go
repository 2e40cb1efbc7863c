// Tactica - Chess Puzzle Content API
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/tactica

// Command tactica serves the puzzle catalog over HTTP and loads it from the
// Lichess puzzle archive.
//
// # Commands
//
//	tactica serve                              # HTTP API under the supervisor tree
//	tactica import all                         # puzzles, then themes, then connect
//	tactica import puzzles --archive db.zip    # one pipeline, explicit archive
//	tactica import connect --dry-run           # count without writing
//	tactica select-daily                       # pick the puzzle of the day now
//
// # Configuration
//
// Settings are layered with koanf: built-in defaults, then config.yaml (or
// CONFIG_PATH), then environment variables. The ones most deployments set:
//
//	API_KEY               X-API-Key value required on /api/v1
//	CRON_SECRET           Bearer token required on /api/cron
//	DUCKDB_PATH           catalog database file
//	BADGER_PATH           daily pointer and import progress store
//	PUZZLE_ARCHIVE_PATH   ZIP archive containing lichess_db_puzzle.csv
//
// # Signal Handling
//
// SIGINT and SIGTERM cancel the root context. serve drains in-flight
// requests and stops any running import; import stops after the batch in
// flight, which has already been committed.
package main

import (
	"os"
)

func main() {
	if err := newRootCmd().Execute(); err != nil {
		os.Exit(1)
	}
}
