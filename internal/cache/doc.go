// Tactica - Chess Puzzle Content API
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/tactica

// Package cache holds API responses that only change when an import runs:
// the theme catalog and puzzles looked up by id. Entries expire after a TTL
// and the whole cache is cleared when a pipeline completes.
//
// Storage is a ristretto cache, so admission is probabilistic and a Set is
// visible to Get only after the write buffer drains. Callers treat a miss
// as "ask the database" and never depend on a Set having landed.
package cache
