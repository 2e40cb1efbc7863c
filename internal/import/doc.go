// Tactica - Chess Puzzle Content API
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/tactica

// Package puzzleimport loads the Lichess puzzle archive into the catalog.
//
// Three pipelines share the same front half:
//
//	zip archive
//	     ↓
//	OpenArchiveEntry   (one forward scan, other entries skipped)
//	     ↓
//	DecodeRows         (lazy iter.Seq2 over header-named CSV rows)
//	     ↓
//	Normalizer         (typed record or skip)
//
// and diverge at the sink:
//
//   - puzzles: Batcher (1000) → InsertPuzzlesBatch, insert-or-skip on FEN
//   - themes:  distinct token set → UpsertTheme per slug, insert-if-absent
//   - connect: Batcher (500) → resolve FENs and slugs → AttachThemes
//
// # Recovery
//
// Every write is idempotent, so the recovery path for a failed run is to run
// it again from the start. Saved progress is informational only; runs never
// resume from it.
//
// # Concurrency
//
// A Runner executes one pipeline at a time. Rows are pulled one at a time
// and a batch is committed synchronously before the next row is read, so no
// two batches from one run are ever in flight.
package puzzleimport
