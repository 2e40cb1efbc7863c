// Tactica - Chess Puzzle Content API
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/tactica

package puzzleimport

import (
	"encoding/csv"
	"errors"
	"fmt"
	"io"
	"iter"
	"strings"
)

// Column names in the Lichess puzzle CSV header.
const (
	ColumnFEN    = "FEN"
	ColumnMoves  = "Moves"
	ColumnRating = "Rating"
	ColumnThemes = "Themes"
)

// Row maps header names to the cell values of one data row. A column the
// row is too short to reach is absent, not empty.
type Row map[string]string

// Get returns the value for column and whether the row has it.
func (r Row) Get(column string) (string, bool) {
	v, ok := r[column]
	return v, ok
}

// DecodeRows yields the data rows of a CSV stream in file order. The first
// record is the header. Rows are read one per pull and the sequence cannot
// be restarted. A read error is yielded once and ends the sequence.
func DecodeRows(r io.Reader) iter.Seq2[Row, error] {
	return func(yield func(Row, error) bool) {
		cr := csv.NewReader(r)
		cr.FieldsPerRecord = -1
		cr.LazyQuotes = true

		header, err := cr.Read()
		if errors.Is(err, io.EOF) {
			return
		}
		if err != nil {
			yield(nil, fmt.Errorf("read header: %w", err))
			return
		}
		if len(header) > 0 {
			header[0] = strings.TrimPrefix(header[0], "\ufeff")
		}
		for i := range header {
			header[i] = strings.TrimSpace(header[i])
		}

		for {
			record, err := cr.Read()
			if errors.Is(err, io.EOF) {
				return
			}
			if err != nil {
				yield(nil, fmt.Errorf("read row: %w", err))
				return
			}

			row := make(Row, len(header))
			for i, name := range header {
				if i >= len(record) {
					break
				}
				row[name] = record[i]
			}
			if !yield(row, nil) {
				return
			}
		}
	}
}
