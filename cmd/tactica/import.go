// Tactica - Chess Puzzle Content API
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/tactica

package main

import (
	"context"
	"fmt"
	"io"

	"github.com/goccy/go-json"
	"github.com/spf13/cobra"

	puzzleimport "github.com/tomtom215/tactica/internal/import"
	"github.com/tomtom215/tactica/internal/logging"
)

type importOptions struct {
	archive string
	dryRun  bool
}

func newImportCmd(a *app) *cobra.Command {
	var opts importOptions

	cmd := &cobra.Command{
		Use:       "import {puzzles|themes|connect|all}",
		Short:     "Load the puzzle archive into the catalog",
		Long:      "Runs one import pipeline, or all three in order, and prints the run summary as JSON.",
		ValidArgs: []string{"puzzles", "themes", "connect", "all"},
		Args: func(cmd *cobra.Command, args []string) error {
			if err := cobra.ExactArgs(1)(cmd, args); err != nil {
				return err
			}
			_, err := puzzleimport.ParsePipeline(args[0])
			return err
		},
		RunE: func(cmd *cobra.Command, args []string) error {
			p, _ := puzzleimport.ParsePipeline(args[0])
			ctx, cancel := signalContext(cmd.Context())
			defer cancel()
			return a.runImport(ctx, cmd.OutOrStdout(), p, opts)
		},
	}

	cmd.Flags().StringVar(&opts.archive, "archive", "", "ZIP archive to read (default: import.archive_path)")
	cmd.Flags().BoolVar(&opts.dryRun, "dry-run", false, "Decode and count rows without writing")
	return cmd
}

func (a *app) runImport(ctx context.Context, out io.Writer, p puzzleimport.Pipeline, opts importOptions) error {
	st, err := openStores(a.cfg)
	if err != nil {
		return fail(err, "Failed to open stores")
	}
	defer st.closeWithLog()

	runner := puzzleimport.NewRunner(&a.cfg.Import, st.db, puzzleimport.NewBadgerProgress(st.kv))
	_, runErr := runner.Run(ctx, p, puzzleimport.Options{
		ArchivePath: opts.archive,
		DryRun:      opts.dryRun,
	})

	if err := writeSummary(out, runner.LastStats()); err != nil {
		logging.Warn().Err(err).Msg("Failed to write import summary")
	}
	if runErr != nil {
		return fail(runErr, fmt.Sprintf("Import %s failed", p))
	}
	return nil
}

// writeSummary prints the stats of every pipeline that ran, in run order.
func writeSummary(out io.Writer, last map[puzzleimport.Pipeline]*puzzleimport.ImportStats) error {
	summary := make([]*puzzleimport.ProgressSummary, 0, len(last))
	for _, p := range puzzleimport.Pipelines {
		if stats, ok := last[p]; ok {
			summary = append(summary, stats.ToSummary(false))
		}
	}
	enc := json.NewEncoder(out)
	enc.SetIndent("", "  ")
	return enc.Encode(summary)
}
