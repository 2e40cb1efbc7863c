// Tactica - Chess Puzzle Content API
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/tactica

package main

import (
	"fmt"

	"github.com/spf13/cobra"

	"github.com/tomtom215/tactica/internal/daily"
)

func newSelectDailyCmd(a *app) *cobra.Command {
	return &cobra.Command{
		Use:   "select-daily",
		Short: "Pick a new puzzle of the day in the configured rating window",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			st, err := openStores(a.cfg)
			if err != nil {
				return fail(err, "Failed to open stores")
			}
			defer st.closeWithLog()

			svc := daily.NewService(&a.cfg.Daily, st.db, daily.NewBadgerPointerStore(st.kv))
			id, err := svc.Select(cmd.Context(), daily.TriggerCLI)
			if err != nil {
				return fail(err, "Daily puzzle selection failed")
			}
			_, err = fmt.Fprintf(cmd.OutOrStdout(), "Successfully set Puzzle of the Day to: %s\n", id)
			return err
		},
	}
}
