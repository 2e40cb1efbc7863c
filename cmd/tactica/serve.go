// Tactica - Chess Puzzle Content API
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/tactica

package main

import (
	"context"
	"errors"
	"net/http"
	"time"

	"github.com/spf13/cobra"

	"github.com/tomtom215/tactica/internal/api"
	"github.com/tomtom215/tactica/internal/daily"
	puzzleimport "github.com/tomtom215/tactica/internal/import"
	"github.com/tomtom215/tactica/internal/logging"
	"github.com/tomtom215/tactica/internal/supervisor"
	"github.com/tomtom215/tactica/internal/supervisor/services"
)

func newServeCmd(a *app) *cobra.Command {
	return &cobra.Command{
		Use:   "serve",
		Short: "Run the HTTP API",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			ctx, cancel := signalContext(cmd.Context())
			defer cancel()
			return a.serve(ctx)
		},
	}
}

//nolint:gocyclo // sequential wiring
func (a *app) serve(ctx context.Context) error {
	cfg := a.cfg
	logging.Info().Str("addr", cfg.Server.Addr()).Msg("Starting Tactica with supervisor tree")

	if cfg.Security.APIKey == "" {
		logging.Warn().Msg("API_KEY is not set: /api/v1 will answer 500 until it is")
	}
	if cfg.Security.CronSecret == "" {
		logging.Warn().Msg("CRON_SECRET is not set: /api/cron will answer 500 until it is")
	}

	st, err := openStores(cfg)
	if err != nil {
		return fail(err, "Failed to open stores")
	}
	defer st.closeWithLog()

	tree, err := supervisor.NewSupervisorTree(logging.NewSlogLogger(), supervisor.TreeConfig{
		ShutdownTimeout: cfg.Server.ShutdownTimeout,
	})
	if err != nil {
		return fail(err, "Failed to create supervisor tree")
	}

	dailySvc := daily.NewService(&cfg.Daily, st.db, daily.NewBadgerPointerStore(st.kv))

	handler, err := api.NewHandler(st.db, dailySvc, cfg)
	if err != nil {
		return fail(err, "Failed to create API handler")
	}
	defer handler.Close()

	runner := puzzleimport.NewRunner(&cfg.Import, st.db, puzzleimport.NewBadgerProgress(st.kv))
	runner.OnComplete(func(p puzzleimport.Pipeline, _ *puzzleimport.ImportStats) {
		handler.ClearCache()
		logging.Info().Str("pipeline", string(p)).Msg("Response cache cleared after import")
	})
	tree.AddDataService(services.NewImportService(runner, cfg.Import.AutoStart))

	if cfg.Daily.SchedulerEnabled {
		scheduler, err := daily.NewScheduler(dailySvc, &cfg.Daily)
		if err != nil {
			return fail(err, "Failed to create daily scheduler")
		}
		tree.AddWorkerService(services.NewDailySchedulerService(scheduler))
	} else {
		logging.Info().Msg("Daily scheduler disabled (DAILY_SCHEDULER_ENABLED=false)")
	}

	router := api.NewRouter(handler, &cfg.Security)
	router.ConfigureImport(api.NewImportHandlers(runner))

	server := &http.Server{
		Addr:              cfg.Server.Addr(),
		Handler:           router.SetupChi(),
		ReadHeaderTimeout: 10 * time.Second,
		ReadTimeout:       cfg.Server.Timeout,
		WriteTimeout:      cfg.Server.Timeout,
		IdleTimeout:       60 * time.Second,
	}
	tree.AddAPIService(services.NewHTTPServerService(server, server.Addr, cfg.Server.ShutdownTimeout))

	errCh := tree.ServeBackground(ctx)

	var treeErr error
	select {
	case <-ctx.Done():
		logging.Info().Msg("Context canceled, waiting for supervisor to finish")
	case treeErr = <-errCh:
	}
	for err := range errCh {
		treeErr = errors.Join(treeErr, err)
	}

	unstopped, _ := tree.UnstoppedServiceReport()
	for _, svc := range unstopped {
		logging.Warn().Str("service", svc.Name).Msg("Service failed to stop within timeout")
	}

	if treeErr != nil && !errors.Is(treeErr, context.Canceled) {
		return fail(treeErr, "Supervisor tree error")
	}
	logging.Info().Msg("Tactica stopped gracefully")
	return nil
}
