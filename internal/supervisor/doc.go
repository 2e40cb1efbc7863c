// Tactica - Chess Puzzle Content API
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/tactica

/*
Package supervisor runs Tactica's long-lived components under a suture tree.

Tree:

	tactica (root)
	├── data-layer    import service (auto-start run, stop on shutdown)
	├── worker-layer  daily puzzle scheduler
	└── api-layer     HTTP server

A service that returns an error is restarted with backoff. If it fails more
than FailureThreshold times within the decay window, its layer backs off for
FailureBackoff before restarting it again. Cancelling the context passed to
Serve stops every service, waiting up to ShutdownTimeout for each.

Supervisor events are logged through sutureslog on a slog.Logger backed by
the zerolog logger (see logging.NewSlogLogger).
*/
package supervisor
