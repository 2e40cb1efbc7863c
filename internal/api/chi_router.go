// Tactica - Chess Puzzle Content API
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/tactica

package api

import (
	"net/http"

	"github.com/go-chi/chi/v5"
	chimiddleware "github.com/go-chi/chi/v5/middleware"
	"github.com/prometheus/client_golang/prometheus/promhttp"

	"github.com/tomtom215/tactica/internal/config"
	"github.com/tomtom215/tactica/internal/middleware"
)

// Router owns the route table.
type Router struct {
	handler        *Handler
	importHandlers *ImportHandlers
	chiMiddleware  *ChiMiddleware
	security       *config.SecurityConfig
}

// NewRouter creates a router for handler using the security section for
// credentials, CORS and rate limits.
func NewRouter(handler *Handler, security *config.SecurityConfig) *Router {
	return &Router{
		handler:       handler,
		chiMiddleware: NewChiMiddleware(ChiMiddlewareConfigFromSecurity(security)),
		security:      security,
	}
}

// ConfigureImport enables the /api/v1/import routes.
func (router *Router) ConfigureImport(handlers *ImportHandlers) {
	router.importHandlers = handlers
}

// chiMiddleware adapts http.HandlerFunc middleware to Chi's func(http.Handler) http.Handler.
func chiMiddleware(mw func(http.HandlerFunc) http.HandlerFunc) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return mw(next.ServeHTTP)
	}
}

// SetupChi builds the HTTP handler.
func (router *Router) SetupChi() http.Handler {
	r := chi.NewRouter()

	// Global stack. CORS must precede auth so preflights get through.
	r.Use(chiMiddleware(middleware.RequestID))
	r.Use(chimiddleware.RealIP)
	r.Use(chimiddleware.Recoverer)
	r.Use(router.chiMiddleware.CORS())

	r.NotFound(WriteNotFound)
	r.MethodNotAllowed(WriteMethodNotAllowed)

	r.With(APISecurityHeaders()).Get("/health", router.handler.Health)
	r.Method(http.MethodGet, "/metrics", promhttp.Handler())

	r.Route("/api/v1", func(r chi.Router) {
		r.Use(router.chiMiddleware.RateLimit())
		r.Use(APISecurityHeaders())
		r.Use(chiMiddleware(middleware.PrometheusMetrics))
		r.Use(chiMiddleware(router.handler.latency.Middleware))
		r.Use(chiMiddleware(middleware.APIKey(router.security.APIKey)))
		r.Use(chimiddleware.Compress(5, "application/json"))

		r.Get("/random", router.handler.RandomPuzzle)
		r.Get("/themes", router.handler.Themes)

		r.Route("/puzzles", func(r chi.Router) {
			// Static segment wins over {id} in chi's tree.
			r.Get("/daily", router.handler.DailyPuzzle)
			r.Get("/{id}", router.handler.PuzzleByID)
			r.Post("/{id}/solve", router.handler.SolvePuzzle)
			r.Post("/{id}/hint", router.handler.PuzzleHint)
		})

		if router.importHandlers != nil {
			r.Route("/import", func(r chi.Router) {
				r.Get("/status", router.importHandlers.HandleGetImportStatus)
				r.Delete("/", router.importHandlers.HandleStopImport)
				r.Delete("/progress", router.importHandlers.HandleClearProgress)
				r.Post("/{pipeline}", router.importHandlers.HandleStartImport)
			})
		}
	})

	r.Route("/api/cron", func(r chi.Router) {
		r.Use(router.chiMiddleware.RateLimitCron())
		r.Use(APISecurityHeaders())
		r.Use(chiMiddleware(middleware.PrometheusMetrics))
		r.Use(chiMiddleware(middleware.CronSecret(router.security.CronSecret)))

		r.Get("/select-daily-puzzle", router.handler.SelectDailyPuzzle)
		r.Post("/select-daily-puzzle", router.handler.SelectDailyPuzzle)
	})

	return r
}
