// Tactica - Chess Puzzle Content API
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/tactica

package middleware

import (
	"crypto/subtle"
	"net/http"
	"strings"

	"github.com/goccy/go-json"

	"github.com/tomtom215/tactica/internal/logging"
	"github.com/tomtom215/tactica/internal/metrics"
)

// Credential headers.
const (
	APIKeyHeader        = "X-API-Key"
	AuthorizationHeader = "Authorization"
	bearerPrefix        = "Bearer "
)

// Auth schemes used as metric labels.
const (
	SchemeAPIKey = "api_key"
	SchemeCron   = "cron_secret"
)

const (
	msgUnauthorized = "Unauthorized"
	msgMisconfig    = "Server configuration error"
)

// APIKey rejects requests whose X-API-Key header does not equal key.
func APIKey(key string) func(http.HandlerFunc) http.HandlerFunc {
	return func(next http.HandlerFunc) http.HandlerFunc {
		return func(w http.ResponseWriter, r *http.Request) {
			if key == "" {
				logging.Ctx(r.Context()).Error().Msg("API key is not configured")
				writeAuthError(w, r, http.StatusInternalServerError, "INTERNAL_ERROR", msgMisconfig)
				return
			}
			if !secureEqual(r.Header.Get(APIKeyHeader), key) {
				reject(w, r, SchemeAPIKey)
				return
			}
			next(w, r)
		}
	}
}

// CronSecret rejects requests without "Authorization: Bearer <secret>".
func CronSecret(secret string) func(http.HandlerFunc) http.HandlerFunc {
	return func(next http.HandlerFunc) http.HandlerFunc {
		return func(w http.ResponseWriter, r *http.Request) {
			if secret == "" {
				logging.Ctx(r.Context()).Error().Msg("Cron secret is not configured")
				writeAuthError(w, r, http.StatusInternalServerError, "INTERNAL_ERROR", msgMisconfig)
				return
			}
			token, ok := strings.CutPrefix(r.Header.Get(AuthorizationHeader), bearerPrefix)
			if !ok || !secureEqual(token, secret) {
				reject(w, r, SchemeCron)
				return
			}
			next(w, r)
		}
	}
}

func secureEqual(got, want string) bool {
	return subtle.ConstantTimeCompare([]byte(got), []byte(want)) == 1
}

func reject(w http.ResponseWriter, r *http.Request, scheme string) {
	metrics.RecordAuthFailure(scheme)
	logging.Ctx(r.Context()).Warn().
		Str("scheme", scheme).
		Str("method", r.Method).
		Str("path", r.URL.Path).
		Msg("Rejected request with missing or invalid credentials")
	writeAuthError(w, r, http.StatusUnauthorized, "UNAUTHORIZED", msgUnauthorized)
}

// authError matches the error half of the api package envelope.
type authError struct {
	Success bool            `json:"success"`
	Error   authErrorDetail `json:"error"`
}

type authErrorDetail struct {
	Code      string `json:"code"`
	Message   string `json:"message"`
	RequestID string `json:"request_id,omitempty"`
}

func writeAuthError(w http.ResponseWriter, r *http.Request, status int, code, message string) {
	w.Header().Set("Content-Type", "application/json; charset=utf-8")
	w.WriteHeader(status)
	body := authError{Error: authErrorDetail{
		Code:      code,
		Message:   message,
		RequestID: logging.RequestIDFromContext(r.Context()),
	}}
	if err := json.NewEncoder(w).Encode(body); err != nil {
		logging.Error().Err(err).Msg("Failed to encode auth error")
	}
}
