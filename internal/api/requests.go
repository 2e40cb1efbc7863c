// Tactica - Chess Puzzle Content API
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/tactica

package api

import (
	"errors"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"strconv"
	"strings"

	"github.com/goccy/go-json"

	"github.com/tomtom215/tactica/internal/models"
)

// maxBodyBytes bounds solve and hint request bodies.
const maxBodyBytes = 64 << 10

// errBodyShape marks a body that is JSON but has the wrong field types.
var errBodyShape = errors.New("request body has the wrong shape")

// decodeJSONBody decodes r's body into dst. It returns errBodyShape when the
// JSON is well formed but a field has the wrong type.
func decodeJSONBody(w http.ResponseWriter, r *http.Request, dst interface{}) error {
	body := http.MaxBytesReader(w, r.Body, maxBodyBytes)
	err := json.NewDecoder(body).Decode(dst)
	if err == nil {
		return nil
	}
	var typeErr *json.UnmarshalTypeError
	if errors.As(err, &typeErr) {
		return errBodyShape
	}
	if errors.Is(err, io.EOF) {
		return fmt.Errorf("empty body: %w", err)
	}
	return err
}

// parseRandomRequest reads ratingMin, ratingMax and themes from the query.
// Empty parameters are ignored. The returned message is non-empty when the
// query must be rejected.
func parseRandomRequest(q url.Values) (*models.RandomPuzzleRequest, string) {
	req := &models.RandomPuzzleRequest{}

	var msg string
	if req.RatingMin, msg = parseRating(q, "ratingMin"); msg != "" {
		return nil, msg
	}
	if req.RatingMax, msg = parseRating(q, "ratingMax"); msg != "" {
		return nil, msg
	}
	if req.RatingMin != nil && req.RatingMax != nil && *req.RatingMax < *req.RatingMin {
		return nil, msgRatingMaxBelowMin
	}

	req.Themes = splitThemes(q.Get("themes"))
	if len(req.Themes) > models.MaxThemeCount {
		return nil, fmt.Sprintf(msgTooManyThemesFmt, models.MaxThemeCount)
	}
	return req, ""
}

func parseRating(q url.Values, name string) (*int, string) {
	raw := strings.TrimSpace(q.Get(name))
	if raw == "" {
		return nil, ""
	}
	v, err := strconv.Atoi(raw)
	if err != nil {
		return nil, fmt.Sprintf(msgRatingNotNumber, name)
	}
	if v < models.MinRating || v > models.MaxRating {
		return nil, fmt.Sprintf(msgRatingOutOfRange, name, models.MinRating, models.MaxRating)
	}
	return &v, ""
}

// splitThemes splits a comma-separated list, trimming entries and dropping
// blanks.
func splitThemes(raw string) []string {
	if raw == "" {
		return nil
	}
	parts := strings.Split(raw, ",")
	out := make([]string, 0, len(parts))
	for _, p := range parts {
		if p = strings.TrimSpace(p); p != "" {
			out = append(out, p)
		}
	}
	return out
}

// filterFor converts a validated request into a store filter.
func filterFor(req *models.RandomPuzzleRequest) models.PuzzleFilter {
	return models.PuzzleFilter{
		RatingMin:  req.RatingMin,
		RatingMax:  req.RatingMax,
		ThemeSlugs: req.Themes,
	}
}
