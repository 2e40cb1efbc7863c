// Tactica - Chess Puzzle Content API
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/tactica

package api

import "net/http"

// Themes handles GET /api/v1/themes.
func (h *Handler) Themes(w http.ResponseWriter, r *http.Request) {
	rw := NewResponseWriter(w, r)

	themes, ok := h.themes.Get(themesCacheKey)
	if !ok {
		var err error
		themes, err = h.catalog.ListThemes(r.Context())
		if err != nil {
			rw.DatabaseError(err)
			return
		}
		h.themes.Set(themesCacheKey, themes)
	}
	rw.SuccessList(themes, len(themes))
}
