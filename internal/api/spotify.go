package api

import (
	"net/http"

	"github.com/starford/folio/internal/spotify"
)

// RecentlyPlayed handles GET /api/spotify/recently-played.
//
//	@Summary		Recently played tracks, passed through from the provider
//	@Tags			spotify
//	@Produce		json
//	@Param			limit	query	int	false	"Page size, at most 50"
//	@Success		200
//	@Failure		401	{object}	errResponse
//	@Failure		500	{object}	errResponse
//	@Router			/spotify/recently-played [get]
func (h *Handler) RecentlyPlayed(w http.ResponseWriter, r *http.Request) {
	limit, err := positiveInt(r.URL.Query().Get("limit"), "limit", true)
	if err != nil {
		writeError(w, "recently played", err)
		return
	}
	if limit == 0 {
		limit = spotify.MaxLimit
	}
	body, err := h.music.RecentlyPlayed(r.Context(), tokenFrom(r).AccessToken, limit)
	if err != nil {
		writeError(w, "recently played", err)
		return
	}
	w.Header().Set("Content-Type", "application/json; charset=utf-8")
	w.Header().Set("Cache-Control", "no-store")
	w.WriteHeader(http.StatusOK)
	_, _ = w.Write(body)
}
