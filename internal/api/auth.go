package api

import (
	"errors"
	"log/slog"
	"net/http"
	"time"

	"github.com/starford/folio/internal/apperr"
)

// SignIn handles GET /api/auth/signin/spotify.
//
//	@Summary		Redirect to the provider sign-in page
//	@Tags			auth
//	@Success		302
//	@Failure		404	{object}	errResponse
//	@Router			/auth/signin/spotify [get]
func (h *Handler) SignIn(w http.ResponseWriter, r *http.Request) {
	target, err := h.sessions.BeginSignIn(w, r)
	if err != nil {
		writeError(w, "sign in", err)
		return
	}
	http.Redirect(w, r, target, http.StatusFound)
}

// Callback handles GET /api/auth/callback/spotify.
//
//	@Summary		Complete the provider sign-in
//	@Tags			auth
//	@Produce		json
//	@Param			state	query	string	true	"State issued at sign-in"
//	@Param			code	query	string	false	"Authorization code"
//	@Param			error	query	string	false	"Provider error"
//	@Success		302
//	@Failure		400	{object}	errResponse
//	@Failure		401	{object}	errResponse
//	@Failure		404	{object}	errResponse
//	@Router			/auth/callback/spotify [get]
func (h *Handler) Callback(w http.ResponseWriter, r *http.Request) {
	q := r.URL.Query()
	if reason := q.Get("error"); reason != "" {
		slog.Info("sign in declined", slog.String("reason", reason))
		writeJSON(w, http.StatusUnauthorized, errorBody("sign in declined"))
		return
	}
	err := h.sessions.CompleteSignIn(r.Context(), w, r, q.Get("state"), q.Get("code"))
	switch {
	case err == nil:
		http.Redirect(w, r, "/", http.StatusFound)
	case errors.Is(err, apperr.ErrUnauthorized), errors.Is(err, apperr.ErrInvalidArgument), errors.Is(err, apperr.ErrNotFound):
		writeError(w, "callback", err)
	default:
		slog.Error("token exchange failed", slog.String("error", err.Error()))
		writeJSON(w, http.StatusUnauthorized, errorBody("token exchange failed"))
	}
}

// SignOut handles POST /api/auth/signout.
//
//	@Summary		Drop the sign-in session
//	@Tags			auth
//	@Success		204
//	@Router			/auth/signout [post]
func (h *Handler) SignOut(w http.ResponseWriter, r *http.Request) {
	if err := h.sessions.SignOut(w, r); err != nil {
		writeError(w, "sign out", err)
		return
	}
	w.WriteHeader(http.StatusNoContent)
}

// Session handles GET /api/auth/session.
//
//	@Summary		Whether the visitor is signed in
//	@Tags			auth
//	@Produce		json
//	@Success		200	{object}	SessionResponse
//	@Router			/auth/session [get]
func (h *Handler) Session(w http.ResponseWriter, r *http.Request) {
	tok, err := h.sessions.Token(r)
	if err != nil {
		writeJSON(w, http.StatusOK, SessionResponse{})
		return
	}
	resp := SessionResponse{Authenticated: true}
	if !tok.Expiry.IsZero() {
		exp := tok.Expiry.UTC().Format(time.RFC3339)
		resp.ExpiresAt = &exp
	}
	writeJSON(w, http.StatusOK, resp)
}
