// Package api implements the folio REST API using chi.
package api

import (
	"context"
	"net/http"

	"golang.org/x/oauth2"

	"github.com/starford/folio/internal/auth"
)

type ctxKey int

const (
	visitorKey ctxKey = iota
	tokenKey
)

// VisitorMiddleware resolves the anonymous visitor id, issuing a cookie on
// first contact. Ledger routes are scoped by it.
func VisitorMiddleware(sessions *auth.Sessions) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			id, err := sessions.Visitor(w, r)
			if err != nil {
				writeError(w, "visitor", err)
				return
			}
			next.ServeHTTP(w, r.WithContext(context.WithValue(r.Context(), visitorKey, id)))
		})
	}
}

// SessionMiddleware requires a signed-in session with a usable access token.
// Expired tokens are refreshed once; otherwise the request is answered 401.
func SessionMiddleware(sessions *auth.Sessions) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			tok, err := sessions.ValidToken(r.Context(), w, r)
			if err != nil {
				writeError(w, "session", err)
				return
			}
			next.ServeHTTP(w, r.WithContext(context.WithValue(r.Context(), tokenKey, tok)))
		})
	}
}

func visitorFrom(r *http.Request) string {
	id, _ := r.Context().Value(visitorKey).(string)
	return id
}

func tokenFrom(r *http.Request) *oauth2.Token {
	tok, _ := r.Context().Value(tokenKey).(*oauth2.Token)
	return tok
}
