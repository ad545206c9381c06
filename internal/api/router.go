package api

import (
	"github.com/go-chi/chi/v5"

	"github.com/starford/folio/internal/auth"
	"github.com/starford/folio/internal/portfolio"
	"github.com/starford/folio/internal/spotify"
	"github.com/starford/folio/internal/sse"
)

// NewRouter creates a chi router with all API routes mounted. broker may be
// nil, in which case the ledger stream is not served.
func NewRouter(svc *portfolio.Service, sessions *auth.Sessions, music *spotify.Client, broker *sse.Broker) chi.Router {
	h := NewHandler(svc, sessions, music, broker)

	r := chi.NewRouter()

	// Content.
	r.Get("/notes", h.ListNotes)
	r.Get("/notes/{id}", h.GetNote)
	r.Get("/events", h.ListEvents)
	r.Get("/events/{id}", h.GetEvent)
	r.Get("/socials", h.ListSocials)
	r.Get("/widget", h.Widget)

	// Viewed ledger, scoped by visitor cookie.
	r.Route("/ledger", func(r chi.Router) {
		r.Use(VisitorMiddleware(sessions))
		r.Get("/", h.LedgerState)
		r.Delete("/", h.LedgerReset)
		r.Put("/flags/{flag}", h.SetFlag)
		r.Post("/{kind}/{id}", h.MarkViewed)
		r.Get("/{kind}/{id}/highlight", h.Highlight)
		if broker != nil {
			r.Get("/stream", h.Stream)
		}
	})

	// OAuth.
	r.Get("/auth/signin/spotify", h.SignIn)
	r.Get("/auth/callback/spotify", h.Callback)
	r.Post("/auth/signout", h.SignOut)
	r.Get("/auth/session", h.Session)

	// Provider proxy.
	r.With(SessionMiddleware(sessions)).Get("/spotify/recently-played", h.RecentlyPlayed)

	return r
}
