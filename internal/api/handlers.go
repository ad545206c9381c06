package api

import (
	"fmt"
	"net/http"
	"strconv"

	"github.com/go-chi/chi/v5"

	"github.com/starford/folio/internal/apperr"
	"github.com/starford/folio/internal/auth"
	"github.com/starford/folio/internal/models"
	"github.com/starford/folio/internal/portfolio"
	"github.com/starford/folio/internal/spotify"
	"github.com/starford/folio/internal/sse"
)

// Handler holds API route handlers.
type Handler struct {
	svc      *portfolio.Service
	sessions *auth.Sessions
	music    *spotify.Client
	broker   *sse.Broker
}

// NewHandler creates a new Handler.
func NewHandler(svc *portfolio.Service, sessions *auth.Sessions, music *spotify.Client, broker *sse.Broker) *Handler {
	return &Handler{svc: svc, sessions: sessions, music: music, broker: broker}
}

// positiveInt parses a positive integer; empty yields 0 when optional.
func positiveInt(raw, name string, optional bool) (int, error) {
	if raw == "" && optional {
		return 0, nil
	}
	n, err := strconv.Atoi(raw)
	if err != nil || n <= 0 {
		return 0, fmt.Errorf("%s must be a positive integer: %w", name, apperr.ErrInvalidArgument)
	}
	return n, nil
}

func idParam(r *http.Request) (int, error) {
	return positiveInt(chi.URLParam(r, "id"), "id", false)
}

// ListNotes handles GET /api/notes.
//
//	@Summary		List notes, pinned first
//	@Tags			content
//	@Produce		json
//	@Success		200	{object}	NoteListResponse
//	@Router			/notes [get]
func (h *Handler) ListNotes(w http.ResponseWriter, r *http.Request) {
	writeCachedJSON(w, r, NoteListResponse{Notes: h.svc.ListNotes()})
}

// GetNote handles GET /api/notes/{id}.
//
//	@Summary		Get a single note with its rendered body
//	@Tags			content
//	@Produce		json
//	@Param			id	path		int	true	"Note id"
//	@Success		200	{object}	NoteDetail
//	@Failure		404	{object}	errResponse
//	@Router			/notes/{id} [get]
func (h *Handler) GetNote(w http.ResponseWriter, r *http.Request) {
	id, err := idParam(r)
	if err != nil {
		writeError(w, "get note", err)
		return
	}
	note, err := h.svc.GetNote(id)
	if err != nil {
		writeError(w, "get note", err)
		return
	}
	writeCachedJSON(w, r, note)
}

// ListEvents handles GET /api/events?timeframe=upcoming|past.
//
//	@Summary		List events, upcoming soonest first and past most recent first
//	@Tags			content
//	@Produce		json
//	@Param			timeframe	query		string	false	"upcoming or past"
//	@Success		200			{object}	EventListResponse
//	@Failure		400			{object}	errResponse
//	@Router			/events [get]
func (h *Handler) ListEvents(w http.ResponseWriter, r *http.Request) {
	events, err := h.svc.ListEvents(models.Timeframe(r.URL.Query().Get("timeframe")))
	if err != nil {
		writeError(w, "list events", err)
		return
	}
	writeCachedJSON(w, r, EventListResponse{Events: events})
}

// GetEvent handles GET /api/events/{id}.
//
//	@Summary		Get a single event
//	@Tags			content
//	@Produce		json
//	@Param			id	path		int	true	"Event id"
//	@Success		200	{object}	models.Event
//	@Failure		404	{object}	errResponse
//	@Router			/events/{id} [get]
func (h *Handler) GetEvent(w http.ResponseWriter, r *http.Request) {
	id, err := idParam(r)
	if err != nil {
		writeError(w, "get event", err)
		return
	}
	ev, err := h.svc.GetEvent(id)
	if err != nil {
		writeError(w, "get event", err)
		return
	}
	writeCachedJSON(w, r, ev)
}

// ListSocials handles GET /api/socials.
//
//	@Summary		List social profiles
//	@Tags			content
//	@Produce		json
//	@Success		200	{object}	SocialListResponse
//	@Router			/socials [get]
func (h *Handler) ListSocials(w http.ResponseWriter, r *http.Request) {
	writeCachedJSON(w, r, SocialListResponse{Socials: h.svc.Socials()})
}

// Widget handles GET /api/widget.
//
//	@Summary		Home-screen widget cards
//	@Tags			content
//	@Produce		json
//	@Success		200	{object}	WidgetResponse
//	@Router			/widget [get]
func (h *Handler) Widget(w http.ResponseWriter, r *http.Request) {
	writeCachedJSON(w, r, WidgetResponse{Cards: h.svc.Widget()})
}
