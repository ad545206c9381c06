package api

import (
	"github.com/starford/folio/internal/ledger"
	"github.com/starford/folio/internal/models"
	"github.com/starford/folio/internal/portfolio"
)

// NoteListItem is a note without its body (aliased from the domain layer).
type NoteListItem = portfolio.NoteListItem

// NoteDetail is the full note response type (aliased from the domain layer).
type NoteDetail = portfolio.NoteDetail

// NoteListResponse wraps note listings.
type NoteListResponse struct {
	Notes []NoteListItem `json:"notes" validate:"required"`
}

// EventListResponse wraps event listings.
type EventListResponse struct {
	Events []models.Event `json:"events" validate:"required"`
}

// SocialListResponse wraps the socials grid.
type SocialListResponse struct {
	Socials []models.Social `json:"socials" validate:"required"`
}

// WidgetResponse wraps the rotating widget cards.
type WidgetResponse struct {
	Cards []models.WidgetCard `json:"cards" validate:"required"`
}

// MarkViewedResponse is returned after recording a view.
type MarkViewedResponse struct {
	Kind  models.Kind `json:"kind" example:"notes" validate:"required"`
	ID    int         `json:"id" example:"3" validate:"required"`
	Added bool        `json:"added" example:"true"`
}

// SetFlagRequest is the request body for writing a flag.
type SetFlagRequest struct {
	Value *bool `json:"value" example:"true" validate:"required"`
}

// FlagResponse echoes a written flag.
type FlagResponse struct {
	Flag  ledger.Flag `json:"flag" example:"notes_swipe_used" validate:"required"`
	Value bool        `json:"value" example:"true"`
}

// SessionResponse describes the sign-in state.
type SessionResponse struct {
	Authenticated bool    `json:"authenticated"`
	ExpiresAt     *string `json:"expires_at,omitempty" example:"2026-10-15T12:00:00Z"`
}
