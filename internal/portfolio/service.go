// Package portfolio coordinates the content catalog, the viewed ledger and
// change notifications for the HTTP, MCP and terminal front ends.
package portfolio

import (
	"context"
	"errors"
	"fmt"

	"github.com/starford/folio/internal/apperr"
	"github.com/starford/folio/internal/content"
	"github.com/starford/folio/internal/ledger"
	"github.com/starford/folio/internal/models"
	"github.com/starford/folio/internal/sse"
)

// Publisher receives change events. *sse.Broker implements it.
type Publisher interface {
	Publish(event sse.Event)
}

// NoteListItem is a note without its body.
type NoteListItem struct {
	ID     int    `json:"id"`
	Title  string `json:"title"`
	Date   string `json:"date"`
	Pinned bool   `json:"pinned"`
	Locked bool   `json:"locked"`
}

// NoteDetail is the full representation of a note. Body is nil for locked
// notes.
type NoteDetail struct {
	NoteListItem
	Body *content.Rendered `json:"body"`
}

// Highlight is a highlight decision for one item.
type Highlight struct {
	Kind      models.Kind   `json:"kind"`
	ID        int           `json:"id"`
	Highlight bool          `json:"highlight"`
	Reason    ledger.Reason `json:"reason"`
}

// Service coordinates content and ledger operations.
type Service struct {
	content *content.Registry
	store   ledger.Store
	events  Publisher
}

// NewService creates a service. events may be nil.
func NewService(reg *content.Registry, store ledger.Store, events Publisher) *Service {
	return &Service{content: reg, store: store, events: events}
}

// Catalog returns the current content snapshot.
func (s *Service) Catalog() *content.Catalog {
	return s.content.Catalog()
}

// ListNotes returns notes in display order, pinned first.
func (s *Service) ListNotes() []NoteListItem {
	notes := s.Catalog().OrderedNotes()
	items := make([]NoteListItem, len(notes))
	for i, n := range notes {
		items[i] = listItem(n)
	}
	return items
}

// GetNote returns one note with its rendered body.
func (s *Service) GetNote(id int) (*NoteDetail, error) {
	c := s.Catalog()
	n, err := c.Note(id)
	if err != nil {
		return nil, err
	}
	d := &NoteDetail{NoteListItem: listItem(n)}
	body, err := c.Body(id)
	switch {
	case errors.Is(err, content.ErrLocked):
	case err != nil:
		return nil, err
	default:
		d.Body = &body
	}
	return d, nil
}

// ListEvents returns the events of a timeframe; "" returns all.
func (s *Service) ListEvents(tf models.Timeframe) ([]models.Event, error) {
	switch tf {
	case "", models.Upcoming, models.Past:
	default:
		return nil, fmt.Errorf("timeframe %q: %w", tf, apperr.ErrInvalidArgument)
	}
	return s.Catalog().EventsIn(tf), nil
}

// GetEvent returns one event.
func (s *Service) GetEvent(id int) (models.Event, error) {
	return s.Catalog().Event(id)
}

// Socials returns the socials grid.
func (s *Service) Socials() []models.Social {
	if out := s.Catalog().Socials; out != nil {
		return out
	}
	return []models.Social{}
}

// Widget returns the rotating home-screen cards.
func (s *Service) Widget() []models.WidgetCard {
	return s.Catalog().WidgetCards()
}

// Ledger returns the ledger of profile.
func (s *Service) Ledger(profile string) *ledger.Ledger {
	return ledger.New(s.store, profile)
}

// MarkViewed records that profile opened an item. Unknown items are
// rejected so the ledger only holds real ids.
func (s *Service) MarkViewed(ctx context.Context, profile string, kind models.Kind, id int) (bool, error) {
	if !s.Catalog().Exists(kind, id) {
		return false, fmt.Errorf("%s %d: %w", kind, id, apperr.ErrNotFound)
	}
	added, err := s.Ledger(profile).MarkViewed(ctx, kind, id)
	if err != nil {
		return false, err
	}
	if added {
		s.publish(sse.Event{
			Type:  sse.TypeLedgerViewed,
			Topic: profile,
			Data:  map[string]any{"kind": kind, "id": id},
		})
	}
	return added, nil
}

// Policy builds the highlight policy of kind for the given entry and open
// ids, filling in the catalog's priority item.
func (s *Service) Policy(kind models.Kind, entryID, openID int) ledger.Policy {
	priority, _ := s.Catalog().Priority(kind)
	return ledger.Policy{EntryID: entryID, OpenID: openID, PriorityID: priority}
}

// Highlight decides whether one item carries the unseen marker.
func (s *Service) Highlight(ctx context.Context, profile string, kind models.Kind, id, entryID, openID int) (Highlight, error) {
	if !s.Catalog().Exists(kind, id) {
		return Highlight{}, fmt.Errorf("%s %d: %w", kind, id, apperr.ErrNotFound)
	}
	r, err := s.Ledger(profile).Explain(ctx, kind, id, s.Policy(kind, entryID, openID))
	if err != nil {
		return Highlight{}, err
	}
	return Highlight{Kind: kind, ID: id, Highlight: r.Highlight(), Reason: r}, nil
}

// Highlights decides for every item of kind in display order.
func (s *Service) Highlights(ctx context.Context, profile string, kind models.Kind, entryID, openID int) ([]Highlight, error) {
	viewed, err := s.Ledger(profile).Viewed(ctx, kind)
	if err != nil {
		return nil, err
	}
	p := s.Policy(kind, entryID, openID)
	ids := s.Catalog().IDs(kind)
	out := make([]Highlight, len(ids))
	for i, id := range ids {
		r := ledger.Decide(id, viewed, p)
		out[i] = Highlight{Kind: kind, ID: id, Highlight: r.Highlight(), Reason: r}
	}
	return out, nil
}

// SetFlag writes a flag of profile.
func (s *Service) SetFlag(ctx context.Context, profile string, f ledger.Flag, v bool) error {
	if err := s.Ledger(profile).SetFlag(ctx, f, v); err != nil {
		return err
	}
	s.publish(sse.Event{
		Type:  sse.TypeLedgerFlag,
		Topic: profile,
		Data:  map[string]any{"flag": f, "value": v},
	})
	return nil
}

// State returns every ledger key of profile.
func (s *Service) State(ctx context.Context, profile string) (ledger.State, error) {
	return s.Ledger(profile).State(ctx)
}

// Reset forgets profile.
func (s *Service) Reset(ctx context.Context, profile string) error {
	if err := s.Ledger(profile).Reset(ctx); err != nil {
		return err
	}
	s.publish(sse.Event{Type: sse.TypeLedgerReset, Topic: profile, Data: map[string]any{}})
	return nil
}

func (s *Service) publish(e sse.Event) {
	if s.events != nil {
		s.events.Publish(e)
	}
}

func listItem(n models.Note) NoteListItem {
	return NoteListItem{ID: n.ID, Title: n.Title, Date: n.Date, Pinned: n.Pinned, Locked: n.Locked}
}
