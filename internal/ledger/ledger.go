package ledger

import (
	"context"
	"slices"

	"github.com/starford/folio/internal/models"
)

// Policy carries the context a highlight decision depends on. Zero ids mean
// "none".
type Policy struct {
	// EntryID is the item a visitor arrived at from an external referrer or
	// a widget deep link.
	EntryID int
	// OpenID is the item whose detail view is currently open.
	OpenID int
	// PriorityID is the item highlighted on a first visit.
	PriorityID int
}

// Reason explains a highlight decision.
type Reason string

// Decision reasons, in precedence order.
const (
	ReasonViewed     Reason = "viewed"
	ReasonEntry      Reason = "entry"
	ReasonFirstVisit Reason = "first_visit"
	ReasonNone       Reason = "none"
)

// Highlight reports whether the reason marks the item as new.
func (r Reason) Highlight() bool {
	return r == ReasonEntry || r == ReasonFirstVisit
}

// Decide applies the highlight rules in a fixed order:
//  1. an item already viewed is never highlighted;
//  2. the entry item is highlighted while it is not open;
//  3. with nothing viewed yet, the priority item is highlighted;
//  4. nothing else is.
func Decide(id int, viewed []int, p Policy) Reason {
	switch {
	case slices.Contains(viewed, id):
		return ReasonViewed
	case p.EntryID != 0 && id == p.EntryID && id != p.OpenID:
		return ReasonEntry
	case len(viewed) == 0 && p.PriorityID != 0 && id == p.PriorityID:
		return ReasonFirstVisit
	}
	return ReasonNone
}

// State is a full view of one profile, as exposed to clients.
type State struct {
	Visited      bool  `json:"visited"`
	ViewedNotes  []int `json:"viewed_notes"`
	ViewedEvents []int `json:"viewed_events"`
	NotesSwiped  bool  `json:"notes_swipe_used"`
	EventsSwiped bool  `json:"events_swipe_used"`
}

// Ledger binds a Store to one profile.
type Ledger struct {
	store   Store
	profile string
}

// New returns a ledger for profile.
func New(store Store, profile string) *Ledger {
	return &Ledger{store: store, profile: profile}
}

// Profile returns the profile this ledger writes to.
func (l *Ledger) Profile() string { return l.profile }

// MarkViewed records id as opened. Repeated calls are no-ops.
func (l *Ledger) MarkViewed(ctx context.Context, kind models.Kind, id int) (bool, error) {
	return l.store.AddViewed(ctx, l.profile, kind, id)
}

// Viewed returns the viewed ids of kind.
func (l *Ledger) Viewed(ctx context.Context, kind models.Kind) ([]int, error) {
	return l.store.Viewed(ctx, l.profile, kind)
}

// Explain returns the highlight decision for id together with its reason.
func (l *Ledger) Explain(ctx context.Context, kind models.Kind, id int, p Policy) (Reason, error) {
	viewed, err := l.store.Viewed(ctx, l.profile, kind)
	if err != nil {
		return "", err
	}
	return Decide(id, viewed, p), nil
}

// ShouldHighlight reports whether id should carry the unseen marker.
func (l *Ledger) ShouldHighlight(ctx context.Context, kind models.Kind, id int, p Policy) (bool, error) {
	r, err := l.Explain(ctx, kind, id, p)
	if err != nil {
		return false, err
	}
	return r.Highlight(), nil
}

// Flag reads a boolean flag.
func (l *Ledger) Flag(ctx context.Context, f Flag) (bool, error) {
	return l.store.Flag(ctx, l.profile, f)
}

// SetFlag writes a boolean flag.
func (l *Ledger) SetFlag(ctx context.Context, f Flag, v bool) error {
	return l.store.SetFlag(ctx, l.profile, f, v)
}

// Reset clears the profile.
func (l *Ledger) Reset(ctx context.Context) error {
	return l.store.Reset(ctx, l.profile)
}

// State collects every key of the profile.
func (l *Ledger) State(ctx context.Context) (State, error) {
	var s State
	var err error
	if s.ViewedNotes, err = l.Viewed(ctx, models.KindNote); err != nil {
		return State{}, err
	}
	if s.ViewedEvents, err = l.Viewed(ctx, models.KindEvent); err != nil {
		return State{}, err
	}
	for f, dst := range map[Flag]*bool{
		FlagVisited:         &s.Visited,
		FlagNotesSwipeUsed:  &s.NotesSwiped,
		FlagEventsSwipeUsed: &s.EventsSwiped,
	} {
		if *dst, err = l.Flag(ctx, f); err != nil {
			return State{}, err
		}
	}
	s.ViewedNotes = nonNil(s.ViewedNotes)
	s.ViewedEvents = nonNil(s.ViewedEvents)
	return s, nil
}

func nonNil(s []int) []int {
	if s == nil {
		return []int{}
	}
	return s
}
