// Package content loads the static notes, events and socials shown by the
// simulated apps and answers ordering questions about them.
package content

import (
	_ "embed"
	"errors"
	"fmt"
	"os"
	"sort"

	validation "github.com/go-ozzo/ozzo-validation/v4"
	"gopkg.in/yaml.v3"

	"github.com/starford/folio/internal/apperr"
	"github.com/starford/folio/internal/checksum"
	"github.com/starford/folio/internal/models"
)

//go:embed default.yaml
var defaultContent []byte

// Catalog is an immutable snapshot of the content file.
type Catalog struct {
	Notes   []models.Note   `yaml:"notes"`
	Events  []models.Event  `yaml:"events"`
	Socials []models.Social `yaml:"socials"`

	// Version is the checksum of the source bytes.
	Version string `yaml:"-"`
}

// Load reads the catalog at path. An empty path selects the embedded default.
func Load(path string) (*Catalog, error) {
	if path == "" {
		return Parse(defaultContent)
	}
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("content: read %s: %w", path, err)
	}
	return Parse(data)
}

// Parse decodes and validates a YAML catalog.
func Parse(data []byte) (*Catalog, error) {
	var c Catalog
	if err := yaml.Unmarshal(data, &c); err != nil {
		return nil, fmt.Errorf("content: decode: %w", err)
	}
	if err := c.Validate(); err != nil {
		return nil, fmt.Errorf("content: %w", err)
	}
	c.Version = checksum.Sum(data)
	return &c, nil
}

// Validate checks field formats and id uniqueness per kind.
func (c *Catalog) Validate() error {
	noteIDs := make(map[int]struct{}, len(c.Notes))
	for i := range c.Notes {
		n := &c.Notes[i]
		if err := validation.ValidateStruct(n,
			validation.Field(&n.ID, validation.Required, validation.Min(1)),
			validation.Field(&n.Title, validation.Required),
			validation.Field(&n.Date, validation.Date(models.DateLayout)),
		); err != nil {
			return fmt.Errorf("note #%d: %w", i, err)
		}
		if _, dup := noteIDs[n.ID]; dup {
			return fmt.Errorf("note #%d: duplicate id %d", i, n.ID)
		}
		noteIDs[n.ID] = struct{}{}
	}
	eventIDs := make(map[int]struct{}, len(c.Events))
	for i := range c.Events {
		e := &c.Events[i]
		if err := validation.ValidateStruct(e,
			validation.Field(&e.ID, validation.Required, validation.Min(1)),
			validation.Field(&e.Title, validation.Required),
			validation.Field(&e.Date, validation.Required, validation.Date(models.DateLayout)),
			validation.Field(&e.Attendees, validation.Min(0)),
			validation.Field(&e.Timeframe, validation.Required, validation.In(models.Upcoming, models.Past)),
		); err != nil {
			return fmt.Errorf("event #%d: %w", i, err)
		}
		if _, dup := eventIDs[e.ID]; dup {
			return fmt.Errorf("event #%d: duplicate id %d", i, e.ID)
		}
		eventIDs[e.ID] = struct{}{}
	}
	return nil
}

// Note returns the note with the given id.
func (c *Catalog) Note(id int) (models.Note, error) {
	for _, n := range c.Notes {
		if n.ID == id {
			return n, nil
		}
	}
	return models.Note{}, fmt.Errorf("note %d: %w", id, apperr.ErrNotFound)
}

// Event returns the event with the given id.
func (c *Catalog) Event(id int) (models.Event, error) {
	for _, e := range c.Events {
		if e.ID == id {
			return e, nil
		}
	}
	return models.Event{}, fmt.Errorf("event %d: %w", id, apperr.ErrNotFound)
}

// Exists reports whether an item of kind with id is defined.
func (c *Catalog) Exists(kind models.Kind, id int) bool {
	var err error
	switch kind {
	case models.KindNote:
		_, err = c.Note(id)
	case models.KindEvent:
		_, err = c.Event(id)
	default:
		return false
	}
	return err == nil
}

// OrderedNotes returns pinned notes first, each group in definition order.
func (c *Catalog) OrderedNotes() []models.Note {
	out := make([]models.Note, 0, len(c.Notes))
	for _, n := range c.Notes {
		if n.Pinned {
			out = append(out, n)
		}
	}
	for _, n := range c.Notes {
		if !n.Pinned {
			out = append(out, n)
		}
	}
	return out
}

// EventsIn returns the events of a timeframe. Upcoming events are sorted
// soonest first, past events most recent first. An empty timeframe returns
// upcoming followed by past.
func (c *Catalog) EventsIn(tf models.Timeframe) []models.Event {
	if tf == "" {
		return append(c.EventsIn(models.Upcoming), c.EventsIn(models.Past)...)
	}
	out := []models.Event{}
	for _, e := range c.Events {
		if e.Timeframe == tf {
			out = append(out, e)
		}
	}
	sort.SliceStable(out, func(i, j int) bool {
		if tf == models.Past {
			return out[i].When().After(out[j].When())
		}
		return out[i].When().Before(out[j].When())
	})
	return out
}

// IDs returns the display order of a kind, as paged by the apps.
func (c *Catalog) IDs(kind models.Kind) []int {
	var ids []int
	switch kind {
	case models.KindNote:
		for _, n := range c.OrderedNotes() {
			ids = append(ids, n.ID)
		}
	case models.KindEvent:
		for _, e := range c.EventsIn("") {
			ids = append(ids, e.ID)
		}
	}
	return ids
}

// Priority returns the item highlighted on a first visit: the first pinned
// note (the first note when none is pinned) or the soonest upcoming event.
func (c *Catalog) Priority(kind models.Kind) (int, bool) {
	switch kind {
	case models.KindNote:
		if ordered := c.OrderedNotes(); len(ordered) > 0 {
			return ordered[0].ID, true
		}
	case models.KindEvent:
		if upcoming := c.EventsIn(models.Upcoming); len(upcoming) > 0 {
			return upcoming[0].ID, true
		}
	}
	return 0, false
}

// WidgetCards returns the rotating home-screen cards: the priority event,
// then every pinned note.
func (c *Catalog) WidgetCards() []models.WidgetCard {
	cards := []models.WidgetCard{}
	if id, ok := c.Priority(models.KindEvent); ok {
		e, _ := c.Event(id)
		cards = append(cards, models.WidgetCard{
			Kind:     models.KindEvent,
			ID:       e.ID,
			Title:    e.Title,
			Subtitle: fmt.Sprintf("%s · %d going", e.Date, e.Attendees),
		})
	}
	for _, n := range c.Notes {
		if !n.Pinned {
			continue
		}
		sub := n.Date
		if n.Locked {
			sub = "Locked"
		}
		cards = append(cards, models.WidgetCard{
			Kind:     models.KindNote,
			ID:       n.ID,
			Title:    n.Title,
			Subtitle: sub,
		})
	}
	return cards
}

// ErrLocked is returned when the body of a locked note is requested.
var ErrLocked = errors.New("note is locked")

// Body returns the rendered body of a note, refusing locked ones.
func (c *Catalog) Body(id int) (Rendered, error) {
	n, err := c.Note(id)
	if err != nil {
		return Rendered{}, err
	}
	if n.Locked {
		return Rendered{}, ErrLocked
	}
	return Render(n.Content), nil
}
