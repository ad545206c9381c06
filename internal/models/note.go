// Package models defines the domain types for folio.
package models

import (
	"fmt"
	"time"
)

// DateLayout is the DD/MM/YY layout used by notes and events.
const DateLayout = "02/01/06"

// Kind identifies which simulated app a content item belongs to.
type Kind string

// Content kinds.
const (
	KindNote  Kind = "notes"
	KindEvent Kind = "events"
)

// ParseKind accepts the plural form used in URLs and storage keys.
func ParseKind(s string) (Kind, error) {
	switch Kind(s) {
	case KindNote, KindEvent:
		return Kind(s), nil
	}
	return "", fmt.Errorf("unknown kind %q", s)
}

// Timeframe partitions events.
type Timeframe string

// Event timeframes.
const (
	Upcoming Timeframe = "upcoming"
	Past     Timeframe = "past"
)

// Note is a statically defined entry of the notes app.
type Note struct {
	ID      int    `json:"id" yaml:"id"`
	Title   string `json:"title" yaml:"title"`
	Content string `json:"content" yaml:"content"`
	Date    string `json:"date" yaml:"date"`
	Pinned  bool   `json:"pinned" yaml:"pinned"`
	Locked  bool   `json:"locked" yaml:"locked"`
}

// Event is a statically defined entry of the events app.
type Event struct {
	ID        int       `json:"id" yaml:"id"`
	Title     string    `json:"title" yaml:"title"`
	Date      string    `json:"date" yaml:"date"`
	Attendees int       `json:"attendees" yaml:"attendees"`
	Clickable bool      `json:"clickable" yaml:"clickable"`
	Timeframe Timeframe `json:"timeframe" yaml:"timeframe"`
}

// When parses the event date. The zero time is returned for malformed dates.
func (e Event) When() time.Time {
	t, err := time.Parse(DateLayout, e.Date)
	if err != nil {
		return time.Time{}
	}
	return t
}

// Social is a tile of the socials grid.
type Social struct {
	ID     int    `json:"id" yaml:"id"`
	Name   string `json:"name" yaml:"name"`
	Handle string `json:"handle" yaml:"handle"`
	URL    string `json:"url" yaml:"url"`
}

// WidgetCard is one rotating card of the home-screen widget. It deep-links
// into the detail view of the referenced item.
type WidgetCard struct {
	Kind     Kind   `json:"kind"`
	ID       int    `json:"id"`
	Title    string `json:"title"`
	Subtitle string `json:"subtitle"`
}
