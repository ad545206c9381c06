// Package ledger records which notes and events a visitor has opened and
// decides which items still deserve a "new" marker.
package ledger

import (
	"context"
	"fmt"

	"github.com/starford/folio/internal/models"
)

// Flag names a persisted boolean.
type Flag string

// Known flags.
const (
	FlagVisited         Flag = "visited"
	FlagNotesSwipeUsed  Flag = "notes_swipe_used"
	FlagEventsSwipeUsed Flag = "events_swipe_used"
)

// ParseFlag validates a flag name.
func ParseFlag(s string) (Flag, error) {
	switch f := Flag(s); f {
	case FlagVisited, FlagNotesSwipeUsed, FlagEventsSwipeUsed:
		return f, nil
	}
	return "", fmt.Errorf("unknown flag %q", s)
}

// SwipeFlag returns the swipe-used flag of an app.
func SwipeFlag(kind models.Kind) Flag {
	if kind == models.KindEvent {
		return FlagEventsSwipeUsed
	}
	return FlagNotesSwipeUsed
}

// Store persists ledger state per profile. A profile is one visitor (a
// browser cookie) or one local terminal user.
type Store interface {
	// Viewed returns the viewed ids of kind in insertion order.
	Viewed(ctx context.Context, profile string, kind models.Kind) ([]int, error)
	// AddViewed inserts id and reports whether it was new.
	AddViewed(ctx context.Context, profile string, kind models.Kind, id int) (bool, error)
	Flag(ctx context.Context, profile string, f Flag) (bool, error)
	SetFlag(ctx context.Context, profile string, f Flag, v bool) error
	// Reset forgets everything stored for profile.
	Reset(ctx context.Context, profile string) error
	Close() error
}

// Store drivers.
const (
	DriverSQLite = "sqlite"
	DriverFile   = "file"
)

// Open opens a Store by driver name. For DriverSQLite dsn is a database path,
// for DriverFile a directory.
func Open(driver, dsn string) (Store, error) {
	switch driver {
	case DriverSQLite:
		return OpenSQLite(dsn)
	case DriverFile:
		return OpenFile(dsn)
	}
	return nil, fmt.Errorf("ledger: unknown driver %q", driver)
}
