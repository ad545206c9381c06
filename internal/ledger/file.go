package ledger

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"regexp"
	"slices"
	"sync"

	"github.com/starford/folio/internal/models"
)

// ProfilePattern matches the profile names a file ledger accepts.
var ProfilePattern = regexp.MustCompile(`^[A-Za-z0-9_-]{1,64}$`)

// document is the on-disk shape of one profile. Keys mirror the browser
// local-storage keys of the web client.
type document struct {
	Visited      bool  `json:"visited"`
	ViewedNotes  []int `json:"viewed_notes"`
	ViewedEvents []int `json:"viewed_events"`
	NotesSwiped  bool  `json:"notes_swipe_used"`
	EventsSwiped bool  `json:"events_swipe_used"`
}

func (d *document) list(kind models.Kind) *[]int {
	if kind == models.KindEvent {
		return &d.ViewedEvents
	}
	return &d.ViewedNotes
}

func (d *document) flag(f Flag) *bool {
	switch f {
	case FlagNotesSwipeUsed:
		return &d.NotesSwiped
	case FlagEventsSwipeUsed:
		return &d.EventsSwiped
	}
	return &d.Visited
}

// File is a Store keeping one JSON document per profile in a directory.
// Writes go through a temp file and a rename.
type File struct {
	root string
	mu   sync.Mutex
}

var _ Store = (*File)(nil)

// OpenFile creates root if needed and returns a File store.
func OpenFile(root string) (*File, error) {
	abs, err := filepath.Abs(root)
	if err != nil {
		return nil, fmt.Errorf("ledger: resolve root: %w", err)
	}
	if err := os.MkdirAll(abs, 0o755); err != nil {
		return nil, fmt.Errorf("ledger: mkdir: %w", err)
	}
	return &File{root: abs}, nil
}

func (f *File) path(profile string) (string, error) {
	if !ProfilePattern.MatchString(profile) {
		return "", fmt.Errorf("ledger: invalid profile %q", profile)
	}
	return filepath.Join(f.root, profile+".json"), nil
}

func (f *File) load(profile string) (*document, string, error) {
	p, err := f.path(profile)
	if err != nil {
		return nil, "", err
	}
	var doc document
	data, err := os.ReadFile(p)
	if errors.Is(err, os.ErrNotExist) {
		return &doc, p, nil
	}
	if err != nil {
		return nil, "", fmt.Errorf("ledger: read %s: %w", profile, err)
	}
	if err := json.Unmarshal(data, &doc); err != nil {
		return nil, "", fmt.Errorf("ledger: decode %s: %w", profile, err)
	}
	return &doc, p, nil
}

func (f *File) save(p string, doc *document) error {
	data, err := json.Marshal(doc)
	if err != nil {
		return fmt.Errorf("ledger: encode: %w", err)
	}
	tmp, err := os.CreateTemp(f.root, ".ledger-tmp-*")
	if err != nil {
		return fmt.Errorf("ledger: create temp: %w", err)
	}
	tmpName := tmp.Name()

	success := false
	defer func() {
		if !success {
			_ = tmp.Close()
			_ = os.Remove(tmpName)
		}
	}()

	if _, err := tmp.Write(data); err != nil {
		return fmt.Errorf("ledger: write temp: %w", err)
	}
	if err := tmp.Sync(); err != nil {
		return fmt.Errorf("ledger: fsync: %w", err)
	}
	if err := tmp.Close(); err != nil {
		return fmt.Errorf("ledger: close temp: %w", err)
	}
	if err := os.Rename(tmpName, p); err != nil {
		return fmt.Errorf("ledger: rename: %w", err)
	}
	success = true
	return nil
}

// Viewed implements Store.
func (f *File) Viewed(_ context.Context, profile string, kind models.Kind) ([]int, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	doc, _, err := f.load(profile)
	if err != nil {
		return nil, err
	}
	return slices.Clone(*doc.list(kind)), nil
}

// AddViewed implements Store.
func (f *File) AddViewed(_ context.Context, profile string, kind models.Kind, id int) (bool, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	doc, p, err := f.load(profile)
	if err != nil {
		return false, err
	}
	ids := doc.list(kind)
	if slices.Contains(*ids, id) {
		return false, nil
	}
	*ids = append(*ids, id)
	return true, f.save(p, doc)
}

// Flag implements Store.
func (f *File) Flag(_ context.Context, profile string, fl Flag) (bool, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	doc, _, err := f.load(profile)
	if err != nil {
		return false, err
	}
	return *doc.flag(fl), nil
}

// SetFlag implements Store.
func (f *File) SetFlag(_ context.Context, profile string, fl Flag, v bool) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	doc, p, err := f.load(profile)
	if err != nil {
		return err
	}
	*doc.flag(fl) = v
	return f.save(p, doc)
}

// Reset implements Store.
func (f *File) Reset(_ context.Context, profile string) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	p, err := f.path(profile)
	if err != nil {
		return err
	}
	if err := os.Remove(p); err != nil && !errors.Is(err, os.ErrNotExist) {
		return fmt.Errorf("ledger: reset %s: %w", profile, err)
	}
	return nil
}

// Close implements Store.
func (f *File) Close() error { return nil }
