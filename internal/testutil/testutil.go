// Package testutil provides shared test helpers for setting up content
// catalogs and ledger stores.
package testutil

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/starford/folio/internal/content"
	"github.com/starford/folio/internal/ledger"
)

// TestStore creates a temporary SQLite ledger store that is automatically
// closed.
func TestStore(t *testing.T) ledger.Store {
	t.Helper()
	store, err := ledger.OpenSQLite(filepath.Join(t.TempDir(), "ledger.db"))
	if err != nil {
		t.Fatal(err)
	}
	t.Cleanup(func() { store.Close() })
	return store
}

// TestRegistry writes src to a temporary content file and loads it. An empty
// src selects the embedded default catalog.
func TestRegistry(t *testing.T, src string) (*content.Registry, string) {
	t.Helper()
	if src == "" {
		reg, err := content.NewRegistry("")
		if err != nil {
			t.Fatal(err)
		}
		return reg, ""
	}
	path := filepath.Join(t.TempDir(), "content.yaml")
	if err := os.WriteFile(path, []byte(src), 0o644); err != nil {
		t.Fatal(err)
	}
	reg, err := content.NewRegistry(path)
	if err != nil {
		t.Fatal(err)
	}
	return reg, path
}
