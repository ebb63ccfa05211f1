// Package testutil provides shared test helpers for setting up note stores.
package testutil

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/starford/notesd/internal/storage"
)

// TestStore creates an initialized store in a temporary directory and
// returns the notes directory with it.
func TestStore(t *testing.T, opts ...storage.Option) (string, *storage.FS) {
	t.Helper()
	dir := filepath.Join(t.TempDir(), "notes")
	store, err := storage.NewFS(dir, opts...)
	if err != nil {
		t.Fatal(err)
	}
	if err := store.Init(); err != nil {
		t.Fatal(err)
	}
	return dir, store
}

// WriteNote places a note file directly on disk, bypassing the store.
func WriteNote(t *testing.T, dir, name, text string) {
	t.Helper()
	if err := os.WriteFile(filepath.Join(dir, name+storage.DefaultSuffix), []byte(text), 0o644); err != nil {
		t.Fatal(err)
	}
}
