// Package storage implements the note store: one plain-text file per note
// under a single root directory.
package storage

import "github.com/starford/notesd/internal/models"

// Store is the durable mapping from note name to text.
//
// Every operation validates the name before touching the backing storage and
// reports failures as errors wrapping the apperr sentinels.
type Store interface {
	// Init ensures the storage root exists.
	Init() error
	// Exists reports whether a note with the given name is stored.
	Exists(name string) (bool, error)
	// Read returns the full text of a note, or apperr.ErrNotFound.
	Read(name string) (string, error)
	// Create persists a new note, or returns apperr.ErrAlreadyExists.
	Create(name, text string) error
	// Update replaces the text of an existing note, or returns apperr.ErrNotFound.
	Update(name, text string) error
	// Delete removes a note permanently, or returns apperr.ErrNotFound.
	Delete(name string) error
	// List returns every stored note in unspecified order.
	List() ([]models.Note, error)
}
