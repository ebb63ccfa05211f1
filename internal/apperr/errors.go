// Package apperr defines the error kinds shared by the store and its callers.
package apperr

import "errors"

var (
	// ErrNotFound is returned when an operation targets an absent note.
	ErrNotFound = errors.New("not found")
	// ErrAlreadyExists is returned when create targets a present note.
	ErrAlreadyExists = errors.New("already exists")
	// ErrInvalidName is returned for names that are unsafe as storage keys.
	ErrInvalidName = errors.New("invalid name")
	// ErrValidation is returned when a required payload field is missing.
	ErrValidation = errors.New("validation failed")
)
