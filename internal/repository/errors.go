package repository

import "errors"

var (
	// ErrNotFound is returned when no capture record matches the identifier.
	ErrNotFound = errors.New("repository: capture record not found")
	// ErrInvalidID is returned when an identifier is not in the store's format.
	ErrInvalidID = errors.New("repository: invalid capture record id")
)
