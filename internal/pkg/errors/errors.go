package errors

import "errors"

var (
	// ErrNotFound is a generic sentinel for missing resources.
	ErrNotFound = errors.New("not found")
	// ErrUnauthorized marks an action that needs a session when none is present.
	ErrUnauthorized = errors.New("unauthorized")
	// ErrValidation marks rejected caller input (e.g. an empty medication name).
	ErrValidation = errors.New("validation failed")
	// ErrExtraction marks a failed or malformed ingredient-extraction call.
	ErrExtraction = errors.New("extraction failed")
	// ErrPersistence marks a failed read or write against the record store.
	ErrPersistence = errors.New("persistence failed")
)
