package schema

import "errors"

var (
	// ErrNotFound is returned when no schema document exists for a resource
	// type.
	ErrNotFound = errors.New("could not find schema document")

	// ErrInvalid is returned when a schema document cannot be parsed.
	ErrInvalid = errors.New("invalid schema document")
)
