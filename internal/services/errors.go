// Package services holds the application logic the HTTP layer and the CLI
// share: document reads through bindings, document writes, and idempotency
// records. This file centralizes the service-level error values so callers
// can map them to transport results with errors.Is.
package services

import "errors"

var (
	// ErrInvalidPath indicates a path with an empty segment, or a path whose
	// parity does not fit the operation (a collection where a document is
	// required and vice versa).
	ErrInvalidPath = errors.New("invalid document path")

	// ErrNotFound indicates that the document is absent. Reads cannot tell a
	// missing document from a failed read; both surface as ErrNotFound.
	ErrNotFound = errors.New("document not found")

	// ErrBadConstraint is returned for malformed where/order-by/limit input.
	ErrBadConstraint = errors.New("invalid query constraint")

	// ErrEmptyBody is returned when a write carries no fields.
	ErrEmptyBody = errors.New("document body is empty")

	// ErrReadOnly is returned by write operations when no writer is wired.
	ErrReadOnly = errors.New("document store is read-only")
)
