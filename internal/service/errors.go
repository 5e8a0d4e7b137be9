package service

import "errors"

// Error kinds reported to the presentation layer. All failures are
// recoverable at the call site; none are fatal to the process.
var (
	// ErrUnauthenticated is returned by any data operation attempted with
	// no user logged in.
	ErrUnauthenticated = errors.New("not logged in")
	// ErrNotFound is returned when operating on an ID that doesn't exist
	// for the current user.
	ErrNotFound = errors.New("not found")
	// ErrConflict is returned when starting a session for an entity that
	// already has one running.
	ErrConflict = errors.New("a session is already running for this entity")
	// ErrValidation is returned for rejected input: empty required fields,
	// non-positive target hours, end before start. Wrapped with detail at
	// the call site.
	ErrValidation = errors.New("invalid input")
)
