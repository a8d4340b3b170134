// Package apperr defines the sentinel errors shared across the service.
package apperr

import "errors"

var (
	// ErrInvalidFormat means a submitted PIN was not exactly four digits.
	// No secret comparison happened, so the wire message may describe it.
	ErrInvalidFormat = errors.New("invalid format")

	// ErrUnauthorized means a PIN did not resolve to any role, or a session
	// lacked the required role. Always surfaced with a generic message.
	ErrUnauthorized = errors.New("unauthorized")

	// ErrConflict means a new PIN would collide with the other role's PIN.
	ErrConflict = errors.New("conflict")

	// ErrInvalidLabel means a display label failed the length constraints.
	ErrInvalidLabel = errors.New("invalid label")

	// ErrTooManyAttempts means PIN verification is throttled for the caller.
	ErrTooManyAttempts = errors.New("too many attempts")

	ErrNotFound = errors.New("not found")
)
