// Package errs contains sentinel errors used across layers for stable error mapping.
package errs

import "errors"

// Common sentinels across repo/service layers.
var (
	// ErrValidation indicates rejected input; no side effects were produced.
	ErrValidation = errors.New("validation failed")

	// ErrUnauthorized indicates a missing, malformed or expired credential.
	ErrUnauthorized = errors.New("unauthorized")

	// ErrForbidden indicates an authenticated caller that does not own the record.
	ErrForbidden = errors.New("forbidden")

	// ErrNotFound indicates the requested entity does not exist.
	ErrNotFound = errors.New("not found")

	// ErrAlreadyExists indicates a unique constraint violation (e.g., email taken).
	ErrAlreadyExists = errors.New("already exists")

	// ErrOperationFailed indicates an internal or transactional failure; the
	// message shown to callers stays generic.
	ErrOperationFailed = errors.New("operation failed")
)
