package shared

import "errors"

var (
	// ErrNotFound indicates resource not found.
	ErrNotFound = errors.New("not found")
	// ErrConflict indicates an operation that would violate a stored invariant.
	ErrConflict = errors.New("conflict")
	// ErrValidation indicates input rejected before any store call.
	ErrValidation = errors.New("validation failed")
)
