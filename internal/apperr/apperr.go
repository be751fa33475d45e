// Package apperr defines the error kinds shared by the classification,
// catalog and discovery services. Handlers map them to HTTP statuses
// with errors.Is; services wrap them with fmt.Errorf("...: %w", ...).
package apperr

import "errors"

var (
	// ErrValidation rejects a request before any mutation: a
	// self-referential subject, a vote on a non-votable tag group, or
	// a malformed filter specification.
	ErrValidation = errors.New("validation failed")

	// ErrConflict rejects a mutation that would duplicate existing
	// state: an existing vote or confirmation, or an ambiguous region
	// merge. Existing state is left unchanged.
	ErrConflict = errors.New("conflict with existing state")

	// ErrNotFound rejects an operation on an unknown game, tag, vote
	// or user.
	ErrNotFound = errors.New("not found")

	// ErrPartialWrite surfaces a failure between the two halves of a
	// mirrored write after the applied half has been rolled back.
	ErrPartialWrite = errors.New("partial write rolled back")
)
