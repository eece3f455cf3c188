package store

import "errors"

var (
	// ErrDocumentNotFound rejects task submission against an unknown document
	// and lookups of documents that were never registered (or were deleted).
	ErrDocumentNotFound = errors.New("document not found")

	ErrTaskNotFound  = errors.New("task not found")
	ErrAlreadyExists = errors.New("already exists")

	// ErrInvalidPriority is returned when a submission carries a priority
	// outside [MinPriority, MaxPriority].
	ErrInvalidPriority = errors.New("priority out of range")

	// ErrNotPending is returned by transitions that only apply to pending
	// tasks (claiming for dispatch, cancellation, delete cascade).
	ErrNotPending = errors.New("task is not pending")

	// ErrTerminalState is returned when a transition is attempted on a task
	// that already completed or failed.
	ErrTerminalState = errors.New("task already in a terminal state")
)
