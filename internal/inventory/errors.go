package inventory

import "errors"

// Precondition failures. These are returned directly (never wrapped in I/O
// detail) so callers can branch with errors.Is and present a user-facing
// message instead of a stack trace.
var (
	// ErrNoStoragePath is returned when an operation requires a configured
	// storage path and none has been set.
	ErrNoStoragePath = errors.New("storage path not configured")

	// ErrNoActiveSession is returned by session-gated mutations when no
	// session is open.
	ErrNoActiveSession = errors.New("no active session")

	// ErrSessionActive is returned by CreateSession while another session is
	// still open. The caller must close it first.
	ErrSessionActive = errors.New("a session is already active")

	// ErrCategoryInUse is returned when deleting a category that inventory
	// items still reference.
	ErrCategoryInUse = errors.New("category is referenced by inventory items")

	// ErrNotFound is returned when an update or delete names an unknown id.
	ErrNotFound = errors.New("not found")
)
