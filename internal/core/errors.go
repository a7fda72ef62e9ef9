package core

import "errors"

// Error taxonomy shared by every layer. Services wrap these with context via
// fmt.Errorf("...: %w", err); callers classify with errors.Is.
var (
	// ErrNotFound means a referenced id does not exist.
	ErrNotFound = errors.New("not found")

	// ErrConflict means a unique-name collision in the shared
	// account/payee namespace.
	ErrConflict = errors.New("name already in use")

	// ErrPreconditionFailed means a deletion is blocked by dependent data
	// or a required transfer target is missing or invalid.
	ErrPreconditionFailed = errors.New("precondition failed")

	// ErrInvalidArgument means a malformed amount, date or month.
	ErrInvalidArgument = errors.New("invalid argument")

	// ErrStorageConflict means a concurrent-write serialization failure.
	// It is the only retryable kind; everything else is terminal for the
	// request.
	ErrStorageConflict = errors.New("storage conflict")
)
