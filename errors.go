package turniti

import "errors"

var (
	// Wiring errors.
	ErrNoStore     = errors.New("turniti: no store configured")
	ErrNoProcessor = errors.New("turniti: no processor configured")

	// Not found errors.
	ErrUserNotFound        = errors.New("turniti: user not found")
	ErrTransactionNotFound = errors.New("turniti: transaction not found")

	// Conflict errors.
	ErrTransactionExists = errors.New("turniti: transaction already exists")

	// Lifecycle errors.
	ErrAlreadyStarted = errors.New("turniti: relay already started")
	ErrNotStarted     = errors.New("turniti: relay not started")
)
