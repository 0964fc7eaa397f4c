// Package notify defines the outbound channel back to the submitting
// user. Calls are fire-and-forget from the core's perspective: delivery
// failures are logged by the caller, never retried.
package notify

import "context"

// Notifier sends messages and files to a user over the chat channel.
type Notifier interface {
	// Notify sends a plain text message.
	Notify(ctx context.Context, userID int64, message string) error

	// DeliverFile sends a local file with a caption.
	DeliverFile(ctx context.Context, userID int64, filePath, caption string) error
}
