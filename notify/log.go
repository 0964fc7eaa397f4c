package notify

import (
	"context"
	"log/slog"
)

// Compile-time interface check.
var _ Notifier = (*LogNotifier)(nil)

// LogNotifier writes every notification to a logger instead of a chat
// channel. Useful for development and tests.
type LogNotifier struct {
	logger *slog.Logger
}

// NewLogNotifier creates a LogNotifier. A nil logger uses slog.Default.
func NewLogNotifier(logger *slog.Logger) *LogNotifier {
	if logger == nil {
		logger = slog.Default()
	}
	return &LogNotifier{logger: logger}
}

// Notify logs the message.
func (n *LogNotifier) Notify(_ context.Context, userID int64, message string) error {
	n.logger.Info("notify",
		slog.Int64("user_id", userID),
		slog.String("message", message),
	)
	return nil
}

// DeliverFile logs the delivery.
func (n *LogNotifier) DeliverFile(_ context.Context, userID int64, filePath, caption string) error {
	n.logger.Info("deliver file",
		slog.Int64("user_id", userID),
		slog.String("file", filePath),
		slog.String("caption", caption),
	)
	return nil
}
