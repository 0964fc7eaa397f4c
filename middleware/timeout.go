package middleware

import (
	"context"
	"log/slog"
	"time"

	"github.com/djoldoshevv/Turniti/job"
)

// Timeout returns middleware that bounds the processing step. A
// non-zero d wraps the handler call in a context.WithTimeout; when the
// deadline passes the handler returns and the external operation
// continues unobserved. Zero leaves the caller's context untouched.
func Timeout(logger *slog.Logger, d time.Duration) Middleware {
	return func(ctx context.Context, j *job.Job, next Handler) error {
		if d > 0 {
			logger.Debug("processing deadline set",
				slog.String("job_id", j.ID.String()),
				slog.Duration("timeout", d),
			)
			var cancel context.CancelFunc
			ctx, cancel = context.WithTimeout(ctx, d)
			defer cancel()
		}
		return next(ctx)
	}
}
