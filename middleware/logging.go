package middleware

import (
	"context"
	"log/slog"
	"time"

	"github.com/djoldoshevv/Turniti/job"
)

// Logging returns middleware that logs processing start and completion.
func Logging(logger *slog.Logger) Middleware {
	return func(ctx context.Context, j *job.Job, next Handler) error {
		logger.Info("processing started",
			slog.String("job_id", j.ID.String()),
			slog.Int64("user_id", j.UserID),
			slog.String("file", j.FileName),
			slog.Int64("size", j.FileSize),
		)

		start := time.Now()
		err := next(ctx)
		elapsed := time.Since(start)

		if err != nil {
			logger.Error("processing failed",
				slog.String("job_id", j.ID.String()),
				slog.Int64("user_id", j.UserID),
				slog.Duration("elapsed", elapsed),
				slog.String("error", err.Error()),
			)
		} else {
			logger.Info("processing completed",
				slog.String("job_id", j.ID.String()),
				slog.Int64("user_id", j.UserID),
				slog.Duration("elapsed", elapsed),
			)
		}

		return err
	}
}
