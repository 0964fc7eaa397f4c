// Package ext defines the extension system for the relay. Extensions
// are notified of job lifecycle events and can react to them —
// recording metrics, emitting webhooks, feeding dashboards.
//
// Each lifecycle hook is a separate interface so extensions opt in only
// to the events they care about. The Registry fans each event out to
// all registered extensions that implement the corresponding hook.
package ext

import (
	"context"
	"time"

	"github.com/djoldoshevv/Turniti/job"
)

// Extension is the base interface all extensions must implement.
type Extension interface {
	// Name returns a unique human-readable name for the extension.
	Name() string
}

// JobAdmitted is called when the scheduler hands a job to a runner.
type JobAdmitted interface {
	OnJobAdmitted(ctx context.Context, j *job.Job) error
}

// JobCompleted is called after an artifact was produced and settled.
type JobCompleted interface {
	OnJobCompleted(ctx context.Context, j *job.Job, elapsed time.Duration) error
}

// JobRejected is called when a job's input format is not supported.
type JobRejected interface {
	OnJobRejected(ctx context.Context, j *job.Job) error
}

// JobFailed is called when processing failed or timed out.
type JobFailed interface {
	OnJobFailed(ctx context.Context, j *job.Job, err error) error
}

// AccessDenied is called when a job's owner had neither a subscription
// nor free credits at admission time.
type AccessDenied interface {
	OnAccessDenied(ctx context.Context, j *job.Job) error
}

// DeliveryFailed is called when a produced artifact could not be
// handed back to the user. This is an operator-facing anomaly: the
// work was done and charged, delivery alone misfired.
type DeliveryFailed interface {
	OnDeliveryFailed(ctx context.Context, j *job.Job, err error) error
}

// Shutdown is called when the relay is shutting down gracefully.
type Shutdown interface {
	OnShutdown(ctx context.Context) error
}
