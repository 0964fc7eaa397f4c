package ext

import (
	"context"
	"log/slog"
	"time"

	"github.com/djoldoshevv/Turniti/job"
)

// Named entry types pair a hook implementation with the extension name
// captured at registration time. This avoids type-asserting back to
// Extension inside the emit methods.
type jobAdmittedEntry struct {
	name string
	hook JobAdmitted
}

type jobCompletedEntry struct {
	name string
	hook JobCompleted
}

type jobRejectedEntry struct {
	name string
	hook JobRejected
}

type jobFailedEntry struct {
	name string
	hook JobFailed
}

type accessDeniedEntry struct {
	name string
	hook AccessDenied
}

type deliveryFailedEntry struct {
	name string
	hook DeliveryFailed
}

type shutdownEntry struct {
	name string
	hook Shutdown
}

// Registry holds registered extensions and dispatches lifecycle events
// to them. It type-caches extensions at registration time so emit
// calls iterate only over extensions that implement the relevant hook.
type Registry struct {
	extensions []Extension
	logger     *slog.Logger

	jobAdmitted    []jobAdmittedEntry
	jobCompleted   []jobCompletedEntry
	jobRejected    []jobRejectedEntry
	jobFailed      []jobFailedEntry
	accessDenied   []accessDeniedEntry
	deliveryFailed []deliveryFailedEntry
	shutdown       []shutdownEntry
}

// NewRegistry creates an extension registry with the given logger.
func NewRegistry(logger *slog.Logger) *Registry {
	return &Registry{logger: logger}
}

// Register adds an extension and type-asserts it into all applicable
// hook caches. Extensions are notified in registration order.
func (r *Registry) Register(e Extension) {
	r.extensions = append(r.extensions, e)
	name := e.Name()

	if h, ok := e.(JobAdmitted); ok {
		r.jobAdmitted = append(r.jobAdmitted, jobAdmittedEntry{name, h})
	}
	if h, ok := e.(JobCompleted); ok {
		r.jobCompleted = append(r.jobCompleted, jobCompletedEntry{name, h})
	}
	if h, ok := e.(JobRejected); ok {
		r.jobRejected = append(r.jobRejected, jobRejectedEntry{name, h})
	}
	if h, ok := e.(JobFailed); ok {
		r.jobFailed = append(r.jobFailed, jobFailedEntry{name, h})
	}
	if h, ok := e.(AccessDenied); ok {
		r.accessDenied = append(r.accessDenied, accessDeniedEntry{name, h})
	}
	if h, ok := e.(DeliveryFailed); ok {
		r.deliveryFailed = append(r.deliveryFailed, deliveryFailedEntry{name, h})
	}
	if h, ok := e.(Shutdown); ok {
		r.shutdown = append(r.shutdown, shutdownEntry{name, h})
	}
}

// Extensions returns all registered extensions.
func (r *Registry) Extensions() []Extension { return r.extensions }

// EmitJobAdmitted notifies all extensions that implement JobAdmitted.
func (r *Registry) EmitJobAdmitted(ctx context.Context, j *job.Job) {
	for _, e := range r.jobAdmitted {
		if err := e.hook.OnJobAdmitted(ctx, j); err != nil {
			r.logHookError("OnJobAdmitted", e.name, err)
		}
	}
}

// EmitJobCompleted notifies all extensions that implement JobCompleted.
func (r *Registry) EmitJobCompleted(ctx context.Context, j *job.Job, elapsed time.Duration) {
	for _, e := range r.jobCompleted {
		if err := e.hook.OnJobCompleted(ctx, j, elapsed); err != nil {
			r.logHookError("OnJobCompleted", e.name, err)
		}
	}
}

// EmitJobRejected notifies all extensions that implement JobRejected.
func (r *Registry) EmitJobRejected(ctx context.Context, j *job.Job) {
	for _, e := range r.jobRejected {
		if err := e.hook.OnJobRejected(ctx, j); err != nil {
			r.logHookError("OnJobRejected", e.name, err)
		}
	}
}

// EmitJobFailed notifies all extensions that implement JobFailed.
func (r *Registry) EmitJobFailed(ctx context.Context, j *job.Job, jobErr error) {
	for _, e := range r.jobFailed {
		if err := e.hook.OnJobFailed(ctx, j, jobErr); err != nil {
			r.logHookError("OnJobFailed", e.name, err)
		}
	}
}

// EmitAccessDenied notifies all extensions that implement AccessDenied.
func (r *Registry) EmitAccessDenied(ctx context.Context, j *job.Job) {
	for _, e := range r.accessDenied {
		if err := e.hook.OnAccessDenied(ctx, j); err != nil {
			r.logHookError("OnAccessDenied", e.name, err)
		}
	}
}

// EmitDeliveryFailed notifies all extensions that implement DeliveryFailed.
func (r *Registry) EmitDeliveryFailed(ctx context.Context, j *job.Job, deliveryErr error) {
	for _, e := range r.deliveryFailed {
		if err := e.hook.OnDeliveryFailed(ctx, j, deliveryErr); err != nil {
			r.logHookError("OnDeliveryFailed", e.name, err)
		}
	}
}

// EmitShutdown notifies all extensions that implement Shutdown.
func (r *Registry) EmitShutdown(ctx context.Context) {
	for _, e := range r.shutdown {
		if err := e.hook.OnShutdown(ctx); err != nil {
			r.logHookError("OnShutdown", e.name, err)
		}
	}
}

// logHookError logs a hook failure. Hook errors never propagate; an
// extension cannot fail a job.
func (r *Registry) logHookError(hook, ext string, err error) {
	r.logger.Warn("extension hook error",
		slog.String("hook", hook),
		slog.String("extension", ext),
		slog.String("error", err.Error()),
	)
}
