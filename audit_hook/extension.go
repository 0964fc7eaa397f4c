package audithook

import (
	"context"
	"fmt"
	"log/slog"
	"time"

	"github.com/djoldoshevv/Turniti/ext"
	"github.com/djoldoshevv/Turniti/job"
)

// Compile-time interface checks.
var (
	_ ext.Extension      = (*Extension)(nil)
	_ ext.JobAdmitted    = (*Extension)(nil)
	_ ext.JobCompleted   = (*Extension)(nil)
	_ ext.JobRejected    = (*Extension)(nil)
	_ ext.JobFailed      = (*Extension)(nil)
	_ ext.AccessDenied   = (*Extension)(nil)
	_ ext.DeliveryFailed = (*Extension)(nil)
)

// Recorder is the interface that audit backends must implement.
// It is defined locally so the package does not depend on any one
// audit product — callers inject the concrete backend at wiring time.
type Recorder interface {
	// Record persists a fully-formed audit event.
	Record(ctx context.Context, event *AuditEvent) error
}

// AuditEvent is a structured record of one lifecycle event.
type AuditEvent struct {
	// What happened
	Action   string `json:"action"`
	Resource string `json:"resource"`
	Category string `json:"category"`

	// Details
	ResourceID string         `json:"resource_id,omitempty"`
	Metadata   map[string]any `json:"metadata,omitempty"`
	Outcome    string         `json:"outcome"`
	Severity   string         `json:"severity"`
	Reason     string         `json:"reason,omitempty"`
}

// RecorderFunc is an adapter to use a plain function as a Recorder.
type RecorderFunc func(ctx context.Context, event *AuditEvent) error

func (f RecorderFunc) Record(ctx context.Context, event *AuditEvent) error {
	return f(ctx, event)
}

// NewLogRecorder returns a Recorder that writes every event to the
// given structured logger.
func NewLogRecorder(logger *slog.Logger) Recorder {
	return RecorderFunc(func(_ context.Context, evt *AuditEvent) error {
		logger.Info("audit event",
			"action", evt.Action,
			"resource", evt.Resource,
			"resource_id", evt.ResourceID,
			"category", evt.Category,
			"outcome", evt.Outcome,
			"severity", evt.Severity,
			"reason", evt.Reason,
			"metadata", evt.Metadata,
		)
		return nil
	})
}

// Severity constants.
const (
	SeverityInfo     = "info"
	SeverityWarning  = "warning"
	SeverityCritical = "critical"
)

// Outcome constants.
const (
	OutcomeSuccess = "success"
	OutcomeFailure = "failure"
)

// Extension bridges relay lifecycle events to an audit trail backend.
// Each lifecycle hook emits a structured audit event through the [Recorder].
type Extension struct {
	recorder Recorder
	enabled  map[string]bool // nil = all enabled
	logger   *slog.Logger
}

// New creates an Extension that emits audit events through the provided Recorder.
func New(r Recorder, opts ...Option) *Extension {
	e := &Extension{
		recorder: r,
		logger:   slog.Default(),
	}
	for _, opt := range opts {
		opt(e)
	}
	return e
}

// Name implements ext.Extension.
func (e *Extension) Name() string { return "audit-hook" }

// ── Lifecycle hooks ─────────────────────────────────

// OnJobAdmitted implements ext.JobAdmitted.
func (e *Extension) OnJobAdmitted(ctx context.Context, j *job.Job) error {
	return e.record(ctx, ActionJobAdmitted, SeverityInfo, OutcomeSuccess,
		j.ID.String(), CategoryJob, nil,
		"user_id", j.UserID,
		"file", j.FileName,
		"file_size", j.FileSize,
	)
}

// OnJobCompleted implements ext.JobCompleted.
func (e *Extension) OnJobCompleted(ctx context.Context, j *job.Job, elapsed time.Duration) error {
	return e.record(ctx, ActionJobCompleted, SeverityInfo, OutcomeSuccess,
		j.ID.String(), CategoryJob, nil,
		"user_id", j.UserID,
		"file", j.FileName,
		"elapsed_ms", elapsed.Milliseconds(),
	)
}

// OnJobRejected implements ext.JobRejected.
func (e *Extension) OnJobRejected(ctx context.Context, j *job.Job) error {
	return e.record(ctx, ActionJobRejected, SeverityWarning, OutcomeFailure,
		j.ID.String(), CategoryJob, nil,
		"user_id", j.UserID,
		"file", j.FileName,
	)
}

// OnJobFailed implements ext.JobFailed.
func (e *Extension) OnJobFailed(ctx context.Context, j *job.Job, jobErr error) error {
	return e.record(ctx, ActionJobFailed, SeverityCritical, OutcomeFailure,
		j.ID.String(), CategoryJob, jobErr,
		"user_id", j.UserID,
		"file", j.FileName,
	)
}

// OnAccessDenied implements ext.AccessDenied.
func (e *Extension) OnAccessDenied(ctx context.Context, j *job.Job) error {
	return e.record(ctx, ActionAccessDenied, SeverityWarning, OutcomeFailure,
		j.ID.String(), CategoryAccess, nil,
		"user_id", j.UserID,
		"file", j.FileName,
	)
}

// OnDeliveryFailed implements ext.DeliveryFailed.
func (e *Extension) OnDeliveryFailed(ctx context.Context, j *job.Job, deliveryErr error) error {
	return e.record(ctx, ActionDeliveryFailed, SeverityCritical, OutcomeFailure,
		j.ID.String(), CategoryDelivery, deliveryErr,
		"user_id", j.UserID,
		"file", j.FileName,
	)
}

// ── Internal helpers ────────────────────────────────

// record builds and sends an audit event if the action is enabled.
// The kvPairs argument is a list of key-value pairs added to Metadata.
func (e *Extension) record(
	ctx context.Context,
	action, severity, outcome string,
	resourceID, category string,
	err error,
	kvPairs ...any,
) error {
	if e.enabled != nil && !e.enabled[action] {
		return nil
	}

	meta := make(map[string]any, len(kvPairs)/2+1)
	for i := 0; i+1 < len(kvPairs); i += 2 {
		key, ok := kvPairs[i].(string)
		if !ok {
			key = fmt.Sprintf("%v", kvPairs[i])
		}
		meta[key] = kvPairs[i+1]
	}

	var reason string
	if err != nil {
		reason = err.Error()
		meta["error"] = err.Error()
	}

	evt := &AuditEvent{
		Action:     action,
		Resource:   ResourceJob,
		Category:   category,
		ResourceID: resourceID,
		Metadata:   meta,
		Outcome:    outcome,
		Severity:   severity,
		Reason:     reason,
	}

	if recErr := e.recorder.Record(ctx, evt); recErr != nil {
		e.logger.Warn("audit_hook: failed to record audit event",
			"action", action,
			"resource_id", resourceID,
			"error", recErr,
		)
	}
	return nil
}
