package audithook_test

import (
	"context"
	"errors"
	"sync"
	"testing"
	"time"

	audithook "github.com/djoldoshevv/Turniti/audit_hook"
	"github.com/djoldoshevv/Turniti/job"
)

// captureRecorder collects every event it receives.
type captureRecorder struct {
	mu     sync.Mutex
	events []*audithook.AuditEvent
	err    error
}

func (r *captureRecorder) Record(_ context.Context, evt *audithook.AuditEvent) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	if r.err != nil {
		return r.err
	}
	r.events = append(r.events, evt)
	return nil
}

func (r *captureRecorder) all() []*audithook.AuditEvent {
	r.mu.Lock()
	defer r.mu.Unlock()
	return append([]*audithook.AuditEvent(nil), r.events...)
}

func sampleJob() *job.Job {
	return job.New(42, "thesis.pdf", "/tmp/thesis.pdf", 1024)
}

func TestEveryHookEmitsOneEvent(t *testing.T) {
	rec := &captureRecorder{}
	e := audithook.New(rec)
	ctx := context.Background()
	j := sampleJob()

	if err := e.OnJobAdmitted(ctx, j); err != nil {
		t.Fatalf("OnJobAdmitted: %v", err)
	}
	if err := e.OnJobCompleted(ctx, j, 250*time.Millisecond); err != nil {
		t.Fatalf("OnJobCompleted: %v", err)
	}
	if err := e.OnJobRejected(ctx, j); err != nil {
		t.Fatalf("OnJobRejected: %v", err)
	}
	if err := e.OnJobFailed(ctx, j, errors.New("service down")); err != nil {
		t.Fatalf("OnJobFailed: %v", err)
	}
	if err := e.OnAccessDenied(ctx, j); err != nil {
		t.Fatalf("OnAccessDenied: %v", err)
	}
	if err := e.OnDeliveryFailed(ctx, j, errors.New("chat unreachable")); err != nil {
		t.Fatalf("OnDeliveryFailed: %v", err)
	}

	events := rec.all()
	if len(events) != len(audithook.AllActions()) {
		t.Fatalf("events = %d, want %d", len(events), len(audithook.AllActions()))
	}

	wantActions := audithook.AllActions()
	for i, evt := range events {
		if evt.Action != wantActions[i] {
			t.Errorf("event[%d].Action = %q, want %q", i, evt.Action, wantActions[i])
		}
		if evt.ResourceID != j.ID.String() {
			t.Errorf("event[%d].ResourceID = %q, want job id", i, evt.ResourceID)
		}
		if evt.Metadata["user_id"] != int64(42) {
			t.Errorf("event[%d] user_id = %v, want 42", i, evt.Metadata["user_id"])
		}
	}
}

func TestSeverityAndOutcome(t *testing.T) {
	rec := &captureRecorder{}
	e := audithook.New(rec)
	ctx := context.Background()
	j := sampleJob()

	e.OnJobCompleted(ctx, j, time.Second)           //nolint:errcheck // hook never fails
	e.OnAccessDenied(ctx, j)                        //nolint:errcheck // hook never fails
	e.OnJobFailed(ctx, j, errors.New("boom"))       //nolint:errcheck // hook never fails
	e.OnDeliveryFailed(ctx, j, errors.New("boom2")) //nolint:errcheck // hook never fails

	events := rec.all()
	if events[0].Severity != audithook.SeverityInfo || events[0].Outcome != audithook.OutcomeSuccess {
		t.Errorf("completed: %s/%s, want info/success", events[0].Severity, events[0].Outcome)
	}
	if events[1].Severity != audithook.SeverityWarning {
		t.Errorf("denied severity = %s, want warning", events[1].Severity)
	}
	if events[2].Severity != audithook.SeverityCritical || events[2].Reason != "boom" {
		t.Errorf("failed: %s reason=%q, want critical/boom", events[2].Severity, events[2].Reason)
	}
	if events[3].Category != audithook.CategoryDelivery {
		t.Errorf("delivery category = %s", events[3].Category)
	}
}

func TestWithActionsFilters(t *testing.T) {
	rec := &captureRecorder{}
	e := audithook.New(rec, audithook.WithActions(audithook.ActionJobFailed))
	ctx := context.Background()
	j := sampleJob()

	e.OnJobAdmitted(ctx, j)                   //nolint:errcheck // hook never fails
	e.OnJobCompleted(ctx, j, time.Second)     //nolint:errcheck // hook never fails
	e.OnJobFailed(ctx, j, errors.New("boom")) //nolint:errcheck // hook never fails

	events := rec.all()
	if len(events) != 1 || events[0].Action != audithook.ActionJobFailed {
		t.Errorf("events = %+v, want only job.failed", events)
	}
}

func TestRecorderErrorIsContained(t *testing.T) {
	rec := &captureRecorder{err: errors.New("audit backend down")}
	e := audithook.New(rec)

	if err := e.OnJobAdmitted(context.Background(), sampleJob()); err != nil {
		t.Errorf("hook error = %v, want nil (recorder errors are logged, not propagated)", err)
	}
}
