package ext_test

import (
	"context"
	"errors"
	"log/slog"
	"testing"
	"time"

	"github.com/djoldoshevv/Turniti/ext"
	"github.com/djoldoshevv/Turniti/job"
)

// recordingExt opts in to a subset of hooks and counts invocations.
type recordingExt struct {
	admitted  int
	completed int
	failed    int
	hookErr   error
}

func (e *recordingExt) Name() string { return "recording" }

func (e *recordingExt) OnJobAdmitted(_ context.Context, _ *job.Job) error {
	e.admitted++
	return e.hookErr
}

func (e *recordingExt) OnJobCompleted(_ context.Context, _ *job.Job, _ time.Duration) error {
	e.completed++
	return e.hookErr
}

func (e *recordingExt) OnJobFailed(_ context.Context, _ *job.Job, _ error) error {
	e.failed++
	return e.hookErr
}

func TestRegistryFanOut(t *testing.T) {
	r := ext.NewRegistry(slog.Default())
	a := &recordingExt{}
	b := &recordingExt{}
	r.Register(a)
	r.Register(b)

	j := job.New(1, "doc.pdf", "/tmp/doc.pdf", 100)
	ctx := context.Background()

	r.EmitJobAdmitted(ctx, j)
	r.EmitJobCompleted(ctx, j, time.Second)
	r.EmitJobFailed(ctx, j, errors.New("processing error"))

	for i, e := range []*recordingExt{a, b} {
		if e.admitted != 1 || e.completed != 1 || e.failed != 1 {
			t.Errorf("extension %d counts = %d/%d/%d, want 1/1/1",
				i, e.admitted, e.completed, e.failed)
		}
	}
}

func TestUnimplementedHooksAreSkipped(t *testing.T) {
	r := ext.NewRegistry(slog.Default())
	r.Register(&recordingExt{})

	j := job.New(1, "doc.pdf", "/tmp/doc.pdf", 100)

	// recordingExt does not implement these; emitting must be a no-op.
	r.EmitJobRejected(context.Background(), j)
	r.EmitAccessDenied(context.Background(), j)
	r.EmitDeliveryFailed(context.Background(), j, errors.New("send failed"))
	r.EmitShutdown(context.Background())
}

func TestHookErrorsDoNotPropagate(t *testing.T) {
	r := ext.NewRegistry(slog.Default())
	failing := &recordingExt{hookErr: errors.New("hook broke")}
	healthy := &recordingExt{}
	r.Register(failing)
	r.Register(healthy)

	j := job.New(1, "doc.pdf", "/tmp/doc.pdf", 100)
	r.EmitJobAdmitted(context.Background(), j)

	// The failing hook must not stop fan-out to later extensions.
	if healthy.admitted != 1 {
		t.Errorf("healthy extension admitted = %d, want 1", healthy.admitted)
	}
}
