// Package runner executes a single admitted job through its lifecycle:
// quota check, format validation, external processing, ledger
// settlement, delivery, cleanup. The ledger is debited only after an
// artifact is produced, so a failed or timed-out job leaves the user's
// balance untouched; the scheduler's completion callback fires exactly
// once on every exit path, including panics.
package runner

import (
	"context"
	"log/slog"
	"os"
	"sync"
	"time"

	"github.com/djoldoshevv/Turniti/ext"
	"github.com/djoldoshevv/Turniti/job"
	"github.com/djoldoshevv/Turniti/middleware"
	"github.com/djoldoshevv/Turniti/notify"
	"github.com/djoldoshevv/Turniti/processor"
	"github.com/djoldoshevv/Turniti/quota"
)

// Completer receives the completion signal for an admitted job. The
// scheduler implements it.
type Completer interface {
	OnJobFinished(userID int64)
}

// DefaultProcessTimeout bounds the external processing call.
const DefaultProcessTimeout = 2 * time.Minute

// User-facing messages for terminal states.
const (
	msgNoAccess    = "You have no checks remaining. Use /buy to purchase more."
	msgUnsupported = "This file type is not supported. Please send PDF, DOC, DOCX, TXT, RTF or ODT."
	msgInternal    = "Something went wrong on our side. Please try again later."
	msgDelivered   = "Check complete. Your report is attached."
)

// Runner drives admitted jobs to completion. One Runner instance
// serves all jobs; each job runs on its own goroutine.
type Runner struct {
	ledger    quota.Ledger
	outcomes  job.OutcomeStore
	proc      processor.Processor
	notifier  notify.Notifier
	completer Completer
	hooks     *ext.Registry
	custom    []middleware.Middleware
	mw        middleware.Middleware
	timeout   time.Duration
	logger    *slog.Logger

	wg sync.WaitGroup
}

// Option configures a Runner.
type Option func(*Runner)

// WithProcessTimeout bounds each job's external processing call.
func WithProcessTimeout(d time.Duration) Option {
	return func(r *Runner) {
		if d > 0 {
			r.timeout = d
		}
	}
}

// WithHooks sets the extension registry for lifecycle events.
func WithHooks(hooks *ext.Registry) Option {
	return func(r *Runner) { r.hooks = hooks }
}

// WithMiddleware prepends middleware around the processing step.
// Recover and Timeout are always installed innermost; the given
// middleware wrap them.
func WithMiddleware(mws ...middleware.Middleware) Option {
	return func(r *Runner) {
		r.custom = append(r.custom, mws...)
	}
}

// New creates a Runner with the given collaborators.
func New(
	ledger quota.Ledger,
	outcomes job.OutcomeStore,
	proc processor.Processor,
	notifier notify.Notifier,
	completer Completer,
	logger *slog.Logger,
	opts ...Option,
) *Runner {
	r := &Runner{
		ledger:    ledger,
		outcomes:  outcomes,
		proc:      proc,
		notifier:  notifier,
		completer: completer,
		hooks:     ext.NewRegistry(logger),
		timeout:   DefaultProcessTimeout,
		logger:    logger,
	}
	for _, opt := range opts {
		opt(r)
	}

	chain := append([]middleware.Middleware{}, r.custom...)
	chain = append(chain, middleware.Recover(r.logger), middleware.Timeout(r.logger, r.timeout))
	r.mw = middleware.Chain(chain...)

	return r
}

// Launch starts executing the job on a new goroutine. It never blocks;
// the scheduler calls it from inside an admission sweep.
func (r *Runner) Launch(j *job.Job) {
	r.wg.Add(1)
	go func() {
		defer r.wg.Done()
		r.Run(context.Background(), j)
	}()
}

// Drain waits for all in-flight jobs to finish or the context to
// expire.
func (r *Runner) Drain(ctx context.Context) error {
	done := make(chan struct{})
	go func() {
		r.wg.Wait()
		close(done)
	}()

	select {
	case <-done:
		return nil
	case <-ctx.Done():
		return ctx.Err()
	}
}

// Run executes one job to a terminal state. The completion callback
// and temporary-file cleanup run on every exit path; a panic escaping
// the middleware chain is contained here and treated as a failed job.
func (r *Runner) Run(ctx context.Context, j *job.Job) {
	var artifact string

	defer func() {
		if rec := recover(); rec != nil {
			// The middleware Recover normally converts panics; this
			// guard covers the runner's own bookkeeping.
			r.logger.Error("runner panicked outside the processing step",
				slog.String("job_id", j.ID.String()),
				slog.Any("panic", rec),
			)
		}
		r.cleanup(j, artifact)
		r.completer.OnJobFinished(j.UserID)
	}()

	r.hooks.EmitJobAdmitted(ctx, j)

	access, err := r.ledger.CheckAccess(ctx, j.UserID)
	if err != nil {
		r.logger.Error("access check failed",
			slog.String("job_id", j.ID.String()),
			slog.Int64("user_id", j.UserID),
			slog.String("error", err.Error()),
		)
		j.State = job.StateFailed
		r.notify(ctx, j.UserID, msgInternal)
		return
	}

	if !access.Allowed {
		j.State = job.StateNoAccess
		r.hooks.EmitAccessDenied(ctx, j)
		r.notify(ctx, j.UserID, msgNoAccess)
		return
	}

	if !job.SupportedFormat(j.FileName) {
		j.State = job.StateRejected
		r.record(ctx, j, job.StatusRejectedUnsupported)
		r.hooks.EmitJobRejected(ctx, j)
		r.notify(ctx, j.UserID, msgUnsupported)
		return
	}

	j.State = job.StateProcessing
	start := time.Now()

	procErr := r.mw(ctx, j, func(ctx context.Context) error {
		path, perr := r.proc.Process(ctx, j.FilePath)
		if perr != nil {
			return perr
		}
		artifact = path
		return nil
	})
	elapsed := time.Since(start)

	if procErr != nil {
		// No debit has happened yet, so the user's balance is already
		// whole; failure must not touch the ledger.
		j.State = job.StateFailed
		r.record(ctx, j, job.StatusFailed)
		r.hooks.EmitJobFailed(ctx, j, procErr)
		r.notify(ctx, j.UserID, processor.UserMessage(procErr))
		return
	}

	j.State = job.StateSettled
	if err := r.ledger.DebitOne(ctx, j.UserID); err != nil {
		// The artifact exists and will be delivered; a missed debit is
		// an operator problem, not the user's.
		r.logger.Error("debit failed after successful processing",
			slog.String("job_id", j.ID.String()),
			slog.Int64("user_id", j.UserID),
			slog.String("error", err.Error()),
		)
	}
	r.record(ctx, j, job.StatusSuccess)
	r.hooks.EmitJobCompleted(ctx, j, elapsed)

	if err := r.notifier.DeliverFile(ctx, j.UserID, artifact, msgDelivered); err != nil {
		// Never compensated: the work was genuinely done.
		r.logger.Error("artifact delivery failed",
			slog.String("job_id", j.ID.String()),
			slog.Int64("user_id", j.UserID),
			slog.String("artifact", artifact),
			slog.String("error", err.Error()),
		)
		r.hooks.EmitDeliveryFailed(ctx, j, err)
		return
	}

	j.State = job.StateDone
}

// record appends an outcome to the audit log.
func (r *Runner) record(ctx context.Context, j *job.Job, status job.Status) {
	if err := r.outcomes.AppendOutcome(ctx, job.NewOutcome(j, status)); err != nil {
		r.logger.Error("outcome append failed",
			slog.String("job_id", j.ID.String()),
			slog.String("status", string(status)),
			slog.String("error", err.Error()),
		)
	}
}

// notify sends a message, logging delivery problems.
func (r *Runner) notify(ctx context.Context, userID int64, message string) {
	if err := r.notifier.Notify(ctx, userID, message); err != nil {
		r.logger.Warn("notification failed",
			slog.Int64("user_id", userID),
			slog.String("error", err.Error()),
		)
	}
}

// cleanup removes the job's source file and, if produced, the artifact.
func (r *Runner) cleanup(j *job.Job, artifact string) {
	if j.FilePath != "" {
		if err := os.Remove(j.FilePath); err != nil && !os.IsNotExist(err) {
			r.logger.Warn("source file cleanup failed",
				slog.String("path", j.FilePath),
				slog.String("error", err.Error()),
			)
		}
	}
	if artifact != "" {
		if err := os.Remove(artifact); err != nil && !os.IsNotExist(err) {
			r.logger.Warn("artifact cleanup failed",
				slog.String("path", artifact),
				slog.String("error", err.Error()),
			)
		}
	}
}
