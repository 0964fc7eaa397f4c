package turniti

import (
	"context"
	"log/slog"
	"sync/atomic"
	"time"

	"github.com/djoldoshevv/Turniti/ext"
	"github.com/djoldoshevv/Turniti/id"
	"github.com/djoldoshevv/Turniti/job"
	"github.com/djoldoshevv/Turniti/middleware"
	"github.com/djoldoshevv/Turniti/notify"
	"github.com/djoldoshevv/Turniti/processor"
	"github.com/djoldoshevv/Turniti/queue"
	"github.com/djoldoshevv/Turniti/quota"
	"github.com/djoldoshevv/Turniti/runner"
	"github.com/djoldoshevv/Turniti/scheduler"
	"github.com/djoldoshevv/Turniti/store"
)

// Option configures a Relay.
type Option func(*Relay) error

// Relay is the central coordinator: it owns the per-user queues, the
// admission scheduler, and the job runner, and exposes the operations
// a front end (bot, CLI, HTTP surface) builds on.
//
// Create one with New() and functional options, then Start it. Submit
// hands a received document to the pipeline; everything after that —
// admission, quota, processing, delivery, cleanup — happens on relay
// goroutines.
type Relay struct {
	config   Config
	logger   *slog.Logger
	store    store.Store
	proc     processor.Processor
	notifier notify.Notifier
	hooks    *ext.Registry
	custom   []middleware.Middleware

	queue  *queue.Manager
	sched  *scheduler.Scheduler
	runner *runner.Runner

	// started gates Submit against Start/Stop; front ends submit from
	// their own goroutines while the signal handler stops the relay.
	started atomic.Bool
}

// New creates a new Relay with the given options. A store and a
// processor are required; delivery defaults to log-only.
func New(opts ...Option) (*Relay, error) {
	r := &Relay{
		config: DefaultConfig(),
		logger: slog.Default(),
	}
	for _, opt := range opts {
		if err := opt(r); err != nil {
			return nil, err
		}
	}
	if r.store == nil {
		return nil, ErrNoStore
	}
	if r.proc == nil {
		return nil, ErrNoProcessor
	}
	if r.notifier == nil {
		r.notifier = notify.NewLogNotifier(r.logger)
	}
	if r.hooks == nil {
		r.hooks = ext.NewRegistry(r.logger)
	}

	var queueOpts []queue.Option
	if r.config.SubmitRate > 0 {
		queueOpts = append(queueOpts, queue.WithSubmitRate(r.config.SubmitRate, r.config.SubmitBurst))
	}
	r.queue = queue.NewManager(queueOpts...)

	r.sched = scheduler.New(r.queue, nil, r.config.Ceiling, scheduler.WithLogger(r.logger))
	r.runner = runner.New(r.store, r.store, r.proc, r.notifier, r.sched, r.logger,
		runner.WithProcessTimeout(r.config.ProcessTimeout),
		runner.WithHooks(r.hooks),
		runner.WithMiddleware(r.custom...),
	)
	r.sched.SetLauncher(r.runner)

	return r, nil
}

// Logger returns the relay's logger.
func (r *Relay) Logger() *slog.Logger { return r.logger }

// Store returns the relay's store.
func (r *Relay) Store() store.Store { return r.store }

// Config returns a copy of the relay's configuration.
func (r *Relay) Config() Config { return r.config }

// Extensions returns the hook registry for registering extensions.
func (r *Relay) Extensions() *ext.Registry { return r.hooks }

// Start verifies store connectivity and marks the relay ready.
func (r *Relay) Start(ctx context.Context) error {
	if !r.started.CompareAndSwap(false, true) {
		return ErrAlreadyStarted
	}
	if err := r.store.Ping(ctx); err != nil {
		r.started.Store(false)
		return err
	}
	r.logger.Info("relay started", "ceiling", r.config.Ceiling)
	return nil
}

// Stop drains in-flight jobs, emits the shutdown hook, and closes the
// store. Queued jobs that were never admitted are dropped.
func (r *Relay) Stop(ctx context.Context) error {
	if !r.started.CompareAndSwap(true, false) {
		return ErrNotStarted
	}

	drainCtx := ctx
	if r.config.ShutdownTimeout > 0 {
		var cancel context.CancelFunc
		drainCtx, cancel = context.WithTimeout(ctx, r.config.ShutdownTimeout)
		defer cancel()
	}
	if err := r.runner.Drain(drainCtx); err != nil {
		r.logger.Error("drain incomplete", "error", err)
	}

	r.hooks.EmitShutdown(ctx)
	return r.store.Close()
}

// Submit accepts a received document and returns its queue position
// (1 = next in line for that user). The user record is created on
// first contact; admission and everything after happen asynchronously.
func (r *Relay) Submit(ctx context.Context, userID int64, fileName, filePath string, fileSize int64) (int, error) {
	if !r.started.Load() {
		return 0, ErrNotStarted
	}

	if _, err := r.store.GetOrCreate(ctx, userID); err != nil {
		return 0, err
	}
	if err := r.store.TouchLastActive(ctx, userID); err != nil {
		r.logger.Warn("touch last active", "user_id", userID, "error", err)
	}

	j := job.New(userID, fileName, filePath, fileSize)
	pos, err := r.queue.Enqueue(j)
	if err != nil {
		return 0, err
	}

	r.logger.Info("job submitted",
		"job_id", j.ID.String(),
		"user_id", userID,
		"file", fileName,
		"position", pos,
	)
	r.sched.OnJobArrived(userID)
	return pos, nil
}

// Profile returns the user's quota state, creating the user on first
// contact.
func (r *Relay) Profile(ctx context.Context, userID int64) (*quota.User, error) {
	return r.store.GetOrCreate(ctx, userID)
}

// History returns the user's most recent outcomes, newest first.
func (r *Relay) History(ctx context.Context, userID int64, limit int) ([]*job.Outcome, error) {
	return r.store.OutcomesByUser(ctx, userID, limit)
}

// Stats returns aggregate counters across all users.
func (r *Relay) Stats(ctx context.Context) (store.Stats, error) {
	return r.store.Stats(ctx)
}

// PurchaseCredits opens a pending transaction for a credit pack. The
// credits are granted when ConfirmPurchase is called after the payment
// provider settles.
func (r *Relay) PurchaseCredits(ctx context.Context, userID int64, amount float64, currency string, credits int, method string) (*quota.Transaction, error) {
	t := quota.NewTransaction(userID, amount, currency, credits, method)
	if err := r.store.CreateTransaction(ctx, t); err != nil {
		return nil, err
	}
	r.logger.Info("purchase opened",
		"txn_id", t.ID.String(),
		"user_id", userID,
		"credits", credits,
	)
	return t, nil
}

// ConfirmPurchase settles a pending transaction and grants its credits.
func (r *Relay) ConfirmPurchase(ctx context.Context, txnID id.TransactionID) error {
	t, err := r.store.GetTransaction(ctx, txnID)
	if err != nil {
		return err
	}
	if err := r.store.UpdateTransactionStatus(ctx, txnID, quota.TransactionCompleted); err != nil {
		return err
	}
	if err := r.store.CreditFree(ctx, t.UserID, t.Credits); err != nil {
		return err
	}
	r.logger.Info("purchase settled", "txn_id", txnID.String(), "user_id", t.UserID, "credits", t.Credits)
	return nil
}

// CancelPurchase marks a pending transaction failed. No credits move.
func (r *Relay) CancelPurchase(ctx context.Context, txnID id.TransactionID) error {
	return r.store.UpdateTransactionStatus(ctx, txnID, quota.TransactionFailed)
}

// GrantSubscription gives the user a subscription of the given tier
// for the given number of days.
func (r *Relay) GrantSubscription(ctx context.Context, userID int64, tier string, days int) error {
	return r.store.AddSubscription(ctx, userID, tier, days)
}

// InFlight reports how many jobs are currently executing.
func (r *Relay) InFlight() int { return r.sched.InFlight() }

// ── Options ───────────────────────────────────────────────────────

// WithConfig replaces the whole configuration.
func WithConfig(cfg Config) Option {
	return func(r *Relay) error {
		if err := cfg.Validate(); err != nil {
			return err
		}
		r.config = cfg
		return nil
	}
}

// WithStore sets the persistence backend for the relay.
func WithStore(s store.Store) Option {
	return func(r *Relay) error {
		r.store = s
		return nil
	}
}

// WithProcessor sets the document processor.
func WithProcessor(p processor.Processor) Option {
	return func(r *Relay) error {
		r.proc = p
		return nil
	}
}

// WithNotifier sets the delivery channel back to users.
func WithNotifier(n notify.Notifier) Option {
	return func(r *Relay) error {
		r.notifier = n
		return nil
	}
}

// WithLogger sets the structured logger for the relay.
func WithLogger(l *slog.Logger) Option {
	return func(r *Relay) error {
		r.logger = l
		return nil
	}
}

// WithCeiling sets the global concurrency ceiling.
func WithCeiling(n int) Option {
	return func(r *Relay) error {
		r.config.Ceiling = n
		return nil
	}
}

// WithProcessTimeout bounds a single processing attempt.
func WithProcessTimeout(d time.Duration) Option {
	return func(r *Relay) error {
		r.config.ProcessTimeout = d
		return nil
	}
}

// WithExtension registers a lifecycle extension.
func WithExtension(e ext.Extension) Option {
	return func(r *Relay) error {
		if r.hooks == nil {
			r.hooks = ext.NewRegistry(r.logger)
		}
		r.hooks.Register(e)
		return nil
	}
}

// WithMiddleware prepends middleware to the processing chain.
func WithMiddleware(mws ...middleware.Middleware) Option {
	return func(r *Relay) error {
		r.custom = append(r.custom, mws...)
		return nil
	}
}
