// Package memory implements store.Store fully in memory. Safe for
// concurrent access. Intended for unit testing and development.
package memory

import (
	"context"
	"sync"
	"time"

	"github.com/djoldoshevv/Turniti"
	"github.com/djoldoshevv/Turniti/id"
	"github.com/djoldoshevv/Turniti/job"
	"github.com/djoldoshevv/Turniti/quota"
	"github.com/djoldoshevv/Turniti/store"
)

// DefaultWelcomeCredits is granted to every user on first interaction.
const DefaultWelcomeCredits = 1

// Compile-time interface check.
var _ store.Store = (*Store)(nil)

// Store is a fully in-memory implementation of store.Store.
type Store struct {
	mu sync.RWMutex

	users    map[int64]*quota.User
	outcomes []*job.Outcome
	txns     map[string]*quota.Transaction
	txnOrder []string

	welcomeCredits int
}

// Option configures the Store.
type Option func(*Store)

// WithWelcomeCredits sets how many free credits a new user receives.
func WithWelcomeCredits(n int) Option {
	return func(s *Store) { s.welcomeCredits = n }
}

// New returns a new empty Store.
func New(opts ...Option) *Store {
	s := &Store{
		users:          make(map[int64]*quota.User),
		txns:           make(map[string]*quota.Transaction),
		welcomeCredits: DefaultWelcomeCredits,
	}
	for _, opt := range opts {
		opt(s)
	}
	return s
}

// ──────────────────────────────────────────────────
// Lifecycle — Migrate / Ping / Close
// ──────────────────────────────────────────────────

// Migrate is a no-op for the memory store.
func (s *Store) Migrate(_ context.Context) error { return nil }

// Ping always succeeds for the memory store.
func (s *Store) Ping(_ context.Context) error { return nil }

// Close is a no-op for the memory store.
func (s *Store) Close() error { return nil }

// ──────────────────────────────────────────────────
// quota.Ledger
// ──────────────────────────────────────────────────

// GetOrCreate returns a copy of the user's quota state, creating the
// user with the welcome credits on first interaction.
func (s *Store) GetOrCreate(_ context.Context, userID int64) (*quota.User, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	u := s.users[userID]
	if u == nil {
		now := time.Now().UTC()
		u = &quota.User{
			ID:               userID,
			Tier:             quota.TierFree,
			CreditsRemaining: s.welcomeCredits,
			CreatedAt:        now,
			LastActiveAt:     now,
		}
		s.users[userID] = u
	}

	cp := *u
	return &cp, nil
}

// TouchLastActive updates the user's last-active timestamp.
func (s *Store) TouchLastActive(ctx context.Context, userID int64) error {
	if _, err := s.GetOrCreate(ctx, userID); err != nil {
		return err
	}

	s.mu.Lock()
	defer s.mu.Unlock()
	s.users[userID].LastActiveAt = time.Now().UTC()
	return nil
}

// CheckAccess is a read-only admission check.
func (s *Store) CheckAccess(ctx context.Context, userID int64) (quota.Access, error) {
	u, err := s.GetOrCreate(ctx, userID)
	if err != nil {
		return quota.Access{}, err
	}

	if u.SubscriptionActive(time.Now().UTC()) {
		return quota.Access{Allowed: true, Reason: quota.ReasonSubscription}, nil
	}
	if u.CreditsRemaining > 0 {
		return quota.Access{Allowed: true, Reason: quota.ReasonFreeCredits}, nil
	}
	return quota.Access{Allowed: false, Reason: quota.ReasonNone}, nil
}

// DebitOne consumes one credit and increments the lifetime count. The
// balance never goes below zero.
func (s *Store) DebitOne(ctx context.Context, userID int64) error {
	if _, err := s.GetOrCreate(ctx, userID); err != nil {
		return err
	}

	s.mu.Lock()
	defer s.mu.Unlock()

	u := s.users[userID]
	if u.CreditsRemaining > 0 {
		u.CreditsRemaining--
	}
	u.LifetimeChecks++
	return nil
}

// CreditFree grants n free credits.
func (s *Store) CreditFree(ctx context.Context, userID int64, n int) error {
	if _, err := s.GetOrCreate(ctx, userID); err != nil {
		return err
	}

	s.mu.Lock()
	defer s.mu.Unlock()
	s.users[userID].CreditsRemaining += n
	return nil
}

// AddSubscription grants a subscription expiring after the given days.
func (s *Store) AddSubscription(ctx context.Context, userID int64, tier string, days int) error {
	if _, err := s.GetOrCreate(ctx, userID); err != nil {
		return err
	}

	s.mu.Lock()
	defer s.mu.Unlock()

	u := s.users[userID]
	u.Tier = tier
	u.SubscriptionExpires = time.Now().UTC().Add(time.Duration(days) * 24 * time.Hour)
	return nil
}

// ──────────────────────────────────────────────────
// job.OutcomeStore
// ──────────────────────────────────────────────────

// AppendOutcome persists a new outcome record.
func (s *Store) AppendOutcome(_ context.Context, o *job.Outcome) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	cp := *o
	s.outcomes = append(s.outcomes, &cp)
	return nil
}

// RecentOutcomes returns the most recent outcomes, newest first.
func (s *Store) RecentOutcomes(_ context.Context, limit int) ([]*job.Outcome, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	var out []*job.Outcome
	for i := len(s.outcomes) - 1; i >= 0 && len(out) < limit; i-- {
		cp := *s.outcomes[i]
		out = append(out, &cp)
	}
	return out, nil
}

// OutcomesByUser returns a user's most recent outcomes, newest first.
func (s *Store) OutcomesByUser(_ context.Context, userID int64, limit int) ([]*job.Outcome, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	var out []*job.Outcome
	for i := len(s.outcomes) - 1; i >= 0 && len(out) < limit; i-- {
		if s.outcomes[i].UserID != userID {
			continue
		}
		cp := *s.outcomes[i]
		out = append(out, &cp)
	}
	return out, nil
}

// ──────────────────────────────────────────────────
// quota.TransactionStore
// ──────────────────────────────────────────────────

// CreateTransaction persists a new transaction.
func (s *Store) CreateTransaction(_ context.Context, t *quota.Transaction) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	cp := *t
	key := t.ID.String()
	s.txns[key] = &cp
	s.txnOrder = append(s.txnOrder, key)
	return nil
}

// UpdateTransactionStatus moves a transaction to a new status.
func (s *Store) UpdateTransactionStatus(_ context.Context, txnID id.TransactionID, status quota.TransactionStatus) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	t := s.txns[txnID.String()]
	if t == nil {
		return turniti.ErrTransactionNotFound
	}
	t.Status = status
	return nil
}

// GetTransaction returns a transaction by id.
func (s *Store) GetTransaction(_ context.Context, txnID id.TransactionID) (*quota.Transaction, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	t := s.txns[txnID.String()]
	if t == nil {
		return nil, turniti.ErrTransactionNotFound
	}
	cp := *t
	return &cp, nil
}

// TransactionsByUser returns a user's transactions, newest first.
func (s *Store) TransactionsByUser(_ context.Context, userID int64) ([]*quota.Transaction, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	var out []*quota.Transaction
	for i := len(s.txnOrder) - 1; i >= 0; i-- {
		t := s.txns[s.txnOrder[i]]
		if t.UserID != userID {
			continue
		}
		cp := *t
		out = append(out, &cp)
	}
	return out, nil
}

// ──────────────────────────────────────────────────
// Stats
// ──────────────────────────────────────────────────

// Stats returns aggregate counters across all users.
func (s *Store) Stats(_ context.Context) (store.Stats, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	now := time.Now().UTC()
	dayAgo := now.Add(-24 * time.Hour)

	var st store.Stats
	st.TotalUsers = int64(len(s.users))
	for _, u := range s.users {
		if u.SubscriptionActive(now) {
			st.ActiveSubscriptions++
		}
		if u.CreatedAt.After(dayAgo) {
			st.UsersToday++
		}
		st.TotalProcessed += int64(u.LifetimeChecks)
	}
	return st, nil
}
