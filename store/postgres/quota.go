package postgres

import (
	"context"
	"fmt"
	"time"

	"github.com/djoldoshevv/Turniti/quota"
)

// GetOrCreate returns the user row, inserting it with the welcome
// credit grant on first interaction. The upsert keeps concurrent first
// contacts from double-granting.
func (s *Store) GetOrCreate(ctx context.Context, userID int64) (*quota.User, error) {
	now := time.Now().UTC()
	m := &userModel{
		ID:               userID,
		Tier:             quota.TierFree,
		CreditsRemaining: s.welcomeCredits,
		CreatedAt:        now,
		LastActiveAt:     now,
	}

	_, err := s.db.NewInsert().Model(m).
		On("CONFLICT (id) DO NOTHING").
		Exec(ctx)
	if err != nil {
		return nil, fmt.Errorf("turniti/postgres: create user: %w", err)
	}

	got := new(userModel)
	err = s.db.NewSelect().Model(got).
		Where("id = ?", userID).
		Limit(1).
		Scan(ctx)
	if err != nil {
		return nil, fmt.Errorf("turniti/postgres: get user: %w", err)
	}
	return fromUserModel(got), nil
}

// TouchLastActive updates the user's last-active timestamp.
func (s *Store) TouchLastActive(ctx context.Context, userID int64) error {
	if _, err := s.GetOrCreate(ctx, userID); err != nil {
		return err
	}
	_, err := s.db.NewUpdate().Model((*userModel)(nil)).
		Set("last_active_at = NOW()").
		Where("id = ?", userID).
		Exec(ctx)
	if err != nil {
		return fmt.Errorf("turniti/postgres: touch last active: %w", err)
	}
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

// DebitOne consumes one credit and increments the lifetime count in a
// single-row atomic update. The balance never goes below zero.
func (s *Store) DebitOne(ctx context.Context, userID int64) error {
	if _, err := s.GetOrCreate(ctx, userID); err != nil {
		return err
	}
	_, err := s.db.NewUpdate().Model((*userModel)(nil)).
		Set("credits_remaining = GREATEST(credits_remaining - 1, 0)").
		Set("lifetime_checks = lifetime_checks + 1").
		Where("id = ?", userID).
		Exec(ctx)
	if err != nil {
		return fmt.Errorf("turniti/postgres: debit: %w", err)
	}
	return nil
}

// CreditFree grants n free credits.
func (s *Store) CreditFree(ctx context.Context, userID int64, n int) error {
	if _, err := s.GetOrCreate(ctx, userID); err != nil {
		return err
	}
	_, err := s.db.NewUpdate().Model((*userModel)(nil)).
		Set("credits_remaining = credits_remaining + ?", n).
		Where("id = ?", userID).
		Exec(ctx)
	if err != nil {
		return fmt.Errorf("turniti/postgres: credit: %w", err)
	}
	return nil
}

// AddSubscription grants a subscription expiring after the given days.
func (s *Store) AddSubscription(ctx context.Context, userID int64, tier string, days int) error {
	if _, err := s.GetOrCreate(ctx, userID); err != nil {
		return err
	}
	expires := time.Now().UTC().Add(time.Duration(days) * 24 * time.Hour)
	_, err := s.db.NewUpdate().Model((*userModel)(nil)).
		Set("tier = ?", tier).
		Set("subscription_expires = ?", expires).
		Where("id = ?", userID).
		Exec(ctx)
	if err != nil {
		return fmt.Errorf("turniti/postgres: add subscription: %w", err)
	}
	return nil
}
