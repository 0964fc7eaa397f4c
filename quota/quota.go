// Package quota defines the usage-metering contract: the per-user
// Ledger that authorizes job admission and applies debits and credits,
// plus the User and Transaction entities it manages.
package quota

import (
	"context"
	"time"
)

// Reason explains why access was granted or denied.
type Reason string

const (
	// ReasonSubscription means the user holds an unexpired subscription.
	ReasonSubscription Reason = "subscription"
	// ReasonFreeCredits means the user has at least one free credit left.
	ReasonFreeCredits Reason = "free_credits"
	// ReasonNone means the user has neither a subscription nor credits.
	ReasonNone Reason = "none"
)

// Access is the result of an admission check.
type Access struct {
	Allowed bool
	Reason  Reason
}

// TierFree is the default tier for users without a subscription.
const TierFree = "free"

// User holds one user's quota state. Mutated by the Ledger only;
// created on first interaction and never deleted.
type User struct {
	ID                  int64     `json:"id"`
	Username            string    `json:"username,omitempty"`
	FirstName           string    `json:"first_name,omitempty"`
	LastName            string    `json:"last_name,omitempty"`
	Tier                string    `json:"tier"`
	SubscriptionExpires time.Time `json:"subscription_expires,omitempty"`
	CreditsRemaining    int       `json:"credits_remaining"`
	LifetimeChecks      int       `json:"lifetime_checks"`
	CreatedAt           time.Time `json:"created_at"`
	LastActiveAt        time.Time `json:"last_active_at"`
}

// SubscriptionActive reports whether the user holds an unexpired
// subscription at the given instant.
func (u *User) SubscriptionActive(now time.Time) bool {
	return u.Tier != TierFree && u.SubscriptionExpires.After(now)
}

// Ledger tracks each user's remaining credits and subscription and
// authorizes or denies job admission.
//
// Implementations must make each per-user update atomic (a single-row
// mutation). The scheduler guarantees at most one in-flight job per
// user, so concurrent debits for the same user cannot race; cross-user
// updates may proceed fully in parallel.
type Ledger interface {
	// GetOrCreate returns the user's quota state, creating the user on
	// first interaction with the configured number of welcome credits.
	GetOrCreate(ctx context.Context, userID int64) (*User, error)

	// TouchLastActive updates the user's last-active timestamp.
	TouchLastActive(ctx context.Context, userID int64) error

	// CheckAccess is a read-only admission check. A user is allowed if
	// they hold an unexpired subscription or have at least one credit.
	CheckAccess(ctx context.Context, userID int64) (Access, error)

	// DebitOne consumes one free credit and increments the lifetime
	// usage count. Called only after an artifact was produced — never
	// on submission — so failed attempts are never charged. The credit
	// balance never goes below zero (subscription users are admitted
	// without credits).
	DebitOne(ctx context.Context, userID int64) error

	// CreditFree grants n free credits. Used for purchases and
	// promotions.
	CreditFree(ctx context.Context, userID int64, n int) error

	// AddSubscription grants the user a subscription of the given tier
	// expiring after the given number of days.
	AddSubscription(ctx context.Context, userID int64, tier string, days int) error
}
