// Package store defines the aggregate persistence interface. Each
// subsystem defines its own store interface (quota.Ledger,
// quota.TransactionStore, job.OutcomeStore); the composite Store
// composes them all. Backends: Memory, Postgres, and Redis.
package store

import (
	"context"

	"github.com/djoldoshevv/Turniti/job"
	"github.com/djoldoshevv/Turniti/quota"
)

// Stats are aggregate counters for external reporting.
type Stats struct {
	TotalUsers          int64 `json:"total_users"`
	ActiveSubscriptions int64 `json:"active_subscriptions"`
	UsersToday          int64 `json:"users_today"`
	TotalProcessed      int64 `json:"total_processed"`
}

// Store is the aggregate persistence interface. A single backend
// implements all subsystem stores.
type Store interface {
	quota.Ledger
	quota.TransactionStore
	job.OutcomeStore

	// Stats returns aggregate counters across all users.
	Stats(ctx context.Context) (Stats, error)

	// Migrate runs all schema migrations.
	Migrate(ctx context.Context) error

	// Ping checks backend connectivity.
	Ping(ctx context.Context) error

	// Close closes the store connection.
	Close() error
}
