// Package redis implements store.Store backed by Redis. Users are
// stored as Hashes, outcome records and transactions as JSON in Lists,
// newest first. Suited to deployments that already run Redis and do
// not need relational reporting.
//
// Usage:
//
//	client := redis.NewClient(&redis.Options{Addr: "localhost:6379"})
//	s := redisstore.New(client)
//	if err := s.Ping(ctx); err != nil { ... }
package redis

import (
	"context"
	"log/slog"
	"time"

	"github.com/redis/go-redis/v9"

	"github.com/djoldoshevv/Turniti/store"
)

var _ store.Store = (*Store)(nil)

// defaultWelcomeCredits is the free grant for first-time users.
const defaultWelcomeCredits = 1

// Option configures the Store.
type Option func(*Store)

// WithLogger sets a custom logger.
func WithLogger(l *slog.Logger) Option {
	return func(s *Store) { s.logger = l }
}

// WithWelcomeCredits sets the free credit grant for first-time users.
func WithWelcomeCredits(n int) Option {
	return func(s *Store) { s.welcomeCredits = n }
}

// Store implements the composite store.Store interface backed by Redis.
type Store struct {
	client         redis.Cmdable
	welcomeCredits int
	logger         *slog.Logger
}

// New creates a new Redis-backed store. The caller owns the Redis
// client lifecycle.
func New(client redis.Cmdable, opts ...Option) *Store {
	s := &Store{
		client:         client,
		welcomeCredits: defaultWelcomeCredits,
		logger:         slog.Default(),
	}
	for _, o := range opts {
		o(s)
	}
	return s
}

// Client returns the underlying Redis client.
func (s *Store) Client() redis.Cmdable { return s.client }

// Migrate is a no-op for Redis (schemaless).
func (s *Store) Migrate(_ context.Context) error { return nil }

// Ping verifies the Redis connection is alive.
func (s *Store) Ping(ctx context.Context) error {
	return s.client.Ping(ctx).Err()
}

// Close is a no-op — the caller owns the Redis client lifecycle.
func (s *Store) Close() error { return nil }

// Stats returns aggregate counters by enumerating the user set.
func (s *Store) Stats(ctx context.Context) (store.Stats, error) {
	ids, err := s.client.SMembers(ctx, userIDsKey).Result()
	if err != nil {
		return store.Stats{}, err
	}

	now := time.Now().UTC()
	midnight := time.Date(now.Year(), now.Month(), now.Day(), 0, 0, 0, 0, time.UTC)

	var st store.Stats
	for _, rawID := range ids {
		u, uErr := s.getUserByKey(ctx, keyPrefix+"user:"+rawID)
		if uErr != nil {
			continue
		}
		st.TotalUsers++
		if u.SubscriptionActive(now) {
			st.ActiveSubscriptions++
		}
		if !u.LastActiveAt.Before(midnight) {
			st.UsersToday++
		}
		st.TotalProcessed += int64(u.LifetimeChecks)
	}
	return st, nil
}
