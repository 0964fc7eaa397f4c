package redis

import (
	"context"
	"fmt"
	"strconv"
	"time"

	"github.com/djoldoshevv/Turniti/quota"
)

// GetOrCreate returns the user's quota state, creating the hash with
// the welcome credit grant on first interaction.
func (s *Store) GetOrCreate(ctx context.Context, userID int64) (*quota.User, error) {
	key := userKey(userID)

	exists, err := s.client.Exists(ctx, key).Result()
	if err != nil {
		return nil, fmt.Errorf("turniti/redis: check user exists: %w", err)
	}
	if exists == 0 {
		now := time.Now().UTC()
		u := &quota.User{
			ID:               userID,
			Tier:             quota.TierFree,
			CreditsRemaining: s.welcomeCredits,
			CreatedAt:        now,
			LastActiveAt:     now,
		}
		pipe := s.client.TxPipeline()
		pipe.HSet(ctx, key, userToMap(u))
		pipe.SAdd(ctx, userIDsKey, strconv.FormatInt(userID, 10))
		if _, pErr := pipe.Exec(ctx); pErr != nil {
			return nil, fmt.Errorf("turniti/redis: create user: %w", pErr)
		}
		return u, nil
	}

	return s.getUserByKey(ctx, key)
}

// TouchLastActive updates the user's last-active timestamp.
func (s *Store) TouchLastActive(ctx context.Context, userID int64) error {
	if _, err := s.GetOrCreate(ctx, userID); err != nil {
		return err
	}
	err := s.client.HSet(ctx, userKey(userID),
		"last_active_at", time.Now().UTC().Format(time.RFC3339Nano),
	).Err()
	if err != nil {
		return fmt.Errorf("turniti/redis: touch last active: %w", err)
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

// DebitOne consumes one credit and increments the lifetime count. The
// balance is clamped at zero after the decrement; the scheduler's
// one-in-flight-per-user guarantee keeps the clamp race-free.
func (s *Store) DebitOne(ctx context.Context, userID int64) error {
	if _, err := s.GetOrCreate(ctx, userID); err != nil {
		return err
	}
	key := userKey(userID)

	left, err := s.client.HIncrBy(ctx, key, "credits_remaining", -1).Result()
	if err != nil {
		return fmt.Errorf("turniti/redis: debit: %w", err)
	}
	if left < 0 {
		if hErr := s.client.HSet(ctx, key, "credits_remaining", "0").Err(); hErr != nil {
			return fmt.Errorf("turniti/redis: debit clamp: %w", hErr)
		}
	}
	if err := s.client.HIncrBy(ctx, key, "lifetime_checks", 1).Err(); err != nil {
		return fmt.Errorf("turniti/redis: debit lifetime: %w", err)
	}
	return nil
}

// CreditFree grants n free credits.
func (s *Store) CreditFree(ctx context.Context, userID int64, n int) error {
	if _, err := s.GetOrCreate(ctx, userID); err != nil {
		return err
	}
	err := s.client.HIncrBy(ctx, userKey(userID), "credits_remaining", int64(n)).Err()
	if err != nil {
		return fmt.Errorf("turniti/redis: credit: %w", err)
	}
	return nil
}

// AddSubscription grants a subscription expiring after the given days.
func (s *Store) AddSubscription(ctx context.Context, userID int64, tier string, days int) error {
	if _, err := s.GetOrCreate(ctx, userID); err != nil {
		return err
	}
	expires := time.Now().UTC().Add(time.Duration(days) * 24 * time.Hour)
	err := s.client.HSet(ctx, userKey(userID),
		"tier", tier,
		"subscription_expires", expires.Format(time.RFC3339Nano),
	).Err()
	if err != nil {
		return fmt.Errorf("turniti/redis: add subscription: %w", err)
	}
	return nil
}

func (s *Store) getUserByKey(ctx context.Context, key string) (*quota.User, error) {
	vals, err := s.client.HGetAll(ctx, key).Result()
	if err != nil {
		return nil, fmt.Errorf("turniti/redis: get user: %w", err)
	}
	if len(vals) == 0 {
		return nil, fmt.Errorf("turniti/redis: get user: empty hash at %s", key)
	}
	return mapToUser(vals), nil
}

func userToMap(u *quota.User) map[string]interface{} {
	m := map[string]interface{}{
		"id":                strconv.FormatInt(u.ID, 10),
		"username":          u.Username,
		"first_name":        u.FirstName,
		"last_name":         u.LastName,
		"tier":              u.Tier,
		"credits_remaining": strconv.Itoa(u.CreditsRemaining),
		"lifetime_checks":   strconv.Itoa(u.LifetimeChecks),
		"created_at":        u.CreatedAt.Format(time.RFC3339Nano),
		"last_active_at":    u.LastActiveAt.Format(time.RFC3339Nano),
	}
	if !u.SubscriptionExpires.IsZero() {
		m["subscription_expires"] = u.SubscriptionExpires.Format(time.RFC3339Nano)
	}
	return m
}

func mapToUser(m map[string]string) *quota.User {
	userID, _ := strconv.ParseInt(m["id"], 10, 64)    //nolint:errcheck // best-effort parse from trusted Redis data
	credits, _ := strconv.Atoi(m["credits_remaining"]) //nolint:errcheck // best-effort parse from trusted Redis data
	lifetime, _ := strconv.Atoi(m["lifetime_checks"])  //nolint:errcheck // best-effort parse from trusted Redis data

	createdAt, _ := time.Parse(time.RFC3339Nano, m["created_at"])      //nolint:errcheck // best-effort parse from trusted Redis data
	lastActiveAt, _ := time.Parse(time.RFC3339Nano, m["last_active_at"]) //nolint:errcheck // best-effort parse from trusted Redis data

	u := &quota.User{
		ID:               userID,
		Username:         m["username"],
		FirstName:        m["first_name"],
		LastName:         m["last_name"],
		Tier:             m["tier"],
		CreditsRemaining: credits,
		LifetimeChecks:   lifetime,
		CreatedAt:        createdAt,
		LastActiveAt:     lastActiveAt,
	}
	if v := m["subscription_expires"]; v != "" {
		u.SubscriptionExpires, _ = time.Parse(time.RFC3339Nano, v) //nolint:errcheck // best-effort parse from trusted Redis data
	}
	return u
}
