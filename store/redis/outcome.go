package redis

import (
	"context"
	"encoding/json"
	"fmt"

	"github.com/djoldoshevv/Turniti/job"
)

// AppendOutcome pushes the record onto the global and per-user lists,
// newest first.
func (s *Store) AppendOutcome(ctx context.Context, o *job.Outcome) error {
	data, err := json.Marshal(o)
	if err != nil {
		return fmt.Errorf("turniti/redis: marshal outcome: %w", err)
	}

	pipe := s.client.TxPipeline()
	pipe.LPush(ctx, outcomesKey, data)
	pipe.LPush(ctx, userOutcomesKey(o.UserID), data)
	if _, err := pipe.Exec(ctx); err != nil {
		return fmt.Errorf("turniti/redis: append outcome: %w", err)
	}
	return nil
}

// RecentOutcomes returns the most recent outcomes across all users,
// newest first.
func (s *Store) RecentOutcomes(ctx context.Context, limit int) ([]*job.Outcome, error) {
	return s.rangeOutcomes(ctx, outcomesKey, limit)
}

// OutcomesByUser returns a user's most recent outcomes, newest first.
func (s *Store) OutcomesByUser(ctx context.Context, userID int64, limit int) ([]*job.Outcome, error) {
	return s.rangeOutcomes(ctx, userOutcomesKey(userID), limit)
}

func (s *Store) rangeOutcomes(ctx context.Context, key string, limit int) ([]*job.Outcome, error) {
	stop := int64(-1)
	if limit > 0 {
		stop = int64(limit) - 1
	}

	raws, err := s.client.LRange(ctx, key, 0, stop).Result()
	if err != nil {
		return nil, fmt.Errorf("turniti/redis: range outcomes: %w", err)
	}

	outcomes := make([]*job.Outcome, 0, len(raws))
	for _, raw := range raws {
		o := new(job.Outcome)
		if uErr := json.Unmarshal([]byte(raw), o); uErr != nil {
			return nil, fmt.Errorf("turniti/redis: unmarshal outcome: %w", uErr)
		}
		outcomes = append(outcomes, o)
	}
	return outcomes, nil
}
