package postgres

import (
	"context"
	"fmt"

	"github.com/uptrace/bun"

	"github.com/djoldoshevv/Turniti/job"
)

// AppendOutcome persists a new outcome record.
func (s *Store) AppendOutcome(ctx context.Context, o *job.Outcome) error {
	m := toOutcomeModel(o)
	if _, err := s.db.NewInsert().Model(m).Exec(ctx); err != nil {
		return fmt.Errorf("turniti/postgres: append outcome: %w", err)
	}
	return nil
}

// RecentOutcomes returns the most recent outcomes across all users,
// newest first.
func (s *Store) RecentOutcomes(ctx context.Context, limit int) ([]*job.Outcome, error) {
	return s.selectOutcomes(ctx, limit, func(q *bun.SelectQuery) *bun.SelectQuery {
		return q
	})
}

// OutcomesByUser returns a user's most recent outcomes, newest first.
func (s *Store) OutcomesByUser(ctx context.Context, userID int64, limit int) ([]*job.Outcome, error) {
	return s.selectOutcomes(ctx, limit, func(q *bun.SelectQuery) *bun.SelectQuery {
		return q.Where("user_id = ?", userID)
	})
}

func (s *Store) selectOutcomes(ctx context.Context, limit int, filter func(*bun.SelectQuery) *bun.SelectQuery) ([]*job.Outcome, error) {
	var models []outcomeModel
	q := s.db.NewSelect().Model(&models).
		Order("created_at DESC")
	if limit > 0 {
		q = q.Limit(limit)
	}
	if err := filter(q).Scan(ctx); err != nil {
		return nil, fmt.Errorf("turniti/postgres: select outcomes: %w", err)
	}

	outcomes := make([]*job.Outcome, 0, len(models))
	for i := range models {
		o, err := fromOutcomeModel(&models[i])
		if err != nil {
			return nil, err
		}
		outcomes = append(outcomes, o)
	}
	return outcomes, nil
}
