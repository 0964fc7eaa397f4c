package redis

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"

	goredis "github.com/redis/go-redis/v9"

	"github.com/djoldoshevv/Turniti"
	"github.com/djoldoshevv/Turniti/id"
	"github.com/djoldoshevv/Turniti/quota"
)

// CreateTransaction stores the record as JSON and indexes it on the
// user's transaction list.
func (s *Store) CreateTransaction(ctx context.Context, t *quota.Transaction) error {
	data, err := json.Marshal(t)
	if err != nil {
		return fmt.Errorf("turniti/redis: marshal transaction: %w", err)
	}

	key := txnKey(t.ID.String())
	set, err := s.client.SetNX(ctx, key, data, 0).Result()
	if err != nil {
		return fmt.Errorf("turniti/redis: create transaction: %w", err)
	}
	if !set {
		return turniti.ErrTransactionExists
	}

	if err := s.client.LPush(ctx, userTxnsKey(t.UserID), t.ID.String()).Err(); err != nil {
		return fmt.Errorf("turniti/redis: index transaction: %w", err)
	}
	return nil
}

// UpdateTransactionStatus moves a transaction to a new status.
func (s *Store) UpdateTransactionStatus(ctx context.Context, txnID id.TransactionID, status quota.TransactionStatus) error {
	t, err := s.GetTransaction(ctx, txnID)
	if err != nil {
		return err
	}
	t.Status = status

	data, err := json.Marshal(t)
	if err != nil {
		return fmt.Errorf("turniti/redis: marshal transaction: %w", err)
	}
	if err := s.client.Set(ctx, txnKey(txnID.String()), data, 0).Err(); err != nil {
		return fmt.Errorf("turniti/redis: update transaction: %w", err)
	}
	return nil
}

// GetTransaction returns a transaction by id.
func (s *Store) GetTransaction(ctx context.Context, txnID id.TransactionID) (*quota.Transaction, error) {
	raw, err := s.client.Get(ctx, txnKey(txnID.String())).Result()
	if err != nil {
		if errors.Is(err, goredis.Nil) {
			return nil, turniti.ErrTransactionNotFound
		}
		return nil, fmt.Errorf("turniti/redis: get transaction: %w", err)
	}

	t := new(quota.Transaction)
	if uErr := json.Unmarshal([]byte(raw), t); uErr != nil {
		return nil, fmt.Errorf("turniti/redis: unmarshal transaction: %w", uErr)
	}
	return t, nil
}

// TransactionsByUser returns a user's transactions, newest first.
func (s *Store) TransactionsByUser(ctx context.Context, userID int64) ([]*quota.Transaction, error) {
	ids, err := s.client.LRange(ctx, userTxnsKey(userID), 0, -1).Result()
	if err != nil {
		return nil, fmt.Errorf("turniti/redis: range transactions: %w", err)
	}

	txns := make([]*quota.Transaction, 0, len(ids))
	for _, rawID := range ids {
		parsedID, pErr := id.ParseTransactionID(rawID)
		if pErr != nil {
			return nil, fmt.Errorf("turniti/redis: parse transaction id %q: %w", rawID, pErr)
		}
		t, gErr := s.GetTransaction(ctx, parsedID)
		if gErr != nil {
			return nil, gErr
		}
		txns = append(txns, t)
	}
	return txns, nil
}
