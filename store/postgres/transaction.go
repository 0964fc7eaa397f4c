package postgres

import (
	"context"
	"fmt"

	"github.com/djoldoshevv/Turniti"
	"github.com/djoldoshevv/Turniti/id"
	"github.com/djoldoshevv/Turniti/quota"
)

// CreateTransaction persists a new transaction.
func (s *Store) CreateTransaction(ctx context.Context, t *quota.Transaction) error {
	m := toTransactionModel(t)
	if _, err := s.db.NewInsert().Model(m).Exec(ctx); err != nil {
		if isDuplicateKey(err) {
			return turniti.ErrTransactionExists
		}
		return fmt.Errorf("turniti/postgres: create transaction: %w", err)
	}
	return nil
}

// UpdateTransactionStatus moves a transaction to a new status.
func (s *Store) UpdateTransactionStatus(ctx context.Context, txnID id.TransactionID, status quota.TransactionStatus) error {
	res, err := s.db.NewUpdate().Model((*transactionModel)(nil)).
		Set("status = ?", string(status)).
		Where("id = ?", txnID.String()).
		Exec(ctx)
	if err != nil {
		return fmt.Errorf("turniti/postgres: update transaction: %w", err)
	}
	rows, _ := res.RowsAffected() //nolint:errcheck // driver always returns nil
	if rows == 0 {
		return turniti.ErrTransactionNotFound
	}
	return nil
}

// GetTransaction returns a transaction by id.
func (s *Store) GetTransaction(ctx context.Context, txnID id.TransactionID) (*quota.Transaction, error) {
	m := new(transactionModel)
	err := s.db.NewSelect().Model(m).
		Where("id = ?", txnID.String()).
		Limit(1).
		Scan(ctx)
	if err != nil {
		if isNoRows(err) {
			return nil, turniti.ErrTransactionNotFound
		}
		return nil, fmt.Errorf("turniti/postgres: get transaction: %w", err)
	}
	return fromTransactionModel(m)
}

// TransactionsByUser returns a user's transactions, newest first.
func (s *Store) TransactionsByUser(ctx context.Context, userID int64) ([]*quota.Transaction, error) {
	var models []transactionModel
	err := s.db.NewSelect().Model(&models).
		Where("user_id = ?", userID).
		Order("created_at DESC").
		Scan(ctx)
	if err != nil {
		return nil, fmt.Errorf("turniti/postgres: select transactions: %w", err)
	}

	txns := make([]*quota.Transaction, 0, len(models))
	for i := range models {
		t, convErr := fromTransactionModel(&models[i])
		if convErr != nil {
			return nil, convErr
		}
		txns = append(txns, t)
	}
	return txns, nil
}
