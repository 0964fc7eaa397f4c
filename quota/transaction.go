package quota

import (
	"context"
	"time"

	"github.com/djoldoshevv/Turniti/id"
)

// TransactionStatus tracks a payment's progress.
type TransactionStatus string

const (
	// TransactionPending means the payment was initiated but not confirmed.
	TransactionPending TransactionStatus = "pending"
	// TransactionCompleted means the payment settled and credits were granted.
	TransactionCompleted TransactionStatus = "completed"
	// TransactionFailed means the payment was declined or abandoned.
	TransactionFailed TransactionStatus = "failed"
)

// Transaction records one purchase of credits or a subscription. The
// payment provider's wire protocol is out of scope; only the settled
// facts are kept.
type Transaction struct {
	ID        id.TransactionID  `json:"id"`
	UserID    int64             `json:"user_id"`
	Amount    float64           `json:"amount"`
	Currency  string            `json:"currency"`
	Credits   int               `json:"credits"`
	Method    string            `json:"method"`
	Status    TransactionStatus `json:"status"`
	CreatedAt time.Time         `json:"created_at"`
}

// NewTransaction creates a pending transaction for a credit pack purchase.
func NewTransaction(userID int64, amount float64, currency string, credits int, method string) *Transaction {
	return &Transaction{
		ID:        id.NewTransactionID(),
		UserID:    userID,
		Amount:    amount,
		Currency:  currency,
		Credits:   credits,
		Method:    method,
		Status:    TransactionPending,
		CreatedAt: time.Now().UTC(),
	}
}

// TransactionStore persists payment transactions.
type TransactionStore interface {
	// CreateTransaction persists a new transaction.
	CreateTransaction(ctx context.Context, t *Transaction) error

	// UpdateTransactionStatus moves a transaction to a new status.
	UpdateTransactionStatus(ctx context.Context, txnID id.TransactionID, status TransactionStatus) error

	// GetTransaction returns a transaction by id.
	GetTransaction(ctx context.Context, txnID id.TransactionID) (*Transaction, error)

	// TransactionsByUser returns a user's transactions, newest first.
	TransactionsByUser(ctx context.Context, userID int64) ([]*Transaction, error)
}
