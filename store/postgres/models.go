package postgres

import (
	"fmt"
	"time"

	"github.com/uptrace/bun"

	"github.com/djoldoshevv/Turniti/id"
	"github.com/djoldoshevv/Turniti/job"
	"github.com/djoldoshevv/Turniti/quota"
)

// ── User model ────────────────────────────────────────────────────

type userModel struct {
	bun.BaseModel `bun:"table:turniti_users"`

	ID                  int64     `bun:"id,pk"`
	Username            string    `bun:"username"`
	FirstName           string    `bun:"first_name"`
	LastName            string    `bun:"last_name"`
	Tier                string    `bun:"tier,notnull,default:'free'"`
	SubscriptionExpires time.Time `bun:"subscription_expires,nullzero"`
	CreditsRemaining    int       `bun:"credits_remaining,notnull,default:0"`
	LifetimeChecks      int       `bun:"lifetime_checks,notnull,default:0"`
	CreatedAt           time.Time `bun:"created_at,notnull,default:current_timestamp"`
	LastActiveAt        time.Time `bun:"last_active_at,notnull,default:current_timestamp"`
}

func fromUserModel(m *userModel) *quota.User {
	return &quota.User{
		ID:                  m.ID,
		Username:            m.Username,
		FirstName:           m.FirstName,
		LastName:            m.LastName,
		Tier:                m.Tier,
		SubscriptionExpires: m.SubscriptionExpires,
		CreditsRemaining:    m.CreditsRemaining,
		LifetimeChecks:      m.LifetimeChecks,
		CreatedAt:           m.CreatedAt,
		LastActiveAt:        m.LastActiveAt,
	}
}

// ── Outcome model ─────────────────────────────────────────────────

type outcomeModel struct {
	bun.BaseModel `bun:"table:turniti_outcomes"`

	ID        string    `bun:"id,pk"`
	UserID    int64     `bun:"user_id,notnull"`
	FileName  string    `bun:"file_name,notnull"`
	FileSize  int64     `bun:"file_size,notnull,default:0"`
	Status    string    `bun:"status,notnull"`
	CreatedAt time.Time `bun:"created_at,notnull,default:current_timestamp"`
}

func toOutcomeModel(o *job.Outcome) *outcomeModel {
	return &outcomeModel{
		ID:        o.ID.String(),
		UserID:    o.UserID,
		FileName:  o.FileName,
		FileSize:  o.FileSize,
		Status:    string(o.Status),
		CreatedAt: o.CreatedAt,
	}
}

func fromOutcomeModel(m *outcomeModel) (*job.Outcome, error) {
	parsedID, err := id.ParseOutcomeID(m.ID)
	if err != nil {
		return nil, fmt.Errorf("turniti/postgres: parse outcome id %q: %w", m.ID, err)
	}
	return &job.Outcome{
		ID:        parsedID,
		UserID:    m.UserID,
		FileName:  m.FileName,
		FileSize:  m.FileSize,
		Status:    job.Status(m.Status),
		CreatedAt: m.CreatedAt,
	}, nil
}

// ── Transaction model ─────────────────────────────────────────────

type transactionModel struct {
	bun.BaseModel `bun:"table:turniti_transactions"`

	ID        string    `bun:"id,pk"`
	UserID    int64     `bun:"user_id,notnull"`
	Amount    float64   `bun:"amount,notnull,default:0"`
	Currency  string    `bun:"currency,notnull"`
	Credits   int       `bun:"credits,notnull,default:0"`
	Method    string    `bun:"method"`
	Status    string    `bun:"status,notnull,default:'pending'"`
	CreatedAt time.Time `bun:"created_at,notnull,default:current_timestamp"`
}

func toTransactionModel(t *quota.Transaction) *transactionModel {
	return &transactionModel{
		ID:        t.ID.String(),
		UserID:    t.UserID,
		Amount:    t.Amount,
		Currency:  t.Currency,
		Credits:   t.Credits,
		Method:    t.Method,
		Status:    string(t.Status),
		CreatedAt: t.CreatedAt,
	}
}

func fromTransactionModel(m *transactionModel) (*quota.Transaction, error) {
	parsedID, err := id.ParseTransactionID(m.ID)
	if err != nil {
		return nil, fmt.Errorf("turniti/postgres: parse transaction id %q: %w", m.ID, err)
	}
	return &quota.Transaction{
		ID:        parsedID,
		UserID:    m.UserID,
		Amount:    m.Amount,
		Currency:  m.Currency,
		Credits:   m.Credits,
		Method:    m.Method,
		Status:    quota.TransactionStatus(m.Status),
		CreatedAt: m.CreatedAt,
	}, nil
}
