package job

import (
	"context"
	"time"

	"github.com/djoldoshevv/Turniti/id"
)

// Status classifies a terminal outcome in the audit log.
type Status string

const (
	// StatusSuccess means an artifact was produced and the debit applied.
	StatusSuccess Status = "success"
	// StatusFailed means processing failed or timed out.
	StatusFailed Status = "failed"
	// StatusRejectedUnsupported means the input format was not accepted.
	StatusRejectedUnsupported Status = "rejected_unsupported"
)

// Outcome is one append-only audit log entry, written exactly once per
// job that reached a recordable terminal state. Access denials are not
// recorded here.
type Outcome struct {
	ID        id.OutcomeID `json:"id"`
	UserID    int64        `json:"user_id"`
	FileName  string       `json:"file_name"`
	FileSize  int64        `json:"file_size"`
	Status    Status       `json:"status"`
	CreatedAt time.Time    `json:"created_at"`
}

// NewOutcome builds an outcome record for the given job.
func NewOutcome(j *Job, status Status) *Outcome {
	return &Outcome{
		ID:        id.NewOutcomeID(),
		UserID:    j.UserID,
		FileName:  j.FileName,
		FileSize:  j.FileSize,
		Status:    status,
		CreatedAt: time.Now().UTC(),
	}
}

// OutcomeStore is the append-only sink for outcome records, consumed
// externally for reporting.
type OutcomeStore interface {
	// AppendOutcome persists a new outcome record.
	AppendOutcome(ctx context.Context, o *Outcome) error

	// RecentOutcomes returns the most recent outcomes across all users,
	// newest first.
	RecentOutcomes(ctx context.Context, limit int) ([]*Outcome, error)

	// OutcomesByUser returns a user's most recent outcomes, newest first.
	OutcomesByUser(ctx context.Context, userID int64, limit int) ([]*Outcome, error)
}
