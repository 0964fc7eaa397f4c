package job

import (
	"path/filepath"
	"strings"
	"time"

	"github.com/djoldoshevv/Turniti/id"
)

// State represents the lifecycle state of a job.
type State string

const (
	// StateQueued means the job is waiting in its owner's queue.
	StateQueued State = "queued"
	// StateAdmitted means the scheduler handed the job to a runner.
	StateAdmitted State = "admitted"
	// StateProcessing means the external processor is working on the file.
	StateProcessing State = "processing"
	// StateSettled means the artifact was produced and the debit applied.
	StateSettled State = "settled"
	// StateDone means the artifact was delivered and the job is finished.
	StateDone State = "done"
	// StateRejected means the input format is not supported. No debit.
	StateRejected State = "rejected"
	// StateFailed means processing failed or timed out. The ledger is
	// untouched: nothing was debited, so nothing is owed.
	StateFailed State = "failed"
	// StateNoAccess means the owner had no subscription and no credits
	// when the job was admitted. No outcome record is written for it.
	StateNoAccess State = "no_access"
)

// Job is a single file-processing request. It is owned by its user's
// queue until dequeued, then exclusively by the runner executing it.
type Job struct {
	ID          id.JobID  `json:"id"`
	UserID      int64     `json:"user_id"`
	FileName    string    `json:"file_name"`
	FilePath    string    `json:"file_path"`
	FileSize    int64     `json:"file_size"`
	State       State     `json:"state"`
	SubmittedAt time.Time `json:"submitted_at"`
}

// New creates a queued job for the given submission.
func New(userID int64, fileName, filePath string, fileSize int64) *Job {
	return &Job{
		ID:          id.NewJobID(),
		UserID:      userID,
		FileName:    fileName,
		FilePath:    filePath,
		FileSize:    fileSize,
		State:       StateQueued,
		SubmittedAt: time.Now().UTC(),
	}
}

// supportedExts are the document formats the external processor accepts.
var supportedExts = map[string]bool{
	".pdf":  true,
	".doc":  true,
	".docx": true,
	".txt":  true,
	".rtf":  true,
	".odt":  true,
}

// SupportedFormat reports whether the file's extension is accepted by
// the external processor. The check is by extension only; content
// sniffing is left to the processor.
func SupportedFormat(fileName string) bool {
	return supportedExts[strings.ToLower(filepath.Ext(fileName))]
}
