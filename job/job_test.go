package job_test

import (
	"testing"

	"github.com/djoldoshevv/Turniti/job"
)

func TestSupportedFormat(t *testing.T) {
	tests := []struct {
		fileName string
		want     bool
	}{
		{"thesis.pdf", true},
		{"essay.docx", true},
		{"notes.TXT", true},
		{"old.doc", true},
		{"draft.odt", true},
		{"paper.rtf", true},
		{"archive.zip", false},
		{"photo.jpg", false},
		{"script.exe", false},
		{"noextension", false},
		{"", false},
	}

	for _, tt := range tests {
		t.Run(tt.fileName, func(t *testing.T) {
			if got := job.SupportedFormat(tt.fileName); got != tt.want {
				t.Errorf("SupportedFormat(%q) = %v, want %v", tt.fileName, got, tt.want)
			}
		})
	}
}

func TestNew(t *testing.T) {
	j := job.New(42, "thesis.pdf", "/tmp/thesis.pdf", 2048)

	if j.ID.IsNil() {
		t.Error("expected a generated job id")
	}
	if j.UserID != 42 {
		t.Errorf("UserID = %d, want 42", j.UserID)
	}
	if j.State != job.StateQueued {
		t.Errorf("State = %q, want %q", j.State, job.StateQueued)
	}
	if j.SubmittedAt.IsZero() {
		t.Error("SubmittedAt should be set")
	}
}

func TestNewOutcome(t *testing.T) {
	j := job.New(7, "essay.docx", "/tmp/essay.docx", 512)
	o := job.NewOutcome(j, job.StatusSuccess)

	if o.ID.IsNil() {
		t.Error("expected a generated outcome id")
	}
	if o.UserID != j.UserID || o.FileName != j.FileName || o.FileSize != j.FileSize {
		t.Errorf("outcome does not mirror job fields: %+v", o)
	}
	if o.Status != job.StatusSuccess {
		t.Errorf("Status = %q, want %q", o.Status, job.StatusSuccess)
	}
}
