package turniti_test

import (
	"context"
	"errors"
	"os"
	"path/filepath"
	"sync/atomic"
	"testing"
	"time"

	"github.com/djoldoshevv/Turniti"
	"github.com/djoldoshevv/Turniti/job"
	"github.com/djoldoshevv/Turniti/quota"
	"github.com/djoldoshevv/Turniti/store/memory"
)

type procFunc func(ctx context.Context, filePath string) (string, error)

func (f procFunc) Process(ctx context.Context, filePath string) (string, error) {
	return f(ctx, filePath)
}

func writeSource(t *testing.T, name string) string {
	t.Helper()
	path := filepath.Join(t.TempDir(), name)
	if err := os.WriteFile(path, []byte("document body"), 0o600); err != nil {
		t.Fatalf("write source: %v", err)
	}
	return path
}

func waitFor(t *testing.T, cond func() bool, msg string) {
	t.Helper()
	deadline := time.Now().Add(5 * time.Second)
	for time.Now().Before(deadline) {
		if cond() {
			return
		}
		time.Sleep(5 * time.Millisecond)
	}
	t.Fatal(msg)
}

func TestRelay_EndToEnd_SubmitProcessDeliver(t *testing.T) {
	s := memory.New()
	artifactDir := t.TempDir()

	var processed atomic.Int64
	relay, err := turniti.New(
		turniti.WithStore(s),
		turniti.WithProcessor(procFunc(func(_ context.Context, _ string) (string, error) {
			n := processed.Add(1)
			path := filepath.Join(artifactDir, "out"+time.Now().Format("150405.000000000")+".pdf")
			if err := os.WriteFile(path, []byte{byte(n)}, 0o600); err != nil {
				return "", err
			}
			return path, nil
		})),
	)
	if err != nil {
		t.Fatalf("turniti.New: %v", err)
	}

	ctx := context.Background()
	if err := relay.Start(ctx); err != nil {
		t.Fatalf("Start: %v", err)
	}

	pos, err := relay.Submit(ctx, 10, "thesis.pdf", writeSource(t, "thesis.pdf"), 100)
	if err != nil {
		t.Fatalf("Submit: %v", err)
	}
	if pos != 1 {
		t.Errorf("position = %d, want 1", pos)
	}

	waitFor(t, func() bool {
		outcomes, _ := s.RecentOutcomes(ctx, 10)
		return len(outcomes) == 1
	}, "job never produced an outcome")

	outcomes, _ := s.RecentOutcomes(ctx, 10)
	if outcomes[0].Status != job.StatusSuccess {
		t.Errorf("status = %q, want %q", outcomes[0].Status, job.StatusSuccess)
	}

	u, _ := relay.Profile(ctx, 10)
	if u.CreditsRemaining != 0 {
		t.Errorf("credits = %d, want 0 after debit", u.CreditsRemaining)
	}
	if u.LifetimeChecks != 1 {
		t.Errorf("lifetime = %d, want 1", u.LifetimeChecks)
	}

	waitFor(t, func() bool { return relay.InFlight() == 0 }, "in-flight never drained")

	if err := relay.Stop(ctx); err != nil {
		t.Fatalf("Stop: %v", err)
	}
}

func TestRelay_SubmitBeforeStart(t *testing.T) {
	relay, err := turniti.New(
		turniti.WithStore(memory.New()),
		turniti.WithProcessor(procFunc(func(_ context.Context, _ string) (string, error) {
			return "", nil
		})),
	)
	if err != nil {
		t.Fatalf("turniti.New: %v", err)
	}

	_, err = relay.Submit(context.Background(), 1, "a.pdf", "/tmp/a.pdf", 1)
	if !errors.Is(err, turniti.ErrNotStarted) {
		t.Errorf("err = %v, want ErrNotStarted", err)
	}
}

func TestRelay_SubmitDuringStopIsSafe(t *testing.T) {
	relay, err := turniti.New(
		turniti.WithStore(memory.New()),
		turniti.WithProcessor(procFunc(func(_ context.Context, _ string) (string, error) {
			return "", errors.New("unused")
		})),
	)
	if err != nil {
		t.Fatalf("turniti.New: %v", err)
	}

	ctx := context.Background()
	if err := relay.Start(ctx); err != nil {
		t.Fatalf("Start: %v", err)
	}
	if err := relay.Start(ctx); !errors.Is(err, turniti.ErrAlreadyStarted) {
		t.Errorf("second Start: err = %v, want ErrAlreadyStarted", err)
	}

	// Submissions race the shutdown the way a front end's goroutines
	// race the signal handler; each must either enqueue or report
	// ErrNotStarted, never anything else.
	done := make(chan struct{})
	go func() {
		defer close(done)
		for i := 0; i < 50; i++ {
			_, err := relay.Submit(ctx, 1, "a.zip", "", 1)
			if err != nil && !errors.Is(err, turniti.ErrNotStarted) {
				t.Errorf("Submit: err = %v, want nil or ErrNotStarted", err)
				return
			}
		}
	}()

	if err := relay.Stop(ctx); err != nil {
		t.Fatalf("Stop: %v", err)
	}
	<-done

	if err := relay.Stop(ctx); !errors.Is(err, turniti.ErrNotStarted) {
		t.Errorf("second Stop: err = %v, want ErrNotStarted", err)
	}
}

func TestRelay_RequiresStoreAndProcessor(t *testing.T) {
	if _, err := turniti.New(); !errors.Is(err, turniti.ErrNoStore) {
		t.Errorf("err = %v, want ErrNoStore", err)
	}

	_, err := turniti.New(turniti.WithStore(memory.New()))
	if !errors.Is(err, turniti.ErrNoProcessor) {
		t.Errorf("err = %v, want ErrNoProcessor", err)
	}
}

func TestRelay_PurchaseLifecycle(t *testing.T) {
	s := memory.New(memory.WithWelcomeCredits(0))
	relay, err := turniti.New(
		turniti.WithStore(s),
		turniti.WithProcessor(procFunc(func(_ context.Context, _ string) (string, error) {
			return "", nil
		})),
	)
	if err != nil {
		t.Fatalf("turniti.New: %v", err)
	}

	ctx := context.Background()
	txn, err := relay.PurchaseCredits(ctx, 7, 4.99, "USD", 10, "card")
	if err != nil {
		t.Fatalf("PurchaseCredits: %v", err)
	}
	if txn.Status != quota.TransactionPending {
		t.Errorf("status = %q, want pending", txn.Status)
	}

	if err := relay.ConfirmPurchase(ctx, txn.ID); err != nil {
		t.Fatalf("ConfirmPurchase: %v", err)
	}

	u, _ := relay.Profile(ctx, 7)
	if u.CreditsRemaining != 10 {
		t.Errorf("credits = %d, want 10 after settle", u.CreditsRemaining)
	}

	got, _ := s.GetTransaction(ctx, txn.ID)
	if got.Status != quota.TransactionCompleted {
		t.Errorf("status = %q, want completed", got.Status)
	}
}

func TestRelay_CancelPurchaseMovesNoCredits(t *testing.T) {
	s := memory.New(memory.WithWelcomeCredits(0))
	relay, err := turniti.New(
		turniti.WithStore(s),
		turniti.WithProcessor(procFunc(func(_ context.Context, _ string) (string, error) {
			return "", nil
		})),
	)
	if err != nil {
		t.Fatalf("turniti.New: %v", err)
	}

	ctx := context.Background()
	txn, err := relay.PurchaseCredits(ctx, 7, 4.99, "USD", 10, "card")
	if err != nil {
		t.Fatalf("PurchaseCredits: %v", err)
	}
	if err := relay.CancelPurchase(ctx, txn.ID); err != nil {
		t.Fatalf("CancelPurchase: %v", err)
	}

	u, _ := relay.Profile(ctx, 7)
	if u.CreditsRemaining != 0 {
		t.Errorf("credits = %d, want 0 after cancel", u.CreditsRemaining)
	}
}

func TestRelay_GrantSubscription(t *testing.T) {
	s := memory.New(memory.WithWelcomeCredits(0))
	relay, err := turniti.New(
		turniti.WithStore(s),
		turniti.WithProcessor(procFunc(func(_ context.Context, _ string) (string, error) {
			return "", nil
		})),
	)
	if err != nil {
		t.Fatalf("turniti.New: %v", err)
	}

	ctx := context.Background()
	if err := relay.GrantSubscription(ctx, 3, "premium", 30); err != nil {
		t.Fatalf("GrantSubscription: %v", err)
	}

	access, err := s.CheckAccess(ctx, 3)
	if err != nil {
		t.Fatalf("CheckAccess: %v", err)
	}
	if !access.Allowed || access.Reason != quota.ReasonSubscription {
		t.Errorf("access = %+v, want allowed via subscription", access)
	}
}
