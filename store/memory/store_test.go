package memory_test

import (
	"context"
	"errors"
	"testing"

	"github.com/djoldoshevv/Turniti"
	"github.com/djoldoshevv/Turniti/job"
	"github.com/djoldoshevv/Turniti/quota"
	"github.com/djoldoshevv/Turniti/store/memory"
)

func TestGetOrCreateGrantsWelcomeCredit(t *testing.T) {
	s := memory.New()
	ctx := context.Background()

	u, err := s.GetOrCreate(ctx, 1)
	if err != nil {
		t.Fatalf("get or create: %v", err)
	}
	if u.CreditsRemaining != memory.DefaultWelcomeCredits {
		t.Errorf("credits = %d, want %d", u.CreditsRemaining, memory.DefaultWelcomeCredits)
	}
	if u.Tier != quota.TierFree {
		t.Errorf("tier = %q, want %q", u.Tier, quota.TierFree)
	}

	// Second lookup must not re-grant.
	again, err := s.GetOrCreate(ctx, 1)
	if err != nil {
		t.Fatalf("get or create again: %v", err)
	}
	if again.CreditsRemaining != u.CreditsRemaining {
		t.Errorf("credits changed on re-lookup: %d != %d", again.CreditsRemaining, u.CreditsRemaining)
	}
}

func TestCheckAccessReasons(t *testing.T) {
	s := memory.New(memory.WithWelcomeCredits(0))
	ctx := context.Background()

	access, err := s.CheckAccess(ctx, 1)
	if err != nil {
		t.Fatalf("check access: %v", err)
	}
	if access.Allowed || access.Reason != quota.ReasonNone {
		t.Errorf("broke user access = %+v, want denied/none", access)
	}

	if err := s.CreditFree(ctx, 1, 1); err != nil {
		t.Fatalf("credit: %v", err)
	}
	access, _ = s.CheckAccess(ctx, 1)
	if !access.Allowed || access.Reason != quota.ReasonFreeCredits {
		t.Errorf("credited user access = %+v, want allowed/free_credits", access)
	}

	if err := s.AddSubscription(ctx, 1, "premium", 30); err != nil {
		t.Fatalf("subscribe: %v", err)
	}
	access, _ = s.CheckAccess(ctx, 1)
	if !access.Allowed || access.Reason != quota.ReasonSubscription {
		t.Errorf("subscribed user access = %+v, want allowed/subscription", access)
	}
}

func TestDebitAndCredit(t *testing.T) {
	s := memory.New()
	ctx := context.Background()

	if _, err := s.GetOrCreate(ctx, 1); err != nil {
		t.Fatalf("get or create: %v", err)
	}

	if err := s.DebitOne(ctx, 1); err != nil {
		t.Fatalf("debit: %v", err)
	}
	u, _ := s.GetOrCreate(ctx, 1)
	if u.CreditsRemaining != 0 {
		t.Errorf("credits after debit = %d, want 0", u.CreditsRemaining)
	}
	if u.LifetimeChecks != 1 {
		t.Errorf("lifetime after debit = %d, want 1", u.LifetimeChecks)
	}

	// Balance floors at zero even if debited again (subscription path).
	if err := s.DebitOne(ctx, 1); err != nil {
		t.Fatalf("second debit: %v", err)
	}
	u, _ = s.GetOrCreate(ctx, 1)
	if u.CreditsRemaining != 0 {
		t.Errorf("credits after floor debit = %d, want 0", u.CreditsRemaining)
	}
	if u.LifetimeChecks != 2 {
		t.Errorf("lifetime = %d, want 2", u.LifetimeChecks)
	}

	if err := s.CreditFree(ctx, 1, 5); err != nil {
		t.Fatalf("credit: %v", err)
	}
	u, _ = s.GetOrCreate(ctx, 1)
	if u.CreditsRemaining != 5 {
		t.Errorf("credits after pack = %d, want 5", u.CreditsRemaining)
	}
}

func TestOutcomeQueries(t *testing.T) {
	s := memory.New()
	ctx := context.Background()

	for i, userID := range []int64{1, 2, 1} {
		j := job.New(userID, "doc.pdf", "/tmp/doc.pdf", int64(i))
		if err := s.AppendOutcome(ctx, job.NewOutcome(j, job.StatusSuccess)); err != nil {
			t.Fatalf("append: %v", err)
		}
	}

	recent, err := s.RecentOutcomes(ctx, 10)
	if err != nil {
		t.Fatalf("recent: %v", err)
	}
	if len(recent) != 3 {
		t.Fatalf("recent len = %d, want 3", len(recent))
	}
	// Newest first.
	if recent[0].FileSize != 2 {
		t.Errorf("recent[0].FileSize = %d, want 2", recent[0].FileSize)
	}

	byUser, err := s.OutcomesByUser(ctx, 1, 10)
	if err != nil {
		t.Fatalf("by user: %v", err)
	}
	if len(byUser) != 2 {
		t.Errorf("user 1 outcomes = %d, want 2", len(byUser))
	}

	limited, _ := s.RecentOutcomes(ctx, 1)
	if len(limited) != 1 {
		t.Errorf("limited outcomes = %d, want 1", len(limited))
	}
}

func TestTransactions(t *testing.T) {
	s := memory.New()
	ctx := context.Background()

	txn := quota.NewTransaction(1, 5.0, "USD", 1, "stars")
	if err := s.CreateTransaction(ctx, txn); err != nil {
		t.Fatalf("create: %v", err)
	}

	if err := s.UpdateTransactionStatus(ctx, txn.ID, quota.TransactionCompleted); err != nil {
		t.Fatalf("update status: %v", err)
	}

	got, err := s.GetTransaction(ctx, txn.ID)
	if err != nil {
		t.Fatalf("get: %v", err)
	}
	if got.Status != quota.TransactionCompleted {
		t.Errorf("status = %q, want %q", got.Status, quota.TransactionCompleted)
	}

	list, err := s.TransactionsByUser(ctx, 1)
	if err != nil {
		t.Fatalf("list: %v", err)
	}
	if len(list) != 1 {
		t.Errorf("list len = %d, want 1", len(list))
	}

	missing := quota.NewTransaction(2, 1, "USD", 1, "stars")
	if err := s.UpdateTransactionStatus(ctx, missing.ID, quota.TransactionFailed); !errors.Is(err, turniti.ErrTransactionNotFound) {
		t.Errorf("unknown txn err = %v, want ErrTransactionNotFound", err)
	}
}

func TestStats(t *testing.T) {
	s := memory.New()
	ctx := context.Background()

	for userID := int64(1); userID <= 3; userID++ {
		if _, err := s.GetOrCreate(ctx, userID); err != nil {
			t.Fatalf("get or create: %v", err)
		}
	}
	if err := s.AddSubscription(ctx, 2, "premium", 30); err != nil {
		t.Fatalf("subscribe: %v", err)
	}
	if err := s.DebitOne(ctx, 1); err != nil {
		t.Fatalf("debit: %v", err)
	}

	st, err := s.Stats(ctx)
	if err != nil {
		t.Fatalf("stats: %v", err)
	}
	if st.TotalUsers != 3 {
		t.Errorf("total users = %d, want 3", st.TotalUsers)
	}
	if st.ActiveSubscriptions != 1 {
		t.Errorf("active subscriptions = %d, want 1", st.ActiveSubscriptions)
	}
	if st.UsersToday != 3 {
		t.Errorf("users today = %d, want 3", st.UsersToday)
	}
	if st.TotalProcessed != 1 {
		t.Errorf("total processed = %d, want 1", st.TotalProcessed)
	}
}
