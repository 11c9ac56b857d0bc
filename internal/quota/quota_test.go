package quota

import (
	"context"
	"path/filepath"
	"testing"
	"time"

	"github.com/pitchsmith/pitchsmith/internal/db"
	"github.com/pitchsmith/pitchsmith/internal/models"
	"github.com/pitchsmith/pitchsmith/internal/settings"
)

func openTestManager(t *testing.T, quota settings.Quota, nowFn func() time.Time) *Manager {
	t.Helper()
	dsn := "file:" + filepath.Join(t.TempDir(), "quota-test.db")
	conn, errOpen := db.Open(dsn)
	if errOpen != nil {
		t.Fatalf("open db: %v", errOpen)
	}
	if errMigrate := db.Migrate(conn); errMigrate != nil {
		t.Fatalf("migrate: %v", errMigrate)
	}
	provider := func(context.Context) settings.Quota { return quota }
	return NewManager(conn, provider, nowFn)
}

func TestCheckNewUserHasFullCapacity(t *testing.T) {
	mgr := openTestManager(t, settings.DefaultQuota(), nil)

	check, errCheck := mgr.Check(context.Background(), 1, models.KindProposal)
	if errCheck != nil {
		t.Fatalf("check: %v", errCheck)
	}
	if !check.Allowed {
		t.Fatalf("expected new user to be allowed")
	}
	if check.Used != 0 || check.Remaining != 10 {
		t.Fatalf("expected used=0 remaining=10, got used=%d remaining=%d", check.Used, check.Remaining)
	}
	if check.ResetAt != nil {
		t.Fatalf("expected no reset timestamp before first usage")
	}
}

func TestRecordDecrementsRemainingUntilDenied(t *testing.T) {
	quota := settings.Quota{PeriodDays: 30, Limits: map[string]int{models.KindProfile: 2}}
	mgr := openTestManager(t, quota, nil)
	ctx := context.Background()

	for i := 0; i < 2; i++ {
		check, errCheck := mgr.Check(ctx, 7, models.KindProfile)
		if errCheck != nil {
			t.Fatalf("check %d: %v", i, errCheck)
		}
		if !check.Allowed {
			t.Fatalf("expected call %d to be allowed", i)
		}
		if errRecord := mgr.Record(ctx, 7, models.KindProfile); errRecord != nil {
			t.Fatalf("record %d: %v", i, errRecord)
		}
	}

	check, errCheck := mgr.Check(ctx, 7, models.KindProfile)
	if errCheck != nil {
		t.Fatalf("final check: %v", errCheck)
	}
	if check.Allowed {
		t.Fatalf("expected limit of 2 to be exhausted")
	}
	if check.Reason == "" {
		t.Fatalf("expected a denial reason")
	}
}

func TestCountersAreIndependentPerKind(t *testing.T) {
	quota := settings.Quota{PeriodDays: 30, Limits: map[string]int{
		models.KindProposal:   1,
		models.KindBuyerReply: 5,
	}}
	mgr := openTestManager(t, quota, nil)
	ctx := context.Background()

	if errRecord := mgr.Record(ctx, 3, models.KindProposal); errRecord != nil {
		t.Fatalf("record proposal: %v", errRecord)
	}

	proposal, _ := mgr.Check(ctx, 3, models.KindProposal)
	if proposal.Allowed {
		t.Fatalf("expected proposal bucket exhausted")
	}
	buyerReply, _ := mgr.Check(ctx, 3, models.KindBuyerReply)
	if !buyerReply.Allowed || buyerReply.Used != 0 {
		t.Fatalf("expected buyer-reply bucket untouched, got used=%d", buyerReply.Used)
	}
}

func TestLazyResetAfterPeriodElapsed(t *testing.T) {
	now := time.Date(2026, 3, 1, 12, 0, 0, 0, time.UTC)
	nowFn := func() time.Time { return now }
	quota := settings.Quota{PeriodDays: 30, Limits: map[string]int{models.KindProposal: 1}}
	mgr := openTestManager(t, quota, nowFn)
	ctx := context.Background()

	if errRecord := mgr.Record(ctx, 9, models.KindProposal); errRecord != nil {
		t.Fatalf("record: %v", errRecord)
	}
	check, _ := mgr.Check(ctx, 9, models.KindProposal)
	if check.Allowed {
		t.Fatalf("expected exhausted before reset")
	}

	// Advance past the reset; the stored row must count as zero without a write.
	now = now.Add(31 * 24 * time.Hour)
	check, _ = mgr.Check(ctx, 9, models.KindProposal)
	if !check.Allowed || check.Used != 0 {
		t.Fatalf("expected fresh capacity after reset, got allowed=%v used=%d", check.Allowed, check.Used)
	}

	// Next record starts a fresh period with only this usage counted.
	if errRecord := mgr.Record(ctx, 9, models.KindProposal); errRecord != nil {
		t.Fatalf("record after reset: %v", errRecord)
	}
	check, _ = mgr.Check(ctx, 9, models.KindProposal)
	if check.Used != 1 {
		t.Fatalf("expected used=1 in new period, got %d", check.Used)
	}
	if check.ResetAt == nil || !check.ResetAt.After(now) {
		t.Fatalf("expected a future reset timestamp")
	}
}

func TestZeroLimitDisablesGate(t *testing.T) {
	quota := settings.Quota{PeriodDays: 30, Limits: map[string]int{}}
	mgr := openTestManager(t, quota, nil)

	check, errCheck := mgr.Check(context.Background(), 5, models.KindChatReply)
	if errCheck != nil {
		t.Fatalf("check: %v", errCheck)
	}
	if !check.Allowed || check.Remaining != -1 {
		t.Fatalf("expected ungated kind, got allowed=%v remaining=%d", check.Allowed, check.Remaining)
	}
}

func TestDaysUntilResetRoundsUp(t *testing.T) {
	now := time.Date(2026, 3, 1, 0, 0, 0, 0, time.UTC)
	resetAt := now.Add(36 * time.Hour)
	result := Result{ResetAt: &resetAt}
	if days := result.DaysUntilReset(now); days != 2 {
		t.Fatalf("expected 2 days, got %d", days)
	}
	if days := result.DaysUntilReset(resetAt); days != 0 {
		t.Fatalf("expected 0 days at reset, got %d", days)
	}
}
