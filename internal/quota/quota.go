package quota

import (
	"context"
	"errors"
	"fmt"
	"math"
	"time"

	"github.com/pitchsmith/pitchsmith/internal/models"
	"github.com/pitchsmith/pitchsmith/internal/settings"

	"gorm.io/gorm"
	"gorm.io/gorm/clause"
)

// SettingsProvider supplies the latest quota settings.
type SettingsProvider func(ctx context.Context) settings.Quota

// Result is the outcome of a quota check for one artifact kind.
type Result struct {
	Allowed   bool       // Whether a generation may proceed.
	Limit     int        // Effective limit, 0 means ungated.
	Used      int        // Used count within the current period.
	Remaining int        // Remaining capacity, -1 when ungated.
	ResetAt   *time.Time // Next reset timestamp, nil before first usage.
	Reason    string     // Human-readable denial reason, empty when allowed.
}

// DaysUntilReset returns whole days until the reset timestamp, rounded up.
// Zero when no reset is pending.
func (r Result) DaysUntilReset(now time.Time) int {
	if r.ResetAt == nil || !now.Before(*r.ResetAt) {
		return 0
	}
	return int(math.Ceil(r.ResetAt.Sub(now).Hours() / 24))
}

// Manager tracks per-user generation counts against a rolling reset window.
// Counters share one reset timestamp per user and are lazily treated as zero
// once the reset passes; the stored row is only rewritten on the next
// recorded usage.
type Manager struct {
	db       *gorm.DB
	provider SettingsProvider
	nowFn    func() time.Time
}

// NewManager constructs a Manager with default dependencies when nil.
func NewManager(db *gorm.DB, provider SettingsProvider, nowFn func() time.Time) *Manager {
	if provider == nil {
		provider = func(context.Context) settings.Quota { return settings.DefaultQuota() }
	}
	if nowFn == nil {
		nowFn = func() time.Time { return time.Now().UTC() }
	}
	return &Manager{db: db, provider: provider, nowFn: nowFn}
}

// Check reports whether the user has remaining capacity for the artifact kind.
func (m *Manager) Check(ctx context.Context, userID uint64, kind string) (Result, error) {
	if m == nil || m.db == nil {
		return Result{}, errors.New("quota: manager not initialized")
	}

	cfg := m.provider(ctx)
	limit := cfg.Limits[kind]
	if limit <= 0 {
		return Result{Allowed: true, Remaining: -1}, nil
	}

	now := m.nowFn()
	row, errLoad := m.loadCounter(ctx, userID)
	if errLoad != nil {
		return Result{}, errLoad
	}

	used := 0
	var resetAt *time.Time
	if row != nil {
		resetAt = row.ResetAt
		used = row.CountMap()[kind]
		if resetAt != nil && !now.Before(*resetAt) {
			// Reset is due: counters count as zero until the next write.
			used = 0
			resetAt = nil
		}
	}

	remaining := limit - used
	if remaining < 0 {
		remaining = 0
	}

	result := Result{
		Allowed:   remaining > 0,
		Limit:     limit,
		Used:      used,
		Remaining: remaining,
		ResetAt:   resetAt,
	}
	if !result.Allowed {
		result.Reason = fmt.Sprintf("monthly limit of %d reached for %s", limit, kind)
	}
	return result, nil
}

// Record increments the user's counter for the artifact kind, starting a
// fresh period when the previous one has elapsed. Call only after a
// successful generation; there is no optimistic pre-decrement.
func (m *Manager) Record(ctx context.Context, userID uint64, kind string) error {
	if m == nil || m.db == nil {
		return errors.New("quota: manager not initialized")
	}
	return m.RecordTx(ctx, m.db, userID, kind)
}

// RecordTx is Record running inside the caller's transaction so usage can be
// committed atomically with artifact persistence.
func (m *Manager) RecordTx(ctx context.Context, tx *gorm.DB, userID uint64, kind string) error {
	now := m.nowFn()
	period := time.Duration(m.provider(ctx).PeriodDays) * 24 * time.Hour
	if period <= 0 {
		period = 30 * 24 * time.Hour
	}

	row, errLoad := m.loadCounterWith(ctx, tx, userID)
	if errLoad != nil {
		return errLoad
	}

	counts := map[string]int{}
	resetAt := now.Add(period)
	if row != nil && row.ResetAt != nil && now.Before(*row.ResetAt) {
		counts = row.CountMap()
		resetAt = *row.ResetAt
	}
	counts[kind]++

	record := models.UsageCounter{
		UserID:    userID,
		Counts:    models.EncodeCountMap(counts),
		ResetAt:   &resetAt,
		UpdatedAt: now,
	}
	if errUpsert := tx.WithContext(ctx).Clauses(clause.OnConflict{
		Columns:   []clause.Column{{Name: "user_id"}},
		DoUpdates: clause.AssignmentColumns([]string{"counts", "reset_at", "updated_at"}),
	}).Create(&record).Error; errUpsert != nil {
		return fmt.Errorf("quota: record usage: %w", errUpsert)
	}
	return nil
}

// loadCounter fetches the user's counter row, nil when absent.
func (m *Manager) loadCounter(ctx context.Context, userID uint64) (*models.UsageCounter, error) {
	return m.loadCounterWith(ctx, m.db, userID)
}

func (m *Manager) loadCounterWith(ctx context.Context, tx *gorm.DB, userID uint64) (*models.UsageCounter, error) {
	var row models.UsageCounter
	errFind := tx.WithContext(ctx).Where("user_id = ?", userID).First(&row).Error
	if errFind != nil {
		if errors.Is(errFind, gorm.ErrRecordNotFound) {
			return nil, nil
		}
		return nil, fmt.Errorf("quota: load counter: %w", errFind)
	}
	return &row, nil
}
