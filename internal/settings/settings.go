package settings

import (
	"context"
	"encoding/json"
	"errors"

	log "github.com/sirupsen/logrus"

	"github.com/pitchsmith/pitchsmith/internal/models"

	"gorm.io/gorm"
)

// Setting keys recognized by the runtime.
const (
	// KeyQuota overrides generation quota limits and the reset period.
	KeyQuota = "quota"
	// KeyRateLimit overrides request rate limiting.
	KeyRateLimit = "rate-limit"
	// KeySiteName overrides the displayed site name.
	KeySiteName = "site-name"
)

// DefaultSiteName is used when no site name setting exists.
const DefaultSiteName = "PitchSmith"

// Quota holds generation quota settings. A limit of zero or below disables
// the gate for that artifact kind.
type Quota struct {
	PeriodDays int            `json:"period_days"` // Rolling reset period in days.
	Limits     map[string]int `json:"limits"`      // Per-kind usage limits.
}

// RateLimit holds request rate limit settings for generation endpoints.
type RateLimit struct {
	PerSecond     int    `json:"per_second"`     // Allowed requests per user per second, 0 disables.
	RedisEnabled  bool   `json:"redis_enabled"`  // Whether to use the Redis backend.
	RedisAddr     string `json:"redis_addr"`     // Redis address host:port.
	RedisPassword string `json:"redis_password"` // Redis password.
	RedisPrefix   string `json:"redis_prefix"`   // Key prefix for limiter entries.
	RedisDB       int    `json:"redis_db"`       // Redis database index.
}

// DefaultQuota returns the built-in quota settings.
func DefaultQuota() Quota {
	return Quota{
		PeriodDays: 30,
		Limits: map[string]int{
			models.KindProposal:   10,
			models.KindBuyerReply: 10,
			models.KindProfile:    2,
			models.KindChatReply:  30,
		},
	}
}

// Store reads runtime settings, layering database rows over configured
// defaults. It is injected wherever settings are needed rather than held as
// process-wide state.
type Store struct {
	db       *gorm.DB
	defaults Defaults
}

// Defaults holds the config-file settings used when no database row exists.
type Defaults struct {
	Quota     Quota
	RateLimit RateLimit
}

// NewStore constructs a settings store. Zero-valued quota defaults are
// replaced with the built-in ones.
func NewStore(db *gorm.DB, defaults Defaults) *Store {
	if defaults.Quota.PeriodDays <= 0 {
		defaults.Quota.PeriodDays = DefaultQuota().PeriodDays
	}
	if len(defaults.Quota.Limits) == 0 {
		defaults.Quota.Limits = DefaultQuota().Limits
	}
	return &Store{db: db, defaults: defaults}
}

// Quota returns the effective quota settings.
func (s *Store) Quota(ctx context.Context) Quota {
	out := s.defaults.Quota
	var override Quota
	if s.load(ctx, KeyQuota, &override) {
		if override.PeriodDays > 0 {
			out.PeriodDays = override.PeriodDays
		}
		if len(override.Limits) > 0 {
			merged := make(map[string]int, len(out.Limits))
			for kind, limit := range out.Limits {
				merged[kind] = limit
			}
			for kind, limit := range override.Limits {
				merged[kind] = limit
			}
			out.Limits = merged
		}
	}
	return out
}

// RateLimit returns the effective rate limit settings.
func (s *Store) RateLimit(ctx context.Context) RateLimit {
	out := s.defaults.RateLimit
	var override RateLimit
	if s.load(ctx, KeyRateLimit, &override) {
		out = override
	}
	return out
}

// load unmarshals a setting row into dst, reporting whether a row existed.
func (s *Store) load(ctx context.Context, key string, dst any) bool {
	if s == nil || s.db == nil {
		return false
	}
	var row models.Setting
	errFind := s.db.WithContext(ctx).Where("key = ?", key).First(&row).Error
	if errFind != nil {
		if !errors.Is(errFind, gorm.ErrRecordNotFound) {
			log.WithError(errFind).Warn("settings: load " + key + " failed, using defaults")
		}
		return false
	}
	if len(row.Value) == 0 {
		return false
	}
	if errUnmarshal := json.Unmarshal(row.Value, dst); errUnmarshal != nil {
		return false
	}
	return true
}
