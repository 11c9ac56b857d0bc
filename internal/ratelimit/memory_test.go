package ratelimit

import (
	"context"
	"testing"
	"time"

	"github.com/pitchsmith/pitchsmith/internal/settings"
)

func TestMemoryLimiterEnforcesWindow(t *testing.T) {
	limiter := NewMemoryLimiter()
	ctx := context.Background()
	now := time.Date(2026, 3, 1, 12, 0, 0, 0, time.UTC)

	for i := 0; i < 2; i++ {
		result, errAllow := limiter.Allow(ctx, "u:1", 2, now)
		if errAllow != nil {
			t.Fatalf("allow %d: %v", i, errAllow)
		}
		if !result.Allowed {
			t.Fatalf("expected request %d allowed", i)
		}
	}

	result, _ := limiter.Allow(ctx, "u:1", 2, now)
	if result.Allowed {
		t.Fatalf("expected third request in same second denied")
	}

	// A new second opens a fresh window.
	result, _ = limiter.Allow(ctx, "u:1", 2, now.Add(time.Second))
	if !result.Allowed {
		t.Fatalf("expected fresh window to allow")
	}
}

func TestMemoryLimiterKeysAreIndependent(t *testing.T) {
	limiter := NewMemoryLimiter()
	ctx := context.Background()
	now := time.Now()

	if result, _ := limiter.Allow(ctx, "u:1", 1, now); !result.Allowed {
		t.Fatalf("expected first key allowed")
	}
	if result, _ := limiter.Allow(ctx, "u:2", 1, now); !result.Allowed {
		t.Fatalf("expected second key unaffected")
	}
	if result, _ := limiter.Allow(ctx, "u:1", 1, now); result.Allowed {
		t.Fatalf("expected first key exhausted")
	}
}

func TestMemoryLimiterZeroLimitAllowsEverything(t *testing.T) {
	limiter := NewMemoryLimiter()
	for i := 0; i < 10; i++ {
		result, _ := limiter.Allow(context.Background(), "u:1", 0, time.Now())
		if !result.Allowed {
			t.Fatalf("zero limit must disable the gate")
		}
	}
}

func TestMemoryLimiterSweepsIdleUsers(t *testing.T) {
	limiter := NewMemoryLimiter()
	ctx := context.Background()
	start := time.Date(2026, 3, 1, 12, 0, 0, 0, time.UTC)

	for i := 0; i < 5; i++ {
		if _, errAllow := limiter.Allow(ctx, UserKey(uint64(i+1)), 10, start); errAllow != nil {
			t.Fatalf("seed allow %d: %v", i, errAllow)
		}
	}

	// Enough traffic from one user in a later second to trigger a sweep.
	later := start.Add(5 * time.Second)
	for i := 0; i < sweepEvery; i++ {
		if _, errAllow := limiter.Allow(ctx, "u:99", sweepEvery+1, later); errAllow != nil {
			t.Fatalf("allow %d: %v", i, errAllow)
		}
	}

	limiter.mu.Lock()
	remaining := len(limiter.buckets)
	limiter.mu.Unlock()
	if remaining != 1 {
		t.Fatalf("expected only the active user's bucket to survive, got %d", remaining)
	}
}

func TestManagerUsesMemoryBackendByDefault(t *testing.T) {
	provider := func(context.Context) settings.RateLimit {
		return settings.RateLimit{PerSecond: 1}
	}
	now := time.Date(2026, 3, 1, 12, 0, 0, 0, time.UTC)
	mgr := NewManager(provider, func() time.Time { return now }, nil)
	ctx := context.Background()

	if result, errAllow := mgr.Allow(ctx, "u:1"); errAllow != nil || !result.Allowed {
		t.Fatalf("expected first request allowed, got %+v err=%v", result, errAllow)
	}
	if result, _ := mgr.Allow(ctx, "u:1"); result.Allowed {
		t.Fatalf("expected second request in same second denied")
	}
}

func TestManagerDisabledWithoutLimit(t *testing.T) {
	mgr := NewManager(nil, nil, nil)
	for i := 0; i < 5; i++ {
		result, errAllow := mgr.Allow(context.Background(), "u:1")
		if errAllow != nil || !result.Allowed {
			t.Fatalf("expected unconfigured manager to allow, got %+v err=%v", result, errAllow)
		}
	}
}

func TestUserKey(t *testing.T) {
	if key := UserKey(42); key != "u:42" {
		t.Fatalf("unexpected key %q", key)
	}
	if key := UserKey(0); key != "" {
		t.Fatalf("expected empty key for zero id, got %q", key)
	}
}
