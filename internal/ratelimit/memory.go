package ratelimit

import (
	"context"
	"sync"
	"time"
)

// sweepEvery bounds how many Allow calls may pass between sweeps of idle
// user buckets. Generation traffic is bursty per user, so buckets go stale
// one second after the burst ends.
const sweepEvery = 256

// userWindow is one user's request count within a single second.
type userWindow struct {
	second int64
	used   int
}

// MemoryLimiter throttles generation requests per user with in-process
// fixed one-second windows. It is the fallback backend when Redis is not
// configured or unreachable, so limits are only per replica.
type MemoryLimiter struct {
	mu      sync.Mutex
	buckets map[string]userWindow
	calls   int
}

// NewMemoryLimiter constructs a MemoryLimiter.
func NewMemoryLimiter() *MemoryLimiter {
	return &MemoryLimiter{buckets: make(map[string]userWindow)}
}

// Allow consumes one slot from the user's window for the current second.
func (l *MemoryLimiter) Allow(_ context.Context, key string, limit int, now time.Time) (Result, error) {
	if limit <= 0 || key == "" {
		return Result{Allowed: true}, nil
	}
	sec := now.Unix()
	reset := time.Unix(sec+1, 0).UTC()

	l.mu.Lock()
	defer l.mu.Unlock()

	l.calls++
	if l.calls >= sweepEvery {
		l.calls = 0
		l.dropStale(sec)
	}

	window := l.buckets[key]
	if window.second != sec {
		window = userWindow{second: sec}
	}
	if window.used >= limit {
		l.buckets[key] = window
		return Result{Allowed: false, Remaining: 0, Reset: reset}, nil
	}
	window.used++
	l.buckets[key] = window
	return Result{Allowed: true, Remaining: limit - window.used, Reset: reset}, nil
}

// dropStale removes buckets from past seconds. Caller holds the lock.
func (l *MemoryLimiter) dropStale(sec int64) {
	for key, window := range l.buckets {
		if window.second < sec {
			delete(l.buckets, key)
		}
	}
}
