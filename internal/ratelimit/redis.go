package ratelimit

import (
	"context"
	"fmt"
	"strconv"
	"strings"
	"time"

	"github.com/redis/go-redis/v9"
)

// Window keys expire shortly after their second passes; two seconds leaves
// room for a reply that lands just across the boundary.
const windowKeyTTL = 2

// windowIncr bumps the user's counter for the current second and stamps the
// TTL on first use, in a single round trip.
var windowIncr = redis.NewScript(`
local used = redis.call("INCR", KEYS[1])
if used == 1 then
  redis.call("EXPIRE", KEYS[1], ARGV[1])
end
return used
`)

// RedisLimiter throttles generation requests per user through a shared
// Redis instance, so every replica of the service sees the same window
// counts.
type RedisLimiter struct {
	client *redis.Client
	prefix string
}

// NewRedisLimiter constructs a RedisLimiter. The prefix namespaces window
// keys when the Redis instance is shared with other services.
func NewRedisLimiter(client *redis.Client, prefix string) *RedisLimiter {
	return &RedisLimiter{
		client: client,
		prefix: strings.TrimSpace(prefix),
	}
}

// Allow consumes one slot from the user's window for the current second.
func (l *RedisLimiter) Allow(ctx context.Context, key string, limit int, now time.Time) (Result, error) {
	if l == nil || l.client == nil || limit <= 0 || key == "" {
		return Result{Allowed: true}, nil
	}
	sec := now.Unix()
	reset := time.Unix(sec+1, 0).UTC()

	raw, errRun := windowIncr.Run(ctx, l.client, []string{l.windowKey(key, sec)}, windowKeyTTL).Result()
	if errRun != nil {
		return Result{}, errRun
	}
	used, errCount := coerceCount(raw)
	if errCount != nil {
		return Result{}, errCount
	}
	if used > int64(limit) {
		return Result{Allowed: false, Remaining: 0, Reset: reset}, nil
	}
	remaining := limit - int(used)
	if remaining < 0 {
		remaining = 0
	}
	return Result{Allowed: true, Remaining: remaining, Reset: reset}, nil
}

// windowKey builds the Redis key for one user's current second.
func (l *RedisLimiter) windowKey(key string, sec int64) string {
	parts := make([]string, 0, 3)
	if l.prefix != "" {
		parts = append(parts, l.prefix)
	}
	parts = append(parts, key, strconv.FormatInt(sec, 10))
	return strings.Join(parts, ":")
}

// coerceCount normalizes the script reply to an int64 counter value.
func coerceCount(raw any) (int64, error) {
	switch v := raw.(type) {
	case int64:
		return v, nil
	case int:
		return int64(v), nil
	case uint64:
		return int64(v), nil
	}
	return 0, fmt.Errorf("rate limit redis: unexpected reply type %T", raw)
}
