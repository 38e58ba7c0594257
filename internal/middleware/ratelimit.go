package middleware

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"time"

	"github.com/redis/go-redis/v9"
)

// RateLimitEnabled reports whether env enforces rate limits. Test and
// development (the empty default) do not.
func RateLimitEnabled(env string) bool {
	switch env {
	case "", "test", "development":
		return false
	}
	return true
}

// CheckRateLimit counts a hit for id on resource in a fixed window keyed
// rl:<resource>:<id> and reports whether the hit is within limit.
func CheckRateLimit(ctx context.Context, rdb *redis.Client, resource, id string, limit int, window time.Duration) (bool, error) {
	if rdb == nil {
		return false, errors.New("rate limit: redis client is nil")
	}

	key := "rl:" + resource + ":" + id
	hits, err := rdb.Incr(ctx, key).Result()
	if err != nil {
		return false, fmt.Errorf("rate limit incr %s: %w", key, err)
	}
	if hits == 1 {
		if err := rdb.Expire(ctx, key, window).Err(); err != nil {
			return false, fmt.Errorf("rate limit expire %s: %w", key, err)
		}
	}
	return hits <= int64(limit), nil
}

// Limiter applies a fixed-window limit to named resources. A Redis failure
// lets the request through.
type Limiter struct {
	rdb     *redis.Client
	enabled bool
	limit   int
	window  time.Duration
}

// NewLimiter returns a Limiter allowing limit hits per window per key. It
// allows everything when env does not enforce limits.
func NewLimiter(rdb *redis.Client, env string, limit int, window time.Duration) *Limiter {
	return &Limiter{rdb: rdb, enabled: RateLimitEnabled(env), limit: limit, window: window}
}

// Allow reports whether id may access resource.
func (l *Limiter) Allow(ctx context.Context, resource, id string) bool {
	if !l.enabled {
		return true
	}
	allowed, err := CheckRateLimit(ctx, l.rdb, resource, id, l.limit, l.window)
	if err != nil {
		Logger.WarnContext(ctx, "Rate limit check failed, allowing request",
			slog.String("resource", resource),
			slog.String("error", err.Error()),
		)
		return true
	}
	return allowed
}
