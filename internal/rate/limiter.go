package rate

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/redis/go-redis/v9"
)

var (
	// ErrUnavailable indicates the counter store is unreachable.
	ErrUnavailable = errors.New("rate limiter backend unavailable")
)

// Config holds rate limiter tuning parameters.
type Config struct {
	Max       int
	Window    time.Duration
	KeyPrefix string
}

// Limiter enforces a fixed-window request budget per key using Redis
// counters. The window is anchored to the first request after the previous
// window expired; a caller straddling a boundary can legitimately issue up
// to 2×Max requests in a short span. That is accepted fixed-window
// behavior, not a defect.
type Limiter struct {
	redis  redis.UniversalClient
	config Config
}

// New creates a Limiter backed by the given Redis client.
func New(redisClient redis.UniversalClient, cfg Config) *Limiter {
	return &Limiter{redis: redisClient, config: cfg}
}

func (l *Limiter) key(k string) string {
	return l.config.KeyPrefix + k
}

// TryAcquire counts one request against the key's window and reports
// whether it fits the budget. Check-and-increment is a single Redis INCR,
// so concurrent callers never act on a stale pre-increment count.
func (l *Limiter) TryAcquire(ctx context.Context, key string) (bool, error) {
	count, err := l.redis.Incr(ctx, l.key(key)).Result()
	if err != nil {
		return false, fmt.Errorf("%w: %v", ErrUnavailable, err)
	}

	// Fixed-window semantics: set TTL only for the first hit in the window.
	if count == 1 {
		if err := l.redis.Expire(ctx, l.key(key), l.config.Window).Err(); err != nil {
			return false, fmt.Errorf("%w: %v", ErrUnavailable, err)
		}
	}

	return count <= int64(l.config.Max), nil
}

// Reset deletes the key's counter unconditionally. Administrative override;
// the next request starts a fresh window.
func (l *Limiter) Reset(ctx context.Context, key string) error {
	if err := l.redis.Del(ctx, l.key(key)).Err(); err != nil {
		return fmt.Errorf("%w: %v", ErrUnavailable, err)
	}
	return nil
}
