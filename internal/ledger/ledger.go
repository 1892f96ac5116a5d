package ledger

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/redis/go-redis/v9"
)

// ErrUnavailable indicates the counter store is unreachable.
var ErrUnavailable = errors.New("attempt ledger backend unavailable")

// Config holds the lockout tuning parameters.
type Config struct {
	Threshold int
	Window    time.Duration
	KeyPrefix string
}

// Ledger is the per-identity failed-login counter. The lock is a rolling
// window: every failure both increments the counter and refreshes its TTL,
// so sustained failures keep extending the lock while one quiet window lets
// the counter expire and the identity unlock on its own.
type Ledger struct {
	redis  redis.UniversalClient
	config Config
}

// New creates a Ledger backed by the given Redis client.
func New(redisClient redis.UniversalClient, cfg Config) *Ledger {
	return &Ledger{redis: redisClient, config: cfg}
}

func (l *Ledger) key(identity string) string {
	return l.config.KeyPrefix + identity
}

// RecordFailure atomically increments the failure counter for the identity
// and refreshes the lock window. Returns the post-increment count.
// Concurrent failures for the same identity never lose updates: the
// increment is a single Redis INCR.
func (l *Ledger) RecordFailure(ctx context.Context, identity string) (int64, error) {
	count, err := l.redis.Incr(ctx, l.key(identity)).Result()
	if err != nil {
		return 0, fmt.Errorf("%w: %v", ErrUnavailable, err)
	}

	if err := l.redis.Expire(ctx, l.key(identity), l.config.Window).Err(); err != nil {
		return 0, fmt.Errorf("%w: %v", ErrUnavailable, err)
	}

	return count, nil
}

// IsLocked reports whether the identity's failure count has reached the
// threshold. A missing counter reads as zero, never as locked.
func (l *Ledger) IsLocked(ctx context.Context, identity string) (bool, error) {
	count, err := l.FailureCount(ctx, identity)
	if err != nil {
		return false, err
	}
	return count >= int64(l.config.Threshold), nil
}

// RecordSuccess deletes the counter entirely, regardless of its value.
// Called exactly on a successful credential check.
func (l *Ledger) RecordSuccess(ctx context.Context, identity string) error {
	if err := l.redis.Del(ctx, l.key(identity)).Err(); err != nil {
		return fmt.Errorf("%w: %v", ErrUnavailable, err)
	}
	return nil
}

// FailureCount returns the current counter value. Missing keys return zero
// and do not reveal account existence.
func (l *Ledger) FailureCount(ctx context.Context, identity string) (int64, error) {
	count, err := l.redis.Get(ctx, l.key(identity)).Int64()
	if err != nil {
		if errors.Is(err, redis.Nil) {
			return 0, nil
		}
		return 0, fmt.Errorf("%w: %v", ErrUnavailable, err)
	}
	if count < 0 {
		return 0, nil
	}
	return count, nil
}
