package auth

import (
	"context"
	"fmt"
	"time"

	"github.com/redis/go-redis/v9"
)

// Lockout controls sign-in attempts and temporary lockouts per email.
type Lockout interface {
	// Allow reports whether sign-in is currently allowed and an optional
	// retry-after.
	Allow(ctx context.Context, email string) (bool, time.Duration, error)
	// Failure records a failed attempt; reports whether the threshold is
	// now reached.
	Failure(ctx context.Context, email string) (bool, time.Duration, error)
	// Success resets counters after a successful sign-in.
	Success(ctx context.Context, email string) error
}

// RedisLockout counts failed attempts per email in a fixed window using
// INCR+EXPIRE. Redis being unavailable fails open: a missing counter
// never blocks sign-in.
type RedisLockout struct {
	rdb      *redis.Client
	maxFails int
	window   time.Duration
}

// NewRedisLockout creates a lockout tracker. rdb may be nil, in which
// case all attempts are allowed.
func NewRedisLockout(rdb *redis.Client, maxFails int, window time.Duration) *RedisLockout {
	return &RedisLockout{rdb: rdb, maxFails: maxFails, window: window}
}

func (l *RedisLockout) key(email string) string {
	return fmt.Sprintf("lockout:signin:%s", email)
}

// Allow checks the current counter without touching it.
func (l *RedisLockout) Allow(ctx context.Context, email string) (bool, time.Duration, error) {
	if l.rdb == nil {
		return true, 0, nil
	}
	count, err := l.rdb.Get(ctx, l.key(email)).Int()
	if err != nil {
		return true, 0, nil
	}
	if count >= l.maxFails {
		ttl, _ := l.rdb.TTL(ctx, l.key(email)).Result()
		return false, ttl, nil
	}
	return true, 0, nil
}

// Failure increments the counter, starting the window on the first miss.
func (l *RedisLockout) Failure(ctx context.Context, email string) (bool, time.Duration, error) {
	if l.rdb == nil {
		return false, 0, nil
	}
	count, err := l.rdb.Incr(ctx, l.key(email)).Result()
	if err != nil {
		return false, 0, nil
	}
	if count == 1 {
		l.rdb.Expire(ctx, l.key(email), l.window)
	}
	if int(count) >= l.maxFails {
		ttl, _ := l.rdb.TTL(ctx, l.key(email)).Result()
		return true, ttl, nil
	}
	return false, 0, nil
}

// Success clears the counter.
func (l *RedisLockout) Success(ctx context.Context, email string) error {
	if l.rdb == nil {
		return nil
	}
	return l.rdb.Del(ctx, l.key(email)).Err()
}
