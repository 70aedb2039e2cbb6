package cache

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/bsm/redislock"
)

const (
	// LockTTL caps how long a crashed holder can block a key.
	LockTTL = 30 * time.Second

	lockKeyPrefix = "lock"
	lockRetryStep = 50 * time.Millisecond
	lockRetries   = 100
)

// ErrLockNotObtained is returned when a key stays locked for the whole retry window.
var ErrLockNotObtained = errors.New("lock not obtained")

// RedisLocker serializes work on a key across processes with a Redis lock.
type RedisLocker struct {
	locker *redislock.Client
	client *RedisClient
}

// NewRedisLocker creates a RedisLocker on the given RedisClient.
func NewRedisLocker(r *RedisClient) *RedisLocker {
	return &RedisLocker{locker: redislock.New(r.Client()), client: r}
}

// Lock obtains the lock for key, retrying with linear backoff for about five
// seconds. The returned func releases it.
func (l *RedisLocker) Lock(ctx context.Context, key string) (func(), error) {
	lock, err := l.locker.Obtain(ctx, l.client.Key(lockKeyPrefix, key), LockTTL, &redislock.Options{
		RetryStrategy: redislock.LimitRetry(redislock.LinearBackoff(lockRetryStep), lockRetries),
	})
	if errors.Is(err, redislock.ErrNotObtained) {
		return nil, fmt.Errorf("%w: %s", ErrLockNotObtained, key)
	}
	if err != nil {
		return nil, fmt.Errorf("obtain lock: %w", err)
	}
	return func() {
		_ = lock.Release(context.WithoutCancel(ctx))
	}, nil
}
