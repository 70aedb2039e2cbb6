package cache

import (
	"context"
	"errors"
	"fmt"
	"strconv"
	"time"

	"github.com/redis/go-redis/v9"
	"github.com/shopspring/decimal"
)

const (
	// OnHandCacheTTL bounds how long a folded balance is kept.
	OnHandCacheTTL = 24 * time.Hour

	// versionTTL outlives every cached value so a value never survives its version.
	versionTTL = 7 * 24 * time.Hour

	onHandKeyPrefix = "onhand"
)

// OnHandCache stores folded on-hand balances in Redis.
//
// Each ledger key has a version counter ("<ns>:onhand:{key}:ver") that every
// append increments, and a value hash ("<ns>:onhand:{key}") holding the balance and the
// version it was folded under. A value is written only while its version is
// still current (WATCH on the counter), and is only served when it matches
// the current version, so a fold that raced an append is never observed.
type OnHandCache struct {
	client *RedisClient
}

// NewOnHandCache creates an OnHandCache backed by the given RedisClient.
func NewOnHandCache(r *RedisClient) *OnHandCache {
	return &OnHandCache{client: r}
}

// Version returns the current version of key; 0 when never written.
func (c *OnHandCache) Version(ctx context.Context, key string) (int64, error) {
	v, err := c.client.Client().Get(ctx, c.versionKey(key)).Int64()
	if errors.Is(err, redis.Nil) {
		return 0, nil
	}
	if err != nil {
		return 0, fmt.Errorf("cache version: %w", err)
	}
	return v, nil
}

// Get returns the cached balance of key when it was stored under the current
// version. ok is false on a miss.
func (c *OnHandCache) Get(ctx context.Context, key string) (value decimal.Decimal, ok bool, err error) {
	pipe := c.client.Client().Pipeline()
	verCmd := pipe.Get(ctx, c.versionKey(key))
	valCmd := pipe.HGetAll(ctx, c.valueKey(key))
	if _, err := pipe.Exec(ctx); err != nil && !errors.Is(err, redis.Nil) {
		return decimal.Zero, false, fmt.Errorf("cache get: %w", err)
	}

	vals := valCmd.Val()
	if len(vals) == 0 {
		return decimal.Zero, false, nil
	}

	current, err := verCmd.Int64()
	if errors.Is(err, redis.Nil) {
		current, err = 0, nil
	}
	if err != nil {
		return decimal.Zero, false, fmt.Errorf("cache parse version: %w", err)
	}
	stored, err := strconv.ParseInt(vals["version"], 10, 64)
	if err != nil {
		return decimal.Zero, false, fmt.Errorf("cache parse stored version: %w", err)
	}
	if stored != current {
		return decimal.Zero, false, nil
	}

	value, err = decimal.NewFromString(vals["value"])
	if err != nil {
		return decimal.Zero, false, fmt.Errorf("cache parse value: %w", err)
	}
	return value, true, nil
}

// SetIfVersion stores value for key if key is still at version. Losing the
// race to a concurrent append is not an error; the value is simply dropped.
func (c *OnHandCache) SetIfVersion(ctx context.Context, key string, version int64, value decimal.Decimal) error {
	verKey, valKey := c.versionKey(key), c.valueKey(key)

	err := c.client.Client().Watch(ctx, func(tx *redis.Tx) error {
		current, err := tx.Get(ctx, verKey).Int64()
		if errors.Is(err, redis.Nil) {
			current, err = 0, nil
		}
		if err != nil {
			return err
		}
		if current != version {
			return nil
		}
		_, err = tx.TxPipelined(ctx, func(pipe redis.Pipeliner) error {
			pipe.HSet(ctx, valKey,
				"value", value.String(),
				"version", strconv.FormatInt(version, 10),
			)
			pipe.Expire(ctx, valKey, OnHandCacheTTL)
			return nil
		})
		return err
	}, verKey)

	if errors.Is(err, redis.TxFailedErr) {
		return nil
	}
	if err != nil {
		return fmt.Errorf("cache set: %w", err)
	}
	return nil
}

// Invalidate bumps the version of key and drops its cached value atomically.
func (c *OnHandCache) Invalidate(ctx context.Context, key string) error {
	verKey := c.versionKey(key)
	_, err := c.client.Client().TxPipelined(ctx, func(pipe redis.Pipeliner) error {
		pipe.Incr(ctx, verKey)
		pipe.Expire(ctx, verKey, versionTTL)
		pipe.Del(ctx, c.valueKey(key))
		return nil
	})
	if err != nil {
		return fmt.Errorf("cache invalidate: %w", err)
	}
	return nil
}

func (c *OnHandCache) valueKey(key string) string {
	return c.client.Key(onHandKeyPrefix, key)
}

func (c *OnHandCache) versionKey(key string) string {
	return c.client.Key(onHandKeyPrefix, key, "ver")
}
