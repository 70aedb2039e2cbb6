// Package cache holds the on-hand balance caches and per-key lockers used by
// the ledger, in a process-local flavour and a Redis flavour shared by all
// API and worker instances.
package cache

import (
	"context"
	"fmt"
	"strings"
	"time"

	"github.com/redis/go-redis/v9"

	"github.com/ghuser/larder/pkg/config"
)

const (
	redisPoolSize     = 10
	redisMinIdleConns = 2
	redisPingTimeout  = 2 * time.Second
)

// RedisClient is a pooled Redis connection plus the key namespace shared by
// everything larder stores there.
type RedisClient struct {
	client    *redis.Client
	namespace string
}

// NewRedisClient connects to cfg.RedisURL and pings it. Keys are namespaced
// under cfg.ServiceName ("larder" when empty) so several deployments can share
// one Redis.
func NewRedisClient(cfg *config.Config) (*RedisClient, error) {
	opts, err := redis.ParseURL(cfg.RedisURL)
	if err != nil {
		return nil, fmt.Errorf("failed to parse redis URL: %w", err)
	}
	opts.PoolSize = redisPoolSize
	opts.MinIdleConns = redisMinIdleConns
	opts.MaxRetries = 3
	opts.DialTimeout = 5 * time.Second
	opts.ReadTimeout = 3 * time.Second
	opts.WriteTimeout = 3 * time.Second
	opts.PoolTimeout = 4 * time.Second

	rdb := redis.NewClient(opts)

	pingCtx, cancel := context.WithTimeout(context.Background(), redisPingTimeout)
	defer cancel()
	if err := rdb.Ping(pingCtx).Err(); err != nil {
		_ = rdb.Close()
		return nil, fmt.Errorf("failed to ping redis: %w", err)
	}

	ns := cfg.ServiceName
	if ns == "" {
		ns = "larder"
	}
	return &RedisClient{client: rdb, namespace: ns}, nil
}

// Key joins parts under the client's namespace: Key("onhand", k) is
// "larder:onhand:k".
func (r *RedisClient) Key(parts ...string) string {
	return r.namespace + ":" + strings.Join(parts, ":")
}

// Ping checks the Redis connection health.
func (r *RedisClient) Ping(ctx context.Context) error {
	if err := r.client.Ping(ctx).Err(); err != nil {
		return fmt.Errorf("redis ping: %w", err)
	}
	return nil
}

// Close shuts down the connection pool.
func (r *RedisClient) Close() error {
	if r.client == nil {
		return nil
	}
	if err := r.client.Close(); err != nil {
		return fmt.Errorf("redis close: %w", err)
	}
	return nil
}

// Client returns the underlying redis.Client for direct use.
func (r *RedisClient) Client() *redis.Client {
	return r.client
}
