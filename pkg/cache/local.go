package cache

import (
	"context"
	"sync"

	"github.com/shopspring/decimal"
)

// LocalOnHandCache is the in-process counterpart of OnHandCache, used when
// no Redis is configured. It follows the same version rules.
type LocalOnHandCache struct {
	mu      sync.Mutex
	entries map[string]localEntry
}

type localEntry struct {
	version int64
	value   decimal.Decimal
	cached  bool
}

// NewLocalOnHandCache returns an empty LocalOnHandCache.
func NewLocalOnHandCache() *LocalOnHandCache {
	return &LocalOnHandCache{entries: make(map[string]localEntry)}
}

// Version returns the current version of key.
func (c *LocalOnHandCache) Version(_ context.Context, key string) (int64, error) {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.entries[key].version, nil
}

// Get returns the cached balance of key, if any.
func (c *LocalOnHandCache) Get(_ context.Context, key string) (decimal.Decimal, bool, error) {
	c.mu.Lock()
	defer c.mu.Unlock()
	e := c.entries[key]
	return e.value, e.cached, nil
}

// SetIfVersion stores value when key is still at version.
func (c *LocalOnHandCache) SetIfVersion(_ context.Context, key string, version int64, value decimal.Decimal) error {
	c.mu.Lock()
	defer c.mu.Unlock()
	e := c.entries[key]
	if e.version != version {
		return nil
	}
	c.entries[key] = localEntry{version: version, value: value, cached: true}
	return nil
}

// Invalidate bumps the version of key and drops its value.
func (c *LocalOnHandCache) Invalidate(_ context.Context, key string) error {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.entries[key] = localEntry{version: c.entries[key].version + 1}
	return nil
}

// LocalLocker hands out one mutex per key. Mutexes are never freed; the key
// space is bounded by items × owners.
type LocalLocker struct {
	mu    sync.Mutex
	locks map[string]*sync.Mutex
}

// NewLocalLocker returns an empty LocalLocker.
func NewLocalLocker() *LocalLocker {
	return &LocalLocker{locks: make(map[string]*sync.Mutex)}
}

// Lock blocks until key is free or ctx is done.
func (l *LocalLocker) Lock(ctx context.Context, key string) (func(), error) {
	l.mu.Lock()
	m, ok := l.locks[key]
	if !ok {
		m = &sync.Mutex{}
		l.locks[key] = m
	}
	l.mu.Unlock()

	acquired := make(chan struct{})
	go func() {
		m.Lock()
		close(acquired)
	}()

	select {
	case <-acquired:
		return m.Unlock, nil
	case <-ctx.Done():
		// Release the mutex once the pending acquisition lands.
		go func() {
			<-acquired
			m.Unlock()
		}()
		return nil, ctx.Err()
	}
}
