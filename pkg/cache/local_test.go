package cache

import (
	"context"
	"testing"
	"time"

	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestLocalOnHandCache_VersionedWrites(t *testing.T) {
	ctx := context.Background()
	c := NewLocalOnHandCache()
	const key = "item:warehouse"

	_, ok, err := c.Get(ctx, key)
	require.NoError(t, err)
	assert.False(t, ok)

	v, err := c.Version(ctx, key)
	require.NoError(t, err)
	require.NoError(t, c.SetIfVersion(ctx, key, v, decimal.NewFromInt(7)))

	got, ok, err := c.Get(ctx, key)
	require.NoError(t, err)
	require.True(t, ok)
	assert.True(t, got.Equal(decimal.NewFromInt(7)))

	require.NoError(t, c.Invalidate(ctx, key))
	_, ok, err = c.Get(ctx, key)
	require.NoError(t, err)
	assert.False(t, ok, "invalidation drops the value")

	// A fold computed under the old version must not be stored.
	require.NoError(t, c.SetIfVersion(ctx, key, v, decimal.NewFromInt(99)))
	_, ok, err = c.Get(ctx, key)
	require.NoError(t, err)
	assert.False(t, ok)

	next, err := c.Version(ctx, key)
	require.NoError(t, err)
	assert.Equal(t, v+1, next)
}

func TestLocalLocker_SerializesPerKey(t *testing.T) {
	ctx := context.Background()
	l := NewLocalLocker()

	unlock, err := l.Lock(ctx, "a")
	require.NoError(t, err)

	// Other keys are independent.
	unlockB, err := l.Lock(ctx, "b")
	require.NoError(t, err)
	unlockB()

	waitCtx, cancel := context.WithTimeout(ctx, 20*time.Millisecond)
	defer cancel()
	_, err = l.Lock(waitCtx, "a")
	require.ErrorIs(t, err, context.DeadlineExceeded)

	unlock()

	acquired := make(chan func(), 1)
	go func() {
		u, err := l.Lock(ctx, "a")
		if err == nil {
			acquired <- u
		}
	}()
	select {
	case u := <-acquired:
		u()
	case <-time.After(time.Second):
		t.Fatal("lock was not released after a cancelled wait")
	}
}
