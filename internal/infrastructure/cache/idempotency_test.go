package cache

import (
	"context"
	"sync"
	"sync/atomic"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestMemoryIdempotencyStore_MarkProcessed(t *testing.T) {
	store := NewMemoryIdempotencyStore()
	defer store.Close()

	ctx := context.Background()

	t.Run("marks new key", func(t *testing.T) {
		isNew, err := store.MarkProcessed(ctx, "user-1:key-1", time.Hour)
		require.NoError(t, err)
		assert.True(t, isNew)
	})

	t.Run("returns false for a duplicate submission", func(t *testing.T) {
		isNew, err := store.MarkProcessed(ctx, "user-1:key-2", time.Hour)
		require.NoError(t, err)
		assert.True(t, isNew)

		isNew, err = store.MarkProcessed(ctx, "user-1:key-2", time.Hour)
		require.NoError(t, err)
		assert.False(t, isNew)
	})

	t.Run("allows resubmission after expiration", func(t *testing.T) {
		_, err := store.MarkProcessed(ctx, "user-1:key-3", 10*time.Millisecond)
		require.NoError(t, err)

		time.Sleep(20 * time.Millisecond)

		isNew, err := store.MarkProcessed(ctx, "user-1:key-3", time.Hour)
		require.NoError(t, err)
		assert.True(t, isNew)
	})

	t.Run("release allows an immediate retry", func(t *testing.T) {
		_, err := store.MarkProcessed(ctx, "user-1:key-4", time.Hour)
		require.NoError(t, err)
		require.NoError(t, store.Release(ctx, "user-1:key-4"))

		isNew, err := store.MarkProcessed(ctx, "user-1:key-4", time.Hour)
		require.NoError(t, err)
		assert.True(t, isNew)
	})
}

func TestMemoryIdempotencyStore_Concurrent(t *testing.T) {
	store := NewMemoryIdempotencyStore()
	defer store.Close()

	var wins int32
	var wg sync.WaitGroup
	for i := 0; i < 50; i++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			ok, err := store.MarkProcessed(context.Background(), "same", time.Hour)
			if err == nil && ok {
				atomic.AddInt32(&wins, 1)
			}
		}()
	}
	wg.Wait()
	assert.Equal(t, int32(1), wins, "exactly one submission wins")
}

func TestMemoryIdempotencyStore_CloseIsIdempotent(t *testing.T) {
	store := NewMemoryIdempotencyStore()
	require.NoError(t, store.Close())
	require.NoError(t, store.Close())

	_, err := store.MarkProcessed(context.Background(), "k", time.Hour)
	assert.ErrorIs(t, err, ErrCacheClosed)
}
