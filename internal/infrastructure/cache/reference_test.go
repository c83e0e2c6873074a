package cache

import (
	"context"
	"errors"
	"os"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/papermill/portal/internal/infrastructure/config"
)

type paper struct {
	ID  string `json:"id"`
	GSM int    `json:"gsm"`
}

func TestMemoryReferenceCache(t *testing.T) {
	c := NewMemoryReferenceCache(10 * time.Millisecond)
	defer c.Close()
	ctx := context.Background()

	var got []paper
	ok, err := c.Get(ctx, "papers", &got)
	require.NoError(t, err)
	assert.False(t, ok)

	require.NoError(t, c.Set(ctx, "papers", []paper{{"p1", 120}}, time.Hour))
	ok, err = c.Get(ctx, "papers", &got)
	require.NoError(t, err)
	require.True(t, ok)
	assert.Equal(t, []paper{{"p1", 120}}, got)

	require.NoError(t, c.Delete(ctx, "papers"))
	ok, _ = c.Get(ctx, "papers", &got)
	assert.False(t, ok)

	require.NoError(t, c.Set(ctx, "short", 1, 5*time.Millisecond))
	assert.Eventually(t, func() bool { return c.Size() == 0 }, time.Second, 10*time.Millisecond, "janitor evicts expired entries")
}

func TestRemember(t *testing.T) {
	c := NewMemoryReferenceCache(0)
	defer c.Close()
	ctx := context.Background()

	calls := 0
	load := func(context.Context) ([]paper, error) {
		calls++
		return []paper{{"p1", 100}}, nil
	}

	for i := 0; i < 3; i++ {
		v, err := Remember(ctx, c, "papers", time.Minute, load)
		require.NoError(t, err)
		assert.Len(t, v, 1)
	}
	assert.Equal(t, 1, calls)

	boom := errors.New("backend down")
	_, err := Remember(ctx, c, "clients", time.Minute, func(context.Context) ([]paper, error) { return nil, boom })
	assert.ErrorIs(t, err, boom)

	v, err := Remember[int](ctx, nil, "x", time.Minute, func(context.Context) (int, error) { return 7, nil })
	require.NoError(t, err)
	assert.Equal(t, 7, v, "nil cache loads directly")
}

func TestFactory_Create(t *testing.T) {
	t.Run("disabled redis uses memory", func(t *testing.T) {
		stores, err := NewFactory(config.RedisConfig{}).Create(context.Background())
		require.NoError(t, err)
		defer stores.Close()
		assert.Equal(t, "memory", stores.Backend)
		assert.NoError(t, stores.Ping(context.Background()))
	})

	t.Run("unreachable redis falls back", func(t *testing.T) {
		cfg := config.RedisConfig{Enabled: true, Host: "127.0.0.1", Port: 1}
		stores, err := NewFactory(cfg).Create(context.Background())
		require.NoError(t, err)
		defer stores.Close()
		assert.Equal(t, "memory", stores.Backend)
	})

	t.Run("unreachable redis without fallback fails", func(t *testing.T) {
		cfg := config.RedisConfig{Enabled: true, Host: "127.0.0.1", Port: 1}
		_, err := NewFactory(cfg, WithInMemoryFallback(false)).Create(context.Background())
		assert.Error(t, err)
	})
}

func TestRedisStores(t *testing.T) {
	addr := os.Getenv("PORTAL_TEST_REDIS_ADDR")
	if addr == "" {
		t.Skip("PORTAL_TEST_REDIS_ADDR not set")
	}
	ctx := context.Background()
	client, err := NewRedisClient(ctx, RedisOptions{Addr: addr})
	require.NoError(t, err)
	defer client.Close()

	ref := NewRedisReferenceCache(client)
	require.NoError(t, ref.Set(ctx, "test:papers", []paper{{"p1", 120}}, time.Minute))
	var got []paper
	ok, err := ref.Get(ctx, "test:papers", &got)
	require.NoError(t, err)
	assert.True(t, ok)
	require.NoError(t, ref.Delete(ctx, "test:papers"))

	idem := NewRedisIdempotencyStore(client)
	key := "test:" + time.Now().Format(time.RFC3339Nano)
	first, err := idem.MarkProcessed(ctx, key, time.Minute)
	require.NoError(t, err)
	second, err := idem.MarkProcessed(ctx, key, time.Minute)
	require.NoError(t, err)
	assert.True(t, first)
	assert.False(t, second)
	require.NoError(t, idem.Release(ctx, key))
}
