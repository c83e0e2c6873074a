package cache

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/redis/go-redis/v9"
)

const (
	referenceKeyPrefix   = "portal:ref:"
	idempotencyKeyPrefix = "portal:idem:"
)

// RedisOptions holds Redis connection settings
type RedisOptions struct {
	Addr     string
	Password string
	DB       int
}

// NewRedisClient connects and pings Redis
func NewRedisClient(ctx context.Context, opts RedisOptions) (*redis.Client, error) {
	client := redis.NewClient(&redis.Options{
		Addr:     opts.Addr,
		Password: opts.Password,
		DB:       opts.DB,
	})

	ctx, cancel := context.WithTimeout(ctx, 5*time.Second)
	defer cancel()
	if err := client.Ping(ctx).Err(); err != nil {
		_ = client.Close()
		return nil, fmt.Errorf("failed to connect to Redis: %w", err)
	}
	return client, nil
}

// RedisReferenceCache implements ReferenceCache on Redis so that several
// portal instances share reference data
type RedisReferenceCache struct {
	client    *redis.Client
	keyPrefix string
}

// NewRedisReferenceCache wraps an existing client. The client is not
// closed by Close.
func NewRedisReferenceCache(client *redis.Client) *RedisReferenceCache {
	return &RedisReferenceCache{client: client, keyPrefix: referenceKeyPrefix}
}

// Get implements ReferenceCache
func (c *RedisReferenceCache) Get(ctx context.Context, key string, dest any) (bool, error) {
	data, err := c.client.Get(ctx, c.keyPrefix+key).Bytes()
	if errors.Is(err, redis.Nil) {
		return false, nil
	}
	if err != nil {
		return false, fmt.Errorf("failed to read cache key: %w", err)
	}
	if err := decodeInto(data, dest); err != nil {
		return false, err
	}
	return true, nil
}

// Set implements ReferenceCache
func (c *RedisReferenceCache) Set(ctx context.Context, key string, value any, ttl time.Duration) error {
	data, err := encode(value)
	if err != nil {
		return err
	}
	if ttl < 0 {
		ttl = 0
	}
	if err := c.client.Set(ctx, c.keyPrefix+key, data, ttl).Err(); err != nil {
		return fmt.Errorf("failed to write cache key: %w", err)
	}
	return nil
}

// Delete implements ReferenceCache
func (c *RedisReferenceCache) Delete(ctx context.Context, keys ...string) error {
	if len(keys) == 0 {
		return nil
	}
	full := make([]string, len(keys))
	for i, k := range keys {
		full[i] = c.keyPrefix + k
	}
	if err := c.client.Del(ctx, full...).Err(); err != nil {
		return fmt.Errorf("failed to delete cache keys: %w", err)
	}
	return nil
}

// Close implements ReferenceCache. The shared client is closed by its owner.
func (c *RedisReferenceCache) Close() error {
	return nil
}

// RedisIdempotencyStore implements IdempotencyStore with SETNX so that
// concurrent duplicate submissions across instances are rejected
type RedisIdempotencyStore struct {
	client    *redis.Client
	keyPrefix string
}

// NewRedisIdempotencyStore wraps an existing client
func NewRedisIdempotencyStore(client *redis.Client) *RedisIdempotencyStore {
	return &RedisIdempotencyStore{client: client, keyPrefix: idempotencyKeyPrefix}
}

// MarkProcessed implements IdempotencyStore
func (s *RedisIdempotencyStore) MarkProcessed(ctx context.Context, key string, ttl time.Duration) (bool, error) {
	ok, err := s.client.SetNX(ctx, s.keyPrefix+key, "1", ttl).Result()
	if err != nil {
		return false, fmt.Errorf("failed to mark submission as processed: %w", err)
	}
	return ok, nil
}

// Release implements IdempotencyStore
func (s *RedisIdempotencyStore) Release(ctx context.Context, key string) error {
	if err := s.client.Del(ctx, s.keyPrefix+key).Err(); err != nil {
		return fmt.Errorf("failed to release submission key: %w", err)
	}
	return nil
}

// Close implements IdempotencyStore
func (s *RedisIdempotencyStore) Close() error {
	return nil
}

var (
	_ ReferenceCache   = (*RedisReferenceCache)(nil)
	_ IdempotencyStore = (*RedisIdempotencyStore)(nil)
)
