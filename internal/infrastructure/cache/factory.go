package cache

import (
	"context"
	"fmt"

	"github.com/redis/go-redis/v9"
	"go.uber.org/zap"

	"github.com/papermill/portal/internal/infrastructure/config"
)

// Stores bundles the cache-backed stores the portal needs
type Stores struct {
	Reference   ReferenceCache
	Idempotency IdempotencyStore
	Backend     string // "redis" or "memory"
	client      *redis.Client
}

// Close releases both stores and the shared Redis client
func (s *Stores) Close() error {
	_ = s.Reference.Close()
	_ = s.Idempotency.Close()
	if s.client != nil {
		return s.client.Close()
	}
	return nil
}

// Ping checks the Redis connection, if any
func (s *Stores) Ping(ctx context.Context) error {
	if s.client == nil {
		return nil
	}
	return s.client.Ping(ctx).Err()
}

// Factory creates stores based on configuration
type Factory struct {
	redisConfig           config.RedisConfig
	logger                *zap.Logger
	allowInMemoryFallback bool
}

// FactoryOption is a functional option for configuring the factory
type FactoryOption func(*Factory)

// WithLogger sets the logger for the factory
func WithLogger(logger *zap.Logger) FactoryOption {
	return func(f *Factory) {
		f.logger = logger
	}
}

// WithInMemoryFallback controls whether to fall back to memory when Redis
// is unavailable. Default is true.
func WithInMemoryFallback(allow bool) FactoryOption {
	return func(f *Factory) {
		f.allowInMemoryFallback = allow
	}
}

// NewFactory creates a new factory
func NewFactory(cfg config.RedisConfig, opts ...FactoryOption) *Factory {
	f := &Factory{
		redisConfig:           cfg,
		logger:                zap.NewNop(),
		allowInMemoryFallback: true,
	}
	for _, opt := range opts {
		opt(f)
	}
	return f
}

// CreateInMemory creates process-local stores. Separate portal instances
// do not see each other's duplicate submissions.
func (f *Factory) CreateInMemory() *Stores {
	return &Stores{
		Reference:   NewMemoryReferenceCache(0),
		Idempotency: NewMemoryIdempotencyStore(),
		Backend:     "memory",
	}
}

// Create returns Redis stores when Redis is enabled and reachable, falling
// back to memory when allowed
func (f *Factory) Create(ctx context.Context) (*Stores, error) {
	if !f.redisConfig.Enabled {
		f.logger.Info("redis disabled, using in-memory cache")
		return f.CreateInMemory(), nil
	}

	client, err := NewRedisClient(ctx, RedisOptions{
		Addr:     f.redisConfig.Addr(),
		Password: f.redisConfig.Password,
		DB:       f.redisConfig.DB,
	})
	if err == nil {
		f.logger.Info("using Redis cache", zap.String("addr", f.redisConfig.Addr()))
		return &Stores{
			Reference:   NewRedisReferenceCache(client),
			Idempotency: NewRedisIdempotencyStore(client),
			Backend:     "redis",
			client:      client,
		}, nil
	}

	if !f.allowInMemoryFallback {
		return nil, fmt.Errorf("redis required for cache but unavailable: %w", err)
	}

	f.logger.Warn("Redis unavailable, falling back to in-memory cache. "+
		"Duplicate submissions are only detected per instance.",
		zap.Error(err),
	)
	return f.CreateInMemory(), nil
}
