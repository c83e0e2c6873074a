// Package cache holds the portal's short-lived state: reference data
// fetched from the backend (clients, papers, materials) and the
// idempotency keys of submitted forms.
package cache

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"time"
)

// ReferenceCache stores JSON-serialisable values with a TTL
type ReferenceCache interface {
	// Get decodes the cached value into dest. It reports false on a miss.
	Get(ctx context.Context, key string, dest any) (bool, error)
	Set(ctx context.Context, key string, value any, ttl time.Duration) error
	Delete(ctx context.Context, keys ...string) error
	Close() error
}

// IdempotencyStore remembers which submissions have been processed
type IdempotencyStore interface {
	// MarkProcessed returns true if the key was newly marked, false if it
	// was already marked and has not expired.
	MarkProcessed(ctx context.Context, key string, ttl time.Duration) (bool, error)
	// Release forgets a key so that a failed submission can be retried
	Release(ctx context.Context, key string) error
	Close() error
}

// ErrCacheClosed is returned by operations on a closed memory cache
var ErrCacheClosed = errors.New("cache: closed")

// Remember returns the cached value for key or loads, caches and returns it.
// A cache read or write failure degrades to calling load; it never fails
// the request.
func Remember[T any](ctx context.Context, c ReferenceCache, key string, ttl time.Duration, load func(context.Context) (T, error)) (T, error) {
	var cached T
	if c != nil {
		if ok, err := c.Get(ctx, key, &cached); err == nil && ok {
			return cached, nil
		}
	}

	v, err := load(ctx)
	if err != nil {
		return v, err
	}
	if c != nil {
		_ = c.Set(ctx, key, v, ttl)
	}
	return v, nil
}

func encode(value any) ([]byte, error) {
	data, err := json.Marshal(value)
	if err != nil {
		return nil, fmt.Errorf("cache: encode value: %w", err)
	}
	return data, nil
}

func decodeInto(data []byte, dest any) error {
	if err := json.Unmarshal(data, dest); err != nil {
		return fmt.Errorf("cache: decode value: %w", err)
	}
	return nil
}
