package auth

import (
	"context"
	"time"

	"github.com/papermill/portal/internal/infrastructure/cache"
)

const revokedKeyPrefix = "session:revoked:"

// CacheRevoker keeps revoked session ids in the reference cache, so that
// with Redis enabled a logout is honoured by every portal instance
type CacheRevoker struct {
	cache cache.ReferenceCache
}

// NewCacheRevoker creates a revoker on top of a reference cache
func NewCacheRevoker(c cache.ReferenceCache) *CacheRevoker {
	return &CacheRevoker{cache: c}
}

// Revoke implements Revoker
func (r *CacheRevoker) Revoke(ctx context.Context, jti string, ttl time.Duration) error {
	return r.cache.Set(ctx, revokedKeyPrefix+jti, true, ttl)
}

// IsRevoked implements Revoker
func (r *CacheRevoker) IsRevoked(ctx context.Context, jti string) (bool, error) {
	var revoked bool
	ok, err := r.cache.Get(ctx, revokedKeyPrefix+jti, &revoked)
	if err != nil {
		return false, err
	}
	return ok && revoked, nil
}
