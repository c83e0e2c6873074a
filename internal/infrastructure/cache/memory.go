package cache

import (
	"context"
	"sync"
	"time"
)

const defaultCleanupInterval = time.Minute

type memoryEntry struct {
	data      []byte
	expiresAt time.Time
}

func (e memoryEntry) expired(now time.Time) bool {
	return !e.expiresAt.IsZero() && now.After(e.expiresAt)
}

// memoryStore is the expiring map shared by the in-memory cache and
// idempotency store. A janitor goroutine evicts expired entries.
type memoryStore struct {
	mu        sync.RWMutex
	entries   map[string]memoryEntry
	stopChan  chan struct{}
	wg        sync.WaitGroup
	closeOnce sync.Once
	closed    bool
}

func newMemoryStore(cleanupInterval time.Duration) *memoryStore {
	if cleanupInterval <= 0 {
		cleanupInterval = defaultCleanupInterval
	}
	s := &memoryStore{
		entries:  make(map[string]memoryEntry),
		stopChan: make(chan struct{}),
	}
	s.wg.Add(1)
	go s.cleanupLoop(cleanupInterval)
	return s
}

func (s *memoryStore) get(key string) ([]byte, bool, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	if s.closed {
		return nil, false, ErrCacheClosed
	}
	e, ok := s.entries[key]
	if !ok || e.expired(time.Now()) {
		return nil, false, nil
	}
	return e.data, true, nil
}

func (s *memoryStore) set(key string, data []byte, ttl time.Duration) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.closed {
		return ErrCacheClosed
	}
	s.entries[key] = memoryEntry{data: data, expiresAt: expiry(ttl)}
	return nil
}

// setNX stores the key only when absent or expired
func (s *memoryStore) setNX(key string, data []byte, ttl time.Duration) (bool, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.closed {
		return false, ErrCacheClosed
	}
	if e, ok := s.entries[key]; ok && !e.expired(time.Now()) {
		return false, nil
	}
	s.entries[key] = memoryEntry{data: data, expiresAt: expiry(ttl)}
	return true, nil
}

func (s *memoryStore) delete(keys ...string) {
	s.mu.Lock()
	defer s.mu.Unlock()
	for _, k := range keys {
		delete(s.entries, k)
	}
}

func (s *memoryStore) size() int {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return len(s.entries)
}

func (s *memoryStore) close() error {
	s.closeOnce.Do(func() {
		close(s.stopChan)
		s.wg.Wait()
		s.mu.Lock()
		s.closed = true
		s.entries = map[string]memoryEntry{}
		s.mu.Unlock()
	})
	return nil
}

func (s *memoryStore) cleanupLoop(interval time.Duration) {
	defer s.wg.Done()

	ticker := time.NewTicker(interval)
	defer ticker.Stop()

	for {
		select {
		case <-s.stopChan:
			return
		case <-ticker.C:
			s.cleanup()
		}
	}
}

func (s *memoryStore) cleanup() {
	s.mu.Lock()
	defer s.mu.Unlock()

	now := time.Now()
	for k, e := range s.entries {
		if e.expired(now) {
			delete(s.entries, k)
		}
	}
}

func expiry(ttl time.Duration) time.Time {
	if ttl <= 0 {
		return time.Time{}
	}
	return time.Now().Add(ttl)
}

// MemoryReferenceCache is a process-local ReferenceCache. Suitable for a
// single portal instance and for tests.
type MemoryReferenceCache struct {
	store *memoryStore
}

// NewMemoryReferenceCache creates an in-memory reference cache
func NewMemoryReferenceCache(cleanupInterval time.Duration) *MemoryReferenceCache {
	return &MemoryReferenceCache{store: newMemoryStore(cleanupInterval)}
}

// Get implements ReferenceCache
func (c *MemoryReferenceCache) Get(_ context.Context, key string, dest any) (bool, error) {
	data, ok, err := c.store.get(key)
	if err != nil || !ok {
		return false, err
	}
	if err := decodeInto(data, dest); err != nil {
		return false, err
	}
	return true, nil
}

// Set implements ReferenceCache. A non-positive ttl never expires.
func (c *MemoryReferenceCache) Set(_ context.Context, key string, value any, ttl time.Duration) error {
	data, err := encode(value)
	if err != nil {
		return err
	}
	return c.store.set(key, data, ttl)
}

// Delete implements ReferenceCache
func (c *MemoryReferenceCache) Delete(_ context.Context, keys ...string) error {
	c.store.delete(keys...)
	return nil
}

// Size returns the number of stored entries, expired ones included until
// the janitor runs
func (c *MemoryReferenceCache) Size() int {
	return c.store.size()
}

// Close stops the janitor. Safe to call multiple times.
func (c *MemoryReferenceCache) Close() error {
	return c.store.close()
}

// MemoryIdempotencyStore is a process-local IdempotencyStore
type MemoryIdempotencyStore struct {
	store *memoryStore
}

// NewMemoryIdempotencyStore creates an in-memory idempotency store
func NewMemoryIdempotencyStore() *MemoryIdempotencyStore {
	return &MemoryIdempotencyStore{store: newMemoryStore(5 * time.Minute)}
}

// MarkProcessed implements IdempotencyStore
func (s *MemoryIdempotencyStore) MarkProcessed(_ context.Context, key string, ttl time.Duration) (bool, error) {
	return s.store.setNX(key, nil, ttl)
}

// Release implements IdempotencyStore
func (s *MemoryIdempotencyStore) Release(_ context.Context, key string) error {
	s.store.delete(key)
	return nil
}

// Size returns the number of stored keys
func (s *MemoryIdempotencyStore) Size() int {
	return s.store.size()
}

// Close implements IdempotencyStore
func (s *MemoryIdempotencyStore) Close() error {
	return s.store.close()
}

var (
	_ ReferenceCache   = (*MemoryReferenceCache)(nil)
	_ IdempotencyStore = (*MemoryIdempotencyStore)(nil)
)
