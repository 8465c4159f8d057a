package repository

import (
	"context"
	"fmt"
	"sync"
	"time"

	pkgredis "github.com/prohmpiriya/career-passport/pkg/redis"
)

// MemorySnapshotCache is a process-local SnapshotCache
type MemorySnapshotCache struct {
	mu      sync.RWMutex
	entries map[string]memoryEntry
	now     func() time.Time
}

type memoryEntry struct {
	value     []byte
	expiresAt time.Time // zero means no expiry
}

// NewMemorySnapshotCache creates an empty cache
func NewMemorySnapshotCache() *MemorySnapshotCache {
	return &MemorySnapshotCache{
		entries: make(map[string]memoryEntry),
		now:     time.Now,
	}
}

func (c *MemorySnapshotCache) Get(ctx context.Context, key string) ([]byte, bool, error) {
	c.mu.RLock()
	entry, ok := c.entries[key]
	c.mu.RUnlock()
	if !ok {
		return nil, false, nil
	}
	if c.expired(entry) {
		c.evictExpired(key)
		return nil, false, nil
	}
	return append([]byte(nil), entry.value...), true, nil
}

func (c *MemorySnapshotCache) expired(entry memoryEntry) bool {
	return !entry.expiresAt.IsZero() && c.now().After(entry.expiresAt)
}

// evictExpired deletes key only if the entry is still expired under the
// write lock; a Set that raced in keeps its fresh entry.
func (c *MemorySnapshotCache) evictExpired(key string) {
	c.mu.Lock()
	defer c.mu.Unlock()
	if entry, ok := c.entries[key]; ok && c.expired(entry) {
		delete(c.entries, key)
	}
}

func (c *MemorySnapshotCache) Set(ctx context.Context, key string, value []byte, ttl time.Duration) error {
	entry := memoryEntry{value: append([]byte(nil), value...)}
	if ttl > 0 {
		entry.expiresAt = c.now().Add(ttl)
	}
	c.mu.Lock()
	c.entries[key] = entry
	c.mu.Unlock()
	return nil
}

// RedisSnapshotCache stores snapshots in Redis with a TTL
type RedisSnapshotCache struct {
	client *pkgredis.Client
}

// NewRedisSnapshotCache wraps a connected Redis client
func NewRedisSnapshotCache(client *pkgredis.Client) *RedisSnapshotCache {
	return &RedisSnapshotCache{client: client}
}

func (c *RedisSnapshotCache) Get(ctx context.Context, key string) ([]byte, bool, error) {
	value, err := c.client.Get(ctx, key)
	if err != nil {
		if pkgredis.IsNil(err) {
			return nil, false, nil
		}
		return nil, false, fmt.Errorf("snapshot cache get %s: %w", key, err)
	}
	return value, true, nil
}

func (c *RedisSnapshotCache) Set(ctx context.Context, key string, value []byte, ttl time.Duration) error {
	if err := c.client.Set(ctx, key, value, ttl); err != nil {
		return fmt.Errorf("snapshot cache set %s: %w", key, err)
	}
	return nil
}
