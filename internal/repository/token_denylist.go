package repository

import (
	"context"
	"errors"
	"sync"
	"time"

	"github.com/redis/go-redis/v9"
)

const revokedTokenKeyPrefix = "revoked_token:"

// RedisTokenDenylist stores revoked token IDs as expiring Redis keys.
type RedisTokenDenylist struct {
	client *redis.Client
}

// NewRedisTokenDenylist creates a TokenDenylist backed by Redis
func NewRedisTokenDenylist(client *redis.Client) TokenDenylist {
	return &RedisTokenDenylist{client: client}
}

func (d *RedisTokenDenylist) Revoke(ctx context.Context, tokenID string, ttl time.Duration) error {
	if ttl <= 0 {
		return nil
	}
	return d.client.Set(ctx, revokedTokenKeyPrefix+tokenID, 1, ttl).Err()
}

func (d *RedisTokenDenylist) IsRevoked(ctx context.Context, tokenID string) (bool, error) {
	err := d.client.Get(ctx, revokedTokenKeyPrefix+tokenID).Err()
	if errors.Is(err, redis.Nil) {
		return false, nil
	}
	if err != nil {
		return false, err
	}
	return true, nil
}

// MemoryTokenDenylist keeps revoked token IDs in process memory. Used when no
// Redis server is configured and in tests.
type MemoryTokenDenylist struct {
	mu      sync.Mutex
	revoked map[string]time.Time
	now     func() time.Time
}

// NewMemoryTokenDenylist creates an in-memory TokenDenylist
func NewMemoryTokenDenylist() TokenDenylist {
	return &MemoryTokenDenylist{
		revoked: make(map[string]time.Time),
		now:     time.Now,
	}
}

func (d *MemoryTokenDenylist) Revoke(_ context.Context, tokenID string, ttl time.Duration) error {
	if ttl <= 0 {
		return nil
	}
	d.mu.Lock()
	defer d.mu.Unlock()

	now := d.now()
	for id, expires := range d.revoked {
		if !now.Before(expires) {
			delete(d.revoked, id)
		}
	}
	d.revoked[tokenID] = now.Add(ttl)
	return nil
}

func (d *MemoryTokenDenylist) IsRevoked(_ context.Context, tokenID string) (bool, error) {
	d.mu.Lock()
	defer d.mu.Unlock()

	expires, ok := d.revoked[tokenID]
	if !ok {
		return false, nil
	}
	if !d.now().Before(expires) {
		delete(d.revoked, tokenID)
		return false, nil
	}
	return true, nil
}
