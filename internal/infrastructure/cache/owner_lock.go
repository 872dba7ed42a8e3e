// Package cache provides the per-owner import lock. Imports for one owner
// must run sequentially; the reconciler's read-then-merge-then-upsert is the
// critical section.
package cache

import (
	"context"
	"fmt"
	"sync"
	"time"

	"github.com/redis/go-redis/v9"

	"github.com/riskledger/backend/internal/domain/shared"
)

// OwnerLocker serializes imports per owner. Acquire returns ErrOwnerLocked
// when another import for the same owner is in flight.
type OwnerLocker interface {
	Acquire(ctx context.Context, ownerKey string, ttl time.Duration) error
	Release(ctx context.Context, ownerKey string) error
}

// RedisOwnerLocker implements OwnerLocker on Redis, suitable for deployments
// with more than one instance
type RedisOwnerLocker struct {
	client    *redis.Client
	keyPrefix string
}

// RedisLockConfig holds Redis connection configuration for the locker
type RedisLockConfig struct {
	Host     string
	Port     int
	Password string
	DB       int
}

// NewRedisOwnerLocker creates a Redis-based owner locker
func NewRedisOwnerLocker(cfg RedisLockConfig) (*RedisOwnerLocker, error) {
	client := redis.NewClient(&redis.Options{
		Addr:     fmt.Sprintf("%s:%d", cfg.Host, cfg.Port),
		Password: cfg.Password,
		DB:       cfg.DB,
	})

	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()

	if err := client.Ping(ctx).Err(); err != nil {
		return nil, fmt.Errorf("failed to connect to Redis: %w", err)
	}

	return &RedisOwnerLocker{
		client:    client,
		keyPrefix: "import:lock:",
	}, nil
}

// NewRedisOwnerLockerWithClient creates a locker with an existing Redis client
func NewRedisOwnerLockerWithClient(client *redis.Client, keyPrefix string) *RedisOwnerLocker {
	if keyPrefix == "" {
		keyPrefix = "import:lock:"
	}
	return &RedisOwnerLocker{
		client:    client,
		keyPrefix: keyPrefix,
	}
}

// Acquire takes the lock with SETNX, TTL guards against a crashed holder
func (l *RedisOwnerLocker) Acquire(ctx context.Context, ownerKey string, ttl time.Duration) error {
	ok, err := l.client.SetNX(ctx, l.keyPrefix+ownerKey, "1", ttl).Result()
	if err != nil {
		return fmt.Errorf("failed to acquire import lock: %w", err)
	}
	if !ok {
		return shared.ErrOwnerLocked
	}
	return nil
}

// Release drops the lock
func (l *RedisOwnerLocker) Release(ctx context.Context, ownerKey string) error {
	return l.client.Del(ctx, l.keyPrefix+ownerKey).Err()
}

// InMemoryOwnerLocker implements OwnerLocker for single-instance deployments
// and tests. Expired entries are reaped lazily on the next Acquire.
type InMemoryOwnerLocker struct {
	mu    sync.Mutex
	locks map[string]time.Time
}

// NewInMemoryOwnerLocker creates an in-memory owner locker
func NewInMemoryOwnerLocker() *InMemoryOwnerLocker {
	return &InMemoryOwnerLocker{
		locks: make(map[string]time.Time),
	}
}

// Acquire takes the lock unless a live entry exists
func (l *InMemoryOwnerLocker) Acquire(_ context.Context, ownerKey string, ttl time.Duration) error {
	l.mu.Lock()
	defer l.mu.Unlock()

	if expiry, held := l.locks[ownerKey]; held && time.Now().Before(expiry) {
		return shared.ErrOwnerLocked
	}
	l.locks[ownerKey] = time.Now().Add(ttl)
	return nil
}

// Release drops the lock
func (l *InMemoryOwnerLocker) Release(_ context.Context, ownerKey string) error {
	l.mu.Lock()
	defer l.mu.Unlock()
	delete(l.locks, ownerKey)
	return nil
}
