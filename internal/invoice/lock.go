package invoice

import (
	"context"
	"fmt"
	"time"

	"github.com/google/uuid"
	"github.com/redis/go-redis/v9"

	"github.com/aeronaa/settlement/internal/shared"
)

// BuildLock serializes invoice builds per vendor/period through a Redis lease.
// The database unique constraint is the final arbiter; the lock keeps
// concurrent aggregation requests from doing the work twice.
type BuildLock struct {
	client *redis.Client
	ttl    time.Duration
}

// NewBuildLock constructs the lock with a lease TTL.
func NewBuildLock(client *redis.Client, ttl time.Duration) *BuildLock {
	if ttl <= 0 {
		ttl = 30 * time.Second
	}
	return &BuildLock{client: client, ttl: ttl}
}

// BuildLockKey builds the redis key for one vendor/period critical section.
func BuildLockKey(vendorID int64, periodKey string) string {
	return fmt.Sprintf("settlement:vendor:%d:period:%s:build", vendorID, periodKey)
}

// Acquire takes the lease or fails with ErrConcurrentModification when another
// build holds it. The returned release func is safe to call once.
func (l *BuildLock) Acquire(ctx context.Context, vendorID int64, periodKey string) (func(), error) {
	key := BuildLockKey(vendorID, periodKey)
	token := uuid.NewString()

	ok, err := l.client.SetNX(ctx, key, token, l.ttl).Result()
	if err != nil {
		return nil, fmt.Errorf("build lock acquire: %w", err)
	}
	if !ok {
		return nil, fmt.Errorf("%w: build already in progress for vendor %d period %s",
			shared.ErrConcurrentModification, vendorID, periodKey)
	}

	release := func() {
		// Only the token holder may delete; an expired lease taken over by
		// another build must not be released from here.
		current, err := l.client.Get(context.Background(), key).Result()
		if err != nil || current != token {
			return
		}
		_ = l.client.Del(context.Background(), key).Err()
	}
	return release, nil
}

// NoopLocker satisfies BuildLocker without coordination, for single-process
// callers and tests.
type NoopLocker struct{}

// Acquire always succeeds.
func (NoopLocker) Acquire(context.Context, int64, string) (func(), error) {
	return func() {}, nil
}
