package lease

import (
	"context"
	"fmt"
	"time"

	"github.com/redis/go-redis/v9"
	"github.com/vfg2006/adsync-api/internal/domain"
)

const redisKeyPrefix = "adsync:lease:"

var releaseScript = redis.NewScript(`
	if redis.call("get", KEYS[1]) == ARGV[1] then
		return redis.call("del", KEYS[1])
	else
		return 0
	end
`)

var extendScript = redis.NewScript(`
	if redis.call("get", KEYS[1]) == ARGV[1] then
		return redis.call("pexpire", KEYS[1], ARGV[2])
	else
		return 0
	end
`)

// RedisLocker usa SET NX com TTL; release e extend conferem o dono via Lua.
type RedisLocker struct {
	client *redis.Client
	now    func() time.Time
}

func NewRedisLocker(client *redis.Client) *RedisLocker {
	return &RedisLocker{
		client: client,
		now:    time.Now,
	}
}

func (l *RedisLocker) Acquire(ctx context.Context, key string, ttl time.Duration) (*domain.Lease, error) {
	now := l.now().UTC()
	lease := &domain.Lease{
		Key:        key,
		Holder:     newHolder(),
		AcquiredAt: now,
		ExpiresAt:  now.Add(ttl),
	}

	ok, err := l.client.SetNX(ctx, redisKeyPrefix+key, lease.Holder, ttl).Result()
	if err != nil {
		return nil, fmt.Errorf("lease: acquiring %s: %w", key, err)
	}
	if !ok {
		return nil, ErrLeaseHeld
	}

	return lease, nil
}

func (l *RedisLocker) Extend(ctx context.Context, lease *domain.Lease, ttl time.Duration) error {
	n, err := extendScript.Run(ctx, l.client, []string{redisKeyPrefix + lease.Key}, lease.Holder, ttl.Milliseconds()).Int64()
	if err != nil {
		return fmt.Errorf("lease: extending %s: %w", lease.Key, err)
	}
	if n == 0 {
		return ErrLeaseLost
	}

	lease.ExpiresAt = l.now().UTC().Add(ttl)
	return nil
}

func (l *RedisLocker) Release(ctx context.Context, lease *domain.Lease) error {
	if _, err := releaseScript.Run(ctx, l.client, []string{redisKeyPrefix + lease.Key}, lease.Holder).Result(); err != nil {
		return fmt.Errorf("lease: releasing %s: %w", lease.Key, err)
	}
	return nil
}
