package session

import (
	"context"
	"errors"
	"fmt"

	"github.com/redis/go-redis/v9"
)

// ErrRedisUnavailable wraps transport failures from the Redis backend so
// callers can distinguish storage outage from an absent key.
var ErrRedisUnavailable = errors.New("session storage unavailable")

// RedisBackend is a [Backend] over Redis, for deployments where several
// client processes share one session (kiosks, review stations).
type RedisBackend struct {
	client redis.UniversalClient
	prefix string
}

// NewRedisBackend creates a [RedisBackend]. The prefix namespaces every key;
// it defaults to "crclient".
func NewRedisBackend(client redis.UniversalClient, prefix string) (*RedisBackend, error) {
	if client == nil {
		return nil, errors.New("session: redis client is required")
	}
	if prefix == "" {
		prefix = "crclient"
	}
	return &RedisBackend{client: client, prefix: prefix}, nil
}

func (b *RedisBackend) key(key string) string {
	return b.prefix + ":" + key
}

// Get implements [Backend].
func (b *RedisBackend) Get(ctx context.Context, key string) (string, bool, error) {
	value, err := b.client.Get(ctx, b.key(key)).Result()
	if errors.Is(err, redis.Nil) {
		return "", false, nil
	}
	if err != nil {
		return "", false, fmt.Errorf("%w: %w", ErrRedisUnavailable, err)
	}
	return value, true, nil
}

// Set implements [Backend]. Keys carry no TTL: session lifetime is governed
// by token expiry, not storage expiry.
func (b *RedisBackend) Set(ctx context.Context, key, value string) error {
	if err := b.client.Set(ctx, b.key(key), value, 0).Err(); err != nil {
		return fmt.Errorf("%w: %w", ErrRedisUnavailable, err)
	}
	return nil
}

// Delete implements [Backend].
func (b *RedisBackend) Delete(ctx context.Context, key string) error {
	if err := b.client.Del(ctx, b.key(key)).Err(); err != nil {
		return fmt.Errorf("%w: %w", ErrRedisUnavailable, err)
	}
	return nil
}
