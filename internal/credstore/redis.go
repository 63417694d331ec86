package credstore

import (
	"context"
	"errors"
	"fmt"

	"github.com/redis/go-redis/v9"
)

// Redis is the persistent Store used outside tests. Credentials
// survive console restarts the same way browser storage survives tab
// reloads; there is no TTL, the session manager decides when entries
// die.
type Redis struct {
	client *redis.Client
	prefix string
}

// NewRedis wraps a redis client. The prefix namespaces keys so several
// operators can share one redis instance.
func NewRedis(client *redis.Client, prefix string) *Redis {
	return &Redis{client: client, prefix: prefix}
}

// Get returns the stored value, or an empty string when the key is
// absent.
func (r *Redis) Get(ctx context.Context, key string) (string, error) {
	val, err := r.client.Get(ctx, r.prefixed(key)).Result()
	if err != nil {
		if errors.Is(err, redis.Nil) {
			return "", nil
		}
		return "", fmt.Errorf("credstore: get %s: %w", key, err)
	}
	return val, nil
}

// Set stores the value without expiry.
func (r *Redis) Set(ctx context.Context, key, value string) error {
	if err := r.client.Set(ctx, r.prefixed(key), value, 0).Err(); err != nil {
		return fmt.Errorf("credstore: set %s: %w", key, err)
	}
	return nil
}

// Remove deletes the key, silently when absent.
func (r *Redis) Remove(ctx context.Context, key string) error {
	if err := r.client.Del(ctx, r.prefixed(key)).Err(); err != nil && !errors.Is(err, redis.Nil) {
		return fmt.Errorf("credstore: remove %s: %w", key, err)
	}
	return nil
}

func (r *Redis) prefixed(key string) string {
	if r.prefix == "" {
		return key
	}
	return r.prefix + ":" + key
}
