package services

import (
	"context"
	"time"

	"github.com/redis/go-redis/v9"
)

// Cache is the ephemeral store consulted first on point reads. An empty
// mapping from Get means absent-or-expired; only connectivity failures
// return an error.
type Cache interface {
	Put(ctx context.Context, uid string, fields map[string]string, ttl time.Duration) error
	Get(ctx context.Context, uid string) (map[string]string, error)
}

// RedisCache stores each user as a hash keyed by uid with a fixed TTL.
type RedisCache struct {
	client *redis.Client
}

func NewRedisCache(client *redis.Client) *RedisCache {
	return &RedisCache{client: client}
}

// Put overwrites the full field mapping for uid and (re)sets the expiry to
// ttl from now. There is no partial-field merge across calls.
func (c *RedisCache) Put(ctx context.Context, uid string, fields map[string]string, ttl time.Duration) error {
	pipe := c.client.Pipeline()
	pipe.Del(ctx, uid)
	pipe.HSet(ctx, uid, fields)
	pipe.Expire(ctx, uid, ttl)
	_, err := pipe.Exec(ctx)
	return err
}

// Get returns the stored mapping for uid. A missing or expired key yields an
// empty map and no error (the two are indistinguishable).
func (c *RedisCache) Get(ctx context.Context, uid string) (map[string]string, error) {
	return c.client.HGetAll(ctx, uid).Result()
}
