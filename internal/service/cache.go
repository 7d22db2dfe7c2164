package service

import (
	"context"
	"crypto/sha256"
	"encoding/hex"
	"errors"
	"fmt"
	"time"

	"github.com/redis/go-redis/v9"
)

// RedisAdviceCache stores generated advice in Redis with a TTL.
type RedisAdviceCache struct {
	redis  *redis.Client
	ttl    time.Duration
	prefix string
}

// NewRedisAdviceCache creates a cache whose entries expire after ttl.
func NewRedisAdviceCache(client *redis.Client, ttl time.Duration) *RedisAdviceCache {
	return &RedisAdviceCache{
		redis:  client,
		ttl:    ttl,
		prefix: "advice",
	}
}

// CacheKey derives the Redis key for a (model, prompt) pair.
func CacheKey(prefix, model, prompt string) string {
	sum := sha256.Sum256([]byte(model + "\x00" + prompt))
	return fmt.Sprintf("%s:%s", prefix, hex.EncodeToString(sum[:]))
}

// Get returns the cached advice, if any.
func (c *RedisAdviceCache) Get(ctx context.Context, model, prompt string) (string, bool, error) {
	text, err := c.redis.Get(ctx, CacheKey(c.prefix, model, prompt)).Result()
	if errors.Is(err, redis.Nil) {
		return "", false, nil
	}
	if err != nil {
		return "", false, fmt.Errorf("failed to get advice from Redis: %w", err)
	}
	return text, true, nil
}

// Set stores advice for the pair.
func (c *RedisAdviceCache) Set(ctx context.Context, model, prompt, text string) error {
	if err := c.redis.Set(ctx, CacheKey(c.prefix, model, prompt), text, c.ttl).Err(); err != nil {
		return fmt.Errorf("failed to save advice to Redis: %w", err)
	}
	return nil
}
