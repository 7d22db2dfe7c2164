package service

import (
	"context"
	"fmt"
	"os"
	"testing"
	"time"

	"github.com/redis/go-redis/v9"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestCacheKey(t *testing.T) {
	a := CacheKey("advice", "ollama:m", "prompt one")
	b := CacheKey("advice", "ollama:m", "prompt two")
	c := CacheKey("advice", "gemini:m", "prompt one")

	assert.Regexp(t, `^advice:[0-9a-f]{64}$`, a)
	assert.Equal(t, a, CacheKey("advice", "ollama:m", "prompt one"))
	assert.NotEqual(t, a, b)
	assert.NotEqual(t, a, c)
}

func TestRedisAdviceCache(t *testing.T) {
	// Skip this test if no Redis is available
	if os.Getenv("REDIS_HOST") == "" {
		t.Skip("Skipping Redis-dependent test - REDIS_HOST not set")
	}

	port := os.Getenv("REDIS_PORT")
	if port == "" {
		port = "6379"
	}
	client := redis.NewClient(&redis.Options{Addr: fmt.Sprintf("%s:%s", os.Getenv("REDIS_HOST"), port)})
	defer client.Close()

	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()
	require.NoError(t, client.Ping(ctx).Err())

	cache := NewRedisAdviceCache(client, time.Minute)
	model := "test:" + t.Name()
	prompt := fmt.Sprintf("prompt-%d", time.Now().UnixNano())
	t.Cleanup(func() {
		client.Del(context.Background(), CacheKey("advice", model, prompt))
	})

	t.Run("miss", func(t *testing.T) {
		_, ok, err := cache.Get(ctx, model, prompt)
		require.NoError(t, err)
		assert.False(t, ok)
	})

	t.Run("hit after set", func(t *testing.T) {
		require.NoError(t, cache.Set(ctx, model, prompt, "Apples are fine."))
		text, ok, err := cache.Get(ctx, model, prompt)
		require.NoError(t, err)
		assert.True(t, ok)
		assert.Equal(t, "Apples are fine.", text)

		ttl, err := client.TTL(ctx, CacheKey("advice", model, prompt)).Result()
		require.NoError(t, err)
		assert.Greater(t, ttl, time.Duration(0))
		assert.LessOrEqual(t, ttl, time.Minute)
	})
}
