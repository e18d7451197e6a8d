package services

import (
	"context"
	"testing"

	"github.com/redis/go-redis/v9"
	"github.com/stretchr/testify/assert"
)

func TestSetWithRetryReturnsLastErrorWhenRedisUnreachable(t *testing.T) {
	// Port 1 is never listening, so every attempt fails fast.
	cache := NewCacheService(redis.NewClient(&redis.Options{Addr: "127.0.0.1:1"}))

	err := cache.SetWithRetry(context.Background(), "training:1:ranking", map[string]string{"a": "b"}, 0, 2)
	assert.Error(t, err)
}

func TestCacheKeyGenerators(t *testing.T) {
	assert.Equal(t, "training:4:ranking", RankingCacheKey(4, ""))
	assert.Equal(t, "training:4:ranking:QB", RankingCacheKey(4, "QB"))
	assert.Equal(t, "training:4:", TrainingCachePrefix(4))
	assert.Equal(t, "trend:team:8", TeamTrendCacheKey(8))
}
