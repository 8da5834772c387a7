package ratelimit

import (
	"context"
	"testing"
	"time"

	"binbot/internal/config"

	"github.com/go-redis/redis/v9"
	"github.com/stretchr/testify/assert"
	"go.uber.org/zap/zaptest"
)

func unreachableClient() *redis.Client {
	return redis.NewClient(&redis.Options{
		Addr:        "127.0.0.1:1",
		DialTimeout: 50 * time.Millisecond,
		MaxRetries:  -1,
	})
}

func TestNew_DisabledWithoutAddress(t *testing.T) {
	limiter := New(context.Background(), config.RateLimitConfig{PerMinute: 10}, zaptest.NewLogger(t))

	assert.IsType(t, Noop{}, limiter)
	assert.True(t, limiter.Allow(context.Background(), "chat:1"))
	assert.NoError(t, limiter.Close())
}

func TestNew_DisabledWhenUnreachable(t *testing.T) {
	cfg := config.RateLimitConfig{RedisAddr: "127.0.0.1:1", PerMinute: 10}

	limiter := New(context.Background(), cfg, zaptest.NewLogger(t))

	assert.IsType(t, Noop{}, limiter)
}

func TestRedis_FailsOpenOnClientError(t *testing.T) {
	limiter := NewRedis(unreachableClient(), 1, zaptest.NewLogger(t), time.Now)
	defer limiter.Close()

	assert.True(t, limiter.Allow(context.Background(), "chat:1"))
	assert.True(t, limiter.Allow(context.Background(), "chat:1"))
}

func TestRedis_FailsClosedOnCancelledContext(t *testing.T) {
	limiter := NewRedis(unreachableClient(), 10, zaptest.NewLogger(t), time.Now)
	defer limiter.Close()

	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	assert.False(t, limiter.Allow(ctx, "chat:1"))
}

func TestNewRedis_PanicsOnNilDependencies(t *testing.T) {
	logger := zaptest.NewLogger(t)

	assert.Panics(t, func() { NewRedis(nil, 1, logger, time.Now) })
	assert.Panics(t, func() { NewRedis(unreachableClient(), 1, nil, time.Now) })
	assert.Panics(t, func() { NewRedis(unreachableClient(), 1, logger, nil) })
}
