package ratelimit

import (
	"context"
	"errors"
	"fmt"
	"time"

	"binbot/internal/config"

	"github.com/go-redis/redis/v9"
	"go.uber.org/zap"
)

const keyPrefix = "binbot:ratelimit"

// Limiter decides whether a caller identified by key may perform one more
// BIN lookup in the current minute.
type Limiter interface {
	Allow(ctx context.Context, key string) bool
	Close() error
}

// New returns a Redis-backed limiter when an address is configured and
// reachable, and a Noop limiter otherwise.
func New(ctx context.Context, cfg config.RateLimitConfig, logger *zap.Logger) Limiter {
	if cfg.RedisAddr == "" || cfg.PerMinute <= 0 {
		logger.Info("Lookup rate limiting disabled")
		return Noop{}
	}

	client := redis.NewClient(&redis.Options{
		Addr:     cfg.RedisAddr,
		Password: cfg.RedisPassword,
		DB:       cfg.RedisDB,
	})

	pingCtx, cancel := context.WithTimeout(ctx, 3*time.Second)
	defer cancel()
	if err := client.Ping(pingCtx).Err(); err != nil {
		logger.Warn("Redis unreachable, lookup rate limiting disabled",
			zap.String("addr", cfg.RedisAddr),
			zap.Error(err))
		_ = client.Close()
		return Noop{}
	}

	logger.Info("Lookup rate limiting enabled",
		zap.String("addr", cfg.RedisAddr),
		zap.Int("per_minute", cfg.PerMinute))

	return NewRedis(client, cfg.PerMinute, logger, time.Now)
}

// Noop allows everything
type Noop struct{}

func (Noop) Allow(context.Context, string) bool { return true }

func (Noop) Close() error { return nil }

// Redis is a fixed-window counter per key and wall-clock minute
type Redis struct {
	client    *redis.Client
	perMinute int
	logger    *zap.Logger
	now       func() time.Time
}

// NewRedis creates a Redis limiter. It panics on nil dependencies.
func NewRedis(client *redis.Client, perMinute int, logger *zap.Logger, now func() time.Time) *Redis {
	if client == nil {
		panic("ratelimit: nil redis client")
	}
	if logger == nil {
		panic("ratelimit: nil logger")
	}
	if now == nil {
		panic("ratelimit: nil clock")
	}
	return &Redis{client: client, perMinute: perMinute, logger: logger, now: now}
}

// Allow increments the counter for key. Redis errors fail open; a cancelled
// context fails closed.
func (r *Redis) Allow(ctx context.Context, key string) bool {
	k := fmt.Sprintf("%s:%s::m%d", keyPrefix, key, r.now().Minute())

	cmds, err := r.client.TxPipelined(ctx, func(pipe redis.Pipeliner) error {
		pipe.Incr(ctx, k)
		pipe.Expire(ctx, k, time.Minute)
		return nil
	})
	if errors.Is(err, context.Canceled) {
		return false
	}
	if err != nil {
		r.logger.Error("Could not check rate limit due to Redis client error", zap.Error(err))
		return true
	}

	count := cmds[0].(*redis.IntCmd).Val()
	return count <= int64(r.perMinute)
}

func (r *Redis) Close() error {
	return r.client.Close()
}
