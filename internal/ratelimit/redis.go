package ratelimit

import (
	"context"
	"fmt"
	"time"

	"github.com/redis/go-redis/v9"

	"github.com/spsh-store/email-service/internal/config"
)

const rateLimitKeyPrefix = "ratelimit:client:"

// RedisLimiter implements domain.RateLimiter with a fixed window kept
// in Redis, so the admission count survives restarts and is shared
// between replicas. Used when REDIS_URL is configured; otherwise the
// in-memory limiter serves a single process.
type RedisLimiter struct {
	client      *redis.Client
	maxRequests int
	duration    time.Duration
}

// NewRedisLimiter connects to Redis and returns a limiter bound to the
// configured window.
func NewRedisLimiter(ctx context.Context, redisCfg config.RedisConfig, limitCfg config.RateLimitConfig) (*RedisLimiter, error) {
	opt, err := redis.ParseURL(redisCfg.URL)
	if err != nil {
		return nil, fmt.Errorf("failed to parse Redis URL: %w", err)
	}

	opt.MaxRetries = redisCfg.MaxRetries
	opt.PoolSize = redisCfg.PoolSize
	opt.MinIdleConns = redisCfg.MinIdleConns

	client := redis.NewClient(opt)

	if err := client.Ping(ctx).Err(); err != nil {
		return nil, fmt.Errorf("failed to connect to Redis: %w", err)
	}

	return &RedisLimiter{
		client:      client,
		maxRequests: limitCfg.MaxRequests,
		duration:    limitCfg.WindowDuration,
	}, nil
}

// Allow checks the client's admission count for the current window.
// INCR is atomic on the server, so concurrent requests cannot slip past
// the ceiling. The key expires with the window, which also bounds
// per-client key growth.
func (l *RedisLimiter) Allow(ctx context.Context, clientID string) (bool, error) {
	key := rateLimitKeyPrefix + clientID

	count, err := l.client.Incr(ctx, key).Result()
	if err != nil {
		return false, fmt.Errorf("failed to check rate limit: %w", err)
	}

	// First request in the window owns setting the expiry.
	if count == 1 {
		if err := l.client.Expire(ctx, key, l.duration).Err(); err != nil {
			return false, fmt.Errorf("failed to set window expiry: %w", err)
		}
	}

	return count <= int64(l.maxRequests), nil
}

// Health checks the Redis connection.
func (l *RedisLimiter) Health(ctx context.Context) error {
	return l.client.Ping(ctx).Err()
}

// Close closes the underlying Redis client.
func (l *RedisLimiter) Close() error {
	return l.client.Close()
}
