package httpapi

import (
	"context"
	"fmt"
	"time"

	"github.com/redis/go-redis/v9"
)

const redisRateLimitPrefix = "taskkeeper:ratelimit:"

// RedisRateLimiter shares fixed-window counters between server instances
// using INCR with an EXPIRE set on the first hit of each window.
type RedisRateLimiter struct {
	client redis.Cmdable
	prefix string
	limit  int
	window time.Duration
}

func NewRedisRateLimiter(client redis.Cmdable, limit int, window time.Duration) *RedisRateLimiter {
	if window <= 0 {
		window = time.Minute
	}
	return &RedisRateLimiter{
		client: client,
		prefix: redisRateLimitPrefix,
		limit:  limit,
		window: window,
	}
}

func (rl *RedisRateLimiter) Allow(ctx context.Context, key string) (RateDecision, error) {
	if rl.limit <= 0 {
		return RateDecision{Allowed: true}, nil
	}

	redisKey := rl.prefix + key

	counter, err := rl.client.Incr(ctx, redisKey).Result()
	if err != nil {
		return RateDecision{}, fmt.Errorf("redis incr: %w", err)
	}
	if counter == 1 {
		if err := rl.client.Expire(ctx, redisKey, rl.window).Err(); err != nil {
			return RateDecision{}, fmt.Errorf("redis expire: %w", err)
		}
	}

	ttl, err := rl.client.PTTL(ctx, redisKey).Result()
	if err != nil || ttl <= 0 {
		ttl = rl.window
	}

	return newDecision(int(counter), rl.limit, time.Now().Add(ttl)), nil
}
