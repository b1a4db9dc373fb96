package rediscache

import (
	"context"
	"time"

	"github.com/pkg/errors"
	"github.com/redis/go-redis/v9"
)

// RateLimiter ограничивает частоту вызовов функции симуляции GPS:
// фиксированное окно по ключу-минуте.
type RateLimiter struct {
	c *redis.Client
}

func NewRateLimiter(addr string) *RateLimiter {
	return &RateLimiter{
		c: redis.NewClient(&redis.Options{
			Addr:        addr,
			DialTimeout: 2 * time.Second,
		}),
	}
}

// Allow инкрементит счётчик окна и возвращает (allowed, currentCount).
// TTL ставится только при создании ключа: повторные вызовы не должны
// продлевать окно, иначе под постоянной нагрузкой оно никогда не истечёт.
func (rl *RateLimiter) Allow(ctx context.Context, key string, limit int64, window time.Duration) (bool, int64, error) {
	n, err := rl.c.Incr(ctx, key).Result()
	if err != nil {
		return false, 0, errors.Wrapf(err, "redis ratelimit incr %s", key)
	}
	if n == 1 {
		if err := rl.c.Expire(ctx, key, window).Err(); err != nil {
			return false, n, errors.Wrapf(err, "redis ratelimit expire %s", key)
		}
	}
	return n <= limit, n, nil
}
