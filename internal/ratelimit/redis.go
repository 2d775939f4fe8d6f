package ratelimit

import (
	"context"
	"fmt"
	"math"
	"time"

	"github.com/redis/go-redis/v9"
)

const (
	redisKeyPrefix = "bookreview:ratelimit:"
	redisWindow    = time.Second
)

// NewRedisClient connects and pings Redis.
func NewRedisClient(addr, password string) (*redis.Client, error) {
	cli := redis.NewClient(&redis.Options{
		Addr:         addr,
		Password:     password,
		DialTimeout:  5 * time.Second,
		ReadTimeout:  2 * time.Second,
		WriteTimeout: 2 * time.Second,
	})
	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()
	if err := cli.Ping(ctx).Err(); err != nil {
		_ = cli.Close()
		return nil, fmt.Errorf("redis ping: %w", err)
	}
	return cli, nil
}

// RedisLimiter counts requests per key in a one-second window.
type RedisLimiter struct {
	rdb   *redis.Client
	limit int64
}

// WindowLimit is the most requests a token bucket of rps and burst lets through
// in one second, used as the Redis window size. Zero when rps disables limiting.
func WindowLimit(rps float64, burst int) int {
	if rps <= 0 {
		return 0
	}
	return int(math.Ceil(rps)) + max(burst, 0)
}

func NewRedis(rdb *redis.Client, limitPerSec int) *RedisLimiter {
	return &RedisLimiter{rdb: rdb, limit: int64(limitPerSec)}
}

func (l *RedisLimiter) Allow(ctx context.Context, key string) (bool, error) {
	key = redisKeyPrefix + key

	pipe := l.rdb.TxPipeline()
	incr := pipe.Incr(ctx, key)
	pipe.ExpireNX(ctx, key, redisWindow)
	if _, err := pipe.Exec(ctx); err != nil {
		return false, err
	}
	return incr.Val() <= l.limit, nil
}
