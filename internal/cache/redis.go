package cache

import (
	"context"
	"errors"
	"fmt"
	"strconv"
	"time"

	"github.com/redis/go-redis/v9"

	"github.com/studybuddy/studybuddy-api/internal/config"
)

// TTL applied to cached per-user match counts.
const matchCountTTL = time.Hour

type RedisCache struct {
	Client *redis.Client
}

// NewRedisCache initializes Redis client from config.
// Only Addr is mandatory, Password/DB are optional.
func NewRedisCache(cfg *config.Config) *RedisCache {
	opts := &redis.Options{
		Addr: cfg.Redis.Addr,
	}
	if cfg.Redis.Password != "" {
		opts.Password = cfg.Redis.Password
	}
	if cfg.Redis.DB != 0 {
		opts.DB = cfg.Redis.DB
	}
	return &RedisCache{Client: redis.NewClient(opts)}
}

func (c *RedisCache) Ping(ctx context.Context) error {
	return c.Client.Ping(ctx).Err()
}

func (c *RedisCache) Set(ctx context.Context, key string, value interface{}, ttl time.Duration) error {
	return c.Client.Set(ctx, key, value, ttl).Err()
}

func (c *RedisCache) Get(ctx context.Context, key string) (string, error) {
	return c.Client.Get(ctx, key).Result()
}

func (c *RedisCache) Del(ctx context.Context, key string) error {
	return c.Client.Del(ctx, key).Err()
}

// KeyForMatchCount generates the Redis key for a user's active match count.
func (c *RedisCache) KeyForMatchCount(userID uint64) string {
	return fmt.Sprintf("matches:count:%d", userID)
}

// GetMatchCount returns the cached active match count, or (-1, nil) on a
// cache miss so callers can fall back to the database.
func (c *RedisCache) GetMatchCount(ctx context.Context, userID uint64) (int64, error) {
	key := c.KeyForMatchCount(userID)
	val, err := c.Client.Get(ctx, key).Result()
	if errors.Is(err, redis.Nil) {
		return -1, nil
	} else if err != nil {
		return -1, err
	}
	// refresh TTL on access
	_ = c.Client.Expire(ctx, key, matchCountTTL).Err()
	return strconv.ParseInt(val, 10, 64)
}

// SetMatchCount stores the active match count with a fresh TTL.
func (c *RedisCache) SetMatchCount(ctx context.Context, userID uint64, count int64) error {
	return c.Client.Set(ctx, c.KeyForMatchCount(userID), count, matchCountTTL).Err()
}

// InvalidateMatchCount drops the cached count after a status transition.
func (c *RedisCache) InvalidateMatchCount(ctx context.Context, userID uint64) error {
	return c.Client.Del(ctx, c.KeyForMatchCount(userID)).Err()
}

// Allow implements a fixed-window rate probe keyed by caller identity.
// The first hit of a window sets the expiry; the call reports whether the
// caller is still within maxRequests for the current window.
func (c *RedisCache) Allow(ctx context.Context, callerKey string, maxRequests int, window time.Duration) (bool, error) {
	key := "ratelimit:" + callerKey

	count, err := c.Client.Incr(ctx, key).Result()
	if err != nil {
		return false, err
	}
	if count == 1 {
		if err := c.Client.Expire(ctx, key, window).Err(); err != nil {
			return false, err
		}
	}
	return count <= int64(maxRequests), nil
}
