package calls

import (
	"context"
	"errors"
	"fmt"
	"strconv"
	"time"

	"github.com/redis/go-redis/v9"
)

const cacheKeyPrefix = "calls:parcel:"

func cacheKey(callID int) string { return cacheKeyPrefix + strconv.Itoa(callID) }

// RedisCache keeps recently written records as parcels in Redis.
type RedisCache struct {
	rdb *redis.Client
	ttl time.Duration
}

func NewRedisCache(rdb *redis.Client, ttl time.Duration) *RedisCache {
	if ttl <= 0 {
		ttl = 10 * time.Minute
	}
	return &RedisCache{rdb: rdb, ttl: ttl}
}

// Get returns (nil, nil) on a cache miss.
func (c *RedisCache) Get(ctx context.Context, callID int) (*Record, error) {
	b, err := c.rdb.Get(ctx, cacheKey(callID)).Bytes()
	if err != nil {
		if errors.Is(err, redis.Nil) {
			return nil, nil
		}
		return nil, fmt.Errorf("calls: cache get: %w", err)
	}
	return Unmarshal(b)
}

func (c *RedisCache) Set(ctx context.Context, r *Record) error {
	if err := c.rdb.Set(ctx, cacheKey(r.CallID()), Marshal(r), c.ttl).Err(); err != nil {
		return fmt.Errorf("calls: cache set: %w", err)
	}
	return nil
}
