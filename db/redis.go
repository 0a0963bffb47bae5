package db

import (
	"context"
	"time"

	"github.com/redis/go-redis/v9"
)

var Redis *redis.Client
var Ctx = context.Background()

const (
	FeedCacheKey       = "bionews:cache:feed"
	CategoriesCacheKey = "bionews:cache:categories"
	MarketCacheKey     = "bionews:cache:market"

	CacheTTL = 5 * time.Minute
)

func ConnectRedis(redisURL string) error {
	opt, err := redis.ParseURL(redisURL)
	if err != nil {
		opt = &redis.Options{Addr: redisURL}
	}

	Redis = redis.NewClient(opt)

	_, err = Redis.Ping(Ctx).Result()
	return err
}

func CloseRedis() {
	if Redis != nil {
		Redis.Close()
	}
}

// CacheGet returns the cached payload for key, or "" on miss or error.
// Cache failures are never surfaced; callers fall through to the database.
func CacheGet(key string) string {
	if Redis == nil {
		return ""
	}
	val, err := Redis.Get(Ctx, key).Result()
	if err != nil {
		return ""
	}
	return val
}

func CacheSet(key string, payload string) {
	if Redis == nil {
		return
	}
	Redis.Set(Ctx, key, payload, CacheTTL)
}

// CacheInvalidate drops the read-side caches after an ingestion cycle wrote
// new records.
func CacheInvalidate() {
	if Redis == nil {
		return
	}
	Redis.Del(Ctx, FeedCacheKey, MarketCacheKey)
}
