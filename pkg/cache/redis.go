package cache

import (
	"context"
	"fmt"
	"log"
	"time"

	"github.com/go-redis/redis/v8"
)

// RedisCache is an implementation of the Cache interface using Redis.
// Each family has a version counter; data keys embed the current version, so
// Invalidate is a single INCR and stale entries expire on their own.
type RedisCache struct {
	client   *redis.Client
	prefix   string
	ttl      time.Duration
	observer Observer
}

// NewRedisCacheConfig contains options for creating a new RedisCache.
type NewRedisCacheConfig struct {
	Address  string
	Password string
	DB       int
	Prefix   string
	TTL      time.Duration
	Observer Observer
}

// NewRedisCache creates a new RedisCache and checks connectivity.
func NewRedisCache(ctx context.Context, cfg NewRedisCacheConfig) (*RedisCache, error) {
	rdb := redis.NewClient(&redis.Options{
		Addr:     cfg.Address,
		Password: cfg.Password,
		DB:       cfg.DB,
	})
	if _, err := rdb.Ping(ctx).Result(); err != nil {
		log.Printf("Failed to connect to Redis: %v", err)
		return nil, err
	}
	log.Println("Successfully connected to Redis")
	return NewRedisCacheWithClient(rdb, cfg), nil
}

// NewRedisCacheWithClient wraps an existing client.
func NewRedisCacheWithClient(client *redis.Client, cfg NewRedisCacheConfig) *RedisCache {
	prefix := cfg.Prefix
	if prefix == "" {
		prefix = "audti"
	}
	ttl := cfg.TTL
	if ttl <= 0 {
		ttl = 5 * time.Minute
	}
	return &RedisCache{client: client, prefix: prefix, ttl: ttl, observer: cfg.Observer}
}

func (r *RedisCache) versionKey(family string) string {
	return fmt.Sprintf("%s:ver:%s", r.prefix, family)
}

func (r *RedisCache) dataKey(ctx context.Context, family, key string) (string, error) {
	version, err := r.client.Get(ctx, r.versionKey(family)).Int64()
	if err == redis.Nil {
		version = 0
	} else if err != nil {
		return "", err
	}
	return fmt.Sprintf("%s:%s:v%d:%s", r.prefix, family, version, key), nil
}

// Get retrieves a value from Redis.
func (r *RedisCache) Get(ctx context.Context, family, key string) ([]byte, bool, error) {
	dk, err := r.dataKey(ctx, family, key)
	if err != nil {
		return nil, false, err
	}
	val, err := r.client.Get(ctx, dk).Bytes()
	if err == redis.Nil {
		r.miss(family)
		return nil, false, nil
	} else if err != nil {
		log.Printf("Error getting key %s from Redis: %v", dk, err)
		return nil, false, err
	}
	r.hit(family)
	return val, true, nil
}

// Set stores a value in Redis under the family's current version.
func (r *RedisCache) Set(ctx context.Context, family, key string, value []byte) error {
	dk, err := r.dataKey(ctx, family, key)
	if err != nil {
		return err
	}
	if err := r.client.Set(ctx, dk, value, r.ttl).Err(); err != nil {
		log.Printf("Error setting key %s in Redis: %v", dk, err)
		return err
	}
	return nil
}

// Invalidate bumps the family version.
func (r *RedisCache) Invalidate(ctx context.Context, family string) error {
	if err := r.client.Incr(ctx, r.versionKey(family)).Err(); err != nil {
		log.Printf("Error invalidating cache family %s in Redis: %v", family, err)
		return err
	}
	return nil
}

// Close releases the Redis connection pool.
func (r *RedisCache) Close() error {
	return r.client.Close()
}

func (r *RedisCache) hit(family string) {
	if r.observer != nil {
		r.observer.Hit(family)
	}
}

func (r *RedisCache) miss(family string) {
	if r.observer != nil {
		r.observer.Miss(family)
	}
}
