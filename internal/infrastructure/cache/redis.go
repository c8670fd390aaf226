package cache

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"time"

	"github.com/pantry/backend/internal/domain"
	"github.com/redis/go-redis/v9"
)

const redisKeyPrefix = "pantry:product:"

// RedisCache shares product lookups between service instances.
// A zero TTL stores entries without expiry.
type RedisCache struct {
	client redis.Cmdable
	ttl    time.Duration
}

// NewRedisCache creates a product cache on top of an existing Redis client
func NewRedisCache(client redis.Cmdable, ttl time.Duration) *RedisCache {
	return &RedisCache{client: client, ttl: ttl}
}

// NewRedisClient parses a redis:// URL and verifies the connection
func NewRedisClient(ctx context.Context, redisURL string) (*redis.Client, error) {
	opts, err := redis.ParseURL(redisURL)
	if err != nil {
		return nil, fmt.Errorf("parse redis url: %w", err)
	}

	client := redis.NewClient(opts)
	if err := client.Ping(ctx).Err(); err != nil {
		_ = client.Close()
		return nil, fmt.Errorf("%w: %v", domain.ErrCacheUnavailable, err)
	}
	return client, nil
}

// Get retrieves a product from Redis
func (c *RedisCache) Get(ctx context.Context, barcode string) (*domain.ProductDescriptor, error) {
	data, err := c.client.Get(ctx, redisKey(barcode)).Bytes()
	if err != nil {
		if errors.Is(err, redis.Nil) {
			return nil, domain.ErrCacheMiss
		}
		return nil, fmt.Errorf("%w: %v", domain.ErrCacheUnavailable, err)
	}

	var descriptor domain.ProductDescriptor
	if err := json.Unmarshal(data, &descriptor); err != nil {
		return nil, fmt.Errorf("decode cached product: %w", err)
	}
	return &descriptor, nil
}

// Set stores a product in Redis
func (c *RedisCache) Set(ctx context.Context, barcode string, descriptor *domain.ProductDescriptor) error {
	if descriptor == nil {
		return nil
	}

	data, err := json.Marshal(descriptor)
	if err != nil {
		return fmt.Errorf("encode product: %w", err)
	}

	if err := c.client.Set(ctx, redisKey(barcode), data, c.ttl).Err(); err != nil {
		return fmt.Errorf("%w: %v", domain.ErrCacheUnavailable, err)
	}
	return nil
}

// Delete removes a barcode from Redis
func (c *RedisCache) Delete(ctx context.Context, barcode string) error {
	if err := c.client.Del(ctx, redisKey(barcode)).Err(); err != nil {
		return fmt.Errorf("%w: %v", domain.ErrCacheUnavailable, err)
	}
	return nil
}

func redisKey(barcode string) string {
	return redisKeyPrefix + barcode
}
