package cache

import (
	"context"
	"encoding/json"
	"time"

	redis "github.com/redis/go-redis/v9"

	"katalogtoko/backend/internal/domain"
)

type RedisVendorCache struct {
	client *redis.Client
}

func NewRedisVendorCache(addr string, password string, db int) *RedisVendorCache {
	client := redis.NewClient(&redis.Options{
		Addr:     addr,
		Password: password,
		DB:       db,
	})

	return &RedisVendorCache{client: client}
}

func (c *RedisVendorCache) Ping(ctx context.Context) error {
	return c.client.Ping(ctx).Err()
}

func (c *RedisVendorCache) Close() error {
	return c.client.Close()
}

func (c *RedisVendorCache) Get(ctx context.Context, vendorID string) (*domain.Vendor, bool, error) {
	val, err := c.client.Get(ctx, vendorKey(vendorID)).Result()
	if err == redis.Nil {
		return nil, false, nil
	}
	if err != nil {
		return nil, false, err
	}

	var vendor domain.Vendor
	if err := json.Unmarshal([]byte(val), &vendor); err != nil {
		return nil, false, err
	}
	return &vendor, true, nil
}

func (c *RedisVendorCache) Set(ctx context.Context, vendor *domain.Vendor, ttl time.Duration) error {
	if vendor == nil {
		return nil
	}
	payload, err := json.Marshal(vendor)
	if err != nil {
		return err
	}
	return c.client.Set(ctx, vendorKey(vendor.VendorID), payload, ttl).Err()
}

func (c *RedisVendorCache) Invalidate(ctx context.Context, vendorID string) error {
	return c.client.Del(ctx, vendorKey(vendorID)).Err()
}

func vendorKey(vendorID string) string {
	return "vendor:" + vendorID
}
