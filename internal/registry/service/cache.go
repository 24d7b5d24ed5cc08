package service

import (
	"context"
	"encoding/json"
	"fmt"
	"time"

	"github.com/hushlane/central/internal/config"
	"github.com/hushlane/central/internal/registry/model"
	"github.com/redis/go-redis/v9"
)

// InstanceCache is the write-through cache of last-known instance state.
// Misses and errors never fail a heartbeat; the store stays authoritative.
type InstanceCache interface {
	WriteInstance(ctx context.Context, rec *model.InstanceRecord) error
	// ReadInstance returns (nil, nil) on a cache miss.
	ReadInstance(ctx context.Context, customerID string) (*model.InstanceRecord, error)
}

// NoopCache drops writes and always misses. Used when Redis is not configured.
type NoopCache struct{}

func (NoopCache) WriteInstance(ctx context.Context, rec *model.InstanceRecord) error {
	return nil
}

func (NoopCache) ReadInstance(ctx context.Context, customerID string) (*model.InstanceRecord, error) {
	return nil, nil
}

// RedisCache stores instance state as JSON under instance:<customer_id>.
type RedisCache struct {
	rdb *redis.Client
	ttl time.Duration
}

// NewRedisCache wraps rdb; entries expire after ttl so records of customers
// that stopped reporting eventually fall out of the cache.
func NewRedisCache(rdb *redis.Client, ttl time.Duration) *RedisCache {
	return &RedisCache{rdb: rdb, ttl: ttl}
}

// NewRedisClientFromConfig constructs a redis client from app config.
// Returns nil when no address is configured.
func NewRedisClientFromConfig(c *config.RedisConfig) *redis.Client {
	if c == nil || c.Addr == "" {
		return nil
	}
	return redis.NewClient(&redis.Options{
		Addr:     c.Addr,
		Password: c.Password,
		DB:       c.DB,
	})
}

func instanceKey(customerID string) string {
	return "instance:" + customerID
}

func (c *RedisCache) WriteInstance(ctx context.Context, rec *model.InstanceRecord) error {
	payload, err := json.Marshal(rec)
	if err != nil {
		return fmt.Errorf("marshal instance for cache: %w", err)
	}
	if err := c.rdb.Set(ctx, instanceKey(rec.CustomerID), payload, c.ttl).Err(); err != nil {
		return fmt.Errorf("write instance cache: %w", err)
	}
	return nil
}

func (c *RedisCache) ReadInstance(ctx context.Context, customerID string) (*model.InstanceRecord, error) {
	val, err := c.rdb.Get(ctx, instanceKey(customerID)).Result()
	if err == redis.Nil {
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("read instance cache: %w", err)
	}
	rec := new(model.InstanceRecord)
	if err := json.Unmarshal([]byte(val), rec); err != nil {
		return nil, fmt.Errorf("decode cached instance: %w", err)
	}
	return rec, nil
}
