package embedding

import (
	"context"
	"crypto/sha256"
	"encoding/hex"
	"errors"
	"fmt"
	"time"

	"github.com/redis/go-redis/v9"
	"go.uber.org/zap"
)

// RedisOptions configures a RedisCache.
type RedisOptions struct {
	Addr     string
	Password string
	DB       int
	// TTL bounds how long an entry lives; 0 keeps entries until evicted by Redis.
	TTL    time.Duration
	Prefix string
	Logger *zap.Logger
}

// RedisCache shares embeddings between processes through Redis string keys
// holding little-endian float32 blobs.
type RedisCache struct {
	client *redis.Client
	ttl    time.Duration
	prefix string
	logger *zap.Logger
}

// NewRedisCache connects to Redis and verifies the connection with PING.
func NewRedisCache(ctx context.Context, opts RedisOptions) (*RedisCache, error) {
	client := redis.NewClient(&redis.Options{
		Addr:     opts.Addr,
		Password: opts.Password,
		DB:       opts.DB,
	})
	if err := client.Ping(ctx).Err(); err != nil {
		_ = client.Close()
		return nil, fmt.Errorf("redis cache: ping %s: %w", opts.Addr, err)
	}
	prefix := opts.Prefix
	if prefix == "" {
		prefix = "kotae:emb:"
	}
	logger := opts.Logger
	if logger == nil {
		logger = zap.NewNop()
	}
	return &RedisCache{client: client, ttl: opts.TTL, prefix: prefix, logger: logger}, nil
}

func (c *RedisCache) key(k string) string {
	sum := sha256.Sum256([]byte(k))
	return c.prefix + hex.EncodeToString(sum[:])
}

// Get returns the cached vector; errors other than a miss are logged and treated as a miss.
func (c *RedisCache) Get(ctx context.Context, key string) ([]float32, bool) {
	b, err := c.client.Get(ctx, c.key(key)).Bytes()
	if err != nil {
		if !errors.Is(err, redis.Nil) {
			c.logger.Warn("redis cache get failed", zap.Error(err))
		}
		return nil, false
	}
	v, err := DecodeVector(b)
	if err != nil {
		c.logger.Warn("redis cache holds a corrupt entry", zap.Error(err))
		return nil, false
	}
	return v, true
}

// Set stores value under key; failures are logged, never returned.
func (c *RedisCache) Set(ctx context.Context, key string, value []float32) {
	if err := c.client.Set(ctx, c.key(key), EncodeVector(value), c.ttl).Err(); err != nil {
		c.logger.Warn("redis cache set failed", zap.Error(err))
	}
}

// Close closes the Redis client.
func (c *RedisCache) Close() error {
	return c.client.Close()
}
