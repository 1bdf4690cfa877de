package cache

import (
	"context"
	"crypto/sha256"
	"encoding/hex"
	"encoding/json"
	"errors"
	"fmt"
	"time"

	"github.com/redis/go-redis/v9"

	"NewsVerdict/internal/config"
	"NewsVerdict/internal/domain"
	"NewsVerdict/internal/ports"
)

// RedisCache stores predictions as JSON with a TTL.
type RedisCache struct {
	client *redis.Client
	ttl    time.Duration
}

var _ ports.ResultCache = (*RedisCache)(nil)

// NewRedisCache connects to Redis and verifies the connection.
func NewRedisCache(ctx context.Context, cfg config.CacheConfig) (*RedisCache, error) {
	client := redis.NewClient(&redis.Options{
		Addr:     cfg.Addr,
		Password: cfg.Password,
		DB:       cfg.DB,
	})

	pingCtx, cancel := context.WithTimeout(ctx, 5*time.Second)
	defer cancel()
	if err := client.Ping(pingCtx).Err(); err != nil {
		_ = client.Close()
		return nil, fmt.Errorf("ping redis %s: %w", cfg.Addr, err)
	}

	return &RedisCache{client: client, ttl: cfg.TTL}, nil
}

// Get returns a cached prediction when present.
func (c *RedisCache) Get(ctx context.Context, key string) (domain.PredictionResult, bool, error) {
	raw, err := c.client.Get(ctx, key).Bytes()
	if errors.Is(err, redis.Nil) {
		return domain.PredictionResult{}, false, nil
	}
	if err != nil {
		return domain.PredictionResult{}, false, fmt.Errorf("redis get: %w", err)
	}

	var result domain.PredictionResult
	if err := json.Unmarshal(raw, &result); err != nil {
		return domain.PredictionResult{}, false, fmt.Errorf("decode cached prediction: %w", err)
	}
	return result, true, nil
}

// Set stores a prediction.
func (c *RedisCache) Set(ctx context.Context, key string, result domain.PredictionResult) error {
	raw, err := json.Marshal(result)
	if err != nil {
		return fmt.Errorf("encode prediction: %w", err)
	}
	if err := c.client.Set(ctx, key, raw, c.ttl).Err(); err != nil {
		return fmt.Errorf("redis set: %w", err)
	}
	return nil
}

// Close releases the connection pool.
func (c *RedisCache) Close() error {
	return c.client.Close()
}

// Key derives a cache key from the artifact fingerprint and the exact text.
func Key(prefix, fingerprint, text string) string {
	sum := sha256.Sum256([]byte(text))
	return prefix + ":" + fingerprint + ":" + hex.EncodeToString(sum[:])
}
