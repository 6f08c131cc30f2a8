package cache

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"strings"
	"sync/atomic"
	"time"

	"github.com/go-redis/redis/v8"
	"go.uber.org/zap"
)

// redisClient is the subset of *redis.Client the registry uses.
type redisClient interface {
	Get(ctx context.Context, key string) *redis.StringCmd
	Set(ctx context.Context, key string, value interface{}, expiration time.Duration) *redis.StatusCmd
	Del(ctx context.Context, keys ...string) *redis.IntCmd
	Ping(ctx context.Context) *redis.StatusCmd
	Close() error
}

// CredentialCache is a Redis-backed registry of issued credentials, keyed
// by credential id.
type CredentialCache struct {
	client redisClient
	config *Config
	logger *zap.Logger
	stats  *cacheStats
}

// cacheStats tracks cache performance metrics
type cacheStats struct {
	hits   atomic.Int64
	misses atomic.Int64
	stored atomic.Int64
}

// NewCredentialCache connects to Redis and returns the registry
func NewCredentialCache(config *Config, logger *zap.Logger) (*CredentialCache, error) {
	opts, err := redis.ParseURL(config.RedisURL)
	if err != nil {
		return nil, fmt.Errorf("failed to parse Redis URL: %w", err)
	}

	opts.PoolSize = config.MaxConnections
	opts.MinIdleConns = config.MinIdleConns

	cache := newCredentialCache(redis.NewClient(opts), config, logger)

	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()

	if err := cache.Ping(ctx); err != nil {
		cache.Close()
		return nil, fmt.Errorf("failed to connect to Redis: %w", err)
	}

	logger.Info("Credential cache initialized successfully",
		zap.String("redis_url", maskRedisURL(config.RedisURL)),
		zap.Int("max_connections", config.MaxConnections),
		zap.Duration("default_ttl", config.DefaultTTL))

	return cache, nil
}

func newCredentialCache(client redisClient, config *Config, logger *zap.Logger) *CredentialCache {
	return &CredentialCache{
		client: client,
		config: config,
		logger: logger,
		stats:  &cacheStats{},
	}
}

// Ping tests the Redis connection
func (c *CredentialCache) Ping(ctx context.Context) error {
	return c.client.Ping(ctx).Err()
}

// Store registers a credential record with the configured TTL
func (c *CredentialCache) Store(ctx context.Context, record *CredentialRecord) error {
	if record.CredentialID == "" {
		return errors.New("credential id is required")
	}

	record.CachedAt = time.Now().UTC()
	record.TTL = int64(c.config.DefaultTTL.Seconds())

	data, err := json.Marshal(record)
	if err != nil {
		return fmt.Errorf("failed to marshal credential record: %w", err)
	}

	key := c.key(record.CredentialID)
	if err := c.client.Set(ctx, key, data, c.config.DefaultTTL).Err(); err != nil {
		c.logger.Error("Failed to store credential", zap.Error(err))
		return fmt.Errorf("failed to store credential: %w", err)
	}
	c.stats.stored.Add(1)

	c.logger.Debug("Credential stored",
		zap.String("key", key),
		zap.Int("skill_count", record.SkillCount))

	return nil
}

// Lookup returns the record for a credential id, or ErrNotFound
func (c *CredentialCache) Lookup(ctx context.Context, credentialID string) (*CredentialRecord, error) {
	key := c.key(credentialID)

	data, err := c.client.Get(ctx, key).Result()
	if errors.Is(err, redis.Nil) {
		c.stats.misses.Add(1)
		c.logger.Debug("Cache miss", zap.String("key", key))
		return nil, ErrNotFound
	}
	if err != nil {
		return nil, fmt.Errorf("failed to look up credential: %w", err)
	}

	var record CredentialRecord
	if err := json.Unmarshal([]byte(data), &record); err != nil {
		c.logger.Error("Failed to unmarshal credential record", zap.Error(err))
		// Delete corrupted cache entry
		c.client.Del(ctx, key)
		c.stats.misses.Add(1)
		return nil, ErrNotFound
	}

	c.stats.hits.Add(1)
	return &record, nil
}

// Revoke removes a credential from the registry
func (c *CredentialCache) Revoke(ctx context.Context, credentialID string) error {
	n, err := c.client.Del(ctx, c.key(credentialID)).Result()
	if err != nil {
		return fmt.Errorf("failed to revoke credential: %w", err)
	}
	if n == 0 {
		return ErrNotFound
	}
	return nil
}

// GetStats returns lookup statistics
func (c *CredentialCache) GetStats() CacheStats {
	stats := CacheStats{
		Hits:   c.stats.hits.Load(),
		Misses: c.stats.misses.Load(),
		Stored: c.stats.stored.Load(),
	}
	if total := stats.Hits + stats.Misses; total > 0 {
		stats.HitRate = float64(stats.Hits) / float64(total) * 100
	}
	return stats
}

// Close closes the Redis connection
func (c *CredentialCache) Close() error {
	if c.client != nil {
		return c.client.Close()
	}
	return nil
}

func (c *CredentialCache) key(credentialID string) string {
	return c.config.KeyPrefix + strings.ToLower(credentialID)
}

// maskRedisURL masks sensitive information in Redis URL for logging
func maskRedisURL(url string) string {
	at := strings.LastIndex(url, "@")
	if at < 0 {
		return url
	}
	userPart := url[:at]
	if colon := strings.LastIndex(userPart, ":"); colon > strings.Index(userPart, "://")+2 {
		return userPart[:colon+1] + "***" + url[at:]
	}
	return url
}
