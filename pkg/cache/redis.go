package cache

import (
	"context"
	"encoding/json"
	"fmt"
	"time"

	"github.com/redis/go-redis/v9"

	"github.com/richard-senior/podds/internal/logger"
)

// RedisCache fronts the datasource so repeated period and history
// lookups don't hammer the upstream feed
type RedisCache struct {
	client *redis.Client
	prefix string
}

// NewRedisCache connects to Redis at the given URL and verifies the
// connection before returning
func NewRedisCache(redisURL, prefix string) (*RedisCache, error) {
	opt, err := redis.ParseURL(redisURL)
	if err != nil {
		return nil, fmt.Errorf("invalid redis url: %w", err)
	}

	client := redis.NewClient(opt)

	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()
	if err := client.Ping(ctx).Err(); err != nil {
		return nil, fmt.Errorf("redis ping failed: %w", err)
	}

	logger.Info("Connected to redis cache", redisURL)
	return &RedisCache{client: client, prefix: prefix}, nil
}

// Close closes the Redis connection
func (rc *RedisCache) Close() error {
	return rc.client.Close()
}

// HealthCheck pings Redis to verify the connection is alive
func (rc *RedisCache) HealthCheck(ctx context.Context) error {
	return rc.client.Ping(ctx).Err()
}

func (rc *RedisCache) key(key string) string {
	if rc.prefix == "" {
		return key
	}
	return rc.prefix + ":" + key
}

// SetJSON marshals the value and stores it with a TTL
func (rc *RedisCache) SetJSON(ctx context.Context, key string, value interface{}, ttl time.Duration) error {
	data, err := json.Marshal(value)
	if err != nil {
		return fmt.Errorf("failed to marshal cache value: %w", err)
	}
	return rc.client.Set(ctx, rc.key(key), data, ttl).Err()
}

// GetJSON loads a key and unmarshals it into v. Returns false on a miss.
func (rc *RedisCache) GetJSON(ctx context.Context, key string, v interface{}) (bool, error) {
	data, err := rc.client.Get(ctx, rc.key(key)).Bytes()
	if err == redis.Nil {
		return false, nil
	}
	if err != nil {
		return false, err
	}
	if err := json.Unmarshal(data, v); err != nil {
		return false, fmt.Errorf("corrupt cache entry %s: %w", key, err)
	}
	return true, nil
}

// Delete removes keys
func (rc *RedisCache) Delete(ctx context.Context, keys ...string) error {
	prefixed := make([]string, len(keys))
	for i, k := range keys {
		prefixed[i] = rc.key(k)
	}
	return rc.client.Del(ctx, prefixed...).Err()
}
