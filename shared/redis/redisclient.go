package redis

import (
	"context"
	"fmt"
	"time"

	"github.com/redis/go-redis/v9"
)

// DefaultStreamMaxLen bounds event streams; trimming is approximate
const DefaultStreamMaxLen int64 = 100000

// Config holds all configuration for the Redis client
type Config struct {
	Addr     string
	Password string
	DB       int
}

// RedisClient is a wrapper around the go-redis client.
// It provides the key and stream operations used for token revocation and audit events.
type RedisClient struct {
	client *redis.Client
	config *Config
}

// NewClient creates and connects a new RedisClient.
func NewClient(cfg *Config) (*RedisClient, error) {
	rdb := redis.NewClient(&redis.Options{
		Addr:     cfg.Addr,
		Password: cfg.Password,
		DB:       cfg.DB,
	})

	// Test the connection
	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()
	if err := rdb.Ping(ctx).Err(); err != nil {
		_ = rdb.Close()
		return nil, fmt.Errorf("redis ping failed: %w", err)
	}

	return &RedisClient{
		client: rdb,
		config: cfg,
	}, nil
}

// Close gracefully closes the Redis connection.
func (c *RedisClient) Close() error {
	return c.client.Close()
}

// GetClient returns the underlying go-redis client if needed.
func (c *RedisClient) GetClient() *redis.Client {
	return c.client
}

// SetWithExpiry stores a value that Redis drops after ttl
func (c *RedisClient) SetWithExpiry(ctx context.Context, key string, value interface{}, ttl time.Duration) error {
	if ttl <= 0 {
		return nil
	}
	if err := c.client.Set(ctx, key, value, ttl).Err(); err != nil {
		return fmt.Errorf("failed to SET %s: %w", key, err)
	}
	return nil
}

// Exists reports whether the key is present
func (c *RedisClient) Exists(ctx context.Context, key string) (bool, error) {
	n, err := c.client.Exists(ctx, key).Result()
	if err != nil {
		return false, fmt.Errorf("failed to check key %s: %w", key, err)
	}
	return n > 0, nil
}

// PublishEvent adds an event to a stream using XADD.
// 'data' should be a map[string]interface{} representing the event.
func (c *RedisClient) PublishEvent(ctx context.Context, streamName string, data map[string]interface{}) (string, error) {
	// Using '*' as the ID tells Redis to auto-generate a timestamp-based ID.
	args := &redis.XAddArgs{
		Stream: streamName,
		MaxLen: DefaultStreamMaxLen,
		Approx: true,
		Values: data,
	}

	msgID, err := c.client.XAdd(ctx, args).Result()
	if err != nil {
		return "", fmt.Errorf("failed to XADD to stream %s: %w", streamName, err)
	}
	return msgID, nil
}

// GetStreamLength returns the current stream length
func (c *RedisClient) GetStreamLength(ctx context.Context, streamName string) (int64, error) {
	n, err := c.client.XLen(ctx, streamName).Result()
	if err != nil {
		return 0, fmt.Errorf("failed to XLEN %s: %w", streamName, err)
	}
	return n, nil
}
