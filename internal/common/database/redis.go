// internal/common/database/redis.go
package database

import (
	"context"
	"fmt"
	"time"

	"carrier-matching/internal/common/config"

	"github.com/redis/go-redis/v9"
)

// RedisClient wraps the client backing the match result cache.
type RedisClient struct {
	Client *redis.Client
}

// NewRedis creates the result cache client. Cache reads sit on the job's
// critical path, so timeouts are short and a miss is preferred over a wait.
func NewRedis(cfg config.RedisConfig, opts PoolOptions) (*RedisClient, error) {
	if cfg.Address == "" {
		return nil, fmt.Errorf("redis address is empty")
	}

	poolSize := opts.redisPoolSize()
	rdb := redis.NewClient(&redis.Options{
		Addr:         cfg.Address,
		Password:     cfg.Password,
		DB:           cfg.DB,
		ClientName:   applicationName,
		DialTimeout:  2 * time.Second,
		ReadTimeout:  500 * time.Millisecond,
		WriteTimeout: 500 * time.Millisecond,
		PoolSize:     poolSize,
		MinIdleConns: min(opts.ConcurrentRuns, poolSize),
	})

	return &RedisClient{Client: rdb}, nil
}

// Ping tests the Redis connection
func (c *RedisClient) Ping(ctx context.Context) error {
	if err := c.Client.Ping(ctx).Err(); err != nil {
		return fmt.Errorf("redis ping failed: %w", err)
	}
	return nil
}

// Close closes the Redis connection
func (c *RedisClient) Close() error {
	if c.Client != nil {
		return c.Client.Close()
	}
	return nil
}
