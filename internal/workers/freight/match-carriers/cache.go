// internal/workers/freight/match-carriers/cache.go
package matchcarriers

import (
	"context"
	"crypto/sha256"
	"encoding/hex"
	"encoding/json"
	"errors"
	"fmt"
	"time"

	"carrier-matching/internal/common/metrics"
	"carrier-matching/internal/matching"

	"github.com/redis/go-redis/v9"
)

const cacheKeyPrefix = "match:load:"

// ResultCache stores serialized match result sets in Redis. A nil client or a
// non-positive TTL disables it.
type ResultCache struct {
	client *redis.Client
	ttl    time.Duration
}

func NewResultCache(client *redis.Client, ttl time.Duration) *ResultCache {
	return &ResultCache{client: client, ttl: ttl}
}

func (c *ResultCache) Enabled() bool {
	return c != nil && c.client != nil && c.ttl > 0
}

// CacheKey identifies a request by load and the options as sent, so two
// requests that differ only in an explicit default still get distinct keys.
func CacheKey(loadID int64, opts matching.Options) string {
	raw, _ := json.Marshal(opts)
	sum := sha256.Sum256(raw)
	return fmt.Sprintf("%s%d:%s", cacheKeyPrefix, loadID, hex.EncodeToString(sum[:8]))
}

// Get returns the cached set, or nil on a miss.
func (c *ResultCache) Get(ctx context.Context, key string) (*matching.MatchResultSet, error) {
	if !c.Enabled() {
		return nil, nil
	}

	val, err := c.client.Get(ctx, key).Result()
	if errors.Is(err, redis.Nil) {
		metrics.MatchCacheRequests.WithLabelValues("miss").Inc()
		return nil, nil
	}
	if err != nil {
		metrics.MatchCacheRequests.WithLabelValues("error").Inc()
		return nil, fmt.Errorf("cache get %s: %w", key, err)
	}

	var set matching.MatchResultSet
	if err := json.Unmarshal([]byte(val), &set); err != nil {
		metrics.MatchCacheRequests.WithLabelValues("error").Inc()
		return nil, fmt.Errorf("cache decode %s: %w", key, err)
	}
	metrics.MatchCacheRequests.WithLabelValues("hit").Inc()
	return &set, nil
}

func (c *ResultCache) Set(ctx context.Context, key string, set *matching.MatchResultSet) error {
	if !c.Enabled() || set == nil {
		return nil
	}
	data, err := json.Marshal(set)
	if err != nil {
		return fmt.Errorf("cache encode %s: %w", key, err)
	}
	if err := c.client.Set(ctx, key, data, c.ttl).Err(); err != nil {
		return fmt.Errorf("cache set %s: %w", key, err)
	}
	return nil
}
