package geocode

import (
	"context"
	"encoding/json"
	"log"
	"strconv"
	"strings"
	"time"

	"github.com/go-redis/redis/v8"
)

// Searcher resolves a free-form address query to candidate locations.
type Searcher interface {
	Search(ctx context.Context, query string, limit int) ([]Result, error)
}

// CachedSearcher wraps a Searcher with a Redis lookaside cache. A nil
// redis client disables caching; every call goes straight upstream.
type CachedSearcher struct {
	inner Searcher
	redis *redis.Client
	ttl   time.Duration
}

func NewCachedSearcher(inner Searcher, client *redis.Client, ttl time.Duration) *CachedSearcher {
	return &CachedSearcher{inner: inner, redis: client, ttl: ttl}
}

func cacheKey(query string, limit int) string {
	if limit <= 0 {
		limit = 5
	}
	return "geocode:" + strings.ToLower(strings.TrimSpace(query)) + ":" + strconv.Itoa(limit)
}

func (c *CachedSearcher) Search(ctx context.Context, query string, limit int) ([]Result, error) {
	if c.redis == nil {
		return c.inner.Search(ctx, query, limit)
	}

	key := cacheKey(query, limit)
	if raw, err := c.redis.Get(ctx, key).Result(); err == nil {
		var cached []Result
		if err := json.Unmarshal([]byte(raw), &cached); err == nil {
			return cached, nil
		}
	} else if err != redis.Nil {
		log.Printf("geocode cache read: %v", err)
	}

	results, err := c.inner.Search(ctx, query, limit)
	if err != nil {
		return nil, err
	}

	if raw, err := json.Marshal(results); err == nil {
		if err := c.redis.Set(ctx, key, raw, c.ttl).Err(); err != nil {
			log.Printf("geocode cache write: %v", err)
		}
	}
	return results, nil
}
