// Package cache is an optional Redis-backed lookup cache for LCU
// enrichment calls (champion and queue name resolution) that rarely
// change and are otherwise re-fetched every game. Trimmed from the
// teacher's internal/cache.CacheService: same graceful-disable
// behavior when no Redis is configured, same JSON get/set shape,
// narrowed to what the metadata collector actually needs.
package cache

import (
	"context"
	"encoding/json"
	"fmt"
	"log"
	"time"

	"github.com/redis/go-redis/v9"
)

// Service is a best-effort cache: every method is a no-op success (or
// a clean "not found") when Redis isn't configured, so callers never
// need to branch on whether caching is enabled.
type Service struct {
	client *redis.Client
	ctx    context.Context
}

// New connects to Redis if addr is non-empty, logging and continuing
// uncached on failure rather than treating it as fatal (this cache
// accelerates repeat lookups; it is never required for correctness).
func New(addr string) *Service {
	if addr == "" {
		log.Println("[cache] disabled (no REDIS_ADDR configured)")
		return &Service{ctx: context.Background()}
	}
	rdb := redis.NewClient(&redis.Options{Addr: addr})
	ctx := context.Background()
	if _, err := rdb.Ping(ctx).Result(); err != nil {
		log.Printf("[cache] redis connection failed, continuing uncached: %v", err)
		return &Service{ctx: ctx}
	}
	log.Println("[cache] redis connected")
	return &Service{client: rdb, ctx: ctx}
}

func (s *Service) enabled() bool { return s.client != nil }

// GetJSON unmarshals a cached value into dest, returning false if the
// cache is disabled or the key is absent.
func (s *Service) GetJSON(key string, dest interface{}) bool {
	if !s.enabled() {
		return false
	}
	raw, err := s.client.Get(s.ctx, key).Result()
	if err != nil {
		return false
	}
	return json.Unmarshal([]byte(raw), dest) == nil
}

// SetJSON stores a value with the given TTL; errors are logged, never
// returned, since a failed cache write must never fail the caller.
func (s *Service) SetJSON(key string, value interface{}, ttl time.Duration) {
	if !s.enabled() {
		return
	}
	data, err := json.Marshal(value)
	if err != nil {
		return
	}
	if err := s.client.Set(s.ctx, key, data, ttl).Err(); err != nil {
		log.Printf("[cache] set %s failed: %v", key, err)
	}
}

func ChampionKey(championId int) string { return fmt.Sprintf("champion:%d", championId) }
func QueueKey(queueId int) string       { return fmt.Sprintf("queue:%d", queueId) }
