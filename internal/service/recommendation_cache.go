package service

import (
	"context"
	"encoding/json"
	"time"

	"github.com/redis/go-redis/v9"

	"github.com/spec-kit/maintenance-scheduler/internal/persistence"
	"github.com/spec-kit/maintenance-scheduler/internal/scheduling"
)

// RecommendationCache keeps worker recommendations per request in Redis.
// Entries expire on their own; assignment mutations invalidate them early
// because workloads shift as soon as a booking lands.
type RecommendationCache struct {
	client *redis.Client
	ttl    time.Duration
}

// NewRecommendationCache builds the cache. A nil Redis handle yields a cache
// that always misses, which keeps the scheduling path usable without Redis.
func NewRecommendationCache(r *persistence.Redis, ttl time.Duration) *RecommendationCache {
	cache := &RecommendationCache{ttl: ttl}
	if r != nil {
		cache.client = r.Client
	}
	return cache
}

func recommendationKey(requestID string) string {
	return "recommendations:" + requestID
}

// Get returns the cached recommendations for a request, if present.
func (c *RecommendationCache) Get(ctx context.Context, requestID string) ([]scheduling.Recommendation, bool) {
	if c == nil || c.client == nil {
		return nil, false
	}
	raw, err := c.client.Get(ctx, recommendationKey(requestID)).Bytes()
	if err != nil {
		return nil, false
	}
	var recs []scheduling.Recommendation
	if err := json.Unmarshal(raw, &recs); err != nil {
		return nil, false
	}
	return recs, true
}

// Set stores recommendations with the configured TTL. Failures are ignored;
// the cache is an accelerator, not a source of truth.
func (c *RecommendationCache) Set(ctx context.Context, requestID string, recs []scheduling.Recommendation) {
	if c == nil || c.client == nil {
		return
	}
	raw, err := json.Marshal(recs)
	if err != nil {
		return
	}
	_ = c.client.Set(ctx, recommendationKey(requestID), raw, c.ttl).Err()
}

// Invalidate drops the cached entry for a request.
func (c *RecommendationCache) Invalidate(ctx context.Context, requestID string) {
	if c == nil || c.client == nil {
		return
	}
	_ = c.client.Del(ctx, recommendationKey(requestID)).Err()
}
