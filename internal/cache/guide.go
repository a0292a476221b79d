// Copyright (c) 2026 Madalin Gabriel Ignisca <hi@madalin.me>
// Copyright (c) 2026 Vlah Software House SRL <contact@vlah.sh>
// All rights reserved. See LICENSE for details.

package cache

import (
	"context"
	"encoding/json"
	"log/slog"
	"time"

	"github.com/redis/go-redis/v9"

	"brandguide/internal/models"
)

const (
	// guideKeyPrefix is the Valkey key prefix for generated guides. The
	// version segment changes whenever the guide templates change.
	guideKeyPrefix = "guide:v1:"

	// DefaultGuideTTL is how long a generated guide stays cached.
	DefaultGuideTTL = 24 * time.Hour
)

// GuideCache stores generated guides in Valkey keyed by tier and a hash of
// the full brand profile, so any edit to the profile misses the cache.
type GuideCache struct {
	client *redis.Client
	ttl    time.Duration
}

// NewGuideCache creates a guide cache backed by the given Valkey client.
func NewGuideCache(client *redis.Client, ttl time.Duration) *GuideCache {
	if ttl == 0 {
		ttl = DefaultGuideTTL
	}
	return &GuideCache{client: client, ttl: ttl}
}

// GuideKey returns the cache key for a tier of a profile's guide.
func GuideKey(tier models.Tier, p models.BrandProfile) string {
	return guideKeyPrefix + string(tier) + ":" + p.Hash()
}

// Get decodes the cached guide into dst. Misses, transport errors and
// undecodable entries all report false.
func (gc *GuideCache) Get(ctx context.Context, tier models.Tier, p models.BrandProfile, dst any) bool {
	key := GuideKey(tier, p)
	val, err := gc.client.Get(ctx, key).Bytes()
	if err == redis.Nil {
		return false
	}
	if err != nil {
		slog.Warn("guide cache get error", "key", key, "error", err)
		return false
	}
	if err := json.Unmarshal(val, dst); err != nil {
		slog.Warn("guide cache decode error", "key", key, "error", err)
		return false
	}
	slog.Debug("guide cache hit", "key", key)
	return true
}

// Set stores a generated guide with the configured TTL.
func (gc *GuideCache) Set(ctx context.Context, tier models.Tier, p models.BrandProfile, v any) {
	key := GuideKey(tier, p)
	val, err := json.Marshal(v)
	if err != nil {
		slog.Warn("guide cache encode error", "key", key, "error", err)
		return
	}
	if err := gc.client.Set(ctx, key, val, gc.ttl).Err(); err != nil {
		slog.Warn("guide cache set error", "key", key, "error", err)
	}
}

// InvalidateAll removes every cached guide by scanning for the prefix.
func (gc *GuideCache) InvalidateAll(ctx context.Context) {
	var cursor uint64
	var deleted int
	for {
		keys, nextCursor, err := gc.client.Scan(ctx, cursor, guideKeyPrefix+"*", 100).Result()
		if err != nil {
			slog.Warn("guide cache scan error", "error", err)
			return
		}
		if len(keys) > 0 {
			if err := gc.client.Del(ctx, keys...).Err(); err != nil {
				slog.Warn("guide cache bulk delete error", "error", err)
			}
			deleted += len(keys)
		}
		cursor = nextCursor
		if cursor == 0 {
			break
		}
	}
	if deleted > 0 {
		slog.Info("guide cache cleared", "deleted", deleted)
	}
}
