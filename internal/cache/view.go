// Copyright (c) 2026 Madalin Gabriel Ignisca <hi@madalin.me>
// Copyright (c) 2026 Vlah Software House SRL <contact@vlah.sh>
// All rights reserved. See LICENSE for details.

package cache

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"log/slog"
	"time"

	"github.com/google/uuid"
	"github.com/redis/go-redis/v9"

	"alumnihub/internal/metrics"
)

const (
	// viewKeyPrefix is the Valkey key prefix for cached views.
	viewKeyPrefix = "view:"

	// DefaultViewTTL is how long a cached view stays valid.
	DefaultViewTTL = time.Minute
)

// Key groups, invalidated together.
const (
	CategoriesPrefix = "categories:"
	TrendingPrefix   = "trending:"
	TagsPrefix       = "tags:"
)

// ViewCache stores JSON-encoded read views in Valkey. Cached views may be
// stale for up to the TTL; mutating operations never read from it.
//
// A nil *ViewCache is valid and caches nothing. Every error is logged and
// treated as a miss, so the cache never fails a request.
type ViewCache struct {
	client *redis.Client
	ttl    time.Duration
}

// NewViewCache creates a view cache backed by the given Valkey client.
func NewViewCache(client *redis.Client, ttl time.Duration) *ViewCache {
	if ttl <= 0 {
		ttl = DefaultViewTTL
	}
	return &ViewCache{client: client, ttl: ttl}
}

// TreeKey is the key of the full category forest.
func TreeKey() string { return CategoriesPrefix + "tree" }

// BreadcrumbKey is the key of a category's breadcrumb.
func BreadcrumbKey(id uuid.UUID) string { return CategoriesPrefix + "breadcrumb:" + id.String() }

// TrendingKey is the key of one trending-topics listing.
func TrendingKey(windowDays, limit int) string {
	return fmt.Sprintf("%s%d:%d", TrendingPrefix, windowDays, limit)
}

// PopularTagsKey is the key of one popular-tags listing.
func PopularTagsKey(limit int) string { return fmt.Sprintf("%spopular:%d", TagsPrefix, limit) }

// Get decodes the cached view under key into dst and reports a hit.
func (vc *ViewCache) Get(ctx context.Context, key string, dst any) bool {
	if vc == nil {
		return false
	}

	raw, err := vc.client.Get(ctx, viewKeyPrefix+key).Bytes()
	if errors.Is(err, redis.Nil) {
		metrics.CacheResults.WithLabelValues("miss").Inc()
		return false
	}
	if err != nil {
		metrics.CacheResults.WithLabelValues("error").Inc()
		slog.Warn("view cache get error", "key", key, "error", err)
		return false
	}
	if err := json.Unmarshal(raw, dst); err != nil {
		metrics.CacheResults.WithLabelValues("error").Inc()
		slog.Warn("view cache decode error", "key", key, "error", err)
		return false
	}

	metrics.CacheResults.WithLabelValues("hit").Inc()
	slog.Debug("view cache hit", "key", key)
	return true
}

// Set stores v under key with the configured TTL.
func (vc *ViewCache) Set(ctx context.Context, key string, v any) {
	if vc == nil {
		return
	}

	raw, err := json.Marshal(v)
	if err != nil {
		slog.Warn("view cache encode error", "key", key, "error", err)
		return
	}
	if err := vc.client.Set(ctx, viewKeyPrefix+key, raw, vc.ttl).Err(); err != nil {
		slog.Warn("view cache set error", "key", key, "error", err)
	}
}

// InvalidatePrefix removes every cached view whose key starts with prefix.
func (vc *ViewCache) InvalidatePrefix(ctx context.Context, prefix string) {
	if vc == nil {
		return
	}

	var (
		cursor  uint64
		deleted int
	)
	for {
		keys, next, err := vc.client.Scan(ctx, cursor, viewKeyPrefix+prefix+"*", 100).Result()
		if err != nil {
			slog.Warn("view cache scan error", "prefix", prefix, "error", err)
			return
		}
		if len(keys) > 0 {
			if err := vc.client.Del(ctx, keys...).Err(); err != nil {
				slog.Warn("view cache bulk delete error", "prefix", prefix, "error", err)
			}
			deleted += len(keys)
		}
		cursor = next
		if cursor == 0 {
			break
		}
	}
	slog.Debug("view cache invalidated", "prefix", prefix, "deleted", deleted)
}
