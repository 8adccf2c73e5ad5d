// Copyright (c) 2026 Madalin Gabriel Ignisca <hi@madalin.me>
// Copyright (c) 2026 Vlah Software House SRL <contact@vlah.sh>
// All rights reserved. See LICENSE for details.

// preview.go keeps rendered site HTML in Valkey so preview requests skip
// the database. The store remains the source of truth; every failure here
// is logged and treated as a miss.
package cache

import (
	"context"
	"errors"
	"log/slog"
	"time"

	"github.com/google/uuid"
	"github.com/redis/go-redis/v9"
)

const (
	previewKeyPrefix = "preview:"

	// DefaultPreviewTTL is how long a rendered preview stays cached.
	DefaultPreviewTTL = 30 * time.Minute
)

// PreviewCache manages rendered preview HTML in Valkey.
type PreviewCache struct {
	client *redis.Client
	ttl    time.Duration
}

// NewPreviewCache creates a preview cache backed by client.
func NewPreviewCache(client *redis.Client, ttl time.Duration) *PreviewCache {
	if ttl <= 0 {
		ttl = DefaultPreviewTTL
	}
	return &PreviewCache{client: client, ttl: ttl}
}

// PreviewKey returns the Valkey key for a request's preview.
func PreviewKey(id uuid.UUID) string {
	return previewKeyPrefix + id.String()
}

// Get returns the cached HTML for id and whether it was found.
func (pc *PreviewCache) Get(ctx context.Context, id uuid.UUID) (string, bool) {
	val, err := pc.client.Get(ctx, PreviewKey(id)).Result()
	if errors.Is(err, redis.Nil) {
		return "", false
	}
	if err != nil {
		slog.Warn("preview cache get error", "request_id", id, "error", err)
		return "", false
	}
	slog.Debug("preview cache hit", "request_id", id)
	return val, true
}

// Set stores html for id with the configured TTL.
func (pc *PreviewCache) Set(ctx context.Context, id uuid.UUID, html string) {
	if err := pc.client.Set(ctx, PreviewKey(id), html, pc.ttl).Err(); err != nil {
		slog.Warn("preview cache set error", "request_id", id, "error", err)
	}
}
