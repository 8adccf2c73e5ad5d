package cache

import (
	"context"
	"log/slog"
	"time"

	"github.com/redis/go-redis/v9"
)

const (
	eventKeyPrefix = "webhook:"

	// DefaultEventRetention covers the gateway's retry window.
	DefaultEventRetention = 7 * 24 * time.Hour
)

// EventLedger remembers processed webhook event ids.
type EventLedger struct {
	client    *redis.Client
	retention time.Duration
}

// NewEventLedger creates a ledger keeping ids for retention.
func NewEventLedger(client *redis.Client, retention time.Duration) *EventLedger {
	if retention <= 0 {
		retention = DefaultEventRetention
	}
	return &EventLedger{client: client, retention: retention}
}

// Seen records eventID and reports whether it had already been recorded.
// Ledger errors report false so the event is still processed.
func (l *EventLedger) Seen(ctx context.Context, eventID string) bool {
	if eventID == "" {
		return false
	}
	fresh, err := l.client.SetNX(ctx, eventKeyPrefix+eventID, time.Now().Unix(), l.retention).Result()
	if err != nil {
		slog.Warn("event ledger error", "event_id", eventID, "error", err)
		return false
	}
	return !fresh
}

// Forget drops eventID so a redelivery is processed again. Used when
// handling the event failed after it was recorded.
func (l *EventLedger) Forget(ctx context.Context, eventID string) {
	if eventID == "" {
		return
	}
	if err := l.client.Del(ctx, eventKeyPrefix+eventID).Err(); err != nil {
		slog.Warn("event ledger forget error", "event_id", eventID, "error", err)
	}
}
