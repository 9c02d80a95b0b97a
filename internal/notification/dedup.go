package notification

import (
	"context"
	"time"

	"github.com/redis/go-redis/v9"

	"structnotify/internal/constants"
	"structnotify/internal/logger"
	"structnotify/pkg/metrics"
)

// DeliveryMarker suppresses events that were already handed out. Event IDs
// are stable across passes, so a SetNX per ID is enough: the first pass to
// claim an ID wins, later passes drop it until the key expires.
//
// Fails open on Redis errors: a flaky cache must not swallow notifications.
type DeliveryMarker struct {
	client *redis.Client
	ttl    time.Duration
	logger logger.Logger
}

func NewDeliveryMarker(client *redis.Client, ttl time.Duration, log logger.Logger) *DeliveryMarker {
	if ttl <= 0 {
		ttl = constants.DefaultDeliveredTTL
	}
	return &DeliveryMarker{
		client: client,
		ttl:    ttl,
		logger: log,
	}
}

func (m *DeliveryMarker) Suppress(ctx context.Context, events []Event) []Event {
	kept := make([]Event, 0, len(events))
	for _, event := range events {
		key := constants.CacheKeyPrefixDelivered + event.ID

		set, err := m.client.SetNX(ctx, key, 1, m.ttl).Result()
		if err != nil {
			m.logger.WarnwCtx(ctx, "Delivery marking failed, passing event through",
				"error", err,
				"event_id", event.ID,
			)
			kept = append(kept, event)
			continue
		}
		if !set {
			metrics.EventsSuppressedTotal.Inc()
			continue
		}
		kept = append(kept, event)
	}
	return kept
}
