package predicate

import (
	"context"
	"time"

	"github.com/google/uuid"

	"structnotify/internal/broker"
	"structnotify/pkg/logging"
)

// ConfigEventProducer announces predicate changes on the configured topic so
// downstream caches can drop stale predicate lists.
type ConfigEventProducer struct {
	producer broker.Producer
	topic    string
}

func NewConfigEventProducer(producer broker.Producer, topic string) *ConfigEventProducer {
	return &ConfigEventProducer{
		producer: producer,
		topic:    topic,
	}
}

func (p *ConfigEventProducer) PublishPredicateEvent(ctx context.Context, eventType, predicateID string, payload map[string]interface{}) error {
	if p.producer == nil || p.topic == "" {
		return nil
	}

	event := broker.ConfigEvent{
		ID:        uuid.New().String(),
		Type:      eventType,
		Entity:    "predicate",
		EntityID:  predicateID,
		Timestamp: time.Now(),
		Payload:   payload,
		TraceID:   logging.GetTraceID(ctx),
	}

	return p.producer.Publish(ctx, p.topic, event)
}
