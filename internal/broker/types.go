package broker

import (
	"context"
	"time"
)

// ConfigEvent announces a predicate change to downstream consumers (cache
// invalidation, audit). Key is the predicate ID so updates to the same
// predicate stay ordered within a partition.
type ConfigEvent struct {
	ID        string                 `json:"id"`
	Type      string                 `json:"type"`
	Entity    string                 `json:"entity"`
	EntityID  string                 `json:"entity_id"`
	Timestamp time.Time              `json:"timestamp"`
	Payload   map[string]interface{} `json:"payload,omitempty"`
	TraceID   string                 `json:"trace_id,omitempty"`
}

const (
	EventTypeCreated = "predicate.created"
	EventTypeUpdated = "predicate.updated"
	EventTypeDeleted = "predicate.deleted"
)

type Producer interface {
	Publish(ctx context.Context, topic string, event ConfigEvent) error
	Close() error
}
