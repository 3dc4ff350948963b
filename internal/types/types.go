// Package types holds the shared value types that cross package boundaries:
// event source references and activity-feed entries stored as JSON documents.
package types

import (
	"encoding/json"
	"time"
)

// SourceRef links an event to one entity it affected, with the entity's role
// in the event ("subject", "target", "context", "related").
type SourceRef struct {
	EntityType string `json:"entity_type"`
	EntityID   string `json:"entity_id"`
	Role       string `json:"role"`
}

// ActivityEntry is one row of the pulse feed: a domain event denormalized per
// affected entity so the feed can be queried by any entity it touches.
type ActivityEntry struct {
	EventID           string          `json:"event_id"`
	EventType         string          `json:"event_type"`
	OccurredAt        time.Time       `json:"occurred_at"`
	IndexedEntityType string          `json:"indexed_entity_type"`
	IndexedEntityID   string          `json:"indexed_entity_id"`
	EntityRole        string          `json:"entity_role"`
	SourceRefs        []SourceRef     `json:"source_refs,omitempty"`
	Summary           string          `json:"summary"`
	Category          string          `json:"category"`
	Weight            string          `json:"weight"`
	Polarity          string          `json:"polarity"`
	Actor             string          `json:"actor,omitempty"`
	Payload           json.RawMessage `json:"payload,omitempty"`
}
