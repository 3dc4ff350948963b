package pulse

import (
	"context"
	"testing"
	"time"

	"github.com/vinpro/dealdesk/internal/event"
	"github.com/vinpro/dealdesk/internal/types"
)

func TestHubBroadcastWithoutClients(t *testing.T) {
	h := NewHub()
	evt := event.DomainEvent{
		ID:         "ev-1",
		EventType:  "deal.status_changed",
		OccurredAt: time.Now(),
		Summary:    "Deal moved to approved",
		Category:   "deal",
		Weight:     "major",
		Polarity:   "positive",
	}
	if err := h.HandleEvent(context.Background(), evt); err != nil {
		t.Fatalf("HandleEvent with no clients: %v", err)
	}
	if n := h.ClientCount(); n != 0 {
		t.Errorf("ClientCount = %d, want 0", n)
	}
}

func TestHubQueuesForRegisteredClient(t *testing.T) {
	h := NewHub()
	c := &client{send: make(chan FeedMessage, 2)}
	h.register(c)
	defer h.unregister(c)

	evt := event.DomainEvent{
		ID:        "ev-1",
		EventType: "inventory.unit_added",
		Summary:   "2022 Honda Accord added to inventory",
		Category:  "inventory",
		Weight:    "info",
		Polarity:  "neutral",
		AffectedEntities: []types.SourceRef{
			{EntityType: "inventory", EntityID: "v-1", Role: "subject"},
		},
	}
	if err := h.HandleEvent(context.Background(), evt); err != nil {
		t.Fatalf("HandleEvent: %v", err)
	}

	select {
	case msg := <-c.send:
		if msg.Type != "event" || msg.EventID != "ev-1" {
			t.Errorf("frame = %+v", msg)
		}
		if len(msg.Entities) != 1 || msg.Entities[0].EntityID != "v-1" {
			t.Errorf("entities = %+v", msg.Entities)
		}
	default:
		t.Fatal("no frame queued for client")
	}
}

func TestHubDropsWhenClientQueueFull(t *testing.T) {
	h := NewHub()
	c := &client{send: make(chan FeedMessage, 1)}
	h.register(c)
	defer h.unregister(c)

	for i := 0; i < 3; i++ {
		if err := h.HandleEvent(context.Background(), event.DomainEvent{ID: "ev", EventType: "deal.pencil_created"}); err != nil {
			t.Fatalf("HandleEvent #%d: %v", i, err)
		}
	}
	if len(c.send) != 1 {
		t.Errorf("queue length = %d, want 1 (overflow dropped)", len(c.send))
	}
}
