// Package pulse streams the live activity feed to dashboard clients over
// WebSocket. The hub subscribes to the event bus and fans each domain event
// out to every connected client.
package pulse

import (
	"context"
	"encoding/json"
	"log"
	"net/http"
	"sync"
	"time"

	"github.com/coder/websocket"
	"github.com/coder/websocket/wsjson"

	"github.com/vinpro/dealdesk/internal/event"
	"github.com/vinpro/dealdesk/internal/types"
)

// writeTimeout bounds a single frame write so one stalled client cannot
// back up the consumer goroutine.
const writeTimeout = 5 * time.Second

// FeedMessage is the wire shape of one pulse frame.
type FeedMessage struct {
	Type       string            `json:"type"` // "event", "hello", "pong"
	EventID    string            `json:"event_id,omitempty"`
	EventType  string            `json:"event_type,omitempty"`
	OccurredAt time.Time         `json:"occurred_at,omitempty"`
	Summary    string            `json:"summary,omitempty"`
	Category   string            `json:"category,omitempty"`
	Weight     string            `json:"weight,omitempty"`
	Polarity   string            `json:"polarity,omitempty"`
	Actor      string            `json:"actor,omitempty"`
	Entities   []types.SourceRef `json:"entities,omitempty"`
	Payload    json.RawMessage   `json:"payload,omitempty"`
}

type client struct {
	conn *websocket.Conn
	send chan FeedMessage
}

// Hub tracks connected clients and broadcasts domain events to them.
// It implements the event bus Handler interface.
type Hub struct {
	mu      sync.RWMutex
	clients map[*client]struct{}
}

// NewHub creates an empty Hub.
func NewHub() *Hub {
	return &Hub{clients: make(map[*client]struct{})}
}

// HandleEvent broadcasts one domain event to every connected client. A client
// whose send queue is full misses the frame rather than slowing the bus down.
func (h *Hub) HandleEvent(_ context.Context, evt event.DomainEvent) error {
	msg := FeedMessage{
		Type:       "event",
		EventID:    evt.ID,
		EventType:  evt.EventType,
		OccurredAt: evt.OccurredAt,
		Summary:    evt.Summary,
		Category:   evt.Category,
		Weight:     evt.Weight,
		Polarity:   evt.Polarity,
		Actor:      evt.Actor,
		Entities:   evt.AffectedEntities,
		Payload:    evt.Payload,
	}

	h.mu.RLock()
	defer h.mu.RUnlock()
	for c := range h.clients {
		select {
		case c.send <- msg:
		default:
			log.Printf("pulse: client queue full, dropping %s", evt.EventType)
		}
	}
	return nil
}

// ClientCount returns the number of connected clients.
func (h *Hub) ClientCount() int {
	h.mu.RLock()
	defer h.mu.RUnlock()
	return len(h.clients)
}

// ServeHTTP upgrades to WebSocket and streams feed frames until the client
// disconnects.
func (h *Hub) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	conn, err := websocket.Accept(w, r, &websocket.AcceptOptions{
		OriginPatterns: []string{"*"},
	})
	if err != nil {
		log.Printf("pulse: websocket accept: %v", err)
		return
	}
	defer conn.CloseNow()

	c := &client{conn: conn, send: make(chan FeedMessage, 64)}
	h.register(c)
	defer h.unregister(c)

	ctx := r.Context()
	if err := h.write(ctx, conn, FeedMessage{Type: "hello"}); err != nil {
		return
	}

	// Reader goroutine: the feed is one-way, but we still consume client
	// frames so pings and close frames are processed.
	readErr := make(chan error, 1)
	go func() {
		for {
			var in struct {
				Type string `json:"type"`
			}
			if err := wsjson.Read(ctx, conn, &in); err != nil {
				readErr <- err
				return
			}
			if in.Type == "ping" {
				select {
				case c.send <- FeedMessage{Type: "pong"}:
				default:
				}
			}
		}
	}()

	for {
		select {
		case msg := <-c.send:
			if err := h.write(ctx, conn, msg); err != nil {
				return
			}
		case err := <-readErr:
			if websocket.CloseStatus(err) == -1 {
				log.Printf("pulse: read error: %v", err)
			}
			return
		case <-ctx.Done():
			return
		}
	}
}

func (h *Hub) write(ctx context.Context, conn *websocket.Conn, msg FeedMessage) error {
	wctx, cancel := context.WithTimeout(ctx, writeTimeout)
	defer cancel()
	return wsjson.Write(wctx, conn, msg)
}

func (h *Hub) register(c *client) {
	h.mu.Lock()
	defer h.mu.Unlock()
	h.clients[c] = struct{}{}
}

func (h *Hub) unregister(c *client) {
	h.mu.Lock()
	defer h.mu.Unlock()
	delete(h.clients, c)
}
