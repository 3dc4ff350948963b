package handler

import (
	"context"
	"log"

	"github.com/vinpro/dealdesk/internal/event"
	"github.com/vinpro/dealdesk/internal/metrics"
)

// recordEvent records a domain event if a recorder is configured. Errors are
// logged but never fail the request; the write that mattered already
// happened.
func recordEvent(ctx context.Context, rec event.Recorder, evt event.DomainEvent) {
	if rec == nil {
		return
	}
	if err := rec.Record(ctx, evt); err != nil {
		log.Printf("event recording failed (%s): %v", evt.EventType, err)
		return
	}
	metrics.EventsPublished.WithLabelValues(evt.EventType).Inc()
}
