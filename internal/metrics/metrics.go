// Package metrics registers the Prometheus instruments exported on /metrics.
package metrics

import (
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

var (
	// HTTPRequests counts requests by route pattern, method and status class.
	HTTPRequests = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "dealdesk_http_requests_total",
			Help: "HTTP requests served",
		},
		[]string{"route", "method", "status"},
	)

	// HTTPDuration observes request latency by route pattern.
	HTTPDuration = promauto.NewHistogramVec(
		prometheus.HistogramOpts{
			Name:    "dealdesk_http_request_duration_seconds",
			Help:    "HTTP request latency",
			Buckets: prometheus.DefBuckets,
		},
		[]string{"route"},
	)

	// EventsPublished counts domain events handed to the bus, by type.
	EventsPublished = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "dealdesk_events_published_total",
			Help: "Domain events published to the event bus",
		},
		[]string{"event_type"},
	)

	// MarketLookups counts market valuations by result source.
	MarketLookups = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "dealdesk_market_lookups_total",
			Help: "Market valuation lookups by source",
		},
		[]string{"source"},
	)
)
