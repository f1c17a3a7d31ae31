// Package metrics provides Prometheus instrumentation for the chat server.
// It exposes gauges for live connection and room counts, counters for message
// throughput, and a histogram for message routing latency.
package metrics

import (
	"net/http"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promhttp"
)

var (
	// ConnectionsActive tracks the current number of live WebSocket connections.
	ConnectionsActive = prometheus.NewGauge(prometheus.GaugeOpts{
		Name: "chat_connections_active",
		Help: "Current number of live WebSocket connections",
	})

	// RoomsActive tracks the current number of rooms with at least one subscriber.
	RoomsActive = prometheus.NewGauge(prometheus.GaugeOpts{
		Name: "chat_rooms_active",
		Help: "Current number of rooms with at least one subscriber",
	})

	// MessagesTotal counts routed messages, labeled by outcome: "persisted",
	// "temporary", "rejected", or "failed".
	MessagesTotal = prometheus.NewCounterVec(prometheus.CounterOpts{
		Name: "chat_messages_total",
		Help: "Total number of send-message events routed",
	}, []string{"outcome"})

	// RouteLatency records end-to-end routing latency in seconds, from event
	// receipt to broadcast.
	RouteLatency = prometheus.NewHistogram(prometheus.HistogramOpts{
		Name:    "chat_route_latency_seconds",
		Help:    "Message routing latency in seconds",
		Buckets: []float64{.001, .005, .01, .025, .05, .1, .25, .5, 1},
	})

	// BroadcastsDropped counts frames dropped because a client send queue
	// overflowed and the client was disconnected.
	BroadcastsDropped = prometheus.NewCounter(prometheus.CounterOpts{
		Name: "chat_broadcasts_dropped_total",
		Help: "Frames dropped due to slow-client disconnects",
	})
)

func init() {
	prometheus.MustRegister(
		ConnectionsActive,
		RoomsActive,
		MessagesTotal,
		RouteLatency,
		BroadcastsDropped,
	)
}

// Handler returns the Prometheus metrics HTTP handler.
func Handler() http.Handler {
	return promhttp.Handler()
}
