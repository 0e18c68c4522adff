// Package metrics exposes the Prometheus collectors of the service
package metrics

import (
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

var (
	// Transitions counts lifecycle transitions by entity, action and outcome.
	Transitions = promauto.NewCounterVec(prometheus.CounterOpts{
		Name: "campusfound_transitions_total",
		Help: "Total number of item and claim status transitions",
	}, []string{"entity", "action", "outcome"})

	// SideEffectFailures counts notification and audit writes that failed after a transition.
	SideEffectFailures = promauto.NewCounterVec(prometheus.CounterOpts{
		Name: "campusfound_side_effect_failures_total",
		Help: "Total number of best-effort notification and audit writes that failed",
	}, []string{"sink"})

	// Compensations counts item updates rolled back after a lost claim race.
	Compensations = promauto.NewCounterVec(prometheus.CounterOpts{
		Name: "campusfound_compensations_total",
		Help: "Total number of compensating item updates",
	}, []string{"outcome"})

	// RedisErrors counts Redis errors by operation type.
	RedisErrors = promauto.NewCounterVec(prometheus.CounterOpts{
		Name: "campusfound_redis_errors_total",
		Help: "Total number of Redis errors by operation type",
	}, []string{"operation"})

	// HTTPRequests counts handled requests by route and status code.
	HTTPRequests = promauto.NewCounterVec(prometheus.CounterOpts{
		Name: "campusfound_http_requests_total",
		Help: "Total number of HTTP requests",
	}, []string{"method", "route", "status"})

	// HTTPRequestDuration records request latency by route.
	HTTPRequestDuration = promauto.NewHistogramVec(prometheus.HistogramOpts{
		Name:    "campusfound_http_request_duration_seconds",
		Help:    "HTTP request latency in seconds",
		Buckets: prometheus.DefBuckets,
	}, []string{"method", "route"})

	// WebSocketConnections is the gauge of open notification sockets.
	WebSocketConnections = promauto.NewGauge(prometheus.GaugeOpts{
		Name: "campusfound_websocket_connections",
		Help: "Number of open notification WebSocket connections",
	})
)
