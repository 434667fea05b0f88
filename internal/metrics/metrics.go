package metrics

import (
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

// Relay Metrics
var (
	// RelayActiveConnections tracks currently registered websocket connections
	RelayActiveConnections = promauto.NewGauge(
		prometheus.GaugeOpts{
			Name: "relay_active_connections",
			Help: "Currently registered websocket connections",
		},
	)

	// RelayMessagesTotal tracks processed inbound messages by outcome
	RelayMessagesTotal = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "relay_messages_total",
			Help: "Processed inbound messages by outcome (routed/malformed/empty/classification_unavailable/rate_limited)",
		},
		[]string{"outcome"},
	)

	// RelayDeliveryFailures tracks per-recipient delivery failures
	RelayDeliveryFailures = promauto.NewCounter(
		prometheus.CounterOpts{
			Name: "relay_delivery_failures_total",
			Help: "Per-recipient delivery failures (slow or broken connections)",
		},
	)

	// RelayBroadcastFanout tracks how many recipients each broadcast reached
	RelayBroadcastFanout = promauto.NewHistogram(
		prometheus.HistogramOpts{
			Name:    "relay_broadcast_fanout",
			Help:    "Recipients per broadcast delivery",
			Buckets: []float64{1, 2, 5, 10, 25, 50, 100, 250, 500, 1000},
		},
	)

	// RelayMessageSendDuration tracks websocket write latency in seconds
	RelayMessageSendDuration = promauto.NewHistogram(
		prometheus.HistogramOpts{
			Name:    "relay_message_send_duration_seconds",
			Help:    "Websocket message write duration in seconds",
			Buckets: []float64{.0001, .0005, .001, .005, .01, .05, .1, .5, 1},
		},
	)

	// RelayPingFailures tracks failed keepalive pings
	RelayPingFailures = promauto.NewCounter(
		prometheus.CounterOpts{
			Name: "relay_ping_failures_total",
			Help: "Failed websocket keepalive pings",
		},
	)
)

// Classifier Metrics
var (
	// ClassificationDuration tracks classifier call latency in seconds
	ClassificationDuration = promauto.NewHistogram(
		prometheus.HistogramOpts{
			Name:    "classification_duration_seconds",
			Help:    "Classifier call duration in seconds",
			Buckets: []float64{.005, .01, .025, .05, .1, .25, .5, 1, 2.5, 5},
		},
	)

	// ClassificationsTotal tracks classifier calls by status
	ClassificationsTotal = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "classifications_total",
			Help: "Classifier calls by status (ok/error)",
		},
		[]string{"status"},
	)

	// ClassificationCacheHits tracks redis cache hits for classification results
	ClassificationCacheHits = promauto.NewCounter(
		prometheus.CounterOpts{
			Name: "classification_cache_hits_total",
			Help: "Classification results served from the redis cache",
		},
	)

	// ClassificationCacheMisses tracks redis cache misses for classification results
	ClassificationCacheMisses = promauto.NewCounter(
		prometheus.CounterOpts{
			Name: "classification_cache_misses_total",
			Help: "Classification cache misses that went to the classifier",
		},
	)

	// CircuitBreakerState tracks current classifier breaker state (0=closed, 1=half-open, 2=open)
	CircuitBreakerState = promauto.NewGaugeVec(
		prometheus.GaugeOpts{
			Name: "circuit_breaker_state",
			Help: "Current circuit breaker state (0=closed, 1=half-open, 2=open)",
		},
		[]string{"component"},
	)

	// CircuitBreakerStateChanges tracks breaker state transitions
	CircuitBreakerStateChanges = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "circuit_breaker_state_changes_total",
			Help: "Circuit breaker state transitions by component and new state",
		},
		[]string{"component", "state"},
	)
)

// Connection Limit Metrics
var (
	// ConnectionsRejected tracks websocket connections rejected by limiters
	ConnectionsRejected = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "connections_rejected_total",
			Help: "Websocket connections rejected by reason (global_limit/per_ip_limit/rate_limit)",
		},
		[]string{"reason"},
	)
)
