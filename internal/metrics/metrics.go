package metrics

import (
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

var (
	// Tracks the number of outbound API calls to Scribe.
	ScribeRequestsTotal = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "scribe_api_requests_total",
			Help: "Total number of Scribe API requests made (by operation and method).",
		},
		[]string{"operation", "method", "status"},
	)

	// Measures duration of API requests to Scribe.
	ScribeRequestDuration = promauto.NewHistogramVec(
		prometheus.HistogramOpts{
			Name:    "scribe_api_request_duration_seconds",
			Help:    "Duration of Scribe API requests in seconds.",
			Buckets: prometheus.ExponentialBuckets(0.001, 2, 15), // 1ms → ~16s
		},
		[]string{"operation", "method"},
	)

	// Tracks session lifecycle events.
	AuthEventsTotal = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "scribe_auth_events_total",
			Help: "Count of session lifecycle events (login_success, login_failure, logout, token_expired).",
		},
		[]string{"event"},
	)

	// Gauges the current session state (1 = authenticated, 0 = not).
	SessionAuthenticated = promauto.NewGauge(
		prometheus.GaugeOpts{
			Name: "scribe_session_authenticated",
			Help: "Whether the adapter currently holds an unexpired access token.",
		},
	)

	// Tracks user-facing notifications raised by the adapter.
	NotificationsTotal = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "scribe_notifications_total",
			Help: "Total number of user-facing notifications raised (by level).",
		},
		[]string{"level"},
	)

	// Tracks NATS messages published by subject and result.
	NATSMessageCount = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "nats_messages_total",
			Help: "Total number of NATS messages processed.",
		},
		[]string{"subject", "result"}, // result = "ok" | "error"
	)

	NATSMessageLatency = promauto.NewHistogramVec(
		prometheus.HistogramOpts{
			Name:    "nats_message_latency_seconds",
			Help:    "Time taken to publish NATS messages",
			Buckets: prometheus.DefBuckets,
		},
		[]string{"subject"},
	)

	// Tracks cache hits and misses for resolved credentials.
	SecretsCacheHits = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "secrets_cache_access_total",
			Help: "Number of cache hits/misses in secret cache.",
		},
		[]string{"result"}, // hit | miss
	)

	// Tracks total errors (aggregated).
	ErrorsTotal = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "adapter_errors_total",
			Help: "Count of adapter-level errors by component.",
		},
		[]string{"component", "reason"},
	)

	// Counts catalog sync cycles by result.
	CatalogSyncTotal = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "scribe_catalog_sync_total",
			Help: "Count of catalog sync cycles (success/failure).",
		},
		[]string{"result"},
	)

	// Gauges the last successful sync time (seconds since epoch).
	LastSyncTimestamp = promauto.NewGaugeVec(
		prometheus.GaugeOpts{
			Name: "adapter_last_sync_timestamp",
			Help: "Timestamp (unix seconds) of the last successful background sync.",
		},
		[]string{"component"},
	)
)

// ObserveDuration records the time taken for a function and updates the given histogram.
func ObserveDuration(v interface{}, start time.Time, labels ...string) {
	duration := time.Since(start).Seconds()

	switch metric := v.(type) {
	case *prometheus.HistogramVec:
		metric.WithLabelValues(labels...).Observe(duration)
	case *prometheus.SummaryVec:
		metric.WithLabelValues(labels...).Observe(duration)
	default:
		// silently ignore counters; they're not meant for duration tracking
	}
}

func IncScribeRequest(operation, method, status string) {
	ScribeRequestsTotal.WithLabelValues(operation, method, status).Inc()
}

func IncAuthEvent(event string) {
	AuthEventsTotal.WithLabelValues(event).Inc()
}

func SetSessionAuthenticated(authenticated bool) {
	if authenticated {
		SessionAuthenticated.Set(1)
		return
	}
	SessionAuthenticated.Set(0)
}

func IncNotification(level string) {
	NotificationsTotal.WithLabelValues(level).Inc()
}

func IncNATSMessage(subject, result string) {
	NATSMessageCount.WithLabelValues(subject, result).Inc()
}

func IncCacheHit(result string) {
	SecretsCacheHits.WithLabelValues(result).Inc()
}

func IncError(component, reason string) {
	ErrorsTotal.WithLabelValues(component, reason).Inc()
}

func IncCatalogSync(result string) {
	CatalogSyncTotal.WithLabelValues(result).Inc()
}

func SetLastSync(component string) {
	LastSyncTimestamp.WithLabelValues(component).Set(float64(time.Now().Unix()))
}
