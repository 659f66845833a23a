package observability

import (
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

var (
	// RedisErrors counts Redis errors by operation type.
	RedisErrors = promauto.NewCounterVec(prometheus.CounterOpts{
		Name: "nex_redis_errors_total",
		Help: "Total number of Redis errors by operation type",
	}, []string{"operation"})

	// DatabaseQueryLatency records database query latency by operation and table.
	DatabaseQueryLatency = promauto.NewHistogramVec(prometheus.HistogramOpts{
		Name:    "nex_database_query_latency_seconds",
		Help:    "Database query latency in seconds",
		Buckets: prometheus.DefBuckets,
	}, []string{"operation", "table"})

	// EngagementToggles counts like/repost/follow toggles by kind and action.
	EngagementToggles = promauto.NewCounterVec(prometheus.CounterOpts{
		Name: "nex_engagement_toggles_total",
		Help: "Total number of engagement toggles by relation kind and action",
	}, []string{"kind", "action"})

	// NotificationsCreated counts notification records created by type.
	NotificationsCreated = promauto.NewCounterVec(prometheus.CounterOpts{
		Name: "nex_notifications_created_total",
		Help: "Total number of notification records created by type",
	}, []string{"type"})

	// FeedComposeLatency records the latency of timeline composition.
	FeedComposeLatency = promauto.NewHistogram(prometheus.HistogramOpts{
		Name:    "nex_feed_compose_latency_seconds",
		Help:    "Latency of composing the unified timeline in seconds",
		Buckets: prometheus.DefBuckets,
	})
)

// ObserveQueryLatency records the latency of a database query.
func ObserveQueryLatency(operation, table string, start time.Time) {
	DatabaseQueryLatency.WithLabelValues(operation, table).Observe(time.Since(start).Seconds())
}
