// Package metrics holds the process-wide prometheus collectors. They register
// with the default registry, which transport serves on /metrics.
package metrics

import (
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

var (
	// ActivityWrites counts successful writes by operation and category.
	ActivityWrites = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Namespace: "carelog",
			Name:      "activity_writes_total",
			Help:      "Activity records written, by operation and category.",
		},
		[]string{"op", "category"},
	)

	// ActivityWriteFailures counts writes rejected by the store.
	ActivityWriteFailures = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Namespace: "carelog",
			Name:      "activity_write_failures_total",
			Help:      "Activity writes that failed in the store.",
		},
		[]string{"op"},
	)

	// FeedSubscribers tracks open bucket subscriptions on the change feed.
	FeedSubscribers = promauto.NewGauge(
		prometheus.GaugeOpts{
			Namespace: "carelog",
			Subsystem: "feed",
			Name:      "subscribers",
			Help:      "Open bucket subscriptions.",
		},
	)

	// FeedDeliveries counts bucket snapshots delivered, by outcome.
	FeedDeliveries = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Namespace: "carelog",
			Subsystem: "feed",
			Name:      "deliveries_total",
			Help:      "Bucket snapshots delivered to subscribers.",
		},
		[]string{"outcome"},
	)

	// AuditDuration observes full audit reconstructions.
	AuditDuration = promauto.NewHistogram(
		prometheus.HistogramOpts{
			Namespace: "carelog",
			Subsystem: "audit",
			Name:      "list_duration_seconds",
			Help:      "Audit trail reconstruction latency.",
			Buckets:   prometheus.DefBuckets,
		},
	)
)
