// Package metrics provides Prometheus metrics for the QuantCasa alert
// service. It tracks observation ingestion, alert lifecycle, and
// notification latencies to help identify bottlenecks and measure SLOs.
package metrics

import (
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

const (
	namespace = "quantcasa"
)

// Observation metrics track the ingestion pipeline.
var (
	// ObservationsReceivedTotal counts observations received by the API.
	ObservationsReceivedTotal = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "observations_received_total",
			Help:      "Total number of price observations received by the ingest API",
		},
		[]string{"mode"},
	)

	// ObservationsPublishedTotal counts observations published to the queue.
	ObservationsPublishedTotal = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "observations_published_total",
			Help:      "Total number of observations published to the message queue",
		},
		[]string{"mode"},
	)

	// ObservationsProcessedTotal counts observations evaluated by the processor.
	ObservationsProcessedTotal = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "observations_processed_total",
			Help:      "Total number of observations evaluated against the alert collection",
		},
		[]string{"mode", "result"}, // result: triggered, matched, unmatched, invalid
	)

	// ObservationIngestLatency measures time from API receipt to queue publish.
	ObservationIngestLatency = promauto.NewHistogram(
		prometheus.HistogramOpts{
			Namespace: namespace,
			Name:      "observation_ingest_latency_seconds",
			Help:      "Time from observation receipt to queue publish in seconds",
			Buckets:   []float64{.0001, .0005, .001, .005, .01, .025, .05, .1, .25, .5, 1},
		},
	)

	// CheckPriceLatency measures time for one full scan-and-mutate pass.
	CheckPriceLatency = promauto.NewHistogram(
		prometheus.HistogramOpts{
			Namespace: namespace,
			Name:      "check_price_latency_seconds",
			Help:      "Time to evaluate one observation against all alerts in seconds",
			Buckets:   []float64{.0001, .0005, .001, .005, .01, .025, .05, .1, .25, .5, 1},
		},
	)
)

// Alert metrics track alert lifecycle.
var (
	// AlertsCreatedTotal counts alerts created.
	AlertsCreatedTotal = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "alerts_created_total",
			Help:      "Total number of alerts created",
		},
		[]string{"mode", "condition"},
	)

	// AlertsTriggeredTotal counts alert trigger transitions.
	AlertsTriggeredTotal = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "alerts_triggered_total",
			Help:      "Total number of alert triggers",
		},
		[]string{"mode", "condition"},
	)

	// AlertsByStatus tracks the current number of alerts per status.
	AlertsByStatus = promauto.NewGaugeVec(
		prometheus.GaugeOpts{
			Namespace: namespace,
			Name:      "alerts_by_status",
			Help:      "Current number of alerts per status",
		},
		[]string{"status"},
	)
)

// Notification metrics track the notification pipeline.
var (
	// NotificationsSentTotal counts notifications dispatched.
	NotificationsSentTotal = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "notifications_sent_total",
			Help:      "Total number of notifications dispatched",
		},
		[]string{"status"}, // status: success, failure
	)

	// NotificationLatency measures time from trigger to notification dispatch.
	NotificationLatency = promauto.NewHistogram(
		prometheus.HistogramOpts{
			Namespace: namespace,
			Name:      "notification_latency_seconds",
			Help:      "Time from alert trigger to notification dispatch in seconds",
			Buckets:   []float64{.001, .005, .01, .025, .05, .1, .25, .5, 1, 2.5, 5, 10},
		},
	)
)

// Queue metrics track message queue health.
var (
	// QueueDepth tracks the current number of messages in the queue.
	QueueDepth = promauto.NewGauge(
		prometheus.GaugeOpts{
			Namespace: namespace,
			Name:      "queue_depth",
			Help:      "Current number of messages in the queue",
		},
	)

	// QueuePublishLatency measures time to publish a message to the queue.
	QueuePublishLatency = promauto.NewHistogram(
		prometheus.HistogramOpts{
			Namespace: namespace,
			Name:      "queue_publish_latency_seconds",
			Help:      "Time to publish a message to the queue in seconds",
			Buckets:   []float64{.0001, .0005, .001, .005, .01, .025, .05, .1},
		},
	)
)

// Snapshot metrics track persistence operations.
var (
	// SnapshotOperationLatency measures latency of snapshot store operations.
	SnapshotOperationLatency = promauto.NewHistogramVec(
		prometheus.HistogramOpts{
			Namespace: namespace,
			Name:      "snapshot_operation_latency_seconds",
			Help:      "Latency of snapshot store operations in seconds",
			Buckets:   []float64{.0001, .0005, .001, .005, .01, .025, .05, .1, .25, .5},
		},
		[]string{"store", "operation"}, // store: file, postgres; operation: load, save
	)

	// SnapshotOperationsTotal counts snapshot store operations.
	SnapshotOperationsTotal = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "snapshot_operations_total",
			Help:      "Total number of snapshot store operations",
		},
		[]string{"store", "operation", "status"}, // status: success, failure
	)
)
