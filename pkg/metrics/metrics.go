// Package metrics provides Prometheus metrics for the pie service.
package metrics

import (
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

var (
	// LedgerMutationsTotal tracks ledger mutations by operation and status
	LedgerMutationsTotal = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Namespace: "pie",
			Subsystem: "ledger",
			Name:      "mutations_total",
			Help:      "Total number of ledger mutations by operation and status",
		},
		[]string{"workspace_id", "operation", "status"},
	)

	// LedgerMutationDuration tracks mutation duration in seconds
	LedgerMutationDuration = promauto.NewHistogramVec(
		prometheus.HistogramOpts{
			Namespace: "pie",
			Subsystem: "ledger",
			Name:      "mutation_duration_seconds",
			Help:      "Duration of ledger mutations in seconds",
			Buckets:   []float64{0.001, 0.005, 0.01, 0.025, 0.05, 0.1, 0.25, 0.5, 1, 2.5},
		},
		[]string{"operation"},
	)

	// CascadeSize tracks how many contributions a contributor delete or
	// restore swept along
	CascadeSize = promauto.NewHistogram(
		prometheus.HistogramOpts{
			Namespace: "pie",
			Subsystem: "ledger",
			Name:      "cascade_size",
			Help:      "Number of contributions swept by a contributor delete or restore",
			Buckets:   []float64{0, 1, 2, 5, 10, 25, 50, 100},
		},
	)

	// ActivityEventsTotal tracks activity trail entries by action and target kind
	ActivityEventsTotal = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Namespace: "pie",
			Subsystem: "ledger",
			Name:      "activity_events_total",
			Help:      "Total number of activity trail entries by action and target kind",
		},
		[]string{"action", "target_kind"},
	)

	// ContributionsRecorded tracks recorded contributions by type
	ContributionsRecorded = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Namespace: "pie",
			Subsystem: "ledger",
			Name:      "contributions_recorded_total",
			Help:      "Total number of contributions recorded by type",
		},
		[]string{"workspace_id", "type"},
	)

	// WorkspacesResident tracks how many workspace ledgers are hydrated in memory
	WorkspacesResident = promauto.NewGauge(
		prometheus.GaugeOpts{
			Namespace: "pie",
			Subsystem: "ledger",
			Name:      "workspaces_resident",
			Help:      "Number of workspace ledgers currently hydrated in memory",
		},
	)

	// HydrationsTotal tracks workspace hydrations from Postgres
	HydrationsTotal = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Namespace: "pie",
			Subsystem: "ledger",
			Name:      "hydrations_total",
			Help:      "Total number of workspace hydrations from the database",
		},
		[]string{"status"},
	)

	// HydrationDuration tracks hydration duration in seconds
	HydrationDuration = promauto.NewHistogram(
		prometheus.HistogramOpts{
			Namespace: "pie",
			Subsystem: "ledger",
			Name:      "hydration_duration_seconds",
			Help:      "Duration of workspace hydrations in seconds",
			Buckets:   []float64{0.005, 0.01, 0.025, 0.05, 0.1, 0.25, 0.5, 1, 2.5, 5},
		},
	)

	// EquityCacheLookups tracks equity cache hits and misses
	EquityCacheLookups = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Namespace: "pie",
			Subsystem: "equity",
			Name:      "cache_lookups_total",
			Help:      "Total number of equity cache lookups by result",
		},
		[]string{"result"},
	)

	// KafkaMessagesPublished tracks Kafka messages published
	KafkaMessagesPublished = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Namespace: "pie",
			Subsystem: "kafka",
			Name:      "messages_published_total",
			Help:      "Total number of messages published to Kafka",
		},
		[]string{"topic", "status"},
	)

	// DatabaseQueryDuration tracks database query duration
	DatabaseQueryDuration = promauto.NewHistogramVec(
		prometheus.HistogramOpts{
			Namespace: "pie",
			Subsystem: "database",
			Name:      "query_duration_seconds",
			Help:      "Duration of database queries in seconds",
			Buckets:   []float64{0.001, 0.005, 0.01, 0.025, 0.05, 0.1, 0.25, 0.5, 1},
		},
		[]string{"operation"},
	)
)

// RecordMutation records a ledger mutation metric
func RecordMutation(workspaceID, operation, status string, durationSeconds float64) {
	LedgerMutationsTotal.WithLabelValues(workspaceID, operation, status).Inc()
	LedgerMutationDuration.WithLabelValues(operation).Observe(durationSeconds)
}

// RecordCascade records how many contributions a cascade swept
func RecordCascade(count int) {
	CascadeSize.Observe(float64(count))
}

// RecordActivityEvent records a recorded activity trail entry
func RecordActivityEvent(action, targetKind string) {
	ActivityEventsTotal.WithLabelValues(action, targetKind).Inc()
}

// RecordContribution records a recorded contribution by type
func RecordContribution(workspaceID, contributionType string) {
	ContributionsRecorded.WithLabelValues(workspaceID, contributionType).Inc()
}

// RecordHydration records a workspace hydration
func RecordHydration(status string, durationSeconds float64) {
	HydrationsTotal.WithLabelValues(status).Inc()
	HydrationDuration.Observe(durationSeconds)
}

// RecordEquityCacheLookup records an equity cache hit or miss
func RecordEquityCacheLookup(result string) {
	EquityCacheLookups.WithLabelValues(result).Inc()
}

// RecordKafkaPublish records a Kafka publish operation
func RecordKafkaPublish(topic, status string) {
	KafkaMessagesPublished.WithLabelValues(topic, status).Inc()
}
