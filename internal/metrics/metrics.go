// Package metrics provides Prometheus metrics for AssetVault.
package metrics

import (
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

var (
	// HTTPRequestsTotal counts total HTTP requests by method, path, and status.
	HTTPRequestsTotal = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Namespace: "assetvault",
			Name:      "http_requests_total",
			Help:      "Total number of HTTP requests",
		},
		[]string{"method", "path", "status"},
	)

	// HTTPRequestDuration tracks HTTP request duration by method and path.
	HTTPRequestDuration = promauto.NewHistogramVec(
		prometheus.HistogramOpts{
			Namespace: "assetvault",
			Name:      "http_request_duration_seconds",
			Help:      "HTTP request duration in seconds",
			Buckets:   prometheus.DefBuckets,
		},
		[]string{"method", "path"},
	)

	// HTTPRequestsInFlight tracks the number of in-flight HTTP requests.
	HTTPRequestsInFlight = promauto.NewGauge(
		prometheus.GaugeOpts{
			Namespace: "assetvault",
			Name:      "http_requests_in_flight",
			Help:      "Number of HTTP requests currently being processed",
		},
	)

	// Operations counts vault and registry operations by result kind.
	Operations = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Namespace: "assetvault",
			Name:      "operations_total",
			Help:      "Total number of vault and registry operations",
		},
		[]string{"operation", "result"}, // result is "ok" or an error kind
	)

	// FeesCollected counts fee units paid by completed unlocks.
	FeesCollected = promauto.NewCounter(
		prometheus.CounterOpts{
			Namespace: "assetvault",
			Name:      "fees_collected_total",
			Help:      "Total fee units collected by unlocks",
		},
	)

	// FeesWithdrawn counts fee units withdrawn by the authority.
	FeesWithdrawn = promauto.NewCounter(
		prometheus.CounterOpts{
			Namespace: "assetvault",
			Name:      "fees_withdrawn_total",
			Help:      "Total fee units withdrawn by the vault authority",
		},
	)

	// ActiveLocks tracks the number of lock records.
	ActiveLocks = promauto.NewGauge(
		prometheus.GaugeOpts{
			Namespace: "assetvault",
			Name:      "active_locks",
			Help:      "Number of assets currently held in custody",
		},
	)

	// FeeBalance tracks the ledger's withdrawable fee balance.
	FeeBalance = promauto.NewGauge(
		prometheus.GaugeOpts{
			Namespace: "assetvault",
			Name:      "fee_balance",
			Help:      "Fee units available for withdrawal",
		},
	)

	// EventLogHead tracks the sequence of the newest committed event.
	EventLogHead = promauto.NewGauge(
		prometheus.GaugeOpts{
			Namespace: "assetvault",
			Name:      "event_log_head",
			Help:      "Sequence number of the newest committed event",
		},
	)

	// EventsPublished counts events handed to external sinks.
	EventsPublished = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Namespace: "assetvault",
			Name:      "events_published_total",
			Help:      "Total number of events published to external sinks",
		},
		[]string{"sink", "result"},
	)

	// IndexerCursor tracks the last event sequence copied by the indexer.
	IndexerCursor = promauto.NewGauge(
		prometheus.GaugeOpts{
			Namespace: "assetvault",
			Name:      "indexer_cursor",
			Help:      "Last event sequence copied into the index database",
		},
	)

	// DatabaseConnections tracks index database connection pool stats.
	DatabaseConnections = promauto.NewGaugeVec(
		prometheus.GaugeOpts{
			Namespace: "assetvault",
			Name:      "database_connections",
			Help:      "Index database connection pool statistics",
		},
		[]string{"state"}, // "max_open", "idle", "in_use"
	)
)
