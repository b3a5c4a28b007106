// Package metrics expõe os contadores Prometheus da sincronização.
package metrics

import (
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

const namespace = "adsync"

var (
	// ProviderRequests conta chamadas ao provedor.
	// Labels: provider, endpoint, outcome (ok, rejected, unavailable, auth_expired, rate_limited)
	ProviderRequests = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Namespace: namespace,
			Subsystem: "provider",
			Name:      "requests_total",
			Help:      "Total number of provider API requests by outcome",
		},
		[]string{"provider", "endpoint", "outcome"},
	)

	ProviderRetries = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Namespace: namespace,
			Subsystem: "provider",
			Name:      "retries_total",
			Help:      "Total number of provider request retries",
		},
		[]string{"provider", "endpoint"},
	)

	// SyncRuns conta execuções finalizadas por status do histórico.
	SyncRuns = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Namespace: namespace,
			Subsystem: "sync",
			Name:      "runs_total",
			Help:      "Total number of finalized sync runs by status",
		},
		[]string{"provider", "status"},
	)

	SyncDuration = promauto.NewHistogramVec(
		prometheus.HistogramOpts{
			Namespace: namespace,
			Subsystem: "sync",
			Name:      "run_duration_seconds",
			Help:      "Duration of sync runs per connection",
			Buckets:   []float64{1, 5, 15, 30, 60, 120, 300, 600, 1200},
		},
		[]string{"provider"},
	)

	// AccountOutcomes conta o resultado por conta de anúncio.
	AccountOutcomes = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Namespace: namespace,
			Subsystem: "sync",
			Name:      "account_outcomes_total",
			Help:      "Total number of ad account sync outcomes",
		},
		[]string{"provider", "outcome"},
	)

	LeaseContention = promauto.NewCounter(
		prometheus.CounterOpts{
			Namespace: namespace,
			Subsystem: "sync",
			Name:      "lease_contention_total",
			Help:      "Total number of sync attempts rejected because the connection was already leased",
		},
	)

	// ChangeRecords conta registros gravados no ledger.
	// Labels: entity_type, change_type
	ChangeRecords = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Namespace: namespace,
			Subsystem: "ledger",
			Name:      "change_records_total",
			Help:      "Total number of change records appended",
		},
		[]string{"entity_type", "change_type"},
	)

	ClockSkewClamps = promauto.NewCounter(
		prometheus.CounterOpts{
			Namespace: namespace,
			Subsystem: "ledger",
			Name:      "clock_skew_clamps_total",
			Help:      "Total number of change records whose timestamp was clamped",
		},
	)

	SkippedEntities = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Namespace: namespace,
			Subsystem: "reconcile",
			Name:      "skipped_entities_total",
			Help:      "Total number of entities skipped during reconciliation",
		},
		[]string{"entity_type", "reason"},
	)
)
