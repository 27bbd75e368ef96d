// Package metrics provides Prometheus metrics for monitoring collection
// runs.
//
// Key metrics:
//   - batch request outcomes and fetch latency
//   - records collected per device family
//   - records dropped per failure reason
//   - timestamp wall-clock fallbacks
//   - per-device run outcomes
package metrics

import (
	"net/http"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
	"github.com/prometheus/client_golang/prometheus/promhttp"
)

const namespace = "sepa_collector"

var (
	// BatchesTotal counts batch fetch requests by result ("ok", "error").
	BatchesTotal = promauto.NewCounterVec(prometheus.CounterOpts{
		Namespace: namespace,
		Name:      "batches_total",
		Help:      "Batch fetch requests by result.",
	}, []string{"result"})

	// RecordsCollected counts assembled records by device family.
	RecordsCollected = promauto.NewCounterVec(prometheus.CounterOpts{
		Namespace: namespace,
		Name:      "records_collected_total",
		Help:      "Canonical records assembled, by device kind.",
	}, []string{"kind"})

	// RecordsDropped counts dropped records by reason
	// ("decode", "timestamp", "assembly").
	RecordsDropped = promauto.NewCounterVec(prometheus.CounterOpts{
		Namespace: namespace,
		Name:      "records_dropped_total",
		Help:      "Records dropped during collection, by reason.",
	}, []string{"reason"})

	// TimestampFallbacks counts wall-clock substitutions for unparseable
	// timestamps.
	TimestampFallbacks = promauto.NewCounter(prometheus.CounterOpts{
		Namespace: namespace,
		Name:      "timestamp_fallbacks_total",
		Help:      "Timestamps replaced with the current wall clock.",
	})

	// CollectionRuns counts per-device runs by outcome
	// ("ok", "empty", "failed").
	CollectionRuns = promauto.NewCounterVec(prometheus.CounterOpts{
		Namespace: namespace,
		Name:      "collection_runs_total",
		Help:      "Per-device collection runs by outcome.",
	}, []string{"outcome"})

	batchFetchDuration = promauto.NewHistogram(prometheus.HistogramOpts{
		Namespace: namespace,
		Name:      "batch_fetch_duration_seconds",
		Help:      "Latency of batch fetch requests.",
		Buckets:   prometheus.DefBuckets,
	})
)

// ObserveBatchFetch records one batch fetch latency.
func ObserveBatchFetch(d time.Duration) {
	batchFetchDuration.Observe(d.Seconds())
}

// Handler returns the HTTP handler serving the metrics endpoint.
func Handler() http.Handler {
	return promhttp.Handler()
}
