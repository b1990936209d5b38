// Package metrics holds the Prometheus collectors exported on /metrics.
package metrics

import (
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

const namespace = "opseng_reports"

var (
	storageDuration = promauto.NewHistogramVec(prometheus.HistogramOpts{
		Namespace: namespace,
		Subsystem: "storage",
		Name:      "operation_duration_seconds",
		Help:      "Duration of report table operations",
		Buckets:   prometheus.DefBuckets,
	}, []string{"op", "outcome"})

	ingestEntries = promauto.NewCounterVec(prometheus.CounterOpts{
		Namespace: namespace,
		Subsystem: "ingest",
		Name:      "entries_total",
		Help:      "The total number of ingested report entries by result",
	}, []string{"result"})

	ingestBatches = promauto.NewCounter(prometheus.CounterOpts{
		Namespace: namespace,
		Subsystem: "ingest",
		Name:      "batches_total",
		Help:      "The total number of ingestion batches received",
	})

	httpRequests = promauto.NewCounterVec(prometheus.CounterOpts{
		Namespace: namespace,
		Subsystem: "http",
		Name:      "requests_total",
		Help:      "The total number of HTTP requests",
	}, []string{"method", "route", "status"})

	duplicateReports = promauto.NewCounter(prometheus.CounterOpts{
		Namespace: namespace,
		Subsystem: "reports",
		Name:      "duplicates_removed_total",
		Help:      "Structurally identical reports dropped from snapshots",
	})
)

// ObserveStorage records the duration and outcome of a storage call.
func ObserveStorage(op string, start time.Time, err error) {
	outcome := "ok"
	if err != nil {
		outcome = "error"
	}
	storageDuration.WithLabelValues(op, outcome).Observe(time.Since(start).Seconds())
}

// IngestBatch records one ingestion batch and its per-entry results.
func IngestBatch(accepted, rejected int) {
	ingestBatches.Inc()
	ingestEntries.WithLabelValues("accepted").Add(float64(accepted))
	ingestEntries.WithLabelValues("rejected").Add(float64(rejected))
}

// HTTPRequest counts one served request.
func HTTPRequest(method, route, status string) {
	httpRequests.WithLabelValues(method, route, status).Inc()
}

// DuplicatesRemoved counts reports dropped by deduplication.
func DuplicatesRemoved(n int) {
	duplicateReports.Add(float64(n))
}
