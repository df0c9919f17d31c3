// Package metrics holds the Prometheus collectors of the resolution engine.
// Collectors register on the default registry and are served by /metrics.
package metrics

import (
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

const namespace = "terms"

var (
	// Labels: tier (alias, builtin, phonetic, fuzzy, none)
	matchesTotal = promauto.NewCounterVec(prometheus.CounterOpts{
		Namespace: namespace,
		Subsystem: "resolver",
		Name:      "matches_total",
		Help:      "Resolved terms by the tier that produced the best match",
	}, []string{"tier"})

	// Labels: operation (validate_terms, resolve_term, fuzzy_search)
	resolveSeconds = promauto.NewHistogramVec(prometheus.HistogramOpts{
		Namespace: namespace,
		Subsystem: "resolver",
		Name:      "duration_seconds",
		Help:      "Resolver operation latency",
		Buckets:   []float64{0.001, 0.005, 0.01, 0.025, 0.05, 0.1, 0.25, 0.5, 1, 2.5},
	}, []string{"operation"})

	batchTruncatedTotal = promauto.NewCounter(prometheus.CounterOpts{
		Namespace: namespace,
		Subsystem: "resolver",
		Name:      "batch_truncated_total",
		Help:      "validate-terms batches truncated to the configured maximum",
	})

	// Labels: result (hit, miss, stale, empty)
	candidateCacheTotal = promauto.NewCounterVec(prometheus.CounterOpts{
		Namespace: namespace,
		Subsystem: "candidates",
		Name:      "cache_total",
		Help:      "Candidate index lookups by cache result",
	}, []string{"result"})

	candidateFetchErrorsTotal = promauto.NewCounter(prometheus.CounterOpts{
		Namespace: namespace,
		Subsystem: "candidates",
		Name:      "fetch_errors_total",
		Help:      "Failed or timed out candidate refills",
	})

	candidateFetchSeconds = promauto.NewHistogram(prometheus.HistogramOpts{
		Namespace: namespace,
		Subsystem: "candidates",
		Name:      "fetch_duration_seconds",
		Help:      "Backing store candidate fetch latency",
		Buckets:   prometheus.DefBuckets,
	})

	// Labels: action (recorded, resolved, ignored, alias_persisted, alias_failed)
	feedbackTotal = promauto.NewCounterVec(prometheus.CounterOpts{
		Namespace: namespace,
		Subsystem: "feedback",
		Name:      "events_total",
		Help:      "Feedback store events by action",
	}, []string{"action"})
)

// Cache result labels.
const (
	CacheHit   = "hit"
	CacheMiss  = "miss"
	CacheStale = "stale"
	CacheEmpty = "empty"
)

// RecordMatch counts a resolved term by tier. An empty tier means no match.
func RecordMatch(tier string) {
	if tier == "" {
		tier = "none"
	}
	matchesTotal.WithLabelValues(tier).Inc()
}

// ObserveResolve records the latency of a resolver operation.
func ObserveResolve(operation string, seconds float64) {
	resolveSeconds.WithLabelValues(operation).Observe(seconds)
}

// RecordBatchTruncated counts a validate-terms batch that exceeded the cap.
func RecordBatchTruncated() {
	batchTruncatedTotal.Inc()
}

// RecordCache counts a candidate index lookup.
func RecordCache(result string) {
	candidateCacheTotal.WithLabelValues(result).Inc()
}

// RecordFetch records one backing store refill.
func RecordFetch(seconds float64, failed bool) {
	candidateFetchSeconds.Observe(seconds)
	if failed {
		candidateFetchErrorsTotal.Inc()
	}
}

// RecordFeedback counts a feedback store event.
func RecordFeedback(action string) {
	feedbackTotal.WithLabelValues(action).Inc()
}
