package metrics

import (
	"net/http"
	"sync"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promhttp"
)

var (
	registerOnce sync.Once

	upsertsTotal      *prometheus.CounterVec
	conflictRetries   prometheus.Counter
	changeEventsTotal *prometheus.CounterVec
	attributeWarnings prometheus.Counter
	upsertDuration    *prometheus.HistogramVec
)

// Register initializes the collectors against the given registerer and
// returns the handler for /metrics. A nil registerer uses the default.
func Register(reg prometheus.Registerer) http.Handler {
	if reg == nil {
		reg = prometheus.DefaultRegisterer
	}

	registerOnce.Do(func() {
		upsertsTotal = prometheus.NewCounterVec(prometheus.CounterOpts{
			Name: "itemsync_upserts_total",
			Help: "Upsert operations by operation and result",
		}, []string{"operation", "result"}) // operation: created|updated, result: ok|error

		conflictRetries = prometheus.NewCounter(prometheus.CounterOpts{
			Name: "itemsync_conflict_retries_total",
			Help: "Save-time uniqueness conflicts retried as updates",
		})

		changeEventsTotal = prometheus.NewCounterVec(prometheus.CounterOpts{
			Name: "itemsync_change_events_total",
			Help: "Outbound change event dispositions",
		}, []string{"disposition"}) // emitted|skipped_origin|skipped_operation|skipped_nochange|failed

		attributeWarnings = prometheus.NewCounter(prometheus.CounterOpts{
			Name: "itemsync_attribute_warnings_total",
			Help: "Optional attributes skipped during reconciliation",
		})

		upsertDuration = prometheus.NewHistogramVec(prometheus.HistogramOpts{
			Name:    "itemsync_upsert_duration_seconds",
			Help:    "End-to-end upsert latency",
			Buckets: prometheus.DefBuckets,
		}, []string{"operation"})

		reg.MustRegister(upsertsTotal, conflictRetries, changeEventsTotal, attributeWarnings, upsertDuration)
	})

	return promhttp.Handler()
}

// ObserveUpsert records a completed upsert.
func ObserveUpsert(operation, result string, seconds float64) {
	if upsertsTotal == nil {
		return
	}
	upsertsTotal.WithLabelValues(operation, result).Inc()
	upsertDuration.WithLabelValues(operation).Observe(seconds)
}

// ObserveConflictRetry records one conflict retried as an update.
func ObserveConflictRetry() {
	if conflictRetries == nil {
		return
	}
	conflictRetries.Inc()
}

// ObserveChangeEvent records the disposition of one mutation hook.
func ObserveChangeEvent(disposition string) {
	if changeEventsTotal == nil {
		return
	}
	changeEventsTotal.WithLabelValues(disposition).Inc()
}

// ObserveAttributeWarnings records skipped optional attributes.
func ObserveAttributeWarnings(n int) {
	if attributeWarnings == nil || n <= 0 {
		return
	}
	attributeWarnings.Add(float64(n))
}
