// Package metrics holds the Prometheus collectors of the flight search module.
package metrics

import (
	"sync"
	"time"

	"github.com/prometheus/client_golang/prometheus"
)

const namespace = "flightsearch"

var (
	supplierCalls = prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Namespace: namespace,
			Subsystem: "supplier",
			Name:      "calls_total",
			Help:      "Count of supplier calls by supplier, operation and outcome.",
		},
		[]string{"supplier", "operation", "outcome"},
	)
	supplierLatency = prometheus.NewHistogramVec(
		prometheus.HistogramOpts{
			Namespace: namespace,
			Subsystem: "supplier",
			Name:      "call_duration_seconds",
			Help:      "Latency of supplier calls.",
			Buckets:   []float64{0.05, 0.1, 0.25, 0.5, 1, 2, 4, 8, 16},
		},
		[]string{"supplier", "operation"},
	)
	searches = prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "searches_total",
			Help:      "Count of searches by kind and whether they were served from cache.",
		},
		[]string{"kind", "cache"},
	)
	itineraries = prometheus.NewHistogramVec(
		prometheus.HistogramOpts{
			Namespace: namespace,
			Name:      "itineraries_returned",
			Help:      "Number of itineraries returned per search.",
			Buckets:   []float64{0, 1, 5, 10, 20, 30, 45, 60},
		},
		[]string{"kind"},
	)
)

var registerMetrics sync.Once

// Register all metrics with reg. Only the first call has an effect.
func Register(reg prometheus.Registerer) {
	registerMetrics.Do(func() {
		reg.MustRegister(supplierCalls)
		reg.MustRegister(supplierLatency)
		reg.MustRegister(searches)
		reg.MustRegister(itineraries)
	})
}

// RecordSupplierCall records the outcome and latency of one supplier call.
func RecordSupplierCall(supplier, operation, outcome string, elapsed time.Duration) {
	supplierCalls.WithLabelValues(supplier, operation, outcome).Inc()
	supplierLatency.WithLabelValues(supplier, operation).Observe(elapsed.Seconds())
}

// RecordSearch records a finished search and the number of itineraries it returned.
func RecordSearch(kind string, cacheHit bool, returned int) {
	cache := "miss"
	if cacheHit {
		cache = "hit"
	}
	searches.WithLabelValues(kind, cache).Inc()
	itineraries.WithLabelValues(kind).Observe(float64(returned))
}
