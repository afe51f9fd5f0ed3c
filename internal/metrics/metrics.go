// Package metrics provides the centralized Prometheus metrics registry for
// the prediction engine.
package metrics

import (
	"net/http"
	"sync"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promhttp"
)

// Global registry instance
var (
	registry *prometheus.Registry
	once     sync.Once
)

// Counter metrics
var (
	ScansTotal = prometheus.NewCounterVec(prometheus.CounterOpts{
		Namespace: "courtside",
		Name:      "scans_total",
		Help:      "Total number of prop scans by scope",
	}, []string{"scope"})
	TuplesEvaluatedTotal = prometheus.NewCounter(prometheus.CounterOpts{
		Namespace: "courtside",
		Name:      "tuples_evaluated_total",
		Help:      "Total number of (player, game, stat type) tuples evaluated",
	})
	TuplesSkippedTotal = prometheus.NewCounter(prometheus.CounterOpts{
		Namespace: "courtside",
		Name:      "tuples_skipped_total",
		Help:      "Total number of tuples skipped for insufficient data",
	})
	CalculatorFailuresTotal = prometheus.NewCounterVec(prometheus.CounterOpts{
		Namespace: "courtside",
		Name:      "calculator_failures_total",
		Help:      "Total number of calculator failures excluded from the ensemble",
	}, []string{"calculator"})
	CacheHitsTotal = prometheus.NewCounter(prometheus.CounterOpts{
		Namespace: "courtside",
		Name:      "cache_hits_total",
		Help:      "Total number of prediction cache hits",
	})
	CacheMissesTotal = prometheus.NewCounter(prometheus.CounterOpts{
		Namespace: "courtside",
		Name:      "cache_misses_total",
		Help:      "Total number of prediction cache misses",
	})
	AggregatorRetriesTotal = prometheus.NewCounter(prometheus.CounterOpts{
		Namespace: "courtside",
		Name:      "aggregator_retries_total",
		Help:      "Total number of aggregator retry attempts",
	})
)

// Gauge metrics
var (
	CacheHitRatio = prometheus.NewGauge(prometheus.GaugeOpts{
		Namespace: "courtside",
		Name:      "cache_hit_ratio",
		Help:      "Ratio of cache hits to total cache lookups",
	})
	StreamClients = prometheus.NewGauge(prometheus.GaugeOpts{
		Namespace: "courtside",
		Name:      "stream_clients",
		Help:      "Number of connected websocket stream clients",
	})
	LastScanRecords = prometheus.NewGaugeVec(prometheus.GaugeOpts{
		Namespace: "courtside",
		Name:      "last_scan_records",
		Help:      "Number of prediction records produced by the last scan per scope",
	}, []string{"scope"})
)

// Histogram metrics
var (
	EngineEstimateDuration = prometheus.NewHistogram(prometheus.HistogramOpts{
		Namespace: "courtside",
		Name:      "engine_estimate_duration_seconds",
		Help:      "Duration of single-tuple ensemble estimation in seconds",
		Buckets:   prometheus.DefBuckets,
	})
	ScanDuration = prometheus.NewHistogramVec(prometheus.HistogramOpts{
		Namespace: "courtside",
		Name:      "scan_duration_seconds",
		Help:      "Duration of full scans in seconds",
		Buckets:   []float64{0.1, 0.5, 1, 2.5, 5, 10, 30, 60},
	}, []string{"scope"})
)

// InitRegistry initializes the global Prometheus registry.
func InitRegistry() *prometheus.Registry {
	once.Do(func() {
		registry = prometheus.NewRegistry()

		registry.MustRegister(ScansTotal)
		registry.MustRegister(TuplesEvaluatedTotal)
		registry.MustRegister(TuplesSkippedTotal)
		registry.MustRegister(CalculatorFailuresTotal)
		registry.MustRegister(CacheHitsTotal)
		registry.MustRegister(CacheMissesTotal)
		registry.MustRegister(AggregatorRetriesTotal)

		registry.MustRegister(CacheHitRatio)
		registry.MustRegister(StreamClients)
		registry.MustRegister(LastScanRecords)

		registry.MustRegister(EngineEstimateDuration)
		registry.MustRegister(ScanDuration)
	})
	return registry
}

// GetRegistry returns the global Prometheus registry.
func GetRegistry() *prometheus.Registry {
	if registry == nil {
		return InitRegistry()
	}
	return registry
}

// Handler returns the Prometheus HTTP handler.
func Handler() http.Handler {
	return promhttp.HandlerFor(GetRegistry(), promhttp.HandlerOpts{})
}

// RecordCalculatorFailure records a calculator excluded from an ensemble.
func RecordCalculatorFailure(name string) {
	CalculatorFailuresTotal.WithLabelValues(name).Inc()
}

// RecordScan records a completed scan for a scope.
func RecordScan(scope string, records int, seconds float64) {
	ScansTotal.WithLabelValues(scope).Inc()
	LastScanRecords.WithLabelValues(scope).Set(float64(records))
	ScanDuration.WithLabelValues(scope).Observe(seconds)
}
