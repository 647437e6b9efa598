package metrics

import (
	"net/http"
	"sync"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
	"github.com/prometheus/client_golang/prometheus/promhttp"
)

// Metrics holds all application metrics
type Metrics struct {
	reportsTotal       *prometheus.CounterVec
	reportDuration     prometheus.Histogram
	storeQueryDuration *prometheus.HistogramVec
	chunkFailuresTotal prometheus.Counter
	callsReconstructed prometheus.Counter
	callbacksTotal     *prometheus.CounterVec
}

// Global metrics instance
var instance *Metrics
var once sync.Once

// Get returns the singleton metrics instance
func Get() *Metrics {
	once.Do(func() {
		instance = &Metrics{
			reportsTotal: promauto.NewCounterVec(prometheus.CounterOpts{
				Name: "asterview_reports_total",
				Help: "Report requests by outcome.",
			}, []string{"outcome"}),
			reportDuration: promauto.NewHistogram(prometheus.HistogramOpts{
				Name:    "asterview_report_duration_seconds",
				Help:    "End-to-end report pipeline duration.",
				Buckets: prometheus.ExponentialBuckets(0.05, 2, 10),
			}),
			storeQueryDuration: promauto.NewHistogramVec(prometheus.HistogramOpts{
				Name:    "asterview_store_query_duration_seconds",
				Help:    "Event store lookup duration by query kind.",
				Buckets: prometheus.ExponentialBuckets(0.005, 2, 12),
			}, []string{"query"}),
			chunkFailuresTotal: promauto.NewCounter(prometheus.CounterOpts{
				Name: "asterview_chunk_failures_total",
				Help: "Failed chunks across batched CDR lookups.",
			}),
			callsReconstructed: promauto.NewCounter(prometheus.CounterOpts{
				Name: "asterview_calls_reconstructed_total",
				Help: "Calls reconstructed from queue events.",
			}),
			callbacksTotal: promauto.NewCounterVec(prometheus.CounterOpts{
				Name: "asterview_callbacks_total",
				Help: "Callback correlation verdicts by type.",
			}, []string{"type"}),
		}
	})
	return instance
}

// RecordReport records one finished report request.
func (m *Metrics) RecordReport(outcome string, d time.Duration) {
	m.reportsTotal.WithLabelValues(outcome).Inc()
	m.reportDuration.Observe(d.Seconds())
}

// ObserveStoreQuery records one event store lookup.
func (m *Metrics) ObserveStoreQuery(query string, d time.Duration) {
	m.storeQueryDuration.WithLabelValues(query).Observe(d.Seconds())
}

// RecordChunkFailures adds n failed lookup chunks.
func (m *Metrics) RecordChunkFailures(n int) {
	m.chunkFailuresTotal.Add(float64(n))
}

// RecordCallsReconstructed adds n reconstructed calls.
func (m *Metrics) RecordCallsReconstructed(n int) {
	m.callsReconstructed.Add(float64(n))
}

// RecordCallback counts one callback correlation verdict.
func (m *Metrics) RecordCallback(callbackType string) {
	m.callbacksTotal.WithLabelValues(callbackType).Inc()
}

// Handler exposes the prometheus scrape endpoint.
func Handler() http.Handler {
	return promhttp.Handler()
}
