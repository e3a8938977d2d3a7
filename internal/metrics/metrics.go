// Package metrics exposes Prometheus collectors for the view service.
package metrics

import (
	"net/http"
	"strconv"
	"time"

	"github.com/JonMunkholm/productview/internal/core"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/collectors"
	"github.com/prometheus/client_golang/prometheus/promauto"
	"github.com/prometheus/client_golang/prometheus/promhttp"
)

const namespace = "productview"

// Metrics implements core.Recorder and instruments HTTP handlers.
type Metrics struct {
	registry *prometheus.Registry

	loads          *prometheus.CounterVec
	recordsLoaded  prometheus.Gauge
	recordsSkipped prometheus.Gauge

	derivations    prometheus.Counter
	deriveDuration prometheus.Histogram
	rowsMatched    prometheus.Histogram

	exports     *prometheus.CounterVec
	exportBytes prometheus.Counter

	sessions prometheus.Gauge

	requests        *prometheus.CounterVec
	requestDuration *prometheus.HistogramVec
}

var _ core.Recorder = (*Metrics)(nil)

// New registers every collector on a fresh registry, together with the
// Go runtime and process collectors.
func New() *Metrics {
	reg := prometheus.NewRegistry()
	reg.MustRegister(
		collectors.NewGoCollector(),
		collectors.NewProcessCollector(collectors.ProcessCollectorOpts{}),
	)
	f := promauto.With(reg)

	return &Metrics{
		registry: reg,

		loads: f.NewCounterVec(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "loads_total",
			Help:      "Record loads by result (success, failure).",
		}, []string{"result"}),
		recordsLoaded: f.NewGauge(prometheus.GaugeOpts{
			Namespace: namespace,
			Name:      "records_loaded",
			Help:      "Records held after the last load.",
		}),
		recordsSkipped: f.NewGauge(prometheus.GaugeOpts{
			Namespace: namespace,
			Name:      "records_skipped",
			Help:      "Malformed records skipped by the last load.",
		}),

		derivations: f.NewCounter(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "derivations_total",
			Help:      "Views derived.",
		}),
		deriveDuration: f.NewHistogram(prometheus.HistogramOpts{
			Namespace: namespace,
			Name:      "derive_duration_seconds",
			Help:      "Time spent deriving a view.",
			Buckets:   []float64{0.0001, 0.0005, 0.001, 0.005, 0.01, 0.05, 0.1, 0.5},
		}),
		rowsMatched: f.NewHistogram(prometheus.HistogramOpts{
			Namespace: namespace,
			Name:      "derive_rows_matched",
			Help:      "Rows surviving the filters per derivation.",
			Buckets:   prometheus.ExponentialBuckets(1, 4, 9),
		}),

		exports: f.NewCounterVec(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "exports_total",
			Help:      "CSV exports by result (success, failure).",
		}, []string{"result"}),
		exportBytes: f.NewCounter(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "export_bytes_total",
			Help:      "Bytes written by CSV exports.",
		}),

		sessions: f.NewGauge(prometheus.GaugeOpts{
			Namespace: namespace,
			Name:      "sessions_active",
			Help:      "Live view sessions.",
		}),

		requests: f.NewCounterVec(prometheus.CounterOpts{
			Namespace: namespace,
			Subsystem: "http",
			Name:      "requests_total",
			Help:      "HTTP requests by method, route and status code.",
		}, []string{"method", "route", "code"}),
		requestDuration: f.NewHistogramVec(prometheus.HistogramOpts{
			Namespace: namespace,
			Subsystem: "http",
			Name:      "request_duration_seconds",
			Help:      "HTTP request latency by route.",
			Buckets:   prometheus.DefBuckets,
		}, []string{"method", "route"}),
	}
}

// Registry returns the registry the collectors are registered on.
func (m *Metrics) Registry() *prometheus.Registry {
	return m.registry
}

// Handler serves the registry in the Prometheus exposition format.
func (m *Metrics) Handler() http.Handler {
	return promhttp.HandlerFor(m.registry, promhttp.HandlerOpts{
		Registry: m.registry,
	})
}

func (m *Metrics) ObserveLoad(report core.LoadReport, err error) {
	if err != nil {
		m.loads.WithLabelValues("failure").Inc()
		m.recordsLoaded.Set(0)
		m.recordsSkipped.Set(0)
		return
	}
	m.loads.WithLabelValues("success").Inc()
	m.recordsLoaded.Set(float64(report.Loaded))
	m.recordsSkipped.Set(float64(report.SkippedCount()))
}

func (m *Metrics) ObserveDerive(elapsed time.Duration, matched, _ int) {
	m.derivations.Inc()
	m.deriveDuration.Observe(elapsed.Seconds())
	m.rowsMatched.Observe(float64(matched))
}

func (m *Metrics) ObserveExport(_ int, bytes int64, err error) {
	m.exportBytes.Add(float64(bytes))
	if err != nil {
		m.exports.WithLabelValues("failure").Inc()
		return
	}
	m.exports.WithLabelValues("success").Inc()
}

func (m *Metrics) SetSessions(n int) {
	m.sessions.Set(float64(n))
}

// ObserveRequest records one completed HTTP request. route should be the
// matched route pattern, not the raw path, to keep label cardinality bounded.
func (m *Metrics) ObserveRequest(method, route string, status int, elapsed time.Duration) {
	if route == "" {
		route = "unmatched"
	}
	m.requests.WithLabelValues(method, route, strconv.Itoa(status)).Inc()
	m.requestDuration.WithLabelValues(method, route).Observe(elapsed.Seconds())
}
