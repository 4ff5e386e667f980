// Package metrics exposes upload, query and HTTP metrics in Prometheus format.
package metrics

import (
	"net/http"
	"strconv"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/collectors"
	"github.com/prometheus/client_golang/prometheus/promhttp"

	"github.com/JonMunkholm/enrollview/internal/core"
)

const namespace = "enrollview"

// Metrics implements core.Observer on its own registry.
type Metrics struct {
	registry *prometheus.Registry

	uploads        *prometheus.CounterVec
	uploadDuration prometheus.Histogram
	rowsRead       prometheus.Counter
	rowsExcluded   prometheus.Counter
	rowsUnkeyed    prometheus.Counter
	records        prometheus.Gauge
	queries        *prometheus.CounterVec
	emptyQueries   *prometheus.CounterVec
	httpRequests   *prometheus.CounterVec
	httpDuration   *prometheus.HistogramVec
}

// New registers all collectors, plus the Go runtime and process collectors,
// on a fresh registry.
func New() *Metrics {
	m := &Metrics{
		registry: prometheus.NewRegistry(),
		uploads: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "uploads_total",
			Help:      "Uploads processed, by result.",
		}, []string{"result"}),
		uploadDuration: prometheus.NewHistogram(prometheus.HistogramOpts{
			Namespace: namespace,
			Name:      "upload_duration_seconds",
			Help:      "Time to parse and normalize an upload.",
			Buckets:   []float64{.01, .05, .1, .25, .5, 1, 2.5, 5, 10, 30},
		}),
		rowsRead: prometheus.NewCounter(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "rows_read_total",
			Help:      "Data rows read from accepted uploads.",
		}),
		rowsExcluded: prometheus.NewCounter(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "rows_excluded_total",
			Help:      "Rows dropped by the Descr exclusion list.",
		}),
		rowsUnkeyed: prometheus.NewCounter(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "rows_unkeyed_total",
			Help:      "Rows dropped for a missing SOC Class Nbr.",
		}),
		records: prometheus.NewGauge(prometheus.GaugeOpts{
			Namespace: namespace,
			Name:      "dataset_records",
			Help:      "Class records in the current dataset.",
		}),
		queries: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "queries_total",
			Help:      "Queries answered, by view.",
		}, []string{"query"}),
		emptyQueries: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "queries_empty_total",
			Help:      "Queries that matched nothing, by view.",
		}, []string{"query"}),
		httpRequests: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "http_requests_total",
			Help:      "HTTP requests, by route, method and status.",
		}, []string{"route", "method", "status"}),
		httpDuration: prometheus.NewHistogramVec(prometheus.HistogramOpts{
			Namespace: namespace,
			Name:      "http_request_duration_seconds",
			Help:      "HTTP request latency, by route.",
			Buckets:   prometheus.DefBuckets,
		}, []string{"route"}),
	}

	m.registry.MustRegister(
		collectors.NewGoCollector(),
		collectors.NewProcessCollector(collectors.ProcessCollectorOpts{}),
		m.uploads,
		m.uploadDuration,
		m.rowsRead,
		m.rowsExcluded,
		m.rowsUnkeyed,
		m.records,
		m.queries,
		m.emptyQueries,
		m.httpRequests,
		m.httpDuration,
	)
	return m
}

// ObserveUpload implements core.Observer.
func (m *Metrics) ObserveUpload(result string, report core.NormalizeReport, elapsed time.Duration) {
	m.uploads.WithLabelValues(result).Inc()
	m.uploadDuration.Observe(elapsed.Seconds())
	if result != core.UploadOK {
		return
	}
	m.rowsRead.Add(float64(report.InputRows))
	m.rowsExcluded.Add(float64(report.Excluded))
	m.rowsUnkeyed.Add(float64(report.Unkeyed))
	m.records.Set(float64(report.Records))
}

// ObserveQuery implements core.Observer.
func (m *Metrics) ObserveQuery(name string, results int) {
	m.queries.WithLabelValues(name).Inc()
	if results == 0 {
		m.emptyQueries.WithLabelValues(name).Inc()
	}
}

// DatasetCleared resets the record gauge.
func (m *Metrics) DatasetCleared() {
	m.records.Set(0)
}

// Handler serves the registry in the Prometheus text format.
func (m *Metrics) Handler() http.Handler {
	return promhttp.HandlerFor(m.registry, promhttp.HandlerOpts{Registry: m.registry})
}

// Middleware records request count and latency by chi route pattern,
// so /api/sections/10001 and /api/sections/10002 share one series.
func (m *Metrics) Middleware(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		start := time.Now()
		ww := middleware.NewWrapResponseWriter(w, r.ProtoMajor)

		next.ServeHTTP(ww, r)

		route := "unmatched"
		if rc := chi.RouteContext(r.Context()); rc != nil {
			if p := rc.RoutePattern(); p != "" {
				route = p
			}
		}
		status := ww.Status()
		if status == 0 {
			status = http.StatusOK
		}
		m.httpRequests.WithLabelValues(route, r.Method, strconv.Itoa(status)).Inc()
		m.httpDuration.WithLabelValues(route).Observe(time.Since(start).Seconds())
	})
}
