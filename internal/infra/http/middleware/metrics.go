package middleware

import (
	"net/http"
	"strconv"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

var (
	httpRequestsTotal = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "http_requests_total",
			Help: "Total number of HTTP requests",
		},
		[]string{"method", "path", "status"},
	)

	httpRequestDuration = promauto.NewHistogramVec(
		prometheus.HistogramOpts{
			Name:    "http_request_duration_seconds",
			Help:    "Duration of HTTP requests in seconds",
			Buckets: prometheus.DefBuckets,
		},
		[]string{"method", "path"},
	)

	activeConnections = promauto.NewGauge(
		prometheus.GaugeOpts{
			Name: "http_active_connections",
			Help: "Number of active HTTP connections",
		},
	)

	contactsImported = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "contacts_imported_total",
			Help: "Contacts processed by confirmed imports",
		},
		[]string{"result"},
	)

	importBatchesFailed = promauto.NewCounter(
		prometheus.CounterOpts{
			Name: "import_batches_failed_total",
			Help: "Contact insert batches skipped after a failure",
		},
	)

	dispatchRows = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "dispatch_rows_total",
			Help: "Dispatch rows by candidate source and outcome",
		},
		[]string{"source", "outcome"},
	)
)

type responseWriter struct {
	http.ResponseWriter
	statusCode int
}

func (rw *responseWriter) WriteHeader(code int) {
	rw.statusCode = code
	rw.ResponseWriter.WriteHeader(code)
}

func routePattern(r *http.Request) string {
	if rctx := chi.RouteContext(r.Context()); rctx != nil {
		if p := rctx.RoutePattern(); p != "" {
			return p
		}
	}
	return r.URL.Path
}

func Metrics(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		start := time.Now()
		activeConnections.Inc()
		defer activeConnections.Dec()

		rw := &responseWriter{
			ResponseWriter: w,
			statusCode:     http.StatusOK,
		}

		next.ServeHTTP(rw, r)

		duration := time.Since(start).Seconds()
		status := strconv.Itoa(rw.statusCode)

		path := routePattern(r)
		httpRequestsTotal.WithLabelValues(r.Method, path, status).Inc()
		httpRequestDuration.WithLabelValues(r.Method, path).Observe(duration)
	})
}

// Recorder feeds use case outcomes into the import and dispatch counters.
type Recorder struct{}

func (Recorder) ObserveImport(inserted, failed, failedBatches int) {
	contactsImported.WithLabelValues("inserted").Add(float64(inserted))
	contactsImported.WithLabelValues("failed").Add(float64(failed))
	importBatchesFailed.Add(float64(failedBatches))
}

func (Recorder) ObserveDispatch(source, outcome string) {
	dispatchRows.WithLabelValues(source, outcome).Inc()
}
