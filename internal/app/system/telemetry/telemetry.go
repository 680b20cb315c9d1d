// Package telemetry holds the Prometheus collectors for report queries and
// imports, and the middleware that records request latency.
package telemetry

import (
	"bufio"
	"net"
	"net/http"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
	"github.com/prometheus/client_golang/prometheus/promhttp"
)

var (
	importRowsApplied = promauto.NewCounter(prometheus.CounterOpts{
		Namespace: "ideatrack",
		Subsystem: "import",
		Name:      "rows_applied_total",
		Help:      "Rows whose counters were added to an organization.",
	})

	importFailures = promauto.NewCounterVec(prometheus.CounterOpts{
		Namespace: "ideatrack",
		Subsystem: "import",
		Name:      "failures_total",
		Help:      "Rejected imports broken down by cause.",
	}, []string{"kind"})

	aggregationLatency = promauto.NewHistogramVec(prometheus.HistogramOpts{
		Namespace: "ideatrack",
		Subsystem: "report",
		Name:      "aggregation_seconds",
		Help:      "Time spent running a report aggregation.",
		Buckets: []float64{
			0.005, 0.01, 0.02, 0.05,
			0.1, 0.2, 0.5,
			1, 2, 5, 10,
		},
	}, []string{"granularity", "result"})

	apiRequests = promauto.NewCounterVec(prometheus.CounterOpts{
		Namespace: "ideatrack",
		Subsystem: "api",
		Name:      "requests_total",
		Help:      "API requests broken down by endpoint and status class.",
	}, []string{"endpoint", "result"})
)

// Import failure kinds.
const (
	FailureMissingColumn = "missing_column"
	FailureUnknownCode   = "unknown_code"
	FailureInvalidValue  = "invalid_value"
	FailurePersistence   = "persistence"
	FailureUnreadable    = "unreadable"
	FailureEmpty         = "empty"
)

// RowsApplied adds n to the applied-rows counter.
func RowsApplied(n int) {
	if n > 0 {
		importRowsApplied.Add(float64(n))
	}
}

// ImportFailed counts one rejected import of the given kind.
func ImportFailed(kind string) {
	importFailures.WithLabelValues(kind).Inc()
}

// ObserveAggregation records how long one aggregation took.
func ObserveAggregation(granularity string, start time.Time, err error) {
	result := "ok"
	if err != nil {
		result = "error"
	}
	aggregationLatency.WithLabelValues(granularity, result).Observe(time.Since(start).Seconds())
}

// Handler serves the default registry in the text exposition format.
func Handler() http.Handler {
	return promhttp.Handler()
}

// Instrument counts requests to next under a fixed endpoint label so that ids
// in the path never become label values.
func Instrument(endpoint string) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			rec := &statusRecorder{ResponseWriter: w, status: http.StatusOK}
			next.ServeHTTP(rec, r)
			apiRequests.WithLabelValues(endpoint, statusClass(rec.status)).Inc()
		})
	}
}

func statusClass(status int) string {
	switch {
	case status >= 500:
		return "5xx"
	case status >= 400:
		return "4xx"
	case status >= 300:
		return "3xx"
	default:
		return "2xx"
	}
}

type statusRecorder struct {
	http.ResponseWriter
	status      int
	wroteHeader bool
}

func (w *statusRecorder) WriteHeader(status int) {
	if !w.wroteHeader {
		w.status = status
		w.wroteHeader = true
	}
	w.ResponseWriter.WriteHeader(status)
}

func (w *statusRecorder) Write(b []byte) (int, error) {
	if !w.wroteHeader {
		w.WriteHeader(http.StatusOK)
	}
	return w.ResponseWriter.Write(b)
}

func (w *statusRecorder) Flush() {
	if f, ok := w.ResponseWriter.(http.Flusher); ok {
		f.Flush()
	}
}

func (w *statusRecorder) Hijack() (net.Conn, *bufio.ReadWriter, error) {
	h, ok := w.ResponseWriter.(http.Hijacker)
	if !ok {
		return nil, nil, http.ErrNotSupported
	}
	return h.Hijack()
}
