package observability

import (
	"net/http"
	"strconv"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promhttp"
)

var (
	RequestsTotal = prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Name: "wowtoc_http_requests_total",
			Help: "Total HTTP requests served",
		}, []string{"code"},
	)
	Latency = prometheus.NewHistogram(prometheus.HistogramOpts{
		Name:    "wowtoc_http_request_duration_seconds",
		Help:    "Request latency seconds",
		Buckets: prometheus.DefBuckets,
	})
	InFlight = prometheus.NewGauge(prometheus.GaugeOpts{
		Name: "wowtoc_http_in_flight",
		Help: "In-flight HTTP requests",
	})
	BackendRequests = prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Name: "wowtoc_backend_requests_total",
			Help: "Requests made to the version backend by endpoint and outcome",
		}, []string{"endpoint", "outcome"},
	)
	BackendLatency = prometheus.NewHistogramVec(prometheus.HistogramOpts{
		Name:    "wowtoc_backend_request_duration_seconds",
		Help:    "Version backend latency seconds",
		Buckets: prometheus.DefBuckets,
	}, []string{"endpoint"})
	Toggles = prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Name: "wowtoc_selection_toggles_total",
			Help: "Card toggles by resulting action",
		}, []string{"action"},
	)
	PersistenceErrors = prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Name: "wowtoc_persistence_errors_total",
			Help: "Swallowed selection persistence failures by operation",
		}, []string{"op"},
	)
)

func init() {
	prometheus.MustRegister(RequestsTotal, Latency, InFlight, BackendRequests, BackendLatency, Toggles, PersistenceErrors)
}

func MetricsHandler() http.Handler { return promhttp.Handler() }

type rec struct {
	http.ResponseWriter
	code int
}

func (r *rec) WriteHeader(code int) {
	r.code = code
	r.ResponseWriter.WriteHeader(code)
}

func Measure(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		start := time.Now()
		InFlight.Inc()
		defer InFlight.Dec()

		rr := &rec{ResponseWriter: w, code: http.StatusOK}
		next.ServeHTTP(rr, r)

		Latency.Observe(time.Since(start).Seconds())
		RequestsTotal.WithLabelValues(strconv.Itoa(rr.code)).Inc()
	})
}

// ObserveBackend records one version backend call.
func ObserveBackend(endpoint string, start time.Time, err error) {
	outcome := "success"
	if err != nil {
		outcome = "failure"
	}
	BackendLatency.WithLabelValues(endpoint).Observe(time.Since(start).Seconds())
	BackendRequests.WithLabelValues(endpoint, outcome).Inc()
}
