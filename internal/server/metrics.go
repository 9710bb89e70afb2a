package server

import (
	"net/http"
	"strconv"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

var (
	httpRequestsTotal = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "pydash_http_requests_total",
			Help: "HTTP requests served, by path, method, and status code",
		},
		[]string{"path", "method", "code"},
	)
	scansTotal = promauto.NewCounter(
		prometheus.CounterOpts{
			Name: "pydash_scans_total",
			Help: "Project scans performed",
		},
	)
	scanDuration = promauto.NewHistogram(
		prometheus.HistogramOpts{
			Name:    "pydash_scan_duration_seconds",
			Help:    "Duration of project scans in seconds",
			Buckets: prometheus.DefBuckets,
		},
	)
	projectsLastScan = promauto.NewGauge(
		prometheus.GaugeOpts{
			Name: "pydash_projects_last_scan",
			Help: "Projects discovered by the most recent scan",
		},
	)
)

// observeScan records one scan in the metrics.
func observeScan(elapsed time.Duration, projects int) {
	scansTotal.Inc()
	scanDuration.Observe(elapsed.Seconds())
	projectsLastScan.Set(float64(projects))
}

// statusRecorder captures the response status for the request counter.
type statusRecorder struct {
	http.ResponseWriter
	status int
}

func (r *statusRecorder) WriteHeader(code int) {
	r.status = code
	r.ResponseWriter.WriteHeader(code)
}

// instrument counts requests per path. The websocket endpoint is passed
// through untouched so the connection can still be hijacked.
func instrument(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if r.URL.Path == "/api/events" {
			next.ServeHTTP(w, r)
			return
		}
		rec := &statusRecorder{ResponseWriter: w, status: http.StatusOK}
		next.ServeHTTP(rec, r)
		httpRequestsTotal.WithLabelValues(r.URL.Path, r.Method, strconv.Itoa(rec.status)).Inc()
	})
}
