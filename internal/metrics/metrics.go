// Package metrics provides Prometheus instrumentation for Wildpitch.
package metrics

import (
	"net/http"
	"strconv"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/collectors"
	"github.com/prometheus/client_golang/prometheus/promhttp"
)

// Metrics contains the Prometheus collectors for application events.
type Metrics struct {
	registry *prometheus.Registry

	// HTTP
	HTTPRequestsTotal   *prometheus.CounterVec
	HTTPRequestDuration *prometheus.HistogramVec

	// Sessions
	SessionsCreatedTotal prometheus.Counter
	SessionsPurgedTotal  prometheus.Counter
	SessionSweepDuration prometheus.Histogram

	// Aggregates
	CampgroundsCreatedTotal prometheus.Counter
	CampgroundsDeletedTotal prometheus.Counter
	ReviewsCreatedTotal     prometheus.Counter
	AssetDeleteFailures     prometheus.Counter
}

// New creates and registers all application metrics on a fresh registry.
// A private registry keeps test runs from colliding on the global default.
func New() *Metrics {
	registry := prometheus.NewRegistry()

	// Standard Go runtime and process metrics
	registry.MustRegister(collectors.NewGoCollector())
	registry.MustRegister(collectors.NewProcessCollector(collectors.ProcessCollectorOpts{}))

	m := &Metrics{
		registry: registry,

		HTTPRequestsTotal: prometheus.NewCounterVec(
			prometheus.CounterOpts{
				Name: "wildpitch_http_requests_total",
				Help: "Total number of HTTP requests by method, route and status",
			},
			[]string{"method", "route", "status"},
		),
		HTTPRequestDuration: prometheus.NewHistogramVec(
			prometheus.HistogramOpts{
				Name:    "wildpitch_http_request_duration_seconds",
				Help:    "HTTP request latency by method and route",
				Buckets: prometheus.DefBuckets,
			},
			[]string{"method", "route"},
		),

		SessionsCreatedTotal: prometheus.NewCounter(prometheus.CounterOpts{
			Name: "wildpitch_sessions_created_total",
			Help: "Total number of sessions created",
		}),
		SessionsPurgedTotal: prometheus.NewCounter(prometheus.CounterOpts{
			Name: "wildpitch_sessions_purged_total",
			Help: "Total number of expired sessions removed by the reaper",
		}),
		SessionSweepDuration: prometheus.NewHistogram(prometheus.HistogramOpts{
			Name:    "wildpitch_session_sweep_duration_seconds",
			Help:    "Duration of expired-session sweeps",
			Buckets: prometheus.DefBuckets,
		}),

		CampgroundsCreatedTotal: prometheus.NewCounter(prometheus.CounterOpts{
			Name: "wildpitch_campgrounds_created_total",
			Help: "Total number of campgrounds created",
		}),
		CampgroundsDeletedTotal: prometheus.NewCounter(prometheus.CounterOpts{
			Name: "wildpitch_campgrounds_deleted_total",
			Help: "Total number of campgrounds cascade-deleted",
		}),
		ReviewsCreatedTotal: prometheus.NewCounter(prometheus.CounterOpts{
			Name: "wildpitch_reviews_created_total",
			Help: "Total number of reviews created",
		}),
		AssetDeleteFailures: prometheus.NewCounter(prometheus.CounterOpts{
			Name: "wildpitch_asset_delete_failures_total",
			Help: "Total number of best-effort asset deletions that failed",
		}),
	}

	registry.MustRegister(
		m.HTTPRequestsTotal,
		m.HTTPRequestDuration,
		m.SessionsCreatedTotal,
		m.SessionsPurgedTotal,
		m.SessionSweepDuration,
		m.CampgroundsCreatedTotal,
		m.CampgroundsDeletedTotal,
		m.ReviewsCreatedTotal,
		m.AssetDeleteFailures,
	)

	return m
}

// RecordSessionSweep records the outcome of an expired-session sweep.
func (m *Metrics) RecordSessionSweep(seconds float64, purged int64) {
	m.SessionSweepDuration.Observe(seconds)
	m.SessionsPurgedTotal.Add(float64(purged))
}

// The Inc helpers below are nil-safe so services can run without metrics
// wired, as they do in tests.

// IncSessionsCreated counts a newly created session.
func (m *Metrics) IncSessionsCreated() {
	if m == nil {
		return
	}
	m.SessionsCreatedTotal.Inc()
}

// IncCampgroundsCreated counts a newly created campground.
func (m *Metrics) IncCampgroundsCreated() {
	if m == nil {
		return
	}
	m.CampgroundsCreatedTotal.Inc()
}

// IncCampgroundsDeleted counts a cascade-deleted campground.
func (m *Metrics) IncCampgroundsDeleted() {
	if m == nil {
		return
	}
	m.CampgroundsDeletedTotal.Inc()
}

// IncReviewsCreated counts a newly created review.
func (m *Metrics) IncReviewsCreated() {
	if m == nil {
		return
	}
	m.ReviewsCreatedTotal.Inc()
}

// IncAssetDeleteFailure counts a failed best-effort asset deletion.
func (m *Metrics) IncAssetDeleteFailure() {
	if m == nil {
		return
	}
	m.AssetDeleteFailures.Inc()
}

// Handler returns the /metrics HTTP handler.
func (m *Metrics) Handler() http.Handler {
	return promhttp.HandlerFor(m.registry, promhttp.HandlerOpts{})
}

// statusRecorder captures the response status for instrumentation.
type statusRecorder struct {
	http.ResponseWriter
	status int
}

func (r *statusRecorder) WriteHeader(status int) {
	r.status = status
	r.ResponseWriter.WriteHeader(status)
}

// Middleware instruments HTTP requests with count and latency metrics.
// The chi route pattern is used as the label so path parameters don't
// explode cardinality.
func (m *Metrics) Middleware(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		start := time.Now()
		rec := &statusRecorder{ResponseWriter: w, status: http.StatusOK}

		next.ServeHTTP(rec, r)

		route := chi.RouteContext(r.Context()).RoutePattern()
		if route == "" {
			route = "unmatched"
		}

		m.HTTPRequestsTotal.WithLabelValues(r.Method, route, strconv.Itoa(rec.status)).Inc()
		m.HTTPRequestDuration.WithLabelValues(r.Method, route).Observe(time.Since(start).Seconds())
	})
}
