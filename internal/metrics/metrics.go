// Package metrics provides Prometheus instrumentation for the note store and
// the HTTP surface.
package metrics

import (
	"errors"
	"net/http"
	"strconv"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promhttp"

	"github.com/starford/notesd/internal/apperr"
)

// Metrics tracks store and HTTP metrics. All names use the notesd_ prefix.
type Metrics struct {
	// StoreOpsTotal counts store operations by operation and result.
	StoreOpsTotal *prometheus.CounterVec

	// StoreOpDuration tracks store operation latency.
	StoreOpDuration *prometheus.HistogramVec

	// NotesListed is the number of notes returned by the last list.
	NotesListed prometheus.Gauge

	// HTTPRequestsTotal counts requests by method, route and status code.
	HTTPRequestsTotal *prometheus.CounterVec

	// HTTPRequestDuration tracks request latency by route.
	HTTPRequestDuration *prometheus.HistogramVec

	gatherer prometheus.Gatherer
}

// NewMetrics creates and registers all metrics on reg.
// Panics if registration fails (expected during initialization only).
func NewMetrics(reg *prometheus.Registry) *Metrics {
	m := &Metrics{
		StoreOpsTotal: prometheus.NewCounterVec(
			prometheus.CounterOpts{
				Name: "notesd_store_operations_total",
				Help: "Total note store operations by operation and result",
			},
			[]string{"operation", "result"},
		),
		StoreOpDuration: prometheus.NewHistogramVec(
			prometheus.HistogramOpts{
				Name:    "notesd_store_operation_duration_seconds",
				Help:    "Note store operation duration in seconds",
				Buckets: prometheus.DefBuckets,
			},
			[]string{"operation"},
		),
		NotesListed: prometheus.NewGauge(
			prometheus.GaugeOpts{
				Name: "notesd_notes_listed",
				Help: "Number of notes returned by the most recent list",
			},
		),
		HTTPRequestsTotal: prometheus.NewCounterVec(
			prometheus.CounterOpts{
				Name: "notesd_http_requests_total",
				Help: "Total HTTP requests by method, route and status",
			},
			[]string{"method", "route", "status"},
		),
		HTTPRequestDuration: prometheus.NewHistogramVec(
			prometheus.HistogramOpts{
				Name:    "notesd_http_request_duration_seconds",
				Help:    "HTTP request duration in seconds",
				Buckets: prometheus.DefBuckets,
			},
			[]string{"method", "route"},
		),
		gatherer: reg,
	}

	reg.MustRegister(
		m.StoreOpsTotal,
		m.StoreOpDuration,
		m.NotesListed,
		m.HTTPRequestsTotal,
		m.HTTPRequestDuration,
	)
	return m
}

// Handler serves the registry in the Prometheus exposition format.
func (m *Metrics) Handler() http.Handler {
	return promhttp.HandlerFor(m.gatherer, promhttp.HandlerOpts{})
}

// Middleware records request counts and latency. The route label is the chi
// route pattern, so note names never become label values.
func (m *Metrics) Middleware(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		start := time.Now()
		ww := middleware.NewWrapResponseWriter(w, r.ProtoMajor)

		next.ServeHTTP(ww, r)

		route := "unmatched"
		if rctx := chi.RouteContext(r.Context()); rctx != nil {
			if p := rctx.RoutePattern(); p != "" {
				route = p
			}
		}
		status := ww.Status()
		if status == 0 {
			status = http.StatusOK
		}
		m.HTTPRequestsTotal.WithLabelValues(r.Method, route, strconv.Itoa(status)).Inc()
		m.HTTPRequestDuration.WithLabelValues(r.Method, route).Observe(time.Since(start).Seconds())
	})
}

func (m *Metrics) observe(op string, start time.Time, err error) {
	m.StoreOpsTotal.WithLabelValues(op, resultLabel(err)).Inc()
	m.StoreOpDuration.WithLabelValues(op).Observe(time.Since(start).Seconds())
}

func resultLabel(err error) string {
	switch {
	case err == nil:
		return "ok"
	case errors.Is(err, apperr.ErrNotFound):
		return "not_found"
	case errors.Is(err, apperr.ErrAlreadyExists):
		return "already_exists"
	case errors.Is(err, apperr.ErrInvalidName):
		return "invalid_name"
	default:
		return "error"
	}
}
