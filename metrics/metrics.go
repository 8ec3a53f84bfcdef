// Package metrics defines the Prometheus collectors folio exposes on
// /metrics and an Echo middleware recording request counts and latency.
package metrics

import (
	"net/http"
	"strconv"
	"time"

	"github.com/labstack/echo/v4"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/collectors"
	"github.com/prometheus/client_golang/prometheus/promhttp"
)

// Metrics holds all Prometheus collectors for a site. A nil *Metrics is
// valid and records nothing.
type Metrics struct {
	Registry *prometheus.Registry

	HTTPRequestsTotal   *prometheus.CounterVec
	HTTPRequestDuration *prometheus.HistogramVec
	SearchQueriesTotal  *prometheus.CounterVec
	SearchResultsCount  *prometheus.HistogramVec
	TagSelectionsTotal  *prometheus.CounterVec
	WidgetsMounted      prometheus.Gauge
	CacheReloadsTotal   *prometheus.CounterVec
}

// New creates the collectors on a private registry.
func New() *Metrics {
	m := &Metrics{
		Registry: prometheus.NewRegistry(),
		HTTPRequestsTotal: prometheus.NewCounterVec(
			prometheus.CounterOpts{
				Name: "folio_http_requests_total",
				Help: "Total number of HTTP requests by method, route, and status.",
			},
			[]string{"method", "route", "status"},
		),
		HTTPRequestDuration: prometheus.NewHistogramVec(
			prometheus.HistogramOpts{
				Name:    "folio_http_request_duration_seconds",
				Help:    "HTTP request latency in seconds.",
				Buckets: []float64{0.001, 0.005, 0.01, 0.025, 0.05, 0.1, 0.25, 0.5, 1, 2.5},
			},
			[]string{"method", "route"},
		),
		SearchQueriesTotal: prometheus.NewCounterVec(
			prometheus.CounterOpts{
				Name: "folio_search_queries_total",
				Help: "Search queries by widget variant and outcome (hit, zero_result).",
			},
			[]string{"variant", "outcome"},
		),
		SearchResultsCount: prometheus.NewHistogramVec(
			prometheus.HistogramOpts{
				Name:    "folio_search_results_count",
				Help:    "Number of results returned per search query.",
				Buckets: []float64{0, 1, 2, 5, 10, 25, 50, 100},
			},
			[]string{"variant"},
		),
		TagSelectionsTotal: prometheus.NewCounterVec(
			prometheus.CounterOpts{
				Name: "folio_tag_selections_total",
				Help: "Post list views filtered by a tag.",
			},
			[]string{"tag"},
		),
		WidgetsMounted: prometheus.NewGauge(
			prometheus.GaugeOpts{
				Name: "folio_widgets_mounted",
				Help: "Search widgets currently mounted on a visitor page.",
			},
		),
		CacheReloadsTotal: prometheus.NewCounterVec(
			prometheus.CounterOpts{
				Name: "folio_post_cache_reloads_total",
				Help: "Post cache reloads by status.",
			},
			[]string{"status"},
		),
	}

	m.Registry.MustRegister(
		collectors.NewGoCollector(),
		collectors.NewProcessCollector(collectors.ProcessCollectorOpts{}),
		m.HTTPRequestsTotal,
		m.HTTPRequestDuration,
		m.SearchQueriesTotal,
		m.SearchResultsCount,
		m.TagSelectionsTotal,
		m.WidgetsMounted,
		m.CacheReloadsTotal,
	)
	return m
}

// Handler returns the scrape handler for the registry.
func (m *Metrics) Handler() http.Handler {
	return promhttp.HandlerFor(m.Registry, promhttp.HandlerOpts{})
}

// ObserveSearch records one executed query and its result count.
func (m *Metrics) ObserveSearch(variant string, results int) {
	if m == nil {
		return
	}
	outcome := "hit"
	if results == 0 {
		outcome = "zero_result"
	}
	m.SearchQueriesTotal.WithLabelValues(variant, outcome).Inc()
	m.SearchResultsCount.WithLabelValues(variant).Observe(float64(results))
}

// ObserveTag records a post list filtered by tag.
func (m *Metrics) ObserveTag(tag string) {
	if m == nil || tag == "" {
		return
	}
	m.TagSelectionsTotal.WithLabelValues(tag).Inc()
}

// ObserveCacheReload records a post cache reload.
func (m *Metrics) ObserveCacheReload(err error) {
	if m == nil {
		return
	}
	status := "ok"
	if err != nil {
		status = "error"
	}
	m.CacheReloadsTotal.WithLabelValues(status).Inc()
}

// WidgetMounted adjusts the mounted widget gauge by delta.
func (m *Metrics) WidgetMounted(delta int) {
	if m == nil {
		return
	}
	m.WidgetsMounted.Add(float64(delta))
}

// Middleware records request count and latency per route template.
func (m *Metrics) Middleware() echo.MiddlewareFunc {
	return func(next echo.HandlerFunc) echo.HandlerFunc {
		return func(c echo.Context) error {
			start := time.Now()
			err := next(c)

			status := c.Response().Status
			if he, ok := err.(*echo.HTTPError); ok {
				status = he.Code
			}
			route := c.Path()
			if route == "" {
				route = "unmatched"
			}
			method := c.Request().Method
			m.HTTPRequestsTotal.WithLabelValues(method, route, strconv.Itoa(status)).Inc()
			m.HTTPRequestDuration.WithLabelValues(method, route).Observe(time.Since(start).Seconds())
			return err
		}
	}
}
