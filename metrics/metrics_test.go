package metrics

import (
	"errors"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"github.com/labstack/echo/v4"
	"github.com/prometheus/client_golang/prometheus/testutil"
)

func TestObserveSearch(t *testing.T) {
	m := New()
	m.ObserveSearch("full", 3)
	m.ObserveSearch("full", 0)
	m.ObserveSearch("compact", 5)

	if got := testutil.ToFloat64(m.SearchQueriesTotal.WithLabelValues("full", "hit")); got != 1 {
		t.Errorf("full hits = %v, want 1", got)
	}
	if got := testutil.ToFloat64(m.SearchQueriesTotal.WithLabelValues("full", "zero_result")); got != 1 {
		t.Errorf("full zero results = %v, want 1", got)
	}
	if got := testutil.CollectAndCount(m.SearchResultsCount); got != 2 {
		t.Errorf("result histograms = %d, want 2", got)
	}
}

func TestNilMetricsIsNoop(t *testing.T) {
	var m *Metrics
	m.ObserveSearch("full", 1)
	m.ObserveTag("go")
	m.ObserveCacheReload(errors.New("boom"))
	m.WidgetMounted(1)
}

func TestObserveTagAndReload(t *testing.T) {
	m := New()
	m.ObserveTag("go")
	m.ObserveTag("")
	m.ObserveCacheReload(nil)
	m.ObserveCacheReload(errors.New("db gone"))
	m.WidgetMounted(2)
	m.WidgetMounted(-1)

	if got := testutil.ToFloat64(m.TagSelectionsTotal.WithLabelValues("go")); got != 1 {
		t.Errorf("tag selections = %v, want 1", got)
	}
	if got := testutil.ToFloat64(m.CacheReloadsTotal.WithLabelValues("error")); got != 1 {
		t.Errorf("reload errors = %v, want 1", got)
	}
	if got := testutil.ToFloat64(m.WidgetsMounted); got != 1 {
		t.Errorf("widgets mounted = %v, want 1", got)
	}
}

func TestMiddlewareAndHandler(t *testing.T) {
	m := New()
	e := echo.New()
	e.Use(m.Middleware())
	e.GET("/blog/:slug/", func(c echo.Context) error {
		return c.String(http.StatusOK, "ok")
	})
	e.GET("/metrics", echo.WrapHandler(m.Handler()))

	for _, path := range []string{"/blog/a/", "/blog/b/"} {
		rec := httptest.NewRecorder()
		e.ServeHTTP(rec, httptest.NewRequest(http.MethodGet, path, nil))
	}

	if got := testutil.ToFloat64(m.HTTPRequestsTotal.WithLabelValues("GET", "/blog/:slug/", "200")); got != 2 {
		t.Errorf("requests = %v, want 2", got)
	}

	rec := httptest.NewRecorder()
	e.ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/metrics", nil))
	if rec.Code != http.StatusOK {
		t.Fatalf("metrics status = %d", rec.Code)
	}
	if !strings.Contains(rec.Body.String(), "folio_http_requests_total") {
		t.Error("scrape output missing folio_http_requests_total")
	}
}
