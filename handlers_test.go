package folio_test

import (
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"net/url"
	"path/filepath"
	"strings"
	"testing"

	"github.com/PuerkitoBio/goquery"
	"github.com/mmcdole/gofeed"
	"github.com/prometheus/client_golang/prometheus/testutil"

	"github.com/eringen/folio"
	"github.com/eringen/folio/views"
)

func newTestApp(t *testing.T, mutate ...func(*folio.SiteConfig)) *folio.App {
	t.Helper()
	cfg := folio.SiteConfig{
		Name:            "Test Blog",
		URL:             "https://example.com",
		Description:     "Posts about things",
		DatabasePath:    filepath.Join(t.TempDir(), "blog.db"),
		AdminPassword:   "hunter2",
		SessionSecret:   "test-session-secret",
		MetricsEnabled:  true,
		SearchRateLimit: 100,
		LogLevel:        "off",
	}
	for _, fn := range mutate {
		fn(&cfg)
	}
	app := folio.New(cfg, views.Default(), folio.WithStaticDir(t.TempDir()))
	if err := app.Init(); err != nil {
		t.Fatalf("Init: %v", err)
	}
	t.Cleanup(func() { app.Close() })

	for _, p := range []folio.BlogPost{
		{Slug: "learning-go", Title: "Learning Go", Date: "2024-03-01", Tags: []string{"go", "web"},
			Description: "Notes from a first month", Body: "Goroutines and channels.", Published: true},
		{Slug: "rust-notes", Title: "Rust Notes", Date: "2024-02-01", Tags: []string{"rust"},
			Description: "Borrow checker", Body: "Ownership rules everything. Channels exist too.", Published: true},
		{Slug: "draft", Title: "Unfinished Go", Date: "2024-04-01", Tags: []string{"go"}},
	} {
		if err := app.Store.SavePost(p); err != nil {
			t.Fatal(err)
		}
	}
	return app
}

func do(t *testing.T, app *folio.App, req *http.Request) *httptest.ResponseRecorder {
	t.Helper()
	rec := httptest.NewRecorder()
	app.Echo.ServeHTTP(rec, req)
	return rec
}

func get(t *testing.T, app *folio.App, target string) *httptest.ResponseRecorder {
	t.Helper()
	return do(t, app, httptest.NewRequest(http.MethodGet, target, nil))
}

func postForm(t *testing.T, app *folio.App, target string, form url.Values, cookies []*http.Cookie) *httptest.ResponseRecorder {
	t.Helper()
	req := httptest.NewRequest(http.MethodPost, target, strings.NewReader(form.Encode()))
	req.Header.Set("Content-Type", "application/x-www-form-urlencoded")
	for _, c := range cookies {
		req.AddCookie(c)
	}
	return do(t, app, req)
}

func document(t *testing.T, rec *httptest.ResponseRecorder) *goquery.Document {
	t.Helper()
	doc, err := goquery.NewDocumentFromReader(rec.Body)
	if err != nil {
		t.Fatal(err)
	}
	return doc
}

func TestHomeFiltersByTag(t *testing.T) {
	app := newTestApp(t)

	rec := get(t, app, "/")
	if rec.Code != http.StatusOK {
		t.Fatalf("status = %d", rec.Code)
	}
	doc := document(t, rec)
	if n := doc.Find("li.post-card").Length(); n != 2 {
		t.Errorf("unfiltered list has %d posts, want 2 published", n)
	}
	if doc.Find(".clear-all").Length() != 0 {
		t.Error("clear all shown without a selection")
	}

	doc = document(t, get(t, app, "/?tag=rust"))
	cards := doc.Find("li.post-card")
	if cards.Length() != 1 || cards.Find("h2").Text() != "Rust Notes" {
		t.Errorf("rust filter returned %q", cards.Text())
	}
	if got := doc.Find("a.tag-selected").AttrOr("href", ""); got != "/" {
		t.Errorf("selected badge links to %q, want /", got)
	}
	if doc.Find(".clear-all").Length() != 1 {
		t.Error("clear all missing with a selection")
	}
	if v := testutil.ToFloat64(app.Metrics.TagSelectionsTotal.WithLabelValues("rust")); v != 1 {
		t.Errorf("tag selections = %v, want 1", v)
	}

	doc = document(t, get(t, app, "/?tag=zig"))
	if got := doc.Find(".empty").Text(); got != "No posts found. Try adjusting your filter." {
		t.Errorf("empty message = %q", got)
	}
}

func TestHomeBlogPartial(t *testing.T) {
	app := newTestApp(t)
	req := httptest.NewRequest(http.MethodGet, "/?tag=go&partial=blog", nil)
	req.Header.Set("HX-Request", "true")
	rec := do(t, app, req)
	body := rec.Body.String()
	if strings.Contains(body, "<html") {
		t.Error("partial should not include the layout")
	}
	if !strings.Contains(body, `id="blog"`) {
		t.Errorf("partial missing blog section: %s", body)
	}
}

func TestPostPage(t *testing.T) {
	app := newTestApp(t)
	rec := get(t, app, "/blog/learning-go/")
	if rec.Code != http.StatusOK {
		t.Fatalf("status = %d", rec.Code)
	}
	doc := document(t, rec)
	if got := doc.Find("article h1").Text(); got != "Learning Go" {
		t.Errorf("title = %q", got)
	}

	if rec := get(t, app, "/blog/draft/"); rec.Code != http.StatusNotFound {
		t.Errorf("draft status = %d, want 404", rec.Code)
	}
	if rec := get(t, app, "/blog/missing/"); rec.Code != http.StatusNotFound {
		t.Errorf("missing status = %d, want 404", rec.Code)
	}
}

type apiResponse struct {
	Query   string `json:"query"`
	Variant string `json:"variant"`
	Count   int    `json:"count"`
	Results []struct {
		Slug    string `json:"slug"`
		Excerpt []struct {
			Text  string `json:"text"`
			Match bool   `json:"match"`
		} `json:"excerpt"`
	} `json:"results"`
}

func TestAPISearch(t *testing.T) {
	app := newTestApp(t)

	tests := []struct {
		name      string
		target    string
		wantSlugs []string
	}{
		{"full matches body", "/api/search?q=channels", []string{"/blog/learning-go/", "/blog/rust-notes/"}},
		{"compact skips body", "/api/search?q=channels&variant=compact", nil},
		{"tag match", "/api/search?q=RUST&variant=compact", []string{"/blog/rust-notes/"}},
		{"blank query", "/api/search?q=%20%20", nil},
		{"drafts excluded", "/api/search?q=unfinished", nil},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			rec := get(t, app, tt.target)
			if rec.Code != http.StatusOK {
				t.Fatalf("status = %d: %s", rec.Code, rec.Body)
			}
			var resp apiResponse
			if err := json.Unmarshal(rec.Body.Bytes(), &resp); err != nil {
				t.Fatal(err)
			}
			var slugs []string
			for _, r := range resp.Results {
				slugs = append(slugs, r.Slug)
			}
			if strings.Join(slugs, ",") != strings.Join(tt.wantSlugs, ",") {
				t.Errorf("slugs = %v, want %v", slugs, tt.wantSlugs)
			}
			if resp.Count != len(tt.wantSlugs) {
				t.Errorf("count = %d", resp.Count)
			}
		})
	}

	if rec := get(t, app, "/api/search?q=go&variant=huge"); rec.Code != http.StatusBadRequest {
		t.Errorf("unknown variant status = %d, want 400", rec.Code)
	}
}

func TestAPISearchRateLimited(t *testing.T) {
	app := newTestApp(t, func(c *folio.SiteConfig) { c.SearchRateLimit = 2 })
	for i := 0; i < 2; i++ {
		if rec := get(t, app, "/api/search?q=go"); rec.Code != http.StatusOK {
			t.Fatalf("request %d status = %d", i, rec.Code)
		}
	}
	if rec := get(t, app, "/api/search?q=go"); rec.Code != http.StatusTooManyRequests {
		t.Errorf("status = %d, want 429", rec.Code)
	}
}

func TestSearchPage(t *testing.T) {
	app := newTestApp(t)
	doc := document(t, get(t, app, "/search/?q=ownership"))
	if n := doc.Find("#search-full-results li.result").Length(); n != 1 {
		t.Fatalf("results = %d, want 1", n)
	}
	if got := doc.Find(".result-excerpt mark").Text(); got != "Ownership" {
		t.Errorf("excerpt mark = %q", got)
	}
	if got := doc.Find(".result-count").Text(); got != "1 result found" {
		t.Errorf("count = %q", got)
	}
	if v := testutil.ToFloat64(app.Metrics.SearchQueriesTotal.WithLabelValues("full", "hit")); v != 1 {
		t.Errorf("search hits = %v, want 1", v)
	}
}

func TestWidgetLifecycle(t *testing.T) {
	app := newTestApp(t)
	page := url.Values{"page": {"p1"}}

	rec := postForm(t, app, "/widget/compact/type", url.Values{"page": {"p1"}, "q": {"go"}}, nil)
	if rec.Code != http.StatusOK {
		t.Fatalf("type status = %d: %s", rec.Code, rec.Body)
	}
	cookies := rec.Result().Cookies()
	doc := document(t, rec)
	if n := doc.Find("li.result").Length(); n != 1 {
		t.Errorf("compact results = %d, want 1", n)
	}
	if v := testutil.ToFloat64(app.Metrics.WidgetsMounted); v != 1 {
		t.Errorf("mounted = %v, want 1", v)
	}

	rec = postForm(t, app, "/widget/pointer", url.Values{"page": {"p1"}, "target": {"search-compact-input"}}, cookies)
	var ptr struct {
		Open map[string]bool `json:"open"`
	}
	if err := json.Unmarshal(rec.Body.Bytes(), &ptr); err != nil {
		t.Fatal(err)
	}
	if !ptr.Open["compact"] {
		t.Errorf("pointer inside closed the widget: %v", ptr.Open)
	}

	rec = postForm(t, app, "/widget/pointer", url.Values{"page": {"p1"}, "target": {"site-name"}}, cookies)
	if err := json.Unmarshal(rec.Body.Bytes(), &ptr); err != nil {
		t.Fatal(err)
	}
	if ptr.Open["compact"] {
		t.Error("pointer outside left the widget open")
	}

	rec = postForm(t, app, "/widget/compact/focus", page, cookies)
	if document(t, rec).Find("li.result").Length() != 1 {
		t.Error("focus with a query should reopen the dropdown")
	}

	rec = postForm(t, app, "/widget/compact/clear", page, cookies)
	if strings.TrimSpace(rec.Body.String()) != "" {
		t.Errorf("clear rendered %q", rec.Body.String())
	}

	rec = postForm(t, app, "/widget/compact/unmount", page, cookies)
	if rec.Code != http.StatusNoContent {
		t.Errorf("unmount status = %d", rec.Code)
	}
	if v := testutil.ToFloat64(app.Metrics.WidgetsMounted); v != 0 {
		t.Errorf("mounted = %v, want 0", v)
	}
	if app.Widgets.Pages() != 0 {
		t.Errorf("pages = %d, want 0", app.Widgets.Pages())
	}
}

func TestWidgetRejectsBadInput(t *testing.T) {
	app := newTestApp(t)
	if rec := postForm(t, app, "/widget/compact/type", url.Values{"page": {"../x"}}, nil); rec.Code != http.StatusBadRequest {
		t.Errorf("bad page status = %d, want 400", rec.Code)
	}
	if rec := postForm(t, app, "/widget/huge/type", url.Values{"page": {"p"}}, nil); rec.Code != http.StatusNotFound {
		t.Errorf("bad variant status = %d, want 404", rec.Code)
	}
	if rec := postForm(t, app, "/widget/full/explode", url.Values{"page": {"p"}}, nil); rec.Code != http.StatusNotFound {
		t.Errorf("bad event status = %d, want 404", rec.Code)
	}
	if app.Widgets.Pages() != 0 {
		t.Errorf("rejected events left %d pages mounted", app.Widgets.Pages())
	}
	if v := testutil.ToFloat64(app.Metrics.WidgetsMounted); v != 0 {
		t.Errorf("mounted = %v, want 0", v)
	}
}

func TestWidgetEventsRateLimited(t *testing.T) {
	app := newTestApp(t, func(c *folio.SiteConfig) { c.SearchRateLimit = 3 })
	form := url.Values{"page": {"p1"}, "q": {"go"}}
	rec := postForm(t, app, "/widget/full/type", form, nil)
	cookies := rec.Result().Cookies()
	postForm(t, app, "/widget/pointer", url.Values{"page": {"p1"}, "target": {"x"}}, cookies)
	if rec := get(t, app, "/api/search?q=go"); rec.Code != http.StatusOK {
		t.Fatalf("third search status = %d", rec.Code)
	}
	if rec := postForm(t, app, "/widget/full/type", form, cookies); rec.Code != http.StatusTooManyRequests {
		t.Errorf("widget status = %d, want 429", rec.Code)
	}
	if rec := postForm(t, app, "/widget/pointer", url.Values{"page": {"p1"}, "target": {"x"}}, cookies); rec.Code != http.StatusTooManyRequests {
		t.Errorf("pointer status = %d, want 429", rec.Code)
	}
}

func TestFeed(t *testing.T) {
	app := newTestApp(t)
	rec := get(t, app, "/feed.xml")
	if ct := rec.Header().Get("Content-Type"); !strings.HasPrefix(ct, "application/rss+xml") {
		t.Errorf("content type = %q", ct)
	}
	feed, err := gofeed.NewParser().ParseString(rec.Body.String())
	if err != nil {
		t.Fatalf("parse feed: %v", err)
	}
	if feed.Title != "Test Blog" {
		t.Errorf("title = %q", feed.Title)
	}
	if len(feed.Items) != 2 {
		t.Fatalf("items = %d, want 2", len(feed.Items))
	}
	item := feed.Items[0]
	if item.Link != "https://example.com/blog/learning-go/" {
		t.Errorf("link = %q", item.Link)
	}
	if item.Description != "Notes from a first month" {
		t.Errorf("description = %q", item.Description)
	}
	if strings.Join(item.Categories, ",") != "go,web" {
		t.Errorf("categories = %v", item.Categories)
	}
}

func TestSitemapAndRobots(t *testing.T) {
	app := newTestApp(t)
	body := get(t, app, "/sitemap.xml").Body.String()
	for _, want := range []string{
		"<loc>https://example.com</loc>",
		"<loc>https://example.com/search/</loc>",
		"<loc>https://example.com/blog/rust-notes/</loc>",
	} {
		if !strings.Contains(body, want) {
			t.Errorf("sitemap missing %s", want)
		}
	}
	if strings.Contains(body, "draft") {
		t.Error("sitemap lists a draft")
	}

	robots := get(t, app, "/robots.txt").Body.String()
	if !strings.Contains(robots, "Sitemap: https://example.com/sitemap.xml") {
		t.Errorf("robots = %q", robots)
	}
}

func TestWidgetScriptServed(t *testing.T) {
	app := newTestApp(t)
	rec := get(t, app, "/public/widget.js")
	if rec.Code != http.StatusOK || !strings.Contains(rec.Body.String(), "/widget/pointer") {
		t.Errorf("widget.js status = %d", rec.Code)
	}
}

func TestMetricsEndpoint(t *testing.T) {
	app := newTestApp(t)
	get(t, app, "/api/search?q=go")
	body := get(t, app, "/metrics").Body.String()
	if !strings.Contains(body, `folio_search_queries_total{outcome="hit",variant="full"} 1`) {
		t.Errorf("metrics missing search counter:\n%s", body)
	}

	off := newTestApp(t, func(c *folio.SiteConfig) { c.MetricsEnabled = false })
	if rec := get(t, off, "/metrics"); rec.Code != http.StatusNotFound {
		t.Errorf("metrics disabled status = %d, want 404", rec.Code)
	}
}

func TestAdminLoginAndSave(t *testing.T) {
	app := newTestApp(t)

	rec := get(t, app, "/admin/")
	cookies := rec.Result().Cookies()
	token := document(t, rec).Find(`input[name="_csrf"]`).AttrOr("value", "")
	if token == "" {
		t.Fatal("login form has no csrf token")
	}

	rec = postForm(t, app, "/admin/login/", url.Values{"_csrf": {token}, "password": {"wrong"}}, cookies)
	if document(t, rec).Find(".error").Length() != 1 {
		t.Error("wrong password should show an error")
	}

	rec = postForm(t, app, "/admin/login/", url.Values{"_csrf": {token}, "password": {"hunter2"}}, cookies)
	if rec.Code != http.StatusSeeOther {
		t.Fatalf("login status = %d", rec.Code)
	}
	cookies = append(cookies, rec.Result().Cookies()...)

	rec = postForm(t, app, "/admin/save/", url.Values{
		"_csrf":       {token},
		"title":       {"Zig Diary"},
		"tags":        {"Zig, systems"},
		"description": {"Comptime all the way"},
		"body":        {"Allocators everywhere."},
		"published":   {"1"},
	}, cookies)
	if rec.Code != http.StatusOK {
		t.Fatalf("save status = %d: %s", rec.Code, rec.Body)
	}

	var resp apiResponse
	if err := json.Unmarshal(get(t, app, "/api/search?q=allocators").Body.Bytes(), &resp); err != nil {
		t.Fatal(err)
	}
	if resp.Count != 1 || resp.Results[0].Slug != "/blog/zig-diary/" {
		t.Errorf("saved post not searchable: %+v", resp)
	}
	doc := document(t, get(t, app, "/?tag=zig"))
	if doc.Find("li.post-card").Length() != 1 {
		t.Error("saved post missing from its tag")
	}
}

func TestAdminRequiresCSRF(t *testing.T) {
	app := newTestApp(t)
	rec := postForm(t, app, "/admin/login/", url.Values{"password": {"hunter2"}}, nil)
	if rec.Code != http.StatusForbidden {
		t.Errorf("status = %d, want 403", rec.Code)
	}
}
