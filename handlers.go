package folio

import (
	"errors"
	"fmt"
	"net/http"
	"strings"

	"github.com/labstack/echo/v4"

	"github.com/eringen/folio/search"
)

const relatedPostLimit = 3

func (a *App) handleHome(c echo.Context) error {
	tag := normalizeTag(c.QueryParam("tag"))
	posts, err := a.Cache.ListPosts(tag)
	if err != nil {
		return err
	}
	counts, err := a.Cache.TagCounts()
	if err != nil {
		return err
	}
	filter := search.NewTagFilter(tag)
	for _, tc := range counts {
		if tc.Name == tag {
			a.Metrics.ObserveTag(tag)
			break
		}
	}
	page := HomePage{
		Site:      a.Config,
		Posts:     posts,
		Filter:    filter,
		Badges:    filter.Badges(counts),
		ActiveTag: tag,
	}
	if c.Request().Header.Get("HX-Request") == "true" && c.QueryParam("partial") == "blog" {
		return Render(c, a.Views.BlogSection(page))
	}
	return Render(c, a.Views.Home(page))
}

func (a *App) handlePost(c echo.Context) error {
	post, err := a.Cache.GetPost(c.Param("slug"))
	if err != nil {
		if errors.Is(err, ErrNotFound) {
			return RenderStatus(c, http.StatusNotFound, a.Views.NotFound())
		}
		return err
	}
	posts, err := a.Cache.ListPosts("")
	if err != nil {
		return err
	}
	related := FilterRelatedPosts(post, posts, relatedPostLimit)
	return Render(c, a.Views.Post(post, related, a.Config))
}

// handleSearch renders the full-page search for ?q= without any widget
// state, so the page works with scripts disabled.
func (a *App) handleSearch(c echo.Context) error {
	q := c.QueryParam("q")
	records, err := a.Cache.Records()
	if err != nil {
		return err
	}
	w := search.NewWidget(search.FullVariant, records)
	w.Type(q)
	view := w.View()
	if view.Visible {
		a.Metrics.ObserveSearch(search.FullVariant.Name, len(view.Entries))
	}
	return Render(c, a.Views.Search(SearchPage{Site: a.Config, Query: q, View: view}))
}

type searchResponse struct {
	Query   string         `json:"query"`
	Variant string         `json:"variant"`
	Count   int            `json:"count"`
	Results []search.Entry `json:"results"`
}

// searchLimit rejects callers over the per-IP search budget shared by the
// search API and the widget endpoints.
func (a *App) searchLimit(next echo.HandlerFunc) echo.HandlerFunc {
	return func(c echo.Context) error {
		if !a.searchLimiter.Allow(c.RealIP()) {
			return echo.NewHTTPError(http.StatusTooManyRequests, "search rate limit exceeded")
		}
		return next(c)
	}
}

func (a *App) handleAPISearch(c echo.Context) error {
	name := c.QueryParam("variant")
	if name == "" {
		name = search.FullVariant.Name
	}
	v, ok := search.VariantByName(name)
	if !ok {
		return echo.NewHTTPError(http.StatusBadRequest, fmt.Sprintf("unknown variant %q", name))
	}
	q := c.QueryParam("q")
	records, err := a.Cache.Records()
	if err != nil {
		return err
	}
	resp := searchResponse{Query: q, Variant: v.Name, Results: []search.Entry{}}
	if strings.TrimSpace(q) != "" {
		resp.Results = search.Entries(search.Search(q, records, v.Options), q, v)
		a.Metrics.ObserveSearch(v.Name, len(resp.Results))
	}
	resp.Count = len(resp.Results)
	return c.JSON(http.StatusOK, resp)
}

var widgetEvents = map[string]func(w *search.Widget, c echo.Context){
	"type":   func(w *search.Widget, c echo.Context) { w.Type(c.FormValue("q")) },
	"focus":  func(w *search.Widget, _ echo.Context) { w.Focus() },
	"clear":  func(w *search.Widget, _ echo.Context) { w.Clear() },
	"select": func(w *search.Widget, _ echo.Context) { w.SelectResult() },
}

// handleWidgetEvent applies one input event to the visitor's widget and
// answers with the re-rendered dropdown.
func (a *App) handleWidgetEvent(c echo.Context) error {
	v, ok := search.VariantByName(c.Param("variant"))
	if !ok {
		return echo.NewHTTPError(http.StatusNotFound)
	}
	event := c.Param("event")
	apply, ok := widgetEvents[event]
	if !ok && event != "unmount" {
		return echo.NewHTTPError(http.StatusNotFound)
	}
	key, err := widgetKey(c)
	if err != nil {
		return err
	}
	if event == "unmount" {
		a.Widgets.Unmount(key, v.Name)
		return c.NoContent(http.StatusNoContent)
	}
	records, err := a.Cache.Records()
	if err != nil {
		return err
	}
	w, err := a.Widgets.Widget(key, v, records)
	if err != nil {
		return err
	}
	apply(w, c)
	view := w.View()
	if event == "type" && view.Visible {
		a.Metrics.ObserveSearch(v.Name, len(view.Entries))
	}
	return Render(c, a.Views.Dropdown(v, view))
}

type pointerResponse struct {
	Open map[string]bool `json:"open"`
}

func (a *App) handleWidgetPointer(c echo.Context) error {
	key, err := widgetKey(c)
	if err != nil {
		return err
	}
	open := a.Widgets.Pointer(key, search.PointerEvent{Target: c.FormValue("target")})
	return c.JSON(http.StatusOK, pointerResponse{Open: open})
}

func (a *App) handleSitemap(c echo.Context) error {
	posts, err := a.Cache.ListPosts("")
	if err != nil {
		return err
	}
	return a.renderSitemap(c, posts)
}

func (a *App) handleFeed(c echo.Context) error {
	posts, err := a.Cache.ListPosts("")
	if err != nil {
		return err
	}
	return a.renderRSS(c, posts)
}

func handleBlogRedirect(c echo.Context) error {
	return c.Redirect(http.StatusMovedPermanently, "/")
}

func (a *App) handleFavicon(c echo.Context) error {
	return c.File(a.staticDir + "/favicon.svg")
}

func (a *App) handleRobots(c echo.Context) error {
	body := "User-agent: *\nDisallow: /admin/\nDisallow: /api/\nDisallow: /widget/\n\nSitemap: " +
		strings.TrimRight(a.Config.URL, "/") + "/sitemap.xml\n"
	return c.String(http.StatusOK, body)
}

func (a *App) httpErrorHandler(err error, c echo.Context) {
	if c.Response().Committed {
		return
	}
	var he *echo.HTTPError
	ok := errors.As(err, &he)
	if ok && he.Code == http.StatusNotFound && !isMachineRoute(c.Request().URL.Path) {
		_ = RenderStatus(c, http.StatusNotFound, a.Views.NotFound())
		return
	}
	code := http.StatusInternalServerError
	if ok {
		code = he.Code
	}
	if code >= 500 {
		c.Logger().Errorf("server error: %v", err)
		if !isMachineRoute(c.Request().URL.Path) {
			_ = RenderStatus(c, code, a.Views.ServerError())
			return
		}
	}
	a.Echo.DefaultHTTPErrorHandler(err, c)
}

// isMachineRoute reports paths whose clients expect JSON or fragments
// rather than full error pages.
func isMachineRoute(path string) bool {
	return strings.HasPrefix(path, "/api/") || strings.HasPrefix(path, "/widget/")
}
