// Package folio is a blog and portfolio engine built with Go, Echo, and templ.
// It serves a tag-filtered post list, full-page and header search widgets,
// post pages, RSS, and a sitemap from posts kept in SQLite.
//
// Users provide their own templ components via the ViewFuncs struct; the
// views package ships a default set.
package folio

import (
	"context"
	"errors"
	"fmt"
	"io/fs"
	"net/http"
	"os"
	"strings"
	"time"

	"github.com/a-h/templ"
	"github.com/labstack/echo/v4"
	"github.com/labstack/gommon/log"
	"golang.org/x/sync/errgroup"

	"github.com/eringen/folio/metrics"
	"github.com/eringen/folio/search"
)

// ViewFuncs holds user-provided templ components that the framework calls
// when rendering pages.
type ViewFuncs struct {
	Home           func(page HomePage) templ.Component
	BlogSection    func(page HomePage) templ.Component
	Post           func(post BlogPost, related []BlogPost, site SiteConfig) templ.Component
	Search         func(page SearchPage) templ.Component
	Dropdown       func(v search.Variant, view search.View) templ.Component
	AdminLogin     func(showError bool, csrfToken string) templ.Component
	AdminDashboard func(posts []BlogPost, message string, csrfToken string) templ.Component
	NotFound       func() templ.Component
	ServerError    func() templ.Component
}

// App is the central folio application. It wires together the store,
// cache, widget hub, handlers, middleware, and user-provided templates.
type App struct {
	Config  SiteConfig
	Echo    *echo.Echo
	Store   *Store
	Cache   *PostCache
	Widgets *WidgetHub
	Metrics *metrics.Metrics
	Views   ViewFuncs

	loginLimiter  *RateLimiter
	searchLimiter *RateLimiter
	customRoutes  []func(*App)
	staticDir     string
}

// New creates a new folio App with the given configuration and view functions.
func New(cfg SiteConfig, views ViewFuncs, opts ...Option) *App {
	cfg.setDefaults()

	a := &App{
		Config:    cfg,
		Echo:      echo.New(),
		Views:     views,
		staticDir: "public",
	}
	a.Echo.HideBanner = true

	for _, opt := range opts {
		opt(a)
	}

	return a
}

// Init opens the database and sets up caches, middleware, and routes. Run
// calls it; tests call it directly and drive a.Echo.
func (a *App) Init() error {
	if err := a.Config.Validate(); err != nil {
		return err
	}
	a.Echo.Logger.SetLevel(parseLevel(a.Config.LogLevel))

	store, err := NewStore(a.Config.DatabasePath)
	if err != nil {
		return fmt.Errorf("folio: init store: %w", err)
	}
	a.Store = store

	if a.Config.MetricsEnabled {
		a.Metrics = metrics.New()
	}

	a.Cache = NewPostCache(a.Store, a.Config.PostCacheTTL)
	a.Cache.OnReload = func(err error) {
		a.Metrics.ObserveCacheReload(err)
		if err != nil {
			a.Echo.Logger.Errorf("post cache reload: %v", err)
		}
	}

	a.Widgets = NewWidgetHub(a.Config.WidgetIdleTTL)
	a.Widgets.OnMount = a.Metrics.WidgetMounted

	a.loginLimiter = NewRateLimiter(5, time.Minute)
	a.searchLimiter = NewRateLimiter(a.Config.SearchRateLimit, time.Minute)

	a.setupMiddleware()
	a.setupRoutes()

	for _, fn := range a.customRoutes {
		fn(a)
	}
	return nil
}

// Run initializes the app and serves until ctx is cancelled, then shuts the
// server down gracefully.
func (a *App) Run(ctx context.Context) error {
	if err := a.Init(); err != nil {
		return err
	}
	defer a.Close()

	g, ctx := errgroup.WithContext(ctx)
	g.Go(func() error {
		if err := a.Echo.Start(a.Config.Addr); err != nil && !errors.Is(err, http.ErrServerClosed) {
			return err
		}
		return nil
	})
	g.Go(func() error {
		a.Widgets.Run(ctx, time.Minute)
		return nil
	})
	g.Go(func() error {
		<-ctx.Done()
		shutdownCtx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
		defer cancel()
		return a.Echo.Shutdown(shutdownCtx)
	})
	return g.Wait()
}

func (a *App) setupRoutes() {
	e := a.Echo

	// Framework assets (widget.js) are served under /public/ ahead of the
	// user's static dir.
	embeddedFS, _ := fs.Sub(EmbeddedAssets, "embedded")
	embeddedHandler := http.FileServer(http.FS(embeddedFS))
	e.GET("/public/widget.js", echo.WrapHandler(http.StripPrefix("/public/", embeddedHandler)))

	e.Static("/public", a.staticDir)
	e.GET("/favicon.svg", a.handleFavicon)
	e.GET("/robots.txt", a.handleRobots)

	// Public routes
	e.GET("/sitemap.xml", a.handleSitemap)
	e.GET("/feed.xml", a.handleFeed)
	e.GET("/blog", handleBlogRedirect)
	e.GET("/", a.handleHome)
	e.GET("/blog/:slug/", a.handlePost)
	e.GET("/search/", a.handleSearch)
	e.GET("/api/search", a.handleAPISearch, a.searchLimit)

	// Search widget events
	widgets := e.Group("/widget", a.searchLimit)
	widgets.POST("/pointer", a.handleWidgetPointer)
	widgets.POST("/:variant/:event", a.handleWidgetEvent)

	// Admin routes
	e.GET("/admin/", a.handleAdmin)
	e.POST("/admin/login/", a.handleAdminLogin)
	e.POST("/admin/logout/", handleAdminLogout)
	e.POST("/admin/save/", a.handleAdminSave)
	e.DELETE("/admin/post/:slug/", a.handleAdminDelete)

	if a.Metrics != nil {
		e.GET("/metrics", echo.WrapHandler(a.Metrics.Handler()))
	}
}

// Close cleans up resources. Call this when the app is shutting down.
func (a *App) Close() error {
	if a.Widgets != nil {
		a.Widgets.Close()
	}
	if a.loginLimiter != nil {
		a.loginLimiter.Stop()
	}
	if a.searchLimiter != nil {
		a.searchLimiter.Stop()
	}
	if a.Store != nil {
		return a.Store.Close()
	}
	return nil
}

// Render writes a templ component as an HTTP 200 HTML response.
func Render(c echo.Context, cmp templ.Component) error {
	return RenderStatus(c, http.StatusOK, cmp)
}

// RenderStatus writes a templ component with a specific HTTP status code.
func RenderStatus(c echo.Context, code int, cmp templ.Component) error {
	c.Response().Header().Set(echo.HeaderContentType, echo.MIMETextHTMLCharsetUTF8)
	c.Response().WriteHeader(code)
	return cmp.Render(c.Request().Context(), c.Response().Writer)
}

func parseLevel(s string) log.Lvl {
	switch strings.ToLower(s) {
	case "debug":
		return log.DEBUG
	case "warn", "warning":
		return log.WARN
	case "error":
		return log.ERROR
	case "off":
		return log.OFF
	default:
		return log.INFO
	}
}

// EnvOr returns the value of the environment variable key, or fallback if empty.
func EnvOr(key, fallback string) string {
	if v := os.Getenv(key); v != "" {
		return v
	}
	return fallback
}

// MustEnv returns the value of the environment variable key, or panics if empty.
func MustEnv(key string) string {
	v := os.Getenv(key)
	if v == "" {
		panic(fmt.Sprintf("folio: required environment variable %s is not set", key))
	}
	return v
}
