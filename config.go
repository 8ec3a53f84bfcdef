package folio

import (
	"fmt"
	"os"
	"strconv"
	"time"

	"gopkg.in/yaml.v3"
)

// SiteConfig holds all configuration for a folio site.
type SiteConfig struct {
	Name        string `yaml:"name"`        // Site name (default "Blog")
	URL         string `yaml:"url"`         // Canonical URL (default "http://localhost:3000")
	Description string `yaml:"description"` // Site description for RSS and meta tags
	Author      string `yaml:"author"`      // Author name for JSON-LD

	Addr         string `yaml:"addr"`          // Listen address (default ":3000")
	DatabasePath string `yaml:"database_path"` // SQLite path (default "data/blog.db")

	AdminPassword string `yaml:"admin_password"` // Required: admin login password
	SessionSecret string `yaml:"session_secret"` // Required: session encryption secret
	CookieSecure  bool   `yaml:"cookie_secure"`  // Set true for HTTPS

	PostCacheTTL    time.Duration `yaml:"post_cache_ttl"`    // Post cache TTL (default 5m)
	SearchRateLimit int           `yaml:"search_rate_limit"` // API searches per IP per minute (default 120)
	WidgetIdleTTL   time.Duration `yaml:"widget_idle_ttl"`   // Unmount idle search widgets after (default 30m)

	MetricsEnabled bool   `yaml:"metrics_enabled"` // Serve /metrics
	LogLevel       string `yaml:"log_level"`       // debug, info, warn, error (default info)
}

func (c *SiteConfig) setDefaults() {
	if c.Name == "" {
		c.Name = "Blog"
	}
	if c.URL == "" {
		c.URL = "http://localhost:3000"
	}
	if c.Addr == "" {
		c.Addr = ":3000"
	}
	if c.DatabasePath == "" {
		c.DatabasePath = "data/blog.db"
	}
	if c.PostCacheTTL == 0 {
		c.PostCacheTTL = 5 * time.Minute
	}
	if c.SearchRateLimit == 0 {
		c.SearchRateLimit = 120
	}
	if c.WidgetIdleTTL == 0 {
		c.WidgetIdleTTL = 30 * time.Minute
	}
	if c.LogLevel == "" {
		c.LogLevel = "info"
	}
}

// Validate reports missing required settings.
func (c SiteConfig) Validate() error {
	if c.AdminPassword == "" {
		return fmt.Errorf("folio: AdminPassword is required")
	}
	if c.SessionSecret == "" {
		return fmt.Errorf("folio: SessionSecret is required")
	}
	return nil
}

// LoadConfig reads a YAML config file and applies FOLIO_* environment
// overrides on top. An empty path skips the file.
func LoadConfig(path string) (SiteConfig, error) {
	var cfg SiteConfig
	if path != "" {
		data, err := os.ReadFile(path)
		if err != nil {
			return cfg, fmt.Errorf("folio: read config: %w", err)
		}
		if err := yaml.Unmarshal(data, &cfg); err != nil {
			return cfg, fmt.Errorf("folio: parse config: %w", err)
		}
	}
	if err := applyEnv(&cfg); err != nil {
		return cfg, err
	}
	cfg.setDefaults()
	return cfg, nil
}

func applyEnv(c *SiteConfig) error {
	strs := map[string]*string{
		"FOLIO_NAME":           &c.Name,
		"FOLIO_URL":            &c.URL,
		"FOLIO_DESCRIPTION":    &c.Description,
		"FOLIO_AUTHOR":         &c.Author,
		"FOLIO_ADDR":           &c.Addr,
		"FOLIO_DATABASE_PATH":  &c.DatabasePath,
		"FOLIO_ADMIN_PASSWORD": &c.AdminPassword,
		"FOLIO_SESSION_SECRET": &c.SessionSecret,
		"FOLIO_LOG_LEVEL":      &c.LogLevel,
	}
	for key, dst := range strs {
		if v := os.Getenv(key); v != "" {
			*dst = v
		}
	}

	bools := map[string]*bool{
		"FOLIO_COOKIE_SECURE":   &c.CookieSecure,
		"FOLIO_METRICS_ENABLED": &c.MetricsEnabled,
	}
	for key, dst := range bools {
		if v := os.Getenv(key); v != "" {
			b, err := strconv.ParseBool(v)
			if err != nil {
				return fmt.Errorf("folio: %s: %w", key, err)
			}
			*dst = b
		}
	}

	durations := map[string]*time.Duration{
		"FOLIO_POST_CACHE_TTL":  &c.PostCacheTTL,
		"FOLIO_WIDGET_IDLE_TTL": &c.WidgetIdleTTL,
	}
	for key, dst := range durations {
		if v := os.Getenv(key); v != "" {
			d, err := time.ParseDuration(v)
			if err != nil {
				return fmt.Errorf("folio: %s: %w", key, err)
			}
			*dst = d
		}
	}

	if v := os.Getenv("FOLIO_SEARCH_RATE_LIMIT"); v != "" {
		n, err := strconv.Atoi(v)
		if err != nil {
			return fmt.Errorf("folio: FOLIO_SEARCH_RATE_LIMIT: %w", err)
		}
		c.SearchRateLimit = n
	}
	return nil
}

// Option configures additional App behavior.
type Option func(*App)

// WithCustomRoutes registers additional routes on the Echo instance.
// The callback receives the App before the server starts.
func WithCustomRoutes(fn func(*App)) Option {
	return func(a *App) {
		a.customRoutes = append(a.customRoutes, fn)
	}
}

// WithStaticDir sets the directory for user-owned static assets (default "public").
func WithStaticDir(dir string) Option {
	return func(a *App) {
		a.staticDir = dir
	}
}
