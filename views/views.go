// Package views is folio's default set of page components. Each one is a
// templ.ComponentFunc writing escaped HTML; sites that want their own markup
// supply a different folio.ViewFuncs.
package views

import (
	"context"
	"io"
	"strings"

	"github.com/a-h/templ"

	"github.com/eringen/folio"
)

// Default returns the built-in views.
func Default() folio.ViewFuncs {
	return folio.ViewFuncs{
		Home:           Home,
		BlogSection:    BlogSection,
		Post:           Post,
		Search:         Search,
		Dropdown:       Dropdown,
		AdminLogin:     AdminLogin,
		AdminDashboard: AdminDashboard,
		NotFound:       NotFound,
		ServerError:    ServerError,
	}
}

var esc = templ.EscapeString[string]

// render wraps a builder func as a component.
func render(fn func(b *strings.Builder)) templ.Component {
	return templ.ComponentFunc(func(ctx context.Context, w io.Writer) error {
		var b strings.Builder
		fn(&b)
		_, err := io.WriteString(w, b.String())
		return err
	})
}

func layout(site folio.SiteConfig, meta folio.PageMeta, jsonLD string, body func(b *strings.Builder)) templ.Component {
	return render(func(b *strings.Builder) {
		title := site.Name
		if meta.Title != "" {
			title = meta.Title + " | " + site.Name
		}
		desc := meta.Description
		if desc == "" {
			desc = site.Description
		}
		ogType := meta.OGType
		if ogType == "" {
			ogType = "website"
		}
		b.WriteString(`<!DOCTYPE html><html lang="en"><head><meta charset="utf-8">`)
		b.WriteString(`<meta name="viewport" content="width=device-width, initial-scale=1">`)
		b.WriteString(`<title>` + esc(title) + `</title>`)
		b.WriteString(`<meta name="description" content="` + esc(desc) + `">`)
		b.WriteString(`<meta property="og:title" content="` + esc(title) + `">`)
		b.WriteString(`<meta property="og:type" content="` + esc(ogType) + `">`)
		if meta.URL != "" {
			b.WriteString(`<link rel="canonical" href="` + esc(meta.URL) + `">`)
			b.WriteString(`<meta property="og:url" content="` + esc(meta.URL) + `">`)
		}
		b.WriteString(`<link rel="alternate" type="application/rss+xml" title="` + esc(site.Name) + `" href="/feed.xml">`)
		b.WriteString(`<link rel="icon" href="/favicon.svg" type="image/svg+xml">`)
		if jsonLD != "" {
			// JSON-LD is marshalled by encoding/json, which escapes <, > and &.
			b.WriteString(`<script type="application/ld+json">` + jsonLD + `</script>`)
		}
		b.WriteString(`</head><body><header class="site-header">`)
		b.WriteString(`<a class="site-name" href="/">` + esc(site.Name) + `</a>`)
		searchBox(b, "compact", "", "Search posts...", false, nil)
		b.WriteString(`</header><main>`)
		body(b)
		b.WriteString(`</main><footer><a href="/feed.xml">RSS</a></footer>`)
		b.WriteString(`<script src="/public/widget.js" defer></script></body></html>`)
	})
}

// searchBox writes the markup widget.js binds to: a root element whose id
// bounds the widget, an input, a clear button and the dropdown container.
// results, if set, prefills the container.
func searchBox(b *strings.Builder, variant, query, placeholder string, form bool, results func(b *strings.Builder)) {
	id := "search-" + variant
	b.WriteString(`<div id="` + id + `" class="search search-` + variant + `" data-search-widget="` + variant + `">`)
	if form {
		b.WriteString(`<form action="/search/" method="get" role="search">`)
	}
	b.WriteString(`<input id="` + id + `-input" type="search" name="q" autocomplete="off" placeholder="` +
		esc(placeholder) + `" value="` + esc(query) + `" aria-label="Search">`)
	b.WriteString(`<button id="` + id + `-clear" type="button" aria-label="Clear search"`)
	if query == "" {
		b.WriteString(` hidden`)
	}
	b.WriteString(`>&times;</button>`)
	if form {
		b.WriteString(`</form>`)
	}
	b.WriteString(`<div id="` + id + `-results" class="search-results" aria-live="polite">`)
	if results != nil {
		results(b)
	}
	b.WriteString(`</div></div>`)
}

func tagList(b *strings.Builder, tags []string) {
	if len(tags) == 0 {
		return
	}
	b.WriteString(`<ul class="tags">`)
	for _, t := range tags {
		b.WriteString(`<li><a href="` + esc(folio.TagURL(t)) + `">` + esc(t) + `</a></li>`)
	}
	b.WriteString(`</ul>`)
}
