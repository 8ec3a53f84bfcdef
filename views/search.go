package views

import (
	"net/url"
	"strings"

	"github.com/a-h/templ"

	"github.com/eringen/folio"
	"github.com/eringen/folio/search"
)

// Segments writes highlighted text, wrapping matches in <mark>.
func Segments(b *strings.Builder, segs []search.Segment) {
	for _, s := range segs {
		if s.Match {
			b.WriteString(`<mark>` + esc(s.Text) + `</mark>`)
			continue
		}
		b.WriteString(esc(s.Text))
	}
}

// Dropdown renders a widget's result list. A hidden view renders nothing;
// an empty result set renders a message rather than an empty box.
func Dropdown(v search.Variant, view search.View) templ.Component {
	return render(func(b *strings.Builder) {
		dropdown(b, v, view)
	})
}

func dropdown(b *strings.Builder, v search.Variant, view search.View) {
	if !view.Visible {
		return
	}
	b.WriteString(`<div class="dropdown dropdown-` + v.Name + `" role="listbox">`)
	if view.NoResults {
		b.WriteString(`<p class="no-results">No results found for "` + esc(view.State.Query) + `"</p></div>`)
		return
	}
	b.WriteString(`<ul>`)
	for _, e := range view.Entries {
		b.WriteString(`<li class="result"><a href="` + esc(e.Slug) + `">`)
		b.WriteString(`<span class="result-title">`)
		Segments(b, e.Title)
		b.WriteString(`</span>`)
		if len(e.Description) > 0 {
			b.WriteString(`<span class="result-description">`)
			Segments(b, e.Description)
			b.WriteString(`</span>`)
		}
		if len(e.Excerpt) > 0 {
			b.WriteString(`<span class="result-excerpt">`)
			Segments(b, e.Excerpt)
			b.WriteString(`</span>`)
		}
		b.WriteString(`</a></li>`)
	}
	b.WriteString(`</ul>`)
	if !v.Options.IncludeBody {
		b.WriteString(`<a class="see-all" href="` + esc(searchURL(view.State.Query)) + `">See all results</a>`)
	}
	if view.ShowCount {
		b.WriteString(`<p class="result-count">` + esc(search.CountLabel(len(view.Entries))) + `</p>`)
	}
	b.WriteString(`</div>`)
}

// Search is the full-page search.
func Search(page folio.SearchPage) templ.Component {
	meta := folio.PageMeta{
		Title: "Search",
		URL:   folio.BuildURL(page.Site.URL, "search"),
	}
	return layout(page.Site, meta, "", func(b *strings.Builder) {
		b.WriteString(`<h1>Search</h1>`)
		searchBox(b, "full", page.Query, "Search titles, descriptions, posts and tags...", true, func(b *strings.Builder) {
			dropdown(b, search.FullVariant, page.View)
		})
	})
}

// searchURL links to the full-page search for q.
func searchURL(q string) string {
	return "/search/?q=" + url.QueryEscape(q)
}
