package views

import (
	"strconv"
	"strings"

	"github.com/a-h/templ"

	"github.com/eringen/folio"
)

// Home is the landing page: the tag filter bar and the post list.
func Home(page folio.HomePage) templ.Component {
	meta := folio.PageMeta{URL: folio.BuildURL(page.Site.URL)}
	if page.ActiveTag != "" {
		meta.Title = "#" + page.ActiveTag
	}
	return layout(page.Site, meta, folio.WebsiteJsonLD(page.Site), func(b *strings.Builder) {
		blogSection(b, page)
	})
}

// BlogSection is the filter bar and list alone, for partial reloads.
func BlogSection(page folio.HomePage) templ.Component {
	return render(func(b *strings.Builder) {
		blogSection(b, page)
	})
}

func blogSection(b *strings.Builder, page folio.HomePage) {
	b.WriteString(`<section id="blog">`)
	if len(page.Badges) > 0 {
		b.WriteString(`<nav class="tag-filter" aria-label="Filter by tag"><ul>`)
		for _, badge := range page.Badges {
			next, _ := page.Filter.Toggled(badge.Name).Selected()
			class := "tag"
			if badge.Selected {
				class += " tag-selected"
			}
			b.WriteString(`<li><a class="` + class + `" href="` + esc(folio.TagURL(next)) + `"`)
			if badge.Selected {
				b.WriteString(` aria-current="true"`)
			}
			b.WriteString(`>` + esc(badge.Name) + ` <span class="count">` + strconv.Itoa(badge.Count) + `</span></a></li>`)
		}
		b.WriteString(`</ul>`)
		if page.Filter.ShowClearAll() {
			b.WriteString(`<a class="clear-all" href="/">Clear All</a>`)
		}
		b.WriteString(`</nav>`)
	}
	if len(page.Posts) == 0 {
		b.WriteString(`<p class="empty">No posts found. Try adjusting your filter.</p></section>`)
		return
	}
	b.WriteString(`<ul class="posts">`)
	for _, p := range page.Posts {
		b.WriteString(`<li class="post-card"><a href="` + esc(p.Link) + `"><h2>` + esc(p.Title) + `</h2></a>`)
		if p.Date != "" {
			b.WriteString(`<time datetime="` + esc(p.Date) + `">` + esc(p.Date) + `</time>`)
		}
		if p.Description != "" {
			b.WriteString(`<p>` + esc(p.Description) + `</p>`)
		}
		tagList(b, p.Tags)
		b.WriteString(`</li>`)
	}
	b.WriteString(`</ul></section>`)
}
