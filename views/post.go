package views

import (
	"strings"

	"github.com/a-h/templ"

	"github.com/eringen/folio"
	"github.com/eringen/folio/markdown"
)

// Post renders a single post with up to a handful of related posts.
func Post(post folio.BlogPost, related []folio.BlogPost, site folio.SiteConfig) templ.Component {
	meta := folio.PageMeta{
		Title:       post.Title,
		Description: post.Description,
		URL:         folio.BuildURL(site.URL, post.Link),
		OGType:      "article",
	}
	return layout(site, meta, folio.BlogPostingJsonLD(post, site), func(b *strings.Builder) {
		b.WriteString(`<article><h1>` + esc(post.Title) + `</h1>`)
		if post.Date != "" {
			b.WriteString(`<time datetime="` + esc(post.Date) + `">` + esc(post.Date) + `</time>`)
		}
		tagList(b, post.Tags)
		b.WriteString(`<div class="post-body">` + markdown.RenderHTML(post.Body) + `</div></article>`)
		if len(related) > 0 {
			b.WriteString(`<aside class="related"><h2>Related posts</h2><ul>`)
			for _, r := range related {
				b.WriteString(`<li><a href="` + esc(r.Link) + `">` + esc(r.Title) + `</a></li>`)
			}
			b.WriteString(`</ul></aside>`)
		}
	})
}
