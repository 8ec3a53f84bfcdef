package folio

import (
	"github.com/eringen/folio/markdown"
	"github.com/eringen/folio/search"
)

// BlogPost is the core content type stored in SQLite and rendered by templates.
type BlogPost struct {
	Title       string
	Date        string
	Tags        []string
	Description string
	Link        string
	Slug        string
	Body        string // Markdown source
	Published   bool
}

// Record converts p into the read-only form searched by the widgets. The
// body is reduced to plain text so markup never matches a query.
func (p BlogPost) Record() search.Post {
	return search.Post{
		Slug:        p.Link,
		Title:       p.Title,
		Description: p.Description,
		Tags:        p.Tags,
		Body:        markdown.PlainText(p.Body),
	}
}

// PageMeta carries per-page OpenGraph and SEO metadata into the <head> template.
type PageMeta struct {
	Title       string
	Description string
	URL         string // canonical + og:url
	OGType      string // "website" or "article"
}

// HomePage is the data behind the post list.
type HomePage struct {
	Site      SiteConfig
	Posts     []BlogPost
	Filter    search.TagFilter
	Badges    []search.TagBadge
	ActiveTag string
}

// SearchPage is the data behind the full-page search.
type SearchPage struct {
	Site  SiteConfig
	Query string
	View  search.View
}
