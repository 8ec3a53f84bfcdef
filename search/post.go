// Package search implements the in-memory post search, highlight and tag
// filtering used by folio's search widgets and post list.
//
// Everything here operates on posts that are already loaded. The query
// functions are pure; Widget and TagFilter hold the transient state of one
// mounted widget.
package search

// Post is the read-only view of a published post that search and tag
// filtering operate on. Slug is expected to be unique within a collection.
type Post struct {
	Slug        string
	Title       string
	Description string
	Tags        []string
	Body        string
}

// Options selects the matching policy of a search.
type Options struct {
	IncludeBody bool // scan Body and compute an excerpt
	MaxResults  int  // 0 or less means unbounded
}

// compactMaxResults bounds the always-visible header widget.
const compactMaxResults = 5

var (
	// Full checks title, description, body and tags.
	Full = Options{IncludeBody: true}
	// Compact skips the body and returns at most five results.
	Compact = Options{MaxResults: compactMaxResults}
)

// Match is a post that satisfied a query, annotated with which fields matched.
type Match struct {
	Post             Post
	TitleMatch       bool
	DescriptionMatch bool
	BodyMatch        bool
	TagsMatch        bool
	BodyExcerpt      string // set only when BodyMatch
}

// TagCount pairs a tag with the number of posts carrying it.
type TagCount struct {
	Name  string
	Count int
}
