package search

import "fmt"

// Variant is a presentation of the search engine: the matching options plus
// how results are laid out.
type Variant struct {
	Name             string
	Options          Options
	DescriptionLimit int // characters of description shown; 0 shows all
	ShowCount        bool
}

var (
	// FullVariant is the page-wide search box.
	FullVariant = Variant{Name: "full", Options: Full, ShowCount: true}
	// CompactVariant is the header search bar.
	CompactVariant = Variant{Name: "compact", Options: Compact, DescriptionLimit: 100}
)

// VariantByName looks up "full" or "compact".
func VariantByName(name string) (Variant, bool) {
	switch name {
	case FullVariant.Name:
		return FullVariant, true
	case CompactVariant.Name:
		return CompactVariant, true
	}
	return Variant{}, false
}

// Entry is one renderable search result.
type Entry struct {
	Slug        string    `json:"slug"`
	Title       []Segment `json:"title"`
	Excerpt     []Segment `json:"excerpt,omitempty"`
	Description []Segment `json:"description,omitempty"`
}

// Entries turns matches into highlighted result entries for variant v.
func Entries(matches []Match, query string, v Variant) []Entry {
	entries := make([]Entry, 0, len(matches))
	for _, m := range matches {
		e := Entry{
			Slug:  m.Post.Slug,
			Title: Highlight(m.Post.Title, query),
		}
		if v.Options.IncludeBody {
			if m.BodyMatch && m.BodyExcerpt != "" {
				e.Excerpt = Highlight(m.BodyExcerpt, query)
			}
			if m.DescriptionMatch && m.Post.Description != "" {
				e.Description = Highlight(m.Post.Description, query)
			}
		} else if m.Post.Description != "" {
			e.Description = Highlight(truncate(m.Post.Description, v.DescriptionLimit), query)
		}
		entries = append(entries, e)
	}
	return entries
}

// CountLabel renders the result footer, e.g. "3 results found".
func CountLabel(n int) string {
	if n == 1 {
		return "1 result found"
	}
	return fmt.Sprintf("%d results found", n)
}

func truncate(s string, n int) string {
	if n <= 0 {
		return s
	}
	end := forwardRunes(s, 0, n)
	return s[:end]
}
