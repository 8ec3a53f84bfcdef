package search

import "strings"

// Segment is a run of text that either matched the query or passes through.
type Segment struct {
	Text  string `json:"text"`
	Match bool   `json:"match,omitempty"`
}

// Highlight splits text on every case-insensitive occurrence of query.
// An empty query or text comes back as a single literal segment, and joining
// the segment texts always reproduces text.
func Highlight(text, query string) []Segment {
	if query == "" || text == "" {
		return []Segment{{Text: text}}
	}
	locs := newMatcher(query).re.FindAllStringIndex(text, -1)
	if len(locs) == 0 {
		return []Segment{{Text: text}}
	}
	segs := make([]Segment, 0, 2*len(locs)+1)
	prev := 0
	for _, loc := range locs {
		if loc[0] > prev {
			segs = append(segs, Segment{Text: text[prev:loc[0]]})
		}
		segs = append(segs, Segment{Text: text[loc[0]:loc[1]], Match: true})
		prev = loc[1]
	}
	if prev < len(text) {
		segs = append(segs, Segment{Text: text[prev:]})
	}
	return segs
}

// Join concatenates the text of segs.
func Join(segs []Segment) string {
	var b strings.Builder
	for _, s := range segs {
		b.WriteString(s.Text)
	}
	return b.String()
}
