package search

import "sort"

// Aggregate counts how many posts carry each tag. Tags compare exactly.
// The result is ordered by count descending; equal counts keep the order in
// which the tags were first seen.
func Aggregate(posts []Post) []TagCount {
	index := make(map[string]int)
	var counts []TagCount
	for _, p := range posts {
		seen := make(map[string]struct{}, len(p.Tags))
		for _, t := range p.Tags {
			if _, dup := seen[t]; dup {
				continue
			}
			seen[t] = struct{}{}
			if i, ok := index[t]; ok {
				counts[i].Count++
				continue
			}
			index[t] = len(counts)
			counts = append(counts, TagCount{Name: t, Count: 1})
		}
	}
	sort.SliceStable(counts, func(i, j int) bool {
		return counts[i].Count > counts[j].Count
	})
	return counts
}

// FilterByTag returns the posts tagged exactly selected, in input order.
// An empty selection returns posts unchanged.
func FilterByTag(posts []Post, selected string) []Post {
	if selected == "" {
		return posts
	}
	var out []Post
	for _, p := range posts {
		if hasTag(p.Tags, selected) {
			out = append(out, p)
		}
	}
	return out
}

func hasTag(tags []string, tag string) bool {
	for _, t := range tags {
		if t == tag {
			return true
		}
	}
	return false
}

// TagFilter is the single-select tag state of a post list.
// The zero value has nothing selected.
type TagFilter struct {
	selected string
}

// NewTagFilter returns a filter with tag selected; "" selects nothing.
func NewTagFilter(tag string) TagFilter {
	return TagFilter{selected: tag}
}

// Toggle selects name, or clears the selection if name is already selected.
func (f *TagFilter) Toggle(name string) {
	if f.selected == name {
		f.selected = ""
		return
	}
	f.selected = name
}

// ClearAll drops the selection.
func (f *TagFilter) ClearAll() {
	f.selected = ""
}

// Selected reports the selected tag and whether one is set.
func (f TagFilter) Selected() (string, bool) {
	return f.selected, f.selected != ""
}

// Toggled returns the filter state that toggling name would produce,
// leaving f untouched.
func (f TagFilter) Toggled(name string) TagFilter {
	f.Toggle(name)
	return f
}

// ShowClearAll reports whether the "Clear All" affordance is visible.
func (f TagFilter) ShowClearAll() bool {
	return f.selected != ""
}

// Apply filters posts by the current selection.
func (f TagFilter) Apply(posts []Post) []Post {
	return FilterByTag(posts, f.selected)
}

// TagBadge is one entry of the filter bar.
type TagBadge struct {
	Name     string
	Count    int
	Selected bool
}

// Badges decorates counts with the current selection.
func (f TagFilter) Badges(counts []TagCount) []TagBadge {
	badges := make([]TagBadge, len(counts))
	for i, c := range counts {
		badges[i] = TagBadge{Name: c.Name, Count: c.Count, Selected: c.Name == f.selected}
	}
	return badges
}
