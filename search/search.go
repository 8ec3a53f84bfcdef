package search

import (
	"regexp"
	"strings"
	"unicode/utf8"
)

const (
	excerptRadius = 80
	ellipsis      = "..."
)

// matcher is a case-insensitive literal matcher for one query.
type matcher struct {
	re *regexp.Regexp
}

// newMatcher quotes every metacharacter so arbitrary user input is matched
// literally.
func newMatcher(query string) matcher {
	return matcher{re: regexp.MustCompile(`(?i)` + regexp.QuoteMeta(query))}
}

func (m matcher) contains(s string) bool {
	return s != "" && m.re.MatchString(s)
}

func (m matcher) containsAny(vals []string) bool {
	for _, v := range vals {
		if m.contains(v) {
			return true
		}
	}
	return false
}

// Search returns the posts matching query under opts, in input order.
// A blank query yields no results.
func Search(query string, posts []Post, opts Options) []Match {
	if strings.TrimSpace(query) == "" {
		return nil
	}
	m := newMatcher(query)
	var out []Match
	for _, p := range posts {
		res := Match{
			Post:             p,
			TitleMatch:       m.contains(p.Title),
			DescriptionMatch: m.contains(p.Description),
			TagsMatch:        m.containsAny(p.Tags),
		}
		if opts.IncludeBody {
			if ex, ok := m.excerpt(p.Body); ok {
				res.BodyMatch = true
				res.BodyExcerpt = ex
			}
		}
		if !res.TitleMatch && !res.DescriptionMatch && !res.BodyMatch && !res.TagsMatch {
			continue
		}
		out = append(out, res)
		if opts.MaxResults > 0 && len(out) >= opts.MaxResults {
			break
		}
	}
	return out
}

// Excerpt returns a window of body around the first case-insensitive
// occurrence of query. The window reaches 80 characters before and after the
// match and is marked with "..." on each side that was cut. ok is false when
// query does not occur in body.
func Excerpt(body, query string) (excerpt string, ok bool) {
	if query == "" {
		return "", false
	}
	return newMatcher(query).excerpt(body)
}

func (m matcher) excerpt(body string) (string, bool) {
	if body == "" {
		return "", false
	}
	loc := m.re.FindStringIndex(body)
	if loc == nil {
		return "", false
	}
	start := backRunes(body, loc[0], excerptRadius)
	end := forwardRunes(body, loc[1], excerptRadius)

	var b strings.Builder
	if start > 0 {
		b.WriteString(ellipsis)
	}
	b.WriteString(body[start:end])
	if end < len(body) {
		b.WriteString(ellipsis)
	}
	return b.String(), true
}

// backRunes moves i back by up to n runes within s.
func backRunes(s string, i, n int) int {
	for ; n > 0 && i > 0; n-- {
		_, size := utf8.DecodeLastRuneInString(s[:i])
		i -= size
	}
	return i
}

// forwardRunes moves i forward by up to n runes within s.
func forwardRunes(s string, i, n int) int {
	for ; n > 0 && i < len(s); n-- {
		_, size := utf8.DecodeRuneInString(s[i:])
		i += size
	}
	return i
}
