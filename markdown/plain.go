// Package markdown renders post Markdown as HTML for post pages and reduces
// it to the plain text that search excerpts are built from.
package markdown

import (
	"html"
	"regexp"
	"strings"

	"github.com/microcosm-cc/bluemonday"
)

var (
	reBold             = regexp.MustCompile(`\*\*(.+?)\*\*`)
	reBoldUnderscore   = regexp.MustCompile(`__(.+?)__`)
	reItalic           = regexp.MustCompile(`\*([^*]+)\*`)
	reItalicUnderscore = regexp.MustCompile(`\b_([^_]+)_\b`)
	reInlineCode       = regexp.MustCompile("`([^`]+)`")
	// ![alt](url) and ![alt](url){style|w|h}
	reImg         = regexp.MustCompile(`!\[(.*?)\]\((.*?)\)(\{[^}]*\})?`)
	reLink        = regexp.MustCompile(`\[(.*?)\]\((.*?)\)(\^)?`)
	reHeading     = regexp.MustCompile(`^#{1,6}\s+`)
	reListItem    = regexp.MustCompile(`^\s*([-*+]|\d+\.)\s+`)
	reQuote       = regexp.MustCompile(`^>\s?`)
	reTableRule   = regexp.MustCompile(`^\|?\s*:?-{3,}:?\s*(\|\s*:?-{3,}:?\s*)*\|?$`)
	reSpaces      = regexp.MustCompile(`[ \t]+`)
	strictHTML    = bluemonday.StrictPolicy()
)

// PlainText strips Markdown syntax and any embedded HTML from md. Paragraphs
// stay separated by a blank line; lines inside a paragraph are joined with a
// single space. Code block lines keep their text but are joined with spaces
// like any other paragraph, since the result is searched rather than shown.
func PlainText(md string) string {
	var paras []string
	var cur []string
	inCode := false

	flush := func() {
		if len(cur) > 0 {
			paras = append(paras, strings.Join(cur, " "))
			cur = nil
		}
	}

	for _, raw := range strings.Split(md, "\n") {
		line := strings.TrimRight(raw, "\r")
		if strings.HasPrefix(line, "```") {
			flush()
			inCode = !inCode
			continue
		}
		if inCode {
			cur = append(cur, strings.TrimSpace(line))
			continue
		}
		trimmed := strings.TrimSpace(line)
		if trimmed == "" {
			flush()
			continue
		}
		if strings.HasPrefix(trimmed, "---") || reTableRule.MatchString(trimmed) {
			continue
		}
		if reHeading.MatchString(trimmed) {
			flush()
			cur = append(cur, Inline(reHeading.ReplaceAllString(trimmed, "")))
			flush()
			continue
		}
		trimmed = reQuote.ReplaceAllString(trimmed, "")
		trimmed = reListItem.ReplaceAllString(trimmed, "")
		if strings.HasPrefix(trimmed, "|") {
			trimmed = strings.Join(tableCells(trimmed), " ")
		}
		if text := Inline(trimmed); text != "" {
			cur = append(cur, text)
		}
	}
	flush()
	return strings.Join(paras, "\n\n")
}

// Inline strips inline Markdown from a single line.
func Inline(s string) string {
	s = reImg.ReplaceAllString(s, "$1")
	s = reLink.ReplaceAllString(s, "$1")
	s = reInlineCode.ReplaceAllString(s, "$1")
	s = reBold.ReplaceAllString(s, "$1")
	s = reBoldUnderscore.ReplaceAllString(s, "$1")
	s = reItalic.ReplaceAllString(s, "$1")
	s = reItalicUnderscore.ReplaceAllString(s, "$1")
	if strings.ContainsAny(s, "<>") {
		s = html.UnescapeString(strictHTML.Sanitize(s))
	}
	return strings.TrimSpace(reSpaces.ReplaceAllString(s, " "))
}

func tableCells(line string) []string {
	line = strings.Trim(strings.TrimSpace(line), "|")
	parts := strings.Split(line, "|")
	cells := make([]string, 0, len(parts))
	for _, p := range parts {
		if p = strings.TrimSpace(p); p != "" {
			cells = append(cells, p)
		}
	}
	return cells
}
