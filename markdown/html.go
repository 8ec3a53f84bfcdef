package markdown

import (
	"context"
	"html"
	"io"
	"net/url"
	"regexp"
	"strconv"
	"strings"

	"github.com/a-h/templ"
)

var (
	reHeadingLevel = regexp.MustCompile(`^(#{1,6})\s+(.*)$`)
	reOrdered      = regexp.MustCompile(`^\d+\.\s+`)
	reUnordered    = regexp.MustCompile(`^[-*+]\s+`)
	// ![alt](src) with an optional {style|width|height} suffix
	reImgAttrs = regexp.MustCompile(`!\[(.*?)\]\((.*?)\)(?:\{([^|}]*)(?:\|(\d+)\|(\d+))?\})?`)
)

// HTML returns a component rendering md as HTML. Raw HTML in md is escaped.
func HTML(md string) templ.Component {
	return templ.ComponentFunc(func(ctx context.Context, w io.Writer) error {
		_, err := io.WriteString(w, RenderHTML(md))
		return err
	})
}

// block is the container element a line is appended to.
type block int

const (
	blockNone block = iota
	blockPara
	blockList
	blockOrdered
	blockQuote
	blockTable
)

var closeTags = map[block]string{
	blockPara:    "</p>",
	blockList:    "</ul>",
	blockOrdered: "</ol>",
	blockQuote:   "</blockquote>",
	blockTable:   "</tbody></table>",
}

type renderer struct {
	b    strings.Builder
	open block
}

// enter closes the current block unless it is already k, then opens k.
// It reports whether k was newly opened.
func (r *renderer) enter(k block, openTag string) bool {
	if r.open == k {
		return false
	}
	r.close()
	r.b.WriteString(openTag)
	r.open = k
	return true
}

func (r *renderer) close() {
	r.b.WriteString(closeTags[r.open])
	r.open = blockNone
}

// RenderHTML converts md to HTML: headings, paragraphs, lists, quotes, rules,
// tables, fenced code blocks, links, images, and bold/italic/code spans.
func RenderHTML(md string) string {
	r := &renderer{}
	var code []string
	lang := ""
	inCode := false

	for _, raw := range strings.Split(md, "\n") {
		line := strings.TrimRight(raw, "\r")
		if strings.HasPrefix(line, "```") {
			if inCode {
				r.code(lang, code)
				code, inCode = nil, false
				continue
			}
			r.close()
			lang = strings.TrimSpace(line[3:])
			inCode = true
			continue
		}
		if inCode {
			code = append(code, line)
			continue
		}

		trimmed := strings.TrimSpace(line)
		switch {
		case trimmed == "":
			r.close()
		case strings.HasPrefix(trimmed, "---"):
			r.close()
			r.b.WriteString("<hr/>")
		case reHeadingLevel.MatchString(trimmed):
			r.close()
			m := reHeadingLevel.FindStringSubmatch(trimmed)
			level := strconv.Itoa(len(m[1]))
			r.b.WriteString("<h" + level + ">" + formatInline(m[2]) + "</h" + level + ">")
		case strings.HasPrefix(trimmed, "|"):
			r.tableRow(trimmed)
		case reUnordered.MatchString(trimmed):
			r.enter(blockList, "<ul>")
			r.b.WriteString("<li>" + formatInline(reUnordered.ReplaceAllString(trimmed, "")) + "</li>")
		case reOrdered.MatchString(trimmed):
			r.enter(blockOrdered, "<ol>")
			r.b.WriteString("<li>" + formatInline(reOrdered.ReplaceAllString(trimmed, "")) + "</li>")
		case strings.HasPrefix(trimmed, ">"):
			if !r.enter(blockQuote, "<blockquote>") {
				r.b.WriteString(" ")
			}
			r.b.WriteString(formatInline(strings.TrimSpace(trimmed[1:])))
		default:
			if !r.enter(blockPara, "<p>") {
				r.b.WriteString("\n")
			}
			r.b.WriteString(formatInline(trimmed))
		}
	}
	if inCode {
		r.code(lang, code)
	}
	r.close()
	return r.b.String()
}

func (r *renderer) code(lang string, lines []string) {
	if lang == "" {
		r.b.WriteString(`<pre class="code-block"><code>`)
	} else {
		l := html.EscapeString(lang)
		r.b.WriteString(`<pre class="code-block" data-lang="` + l + `"><code class="language-` + l + `">`)
	}
	r.b.WriteString(html.EscapeString(strings.Join(lines, "\n")))
	r.b.WriteString("</code></pre>")
}

func (r *renderer) tableRow(line string) {
	if reTableRule.MatchString(line) {
		return
	}
	cells := tableCells(line)
	if r.enter(blockTable, "<table><thead><tr>") {
		for _, c := range cells {
			r.b.WriteString("<th>" + formatInline(c) + "</th>")
		}
		r.b.WriteString("</tr></thead><tbody>")
		return
	}
	r.b.WriteString("<tr>")
	for _, c := range cells {
		r.b.WriteString("<td>" + formatInline(c) + "</td>")
	}
	r.b.WriteString("</tr>")
}

// formatInline escapes s and applies inline Markdown to it.
func formatInline(s string) string {
	out := html.EscapeString(s)

	// Code spans are swapped for placeholders so emphasis never reaches them.
	var spans []string
	out = reInlineCode.ReplaceAllStringFunc(out, func(m string) string {
		spans = append(spans, "<code>"+reInlineCode.FindStringSubmatch(m)[1]+"</code>")
		return "\x00" + strconv.Itoa(len(spans)-1) + "\x00"
	})

	out = reImgAttrs.ReplaceAllStringFunc(out, func(m string) string {
		g := reImgAttrs.FindStringSubmatch(m)
		src := safeURL(g[2])
		if src == "" {
			return g[1]
		}
		img := `<img loading="lazy" decoding="async" alt="` + g[1] + `" src="` + src + `"`
		if g[4] != "" && g[5] != "" {
			img += ` width="` + g[4] + `" height="` + g[5] + `"`
		}
		if g[3] != "" {
			img += ` style="` + g[3] + `"`
		}
		return img + "/>"
	})
	out = reLink.ReplaceAllStringFunc(out, func(m string) string {
		g := reLink.FindStringSubmatch(m)
		href := safeURL(g[2])
		if href == "" {
			return g[1]
		}
		attrs := ""
		if g[3] == "^" {
			attrs = ` target="_blank" rel="noopener noreferrer"`
		}
		return `<a href="` + href + `"` + attrs + `>` + g[1] + `</a>`
	})
	out = outsideTags(out, func(seg string) string {
		seg = reBold.ReplaceAllString(seg, "<strong>$1</strong>")
		seg = reBoldUnderscore.ReplaceAllString(seg, "<strong>$1</strong>")
		seg = reItalic.ReplaceAllString(seg, "<em>$1</em>")
		return reItalicUnderscore.ReplaceAllString(seg, "<em>$1</em>")
	})

	for i, span := range spans {
		out = strings.Replace(out, "\x00"+strconv.Itoa(i)+"\x00", span, 1)
	}
	return out
}

// outsideTags applies fn to the text between HTML tags, leaving attribute
// values such as hrefs untouched.
func outsideTags(s string, fn func(string) string) string {
	var b strings.Builder
	for s != "" {
		lt := strings.IndexByte(s, '<')
		if lt < 0 {
			b.WriteString(fn(s))
			break
		}
		b.WriteString(fn(s[:lt]))
		gt := strings.IndexByte(s[lt:], '>')
		if gt < 0 {
			b.WriteString(s[lt:])
			break
		}
		b.WriteString(s[lt : lt+gt+1])
		s = s[lt+gt+1:]
	}
	return b.String()
}

// safeURL returns raw escaped for an attribute, or "" unless it is relative
// or uses http, https, mailto or tel.
func safeURL(raw string) string {
	val := strings.TrimSpace(html.UnescapeString(raw))
	if val == "" {
		return ""
	}
	if strings.HasPrefix(val, "/") || strings.HasPrefix(val, "#") {
		return html.EscapeString(val)
	}
	u, err := url.Parse(val)
	if err != nil {
		return ""
	}
	switch strings.ToLower(u.Scheme) {
	case "http", "https", "mailto", "tel":
		return html.EscapeString(val)
	}
	return ""
}
