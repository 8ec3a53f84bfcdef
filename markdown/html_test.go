package markdown

import (
	"context"
	"strings"
	"testing"
)

func TestRenderHTML(t *testing.T) {
	tests := []struct {
		name string
		in   string
		want string
	}{
		{
			"heading link and code block",
			"## Setup\n\nSee [the docs](https://example.com).\n\n```go\nfunc main() {}\nx := 1\n```",
			`<h2>Setup</h2><p>See <a href="https://example.com">the docs</a>.</p>` +
				`<pre class="code-block" data-lang="go"><code class="language-go">func main() {}` + "\n" + `x := 1</code></pre>`,
		},
		{
			"lists",
			"- one\n- **two**\n\n1. first\n2. second",
			`<ul><li>one</li><li><strong>two</strong></li></ul><ol><li>first</li><li>second</li></ol>`,
		},
		{
			"quote and rule",
			"> quoted\n> more\n\n---",
			`<blockquote>quoted more</blockquote><hr/>`,
		},
		{
			"table",
			"| a | b |\n|---|---|\n| 1 | 2 |",
			`<table><thead><tr><th>a</th><th>b</th></tr></thead><tbody><tr><td>1</td><td>2</td></tr></tbody></table>`,
		},
		{
			"paragraph lines",
			"first\nsecond *line*",
			"<p>first\nsecond <em>line</em></p>",
		},
		{
			"raw html escaped",
			"<script>alert(1)</script>",
			`<p>&lt;script&gt;alert(1)&lt;/script&gt;</p>`,
		},
		{
			"code span keeps emphasis markers",
			"use `**kwargs` here",
			`<p>use <code>**kwargs</code> here</p>`,
		},
		{
			"unclosed code block",
			"```\na < b",
			`<pre class="code-block"><code>a &lt; b</code></pre>`,
		},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := RenderHTML(tt.in); got != tt.want {
				t.Errorf("RenderHTML =\n%s\nwant\n%s", got, tt.want)
			}
		})
	}
}

func TestFormatInlineURLs(t *testing.T) {
	tests := []struct {
		in   string
		want string
	}{
		{"[x](javascript:void)", "x"},
		{"[home](/blog/a/)", `<a href="/blog/a/">home</a>`},
		{"[ext](https://example.com/a_b_c)^", `<a href="https://example.com/a_b_c" target="_blank" rel="noopener noreferrer">ext</a>`},
		{"![cat](/img/cat.png){border:0|640|480}", `<img loading="lazy" decoding="async" alt="cat" src="/img/cat.png" width="640" height="480" style="border:0"/>`},
		{"![bad](data:text/html,x)", "bad"},
	}
	for _, tt := range tests {
		if got := formatInline(tt.in); got != tt.want {
			t.Errorf("formatInline(%q) =\n%s\nwant\n%s", tt.in, got, tt.want)
		}
	}
}

func TestHTMLComponent(t *testing.T) {
	var b strings.Builder
	if err := HTML("# Hi").Render(context.Background(), &b); err != nil {
		t.Fatal(err)
	}
	if b.String() != "<h1>Hi</h1>" {
		t.Errorf("HTML = %q", b.String())
	}
}
