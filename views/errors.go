package views

import (
	"strings"

	"github.com/a-h/templ"
)

// NotFound is the 404 page.
func NotFound() templ.Component {
	return errorPage("Page not found", "The page you are looking for does not exist.")
}

// ServerError is the 500 page.
func ServerError() templ.Component {
	return errorPage("Something went wrong", "Please try again later.")
}

func errorPage(title, text string) templ.Component {
	return render(func(b *strings.Builder) {
		b.WriteString(`<!DOCTYPE html><html lang="en"><head><meta charset="utf-8"><title>` + esc(title) + `</title></head><body>`)
		b.WriteString(`<main class="error-page"><h1>` + esc(title) + `</h1><p>` + esc(text) + `</p>`)
		b.WriteString(`<p><a href="/">Home</a> &middot; <a href="/search/">Search</a></p></main></body></html>`)
	})
}
