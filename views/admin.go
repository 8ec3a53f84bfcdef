package views

import (
	"strings"

	"github.com/a-h/templ"

	"github.com/eringen/folio"
)

func adminPage(title string, body func(b *strings.Builder)) templ.Component {
	return render(func(b *strings.Builder) {
		b.WriteString(`<!DOCTYPE html><html lang="en"><head><meta charset="utf-8">`)
		b.WriteString(`<meta name="robots" content="noindex"><title>` + esc(title) + `</title></head><body><main class="admin">`)
		body(b)
		b.WriteString(`</main></body></html>`)
	})
}

func csrfField(b *strings.Builder, token string) {
	b.WriteString(`<input type="hidden" name="_csrf" value="` + esc(token) + `">`)
}

// AdminLogin is the password form.
func AdminLogin(showError bool, csrfToken string) templ.Component {
	return adminPage("Admin login", func(b *strings.Builder) {
		b.WriteString(`<h1>Admin</h1>`)
		if showError {
			b.WriteString(`<p class="error">Invalid password.</p>`)
		}
		b.WriteString(`<form method="post" action="/admin/login/">`)
		csrfField(b, csrfToken)
		b.WriteString(`<input type="password" name="password" autocomplete="current-password" required>`)
		b.WriteString(`<button type="submit">Log in</button></form>`)
	})
}

// AdminDashboard lists every post, drafts included, under an editor form.
func AdminDashboard(posts []folio.BlogPost, message string, csrfToken string) templ.Component {
	return adminPage("Admin", func(b *strings.Builder) {
		b.WriteString(`<h1>Posts</h1>`)
		if message != "" {
			b.WriteString(`<p class="message">` + esc(message) + `</p>`)
		}
		b.WriteString(`<form method="post" action="/admin/save/" class="editor">`)
		csrfField(b, csrfToken)
		b.WriteString(`<input name="title" placeholder="Title" required>`)
		b.WriteString(`<input name="slug" placeholder="slug">`)
		b.WriteString(`<input name="date" placeholder="YYYY-MM-DD">`)
		b.WriteString(`<input name="tags" placeholder="go, web">`)
		b.WriteString(`<textarea name="description" placeholder="Description"></textarea>`)
		b.WriteString(`<textarea name="body" placeholder="Markdown"></textarea>`)
		b.WriteString(`<label><input type="checkbox" name="published" value="1"> Published</label>`)
		b.WriteString(`<button type="submit">Save</button></form>`)
		b.WriteString(`<table class="posts"><thead><tr><th>Title</th><th>Date</th><th>Tags</th><th>Status</th></tr></thead><tbody>`)
		for _, p := range posts {
			status := "draft"
			if p.Published {
				status = "published"
			}
			b.WriteString(`<tr data-slug="` + esc(p.Slug) + `"><td>` + esc(p.Title) + `</td><td>` + esc(p.Date) +
				`</td><td>` + esc(folio.JoinTags(p.Tags)) + `</td><td>` + status + `</td></tr>`)
		}
		b.WriteString(`</tbody></table>`)
		b.WriteString(`<form method="post" action="/admin/logout/">`)
		csrfField(b, csrfToken)
		b.WriteString(`<button type="submit">Log out</button></form>`)
	})
}
