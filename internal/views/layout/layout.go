package layout

import (
	"context"
	"io"

	"github.com/a-h/templ"

	"batchbook/internal/views/markup"
)

// Header is the account summary shown above every page.
type Header struct {
	SignedIn bool
	Handle   string
	Flash    string
}

// Layout wraps content in the document shell.
func Layout(title string, header Header, content templ.Component) templ.Component {
	return templ.ComponentFunc(func(ctx context.Context, w io.Writer) error {
		m := markup.New(w)
		m.Raw(`<!DOCTYPE html><html lang="en"><head><meta charset="utf-8">`)
		m.Raw(`<meta name="viewport" content="width=device-width, initial-scale=1">`)
		m.Raw(`<title>`)
		m.Text(title)
		m.Raw(`</title><script src="https://unpkg.com/htmx.org@1.9.12" defer></script></head>`)
		m.Raw(`<body hx-boost="true">`)
		m.Component(ctx, Nav(header))
		m.Raw(`<main id="content">`)
		if header.Flash != "" {
			m.Raw(`<p class="flash" role="status">`)
			m.Text(header.Flash)
			m.Raw(`</p>`)
		}
		m.Component(ctx, content)
		m.Raw(`</main></body></html>`)
		return m.Err()
	})
}

// Nav renders the header bar. Signed-out visitors only see the brand.
func Nav(header Header) templ.Component {
	return templ.ComponentFunc(func(ctx context.Context, w io.Writer) error {
		m := markup.New(w)
		m.Raw(`<header class="site-header"><a class="brand" href="/">Batchbook</a>`)
		if header.SignedIn {
			m.Raw(`<nav><a href="/recipes/new">New recipe</a>`)
			m.Raw(`<a class="handle" href="/profile">`)
			m.Text(header.Handle)
			m.Raw(`</a><form method="post" action="/logout"><button type="submit">Sign out</button></form></nav>`)
		}
		m.Raw(`</header>`)
		return m.Err()
	})
}
