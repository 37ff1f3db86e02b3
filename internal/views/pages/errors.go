package pages

import (
	"context"
	"io"

	"github.com/a-h/templ"

	"batchbook/internal/views/markup"
)

// ErrorPanel shows a read failure in place of the page content.
func ErrorPanel(message string) templ.Component {
	return templ.ComponentFunc(func(ctx context.Context, w io.Writer) error {
		m := markup.New(w)
		m.Raw(`<section class="panel">`)
		writeError(m, message)
		m.Raw(`<a href="/">Back to recipes</a></section>`)
		return m.Err()
	})
}
