// Package markup writes escaped HTML fragments for templ components that are
// assembled in Go.
package markup

import (
	"context"
	"io"
	"strconv"

	"github.com/a-h/templ"
)

// Writer accumulates the first write error so callers can check once.
type Writer struct {
	w   io.Writer
	err error
}

func New(w io.Writer) *Writer {
	return &Writer{w: w}
}

// Raw writes trusted markup.
func (m *Writer) Raw(parts ...string) {
	for _, part := range parts {
		if m.err != nil {
			return
		}
		_, m.err = io.WriteString(m.w, part)
	}
}

// Text writes escaped text content.
func (m *Writer) Text(s string) {
	m.Raw(templ.EscapeString(s))
}

// Int writes a decimal number.
func (m *Writer) Int(n int) {
	m.Raw(strconv.Itoa(n))
}

// Attr writes ` name="value"` with the value escaped.
func (m *Writer) Attr(name, value string) {
	m.Raw(" ", name, `="`, templ.EscapeString(value), `"`)
}

// URLAttr writes a URL attribute, replacing unsafe schemes.
func (m *Writer) URLAttr(name, url string) {
	m.Attr(name, string(templ.URL(url)))
}

// BoolAttr writes name when on is true.
func (m *Writer) BoolAttr(name string, on bool) {
	if on {
		m.Raw(" ", name)
	}
}

// Component renders c in place.
func (m *Writer) Component(ctx context.Context, c templ.Component) {
	if m.err != nil || c == nil {
		return
	}
	m.err = c.Render(ctx, m.w)
}

func (m *Writer) Err() error {
	return m.err
}
