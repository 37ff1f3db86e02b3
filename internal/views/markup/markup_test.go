package markup

import (
	"bytes"
	"context"
	"errors"
	"io"
	"testing"

	"github.com/a-h/templ"
)

func TestWriterEscapes(t *testing.T) {
	t.Parallel()

	var buf bytes.Buffer
	m := New(&buf)
	m.Raw("<a")
	m.URLAttr("href", "javascript:alert(1)")
	m.Attr("title", `"quoted" & <b>`)
	m.BoolAttr("hidden", true)
	m.BoolAttr("disabled", false)
	m.Raw(">")
	m.Text("<script>")
	m.Int(42)
	m.Raw("</a>")

	if err := m.Err(); err != nil {
		t.Fatalf("Err() = %v", err)
	}
	want := `<a href="` + string(templ.FailedSanitizationURL) + `" title="&#34;quoted&#34; &amp; &lt;b&gt;" hidden>&lt;script&gt;42</a>`
	if got := buf.String(); got != want {
		t.Fatalf("output = %s, want %s", got, want)
	}
}

func TestWriterStopsAfterFirstError(t *testing.T) {
	t.Parallel()

	boom := errors.New("boom")
	calls := 0
	failing := templ.ComponentFunc(func(context.Context, io.Writer) error {
		calls++
		return boom
	})

	var buf bytes.Buffer
	m := New(&buf)
	m.Component(context.Background(), failing)
	m.Component(context.Background(), failing)
	m.Raw("ignored")

	if !errors.Is(m.Err(), boom) {
		t.Fatalf("Err() = %v, want %v", m.Err(), boom)
	}
	if calls != 1 || buf.Len() != 0 {
		t.Fatalf("calls = %d, output = %q, want 1 call and no output", calls, buf.String())
	}
}
