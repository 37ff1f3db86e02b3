package layout

import (
	"bytes"
	"context"
	"io"
	"strings"
	"testing"

	"github.com/a-h/templ"
)

func TestLayoutRendersProvidedContent(t *testing.T) {
	content := templ.ComponentFunc(func(ctx context.Context, w io.Writer) error {
		_, err := w.Write([]byte("<section>recipes</section>"))
		return err
	})

	var buf bytes.Buffer
	header := Header{SignedIn: true, Handle: "@baker", Flash: "Saved <ok>"}
	if err := Layout("Recipes", header, content).Render(context.Background(), &buf); err != nil {
		t.Fatalf("render layout: %v", err)
	}
	out := buf.String()
	for _, want := range []string{
		"<title>Recipes</title>",
		"<section>recipes</section>",
		`href="/profile">@baker</a>`,
		"Saved &lt;ok&gt;",
		`action="/logout"`,
	} {
		if !strings.Contains(out, want) {
			t.Fatalf("expected %q in output: %s", want, out)
		}
	}
}

func TestNavHidesAccountLinksWhenSignedOut(t *testing.T) {
	var buf bytes.Buffer
	if err := Nav(Header{}).Render(context.Background(), &buf); err != nil {
		t.Fatalf("render nav: %v", err)
	}
	if strings.Contains(buf.String(), "/logout") {
		t.Fatalf("expected no sign-out form for anonymous visitors: %s", buf.String())
	}
}
