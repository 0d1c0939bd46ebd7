package render

import (
	"bytes"
	"context"
	"strings"
	"testing"

	"github.com/loomui/loom/pkg/vtree"
)

func TestRenderPageStructure(t *testing.T) {
	var buf bytes.Buffer
	w := &FlushableWriter{Writer: &buf}
	s := NewStreamingRenderer(w, Config{Hydratable: true})

	page := Page{
		Title: "Dash < board",
		Head: []*vtree.Node{
			vtree.El("meta", vtree.SetAttr("name", "description"), vtree.SetAttr("content", "d")),
		},
		Body:    vtree.El("main", vtree.Text("hello")),
		Scripts: []string{"/assets/app.js"},
	}
	if err := s.RenderPage(context.Background(), page); err != nil {
		t.Fatalf("RenderPage: %v", err)
	}
	out := buf.String()

	for _, want := range []string{
		"<!DOCTYPE html>",
		`<html lang="en">`,
		`<meta charset="utf-8">`,
		"<title>Dash &lt; board</title>",
		`<meta name="description" content="d">`,
		"<main>hello</main>",
		`<script src="/assets/app.js"></script>`,
		"</html>",
	} {
		if !strings.Contains(out, want) {
			t.Errorf("output missing %q:\n%s", want, out)
		}
	}

	if idx := strings.Index(out, "</head>"); idx < 0 || idx > strings.Index(out, "<body>") {
		t.Error("head must close before body opens")
	}
	if w.FlushCount < 3 {
		t.Errorf("expected at least 3 flushes, got %d", w.FlushCount)
	}
}

func TestRenderPageDefaultsAndPlainWriter(t *testing.T) {
	var buf bytes.Buffer
	// A writer without Flush support must still work.
	s := NewStreamingRenderer(&buf, Config{})
	err := s.RenderPage(context.Background(), Page{Body: vtree.Text("x")})
	if err != nil {
		t.Fatalf("RenderPage: %v", err)
	}
	out := buf.String()
	if !strings.Contains(out, `<html lang="en">`) {
		t.Errorf("default lang missing:\n%s", out)
	}
	if strings.Contains(out, "<title>") {
		t.Error("empty title should be omitted")
	}
}

func TestRenderPageLang(t *testing.T) {
	var buf bytes.Buffer
	s := NewStreamingRenderer(&buf, Config{})
	if err := s.RenderPage(context.Background(), Page{Lang: "de", Body: vtree.Empty()}); err != nil {
		t.Fatal(err)
	}
	if !strings.Contains(buf.String(), `<html lang="de">`) {
		t.Errorf("lang not applied:\n%s", buf.String())
	}
}
