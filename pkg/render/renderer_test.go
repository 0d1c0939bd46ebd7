package render

import (
	"context"
	"errors"
	"strings"
	"testing"
	"time"

	loomerrors "github.com/loomui/loom/internal/errors"
	"github.com/loomui/loom/pkg/suspend"
	"github.com/loomui/loom/pkg/vtree"
)

func renderString(t *testing.T, cfg Config, node *vtree.Node) string {
	t.Helper()
	out, err := New(cfg).RenderToString(context.Background(), node)
	if err != nil {
		t.Fatalf("render: %v", err)
	}
	return out
}

func TestRenderElementTree(t *testing.T) {
	node := vtree.El("main",
		vtree.SetAttr("id", "app"),
		vtree.El("h1", vtree.Text("Title")),
		vtree.El("br"),
		vtree.El("p", vtree.Text("body")),
	)
	want := `<main id="app"><h1>Title</h1><br><p>body</p></main>`
	if got := renderString(t, Config{}, node); got != want {
		t.Fatalf("got %s", got)
	}
}

func TestRenderEscaping(t *testing.T) {
	node := vtree.El("a",
		vtree.SetAttr("title", `say "hi" & bye`),
		vtree.Text("1 < 2 & <script>"),
	)
	got := renderString(t, Config{}, node)
	if strings.Contains(got, "<script>") {
		t.Fatalf("text not escaped: %s", got)
	}
	want := `<a title="say &quot;hi&quot; &amp; bye">1 &lt; 2 &amp; &lt;script&gt;</a>`
	if got != want {
		t.Fatalf("got %s", got)
	}

	// Whitespace is encoded in attribute values but left alone in text.
	node = vtree.El("pre",
		vtree.SetAttr("data-note", "line one\nline two\tend"),
		vtree.Text("a\nb"),
	)
	want = `<pre data-note="line one&#10;line two&#9;end">a` + "\n" + `b</pre>`
	if got := renderString(t, Config{}, node); got != want {
		t.Fatalf("got %s", got)
	}
}

func TestRenderRawIsNotEscaped(t *testing.T) {
	got := renderString(t, Config{}, vtree.El("div", vtree.Raw("<b>bold</b>")))
	if got != "<div><b>bold</b></div>" {
		t.Fatalf("got %s", got)
	}
}

func TestRenderEmptyAndListAndPortal(t *testing.T) {
	node := vtree.El("div",
		vtree.Empty(),
		vtree.List(vtree.Text("a"), vtree.Text("b")),
		// Portals never reach the stream.
		&vtree.Node{Kind: vtree.KindPortal, Children: []*vtree.Node{vtree.Text("x")}},
	)
	if got := renderString(t, Config{}, node); got != "<div>ab</div>" {
		t.Fatalf("got %s", got)
	}
}

func TestHydratableMarkersAndIDs(t *testing.T) {
	first := vtree.Func(func(any) (*vtree.Node, error) { return vtree.El("i"), nil })
	second := vtree.Func(func(any) (*vtree.Node, error) { return vtree.El("u"), nil })
	node := vtree.El("div",
		vtree.Comp(first, nil),
		vtree.Comp(second, nil),
	)
	got := renderString(t, Config{Hydratable: true}, node)
	want := "<div><!--<[c 1]>--><i></i><!--</[c]>--><!--<[c 2]>--><u></u><!--</[c]>--></div>"
	if got != want {
		t.Fatalf("markers wrong:\n got %s\nwant %s", got, want)
	}
}

func TestHydratableRawMarkers(t *testing.T) {
	got := renderString(t, Config{Hydratable: true}, vtree.Raw("<hr>"))
	if got != "<!--<[r 1]>--><hr><!--</[r]>-->" {
		t.Fatalf("got %s", got)
	}
}

func TestNonHydratableOmitsMarkers(t *testing.T) {
	comp := vtree.Func(func(any) (*vtree.Node, error) { return vtree.Text("x"), nil })
	got := renderString(t, Config{}, vtree.Comp(comp, nil))
	if got != "x" {
		t.Fatalf("got %s", got)
	}
}

// slowComp suspends on first render and succeeds once resumed.
type slowComp struct {
	sp      *suspend.Suspension
	done    bool
	content string
}

func (c *slowComp) Render(any) (*vtree.Node, error) {
	if !c.done {
		return nil, suspend.Throw(c.sp)
	}
	return vtree.Text(c.content), nil
}

func TestRenderWaitsForSuspension(t *testing.T) {
	c := &slowComp{sp: suspend.New(), content: "loaded"}
	go func() {
		time.Sleep(10 * time.Millisecond)
		c.done = true
		c.sp.Resume()
	}()
	got := renderString(t, Config{}, vtree.Comp(c, nil))
	if got != "loaded" {
		t.Fatalf("got %s", got)
	}
}

func TestRenderCancelledWhileSuspended(t *testing.T) {
	c := &slowComp{sp: suspend.New()}
	ctx, cancel := context.WithTimeout(context.Background(), 10*time.Millisecond)
	defer cancel()

	_, err := New(Config{}).RenderToString(ctx, vtree.Comp(c, nil))
	var lerr *loomerrors.Error
	if !errors.As(err, &lerr) || lerr.Code != "E201" {
		t.Fatalf("expected E201, got %v", err)
	}
}

// savedComp contributes state to the hydration block.
type savedComp struct{ n int }

func (c *savedComp) Render(any) (*vtree.Node, error) {
	return vtree.El("output", vtree.Textf("%d", c.n)), nil
}

func (c *savedComp) SaveState() (any, bool) {
	return map[string]int{"n": c.n}, true
}

func TestStateBlockEmission(t *testing.T) {
	got := renderString(t, Config{Hydratable: true}, vtree.Comp(&savedComp{n: 7}, nil))
	if !strings.Contains(got, `<script type="`+StateBlockType+`">`) {
		t.Fatalf("state block missing: %s", got)
	}
	if !strings.Contains(got, `"1":{"n":7}`) {
		t.Fatalf("state payload wrong: %s", got)
	}

	// Without hydration support, no block appears.
	plain := renderString(t, Config{}, vtree.Comp(&savedComp{n: 7}, nil))
	if strings.Contains(plain, "script") {
		t.Fatalf("unexpected state block: %s", plain)
	}
}

func TestRendererReset(t *testing.T) {
	r := New(Config{Hydratable: true})
	ctx := context.Background()
	if _, err := r.RenderToString(ctx, vtree.Comp(&savedComp{n: 1}, nil)); err != nil {
		t.Fatal(err)
	}
	r.Reset()
	got, err := r.RenderToString(ctx, vtree.Comp(&savedComp{n: 2}, nil))
	if err != nil {
		t.Fatal(err)
	}
	if !strings.Contains(got, "<!--<[c 1]>-->") {
		t.Fatalf("id counter not reset: %s", got)
	}
	if strings.Contains(got, `"n":1`) {
		t.Fatalf("stale state survived reset: %s", got)
	}
}

func TestMarkerParsing(t *testing.T) {
	body := OpenMarker(MarkerComponent, 42)
	id, ok := ParseOpenMarker(body, MarkerComponent)
	if !ok || id != 42 {
		t.Fatalf("ParseOpenMarker(%q) = %d, %v", body, id, ok)
	}
	if _, ok := ParseOpenMarker(body, MarkerSuspense); ok {
		t.Error("kind must not cross-match")
	}
	if !IsCloseMarker(CloseMarker(MarkerRaw), MarkerRaw) {
		t.Error("close marker mismatch")
	}
	if IsOpenMarker("<[c nope]>", MarkerComponent) {
		t.Error("malformed id accepted")
	}
}
