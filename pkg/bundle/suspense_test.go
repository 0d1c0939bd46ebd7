package bundle

import (
	"testing"

	"github.com/loomui/loom/pkg/suspend"
	"github.com/loomui/loom/pkg/target"
	"github.com/loomui/loom/pkg/vtree"
)

// asyncComp suspends until ready, then renders its content.
type asyncComp struct {
	sp      *suspend.Suspension
	ready   bool
	content string
	link    *Link
	renders int
}

func (c *asyncComp) Bind(l *Link) { c.link = l }

func (c *asyncComp) Render(any) (*vtree.Node, error) {
	c.renders++
	if !c.ready {
		return nil, suspend.Throw(c.sp)
	}
	return vtree.El("span", vtree.Text(c.content)), nil
}

func suspenseView(async *asyncComp) *vtree.Node {
	return vtree.El("div",
		vtree.Suspense(
			vtree.El("p", vtree.Text("loading")),
			vtree.El("input", vtree.SetAttr("name", "q")),
			vtree.Comp(async, nil),
		),
	)
}

func TestSuspenseShowsFallbackWhileSuspended(t *testing.T) {
	_, host, root := newTestRoot(t)
	async := &asyncComp{sp: suspend.New(), content: "done"}
	comp := &viewComp{body: func(any) *vtree.Node { return suspenseView(async) }}
	root.Mount(comp, nil)

	if got := target.InnerHTML(host); got != "<div><p>loading</p></div>" {
		t.Fatalf("fallback not shown: %s", got)
	}

	async.ready = true
	async.sp.Resume()
	root.Pump()

	if got := target.InnerHTML(host); got != `<div><input name="q"><span>done</span></div>` {
		t.Fatalf("children not shown after resume: %s", got)
	}
}

func TestSuspenseRetainsChildIdentityAcrossSuspension(t *testing.T) {
	doc, host, root := newTestRoot(t)
	async := &asyncComp{ready: true, content: "v1"}
	comp := &viewComp{body: func(any) *vtree.Node { return suspenseView(async) }}
	root.Mount(comp, nil)

	div := host.FirstChild().(*target.MemElement)
	input := div.FirstChild().(*target.MemElement)
	if input.TagName() != "input" {
		t.Fatalf("unexpected first child %s", input.TagName())
	}
	input.SetAttr("value", "typed")

	// Suspend: the retained children leave the tree, the fallback
	// takes their place.
	async.ready = false
	async.sp = suspend.New()
	async.link.Schedule()
	root.Pump()

	if got := target.InnerHTML(host); got != "<div><p>loading</p></div>" {
		t.Fatalf("fallback not shown: %s", got)
	}

	created := doc.Counters.CreatedElements
	async.ready = true
	async.content = "v2"
	async.sp.Resume()
	root.Pump()

	if got := target.InnerHTML(host); got != `<div><input name="q" value="typed"><span>v2</span></div>` {
		t.Fatalf("children not restored: %s", got)
	}
	if div.FirstChild() != target.Node(input) {
		t.Fatal("input lost its physical identity across the suspension")
	}
	if doc.Counters.CreatedElements-created > 1 {
		// Only the async component's own output re-renders.
		t.Fatalf("swap rebuilt retained nodes: %d created", doc.Counters.CreatedElements-created)
	}
}

func TestSuspendResumeWithinOneDrainIsInvisible(t *testing.T) {
	doc, host, root := newTestRoot(t)
	async := &asyncComp{ready: true, content: "x"}
	comp := &viewComp{body: func(any) *vtree.Node { return suspenseView(async) }}
	root.Mount(comp, nil)

	before := doc.Counters
	async.ready = false
	async.sp = suspend.New()
	async.link.Schedule()

	// Resolve before anything drains: the boundary must settle without
	// a visible swap.
	async.ready = true
	async.sp.Resume()
	root.Pump()

	if got := target.InnerHTML(host); got != `<div><input name="q"><span>x</span></div>` {
		t.Fatalf("tree disturbed: %s", got)
	}
	if d := doc.Counters.Moves - before.Moves; d != 0 {
		t.Fatalf("boundary swapped %d moves for a settled suspension", d)
	}
}

func TestRethrowingSameSuspensionIsStable(t *testing.T) {
	_, host, root := newTestRoot(t)
	async := &asyncComp{sp: suspend.New(), content: "ok"}
	comp := &viewComp{body: func(any) *vtree.Node { return suspenseView(async) }}
	root.Mount(comp, nil)

	// Force extra render attempts while still pending; the component
	// throws the same handle each time.
	async.link.Schedule()
	root.Pump()
	async.link.Schedule()
	root.Pump()

	if got := target.InnerHTML(host); got != "<div><p>loading</p></div>" {
		t.Fatalf("fallback lost: %s", got)
	}

	async.ready = true
	async.sp.Resume()
	root.Pump()
	if got := target.InnerHTML(host); got != `<div><input name="q"><span>ok</span></div>` {
		t.Fatalf("single resume did not release the boundary: %s", got)
	}
}

func TestSuspendedOutsideBoundaryPanics(t *testing.T) {
	_, _, root := newTestRoot(t)
	async := &asyncComp{sp: suspend.New()}

	defer func() {
		if recover() == nil {
			t.Fatal("expected panic for suspension outside a boundary")
		}
	}()
	root.Mount(async, nil)
}

func TestUnmountWhileSuspended(t *testing.T) {
	_, host, root := newTestRoot(t)
	async := &asyncComp{sp: suspend.New()}
	comp := &viewComp{body: func(any) *vtree.Node { return suspenseView(async) }}
	sc := root.Mount(comp, nil)

	root.Unmount(sc)
	if got := target.InnerHTML(host); got != "" {
		t.Fatalf("nodes survived unmount: %s", got)
	}

	// A resume arriving after destruction is a no-op.
	async.sp.Resume()
	root.Pump()
	if got := target.InnerHTML(host); got != "" {
		t.Fatalf("late resume mutated the tree: %s", got)
	}
}

func TestNestedSuspenseBoundariesAreIndependent(t *testing.T) {
	_, host, root := newTestRoot(t)
	inner := &asyncComp{sp: suspend.New(), content: "inner"}
	comp := &viewComp{body: func(any) *vtree.Node {
		return vtree.El("div",
			vtree.Suspense(
				vtree.Text("outer loading"),
				vtree.El("section",
					vtree.Suspense(
						vtree.Text("inner loading"),
						vtree.Comp(inner, nil),
					),
				),
			),
		)
	}}
	root.Mount(comp, nil)

	// Only the inner boundary suspends; the outer section stays up.
	if got := target.InnerHTML(host); got != "<div><section>inner loading</section></div>" {
		t.Fatalf("inner suspension escaped its boundary: %s", got)
	}

	inner.ready = true
	inner.sp.Resume()
	root.Pump()
	if got := target.InnerHTML(host); got != "<div><section><span>inner</span></section></div>" {
		t.Fatalf("inner boundary did not recover: %s", got)
	}
}
