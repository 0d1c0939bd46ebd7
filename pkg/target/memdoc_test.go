package target

import (
	"testing"

	"github.com/google/go-cmp/cmp"
)

func TestInsertBeforeAndAppend(t *testing.T) {
	doc := NewMemDoc()
	parent := doc.CreateElement("ul").(*MemElement)
	a := doc.CreateElement("li")
	b := doc.CreateElement("li")
	c := doc.CreateElement("li")

	parent.InsertBefore(a, nil)
	parent.InsertBefore(c, nil)
	parent.InsertBefore(b, c)

	got := parent.Children()
	if len(got) != 3 || got[0] != Node(a) || got[1] != Node(b) || got[2] != Node(c) {
		t.Fatalf("order wrong: %v", got)
	}
	if doc.Counters.Inserts != 3 || doc.Counters.Moves != 0 {
		t.Fatalf("counters %+v", doc.Counters)
	}
}

func TestInsertBeforeMovesReparentedNode(t *testing.T) {
	doc := NewMemDoc()
	p1 := doc.CreateElement("div").(*MemElement)
	p2 := doc.CreateElement("div").(*MemElement)
	n := doc.CreateText("x")

	p1.InsertBefore(n, nil)
	p2.InsertBefore(n, nil)

	if n.Parent() != Element(p2) {
		t.Fatal("node not reparented")
	}
	if len(p1.Children()) != 0 {
		t.Fatal("node still listed under old parent")
	}
	if doc.Counters.Moves != 1 || doc.Counters.Inserts != 1 {
		t.Fatalf("counters %+v", doc.Counters)
	}
}

func TestNextSibling(t *testing.T) {
	doc := NewMemDoc()
	parent := doc.CreateElement("div").(*MemElement)
	a := doc.CreateText("a")
	b := doc.CreateText("b")
	parent.InsertBefore(a, nil)
	parent.InsertBefore(b, nil)

	if a.NextSibling() != Node(b) {
		t.Fatal("a's sibling should be b")
	}
	if b.NextSibling() != nil {
		t.Fatal("last child has no sibling")
	}
	if a.Parent() == nil || doc.CreateText("detached").Parent() != nil {
		t.Fatal("parent links wrong")
	}
}

func TestRemoveChildOfStrangerPanics(t *testing.T) {
	doc := NewMemDoc()
	parent := doc.CreateElement("div").(*MemElement)
	stranger := doc.CreateText("x")
	defer func() {
		if recover() == nil {
			t.Fatal("expected panic")
		}
	}()
	parent.RemoveChild(stranger)
}

func TestAttrsOrderedAndCounted(t *testing.T) {
	doc := NewMemDoc()
	el := doc.CreateElement("input").(*MemElement)
	el.SetAttr("type", "text")
	el.SetAttr("name", "q")
	el.SetAttr("type", "search")
	el.RemoveAttr("missing")
	el.RemoveAttr("name")

	want := []Attr{{Key: "type", Value: "search"}}
	if diff := cmp.Diff(want, el.Attrs()); diff != "" {
		t.Errorf("attrs (-want +got):\n%s", diff)
	}
	if doc.Counters.AttrSets != 3 || doc.Counters.AttrRemoves != 1 {
		t.Errorf("counters %+v", doc.Counters)
	}
}

func TestListenersFireAndRemove(t *testing.T) {
	doc := NewMemDoc()
	el := doc.CreateElement("button").(*MemElement)
	var got []string
	h1 := el.AddListener("click", func(ev Event) { got = append(got, "click:"+ev.Type) })
	el.AddListener("focus", func(Event) { got = append(got, "focus") })

	el.Fire("click", nil)
	if len(got) != 1 || got[0] != "click:click" {
		t.Fatalf("fire: %v", got)
	}

	el.RemoveListener(h1)
	el.Fire("click", nil)
	if len(got) != 1 {
		t.Fatal("removed listener still fired")
	}
	if el.ListenerCount() != 1 {
		t.Fatalf("count %d", el.ListenerCount())
	}
}

func TestCloneIsDeepAndDetached(t *testing.T) {
	doc := NewMemDoc()
	el := doc.CreateElement("div").(*MemElement)
	el.SetAttr("class", "a")
	el.AddListener("click", func(Event) {})
	child := doc.CreateElement("span").(*MemElement)
	child.InsertBefore(doc.CreateText("hi"), nil)
	el.InsertBefore(child, nil)

	clone := el.Clone().(*MemElement)
	if clone == el || clone.Parent() != nil {
		t.Fatal("clone should be a fresh detached node")
	}
	if OuterHTML(clone) != `<div class="a"><span>hi</span></div>` {
		t.Fatalf("clone markup: %s", OuterHTML(clone))
	}
	if clone.ListenerCount() != 0 {
		t.Fatal("listeners must not be cloned")
	}

	// Mutating the clone leaves the original alone.
	clone.SetAttr("class", "b")
	if v, _ := el.Attr("class"); v != "a" {
		t.Fatal("clone mutation leaked into original")
	}
}

func TestSerializeEscapesAndVoids(t *testing.T) {
	doc := NewMemDoc()
	el := doc.CreateElement("div").(*MemElement)
	el.SetAttr("title", `a "b" & c`)
	el.InsertBefore(doc.CreateText("1 < 2 & 3 > 2"), nil)
	el.InsertBefore(doc.CreateElement("br"), nil)
	el.InsertBefore(doc.CreateComment("note"), nil)

	want := `<div title="a &quot;b&quot; &amp; c">1 &lt; 2 &amp; 3 &gt; 2<br><!--note--></div>`
	if got := OuterHTML(el); got != want {
		t.Fatalf("serialize:\n got %s\nwant %s", got, want)
	}
}

func TestParseFragmentRoundTrip(t *testing.T) {
	doc := NewMemDoc()
	src := `<div class="x">hello<!--marker--><br><span>nested</span></div>tail`
	nodes := doc.ParseFragment(src)
	if len(nodes) != 2 {
		t.Fatalf("parsed %d top-level nodes", len(nodes))
	}
	host := doc.CreateElement("div").(*MemElement)
	for _, n := range nodes {
		host.InsertBefore(n, nil)
	}
	if got := InnerHTML(host); got != src {
		t.Fatalf("round trip:\n got %s\nwant %s", got, src)
	}
}

func TestObserveStreamsOps(t *testing.T) {
	doc := NewMemDoc()
	var ops []Op
	doc.Observe(func(op Op) { ops = append(ops, op) })

	parent := doc.CreateElement("div").(*MemElement)
	txt := doc.CreateText("x")
	parent.InsertBefore(txt, nil)
	txt.SetData("y")
	parent.RemoveChild(txt)

	want := []OpKind{OpCreateElement, OpCreateText, OpInsert, OpSetText, OpRemove}
	if len(ops) != len(want) {
		t.Fatalf("ops %v", ops)
	}
	for i, k := range want {
		if ops[i].Kind != k {
			t.Fatalf("op %d = %v, want %v", i, ops[i].Kind, k)
		}
	}
	if ops[2].Parent != parent.ID() {
		t.Error("insert op should carry the parent id")
	}
	if doc.NodeByID(ops[1].Node) != Node(txt) {
		t.Error("NodeByID should resolve streamed ids")
	}
}

func TestMutationsTotal(t *testing.T) {
	c := Counters{Inserts: 1, Moves: 2, Removes: 3, AttrSets: 4, AttrRemoves: 5, TextSets: 6,
		CreatedElements: 100, ListenerAdds: 100}
	if c.Mutations() != 21 {
		t.Fatalf("Mutations() = %d", c.Mutations())
	}
}
