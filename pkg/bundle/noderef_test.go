package bundle

import (
	"testing"

	"github.com/loomui/loom/pkg/target"
)

func TestNodeRefSetAndGet(t *testing.T) {
	doc := target.NewMemDoc()
	n := doc.CreateText("x")

	r := NewNodeRef()
	if r.Get() != nil {
		t.Fatal("empty ref should resolve to nil")
	}
	r.Set(n)
	if r.Get() != n {
		t.Fatal("ref should resolve to the stored node")
	}
}

func TestNodeRefLinkFollowsTarget(t *testing.T) {
	doc := target.NewMemDoc()
	a := doc.CreateText("a")
	b := doc.CreateText("b")

	inner := NewNodeRef()
	outer := NewNodeRef()
	outer.Link(inner)

	inner.Set(a)
	if got := outer.Get(); got != a {
		t.Fatalf("linked ref should follow target, got %v", got)
	}

	// Re-anchoring the target is visible through the link without
	// touching the outer cell.
	inner.Set(b)
	if got := outer.Get(); got != b {
		t.Fatalf("linked ref should observe re-anchor, got %v", got)
	}
}

func TestNodeRefSetBreaksLink(t *testing.T) {
	doc := target.NewMemDoc()
	a := doc.CreateText("a")
	b := doc.CreateText("b")

	inner := NewNodeRef()
	inner.Set(a)
	outer := NewNodeRef()
	outer.Link(inner)

	outer.Set(b)
	if got := outer.Get(); got != b {
		t.Fatalf("Set should override the link, got %v", got)
	}
	inner.Set(nil)
	if got := outer.Get(); got != b {
		t.Fatal("Set should have detached the cell from its old target")
	}
}

func TestNodeRefChain(t *testing.T) {
	doc := target.NewMemDoc()
	n := doc.CreateText("x")

	end := NewNodeRef()
	mid := NewNodeRef()
	top := NewNodeRef()
	mid.Link(end)
	top.Link(mid)

	end.Set(n)
	if top.Get() != n {
		t.Fatal("resolution should follow a multi-hop chain")
	}
}

func TestNodeRefSelfLinkIsNoop(t *testing.T) {
	doc := target.NewMemDoc()
	n := doc.CreateText("x")

	r := NewNodeRef()
	r.Set(n)
	r.Link(r)
	if r.Get() != n {
		t.Fatal("self-link must not clear the cell")
	}
}

func TestLISKeep(t *testing.T) {
	cases := []struct {
		name   string
		source []int
		want   int // entries kept stationary
	}{
		{"in order", []int{0, 1, 2, 3}, 4},
		{"adjacent swap", []int{0, 2, 1, 3}, 3},
		{"reversed", []int{3, 2, 1, 0}, 1},
		{"with inserts", []int{0, -1, 1, -1, 2}, 3},
		{"all new", []int{-1, -1}, 0},
		{"empty", nil, 0},
	}
	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			keep := lisKeep(tc.source)
			got := 0
			for i, k := range keep {
				if !k {
					continue
				}
				got++
				if tc.source[i] < 0 {
					t.Errorf("unmatched index %d marked as kept", i)
				}
			}
			if got != tc.want {
				t.Errorf("kept %d entries, want %d (source %v)", got, tc.want, tc.source)
			}
		})
	}
}
