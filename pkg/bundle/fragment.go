package bundle

import (
	"github.com/loomui/loom/internal/errors"
	"github.com/loomui/loom/pkg/render"
	"github.com/loomui/loom/pkg/target"
)

// Fragment is a cursor over a run of server-rendered sibling nodes not
// yet claimed by hydration. Hydration consumes nodes from the front;
// a component whose first render has not committed holds its remaining
// markup as a Fragment in place of a Bundle.
type Fragment struct {
	nodes []target.Node
}

// collectChildren snapshots an element's children as a fragment.
func collectChildren(parent target.Element) *Fragment {
	f := &Fragment{}
	for n := parent.FirstChild(); n != nil; n = n.NextSibling() {
		f.nodes = append(f.nodes, n)
	}
	return f
}

// collectBetween consumes a bracketed boundary from the front of the
// fragment: the opening marker comment of the given kind, everything up
// to its matching close (markers nest), and the close itself. The two
// marker comments are removed from the physical tree; the nodes between
// them are returned as a new fragment together with the boundary id.
func collectBetween(f *Fragment, parent target.Element, kind string) (*Fragment, uint64) {
	f.TrimStartTextNodes(parent)
	front := f.popFront()
	if front == nil {
		panic(errors.New("E003").WithDetailf("expected open marker %q, fragment empty", kind))
	}
	c, ok := front.(target.Comment)
	if !ok {
		panic(errors.New("E003").WithDetailf("expected open marker %q", kind))
	}
	id, ok := render.ParseOpenMarker(c.Data(), kind)
	if !ok {
		panic(errors.New("E003").WithDetailf("expected open marker %q, found comment %q", kind, c.Data()))
	}
	parent.RemoveChild(front)

	inner := &Fragment{}
	depth := 0
	for {
		n := f.popFront()
		if n == nil {
			panic(errors.New("E003").WithDetailf("missing close marker %q for boundary %d", kind, id))
		}
		if cm, ok := n.(target.Comment); ok {
			switch {
			case render.IsOpenMarker(cm.Data(), kind):
				depth++
			case render.IsCloseMarker(cm.Data(), kind):
				if depth == 0 {
					parent.RemoveChild(n)
					return inner, id
				}
				depth--
			}
		}
		inner.nodes = append(inner.nodes, n)
	}
}

// Len returns the number of unclaimed nodes.
func (f *Fragment) Len() int { return len(f.nodes) }

// Empty reports whether the fragment is fully consumed.
func (f *Fragment) Empty() bool { return len(f.nodes) == 0 }

// Front returns the next unclaimed node, or nil.
func (f *Fragment) Front() target.Node {
	if len(f.nodes) == 0 {
		return nil
	}
	return f.nodes[0]
}

func (f *Fragment) popFront() target.Node {
	if len(f.nodes) == 0 {
		return nil
	}
	n := f.nodes[0]
	f.nodes = f.nodes[1:]
	return n
}

func (f *Fragment) pushFront(n target.Node) {
	f.nodes = append([]target.Node{n}, f.nodes...)
}

// TrimStartTextNodes removes leading text nodes, physically and from
// the cursor. Server markup carries insignificant whitespace that no
// virtual node claims.
func (f *Fragment) TrimStartTextNodes(parent target.Element) {
	for len(f.nodes) > 0 {
		t, ok := f.nodes[0].(target.Text)
		if !ok {
			return
		}
		parent.RemoveChild(t)
		f.nodes = f.nodes[1:]
	}
}

// DeepClone copies every remaining node, detached.
func (f *Fragment) DeepClone() *Fragment {
	c := &Fragment{nodes: make([]target.Node, len(f.nodes))}
	for i, n := range f.nodes {
		c.nodes[i] = n.Clone()
	}
	return c
}

// Shift moves the remaining nodes before a new anchor and returns the
// reference preceding siblings should anchor on.
func (f *Fragment) Shift(parent target.Element, next NodeRef) NodeRef {
	for _, n := range f.nodes {
		insertNode(parent, n, next)
	}
	if len(f.nodes) == 0 {
		ret := NewNodeRef()
		ret.Link(next)
		return ret
	}
	return RefTo(f.nodes[0])
}

// Detach removes the remaining nodes from the parent unless the parent
// itself is being discarded.
func (f *Fragment) Detach(parent target.Element, parentToDetach bool) {
	if !parentToDetach {
		for _, n := range f.nodes {
			parent.RemoveChild(n)
		}
	}
	f.nodes = nil
}
