package bundle

import "github.com/loomui/loom/pkg/target"

// NodeRef is a mutable, aliasable reference to a physical node
// position. Cells can be linked so that two holders observe the same
// backing slot: when a descendant later re-anchors its first node, every
// ancestor holding a linked cell resolves to the new node without
// re-walking the tree.
//
// The zero NodeRef is empty and unusable as a link target; create cells
// with NewNodeRef.
type NodeRef struct {
	inner *refCell
}

type refCell struct {
	node target.Node
	link *refCell
}

// NewNodeRef creates an empty reference cell.
func NewNodeRef() NodeRef {
	return NodeRef{inner: &refCell{}}
}

// RefTo creates a cell resolving to the given node.
func RefTo(n target.Node) NodeRef {
	return NodeRef{inner: &refCell{node: n}}
}

// IsZero reports whether this is the zero NodeRef (no cell at all).
func (r NodeRef) IsZero() bool { return r.inner == nil }

// Get resolves the reference, following links. Returns nil when the
// chain ends without a node.
func (r NodeRef) Get() target.Node {
	for c := r.inner; c != nil; c = c.link {
		if c.node != nil {
			return c.node
		}
	}
	return nil
}

// Set stores a node in this cell directly, breaking any link.
func (r NodeRef) Set(n target.Node) {
	r.inner.node = n
	r.inner.link = nil
}

// Link aliases this cell to another: resolving this cell now follows
// other. Linking a cell to itself is a no-op. Callers must not create
// link cycles; cells only ever link "outward" toward a following
// sibling or an ancestor anchor.
func (r NodeRef) Link(other NodeRef) {
	if r.inner == other.inner || other.inner == nil {
		return
	}
	r.inner.node = nil
	r.inner.link = other.inner
}
