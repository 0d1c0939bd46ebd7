package bundle

import (
	"reflect"

	"github.com/loomui/loom/pkg/target"
	"github.com/loomui/loom/pkg/vtree"
)

// Bundle is the realized mirror of one component's rendered tree: the
// retained structure that diffs an incoming virtual tree against what
// is physically attached and applies the difference.
type Bundle struct {
	layout bnode
	loc    Location
}

// realized marks the two states a mounted component's output can be in:
// a Bundle once the first render committed, or a Fragment cursor while
// server markup is still being adopted.
type realized interface{ realizedMarker() }

func (*Bundle) realizedMarker()   {}
func (*Fragment) realizedMarker() {}

// newBundle creates an empty bundle at the given location. The first
// Reconcile call attaches the initial tree.
func newBundle(loc Location) *Bundle {
	return &Bundle{loc: loc}
}

// Reconcile diffs the incoming virtual tree against the realized layout
// and applies the difference, then republishes the component's first
// node through the location's internal reference.
func (b *Bundle) Reconcile(sc *Scope, vnode *vtree.Node) {
	ref := reconcileNode(b.loc.root, sc, b.loc.Parent, b.loc.NextSibling, vnode, &b.layout)
	b.loc.InternalRef.Link(ref)
}

// Shift moves the realized content before a new anchor, preserving
// node identity and component state.
func (b *Bundle) Shift(parent target.Element, next NodeRef) {
	b.loc.Parent = parent
	b.loc.NextSibling.Link(next)
	if b.layout != nil {
		b.layout.shift(parent, b.loc.NextSibling)
	}
}

// Detach tears the realized content down. With parentToDetach set the
// parent element itself is being discarded, so descendants skip
// physical removal and only run component teardown.
func (b *Bundle) Detach(parentToDetach bool) {
	if b.layout != nil {
		b.layout.detach(b.loc.Parent, parentToDetach)
		b.layout = nil
	}
}

// bnode is one realized slot variant. detach tears down, shift moves
// before a new anchor and returns the reference preceding siblings
// should anchor on, which is the slot's first node or the pass-through
// of next when the slot occupies no space.
type bnode interface {
	detach(parent target.Element, parentToDetach bool)
	shift(parent target.Element, next NodeRef) NodeRef
}

// reconcileNode diffs one virtual node against a realized slot in
// place. A nil slot attaches fresh; a variant mismatch replaces. The
// returned reference is the anchor for the preceding sibling.
func reconcileNode(root *Root, sc *Scope, parent target.Element, next NodeRef, v *vtree.Node, slot *bnode) NodeRef {
	if v == nil {
		v = vtree.Empty()
	}
	if *slot == nil {
		ref, b := attachNode(root, sc, parent, next, v)
		*slot = b
		return ref
	}

	switch v.Kind {
	case vtree.KindEmpty:
		if _, ok := (*slot).(*bEmpty); ok {
			ret := NewNodeRef()
			ret.Link(next)
			return ret
		}
	case vtree.KindText:
		if b, ok := (*slot).(*bText); ok {
			return b.reconcile(v)
		}
	case vtree.KindRaw:
		if b, ok := (*slot).(*bRaw); ok {
			return b.reconcile(root, parent, next, v)
		}
	case vtree.KindElement:
		if b, ok := (*slot).(*bElement); ok && b.tag == v.Tag {
			return b.reconcile(root, sc, v)
		}
	case vtree.KindList:
		if b, ok := (*slot).(*bList); ok {
			return b.reconcile(root, sc, parent, next, v.Children)
		}
	case vtree.KindComponent:
		if b, ok := (*slot).(*bComp); ok && b.typ == reflect.TypeOf(v.Comp) {
			return b.reconcile(v, next)
		}
	case vtree.KindPortal:
		if b, ok := (*slot).(*bPortal); ok && b.mount == v.Mount {
			return b.reconcile(root, sc, next, v)
		}
	case vtree.KindSuspense:
		if b, ok := (*slot).(*bSuspense); ok {
			return b.reconcile(root, sc, parent, next, v)
		}
	}

	return replaceNode(root, sc, parent, next, v, slot)
}

// replaceNode swaps a slot across variants: the replacement attaches at
// the slot's position first, then the old content detaches. Component
// state in the old content is destroyed; there is no cross-variant
// migration.
func replaceNode(root *Root, sc *Scope, parent target.Element, next NodeRef, v *vtree.Node, slot *bnode) NodeRef {
	ref, b := attachNode(root, sc, parent, next, v)
	old := *slot
	*slot = b
	old.detach(parent, false)
	return ref
}

// attachNode constructs a fresh realized slot for a virtual node,
// inserting physical nodes before the anchor.
func attachNode(root *Root, sc *Scope, parent target.Element, next NodeRef, v *vtree.Node) (NodeRef, bnode) {
	if v == nil {
		v = vtree.Empty()
	}
	switch v.Kind {
	case vtree.KindEmpty:
		ret := NewNodeRef()
		ret.Link(next)
		return ret, &bEmpty{}
	case vtree.KindText:
		return attachText(root, parent, next, v)
	case vtree.KindRaw:
		return attachRaw(root, parent, next, v)
	case vtree.KindElement:
		return attachElement(root, sc, parent, next, v)
	case vtree.KindList:
		l := newBList()
		ref := l.reconcile(root, sc, parent, next, v.Children)
		return ref, l
	case vtree.KindComponent:
		return attachComponent(root, sc, parent, next, v)
	case vtree.KindPortal:
		return attachPortal(root, sc, next, v)
	case vtree.KindSuspense:
		return attachSuspense(root, sc, parent, next, v)
	default:
		ret := NewNodeRef()
		ret.Link(next)
		return ret, &bEmpty{}
	}
}

// insertNode places a physical node before the anchor's current
// resolution.
func insertNode(parent target.Element, n target.Node, next NodeRef) {
	ref := next.Get()
	if ref == n {
		return
	}
	parent.InsertBefore(n, ref)
}

// propsEqual applies the component's own comparison when it provides
// one, falling back to deep equality.
func propsEqual(comp vtree.Component, a, b any) bool {
	if pc, ok := comp.(vtree.PropsComparer); ok {
		return pc.PropsEqual(a, b)
	}
	return reflect.DeepEqual(a, b)
}
