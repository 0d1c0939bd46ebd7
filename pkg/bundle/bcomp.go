package bundle

import (
	"reflect"

	"github.com/loomui/loom/internal/errors"
	"github.com/loomui/loom/pkg/target"
	"github.com/loomui/loom/pkg/vtree"
)

// bComp realizes a component slot. The scope survives reconciliation as
// long as the component type matches; only its props change. The
// internal reference cell published at mount stays live for the slot's
// whole life, so ancestors re-anchor in constant time when the
// component's first node changes.
type bComp struct {
	scope *Scope
	typ   reflect.Type
	key   string
	ref   NodeRef
}

func attachComponent(root *Root, sc *Scope, parent target.Element, next NodeRef, v *vtree.Node) (NodeRef, bnode) {
	child := newScope(sc, v.Comp, root)
	loc := newLocation(root, parent, next)
	child.mount(v.Comp, loc, v.Props, nil, "")
	return loc.InternalRef, &bComp{
		scope: child,
		typ:   reflect.TypeOf(v.Comp),
		key:   v.Key,
		ref:   loc.InternalRef,
	}
}

func (b *bComp) reconcile(v *vtree.Node, next NodeRef) NodeRef {
	b.key = v.Key
	b.scope.changed(v.Props, true, next)
	return b.ref
}

func (b *bComp) detach(_ target.Element, parentToDetach bool) {
	b.scope.destroy(parentToDetach)
}

func (b *bComp) shift(parent target.Element, next NodeRef) NodeRef {
	b.scope.shift(parent, next)
	return b.ref
}

// bPortal realizes a portal: children render under a foreign mount
// element and occupy no space in the ambient parent, so anchors pass
// straight through. Detaching always removes physically from the mount,
// even when the ambient parent is itself being discarded.
type bPortal struct {
	mount    target.Element
	children *bList
}

func attachPortal(root *Root, sc *Scope, next NodeRef, v *vtree.Node) (NodeRef, bnode) {
	if v.Mount == nil {
		panic(errors.New("E102"))
	}
	b := &bPortal{mount: v.Mount, children: newBList()}
	b.children.reconcile(root, sc, b.mount, NewNodeRef(), v.Children)
	ret := NewNodeRef()
	ret.Link(next)
	return ret, b
}

func (b *bPortal) reconcile(root *Root, sc *Scope, next NodeRef, v *vtree.Node) NodeRef {
	b.children.reconcile(root, sc, b.mount, NewNodeRef(), v.Children)
	ret := NewNodeRef()
	ret.Link(next)
	return ret
}

func (b *bPortal) detach(_ target.Element, _ bool) {
	b.children.detach(b.mount, false)
}

func (*bPortal) shift(_ target.Element, next NodeRef) NodeRef {
	return next
}
