package bundle

import (
	"reflect"
	"strconv"
	"strings"

	"github.com/loomui/loom/internal/errors"
	"github.com/loomui/loom/pkg/render"
	"github.com/loomui/loom/pkg/target"
	"github.com/loomui/loom/pkg/vtree"
)

// hydrateBundle adopts server-rendered nodes from a fragment cursor
// into a realized bundle instead of constructing fresh ones.
func hydrateBundle(sc *Scope, loc Location, frag *Fragment, vnode *vtree.Node) *Bundle {
	b := newBundle(loc)
	ref, layout := hydrateNode(loc.root, sc, loc.Parent, frag, loc.NextSibling, vnode)
	b.layout = layout
	loc.InternalRef.Link(ref)
	return b
}

// hydrateNode claims the physical nodes for one virtual node from the
// front of the fragment. next is the live anchor for the slot after
// this node; bundles that keep an anchor for later shifts (components,
// suspense boundaries, raw spans) link into it rather than capturing a
// physical node, since hydration itself still removes markers behind
// the cursor. Panics with a structured error when the markup does not
// match the tree.
func hydrateNode(root *Root, sc *Scope, parent target.Element, frag *Fragment, next NodeRef, v *vtree.Node) (NodeRef, bnode) {
	if v == nil {
		v = vtree.Empty()
	}
	switch v.Kind {
	case vtree.KindEmpty:
		return passThrough(next), &bEmpty{}
	case vtree.KindText:
		return hydrateText(root, parent, frag, v)
	case vtree.KindRaw:
		inner, _ := collectBetween(frag, parent, render.MarkerRaw)
		b := &bRaw{html: v.Text, nodes: inner.nodes}
		return b.ref(next), b
	case vtree.KindElement:
		return hydrateElement(root, sc, parent, frag, v)
	case vtree.KindList:
		return hydrateList(root, sc, parent, frag, next, v.Children)
	case vtree.KindComponent:
		return hydrateComponent(root, sc, parent, frag, next, v)
	case vtree.KindPortal:
		// Portals never reach the server stream; construct fresh.
		return attachPortal(root, sc, NewNodeRef(), v)
	case vtree.KindSuspense:
		return hydrateSuspense(root, sc, parent, frag, next, v)
	default:
		return passThrough(next), &bEmpty{}
	}
}

// passThrough returns a fresh cell aliasing the given anchor, so a
// slot with no physical nodes forwards its predecessor to its
// successor.
func passThrough(next NodeRef) NodeRef {
	ret := NewNodeRef()
	ret.Link(next)
	return ret
}

// hydrateText claims a text node. Adjacent virtual texts render as one
// physical node, so a longer node is split: the front keeps this
// node's data and the remainder goes back on the cursor.
func hydrateText(root *Root, parent target.Element, frag *Fragment, v *vtree.Node) (NodeRef, bnode) {
	if v.Text == "" {
		tn := root.doc.CreateText("")
		parent.InsertBefore(tn, frag.Front())
		return RefTo(tn), &bText{node: tn}
	}

	t, ok := frag.Front().(target.Text)
	if !ok {
		panic(errors.New("E002").WithDetailf("expected text %q", v.Text))
	}
	data := t.Data()
	switch {
	case data == v.Text:
		frag.popFront()
	case strings.HasPrefix(data, v.Text):
		frag.popFront()
		t.SetData(v.Text)
		rest := root.doc.CreateText(data[len(v.Text):])
		parent.InsertBefore(rest, t.NextSibling())
		frag.pushFront(rest)
	default:
		panic(errors.New("E002").WithDetailf("expected text %q, found %q", v.Text, data))
	}
	return RefTo(t), &bText{node: t, text: v.Text}
}

func hydrateElement(root *Root, sc *Scope, parent target.Element, frag *Fragment, v *vtree.Node) (NodeRef, bnode) {
	frag.TrimStartTextNodes(parent)
	el, ok := frag.Front().(target.Element)
	if !ok || el.TagName() != v.Tag {
		panic(errors.New("E002").WithDetailf("expected <%s>", v.Tag))
	}
	frag.popFront()

	b := &bElement{
		tag:       v.Tag,
		key:       v.Key,
		reference: el,
		attrs:     v.Attrs,
	}
	// Attributes were server-rendered; only listeners attach now.
	for _, bd := range v.Bindings {
		b.listeners = append(b.listeners, bindListener(el, bd))
	}

	childFrag := collectChildren(el)
	_, children := hydrateList(root, sc, el, childFrag, NewNodeRef(), v.Children)
	b.children = children
	childFrag.TrimStartTextNodes(el)
	if !childFrag.Empty() {
		panic(errors.New("E001").WithDetailf("<%s> retains %d unclaimed children", v.Tag, childFrag.Len()))
	}
	return RefTo(el), b
}

// hydrateList claims one physical run per child, front to back. Each
// child's trailing anchor starts as an empty cell and is linked to the
// following child's first-node ref once that is known; the last child
// anchors on the list's own next. Anchors stay live this way even when
// the following child's markers are removed during its hydration.
func hydrateList(root *Root, sc *Scope, parent target.Element, frag *Fragment, next NodeRef, children []*vtree.Node) (NodeRef, *bList) {
	l := newBList()
	refs := make([]NodeRef, len(children))
	anchors := make([]NodeRef, len(children))
	for i, ch := range children {
		anchors[i] = NewNodeRef()
		ref, b := hydrateNode(root, sc, parent, frag, anchors[i], ch)
		refs[i] = ref
		key := ""
		if ch != nil {
			key = ch.Key
		}
		l.entries = append(l.entries, &listEntry{key: key, node: b})
	}
	for i := range anchors {
		if i+1 < len(refs) {
			anchors[i].Link(refs[i+1])
		} else {
			anchors[i].Link(next)
		}
	}
	if len(refs) == 0 {
		return passThrough(next), l
	}
	return refs[0], l
}

func hydrateComponent(root *Root, sc *Scope, parent target.Element, frag *Fragment, next NodeRef, v *vtree.Node) (NodeRef, bnode) {
	sub, id := collectBetween(frag, parent, render.MarkerComponent)
	child := newScope(sc, v.Comp, root)
	loc := newLocation(root, parent, next)
	child.mount(v.Comp, loc, v.Props, sub, strconv.FormatUint(id, 10))
	return loc.InternalRef, &bComp{
		scope: child,
		typ:   reflect.TypeOf(v.Comp),
		key:   v.Key,
		ref:   loc.InternalRef,
	}
}

// hydrateSuspense keeps the server-rendered content visible as the
// fallback while the children hydrate off-tree against a deep clone of
// it. The boundary sync then swaps the hydrated children in once
// nothing is pending, or leaves the server markup up while descendants
// are suspended. The boundary's own anchor links into the caller's,
// the same way attachSuspense links its next, so later swaps insert
// before whatever actually follows the boundary by then.
func hydrateSuspense(root *Root, sc *Scope, parent target.Element, frag *Fragment, next NodeRef, v *vtree.Node) (NodeRef, bnode) {
	inner, _ := collectBetween(frag, parent, render.MarkerSuspense)

	bs := &bSuspense{
		detached:  root.doc.CreateElement("div"),
		parent:    parent,
		next:      NewNodeRef(),
		fallbackV: v.Fallback,
	}
	bs.next.Link(next)
	bs.boundary = &suspenseBoundary{root: root, owner: bs}
	bs.scope = newBoundaryScope(sc, bs.boundary)

	clone := inner.DeepClone()
	for _, n := range clone.nodes {
		bs.detached.InsertBefore(n, nil)
	}
	_, children := hydrateList(root, bs.scope, bs.detached, clone, NewNodeRef(), v.Children)
	bs.children = children
	clone.TrimStartTextNodes(bs.detached)
	if !clone.Empty() {
		panic(errors.New("E001").WithDetailf("suspense retains %d unclaimed nodes", clone.Len()))
	}

	bs.hydrationFallback = inner
	bs.boundary.queueSync()

	ret := NewNodeRef()
	if front := inner.Front(); front != nil {
		ret.Set(front)
	} else {
		ret.Link(bs.next)
	}
	return ret, bs
}
