package bundle

import (
	"github.com/loomui/loom/pkg/target"
	"github.com/loomui/loom/pkg/vtree"
)

// bEmpty realizes an empty slot. It occupies no physical space and
// passes anchors straight through.
type bEmpty struct{}

func (*bEmpty) detach(target.Element, bool) {}

func (*bEmpty) shift(_ target.Element, next NodeRef) NodeRef {
	return next
}

// bText realizes a text node. Reconciliation mutates the data in place;
// the physical node's identity is stable for the slot's lifetime.
type bText struct {
	node target.Text
	text string
}

func attachText(root *Root, parent target.Element, next NodeRef, v *vtree.Node) (NodeRef, bnode) {
	tn := root.doc.CreateText(v.Text)
	insertNode(parent, tn, next)
	return RefTo(tn), &bText{node: tn, text: v.Text}
}

func (b *bText) reconcile(v *vtree.Node) NodeRef {
	if b.text != v.Text {
		b.node.SetData(v.Text)
		b.text = v.Text
	}
	return RefTo(b.node)
}

func (b *bText) detach(parent target.Element, parentToDetach bool) {
	if !parentToDetach {
		parent.RemoveChild(b.node)
	}
}

func (b *bText) shift(parent target.Element, next NodeRef) NodeRef {
	insertNode(parent, b.node, next)
	return RefTo(b.node)
}

// bRaw realizes an opaque markup run as the span of top-level nodes the
// document materialized for it. The engine moves and removes the span
// wholesale and never descends into it.
type bRaw struct {
	html  string
	nodes []target.Node
}

func attachRaw(root *Root, parent target.Element, next NodeRef, v *vtree.Node) (NodeRef, bnode) {
	b := &bRaw{html: v.Text, nodes: root.doc.CreateRaw(v.Text)}
	for _, n := range b.nodes {
		insertNode(parent, n, next)
	}
	return b.ref(next), b
}

func (b *bRaw) reconcile(root *Root, parent target.Element, next NodeRef, v *vtree.Node) NodeRef {
	if b.html == v.Text {
		return b.ref(next)
	}
	fresh := root.doc.CreateRaw(v.Text)
	anchor := next
	if len(b.nodes) > 0 {
		anchor = RefTo(b.nodes[0])
	}
	for _, n := range fresh {
		insertNode(parent, n, anchor)
	}
	for _, n := range b.nodes {
		parent.RemoveChild(n)
	}
	b.html = v.Text
	b.nodes = fresh
	return b.ref(next)
}

func (b *bRaw) detach(parent target.Element, parentToDetach bool) {
	if parentToDetach {
		return
	}
	for _, n := range b.nodes {
		parent.RemoveChild(n)
	}
}

func (b *bRaw) shift(parent target.Element, next NodeRef) NodeRef {
	for _, n := range b.nodes {
		insertNode(parent, n, next)
	}
	return b.ref(next)
}

func (b *bRaw) ref(next NodeRef) NodeRef {
	if len(b.nodes) == 0 {
		ret := NewNodeRef()
		ret.Link(next)
		return ret
	}
	return RefTo(b.nodes[0])
}
