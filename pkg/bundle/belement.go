package bundle

import (
	"github.com/loomui/loom/pkg/target"
	"github.com/loomui/loom/pkg/vtree"
)

// boundListener pairs a binding with the handle the target issued for
// it. The attached function is a trampoline through the binding field,
// so a surviving binding picks up its latest handler closure without
// re-attaching.
type boundListener struct {
	binding vtree.Binding
	handle  target.ListenerHandle
}

func bindListener(el target.Element, bd vtree.Binding) *boundListener {
	bl := &boundListener{binding: bd}
	bl.handle = el.AddListener(bd.Event, func(ev target.Event) {
		if h := bl.binding.Handler; h != nil {
			h(ev)
		}
	})
	return bl
}

// bElement realizes an element. Same-tag reconciliation reuses the
// physical element and diffs attributes, listeners, and children in
// place; a tag change replaces the whole slot.
type bElement struct {
	tag       string
	key       string
	reference target.Element
	attrs     []vtree.Attr
	listeners []*boundListener
	children  *bList
}

func attachElement(root *Root, sc *Scope, parent target.Element, next NodeRef, v *vtree.Node) (NodeRef, bnode) {
	el := root.doc.CreateElement(v.Tag)
	b := &bElement{
		tag:       v.Tag,
		key:       v.Key,
		reference: el,
		attrs:     v.Attrs,
		children:  newBList(),
	}
	for _, a := range v.Attrs {
		el.SetAttr(a.Key, a.Value)
	}
	for _, bd := range v.Bindings {
		b.listeners = append(b.listeners, bindListener(el, bd))
	}
	b.children.reconcile(root, sc, el, NewNodeRef(), v.Children)
	insertNode(parent, el, next)
	return RefTo(el), b
}

func (b *bElement) reconcile(root *Root, sc *Scope, v *vtree.Node) NodeRef {
	b.key = v.Key
	b.diffAttrs(v.Attrs)
	b.diffListeners(v.Bindings)
	b.children.reconcile(root, sc, b.reference, NewNodeRef(), v.Children)
	return RefTo(b.reference)
}

// diffAttrs applies only changed attributes and removes vanished ones.
func (b *bElement) diffAttrs(attrs []vtree.Attr) {
	old := make(map[string]string, len(b.attrs))
	for _, a := range b.attrs {
		old[a.Key] = a.Value
	}
	seen := make(map[string]bool, len(attrs))
	for _, a := range attrs {
		seen[a.Key] = true
		if prev, ok := old[a.Key]; !ok || prev != a.Value {
			b.reference.SetAttr(a.Key, a.Value)
		}
	}
	for _, a := range b.attrs {
		if !seen[a.Key] {
			b.reference.RemoveAttr(a.Key)
		}
	}
	b.attrs = attrs
}

// diffListeners keeps attachments whose binding identity survives,
// refreshing their handler, and swaps the rest.
func (b *bElement) diffListeners(bindings []vtree.Binding) {
	used := make([]bool, len(b.listeners))
	fresh := make([]*boundListener, 0, len(bindings))
	for _, bd := range bindings {
		matched := false
		for j, ol := range b.listeners {
			if !used[j] && ol.binding.Same(bd) {
				used[j] = true
				ol.binding = bd
				fresh = append(fresh, ol)
				matched = true
				break
			}
		}
		if !matched {
			fresh = append(fresh, bindListener(b.reference, bd))
		}
	}
	for j, ol := range b.listeners {
		if !used[j] {
			b.reference.RemoveListener(ol.handle)
		}
	}
	b.listeners = fresh
}

func (b *bElement) detach(parent target.Element, parentToDetach bool) {
	// Children tear down their component state but skip physical
	// removal; the subtree goes with this element.
	b.children.detach(b.reference, true)
	if !parentToDetach {
		parent.RemoveChild(b.reference)
	}
}

func (b *bElement) shift(parent target.Element, next NodeRef) NodeRef {
	insertNode(parent, b.reference, next)
	return RefTo(b.reference)
}
