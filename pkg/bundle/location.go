package bundle

import "github.com/loomui/loom/pkg/target"

// Location tells a realized component where it lives in the physical
// tree: the parent element it renders under, the reference cell for the
// sibling it must stay in front of, and the cell through which its own
// first node is published to whoever anchors on it.
//
// NextSibling and InternalRef are stable cells owned by the component
// for its whole life. Moving a component re-links NextSibling; the
// component never learns its absolute index.
type Location struct {
	// InternalRef resolves to the component's first physical node, or
	// follows NextSibling while the component renders nothing.
	InternalRef NodeRef

	// Parent is the element the component's nodes attach under.
	Parent target.Element

	// NextSibling anchors insertions: the component's content always
	// goes immediately before whatever this cell resolves to.
	NextSibling NodeRef

	root *Root
}

// newLocation creates a component location whose stable NextSibling
// cell aliases the caller's transient anchor.
func newLocation(root *Root, parent target.Element, next NodeRef) Location {
	stable := NewNodeRef()
	stable.Link(next)
	return Location{
		InternalRef: NewNodeRef(),
		Parent:      parent,
		NextSibling: stable,
		root:        root,
	}
}
