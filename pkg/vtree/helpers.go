package vtree

import (
	"fmt"

	"github.com/loomui/loom/pkg/target"
)

// El creates an element node. Parts may be Attr, Binding, *Node,
// []*Node, string (wrapped as text), or Component (wrapped as a
// component node with nil props). Nil parts are skipped.
func El(tag string, parts ...any) *Node {
	node := &Node{Kind: KindElement, Tag: tag}
	for _, part := range parts {
		switch v := part.(type) {
		case nil:
			continue
		case Attr:
			node.Attrs = append(node.Attrs, v)
		case Binding:
			node.Bindings = append(node.Bindings, v)
		case *Node:
			if v != nil {
				node.Children = append(node.Children, v)
			}
		case []*Node:
			for _, c := range v {
				if c != nil {
					node.Children = append(node.Children, c)
				}
			}
		case string:
			node.Children = append(node.Children, Text(v))
		case Component:
			node.Children = append(node.Children, Comp(v, nil))
		default:
			panic(fmt.Sprintf("vtree: unsupported element part %T", part))
		}
	}
	return node
}

// Text creates a text node.
func Text(content string) *Node {
	return &Node{Kind: KindText, Text: content}
}

// Textf creates a formatted text node.
func Textf(format string, args ...any) *Node {
	return Text(fmt.Sprintf(format, args...))
}

// Raw creates a node whose content is an externally constructed
// fragment. Use with caution - content is not escaped.
func Raw(html string) *Node {
	return &Node{Kind: KindRaw, Text: html}
}

// List groups children without a wrapper element. Nil children are
// skipped.
func List(children ...*Node) *Node {
	node := &Node{Kind: KindList}
	for _, c := range children {
		if c != nil {
			node.Children = append(node.Children, c)
		}
	}
	return node
}

// Comp creates a component placeholder node.
func Comp(c Component, props any) *Node {
	return &Node{Kind: KindComponent, Comp: c, Props: props}
}

// Portal renders children into mount instead of the ambient parent.
func Portal(mount target.Element, children ...*Node) *Node {
	node := List(children...)
	node.Kind = KindPortal
	node.Mount = mount
	return node
}

// Suspense creates a suspense boundary. While any descendant component
// is suspended, fallback is shown in place of children.
func Suspense(fallback *Node, children ...*Node) *Node {
	node := List(children...)
	node.Kind = KindSuspense
	node.Fallback = fallback
	return node
}

// Empty returns a node that renders nothing.
func Empty() *Node {
	return &Node{Kind: KindEmpty}
}

// SetAttr creates an attribute.
func SetAttr(key, value string) Attr {
	return Attr{Key: key, Value: value}
}

// On creates an event binding.
func On(event string, handler target.EventFunc) Binding {
	return Binding{Event: event, Handler: handler}
}

// OnNamed creates a named event binding. Named bindings keep their
// attached listener across renders even when the handler closure is
// recreated.
func OnNamed(event, name string, handler target.EventFunc) Binding {
	return Binding{Event: event, Name: name, Handler: handler}
}

// If returns the node if condition is true, nil otherwise.
func If(condition bool, node *Node) *Node {
	if condition {
		return node
	}
	return nil
}

// IfElse returns the first node if condition is true, the second
// otherwise.
func IfElse(condition bool, ifTrue, ifFalse *Node) *Node {
	if condition {
		return ifTrue
	}
	return ifFalse
}

// When is like If but with lazy evaluation.
func When(condition bool, fn func() *Node) *Node {
	if condition {
		return fn()
	}
	return nil
}

// Range maps a slice to nodes. Nil results are skipped.
func Range[T any](items []T, fn func(item T, index int) *Node) []*Node {
	result := make([]*Node, 0, len(items))
	for i, item := range items {
		if node := fn(item, i); node != nil {
			result = append(result, node)
		}
	}
	return result
}

// Walk visits the node and its virtual children in tree order. It does
// not descend into component output, which only exists once realized.
func Walk(node *Node, fn func(*Node) bool) {
	if node == nil || !fn(node) {
		return
	}
	for _, c := range node.Children {
		Walk(c, fn)
	}
	if node.Fallback != nil {
		Walk(node.Fallback, fn)
	}
}
