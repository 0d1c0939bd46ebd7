// Package target defines the physical-tree mutation boundary.
//
// The reconciler operates against these interfaces and never against a
// concrete output technology; any mutable retained tree (a browser DOM
// mirror, a terminal UI, a test document) can implement them. The
// package also provides MemDoc, an in-memory implementation with HTML
// parsing/serialization and mutation counters, used by tests, hydration
// round-trips, and live server sessions.
package target

// Event is a dispatched target event.
type Event struct {
	Type    string
	Target  Node
	Payload any
}

// EventFunc handles a dispatched event.
type EventFunc func(Event)

// ListenerHandle identifies one attached listener for later removal.
type ListenerHandle uint64

// Document creates physical nodes. Creation does not attach; nodes
// enter the tree via Element.InsertBefore.
type Document interface {
	CreateElement(tag string) Element
	CreateText(data string) Text
	CreateComment(data string) Comment

	// CreateRaw materializes an externally constructed fragment and
	// returns its top-level nodes, unattached.
	CreateRaw(html string) []Node
}

// Node is one physical node. Implementations must be comparable by
// interface equality so the engine can track positional identity.
type Node interface {
	// Parent returns the containing element, or nil when detached.
	Parent() Element

	// NextSibling returns the following sibling, or nil.
	NextSibling() Node

	// Clone returns a deep copy of the subtree, detached.
	Clone() Node
}

// Element is a physical element node.
type Element interface {
	Node

	TagName() string

	SetAttr(key, value string)
	RemoveAttr(key string)
	Attr(key string) (string, bool)

	// InsertBefore inserts child before ref. A nil ref appends. A child
	// that already has a parent is first removed from it, so insertion
	// doubles as a move.
	InsertBefore(child, ref Node)
	RemoveChild(child Node)
	FirstChild() Node

	AddListener(event string, fn EventFunc) ListenerHandle
	RemoveListener(h ListenerHandle)
}

// Text is a physical text node.
type Text interface {
	Node
	Data() string
	SetData(data string)
}

// Comment is a physical comment node. Hydration markers travel as
// comments.
type Comment interface {
	Node
	Data() string
}
