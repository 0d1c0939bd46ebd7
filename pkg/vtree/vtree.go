package vtree

import (
	"reflect"

	"github.com/loomui/loom/pkg/target"
)

// Kind is the node type discriminator.
type Kind uint8

const (
	KindEmpty     Kind = iota // Renders nothing
	KindText                  // Plain text node
	KindRaw                   // Externally constructed fragment (dangerous)
	KindElement               // <div>, <button>, etc.
	KindList                  // Ordered sequence, optionally keyed
	KindComponent             // Component placeholder
	KindPortal                // Children rendered into a foreign target
	KindSuspense              // Suspense boundary with fallback
)

// String returns the string representation of the Kind.
func (k Kind) String() string {
	switch k {
	case KindEmpty:
		return "Empty"
	case KindText:
		return "Text"
	case KindRaw:
		return "Raw"
	case KindElement:
		return "Element"
	case KindList:
		return "List"
	case KindComponent:
		return "Component"
	case KindPortal:
		return "Portal"
	case KindSuspense:
		return "Suspense"
	default:
		return "Unknown"
	}
}

// Node is the immutable virtual description of a renderable subtree for
// one render pass. Reconciliation only ever reads a Node; it never
// mutates one. Nodes are cheap to share between generations.
type Node struct {
	Kind     Kind
	Tag      string         // Element tag name (e.g., "div")
	Attrs    []Attr         // Ordered attributes
	Bindings []Binding      // Event bindings
	Children []*Node        // Element/list/suspense/portal children
	Key      string         // Reconciliation key
	Text     string         // For KindText and KindRaw
	Comp     Component      // For KindComponent
	Props    any            // Component properties (equality-comparable)
	Fallback *Node          // For KindSuspense
	Mount    target.Element // For KindPortal: the foreign parent
}

// WithKey returns the node with its reconciliation key set.
func (n *Node) WithKey(key string) *Node {
	n.Key = key
	return n
}

// Attr is a single ordered attribute.
type Attr struct {
	Key   string
	Value string
}

// Binding is an event binding on an element.
type Binding struct {
	// Event is the event name, e.g. "click".
	Event string

	// Name optionally tags the binding for identity comparison. When
	// set, two bindings with the same Event and Name are considered the
	// same binding even if the handler closure was recreated.
	Name string

	// Handler receives dispatched events.
	Handler target.EventFunc
}

// Same reports whether two bindings are the same binding, so the
// reconciler can keep the attached listener instead of re-attaching.
// Named bindings compare by name; unnamed ones by handler identity.
func (b Binding) Same(other Binding) bool {
	if b.Event != other.Event {
		return false
	}
	if b.Name != "" || other.Name != "" {
		return b.Name == other.Name
	}
	if b.Handler == nil || other.Handler == nil {
		return b.Handler == nil && other.Handler == nil
	}
	return reflect.ValueOf(b.Handler).Pointer() == reflect.ValueOf(other.Handler).Pointer()
}

// Component is the minimal capability interface the reconciler needs to
// operate over heterogeneous component implementations. Render must be
// a pure function of props; a pending asynchronous dependency is
// signalled by returning an error that unwraps to a Suspension.
type Component interface {
	Render(props any) (*Node, error)
}

// PropsComparer is implemented by components that want to override the
// default reflect.DeepEqual properties comparison.
type PropsComparer interface {
	PropsEqual(a, b any) bool
}

// Finalizer is implemented by components that need teardown when their
// scope is destroyed. Descendant finalizers run before the ancestor's.
type Finalizer interface {
	Finalize()
}

// AfterRenderer is implemented by components that observe committed
// renders. It is not called while the component is suspended.
type AfterRenderer interface {
	AfterRender(first bool)
}

// StateSaver is implemented by components whose server-side state should
// be carried to the client in the trailing hydration data block.
type StateSaver interface {
	SaveState() (any, bool)
}

// StateLoader is implemented by components that consume saved state
// during hydration, before their first client render.
type StateLoader interface {
	LoadState(data []byte) error
}

// FuncComponent wraps a render function.
type FuncComponent struct {
	render func(props any) (*Node, error)
}

// Render implements Component.
func (f *FuncComponent) Render(props any) (*Node, error) {
	return f.render(props)
}

// Func creates a component from a render function.
func Func(render func(props any) (*Node, error)) Component {
	return &FuncComponent{render: render}
}
