package bundle

import (
	"reflect"

	"github.com/loomui/loom/pkg/vtree"
)

// Binder is implemented by components that need a handle back into the
// engine. Bind runs once at mount, before the first render.
type Binder interface {
	Bind(link *Link)
}

// Link is a component's handle to its own scope. It stays valid after
// the component is destroyed; operations on a dead scope are no-ops.
type Link struct {
	scope *Scope
}

// ScopeID returns the owning scope's identity.
func (l *Link) ScopeID() uint64 { return l.scope.id }

// Schedule queues a coalesced re-render of the component. Safe to call
// from other goroutines; the render runs on the next Pump.
func (l *Link) Schedule() {
	l.scope.scheduleRender()
}

// FindParent walks up the scope chain for the nearest ancestor
// component of the given concrete type, returning its instance.
func (l *Link) FindParent(typ reflect.Type) (vtree.Component, bool) {
	for sc := l.scope.parent; sc != nil; sc = sc.parent {
		if sc.comp != nil && sc.typ == typ {
			return sc.comp, true
		}
	}
	return nil, false
}

// ProviderProps configures a context provider: the value to publish and
// the subtree that can consume it.
type ProviderProps[T any] struct {
	Value    T
	Children *vtree.Node
}

// Provider publishes a typed value to descendant components. Changing
// the value re-renders every subscribed consumer.
type Provider[T any] struct {
	store *contextStore[T]
}

// Render implements vtree.Component.
func (p *Provider[T]) Render(props any) (*vtree.Node, error) {
	pp, ok := props.(ProviderProps[T])
	if !ok {
		return vtree.Empty(), nil
	}
	if p.store == nil {
		p.store = &contextStore[T]{subs: map[uint64]*subscription{}}
	}
	p.store.set(pp.Value)
	return pp.Children, nil
}

// UseContext subscribes the calling component to the nearest provider
// of T above it. The returned handle yields the current value and must
// be released when the component is finalized.
func UseContext[T any](l *Link) (*ContextHandle[T], bool) {
	for sc := l.scope.parent; sc != nil; sc = sc.parent {
		p, ok := sc.comp.(*Provider[T])
		if !ok || p.store == nil {
			continue
		}
		return p.store.subscribe(l.scope), true
	}
	return nil, false
}

// ContextHandle is one component's subscription to a provided value.
type ContextHandle[T any] struct {
	store   *contextStore[T]
	scopeID uint64
}

// Get returns the provider's current value.
func (h *ContextHandle[T]) Get() T {
	return h.store.value
}

// Release drops the subscription. Reference-counted: a scope holding
// several handles to the same provider unsubscribes on the last
// release.
func (h *ContextHandle[T]) Release() {
	h.store.release(h.scopeID)
}

type subscription struct {
	scope *Scope
	refs  int
}

type contextStore[T any] struct {
	value    T
	hasValue bool
	subs     map[uint64]*subscription
}

func (s *contextStore[T]) set(v T) {
	if s.hasValue && reflect.DeepEqual(s.value, v) {
		return
	}
	notify := s.hasValue
	s.value = v
	s.hasValue = true
	if !notify {
		return
	}
	for _, sub := range s.subs {
		sub.scope.scheduleRender()
	}
}

func (s *contextStore[T]) subscribe(sc *Scope) *ContextHandle[T] {
	sub, ok := s.subs[sc.id]
	if !ok {
		sub = &subscription{scope: sc}
		s.subs[sc.id] = sub
	}
	sub.refs++
	return &ContextHandle[T]{store: s, scopeID: sc.id}
}

func (s *contextStore[T]) release(scopeID uint64) {
	sub, ok := s.subs[scopeID]
	if !ok {
		return
	}
	sub.refs--
	if sub.refs <= 0 {
		delete(s.subs, scopeID)
	}
}
