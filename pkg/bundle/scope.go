package bundle

import (
	"context"
	"reflect"
	"sync/atomic"

	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/trace"

	"github.com/loomui/loom/internal/errors"
	"github.com/loomui/loom/pkg/suspend"
	"github.com/loomui/loom/pkg/target"
	"github.com/loomui/loom/pkg/vtree"
)

var scopeIDCounter atomic.Uint64

// Scope is a component instance's identity and lifecycle handle. It
// outlives individual renders: re-rendering, suspending, resuming, and
// prop updates all happen against the same scope. Once destroyed, every
// operation on the scope is a no-op, so late resume callbacks from
// abandoned work cannot corrupt the tree.
type Scope struct {
	id       uint64
	typ      reflect.Type
	comp     vtree.Component
	parent   *Scope
	root     *Root
	boundary *suspenseBoundary

	// state is nil before mount and again after destroy.
	state *componentState

	renderQueued atomic.Bool
}

// componentState holds everything a live component owns between
// renders.
type componentState struct {
	props       any
	realized    realized
	parent      target.Element
	nextSibling NodeRef
	internalRef NodeRef

	// suspension is the pending handle of the last suspended render,
	// nil while the component is cleanly rendered.
	suspension *suspend.Suspension

	// pending buffers a prop update that arrived while the first
	// hydrating render had not committed yet.
	pending    any
	hasPending bool

	committed bool
	stateKey  string
}

func newScope(parent *Scope, comp vtree.Component, root *Root) *Scope {
	s := &Scope{
		id:     scopeIDCounter.Add(1),
		typ:    reflect.TypeOf(comp),
		comp:   comp,
		parent: parent,
		root:   root,
	}
	if parent != nil {
		s.boundary = parent.boundary
	}
	return s
}

// newBoundaryScope creates a pass-through scope that carries a suspense
// boundary for its descendants. It has no component of its own.
func newBoundaryScope(parent *Scope, b *suspenseBoundary) *Scope {
	s := &Scope{
		id:       scopeIDCounter.Add(1),
		parent:   parent,
		boundary: b,
	}
	if parent != nil {
		s.root = parent.root
	} else {
		s.root = b.root
	}
	return s
}

// ID returns the scope's unique identity.
func (s *Scope) ID() uint64 { return s.id }

// Parent returns the enclosing component's scope, or nil at the root.
func (s *Scope) Parent() *Scope { return s.parent }

// Live reports whether the scope has mounted state.
func (s *Scope) Live() bool { return s.state != nil }

// mount installs the component at the given location and runs the first
// render. With a non-nil fragment the component hydrates against
// server-rendered nodes instead of constructing fresh ones; saved state
// recovered from the state block is loaded first.
func (s *Scope) mount(comp vtree.Component, loc Location, props any, frag *Fragment, stateKey string) {
	if s.state != nil {
		return
	}
	st := &componentState{
		props:       props,
		parent:      loc.Parent,
		nextSibling: loc.NextSibling,
		internalRef: loc.InternalRef,
		stateKey:    stateKey,
	}
	if frag != nil {
		st.realized = frag
		if loader, ok := comp.(vtree.StateLoader); ok {
			if data, found := s.root.takeState(stateKey); found {
				if err := loader.LoadState(data); err != nil {
					panic(errors.New("E005").WithDetailf("restoring component state %q: %v", stateKey, err))
				}
			}
		}
	} else {
		st.realized = newBundle(Location{
			InternalRef: loc.InternalRef,
			Parent:      loc.Parent,
			NextSibling: loc.NextSibling,
			root:        s.root,
		})
	}
	s.state = st

	if binder, ok := comp.(Binder); ok {
		binder.Bind(&Link{scope: s})
	}
	s.render()
}

// render runs the component's render function and commits the result.
// A pending suspension parks the component: the current output stays
// realized, the boundary is notified, and a resume listener schedules
// the retry.
func (s *Scope) render() {
	st := s.state
	if st == nil {
		return
	}
	_, span := s.root.tracer.Start(context.Background(), "scope.render",
		trace.WithAttributes(attribute.Int64("scope.id", int64(s.id))))
	defer span.End()

	node, err := s.comp.Render(st.props)
	if err != nil {
		sp, ok := suspend.Pending(err)
		if !ok {
			panic(errors.New("E103").Wrap(err))
		}
		s.suspendWith(sp)
		return
	}
	s.commit(node)
}

// suspendWith parks the scope on a suspension. An already-resumed
// handle retries immediately; re-throwing the handle the scope is
// already parked on changes nothing.
func (s *Scope) suspendWith(sp *suspend.Suspension) {
	st := s.state
	if sp.Resumed() {
		s.render()
		return
	}
	if st.suspension == sp {
		return
	}
	if s.boundary == nil {
		panic(errors.New("E101").WithDetailf("component %s", s.typ))
	}
	debugf("scope %d suspended on %d", s.id, sp.ID())
	sp.Listen(s.scheduleRender)
	if st.suspension != nil {
		s.boundary.resume(st.suspension)
	}
	st.suspension = sp
	s.boundary.suspendOn(sp)
}

// scheduleRender queues a coalesced re-render on the root scheduler.
// Multiple triggers before the drain collapse into one render; a
// destroyed scope renders nothing.
func (s *Scope) scheduleRender() {
	if !s.renderQueued.CompareAndSwap(false, true) {
		return
	}
	s.root.Schedule(func() {
		s.renderQueued.Store(false)
		s.render()
	})
}

// commit applies a successful render: releases any tracked suspension,
// reconciles or hydrates the output, runs the after-render hook, and
// flushes a buffered prop update.
func (s *Scope) commit(node *vtree.Node) {
	st := s.state
	if sp := st.suspension; sp != nil {
		st.suspension = nil
		if s.boundary != nil {
			s.boundary.resume(sp)
		}
	}

	switch r := st.realized.(type) {
	case *Bundle:
		r.Reconcile(s, node)
	case *Fragment:
		loc := Location{
			InternalRef: st.internalRef,
			Parent:      st.parent,
			NextSibling: st.nextSibling,
			root:        s.root,
		}
		b := hydrateBundle(s, loc, r, node)
		r.TrimStartTextNodes(st.parent)
		if !r.Empty() {
			panic(errors.New("E001").WithDetailf("component %s left %d server nodes unconsumed", s.typ, r.Len()))
		}
		st.realized = b
	}

	first := !st.committed
	st.committed = true
	if ar, ok := s.comp.(vtree.AfterRenderer); ok {
		ar.AfterRender(first)
	}

	if st.hasPending {
		props := st.pending
		st.pending, st.hasPending = nil, false
		s.changed(props, true, NodeRef{})
	}
}

// changed delivers a prop update and, when given, a new following
// sibling anchor. The component re-renders only when the props actually
// differ; moving without prop changes re-links the anchor and renders
// nothing.
func (s *Scope) changed(props any, propsSet bool, next NodeRef) {
	st := s.state
	if st == nil {
		return
	}
	if !next.IsZero() {
		st.nextSibling.Link(next)
	}
	if !propsSet {
		return
	}
	if _, hydrating := st.realized.(*Fragment); hydrating {
		// The first render has not committed; hold the props until it
		// does. A later update overwrites an earlier buffered one.
		st.pending, st.hasPending = props, true
		return
	}
	if propsEqual(s.comp, st.props, props) {
		return
	}
	st.props = props
	s.render()
}

// shift moves the component's realized content before a new anchor
// without re-rendering.
func (s *Scope) shift(parent target.Element, next NodeRef) {
	st := s.state
	if st == nil {
		return
	}
	switch r := st.realized.(type) {
	case *Bundle:
		st.nextSibling.Link(next)
		r.Shift(parent, st.nextSibling)
	case *Fragment:
		st.nextSibling.Link(next)
		r.Shift(parent, st.nextSibling)
	}
	st.parent = parent
}

// destroy tears the component down. State is cleared before anything
// else so callbacks firing during teardown are no-ops; children detach
// and finalize before this component's own finalizer runs.
func (s *Scope) destroy(parentToDetach bool) {
	st := s.state
	if st == nil {
		return
	}
	s.state = nil

	if st.suspension != nil && s.boundary != nil {
		s.boundary.resume(st.suspension)
	}

	switch r := st.realized.(type) {
	case *Bundle:
		r.Detach(parentToDetach)
	case *Fragment:
		r.Detach(st.parent, parentToDetach)
	}

	if f, ok := s.comp.(vtree.Finalizer); ok {
		f.Finalize()
	}
	st.internalRef.Set(nil)
	debugf("scope %d destroyed", s.id)
}
