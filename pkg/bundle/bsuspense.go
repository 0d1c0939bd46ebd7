package bundle

import (
	"github.com/loomui/loom/internal/errors"
	"github.com/loomui/loom/pkg/suspend"
	"github.com/loomui/loom/pkg/target"
	"github.com/loomui/loom/pkg/vtree"
)

// bSuspense realizes a suspense boundary. Its children always stay
// realized: while any descendant suspension is pending they live under
// an off-tree detached parent, keeping element identity and component
// state, and the fallback occupies the visible slot. Resuming the last
// suspension swaps the children back.
type bSuspense struct {
	boundary *suspenseBoundary
	scope    *Scope
	detached target.Element

	parent target.Element
	next   NodeRef

	children  *bList
	fallbackV *vtree.Node

	// Exactly one of these is set while suspended: a realized fallback
	// after a client-side swap, or the untouched server-rendered
	// fallback fragment during hydration.
	fallback          bnode
	hydrationFallback *Fragment
}

// suspenseBoundary coordinates the pending set for one bSuspense.
// Suspensions register once by identity; swaps run as coalesced
// scheduler jobs so a burst of suspends and resumes settles into at
// most one visible transition per drain.
type suspenseBoundary struct {
	root       *Root
	owner      *bSuspense
	pending    []*suspend.Suspension
	syncQueued bool
}

func attachSuspense(root *Root, sc *Scope, parent target.Element, next NodeRef, v *vtree.Node) (NodeRef, bnode) {
	bs := &bSuspense{
		detached:  root.doc.CreateElement("div"),
		parent:    parent,
		next:      NewNodeRef(),
		children:  newBList(),
		fallbackV: v.Fallback,
	}
	bs.next.Link(next)
	bs.boundary = &suspenseBoundary{root: root, owner: bs}
	bs.scope = newBoundaryScope(sc, bs.boundary)
	ref := bs.children.reconcile(root, bs.scope, parent, bs.next, v.Children)
	return ref, bs
}

func (b *bSuspense) reconcile(root *Root, sc *Scope, parent target.Element, next NodeRef, v *vtree.Node) NodeRef {
	b.fallbackV = v.Fallback
	b.parent = parent
	b.next.Link(next)

	if !b.suspended() {
		return b.children.reconcile(root, b.scope, parent, b.next, v.Children)
	}

	// Children keep reconciling off-tree so they are current the moment
	// the last suspension resumes.
	b.children.reconcile(root, b.scope, b.detached, NewNodeRef(), v.Children)

	if b.hydrationFallback != nil {
		ret := NewNodeRef()
		if front := b.hydrationFallback.Front(); front != nil {
			ret.Set(front)
		} else {
			ret.Link(b.next)
		}
		return ret
	}
	return reconcileNode(root, sc, parent, b.next, b.fallbackV, &b.fallback)
}

func (b *bSuspense) suspended() bool {
	return b.fallback != nil || b.hydrationFallback != nil
}

// showFallback moves the realized children off-tree and puts the
// fallback in the visible slot.
func (b *bSuspense) showFallback() {
	if b.suspended() {
		panic(errors.New("E004").WithDetailf("fallback already shown"))
	}
	debugf("suspense: showing fallback")
	b.children.shift(b.detached, NewNodeRef())
	outer := b.scope.parent
	_, fb := attachNode(b.boundary.root, outer, b.parent, b.next, b.fallbackV)
	b.fallback = fb
}

// showChildren removes the fallback and moves the retained children
// back into the visible slot, identity intact.
func (b *bSuspense) showChildren() {
	if !b.suspended() {
		panic(errors.New("E004").WithDetailf("children already shown"))
	}
	debugf("suspense: showing children")
	if b.hydrationFallback != nil {
		b.hydrationFallback.Detach(b.parent, false)
		b.hydrationFallback = nil
	}
	if b.fallback != nil {
		b.fallback.detach(b.parent, false)
		b.fallback = nil
	}
	b.children.shift(b.parent, b.next)
}

func (b *bSuspense) detach(parent target.Element, parentToDetach bool) {
	if b.suspended() {
		if b.fallback != nil {
			b.fallback.detach(parent, parentToDetach)
		}
		if b.hydrationFallback != nil {
			b.hydrationFallback.Detach(parent, parentToDetach)
		}
		// Children live under the detached parent; teardown only.
		b.children.detach(b.detached, true)
	} else {
		b.children.detach(parent, parentToDetach)
	}
	b.boundary.owner = nil
}

func (b *bSuspense) shift(parent target.Element, next NodeRef) NodeRef {
	b.parent = parent
	b.next.Link(next)
	if b.hydrationFallback != nil {
		return b.hydrationFallback.Shift(parent, next)
	}
	if b.fallback != nil {
		return b.fallback.shift(parent, next)
	}
	return b.children.shift(parent, next)
}

// suspendOn registers a pending suspension. Duplicate registrations of
// the same handle are ignored.
func (b *suspenseBoundary) suspendOn(sp *suspend.Suspension) {
	for _, p := range b.pending {
		if p == sp {
			return
		}
	}
	b.pending = append(b.pending, sp)
	b.queueSync()
}

// resume drops a suspension from the pending set.
func (b *suspenseBoundary) resume(sp *suspend.Suspension) {
	for i, p := range b.pending {
		if p == sp {
			b.pending = append(b.pending[:i], b.pending[i+1:]...)
			break
		}
	}
	b.queueSync()
}

func (b *suspenseBoundary) queueSync() {
	if b.syncQueued {
		return
	}
	b.syncQueued = true
	b.root.Schedule(func() {
		b.syncQueued = false
		b.sync()
	})
}

// sync reconciles the visible slot with the pending set. Idempotent; a
// suspend/resume pair inside one drain leaves the tree untouched.
func (b *suspenseBoundary) sync() {
	if b.owner == nil {
		return
	}
	suspended := len(b.pending) > 0
	if suspended && !b.owner.suspended() {
		b.owner.showFallback()
	} else if !suspended && b.owner.suspended() {
		b.owner.showChildren()
	}
}
