package bundle

import (
	"encoding/json"
	"log"
	"strconv"

	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/trace"

	"github.com/loomui/loom/internal/errors"
	"github.com/loomui/loom/pkg/render"
	"github.com/loomui/loom/pkg/target"
	"github.com/loomui/loom/pkg/vtree"
)

// DebugMode enables verbose engine logging. Off by default.
var DebugMode bool

func debugf(format string, args ...any) {
	if DebugMode {
		log.Printf("[loom] "+format, args...)
	}
}

// Root drives a component tree mounted under a host element. It owns
// the scheduler that coalesced re-renders and suspense swaps run on and
// the saved-state table recovered during hydration.
//
// A Root is not safe for concurrent use; external goroutines hand work
// to it by resuming suspensions and letting the owner call Pump.
type Root struct {
	doc    target.Document
	host   target.Element
	sched  *Scheduler
	tracer trace.Tracer
	state  map[string]json.RawMessage
}

// NewRoot creates a root over the given document and host element.
func NewRoot(doc target.Document, host target.Element) *Root {
	return &Root{
		doc:    doc,
		host:   host,
		sched:  NewScheduler(),
		tracer: otel.Tracer("loom/bundle"),
	}
}

// Mount constructs the component tree from scratch under the host and
// returns the live scope of the top component. Jobs scheduled during
// construction (first suspense swaps, immediate resumes) are drained
// before Mount returns.
func (r *Root) Mount(comp vtree.Component, props any) *Scope {
	sc := newScope(nil, comp, r)
	loc := Location{
		InternalRef: NewNodeRef(),
		Parent:      r.host,
		NextSibling: NewNodeRef(),
		root:        r,
	}
	sc.mount(comp, loc, props, nil, "")
	r.Pump()
	return sc
}

// Hydrate adopts server-rendered markup already present under the host
// instead of rebuilding it. The host's children must carry the comment
// markers emitted by a hydratable render of the same tree; the embedded
// state block, when present, is consumed and removed first.
//
// Hydrate panics with a structured error when the markup does not match
// the tree being hydrated.
func (r *Root) Hydrate(comp vtree.Component, props any) *Scope {
	r.consumeStateBlock()

	frag := collectChildren(r.host)
	sub, id := collectBetween(frag, r.host, render.MarkerComponent)

	sc := newScope(nil, comp, r)
	loc := Location{
		InternalRef: NewNodeRef(),
		Parent:      r.host,
		NextSibling: NewNodeRef(),
		root:        r,
	}
	sc.mount(comp, loc, props, sub, strconv.FormatUint(id, 10))

	frag.TrimStartTextNodes(r.host)
	if !frag.Empty() {
		panic(errors.New("E001").WithDetailf("host retains %d nodes after hydration", frag.Len()))
	}
	r.Pump()
	return sc
}

// Pump drains the scheduler: coalesced re-renders queued by resumed
// suspensions, context updates, and pending suspense swaps.
func (r *Root) Pump() {
	r.sched.Drain()
}

// UpdateProps delivers new props to a mounted scope and settles the
// resulting work.
func (r *Root) UpdateProps(sc *Scope, props any) {
	sc.changed(props, true, NodeRef{})
	r.Pump()
}

// Unmount destroys a mounted scope, detaching its physical nodes and
// finalizing components bottom-up.
func (r *Root) Unmount(sc *Scope) {
	sc.destroy(false)
	r.Pump()
}

// Schedule queues a job on the root's scheduler.
func (r *Root) Schedule(fn func()) {
	r.sched.Push(fn)
}

// OnWork registers a callback fired when work arrives on an idle
// scheduler, typically from a suspension resuming on another
// goroutine. The owner reacts by calling Pump from its own loop.
func (r *Root) OnWork(fn func()) {
	r.sched.Notify(fn)
}

// takeState removes and returns the saved state payload for a boundary
// key recovered from the state block.
func (r *Root) takeState(key string) (json.RawMessage, bool) {
	data, ok := r.state[key]
	if ok {
		delete(r.state, key)
	}
	return data, ok
}

// consumeStateBlock locates the embedded state script under the host,
// parses its payload, and removes it from the physical tree.
func (r *Root) consumeStateBlock() {
	for n := r.host.FirstChild(); n != nil; n = n.NextSibling() {
		el, ok := n.(target.Element)
		if !ok || el.TagName() != "script" {
			continue
		}
		if v, _ := el.Attr("type"); v != render.StateBlockType {
			continue
		}
		var payload string
		if t, ok := el.FirstChild().(target.Text); ok {
			payload = t.Data()
		}
		state := map[string]json.RawMessage{}
		if payload != "" {
			if err := json.Unmarshal([]byte(payload), &state); err != nil {
				panic(errors.New("E002").WithDetailf("state block is not valid JSON: %v", err))
			}
		}
		r.state = state
		r.host.RemoveChild(el)
		debugf("consumed state block with %d entries", len(state))
		return
	}
}
