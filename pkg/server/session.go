package server

import (
	"context"
	"crypto/rand"
	"encoding/hex"
	"encoding/json"
	"fmt"
	"sync"
	"time"

	"github.com/gorilla/websocket"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/codes"
	"go.opentelemetry.io/otel/trace"

	"github.com/loomui/loom/pkg/bundle"
	"github.com/loomui/loom/pkg/target"
	"github.com/loomui/loom/pkg/vtree"
)

// Frame types on the live wire. The client only ever sends events;
// everything else flows server to client.
const (
	frameHello = "hello"
	framePatch = "patch"
	frameEvent = "event"
	frameError = "error"
)

// frame is one websocket message in either direction.
type frame struct {
	Type string `json:"type"`

	// hello
	Session string `json:"session,omitempty"`
	Root    uint64 `json:"root,omitempty"`

	// patch
	Seq uint64      `json:"seq,omitempty"`
	Ops []target.Op `json:"ops,omitempty"`

	// event
	Target  uint64          `json:"target,omitempty"`
	Event   string          `json:"event,omitempty"`
	Payload json.RawMessage `json:"payload,omitempty"`

	// error
	Message string `json:"message,omitempty"`
}

// Session is one live connection. The document, root, and scope are
// confined to the event loop goroutine; the read and write loops only
// touch the channels and the connection.
type Session struct {
	ID     string
	server *Server
	conn   *websocket.Conn

	doc   *target.MemDoc
	host  *target.MemElement
	root  *bundle.Root
	scope *bundle.Scope

	events chan frame
	send   chan frame
	wake   chan struct{}
	done   chan struct{}

	closeOnce sync.Once

	// pending collects ops emitted since the last flush. Event loop
	// goroutine only.
	pending []target.Op
	seq     uint64
}

func newSession(srv *Server, conn *websocket.Conn) *Session {
	doc := target.NewMemDoc()
	host := doc.CreateElement("div").(*target.MemElement)

	s := &Session{
		ID:     newSessionID(),
		server: srv,
		conn:   conn,
		doc:    doc,
		host:   host,
		root:   bundle.NewRoot(doc, host),
		events: make(chan frame, srv.config.MaxEventQueue),
		send:   make(chan frame, 32),
		wake:   make(chan struct{}, 1),
		done:   make(chan struct{}),
	}
	// The host itself is not streamed; the client learns its id from
	// the hello frame and maps it onto the page's mount element.
	doc.Observe(func(op target.Op) {
		s.pending = append(s.pending, op)
	})
	// Suspensions resume on arbitrary goroutines; the wake channel
	// brings the resulting renders back onto the event loop.
	s.root.OnWork(func() {
		select {
		case s.wake <- struct{}{}:
		default:
		}
	})
	return s
}

func newSessionID() string {
	var b [8]byte
	if _, err := rand.Read(b[:]); err != nil {
		panic(fmt.Sprintf("server: session id: %v", err))
	}
	return hex.EncodeToString(b[:])
}

// run drives the session until the connection drops or Close is
// called. It blocks; the caller owns connection cleanup.
func (s *Session) run(comp vtree.Component, props any) {
	go s.readLoop()
	go s.writeLoop()
	s.eventLoop(comp, props)
	s.Close()
}

// Close tears the session down. Safe to call from any goroutine and
// more than once.
func (s *Session) Close() {
	s.closeOnce.Do(func() {
		close(s.done)
		if s.conn != nil {
			s.conn.Close()
		}
	})
}

func (s *Session) eventLoop(comp vtree.Component, props any) {
	if !s.mount(comp, props) {
		return
	}
	defer func() {
		if s.scope != nil {
			s.root.Unmount(s.scope)
		}
	}()

	for {
		select {
		case ev := <-s.events:
			s.dispatch(ev)
		case <-s.wake:
			s.root.Pump()
			s.flush()
		case <-s.done:
			return
		}
	}
}

// mount builds the component tree and streams the construction ops as
// the first patch. Returns false when the initial render fails.
func (s *Session) mount(comp vtree.Component, props any) (ok bool) {
	defer func() {
		if r := recover(); r != nil {
			s.sendFrame(frame{Type: frameError, Message: fmt.Sprint(r)})
			s.server.metrics.WSErrors.WithLabelValues("mount").Inc()
			ok = false
		}
	}()

	s.scope = s.root.Mount(comp, props)
	s.sendFrame(frame{Type: frameHello, Session: s.ID, Root: s.host.ID()})
	s.flush()
	return true
}

// dispatch fires one client event into the document and streams the
// resulting mutations.
func (s *Session) dispatch(ev frame) {
	_, span := s.server.tracer.Start(context.Background(), "loom.event",
		trace.WithSpanKind(trace.SpanKindServer),
		trace.WithAttributes(
			attribute.String("loom.session_id", s.ID),
			attribute.String("loom.event_type", ev.Event),
			attribute.Int64("loom.event_target", int64(ev.Target)),
		),
	)
	defer span.End()

	start := time.Now()
	status := "success"
	defer func() {
		if r := recover(); r != nil {
			status = "error"
			span.SetStatus(codes.Error, fmt.Sprint(r))
			s.sendFrame(frame{Type: frameError, Message: fmt.Sprint(r)})
		}
		s.server.metrics.EventDuration.Observe(time.Since(start).Seconds())
		s.server.metrics.EventsTotal.WithLabelValues(status).Inc()
	}()

	el, ok := s.doc.NodeByID(ev.Target).(*target.MemElement)
	if !ok {
		status = "dropped"
		span.SetStatus(codes.Error, "unknown target")
		s.sendFrame(frame{Type: frameError, Message: fmt.Sprintf("unknown event target %d", ev.Target)})
		return
	}

	var payload any
	if len(ev.Payload) > 0 {
		if err := json.Unmarshal(ev.Payload, &payload); err != nil {
			status = "dropped"
			span.SetStatus(codes.Error, "bad payload")
			s.sendFrame(frame{Type: frameError, Message: "malformed event payload"})
			return
		}
	}

	el.Fire(ev.Event, payload)
	s.root.Pump()
	span.SetAttributes(attribute.Int("loom.patch_ops", len(s.pending)))
	s.flush()
}

// flush sends collected mutation ops as one patch frame.
func (s *Session) flush() {
	if len(s.pending) == 0 {
		return
	}
	ops := s.pending
	s.pending = nil
	s.seq++
	s.server.metrics.PatchOps.Add(float64(len(ops)))
	s.sendFrame(frame{Type: framePatch, Seq: s.seq, Ops: ops})
}

func (s *Session) sendFrame(f frame) {
	select {
	case s.send <- f:
	case <-s.done:
	}
}
