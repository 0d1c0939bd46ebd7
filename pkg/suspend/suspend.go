// Package suspend provides one-shot suspension handles.
//
// A Suspension represents a single outstanding asynchronous dependency
// blocking a render. A component's render function signals a pending
// dependency by returning Throw(s); the lifecycle machinery registers a
// resume listener and re-renders when the suspension resumes. Equality
// is by identity: the same *Suspension across two renders means "this
// is the same pending operation as before".
package suspend

import (
	"errors"
	"sync"
	"sync/atomic"
)

var nextID atomic.Uint64

// Suspension is a one-shot handle representing a pending asynchronous
// dependency. It is resumable exactly once.
type Suspension struct {
	id uint64

	mu        sync.Mutex
	resumed   bool
	listeners []func()
	done      chan struct{}
}

// New creates an unresumed Suspension.
func New() *Suspension {
	return &Suspension{
		id:   nextID.Add(1),
		done: make(chan struct{}),
	}
}

// ID returns the suspension's process-wide identity.
func (s *Suspension) ID() uint64 { return s.id }

// Resume marks the suspension resumed and fires registered listeners.
// Subsequent calls are no-ops.
func (s *Suspension) Resume() {
	s.mu.Lock()
	if s.resumed {
		s.mu.Unlock()
		return
	}
	s.resumed = true
	listeners := s.listeners
	s.listeners = nil
	close(s.done)
	s.mu.Unlock()

	for _, fn := range listeners {
		fn()
	}
}

// Resumed reports whether Resume has been called.
func (s *Suspension) Resumed() bool {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.resumed
}

// Listen registers a callback fired when the suspension resumes. If the
// suspension already resumed, the callback fires immediately.
func (s *Suspension) Listen(fn func()) {
	s.mu.Lock()
	if s.resumed {
		s.mu.Unlock()
		fn()
		return
	}
	s.listeners = append(s.listeners, fn)
	s.mu.Unlock()
}

// Done returns a channel closed when the suspension resumes. Server
// rendering waits on it instead of registering listeners.
func (s *Suspension) Done() <-chan struct{} { return s.done }

// PendingError is the control-flow signal a render function returns to
// report a pending dependency. It is not a failure.
type PendingError struct {
	Suspension *Suspension
}

// Error implements the error interface.
func (e *PendingError) Error() string { return "render suspended" }

// Throw wraps a suspension as the error return of a render function.
func Throw(s *Suspension) error {
	return &PendingError{Suspension: s}
}

// Pending extracts the suspension from a render error, if any.
func Pending(err error) (*Suspension, bool) {
	var p *PendingError
	if errors.As(err, &p) {
		return p.Suspension, true
	}
	return nil, false
}
