package bundle

import "sync"

// Scheduler is a FIFO queue of deferred engine jobs: coalesced
// component re-renders and suspense boundary syncs. Jobs pushed while
// draining run in the same drain, so a resume that schedules a render
// which in turn resolves a boundary settles within one Pump.
type Scheduler struct {
	mu       sync.Mutex
	queue    []func()
	draining bool
	notify   func()
}

// NewScheduler creates an empty scheduler.
func NewScheduler() *Scheduler {
	return &Scheduler{}
}

// Notify registers a callback fired when a push makes the queue
// non-empty. Owners that drain on their own loop use it to learn that
// work arrived from another goroutine. The callback must not drain
// synchronously.
func (s *Scheduler) Notify(fn func()) {
	s.mu.Lock()
	s.notify = fn
	s.mu.Unlock()
}

// Push enqueues a job. Safe for concurrent use; resume listeners may
// fire from other goroutines.
func (s *Scheduler) Push(fn func()) {
	s.mu.Lock()
	s.queue = append(s.queue, fn)
	first := len(s.queue) == 1 && !s.draining
	notify := s.notify
	s.mu.Unlock()
	if first && notify != nil {
		notify()
	}
}

// Len reports the number of queued jobs.
func (s *Scheduler) Len() int {
	s.mu.Lock()
	defer s.mu.Unlock()
	return len(s.queue)
}

// Drain runs queued jobs in order until the queue is empty. Reentrant
// calls return immediately; the outer drain picks up any jobs they
// would have run.
func (s *Scheduler) Drain() {
	s.mu.Lock()
	if s.draining {
		s.mu.Unlock()
		return
	}
	s.draining = true
	for len(s.queue) > 0 {
		fn := s.queue[0]
		s.queue = s.queue[1:]
		s.mu.Unlock()
		fn()
		s.mu.Lock()
	}
	s.draining = false
	s.mu.Unlock()
}
