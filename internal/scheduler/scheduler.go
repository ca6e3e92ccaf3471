package scheduler

import (
	"context"
	"fmt"
	"runtime/debug"
	"sync"
	"sync/atomic"
	"time"

	"github.com/warpdl/slumber/pkg/logger"
)

// DefaultIdleSleep is how long the loop sleeps after a pass that executed
// nothing.
const DefaultIdleSleep = 10 * time.Millisecond

// Scheduler is a single-goroutine event loop. Callbacks never run
// concurrently with each other; the Enqueue methods may be called from any
// goroutine.
type Scheduler struct {
	log       logger.Logger
	clock     Clock
	idleSleep time.Duration

	mu       sync.Mutex
	ready    []entry
	deferred deadlineHeap
	shutdown []Action
	seq      uint64

	running atomic.Bool
}

// New creates a Scheduler. It does not start the loop; call Run.
func New(l logger.Logger, opts ...Option) *Scheduler {
	s := &Scheduler{
		log:       l,
		clock:     wallClock{},
		idleSleep: DefaultIdleSleep,
	}
	for _, opt := range opts {
		opt(s)
	}
	return s
}

// Now returns the scheduler clock's current time.
func (s *Scheduler) Now() time.Time {
	return s.clock.Now()
}

// Enqueue schedules action for the next pass. Actions enqueued without a
// deadline run in FIFO order.
func (s *Scheduler) Enqueue(action Action) {
	s.push(action, time.Time{})
}

// EnqueueAt schedules action to run on the first pass at or after deadline.
// A zero deadline is the same as Enqueue.
func (s *Scheduler) EnqueueAt(action Action, deadline time.Time) {
	s.push(action, deadline)
}

// EnqueueAfter schedules action to run once d has elapsed on the scheduler
// clock.
func (s *Scheduler) EnqueueAfter(action Action, d time.Duration) {
	s.push(action, s.clock.Now().Add(d))
}

// EnqueueShutdown registers a one-shot action that runs when Stop is called.
// Shutdown actions run in registration order.
func (s *Scheduler) EnqueueShutdown(action Action) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.shutdown = append(s.shutdown, action)
}

func (s *Scheduler) push(action Action, deadline time.Time) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.seq++
	e := entry{action: action, deadline: deadline, seq: s.seq}
	if deadline.IsZero() {
		s.ready = append(s.ready, e)
		return
	}
	heapPush(&s.deferred, e)
}

// Pending reports how many entries are waiting for the next pass (ready)
// and how many are waiting on a deadline (deferred).
func (s *Scheduler) Pending() (ready, deferred int) {
	s.mu.Lock()
	defer s.mu.Unlock()
	return len(s.ready), s.deferred.Len()
}

// Running reports whether the loop is currently inside Run.
func (s *Scheduler) Running() bool {
	return s.running.Load()
}

// Run blocks, executing passes until Stop is called from a callback or ctx
// is done. When ctx ends the loop, pending entries and shutdown actions are
// left untouched and ctx.Err() is returned; callers that are shutting down
// should call Stop afterwards.
func (s *Scheduler) Run(ctx context.Context) error {
	s.log.Info("Starting event loop")
	s.running.Store(true)
	defer s.running.Store(false)

	for s.running.Load() {
		if err := ctx.Err(); err != nil {
			s.log.Debug("Event loop interrupted: %v", err)
			return err
		}
		if !s.pass() {
			// yield when idle
			s.clock.Sleep(s.idleSleep)
		}
	}
	s.log.Info("Event loop stopped")
	return nil
}

// pass executes one iteration of the loop and reports whether any action
// ran. Entries enqueued while the pass is executing wait for a later pass.
func (s *Scheduler) pass() bool {
	s.mu.Lock()
	batch := s.ready
	s.ready = nil
	batch = append(batch, popDue(&s.deferred, s.clock.Now())...)
	s.mu.Unlock()

	for _, e := range batch {
		if !s.running.Load() {
			// Stop was called by an earlier callback in this pass.
			break
		}
		_ = s.invoke("callback", e.action)
	}
	return len(batch) > 0
}

// invoke runs action, logging its error or recovered panic.
func (s *Scheduler) invoke(kind string, action Action) (err error) {
	defer func() {
		if r := recover(); r != nil {
			s.log.Error("PANIC [%s]: %v\n%s", kind, r, debug.Stack())
			err = fmt.Errorf("%s panicked: %v", kind, r)
		}
	}()
	if err = action(); err != nil {
		s.log.Error("Failed to run %s: %v", kind, err)
	}
	return err
}

// Stop clears the running flag and runs every registered shutdown action.
// A failing action is logged and the remaining ones still run. Each shutdown
// action runs at most once, however many times Stop is called.
//
// Stop is meant to be called from a callback or after Run has returned.
// Other goroutines should use RequestStop.
func (s *Scheduler) Stop() {
	s.running.Store(false)

	s.mu.Lock()
	actions := s.shutdown
	s.shutdown = nil
	s.mu.Unlock()

	for _, action := range actions {
		_ = s.invoke("shutdown callback", action)
	}
}

// RequestStop asks the loop to stop on its next pass. It is safe to call
// from any goroutine.
func (s *Scheduler) RequestStop() {
	s.Enqueue(func() error {
		s.Stop()
		return nil
	})
}
