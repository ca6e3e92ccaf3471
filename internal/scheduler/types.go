package scheduler

import "time"

// Action is a unit of work executed by the scheduler. A returned error is
// logged and does not stop the loop.
type Action func() error

// entry is a pending Action. It is owned by the scheduler from enqueue to
// execution.
type entry struct {
	action Action
	// deadline is the earliest time the action may run. The zero value
	// means the action runs on the next pass.
	deadline time.Time
	// seq breaks ties between equal deadlines in enqueue order.
	seq uint64
}

// Clock abstracts the time source so tests can drive the loop on virtual time.
type Clock interface {
	// Now returns the current time.
	Now() time.Time
	// Sleep blocks for d. It is only called between passes.
	Sleep(d time.Duration)
}

type wallClock struct{}

func (wallClock) Now() time.Time        { return time.Now() }
func (wallClock) Sleep(d time.Duration) { time.Sleep(d) }

// Option configures a Scheduler.
type Option func(*Scheduler)

// WithClock replaces the wall clock.
func WithClock(c Clock) Option {
	return func(s *Scheduler) {
		s.clock = c
	}
}

// WithIdleSleep sets how long the loop sleeps after a pass that executed
// nothing. Non-positive values are ignored.
func WithIdleSleep(d time.Duration) Option {
	return func(s *Scheduler) {
		if d > 0 {
			s.idleSleep = d
		}
	}
}
