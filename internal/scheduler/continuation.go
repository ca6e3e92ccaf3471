package scheduler

import (
	"sync"
	"time"
)

// Step is one straight-line segment of a suspendable procedure. It runs to
// completion inside a single callback and returns how the procedure resumes.
// A non-nil error ends the procedure and is reported by the scheduler like
// any other callback error.
type Step func() (Resume, error)

// Resume describes a suspension point. The zero value, Done, ends the
// procedure.
type Resume struct {
	next  Step
	after time.Duration
	await func(wake func()) error
}

// Done ends the procedure without re-enqueueing anything.
func Done() Resume {
	return Resume{}
}

// Yield suspends the procedure and resumes it with next on a later pass.
func Yield(next Step) Resume {
	return Resume{next: next}
}

// Sleep suspends the procedure for d and then resumes it with next.
// A non-positive d behaves like Yield.
func Sleep(d time.Duration, next Step) Resume {
	return Resume{next: next, after: d}
}

// Await suspends the procedure until the wake function handed to register
// is called. The procedure resumes with next on the pass after the first
// wake; later calls are ignored. register runs as soon as the current
// segment returns; an error from it ends the procedure.
func Await(register func(wake func()) error, next Step) Resume {
	return Resume{next: next, await: register}
}

// Go starts a procedure on the scheduler. Its first segment runs on the next
// pass, and every suspension re-enqueues the rest of the procedure, so the
// procedure never holds the loop across a suspension point.
func (s *Scheduler) Go(step Step) {
	s.Enqueue(s.segment(step))
}

func (s *Scheduler) segment(step Step) Action {
	return func() error {
		r, err := step()
		if err != nil {
			return err
		}
		return s.resume(r)
	}
}

func (s *Scheduler) resume(r Resume) error {
	if r.await != nil {
		var once sync.Once
		return r.await(func() {
			once.Do(func() {
				if r.next != nil {
					s.Enqueue(s.segment(r.next))
				}
			})
		})
	}
	switch {
	case r.next == nil:
	case r.after > 0:
		s.EnqueueAfter(s.segment(r.next), r.after)
	default:
		s.Enqueue(s.segment(r.next))
	}
	return nil
}
