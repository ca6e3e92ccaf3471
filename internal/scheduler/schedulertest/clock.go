// Package schedulertest drives a scheduler on virtual time.
package schedulertest

import (
	"context"
	"errors"
	"sync"
	"time"

	"github.com/warpdl/slumber/internal/scheduler"
	"github.com/warpdl/slumber/pkg/logger"
)

// Epoch is the default start time of a Clock.
var Epoch = time.Date(2024, time.January, 1, 22, 0, 0, 0, time.UTC)

// Guard bounds the real time a single RunFor may take.
const Guard = 10 * time.Second

// Clock is a manual scheduler.Clock. Sleep advances virtual time instantly.
type Clock struct {
	mu  sync.Mutex
	now time.Time
}

// NewClock returns a Clock starting at start.
func NewClock(start time.Time) *Clock {
	return &Clock{now: start}
}

// Now returns the current virtual time.
func (c *Clock) Now() time.Time {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.now
}

// Sleep advances virtual time by d.
func (c *Clock) Sleep(d time.Duration) {
	c.Advance(d)
}

// Advance moves virtual time forward by d.
func (c *Clock) Advance(d time.Duration) {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.now = c.now.Add(d)
}

var _ scheduler.Clock = (*Clock)(nil)

// New returns a scheduler running on a fresh virtual Clock.
func New(l logger.Logger, opts ...scheduler.Option) (*scheduler.Scheduler, *Clock) {
	clk := NewClock(Epoch)
	opts = append([]scheduler.Option{scheduler.WithClock(clk)}, opts...)
	return scheduler.New(l, opts...), clk
}

// TB is the subset of testing.TB used by RunFor. It is satisfied by
// *testing.T and *rapid.T.
type TB interface {
	Helper()
	Fatalf(format string, args ...any)
}

// RunFor runs s until d of scheduler time has elapsed, then returns with
// pending work and shutdown actions intact, so the loop can be resumed by
// another RunFor. The test fails if the loop stops early through an error
// or does not get there within Guard of real time.
func RunFor(t TB, s *scheduler.Scheduler, d time.Duration) {
	t.Helper()
	guard, cancelGuard := context.WithTimeout(context.Background(), Guard)
	defer cancelGuard()
	ctx, cancel := context.WithCancel(guard)
	defer cancel()

	s.EnqueueAfter(func() error {
		cancel()
		return nil
	}, d)

	err := s.Run(ctx)
	if guard.Err() != nil {
		t.Fatalf("scheduler did not reach %v of virtual time within %v", d, Guard)
	}
	if err != nil && !errors.Is(err, context.Canceled) {
		t.Fatalf("scheduler stopped unexpectedly: %v", err)
	}
}
