package fade

import (
	"testing"
	"time"

	"github.com/stretchr/testify/require"
	"pgregory.net/rapid"

	"github.com/warpdl/slumber/internal/mixer"
	"github.com/warpdl/slumber/internal/scheduler"
	"github.com/warpdl/slumber/internal/scheduler/schedulertest"
	"github.com/warpdl/slumber/pkg/logger"
)

type harness struct {
	sched  *scheduler.Scheduler
	clock  *schedulertest.Clock
	pool   *mixer.Pool
	engine *Engine
	log    *logger.MockLogger
}

func newHarness(t require.TestingT) *harness {
	log := logger.NewMockLogger()
	sched, clk := schedulertest.New(log)
	pool, err := mixer.NewPool(mixer.NewNullDevice(false), log)
	require.NoError(t, err)
	return &harness{
		sched:  sched,
		clock:  clk,
		pool:   pool,
		engine: New(pool, sched, log),
		log:    log,
	}
}

func (h *harness) volume(t require.TestingT, id int) float64 {
	v, err := h.pool.Volume(id)
	require.NoError(t, err)
	return v
}

func TestFadeReachesTarget(t *testing.T) {
	h := newHarness(t)
	id, err := h.pool.Allocate()
	require.NoError(t, err)

	start := h.clock.Now()
	var doneAt time.Duration
	calls := 0
	require.NoError(t, h.engine.Fade(id, 2*time.Second, 0.2, 1.0, func() {
		calls++
		doneAt = h.clock.Now().Sub(start)
	}))
	require.Equal(t, 0.2, h.volume(t, id), "start volume is applied immediately")

	schedulertest.RunFor(t, h.sched, time.Second)
	require.InDelta(t, 0.6, h.volume(t, id), 1e-9)
	require.Zero(t, calls)

	schedulertest.RunFor(t, h.sched, 5*time.Second)
	require.Equal(t, 1.0, h.volume(t, id))
	require.Equal(t, 1, calls)
	require.GreaterOrEqual(t, doneAt, 2*time.Second)
}

func TestFadeDownClampsOnOvershoot(t *testing.T) {
	h := newHarness(t)
	id, err := h.pool.Allocate()
	require.NoError(t, err)

	// 1.2 steps: the second step would undershoot and is clamped.
	calls := 0
	require.NoError(t, h.engine.Fade(id, 600*time.Millisecond, 0.6, 0.0, func() { calls++ }))

	schedulertest.RunFor(t, h.sched, 500*time.Millisecond)
	require.InDelta(t, 0.1, h.volume(t, id), 1e-9)

	schedulertest.RunFor(t, h.sched, time.Second)
	require.Equal(t, 0.0, h.volume(t, id))
	require.Equal(t, 1, calls)
}

func TestFadeZeroDurationCompletesSynchronously(t *testing.T) {
	h := newHarness(t)
	id, err := h.pool.Allocate()
	require.NoError(t, err)

	calls := 0
	require.NoError(t, h.engine.Fade(id, 0, 0.0, 0.7, func() { calls++ }))

	require.Equal(t, 1, calls)
	require.Equal(t, 0.7, h.volume(t, id))
	ready, deferred := h.sched.Pending()
	require.Zero(t, ready)
	require.Zero(t, deferred)
}

func TestFadeEqualStartAndTargetWaitsFullDuration(t *testing.T) {
	h := newHarness(t)
	id, err := h.pool.Allocate()
	require.NoError(t, err)

	calls := 0
	require.NoError(t, h.engine.Fade(id, 3*time.Second, 0.5, 0.5, func() { calls++ }))

	schedulertest.RunFor(t, h.sched, 2*time.Second)
	require.Zero(t, calls)
	schedulertest.RunFor(t, h.sched, 2*time.Second)
	require.Equal(t, 1, calls)
}

func TestFadeFollowsObservedVolume(t *testing.T) {
	h := newHarness(t)
	id, err := h.pool.Allocate()
	require.NoError(t, err)

	require.NoError(t, h.engine.Fade(id, 5*time.Second, 0.0, 1.0, nil))
	schedulertest.RunFor(t, h.sched, 1200*time.Millisecond)
	require.InDelta(t, 0.2, h.volume(t, id), 1e-9)

	// An external change is kept; the next step builds on it.
	require.NoError(t, h.pool.SetVolume(id, 0.5))
	schedulertest.RunFor(t, h.sched, 500*time.Millisecond)
	require.InDelta(t, 0.6, h.volume(t, id), 1e-9)
}

func TestFadeRejectsBadInput(t *testing.T) {
	h := newHarness(t)
	id, err := h.pool.Allocate()
	require.NoError(t, err)

	require.ErrorIs(t, h.engine.Fade(id, time.Second, -0.1, 1, nil), ErrInvalidVolume)
	require.ErrorIs(t, h.engine.Fade(id, time.Second, 0, 1.5, nil), ErrInvalidVolume)
	require.ErrorIs(t, h.engine.Fade(id, -time.Second, 0, 1, nil), ErrInvalidDuration)
	require.ErrorIs(t, h.engine.Fade(id+1, time.Second, 0, 1, nil), mixer.ErrInvalidChannel)
}

func TestFadeChannelReleasedMidFade(t *testing.T) {
	h := newHarness(t)
	id, err := h.pool.Allocate()
	require.NoError(t, err)

	calls := 0
	require.NoError(t, h.engine.Fade(id, 5*time.Second, 0, 1, func() { calls++ }))
	schedulertest.RunFor(t, h.sched, time.Second)
	require.NoError(t, h.pool.Release(id))
	schedulertest.RunFor(t, h.sched, 10*time.Second)

	require.Zero(t, calls)
	errs := h.log.Errors()
	require.Len(t, errs, 1)
	require.Contains(t, errs[0], "invalid channel")
}

func TestFadeInFadeOut(t *testing.T) {
	h := newHarness(t)
	id, err := h.pool.Allocate()
	require.NoError(t, err)

	var order []string
	require.NoError(t, h.engine.FadeIn(id, time.Second, func() {
		order = append(order, "in")
		require.NoError(t, h.engine.FadeOut(id, time.Second, func() {
			order = append(order, "out")
		}))
	}))

	schedulertest.RunFor(t, h.sched, 3*time.Second)

	require.Equal(t, []string{"in", "out"}, order)
	require.Equal(t, 0.0, h.volume(t, id))
}

func TestProperty_FadeCompletesAtTargetNoSoonerThanDuration(t *testing.T) {
	rapid.Check(t, func(t *rapid.T) {
		h := newHarness(t)
		id, err := h.pool.Allocate()
		require.NoError(t, err)

		d := time.Duration(rapid.IntRange(0, 100).Draw(t, "tenths")) * 100 * time.Millisecond
		start := float64(rapid.IntRange(0, 100).Draw(t, "start")) / 100
		target := float64(rapid.IntRange(0, 100).Draw(t, "target")) / 100

		begin := h.clock.Now()
		calls := 0
		var doneAt time.Duration
		require.NoError(t, h.engine.Fade(id, d, start, target, func() {
			calls++
			doneAt = h.clock.Now().Sub(begin)
		}))

		prev := h.volume(t, id)
		for elapsed := time.Duration(0); elapsed < d+2*StepInterval; elapsed += StepInterval {
			schedulertest.RunFor(t, h.sched, StepInterval)
			cur := h.volume(t, id)
			if target >= start {
				require.GreaterOrEqual(t, cur, prev)
				require.LessOrEqual(t, cur, target)
			} else {
				require.LessOrEqual(t, cur, prev)
				require.GreaterOrEqual(t, cur, target)
			}
			prev = cur
		}

		require.Equal(t, 1, calls)
		require.Equal(t, target, h.volume(t, id))
		require.GreaterOrEqual(t, doneAt, d)
	})
}
