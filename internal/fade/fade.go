// Package fade implements stepped linear volume ramps on mixer channels.
package fade

import (
	"errors"
	"fmt"
	"time"

	"github.com/warpdl/slumber/internal/scheduler"
	"github.com/warpdl/slumber/pkg/logger"
)

// StepInterval is the time between two volume steps.
const StepInterval = 500 * time.Millisecond

var (
	// ErrInvalidVolume is returned for a start or target volume outside [0, 1].
	ErrInvalidVolume = errors.New("volume out of range")
	// ErrInvalidDuration is returned for a negative fade duration.
	ErrInvalidDuration = errors.New("negative fade duration")
)

// Volumer reads and writes channel volumes.
type Volumer interface {
	SetVolume(id int, v float64) error
	Volume(id int) (float64, error)
}

// Enqueuer defers actions on the event loop.
type Enqueuer interface {
	EnqueueAfter(action scheduler.Action, d time.Duration)
}

// Engine runs fades as chains of deferred scheduler callbacks.
type Engine struct {
	vol   Volumer
	sched Enqueuer
	log   logger.Logger
}

// New returns an Engine changing volumes through vol.
func New(vol Volumer, sched Enqueuer, l logger.Logger) *Engine {
	return &Engine{vol: vol, sched: sched, log: l}
}

// Fade sets channel id to start and then moves it towards target in steps
// of StepInterval, so that target is reached no sooner than d. Each step
// adds to the channel's current volume, so changes made by others during
// the fade are kept. onComplete, if not nil, is called once when the channel
// reaches target. A zero d jumps straight to target and calls onComplete
// before returning.
func (e *Engine) Fade(id int, d time.Duration, start, target float64, onComplete func()) error {
	if !inRange(start) || !inRange(target) {
		return fmt.Errorf("fade %v -> %v: %w", start, target, ErrInvalidVolume)
	}
	if d < 0 {
		return fmt.Errorf("fade over %v: %w", d, ErrInvalidDuration)
	}
	if err := e.vol.SetVolume(id, start); err != nil {
		return err
	}
	done := func() {
		if onComplete != nil {
			onComplete()
		}
	}

	switch {
	case d == 0:
		if err := e.vol.SetVolume(id, target); err != nil {
			return err
		}
		done()
		return nil
	case start == target:
		e.sched.EnqueueAfter(func() error {
			done()
			return nil
		}, d)
		return nil
	}

	stepCount := float64(d) / float64(StepInterval)
	delta := (target - start) / stepCount
	e.log.Debug("[fade] Channel %d: %.2f -> %.2f over %v (%.2f per step)", id, start, target, d, delta)
	e.sched.EnqueueAfter(e.step(id, target, delta, done), StepInterval)
	return nil
}

// FadeIn fades channel id from silence to full volume over d.
func (e *Engine) FadeIn(id int, d time.Duration, onComplete func()) error {
	return e.Fade(id, d, 0, 1, onComplete)
}

// FadeOut fades channel id from full volume to silence over d.
func (e *Engine) FadeOut(id int, d time.Duration, onComplete func()) error {
	return e.Fade(id, d, 1, 0, onComplete)
}

func (e *Engine) step(id int, target, delta float64, done func()) scheduler.Action {
	return func() error {
		cur, err := e.vol.Volume(id)
		if err != nil {
			return fmt.Errorf("fade step: %w", err)
		}
		next := cur + delta
		if (delta > 0 && next >= target) || (delta < 0 && next <= target) {
			next = target
		}
		if err := e.vol.SetVolume(id, next); err != nil {
			return fmt.Errorf("fade step: %w", err)
		}
		if next == target {
			done()
			return nil
		}
		e.sched.EnqueueAfter(e.step(id, target, delta, done), StepInterval)
		return nil
	}
}

func inRange(v float64) bool {
	return v >= 0 && v <= 1
}
