// Package meter draws a live volume bar per mixer channel in the terminal.
package meter

import (
	"fmt"
	"io"
	"math"
	"sync"
	"time"

	"github.com/vbauerster/mpb/v8"
	"github.com/vbauerster/mpb/v8/decor"

	"github.com/warpdl/slumber/internal/mixer"
	"github.com/warpdl/slumber/internal/scheduler"
)

// DefaultInterval is how often channel volumes are sampled.
const DefaultInterval = 250 * time.Millisecond

// DefaultWidth is the default bar width in columns.
const DefaultWidth = 40

// barTotal is the bar length in volume percent.
const barTotal = 100

// Source reports channel volumes.
type Source interface {
	Allocated() []int
	Volume(id int) (float64, error)
}

// Meter samples a Source on the scheduler and renders it with mpb.
type Meter struct {
	p        *mpb.Progress
	src      Source
	sched    *scheduler.Scheduler
	interval time.Duration
	width    int
	bars     [mixer.Capacity]*mpb.Bar

	closeOnce sync.Once
	closed    bool
}

// Option configures a Meter.
type Option func(*Meter)

// WithWidth sets the bar width in columns.
func WithWidth(w int) Option {
	return func(m *Meter) {
		m.width = w
	}
}

// WithInterval sets how often volumes are sampled.
func WithInterval(d time.Duration) Option {
	return func(m *Meter) {
		if d > 0 {
			m.interval = d
		}
	}
}

// New returns a meter writing to w. Sampling starts with Start.
func New(w io.Writer, src Source, sched *scheduler.Scheduler, opts ...Option) *Meter {
	m := &Meter{
		src:      src,
		sched:    sched,
		interval: DefaultInterval,
		width:    DefaultWidth,
	}
	for _, opt := range opts {
		opt(m)
	}
	m.p = mpb.New(mpb.WithOutput(w), mpb.WithWidth(m.width))
	return m
}

// Start schedules the first sample and removes the bars when the scheduler
// stops.
func (m *Meter) Start() {
	m.sched.Enqueue(m.sample)
	m.sched.EnqueueShutdown(m.Close)
}

func (m *Meter) sample() error {
	if m.closed {
		return nil
	}
	var active [mixer.Capacity]bool
	for _, id := range m.src.Allocated() {
		active[id] = true
	}
	for id := range m.bars {
		if !active[id] {
			if m.bars[id] != nil {
				m.bars[id].SetCurrent(0)
			}
			continue
		}
		v, err := m.src.Volume(id)
		if err != nil {
			return err
		}
		m.bar(id).SetCurrent(int64(math.Round(v * barTotal)))
	}
	m.sched.EnqueueAfter(m.sample, m.interval)
	return nil
}

// bar returns the bar of channel id, creating it on first use. Bars are
// created with an unknown total so they never complete on their own.
func (m *Meter) bar(id int) *mpb.Bar {
	if m.bars[id] != nil {
		return m.bars[id]
	}
	name := fmt.Sprintf("ch %d", id)
	style := mpb.BarStyle().Lbound("╢").Filler("█").Tip("█").Padding("░").Rbound("╟")
	b := m.p.New(0, style,
		mpb.BarPriority(id),
		mpb.PrependDecorators(
			decor.Name(name, decor.WC{W: len(name) + 1, C: decor.DindentRight}),
		),
		mpb.AppendDecorators(
			decor.Percentage(decor.WC{W: 5}),
		),
	)
	b.SetTotal(barTotal, false)
	m.bars[id] = b
	return b
}

// Current returns the last rendered volume percent of channel id, or -1 if
// the channel has no bar yet.
func (m *Meter) Current(id int) int64 {
	if m.bars[id] == nil {
		return -1
	}
	return m.bars[id].Current()
}

// Close removes every bar and waits for the renderer to finish.
func (m *Meter) Close() error {
	m.closeOnce.Do(func() {
		m.closed = true
		for _, b := range m.bars {
			if b != nil {
				b.Abort(false)
			}
		}
		m.p.Wait()
	})
	return nil
}
