package mixer

import (
	"fmt"
	"sync"
	"time"
)

// NullDevice is a silent Device. It keeps the state each channel would have
// on a real output and can journal every call.
type NullDevice struct {
	mu       sync.Mutex
	record   bool
	calls    []string
	inited   bool
	closed   bool
	channels [Capacity]*nullChannel
}

// ChannelState is a snapshot of a NullDevice channel.
type ChannelState struct {
	Sound   string
	Volume  float64
	Playing bool
	Loop    bool
	FadeIn  time.Duration
	FadeOut time.Duration
}

type nullSound string

func (s nullSound) Name() string { return string(s) }

// NewNullDevice returns a silent device. When record is true every call is
// kept in the journal returned by Calls.
func NewNullDevice(record bool) *NullDevice {
	d := &NullDevice{record: record}
	for id := range d.channels {
		d.channels[id] = &nullChannel{dev: d, id: id, state: ChannelState{Volume: 1.0}}
	}
	return d
}

func (d *NullDevice) Init() error {
	d.mu.Lock()
	defer d.mu.Unlock()
	d.inited = true
	d.closed = false
	d.logf("init")
	return nil
}

func (d *NullDevice) Quit() error {
	d.mu.Lock()
	defer d.mu.Unlock()
	d.closed = true
	d.logf("quit")
	return nil
}

func (d *NullDevice) Load(path string) (Sound, error) {
	d.mu.Lock()
	defer d.mu.Unlock()
	d.logf("load %s", path)
	return nullSound(path), nil
}

func (d *NullDevice) Channel(id int) Channel {
	if id < 0 || id >= Capacity {
		return nil
	}
	return d.channels[id]
}

// State returns a snapshot of channel id.
func (d *NullDevice) State(id int) ChannelState {
	d.mu.Lock()
	defer d.mu.Unlock()
	return d.channels[id].state
}

// Calls returns a copy of the journal.
func (d *NullDevice) Calls() []string {
	d.mu.Lock()
	defer d.mu.Unlock()
	return append([]string(nil), d.calls...)
}

// Closed reports whether Quit has been called since the last Init.
func (d *NullDevice) Closed() bool {
	d.mu.Lock()
	defer d.mu.Unlock()
	return d.closed
}

// logf appends to the journal. d.mu must be held.
func (d *NullDevice) logf(format string, args ...interface{}) {
	if d.record {
		d.calls = append(d.calls, fmt.Sprintf(format, args...))
	}
}

type nullChannel struct {
	dev   *NullDevice
	id    int
	state ChannelState
}

func (c *nullChannel) Play(s Sound, loop bool, fadeIn time.Duration) error {
	if _, ok := s.(nullSound); !ok {
		return ErrUnsupportedSound
	}
	c.dev.mu.Lock()
	defer c.dev.mu.Unlock()
	c.state.Sound = s.Name()
	c.state.Playing = true
	c.state.Loop = loop
	c.state.FadeIn = fadeIn
	c.state.FadeOut = 0
	c.dev.logf("play %d %s loop=%t fadein=%v", c.id, s.Name(), loop, fadeIn)
	return nil
}

func (c *nullChannel) SetVolume(v float64) {
	c.dev.mu.Lock()
	defer c.dev.mu.Unlock()
	c.state.Volume = v
	c.dev.logf("volume %d %.2f", c.id, v)
}

func (c *nullChannel) Volume() float64 {
	c.dev.mu.Lock()
	defer c.dev.mu.Unlock()
	return c.state.Volume
}

func (c *nullChannel) Fadeout(d time.Duration) {
	c.dev.mu.Lock()
	defer c.dev.mu.Unlock()
	c.state.FadeOut = d
	c.state.Playing = false
	c.dev.logf("fadeout %d %v", c.id, d)
}

func (c *nullChannel) Stop() {
	c.dev.mu.Lock()
	defer c.dev.mu.Unlock()
	c.state.Playing = false
	c.state.Sound = ""
	c.dev.logf("stop %d", c.id)
}

var _ Device = (*NullDevice)(nil)
