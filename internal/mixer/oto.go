//go:build !headless

package mixer

import (
	"bytes"
	"fmt"
	"io"
	"sync"
	"time"

	"github.com/ebitengine/oto/v3"
	"github.com/hajimehoshi/ebiten/v2/audio"
	"github.com/hajimehoshi/ebiten/v2/audio/wav"
	"github.com/spf13/afero"

	"github.com/warpdl/slumber/pkg/logger"
)

// NewOutputDevice returns the speaker output for this build.
func NewOutputDevice(fs afero.Fs, l logger.Logger) (Device, error) {
	return NewOtoDevice(fs, l), nil
}

// OtoDevice plays decoded WAV samples through an oto context at
// SampleRate Hz, stereo, signed 16-bit little endian.
type OtoDevice struct {
	fs       afero.Fs
	log      logger.Logger
	ctx      *oto.Context
	channels [Capacity]*otoChannel
}

// NewOtoDevice returns a device reading sample files from fs. The output
// context is created by Init.
func NewOtoDevice(fs afero.Fs, l logger.Logger) *OtoDevice {
	return &OtoDevice{fs: fs, log: l}
}

func (d *OtoDevice) Init() error {
	if d.ctx != nil {
		return nil
	}
	op := &oto.NewContextOptions{
		SampleRate:   SampleRate,
		ChannelCount: channelCount,
		Format:       oto.FormatSignedInt16LE,
	}
	ctx, ready, err := oto.NewContext(op)
	if err != nil {
		return err
	}
	<-ready

	d.ctx = ctx
	for id := range d.channels {
		d.channels[id] = &otoChannel{ctx: ctx, volume: 1.0}
	}
	d.log.Debug("[mixer] Output ready: %d Hz, %d channels", SampleRate, channelCount)
	return nil
}

func (d *OtoDevice) Quit() error {
	for _, ch := range d.channels {
		if ch != nil {
			ch.Stop()
		}
	}
	if d.ctx == nil {
		return nil
	}
	return d.ctx.Suspend()
}

// Load decodes a WAV file, resampled to SampleRate, into memory.
func (d *OtoDevice) Load(path string) (Sound, error) {
	f, err := d.fs.Open(path)
	if err != nil {
		return nil, err
	}
	defer f.Close()

	stream, err := wav.DecodeWithSampleRate(SampleRate, f)
	if err != nil {
		return nil, fmt.Errorf("decode wav: %w", err)
	}
	pcm, err := io.ReadAll(stream)
	if err != nil {
		return nil, fmt.Errorf("read pcm: %w", err)
	}
	d.log.Debug("[mixer] Decoded %s (%d bytes)", path, len(pcm))
	return &pcmSound{name: path, pcm: pcm}, nil
}

func (d *OtoDevice) Channel(id int) Channel {
	if id < 0 || id >= Capacity || d.channels[id] == nil {
		return nil
	}
	return d.channels[id]
}

type pcmSound struct {
	name string
	pcm  []byte
}

func (s *pcmSound) Name() string { return s.name }

type otoChannel struct {
	ctx    *oto.Context
	player *oto.Player
	gain   *gainReader
	volume float64
	mu     sync.Mutex
}

func (c *otoChannel) Play(s Sound, loop bool, fadeIn time.Duration) error {
	snd, ok := s.(*pcmSound)
	if !ok {
		return ErrUnsupportedSound
	}
	c.Stop()

	c.mu.Lock()
	defer c.mu.Unlock()
	var src io.Reader = bytes.NewReader(snd.pcm)
	if loop {
		src = audio.NewInfiniteLoop(bytes.NewReader(snd.pcm), int64(len(snd.pcm)))
	}
	c.gain = newGainReader(src, fadeIn)
	c.player = c.ctx.NewPlayer(c.gain)
	c.player.SetVolume(c.volume)
	c.player.Play()
	return nil
}

func (c *otoChannel) SetVolume(v float64) {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.volume = v
	if c.player != nil {
		c.player.SetVolume(v)
	}
}

func (c *otoChannel) Volume() float64 {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.volume
}

func (c *otoChannel) Fadeout(d time.Duration) {
	c.mu.Lock()
	defer c.mu.Unlock()
	if c.gain != nil {
		c.gain.fadeOut(d)
	}
}

func (c *otoChannel) Stop() {
	c.mu.Lock()
	defer c.mu.Unlock()
	if c.player != nil {
		c.player.Pause()
		c.player.Close()
		c.player = nil
		c.gain = nil
	}
}

var _ Device = (*OtoDevice)(nil)
