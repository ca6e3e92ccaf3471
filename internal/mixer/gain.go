package mixer

import (
	"encoding/binary"
	"errors"
	"io"
	"sync"
	"time"
)

const (
	// SampleRate is the output sample rate in Hz.
	SampleRate = 44100
	// channelCount is the number of interleaved output channels.
	channelCount = 2
	// frameSize is the size in bytes of one stereo signed 16-bit frame.
	frameSize = channelCount * 2
)

// gainReader scales 16-bit stereo PCM read from src by a gain that ramps
// linearly per frame. It implements device-level fade-in and fade-out; once a
// fade-out completes the reader reports io.EOF.
type gainReader struct {
	mu        sync.Mutex
	src       io.Reader
	gain      float64
	target    float64
	step      float64
	remaining int
	fadingOut bool
	silenced  bool
}

func newGainReader(src io.Reader, fadeIn time.Duration) *gainReader {
	g := &gainReader{src: src, gain: 1, target: 1}
	if fadeIn > 0 {
		g.gain = 0
		g.ramp(1, fadeIn)
	}
	return g
}

// fadeOut starts a ramp to silence over d from the current gain.
func (g *gainReader) fadeOut(d time.Duration) {
	g.mu.Lock()
	defer g.mu.Unlock()
	g.fadingOut = true
	g.ramp(0, d)
}

// ramp must be called with g.mu held or before the reader is shared.
func (g *gainReader) ramp(target float64, d time.Duration) {
	g.target = target
	frames := int(d.Seconds() * SampleRate)
	if frames <= 0 {
		g.gain = target
		g.remaining = 0
		g.silenced = g.fadingOut && target == 0
		return
	}
	g.step = (target - g.gain) / float64(frames)
	g.remaining = frames
}

func (g *gainReader) advance() {
	if g.remaining == 0 {
		return
	}
	g.gain += g.step
	g.remaining--
	if g.remaining == 0 {
		g.gain = g.target
		if g.fadingOut && g.target == 0 {
			g.silenced = true
		}
	}
}

func (g *gainReader) Read(p []byte) (int, error) {
	g.mu.Lock()
	defer g.mu.Unlock()
	if g.silenced {
		return 0, io.EOF
	}

	size := len(p) - len(p)%frameSize
	if size == 0 {
		return 0, nil
	}
	n, err := io.ReadFull(g.src, p[:size])
	if errors.Is(err, io.ErrUnexpectedEOF) {
		err = nil
	}
	n -= n % frameSize

	for i := 0; i < n; i += frameSize {
		g.advance()
		if g.gain == 1 {
			continue
		}
		for c := 0; c < channelCount; c++ {
			off := i + c*2
			s := int16(binary.LittleEndian.Uint16(p[off:]))
			binary.LittleEndian.PutUint16(p[off:], uint16(int16(float64(s)*g.gain)))
		}
	}
	return n, err
}
