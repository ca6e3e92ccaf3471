//go:build !headless

package mixer

import (
	"bytes"
	"encoding/binary"
	"errors"
	"testing"

	"github.com/spf13/afero"

	"github.com/warpdl/slumber/pkg/logger"
)

// wavFile returns a canonical 16-bit PCM RIFF file holding pcm.
func wavFile(sampleRate, channels int, pcm []byte) []byte {
	var b bytes.Buffer
	le := binary.LittleEndian
	b.WriteString("RIFF")
	binary.Write(&b, le, uint32(36+len(pcm)))
	b.WriteString("WAVE")
	b.WriteString("fmt ")
	binary.Write(&b, le, uint32(16))
	binary.Write(&b, le, uint16(1)) // PCM
	binary.Write(&b, le, uint16(channels))
	binary.Write(&b, le, uint32(sampleRate))
	binary.Write(&b, le, uint32(sampleRate*channels*2))
	binary.Write(&b, le, uint16(channels*2))
	binary.Write(&b, le, uint16(16))
	b.WriteString("data")
	binary.Write(&b, le, uint32(len(pcm)))
	b.Write(pcm)
	return b.Bytes()
}

func newTestOtoDevice(t *testing.T, files map[string][]byte) *OtoDevice {
	t.Helper()
	fs := afero.NewMemMapFs()
	for name, data := range files {
		if err := afero.WriteFile(fs, name, data, 0o644); err != nil {
			t.Fatalf("write %s: %v", name, err)
		}
	}
	return NewOtoDevice(fs, logger.NewNopLogger())
}

func TestOtoDeviceLoadNativeRate(t *testing.T) {
	pcm := constantPCM(SampleRate/10, 1200)
	dev := newTestOtoDevice(t, map[string][]byte{
		"/sounds/rain.wav": wavFile(SampleRate, channelCount, pcm),
	})

	snd, err := dev.Load("/sounds/rain.wav")
	if err != nil {
		t.Fatalf("Load: %v", err)
	}
	if snd.Name() != "/sounds/rain.wav" {
		t.Fatalf("unexpected name %q", snd.Name())
	}
	got := snd.(*pcmSound).pcm
	if len(got) != len(pcm) {
		t.Fatalf("expected %d bytes of pcm, got %d", len(pcm), len(got))
	}
	if !bytes.Equal(got, pcm) {
		t.Fatalf("decoded pcm differs from the source samples")
	}
}

func TestOtoDeviceLoadResamples(t *testing.T) {
	const rate = SampleRate / 2
	frames := rate / 10
	dev := newTestOtoDevice(t, map[string][]byte{
		"/sounds/waves.wav": wavFile(rate, channelCount, constantPCM(frames, 800)),
	})

	snd, err := dev.Load("/sounds/waves.wav")
	if err != nil {
		t.Fatalf("Load: %v", err)
	}
	got := len(snd.(*pcmSound).pcm)
	want := 2 * frames * frameSize
	if got%frameSize != 0 {
		t.Fatalf("decoded pcm is not frame aligned: %d bytes", got)
	}
	if diff := got - want; diff < -4*frameSize || diff > 4*frameSize {
		t.Fatalf("expected about %d bytes after resampling, got %d", want, got)
	}
}

func TestOtoDeviceLoadErrors(t *testing.T) {
	dev := newTestOtoDevice(t, map[string][]byte{
		"/sounds/notes.wav": []byte("definitely not a riff file"),
	})

	if _, err := dev.Load("/sounds/missing.wav"); err == nil {
		t.Fatalf("expected error for a missing file")
	}
	if _, err := dev.Load("/sounds/notes.wav"); err == nil {
		t.Fatalf("expected error for a file that is not wav")
	}
}

func TestOtoDeviceChannelBeforeInit(t *testing.T) {
	dev := newTestOtoDevice(t, nil)
	if ch := dev.Channel(0); ch != nil {
		t.Fatalf("expected no channel before Init, got %v", ch)
	}
	if ch := dev.Channel(Capacity); ch != nil {
		t.Fatalf("expected no channel out of range, got %v", ch)
	}
	if err := dev.Quit(); err != nil {
		t.Fatalf("Quit before Init: %v", err)
	}
}

func TestSoundsAreDeviceSpecific(t *testing.T) {
	oc := &otoChannel{volume: 1.0}
	if err := oc.Play(nullSound("/sounds/rain.wav"), true, 0); !errors.Is(err, ErrUnsupportedSound) {
		t.Fatalf("expected ErrUnsupportedSound from oto channel, got %v", err)
	}

	null := NewNullDevice(false)
	pcm := &pcmSound{name: "/sounds/rain.wav"}
	if err := null.Channel(0).Play(pcm, true, 0); !errors.Is(err, ErrUnsupportedSound) {
		t.Fatalf("expected ErrUnsupportedSound from null channel, got %v", err)
	}
}
