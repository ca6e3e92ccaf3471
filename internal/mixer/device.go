package mixer

import "time"

// Sound is a decoded sample ready for playback on the Device that loaded it.
type Sound interface {
	// Name is the path the sound was loaded from.
	Name() string
}

// Device is an audio output with a fixed set of mixing channels.
type Device interface {
	Init() error
	Quit() error
	// Load decodes the file at path.
	Load(path string) (Sound, error)
	// Channel returns the mixing channel with the given id, or nil if the id
	// is out of range.
	Channel(id int) Channel
}

// Channel is a single mixing channel of a Device.
type Channel interface {
	// Play replaces whatever the channel is playing with s, fading it in
	// over fadeIn. A looped sound repeats until stopped.
	Play(s Sound, loop bool, fadeIn time.Duration) error
	SetVolume(v float64)
	Volume() float64
	// Fadeout fades the channel to silence over d. The channel stops
	// sounding afterwards.
	Fadeout(d time.Duration)
	Stop()
}
