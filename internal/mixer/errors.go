package mixer

import "errors"

var (
	// ErrResourceExhausted is returned by Allocate when every channel is in use.
	ErrResourceExhausted = errors.New("no free channel")
	// ErrInvalidChannel is returned for an out-of-range or unallocated channel id.
	ErrInvalidChannel = errors.New("invalid channel")
	// ErrUnsupportedSound is returned when a device is handed a Sound it did
	// not load.
	ErrUnsupportedSound = errors.New("sound was not loaded by this device")
	// ErrNoAudioBackend is returned by NewOutputDevice in builds without an
	// audio backend.
	ErrNoAudioBackend = errors.New("audio backend not available in this build")
)
