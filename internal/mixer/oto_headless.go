//go:build headless

package mixer

import (
	"github.com/spf13/afero"

	"github.com/warpdl/slumber/pkg/logger"
)

// NewOutputDevice reports that this build has no speaker output. Use a
// NullDevice instead.
func NewOutputDevice(fs afero.Fs, l logger.Logger) (Device, error) {
	return nil, ErrNoAudioBackend
}
