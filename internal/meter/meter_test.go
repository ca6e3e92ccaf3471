package meter

import (
	"io"
	"testing"
	"time"

	"github.com/stretchr/testify/require"

	"github.com/warpdl/slumber/internal/mixer"
	"github.com/warpdl/slumber/internal/scheduler/schedulertest"
	"github.com/warpdl/slumber/pkg/logger"
)

func TestMeterTracksVolumes(t *testing.T) {
	log := logger.NewNopLogger()
	s, _ := schedulertest.New(log)
	pool, err := mixer.NewPool(mixer.NewNullDevice(false), log)
	require.NoError(t, err)

	a, err := pool.Allocate()
	require.NoError(t, err)
	b, err := pool.Allocate()
	require.NoError(t, err)
	require.NoError(t, pool.SetVolume(b, 0.42))

	m := New(io.Discard, pool, s, WithWidth(20), WithInterval(100*time.Millisecond))
	m.Start()
	schedulertest.RunFor(t, s, 50*time.Millisecond)

	require.Equal(t, int64(100), m.Current(a))
	require.Equal(t, int64(42), m.Current(b))
	require.Equal(t, int64(-1), m.Current(5))

	require.NoError(t, pool.SetVolume(a, 0.1))
	require.NoError(t, pool.Release(b))
	schedulertest.RunFor(t, s, 120*time.Millisecond)

	require.Equal(t, int64(10), m.Current(a))
	require.Equal(t, int64(0), m.Current(b))

	s.Stop()
	require.NoError(t, m.Close(), "closing twice is harmless")
}

func TestMeterStopsSamplingAfterClose(t *testing.T) {
	log := logger.NewNopLogger()
	s, _ := schedulertest.New(log)
	pool, err := mixer.NewPool(mixer.NewNullDevice(false), log)
	require.NoError(t, err)

	m := New(io.Discard, pool, s)
	m.Start()
	schedulertest.RunFor(t, s, 100*time.Millisecond)
	require.NoError(t, m.Close())

	schedulertest.RunFor(t, s, time.Second)
	ready, deferred := s.Pending()
	require.Zero(t, ready)
	require.Zero(t, deferred)
}
