package cmd

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/spf13/afero"
	"github.com/urfave/cli"

	"github.com/warpdl/slumber/cmd/common"
	"github.com/warpdl/slumber/internal/alarm"
	"github.com/warpdl/slumber/internal/meter"
	"github.com/warpdl/slumber/internal/mixer"
	"github.com/warpdl/slumber/internal/playback"
	"github.com/warpdl/slumber/internal/scheduler"
	"github.com/warpdl/slumber/pkg/logger"
)

// appFs is the filesystem stages are read from.
var appFs afero.Fs = afero.NewOsFs()

var errNoSounds = errors.New("no sounds directory provided")

func play(ctx *cli.Context) error {
	if soundsDir == "" {
		if ctx.Command.Name == "" {
			return common.Help(ctx)
		}
		return common.PrintErrWithCmdHelp(ctx, errNoSounds)
	}

	deadline, err := alarm.Deadline(time.Now(), stopAfter, stopAt)
	if err != nil {
		return err
	}

	l, err := newLogger(logFile, debug)
	if err != nil {
		return fmt.Errorf("open log file: %w", err)
	}
	defer func() {
		if err := l.Close(); err != nil {
			common.PrintRuntimeErr(ctx, "play", "close_logger", err)
		}
	}()

	dev, err := openDevice(l)
	if err != nil {
		return err
	}
	pool, err := mixer.NewPool(dev, l, mixer.WithCacheTTL(DEF_CACHE_TTL))
	if err != nil {
		return err
	}

	sched := scheduler.New(l)
	mgr, err := playback.NewManager(playback.Config{
		Scheduler: sched,
		Pool:      pool,
		Fs:        appFs,
		Root:      soundsDir,
		Log:       l,
	})
	if err != nil {
		_ = pool.Close()
		return err
	}
	if err := mgr.Start(); err != nil {
		sched.Stop()
		return err
	}

	if !deadline.IsZero() {
		alarm.Arm(sched, deadline, l)
	}
	if showMeter {
		meter.New(stderr, pool, sched, meter.WithWidth(DEF_METER_WIDTH)).Start()
	}
	if debug {
		stop := watchStateDump(sched, stateDump(sched, pool, mgr, l))
		defer stop()
	}

	runCtx, cancel := setupShutdownHandler()
	defer cancel()

	err = sched.Run(runCtx)
	sched.Stop()
	if err != nil && !errors.Is(err, context.Canceled) {
		return err
	}
	l.Info("Good night")
	return nil
}

// openDevice returns the audio output, or a silent device with --headless.
func openDevice(l logger.Logger) (mixer.Device, error) {
	if headless {
		l.Info("Running headless, no audio output")
		return mixer.NewNullDevice(false), nil
	}
	dev, err := mixer.NewOutputDevice(appFs, l)
	if errors.Is(err, mixer.ErrNoAudioBackend) {
		return nil, fmt.Errorf("%w (use --headless)", err)
	}
	return dev, err
}
