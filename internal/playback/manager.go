// Package playback discovers sound stages and starts them on the scheduler.
package playback

import (
	"errors"
	"fmt"
	"math/rand/v2"
	"path/filepath"
	"sort"

	"github.com/spf13/afero"

	"github.com/warpdl/slumber/internal/fade"
	"github.com/warpdl/slumber/internal/mixer"
	"github.com/warpdl/slumber/internal/scheduler"
	"github.com/warpdl/slumber/internal/stage"
	"github.com/warpdl/slumber/pkg/logger"
)

// ErrNoStages is returned when the sounds directory holds no usable stage.
var ErrNoStages = errors.New("no valid stages found")

// Config holds the collaborators of a Manager.
type Config struct {
	Scheduler *scheduler.Scheduler
	Pool      *mixer.Pool
	Fader     *fade.Engine
	Fs        afero.Fs
	// Root is the sounds directory. Each subdirectory is a stage.
	Root string
	Log  logger.Logger
	// Rand is shared by all stages. Nil uses a randomly seeded source.
	Rand *rand.Rand
}

// Manager owns the stages found under a sounds directory.
type Manager struct {
	sched  *scheduler.Scheduler
	pool   *mixer.Pool
	log    logger.Logger
	stages []*stage.Stage
}

// NewManager loads every valid stage under cfg.Root, in lexical order.
// Invalid stage directories are logged and skipped.
func NewManager(cfg Config) (*Manager, error) {
	entries, err := afero.ReadDir(cfg.Fs, cfg.Root)
	if err != nil {
		return nil, fmt.Errorf("read sounds directory: %w", err)
	}
	sort.Slice(entries, func(i, j int) bool { return entries[i].Name() < entries[j].Name() })

	if cfg.Fader == nil {
		cfg.Fader = fade.New(cfg.Pool, cfg.Scheduler, cfg.Log)
	}
	deps := stage.Deps{
		Scheduler: cfg.Scheduler,
		Mixer:     cfg.Pool,
		Fader:     cfg.Fader,
		Log:       cfg.Log,
		Rand:      cfg.Rand,
	}

	m := &Manager{sched: cfg.Scheduler, pool: cfg.Pool, log: cfg.Log}
	cfg.Log.Info("Loading sounds from: %s", cfg.Root)
	for _, e := range entries {
		dir := filepath.Join(cfg.Root, e.Name())
		if !e.IsDir() {
			cfg.Log.Warning("Invalid stage: %s -- it is not a directory", dir)
			continue
		}
		st, err := stage.Load(cfg.Fs, dir, deps)
		if err != nil {
			cfg.Log.Warning("Invalid stage: %s -- %v", dir, err)
			continue
		}
		cfg.Log.Debug("Found stage %s with sounds %v", st.Name(), st.Sounds())
		m.stages = append(m.stages, st)
	}
	if len(m.stages) == 0 {
		return nil, fmt.Errorf("%s: %w", cfg.Root, ErrNoStages)
	}
	return m, nil
}

// Start gives every stage a channel and begins its cycle. A stage that
// cannot get a channel is skipped. The pool is closed when the scheduler
// stops.
func (m *Manager) Start() error {
	started := 0
	for _, st := range m.stages {
		ch, err := m.pool.Allocate()
		if err != nil {
			m.log.Error("Cannot start stage %s: %v", st.Name(), err)
			continue
		}
		st.Start(ch)
		started++
	}
	m.sched.EnqueueShutdown(m.pool.Close)
	if started == 0 {
		return ErrNoStages
	}
	return nil
}

// Stages returns the loaded stages in start order.
func (m *Manager) Stages() []*stage.Stage {
	return append([]*stage.Stage(nil), m.stages...)
}
