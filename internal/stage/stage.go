package stage

import (
	"bytes"
	"fmt"
	"math/rand/v2"
	"path/filepath"
	"sort"
	"time"

	"github.com/spf13/afero"

	"github.com/warpdl/slumber/internal/scheduler"
	"github.com/warpdl/slumber/pkg/logger"
)

// ScriptName is the file name of a stage script.
const ScriptName = "SLUMBER"

// SoundPattern matches the samples of a stage.
const SoundPattern = "*.wav"

// Mixer is the channel service a stage plays through.
type Mixer interface {
	Allocate() (int, error)
	Release(id int) error
	Play(id int, path string, fadeIn time.Duration) error
	SetVolume(id int, v float64) error
	Volume(id int) (float64, error)
	Fadeout(id int, d time.Duration) error
}

// Fader runs linear volume ramps.
type Fader interface {
	Fade(id int, d time.Duration, start, target float64, onComplete func()) error
}

// Deps are the collaborators shared by every stage.
type Deps struct {
	Scheduler *scheduler.Scheduler
	Mixer     Mixer
	Fader     Fader
	Log       logger.Logger
	// Rand picks sounds. A nil Rand uses a randomly seeded source.
	Rand *rand.Rand
}

// Stage is the interpreter state of one stage. All methods except the
// constructors must be called from the scheduler goroutine.
type Stage struct {
	name   string
	sounds []string
	script []Instruction

	sched *scheduler.Scheduler
	mixer Mixer
	fader Fader
	log   logger.Logger
	rand  *rand.Rand

	channel     int
	sound       string
	swapping    bool
	swapChannel int
	swapSound   string
	swapped     bool
	cursor      int
}

// Load reads the stage in dir: its SLUMBER script and its WAV samples, in
// lexical order.
func Load(fs afero.Fs, dir string, deps Deps) (*Stage, error) {
	data, err := afero.ReadFile(fs, filepath.Join(dir, ScriptName))
	if err != nil {
		return nil, fmt.Errorf("%w: %v", ErrNoScript, err)
	}
	sounds, err := listSounds(fs, dir)
	if err != nil {
		return nil, err
	}

	script, err := ParseScript(bytes.NewReader(data))
	if err != nil {
		return nil, fmt.Errorf("%s: %w", ScriptName, err)
	}
	return New(filepath.Base(dir), sounds, script, deps)
}

// listSounds returns the samples in dir matching SoundPattern, sorted. Only
// entry names are matched, so dir may contain pattern characters.
func listSounds(fs afero.Fs, dir string) ([]string, error) {
	entries, err := afero.ReadDir(fs, dir)
	if err != nil {
		return nil, err
	}
	var sounds []string
	for _, e := range entries {
		if e.IsDir() {
			continue
		}
		if ok, _ := filepath.Match(SoundPattern, e.Name()); ok {
			sounds = append(sounds, filepath.Join(dir, e.Name()))
		}
	}
	sort.Strings(sounds)
	return sounds, nil
}

// New returns an idle stage. The script must not be empty and may contain
// at most one swap.
func New(name string, sounds []string, script []Instruction, deps Deps) (*Stage, error) {
	if len(sounds) == 0 {
		return nil, ErrNoSounds
	}
	if err := validate(script); err != nil {
		return nil, err
	}
	r := deps.Rand
	if r == nil {
		r = rand.New(rand.NewPCG(rand.Uint64(), rand.Uint64()))
	}
	return &Stage{
		name:        name,
		sounds:      append([]string(nil), sounds...),
		script:      append([]Instruction(nil), script...),
		sched:       deps.Scheduler,
		mixer:       deps.Mixer,
		fader:       deps.Fader,
		log:         deps.Log,
		rand:        r,
		channel:     -1,
		swapChannel: -1,
		cursor:      -1,
	}, nil
}

// Start gives the stage its channel and begins the first cycle on the next
// scheduler pass.
func (s *Stage) Start(channel int) {
	s.channel = channel
	s.log.Info("[%s] Starting stage on channel %d with %d sounds", s.name, channel, len(s.sounds))
	s.sched.Go(s.advance)
}

func (s *Stage) Name() string { return s.name }

// Channel is the channel currently owned by the stage, or -1.
func (s *Stage) Channel() int { return s.channel }

// Sound is the sample playing on Channel.
func (s *Stage) Sound() string { return s.sound }

// Swapping reports whether a cross-fade begun this cycle is in progress.
func (s *Stage) Swapping() bool { return s.swapping }

// Swapped reports whether a swap completed at the last cycle boundary and no
// play has run since.
func (s *Stage) Swapped() bool { return s.swapped }

func (s *Stage) Script() []Instruction { return append([]Instruction(nil), s.script...) }

func (s *Stage) Sounds() []string { return append([]string(nil), s.sounds...) }

// advance moves to the next instruction and executes it, wrapping to the
// top of the script at the end of a cycle.
func (s *Stage) advance() (scheduler.Resume, error) {
	s.cursor++
	if s.cursor >= len(s.script) {
		if err := s.completeCycle(); err != nil {
			return scheduler.Done(), err
		}
		s.cursor = 0
	}
	in := s.script[s.cursor]
	s.log.Debug("[%s] Running next command: %s", s.name, in)
	return s.exec(in)
}

func (s *Stage) exec(in Instruction) (scheduler.Resume, error) {
	if s.channel < 0 {
		return scheduler.Done(), fmt.Errorf("[%s] %s: %w", s.name, in.Op, ErrNoChannel)
	}
	switch in.Op {
	case OpPlay:
		return s.play(in.Duration)
	case OpFadeout:
		if err := s.mixer.Fadeout(s.channel, in.Duration); err != nil {
			return scheduler.Done(), s.fail(in, err)
		}
		return s.wait(in.Duration)
	case OpWait:
		return s.wait(in.Duration)
	case OpSetVolume:
		if err := s.mixer.SetVolume(s.channel, in.Volume); err != nil {
			return scheduler.Done(), s.fail(in, err)
		}
		return s.wait(0)
	case OpSwap:
		return s.swap(in.Duration)
	case OpRamp:
		return s.ramp(in.Duration, in.Volume)
	}
	return scheduler.Done(), s.fail(in, ErrInvalidCommand)
}

func (s *Stage) wait(d time.Duration) (scheduler.Resume, error) {
	return scheduler.Sleep(d, s.advance), nil
}

func (s *Stage) play(d time.Duration) (scheduler.Resume, error) {
	if s.swapped {
		// The swap already started the next sound.
		s.swapped = false
		return s.wait(d)
	}
	sound := s.pick(s.sound)
	if err := s.mixer.Play(s.channel, sound, d); err != nil {
		return scheduler.Done(), fmt.Errorf("[%s] play: %w", s.name, err)
	}
	s.sound = sound
	s.log.Info("[%s] Starting sound %s", s.name, sound)
	return s.wait(d)
}

func (s *Stage) swap(d time.Duration) (scheduler.Resume, error) {
	ch, err := s.mixer.Allocate()
	if err != nil {
		return scheduler.Done(), fmt.Errorf("[%s] swap: %w", s.name, err)
	}
	sound := s.pick(s.sound)
	if err := s.mixer.Play(ch, sound, d); err != nil {
		_ = s.mixer.Release(ch)
		return scheduler.Done(), fmt.Errorf("[%s] swap: %w", s.name, err)
	}
	if err := s.mixer.Fadeout(s.channel, d); err != nil {
		_ = s.mixer.Release(ch)
		return scheduler.Done(), fmt.Errorf("[%s] swap: %w", s.name, err)
	}
	s.swapChannel, s.swapSound = ch, sound
	s.swapping, s.swapped = true, false
	s.log.Info("[%s] Swapping to %s on channel %d", s.name, sound, ch)
	return s.wait(d)
}

func (s *Stage) ramp(d time.Duration, target float64) (scheduler.Resume, error) {
	cur, err := s.mixer.Volume(s.channel)
	if err != nil {
		return scheduler.Done(), fmt.Errorf("[%s] ramp: %w", s.name, err)
	}
	return scheduler.Await(func(wake func()) error {
		return s.fader.Fade(s.channel, d, cur, target, wake)
	}, s.advance), nil
}

// completeCycle finishes a swap begun during the cycle that just ended: the
// old channel is released and the swap channel becomes the stage channel.
func (s *Stage) completeCycle() error {
	if !s.swapping {
		return nil
	}
	if err := s.mixer.Release(s.channel); err != nil {
		return fmt.Errorf("[%s] complete swap: %w", s.name, err)
	}
	s.log.Debug("[%s] Swap complete: channel %d -> %d", s.name, s.channel, s.swapChannel)
	s.channel, s.sound = s.swapChannel, s.swapSound
	s.swapChannel, s.swapSound = -1, ""
	s.swapping, s.swapped = false, true
	return nil
}

// pick chooses a random sound, avoiding prev when there is another choice.
func (s *Stage) pick(prev string) string {
	candidates := s.sounds
	if len(s.sounds) > 1 {
		candidates = make([]string, 0, len(s.sounds))
		for _, snd := range s.sounds {
			if snd != prev {
				candidates = append(candidates, snd)
			}
		}
		if len(candidates) == 0 {
			candidates = s.sounds
		}
	}
	return candidates[s.rand.IntN(len(candidates))]
}

func (s *Stage) fail(in Instruction, err error) error {
	return fmt.Errorf("[%s] %s (line %d): %w", s.name, in.Op, in.Line, err)
}
