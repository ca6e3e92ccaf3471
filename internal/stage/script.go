package stage

import (
	"bufio"
	"errors"
	"fmt"
	"io"
	"math"
	"strconv"
	"strings"
	"time"
)

var (
	ErrInvalidCommand  = errors.New("invalid command")
	ErrInvalidArgument = errors.New("invalid argument")
	ErrEmptyScript     = errors.New("script has no instructions")
	ErrMultipleSwaps   = errors.New("script has more than one swap")
	ErrNoSounds        = errors.New("stage has no sounds")
	ErrNoScript        = errors.New("stage has no " + ScriptName + " file")
	ErrNoChannel       = errors.New("stage has no channel")
)

// ScriptError locates a parse failure in a script.
type ScriptError struct {
	Line int
	Err  error
}

func (e *ScriptError) Error() string {
	return fmt.Sprintf("line %d: %v", e.Line, e.Err)
}

func (e *ScriptError) Unwrap() error {
	return e.Err
}

// Op is a script command.
type Op int

const (
	// OpPlay replaces the sound on the stage channel: play [seconds].
	OpPlay Op = iota
	// OpFadeout fades the stage channel to silence: fadeout <seconds>.
	OpFadeout
	// OpWait pauses the script: wait <seconds>.
	OpWait
	// OpSetVolume sets the stage channel volume: set_volume <0..1>.
	OpSetVolume
	// OpSwap cross-fades to a new sound on a second channel: swap <seconds>.
	OpSwap
	// OpRamp moves the channel volume linearly: ramp <seconds> <0..1>.
	OpRamp
)

var opStrings = [...]string{
	OpPlay:      "play",
	OpFadeout:   "fadeout",
	OpWait:      "wait",
	OpSetVolume: "set_volume",
	OpSwap:      "swap",
	OpRamp:      "ramp",
}

var opNames = func() map[string]Op {
	m := make(map[string]Op, len(opStrings))
	for op, name := range opStrings {
		m[name] = Op(op)
	}
	return m
}()

func (o Op) String() string {
	if o >= 0 && int(o) < len(opStrings) {
		return opStrings[o]
	}
	return "Op(" + strconv.Itoa(int(o)) + ")"
}

// Instruction is one parsed script line.
type Instruction struct {
	Op       Op
	Duration time.Duration
	Volume   float64
	Line     int
}

func (in Instruction) String() string {
	sec := strconv.FormatFloat(in.Duration.Seconds(), 'f', -1, 64)
	switch in.Op {
	case OpSetVolume:
		return fmt.Sprintf("%s %g", in.Op, in.Volume)
	case OpRamp:
		return fmt.Sprintf("%s %s %g", in.Op, sec, in.Volume)
	default:
		return fmt.Sprintf("%s %s", in.Op, sec)
	}
}

// ParseScript reads one instruction per line. Blank lines are skipped.
// Durations are in seconds and may be fractional.
func ParseScript(r io.Reader) ([]Instruction, error) {
	var script []Instruction
	scanner := bufio.NewScanner(r)
	line := 0
	for scanner.Scan() {
		line++
		fields := strings.Fields(scanner.Text())
		if len(fields) == 0 {
			continue
		}
		in, err := parseInstruction(fields)
		if err != nil {
			return nil, &ScriptError{Line: line, Err: err}
		}
		in.Line = line
		script = append(script, in)
	}
	if err := scanner.Err(); err != nil {
		return nil, err
	}
	return script, nil
}

func parseInstruction(fields []string) (Instruction, error) {
	name, args := fields[0], fields[1:]
	op, ok := opNames[name]
	if !ok {
		return Instruction{}, fmt.Errorf("%w: %q", ErrInvalidCommand, name)
	}
	in := Instruction{Op: op}

	var err error
	switch op {
	case OpPlay:
		if len(args) > 1 {
			return in, arity(name, "at most 1", len(args))
		}
		if len(args) == 1 {
			in.Duration, err = parseSeconds(args[0])
		}
	case OpFadeout, OpWait, OpSwap:
		if len(args) != 1 {
			return in, arity(name, "1", len(args))
		}
		in.Duration, err = parseSeconds(args[0])
	case OpSetVolume:
		if len(args) != 1 {
			return in, arity(name, "1", len(args))
		}
		in.Volume, err = parseVolume(args[0])
	case OpRamp:
		if len(args) != 2 {
			return in, arity(name, "2", len(args))
		}
		if in.Duration, err = parseSeconds(args[0]); err != nil {
			return in, err
		}
		in.Volume, err = parseVolume(args[1])
	}
	return in, err
}

func arity(name, want string, got int) error {
	return fmt.Errorf("%w: %s takes %s argument(s), got %d", ErrInvalidArgument, name, want, got)
}

func parseSeconds(s string) (time.Duration, error) {
	sec, err := strconv.ParseFloat(s, 64)
	if err != nil || math.IsNaN(sec) || sec < 0 {
		return 0, fmt.Errorf("%w: %q is not a duration in seconds", ErrInvalidArgument, s)
	}
	// float64(math.MaxInt64) rounds up to 2^63, so >= keeps the conversion in range
	ns := sec * float64(time.Second)
	if ns >= float64(math.MaxInt64) {
		return 0, fmt.Errorf("%w: %q seconds is too long", ErrInvalidArgument, s)
	}
	return time.Duration(ns), nil
}

func parseVolume(s string) (float64, error) {
	v, err := strconv.ParseFloat(s, 64)
	if err != nil || math.IsNaN(v) || v < 0 || v > 1 {
		return 0, fmt.Errorf("%w: %q is not a volume between 0 and 1", ErrInvalidArgument, s)
	}
	return v, nil
}

// validate checks properties of the script as a whole.
func validate(script []Instruction) error {
	if len(script) == 0 {
		return ErrEmptyScript
	}
	swaps := 0
	for _, in := range script {
		if in.Op != OpSwap {
			continue
		}
		if swaps++; swaps > 1 {
			return &ScriptError{Line: in.Line, Err: ErrMultipleSwaps}
		}
	}
	return nil
}
