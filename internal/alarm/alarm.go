// Package alarm stops playback at a chosen time.
package alarm

import (
	"errors"
	"fmt"
	"math"
	"strings"
	"time"

	"github.com/adhocore/gronx"
	"github.com/dustin/go-humanize"

	"github.com/warpdl/slumber/internal/scheduler"
	"github.com/warpdl/slumber/pkg/logger"
)

// Horizon is how far ahead a cron expression must fire to be accepted.
const Horizon = 24 * time.Hour

var (
	ErrInvalidMinutes = errors.New("invalid --stop-after, expected a positive number of minutes")
	ErrInvalidCron    = errors.New("invalid cron expression, expected 5-field format (minute hour day-of-month month day-of-week)")
	ErrCronTooFar     = errors.New("cron expression does not fire within 24 hours")
	ErrExclusive      = errors.New("flags --stop-after and --stop-at are mutually exclusive")
)

// Deadline resolves the stop flags against now. It returns the zero time
// when neither flag is set.
func Deadline(now time.Time, stopAfter float64, stopAt string) (time.Time, error) {
	if stopAfter != 0 && stopAt != "" {
		return time.Time{}, ErrExclusive
	}
	if stopAt != "" {
		return NextCron(stopAt, now)
	}
	if stopAfter == 0 {
		return time.Time{}, nil
	}
	if stopAfter < 0 || math.IsNaN(stopAfter) || math.IsInf(stopAfter, 0) {
		return time.Time{}, fmt.Errorf("%w: %v", ErrInvalidMinutes, stopAfter)
	}
	return now.Add(time.Duration(stopAfter * float64(time.Minute))), nil
}

// ValidateCron checks that expr is a valid 5-field cron expression.
func ValidateCron(expr string) error {
	// gronx also accepts a 6-field form with seconds.
	if len(strings.Fields(expr)) != 5 || !gronx.IsValid(expr) {
		return fmt.Errorf("%w: %q", ErrInvalidCron, expr)
	}
	return nil
}

// NextCron returns the next time after from that expr fires. The time must
// fall within Horizon.
func NextCron(expr string, from time.Time) (time.Time, error) {
	if err := ValidateCron(expr); err != nil {
		return time.Time{}, err
	}
	next, err := gronx.NextTickAfter(expr, from, false)
	if err != nil {
		return time.Time{}, fmt.Errorf("%w: %q: %v", ErrInvalidCron, expr, err)
	}
	if !next.Before(from.Add(Horizon)) {
		return time.Time{}, fmt.Errorf("%w: %q next fires %s", ErrCronTooFar, expr, next.Format(time.RFC1123))
	}
	return next, nil
}

// Arm stops s once its clock reaches deadline.
func Arm(s *scheduler.Scheduler, deadline time.Time, l logger.Logger) {
	l.Info("Playback will stop %s (%s)",
		humanize.RelTime(deadline, s.Now(), "ago", "from now"),
		deadline.Format(time.Kitchen))
	s.EnqueueAt(func() error {
		l.Info("Stop time reached, shutting down")
		s.Stop()
		return nil
	}, deadline)
}
