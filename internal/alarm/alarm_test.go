package alarm

import (
	"errors"
	"strings"
	"testing"
	"time"

	"github.com/stretchr/testify/require"

	"github.com/warpdl/slumber/internal/scheduler"
	"github.com/warpdl/slumber/internal/scheduler/schedulertest"
	"github.com/warpdl/slumber/pkg/logger"
)

var tenPM = time.Date(2024, time.March, 10, 22, 0, 0, 0, time.UTC)

func TestDeadline(t *testing.T) {
	tests := []struct {
		name      string
		stopAfter float64
		stopAt    string
		want      time.Time
		wantErr   error
	}{
		{name: "unset", want: time.Time{}},
		{name: "minutes", stopAfter: 90, want: tenPM.Add(90 * time.Minute)},
		{name: "fractional minutes", stopAfter: 0.5, want: tenPM.Add(30 * time.Second)},
		{name: "negative minutes", stopAfter: -5, wantErr: ErrInvalidMinutes},
		{name: "cron tomorrow morning", stopAt: "30 6 * * *", want: time.Date(2024, time.March, 11, 6, 30, 0, 0, time.UTC)},
		{name: "both set", stopAfter: 10, stopAt: "30 6 * * *", wantErr: ErrExclusive},
		{name: "invalid cron", stopAt: "61 * * * *", wantErr: ErrInvalidCron},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got, err := Deadline(tenPM, tt.stopAfter, tt.stopAt)
			if tt.wantErr != nil {
				require.ErrorIs(t, err, tt.wantErr)
				return
			}
			require.NoError(t, err)
			require.True(t, tt.want.Equal(got), "expected %v, got %v", tt.want, got)
		})
	}
}

func TestValidateCron(t *testing.T) {
	valid := []string{"0 7 * * *", "*/15 * * * *", "30 6 * * 1-5"}
	for _, expr := range valid {
		if err := ValidateCron(expr); err != nil {
			t.Errorf("expected %q to be valid, got %v", expr, err)
		}
	}

	invalid := []string{"", "* * * *", "0 0 7 * * *", "60 * * * *", "not a cron"}
	for _, expr := range invalid {
		if err := ValidateCron(expr); !errors.Is(err, ErrInvalidCron) {
			t.Errorf("expected %q to be rejected, got %v", expr, err)
		}
	}
}

func TestNextCronHorizon(t *testing.T) {
	// Fires once a year, on January 1st.
	_, err := NextCron("0 0 1 1 *", tenPM)
	require.ErrorIs(t, err, ErrCronTooFar)

	next, err := NextCron("0 * * * *", tenPM)
	require.NoError(t, err)
	require.True(t, next.Equal(tenPM.Add(time.Hour)), "got %v", next)
}

func TestArmStopsScheduler(t *testing.T) {
	log := logger.NewMockLogger()
	s, clk := schedulertest.New(log, scheduler.WithIdleSleep(time.Second))
	shutdown := 0
	s.EnqueueShutdown(func() error {
		shutdown++
		return nil
	})

	deadline := clk.Now().Add(90 * time.Minute)
	Arm(s, deadline, log)

	schedulertest.RunFor(t, s, 3*time.Hour)

	require.Equal(t, 1, shutdown)
	require.False(t, clk.Now().Before(deadline))
	require.True(t, clk.Now().Before(deadline.Add(time.Minute)), "stopped at %v", clk.Now())
	require.True(t, strings.Contains(log.InfoCalls[0], "from now"), log.InfoCalls[0])
}
