package cmd

import (
	"fmt"
	"io"
	"log"
	"os"
	"strings"

	"github.com/urfave/cli"

	"github.com/warpdl/slumber/cmd/common"
	"github.com/warpdl/slumber/internal/mixer"
	"github.com/warpdl/slumber/internal/playback"
	"github.com/warpdl/slumber/internal/scheduler"
	"github.com/warpdl/slumber/pkg/logger"
)

// stdout is where check prints its report.
var stdout io.Writer = os.Stdout

func check(ctx *cli.Context) error {
	if soundsDir == "" {
		return common.PrintErrWithCmdHelp(ctx, errNoSounds)
	}
	l := logger.NewStandardLogger(log.New(stderr, "", log.LstdFlags), debug)

	pool, err := mixer.NewPool(mixer.NewNullDevice(false), l)
	if err != nil {
		return err
	}
	defer pool.Close()

	mgr, err := playback.NewManager(playback.Config{
		Scheduler: scheduler.New(l),
		Pool:      pool,
		Fs:        appFs,
		Root:      soundsDir,
		Log:       l,
	})
	if err != nil {
		return err
	}

	rule := strings.Repeat("─", RULE_WIDTH)
	for _, st := range mgr.Stages() {
		fmt.Fprintln(stdout, rule)
		fmt.Fprintln(stdout, common.Beaut(st.Name(), RULE_WIDTH))
		fmt.Fprintln(stdout, rule)
		fmt.Fprintf(stdout, "Sounds (%d):\n", len(st.Sounds()))
		for _, s := range st.Sounds() {
			fmt.Fprintf(stdout, "  %s\n", s)
		}
		fmt.Fprintln(stdout, "Script:")
		for _, in := range st.Script() {
			fmt.Fprintf(stdout, "  %3d  %s\n", in.Line, in)
		}
	}
	fmt.Fprintf(stdout, "\n%d stage(s) ready.\n", len(mgr.Stages()))
	return nil
}
