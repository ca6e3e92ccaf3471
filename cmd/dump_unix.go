//go:build !windows

package cmd

import (
	"os"
	"os/signal"

	"golang.org/x/sys/unix"

	"github.com/warpdl/slumber/internal/scheduler"
)

// watchStateDump runs dump on the scheduler every time the process receives
// SIGUSR1. The returned function stops watching.
func watchStateDump(sched *scheduler.Scheduler, dump scheduler.Action) func() {
	sigChan := make(chan os.Signal, 1)
	signal.Notify(sigChan, unix.SIGUSR1)
	done := make(chan struct{})

	go func() {
		for {
			select {
			case <-sigChan:
				sched.Enqueue(dump)
			case <-done:
				return
			}
		}
	}()

	return func() {
		signal.Stop(sigChan)
		close(done)
	}
}
