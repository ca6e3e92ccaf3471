//go:build windows

package cmd

import "github.com/warpdl/slumber/internal/scheduler"

// watchStateDump is a no-op: Windows has no SIGUSR1.
func watchStateDump(sched *scheduler.Scheduler, dump scheduler.Action) func() {
	return func() {}
}
