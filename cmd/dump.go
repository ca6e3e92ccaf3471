package cmd

import (
	"github.com/warpdl/slumber/internal/mixer"
	"github.com/warpdl/slumber/internal/playback"
	"github.com/warpdl/slumber/internal/scheduler"
	"github.com/warpdl/slumber/pkg/logger"
)

// stateDump returns an action logging the scheduler queues, the channel
// pool and every stage.
func stateDump(sched *scheduler.Scheduler, pool *mixer.Pool, mgr *playback.Manager, l logger.Logger) scheduler.Action {
	return func() error {
		ready, deferred := sched.Pending()
		l.Info("[dump] scheduler: %d ready, %d deferred", ready, deferred)
		for _, id := range pool.Allocated() {
			v, err := pool.Volume(id)
			if err != nil {
				return err
			}
			l.Info("[dump] channel %d: volume %.2f", id, v)
		}
		for _, st := range mgr.Stages() {
			l.Info("[dump] stage %s: channel=%d sound=%s swapping=%t swapped=%t",
				st.Name(), st.Channel(), st.Sound(), st.Swapping(), st.Swapped())
		}
		return nil
	}
}
