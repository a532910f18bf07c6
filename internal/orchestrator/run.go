package orchestrator

import (
	"context"
	"time"

	"shortfactory/internal/logging"
	"shortfactory/internal/notifications"
)

// staleHeartbeatAfter bounds how long an in-flight item's heartbeat may go
// unrefreshed before ReclaimStaleProcessing rolls it back to its
// pre-stage status, on the assumption its worker died. There is no
// config knob for this in either the dashboard schema or the teacher's
// config, so it is fixed at no less than any single operation-class
// timeout (internal/resilience's longest is the stream class, 600s).
const staleHeartbeatAfter = 10 * time.Minute

// RunOnce performs one discovery-and-drain pass across every stage, runs
// every producer once, and sweeps garbage before returning. This backs
// the CLI's `run-once` command.
func (o *Orchestrator) RunOnce(ctx context.Context) error {
	o.runProducers(ctx)
	if err := o.scheduler.RunOnce(ctx); err != nil {
		return err
	}
	if n, err := o.RunGC(ctx); err != nil {
		o.logger.Warn("garbage collection failed", logging.Error(err))
	} else if n > 0 {
		o.logger.Info("garbage collection removed terminal item artifacts", logging.Int("count", n))
	}
	return nil
}

// RunLoop drives the continuous approval watch (the scheduler's own
// discovery loop, which already covers every registry stage including
// approval) alongside the producers' daily schedule, until ctx is
// canceled. This backs the CLI's `run-loop` command.
func (o *Orchestrator) RunLoop(ctx context.Context) error {
	schedulerDone := make(chan error, 1)
	go func() { schedulerDone <- o.scheduler.Run(ctx) }()

	dailyTicker := time.NewTicker(time.Minute)
	defer dailyTicker.Stop()
	reclaimTicker := time.NewTicker(staleHeartbeatAfter / 2)
	defer reclaimTicker.Stop()

	o.runProducersIfDue(ctx, time.Now())

	for {
		select {
		case <-ctx.Done():
			err := <-schedulerDone
			o.publish(context.Background(), notifications.EventPipelineDrained, nil)
			return err
		case err := <-schedulerDone:
			o.publish(context.Background(), notifications.EventPipelineDrained, nil)
			return err
		case now := <-dailyTicker.C:
			o.runProducersIfDue(ctx, now)
		case <-reclaimTicker.C:
			n, err := reclaimStaleHeartbeats(ctx, o.items, staleHeartbeatAfter)
			if err != nil {
				o.logger.Warn("failed to reclaim stale in-flight items", logging.Error(err))
			} else if n > 0 {
				o.logger.Info("reclaimed stale in-flight items", logging.Int64("count", n))
			}
		}
	}
}

// runProducersIfDue fires the producer sweep once per calendar day at or
// after Workflow.DailyRunHour.
func (o *Orchestrator) runProducersIfDue(ctx context.Context, now time.Time) {
	hour := o.cfg.Workflow.DailyRunHour
	if now.Hour() < hour {
		return
	}

	o.mu.Lock()
	due := now.YearDay() != o.lastProduce.YearDay() || now.Year() != o.lastProduce.Year()
	if due {
		o.lastProduce = now
	}
	o.mu.Unlock()

	if !due {
		return
	}
	o.runProducers(ctx)
}
