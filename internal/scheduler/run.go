package scheduler

import (
	"context"
	"time"

	"shortfactory/internal/logging"
	"shortfactory/internal/stagecatalog"
	"shortfactory/internal/statestore"
)

// Run drives the discovery loop until ctx is canceled, then waits up to
// the configured drain deadline for in-flight stages to finish before
// returning.
func (s *Scheduler) Run(ctx context.Context) error {
	interval := s.discoveryInterval()
	ticker := time.NewTicker(interval)
	defer ticker.Stop()

	s.logger.Info("scheduler started", logging.Duration("discovery_interval", interval))
	for {
		s.discover(ctx)
		select {
		case <-ctx.Done():
			s.logger.Info("scheduler stopping, draining in-flight stages")
			return s.drain()
		case <-ticker.C:
		}
	}
}

// RunOnce performs a single discovery pass, dispatches every eligible
// item, and waits for all of them to finish before returning. Used by the
// orchestrator's run-once mode.
func (s *Scheduler) RunOnce(ctx context.Context) error {
	s.discover(ctx)
	return s.drain()
}

func (s *Scheduler) drain() error {
	done := make(chan struct{})
	go func() {
		s.wg.Wait()
		close(done)
	}()
	select {
	case <-done:
		return nil
	case <-time.After(s.drainDeadline()):
		s.logger.Warn("drain deadline exceeded, in-flight stages left running")
		return context.DeadlineExceeded
	}
}

func (s *Scheduler) discover(ctx context.Context) {
	capacity := s.queueCapacity()
	for _, decl := range stagecatalog.All() {
		items, err := s.items.ListByStatus(ctx, decl.FromStatus)
		if err != nil {
			s.logger.Error("failed to list items for stage",
				logging.String(logging.FieldStage, decl.Name), logging.Error(err))
			continue
		}
		if len(items) > capacity {
			s.logger.Debug("stage queue capacity exceeded, deferring remainder to next tick",
				logging.String(logging.FieldStage, decl.Name),
				logging.Int("eligible", len(items)),
				logging.Int("admitted", capacity))
			items = items[:capacity]
		}
		for _, item := range items {
			s.dispatch(ctx, decl, item, false)
		}
	}
	s.discoverRetryable(ctx)
}

func (s *Scheduler) discoverRetryable(ctx context.Context) {
	due, err := s.items.ListRetryable(ctx, time.Now())
	if err != nil {
		s.logger.Error("failed to list retryable items", logging.Error(err))
		return
	}
	for _, item := range due {
		decl, ok := stagecatalog.Lookup(item.FailedStage)
		if !ok {
			s.logger.Warn("retryable item references unknown stage",
				logging.String(logging.FieldItemID, item.ItemID),
				logging.String("failed_stage", item.FailedStage))
			continue
		}
		s.dispatch(ctx, decl, item, true)
	}
}

// dispatch claims item and its stage's pool slot without blocking; if
// either is unavailable this tick, the item is simply reconsidered on the
// next discovery pass. isRetry skips the FromStatus match that
// Declaration.eligible enforces, since a retryable item's status is
// StatusRetryableError rather than the stage's FromStatus; its
// Precondition (if any) still applies.
func (s *Scheduler) dispatch(ctx context.Context, decl stagecatalog.Declaration, item *statestore.Item, isRetry bool) {
	if isRetry {
		if decl.Precondition != nil && !decl.Precondition(item) {
			return
		}
	} else if !decl.eligible(item) {
		return
	}
	if !s.tryClaim(item.ItemID) {
		return
	}

	pool := s.pools[decl.Name]
	if !pool.TryAcquire(1) {
		s.release(item.ItemID)
		return
	}

	s.wg.Add(1)
	go func() {
		defer s.wg.Done()
		defer pool.Release(1)
		defer s.release(item.ItemID)
		s.runStage(ctx, decl, item)
	}()
}

func (s *Scheduler) runStage(ctx context.Context, decl stagecatalog.Declaration, item *statestore.Item) {
	if err := s.items.UpdateHeartbeat(ctx, item.ItemID); err != nil {
		s.logger.Debug("failed to stamp heartbeat before dispatch",
			logging.String(logging.FieldItemID, item.ItemID), logging.Error(err))
	}
	err := s.artifacts.WithLock(ctx, item.ItemID, func() error {
		return s.process(ctx, decl, item)
	})
	if err != nil {
		s.logger.Debug("stage dispatch ended with error",
			logging.String(logging.FieldStage, decl.Name),
			logging.String(logging.FieldItemID, item.ItemID),
			logging.Error(err))
	}
}
