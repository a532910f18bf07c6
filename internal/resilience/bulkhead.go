package resilience

import (
	"context"
	"errors"
	"sync/atomic"
	"time"

	"golang.org/x/sync/semaphore"
)

// errQueueFull is returned immediately (no waiting at all) once the
// bulkhead's bounded wait queue is already at capacity, distinguishing a
// full queue from a queue-timeout expiry.
var errQueueFull = errors.New("bulkhead wait queue full")

// bulkhead bounds the number of concurrent in-flight calls to one service.
// Additional callers wait in a bounded queue up to their own queue
// timeout; once the queue itself is full, new callers fail fast instead of
// joining an unbounded line.
type bulkhead struct {
	sem          *semaphore.Weighted
	queueTimeout time.Duration
	queueDepth   int64
	queued       atomic.Int64
}

func newBulkhead(maxInFlight int64, queueDepth int64, queueTimeout time.Duration) *bulkhead {
	if maxInFlight < 1 {
		maxInFlight = 1
	}
	if queueDepth < 0 {
		queueDepth = 0
	}
	return &bulkhead{
		sem:          semaphore.NewWeighted(maxInFlight),
		queueTimeout: queueTimeout,
		queueDepth:   queueDepth,
	}
}

// acquire blocks until a slot is free, the queue timeout elapses, or ctx is
// done. The returned release func must be called exactly once.
func (b *bulkhead) acquire(ctx context.Context) (release func(), err error) {
	if !b.sem.TryAcquire(1) {
		if b.queued.Load() >= b.queueDepth {
			return nil, errQueueFull
		}
		b.queued.Add(1)
		defer b.queued.Add(-1)

		waitCtx := ctx
		var cancel context.CancelFunc
		if b.queueTimeout > 0 {
			waitCtx, cancel = context.WithTimeout(ctx, b.queueTimeout)
			defer cancel()
		}
		if err := b.sem.Acquire(waitCtx, 1); err != nil {
			return nil, err
		}
	}
	return func() { b.sem.Release(1) }, nil
}
