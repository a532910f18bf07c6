package scheduler

import (
	"context"
	"fmt"
	"log/slog"
	"sync"
	"time"

	"golang.org/x/sync/semaphore"

	"shortfactory/internal/artifactstore"
	"shortfactory/internal/config"
	"shortfactory/internal/dashboard"
	"shortfactory/internal/logging"
	"shortfactory/internal/metrics"
	"shortfactory/internal/notifications"
	"shortfactory/internal/resilience"
	"shortfactory/internal/stage"
	"shortfactory/internal/stagecatalog"
	"shortfactory/internal/statestore"
)

// approvalPoolConcurrency bounds how many pending-approval items the
// approval stage checks concurrently. It has no config.StagePool entry of
// its own (see stagecatalog.Declaration.PoolSize), since it is a cheap
// dashboard read rather than a worker-bound external call, but it still
// needs a bound so a large backlog cannot spawn unbounded goroutines.
const approvalPoolConcurrency = 4

// itemLevelMaxAttempts bounds how many times a stage may be re-dispatched
// for the same item across discovery ticks after its resilience-layer
// retries are exhausted, before the item is marked permanently failed.
// This is a layer above internal/resilience.Manager's own per-call
// retries: each dispatch here is one full Manager.Call cycle, already
// retried internally up to the stage's Declaration.MaxAttempts.
const itemLevelMaxAttempts = 3

// Scheduler is the bounded work queue: a discovery loop paired with one
// worker-pool semaphore per registered stage.
type Scheduler struct {
	items      *statestore.Store
	dashboard  *dashboard.Adapter
	artifacts  *artifactstore.Store
	resilience *resilience.Manager
	notifier   notifications.Service
	logger     *slog.Logger
	workflow   config.Workflow
	stagePool  config.StagePool

	handlers map[string]stage.Handler
	pools    map[string]*semaphore.Weighted

	metrics *metrics.Registry

	mu       sync.Mutex
	inFlight map[string]bool
	wg       sync.WaitGroup
}

// SetMetrics attaches a metrics registry that process records per-stage
// throughput and latency into. A nil registry (the default) makes
// recording a no-op.
func (s *Scheduler) SetMetrics(r *metrics.Registry) {
	s.metrics = r
}

// New constructs a Scheduler wired to every collaborator it needs to run
// the full commit sequence for each registered stage. handlers must have
// one entry per stagecatalog.All() name; New panics if a stage is
// unregistered, since a missing handler would otherwise surface as a
// runtime dispatch failure on the item's first discovery tick.
func New(
	items *statestore.Store,
	dash *dashboard.Adapter,
	artifacts *artifactstore.Store,
	res *resilience.Manager,
	notifier notifications.Service,
	logger *slog.Logger,
	handlers map[string]stage.Handler,
	pool config.StagePool,
	workflow config.Workflow,
) *Scheduler {
	if logger == nil {
		logger = logging.NewNop()
	}
	if notifier == nil {
		notifier = notifications.Service(noopNotifier{})
	}

	pools := make(map[string]*semaphore.Weighted, len(stagecatalog.All()))
	for _, decl := range stagecatalog.All() {
		if _, ok := handlers[decl.Name]; !ok {
			panic(fmt.Sprintf("scheduler: no handler registered for stage %q", decl.Name))
		}
		size := int64(approvalPoolConcurrency)
		if decl.PoolSize != nil {
			if n := decl.PoolSize(pool); n > 0 {
				size = int64(n)
			}
		}
		pools[decl.Name] = semaphore.NewWeighted(size)
	}

	return &Scheduler{
		items:      items,
		dashboard:  dash,
		artifacts:  artifacts,
		resilience: res,
		notifier:   notifier,
		logger:     logger,
		workflow:   workflow,
		stagePool:  pool,
		handlers:   handlers,
		pools:      pools,
		inFlight:   make(map[string]bool),
	}
}

type noopNotifier struct{}

func (noopNotifier) Publish(context.Context, notifications.Event, notifications.Payload) error {
	return nil
}

func (s *Scheduler) discoveryInterval() time.Duration {
	seconds := s.workflow.DiscoveryIntervalSeconds
	if seconds <= 0 {
		seconds = 5
	}
	return time.Duration(seconds) * time.Second
}

func (s *Scheduler) drainDeadline() time.Duration {
	seconds := s.workflow.DrainDeadlineSeconds
	if seconds <= 0 {
		seconds = 120
	}
	return time.Duration(seconds) * time.Second
}

// queueCapacity bounds how many eligible items one stage admits from a
// single discovery pass; the stage's worker-pool semaphore (PoolSize)
// still bounds concurrent execution beneath that. Items past the bound
// are left for the next discovery tick rather than held in an explicit
// runtime queue, since this scheduler is poll-loop driven rather than
// channel-fed.
func (s *Scheduler) queueCapacity() int {
	if s.stagePool.QueueCapacity > 0 {
		return s.stagePool.QueueCapacity
	}
	return 64
}

func (s *Scheduler) tryClaim(itemID string) bool {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.inFlight[itemID] {
		return false
	}
	s.inFlight[itemID] = true
	return true
}

func (s *Scheduler) release(itemID string) {
	s.mu.Lock()
	defer s.mu.Unlock()
	delete(s.inFlight, itemID)
}
