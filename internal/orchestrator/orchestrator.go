package orchestrator

import (
	"context"
	"fmt"
	"log/slog"
	"path/filepath"
	"sync"
	"time"

	"github.com/gofrs/flock"

	"shortfactory/internal/artifactstore"
	"shortfactory/internal/config"
	"shortfactory/internal/dashboard"
	"shortfactory/internal/logging"
	"shortfactory/internal/notifications"
	"shortfactory/internal/resilience"
	"shortfactory/internal/scheduler"
	"shortfactory/internal/stage"
	"shortfactory/internal/statestore"
)

// ConceptProducer mints fresh, not-yet-persisted content ideas. ideation
// and trendingest both implement this shape; the orchestrator is what
// turns a produced concept into a statestore.Item and a dashboard row,
// since neither producer is wired into the stage registry.
type ConceptProducer interface {
	Name() string
	Produce(ctx context.Context) ([]Concept, error)
	HealthCheck(ctx context.Context) stage.Health
}

// Concept is a producer's output: enough to create an item and an
// initial dashboard row, independent of which producer made it.
type Concept struct {
	Source      statestore.Source
	ConceptText string
	Fingerprint string
}

// Orchestrator is the supervisor: single-instance lock, startup
// reconciliation, producer scheduling, and the scheduler's run modes.
type Orchestrator struct {
	cfg        *config.Config
	items      *statestore.Store
	dashboard  *dashboard.Adapter
	artifacts  *artifactstore.Store
	resilience *resilience.Manager
	scheduler  *scheduler.Scheduler
	producers  []ConceptProducer
	notifier   notifications.Service
	logger     *slog.Logger

	lockPath string
	lock     *flock.Flock

	mu          sync.Mutex
	running     bool
	lastProduce time.Time
}

// New constructs an Orchestrator. Every dependency is pre-built by the
// caller (cmd/shortfactory's bootstrap), mirroring how five82-spindle's
// daemon.New takes an already-open queue.Store and workflow.Manager
// rather than constructing them itself.
func New(
	cfg *config.Config,
	items *statestore.Store,
	dash *dashboard.Adapter,
	artifacts *artifactstore.Store,
	res *resilience.Manager,
	sched *scheduler.Scheduler,
	producers []ConceptProducer,
	notifier notifications.Service,
	logger *slog.Logger,
) (*Orchestrator, error) {
	if cfg == nil || items == nil || dash == nil || artifacts == nil || res == nil || sched == nil {
		return nil, fmt.Errorf("orchestrator: all core dependencies are required")
	}
	if notifier == nil {
		notifier = noopNotifier{}
	}
	if logger == nil {
		logger = logging.NewNop()
	}

	lockPath := filepath.Join(cfg.Paths.StateDir, "shortfactory.lock")
	return &Orchestrator{
		cfg:        cfg,
		items:      items,
		dashboard:  dash,
		artifacts:  artifacts,
		resilience: res,
		scheduler:  sched,
		producers:  producers,
		notifier:   notifier,
		logger:     logger,
		lockPath:   lockPath,
		lock:       flock.New(lockPath),
	}, nil
}

type noopNotifier struct{}

func (noopNotifier) Publish(context.Context, notifications.Event, notifications.Payload) error {
	return nil
}

func (o *Orchestrator) publish(ctx context.Context, event notifications.Event, payload notifications.Payload) {
	if err := o.notifier.Publish(ctx, event, payload); err != nil {
		o.logger.Debug("notification publish failed", logging.String("event", string(event)), logging.Error(err))
	}
}

func (o *Orchestrator) discoveryInterval() time.Duration {
	seconds := o.cfg.Workflow.DiscoveryIntervalSeconds
	if seconds <= 0 {
		seconds = 5
	}
	return time.Duration(seconds) * time.Second
}
