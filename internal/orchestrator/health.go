package orchestrator

import (
	"context"

	"shortfactory/internal/resilience"
	"shortfactory/internal/stage"
	"shortfactory/internal/statestore"
)

// Health is the supervisor's published health snapshot: per-stage queue
// depths, every stage's own readiness check, every producer's readiness
// check, and the resilient call layer's circuit-breaker states. This is
// the generalized equivalent of five82-spindle's daemon.Status.
type Health struct {
	QueueDepths map[statestore.Status]int
	Stages      []stage.Health
	Producers   []stage.Health
	Breakers    map[string]resilience.BreakerState
}

// HealthCheck aggregates the scheduler's stage health with current queue
// depths per status and every producer's own health check.
func (o *Orchestrator) HealthCheck(ctx context.Context) (Health, error) {
	schedHealth := o.scheduler.HealthCheck(ctx)

	depths := make(map[statestore.Status]int, len(statestore.AllStatuses()))
	for _, status := range statestore.AllStatuses() {
		items, err := o.items.ListByStatus(ctx, status)
		if err != nil {
			return Health{}, err
		}
		depths[status] = len(items)
	}

	producers := make([]stage.Health, 0, len(o.producers))
	for _, p := range o.producers {
		producers = append(producers, p.HealthCheck(ctx))
	}

	return Health{
		QueueDepths: depths,
		Stages:      schedHealth.Stages,
		Producers:   producers,
		Breakers:    schedHealth.Breakers,
	}, nil
}
