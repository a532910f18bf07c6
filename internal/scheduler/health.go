package scheduler

import (
	"context"

	"shortfactory/internal/resilience"
	"shortfactory/internal/stage"
	"shortfactory/internal/stagecatalog"
)

// Health reports the readiness of every registered stage and the state of
// every circuit breaker the resilient call layer has opened, for the
// supervisor's periodic health publication.
type Health struct {
	Stages   []stage.Health
	Breakers map[string]resilience.BreakerState
}

// HealthCheck runs every registered stage's HealthCheck and attaches the
// current circuit-breaker snapshot.
func (s *Scheduler) HealthCheck(ctx context.Context) Health {
	declarations := stagecatalog.All()
	stages := make([]stage.Health, 0, len(declarations))
	for _, decl := range declarations {
		handler, ok := s.handlers[decl.Name]
		if !ok {
			continue
		}
		stages = append(stages, handler.HealthCheck(ctx))
	}
	return Health{
		Stages:   stages,
		Breakers: s.resilience.BreakerStates(),
	}
}
