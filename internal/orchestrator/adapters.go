package orchestrator

import (
	"context"

	"shortfactory/internal/stage"
	"shortfactory/internal/stages/ideation"
	"shortfactory/internal/stages/trendingest"
	"shortfactory/internal/statestore"
)

// ideationProducer adapts *ideation.Stage to ConceptProducer.
type ideationProducer struct {
	stage *ideation.Stage
}

// NewIdeationProducer wraps an ideation stage for orchestrator scheduling.
func NewIdeationProducer(s *ideation.Stage) ConceptProducer {
	return ideationProducer{stage: s}
}

func (p ideationProducer) Name() string { return "ideation" }

func (p ideationProducer) Produce(ctx context.Context) ([]Concept, error) {
	concepts, err := p.stage.Produce(ctx)
	if err != nil {
		return nil, err
	}
	out := make([]Concept, 0, len(concepts))
	for _, c := range concepts {
		out = append(out, Concept{Source: statestore.SourceAIIdeation, ConceptText: c, Fingerprint: c})
	}
	return out, nil
}

func (p ideationProducer) HealthCheck(ctx context.Context) stage.Health {
	return p.stage.HealthCheck(ctx)
}

// trendProducer adapts *trendingest.Stage to ConceptProducer.
type trendProducer struct {
	stage *trendingest.Stage
}

// NewTrendProducer wraps a trend-ingest stage for orchestrator scheduling.
func NewTrendProducer(s *trendingest.Stage) ConceptProducer {
	return trendProducer{stage: s}
}

func (p trendProducer) Name() string { return "trendingest" }

func (p trendProducer) Produce(ctx context.Context) ([]Concept, error) {
	candidates, err := p.stage.Produce(ctx)
	if err != nil {
		return nil, err
	}
	out := make([]Concept, 0, len(candidates))
	for _, c := range candidates {
		item := trendingest.NewItem("", c)
		out = append(out, Concept{Source: item.Source, ConceptText: item.ConceptText, Fingerprint: item.Fingerprint})
	}
	return out, nil
}

func (p trendProducer) HealthCheck(ctx context.Context) stage.Health {
	return p.stage.HealthCheck(ctx)
}
