// Package ideation generates new content ideas from scratch via the LLM,
// independent of any existing item. Unlike the registry-driven stages,
// ideation has no FromStatus to key on — it is invoked directly by
// internal/orchestrator on its own schedule to keep the approval backlog
// stocked.
package ideation

import (
	"context"
	"fmt"

	"shortfactory/internal/resilience"
	"shortfactory/internal/services/llm"
	"shortfactory/internal/stage"
	"shortfactory/internal/statestore"
)

const serviceName = "llm"

const ideationSystemPrompt = "You brainstorm concept ideas for short, engaging vertical videos aimed at a " +
	"general audience. Respond with JSON only: {\"concepts\": [string, ...]} with 3 to 5 one-sentence concepts."

// Stage generates fresh concept candidates for the approval backlog.
type Stage struct {
	llm         *llm.Client
	resilience  *resilience.Manager
	maxAttempts int
}

// New constructs the ideation producer.
func New(client *llm.Client, res *resilience.Manager, maxAttempts int) *Stage {
	return &Stage{llm: client, resilience: res, maxAttempts: maxAttempts}
}

type conceptBatch struct {
	Concepts []string `json:"concepts"`
}

// Produce returns freshly generated concept candidates, not yet persisted
// as items. The caller (internal/orchestrator) is responsible for turning
// each into a statestore.Item and a dashboard row.
func (s *Stage) Produce(ctx context.Context) ([]string, error) {
	var batch conceptBatch
	err := s.resilience.Call(ctx, serviceName, resilience.ClassGeneration, s.maxAttempts,
		"", "ideation", "",
		func(ctx context.Context, attempt int, idempotencyKey string) error {
			raw, callErr := s.llm.CompleteJSON(ctx, ideationSystemPrompt, "Generate new video concepts.")
			if callErr != nil {
				return callErr
			}
			return llm.DecodeLLMJSON(raw, &batch)
		})
	if err != nil {
		return nil, fmt.Errorf("ideation produce: %w", err)
	}
	return batch.Concepts, nil
}

// NewItem builds an unsaved item draft for a generated concept.
func NewItem(itemID, conceptText string) *statestore.Item {
	return &statestore.Item{
		ItemID:      itemID,
		Source:      statestore.SourceAIIdeation,
		ConceptText: conceptText,
		Status:      statestore.StatusPendingApproval,
		Fingerprint: conceptText,
	}
}

// HealthCheck reports whether the backing LLM provider is reachable.
func (s *Stage) HealthCheck(ctx context.Context) stage.Health {
	if err := s.llm.HealthCheck(ctx); err != nil {
		return stage.Unhealthy("ideation", err.Error())
	}
	return stage.Healthy("ideation")
}
