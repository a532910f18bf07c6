// Package scripting adapts llm.Client's script generation into the
// scripting stage: approved -> scripted.
package scripting

import (
	"context"
	"fmt"

	"shortfactory/internal/artifactstore"
	"shortfactory/internal/resilience"
	"shortfactory/internal/services/llm"
	"shortfactory/internal/stage"
	"shortfactory/internal/statestore"
)

const serviceName = "llm"

// Stage generates a narration script from an item's approved concept.
type Stage struct {
	llm       *llm.Client
	artifacts *artifactstore.Store
	resilience *resilience.Manager
	maxAttempts int
}

// New constructs the scripting stage adapter.
func New(client *llm.Client, artifacts *artifactstore.Store, res *resilience.Manager, maxAttempts int) *Stage {
	return &Stage{llm: client, artifacts: artifacts, resilience: res, maxAttempts: maxAttempts}
}

// Prepare validates the item carries a concept to script from.
func (s *Stage) Prepare(_ context.Context, item *statestore.Item) error {
	if item.ConceptText == "" {
		return fmt.Errorf("scripting prepare: item %s has no concept text", item.ItemID)
	}
	return nil
}

// Execute generates the script and writes it as the item's script artifact.
func (s *Stage) Execute(ctx context.Context, item *statestore.Item) error {
	var result llm.ScriptResult
	err := s.resilience.Call(ctx, serviceName, resilience.ClassGeneration, s.maxAttempts,
		item.ItemID, "scripting", item.Fingerprint,
		func(ctx context.Context, attempt int, idempotencyKey string) error {
			generated, callErr := s.llm.GenerateScript(ctx, item.ConceptText)
			if callErr != nil {
				return callErr
			}
			result = generated
			return nil
		})
	if err != nil {
		return err
	}

	artifact, err := stage.WriteArtifact(s.artifacts, item.ItemID, artifactstore.KindScript, ".txt", []byte(result.Script))
	if err != nil {
		return err
	}
	item.ScriptPath = artifact.Path
	return nil
}

// HealthCheck reports whether the backing LLM provider is reachable.
func (s *Stage) HealthCheck(ctx context.Context) stage.Health {
	if err := s.llm.HealthCheck(ctx); err != nil {
		return stage.Unhealthy("scripting", err.Error())
	}
	return stage.Healthy("scripting")
}
