// Package metadata adapts llm.Client's metadata generation into the
// metadata stage: captioned -> metadata_ready.
package metadata

import (
	"context"
	"encoding/json"
	"fmt"
	"os"

	"shortfactory/internal/artifactstore"
	"shortfactory/internal/resilience"
	"shortfactory/internal/services/llm"
	"shortfactory/internal/stage"
	"shortfactory/internal/statestore"
)

const serviceName = "llm"

// Stage generates publish metadata (title, description, tags) from an
// item's finished script.
type Stage struct {
	llm         *llm.Client
	artifacts   *artifactstore.Store
	resilience  *resilience.Manager
	maxAttempts int
}

// New constructs the metadata stage adapter.
func New(client *llm.Client, artifacts *artifactstore.Store, res *resilience.Manager, maxAttempts int) *Stage {
	return &Stage{llm: client, artifacts: artifacts, resilience: res, maxAttempts: maxAttempts}
}

// Prepare validates the item has a script to derive metadata from.
func (s *Stage) Prepare(_ context.Context, item *statestore.Item) error {
	if item.ScriptPath == "" {
		return fmt.Errorf("metadata prepare: item %s has no script artifact", item.ItemID)
	}
	return nil
}

type metadataDocument struct {
	Title       string   `json:"title"`
	Description string   `json:"description"`
	Tags        []string `json:"tags"`
}

// Execute generates title/description/tags and writes the item's metadata
// artifact.
func (s *Stage) Execute(ctx context.Context, item *statestore.Item) error {
	script, err := os.ReadFile(item.ScriptPath)
	if err != nil {
		return fmt.Errorf("metadata execute: read script: %w", err)
	}

	var result llm.MetadataResult
	err = s.resilience.Call(ctx, serviceName, resilience.ClassGeneration, s.maxAttempts,
		item.ItemID, "metadata", item.Fingerprint,
		func(ctx context.Context, attempt int, idempotencyKey string) error {
			generated, callErr := s.llm.GenerateMetadata(ctx, string(script))
			if callErr != nil {
				return callErr
			}
			result = generated
			return nil
		})
	if err != nil {
		return err
	}

	doc := metadataDocument{Title: result.Title, Description: result.Description, Tags: result.Tags}
	payload, err := json.MarshalIndent(doc, "", "  ")
	if err != nil {
		return fmt.Errorf("metadata execute: encode document: %w", err)
	}

	artifact, err := stage.WriteArtifact(s.artifacts, item.ItemID, artifactstore.KindMetadataJSON, ".json", payload)
	if err != nil {
		return err
	}
	item.MetadataJSONPath = artifact.Path
	item.Title = result.Title
	item.Description = result.Description
	item.Tags = result.Tags
	return nil
}

// HealthCheck reports whether the backing LLM provider is reachable.
func (s *Stage) HealthCheck(ctx context.Context) stage.Health {
	if err := s.llm.HealthCheck(ctx); err != nil {
		return stage.Unhealthy("metadata", err.Error())
	}
	return stage.Healthy("metadata")
}
