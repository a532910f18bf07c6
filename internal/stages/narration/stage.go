// Package narration adapts tts.Client's speech synthesis into the
// narration stage: scripted -> narrated.
package narration

import (
	"context"
	"fmt"
	"os"

	"shortfactory/internal/artifactstore"
	"shortfactory/internal/resilience"
	"shortfactory/internal/services/tts"
	"shortfactory/internal/stage"
	"shortfactory/internal/statestore"
)

const serviceName = "tts"

// Stage synthesizes narration audio from an item's finished script.
type Stage struct {
	tts         *tts.Client
	artifacts   *artifactstore.Store
	resilience  *resilience.Manager
	maxAttempts int
}

// New constructs the narration stage adapter.
func New(client *tts.Client, artifacts *artifactstore.Store, res *resilience.Manager, maxAttempts int) *Stage {
	return &Stage{tts: client, artifacts: artifacts, resilience: res, maxAttempts: maxAttempts}
}

// Prepare validates the item's script artifact exists and is readable.
func (s *Stage) Prepare(_ context.Context, item *statestore.Item) error {
	if item.ScriptPath == "" {
		return fmt.Errorf("narration prepare: item %s has no script artifact", item.ItemID)
	}
	if _, err := os.Stat(item.ScriptPath); err != nil {
		return fmt.Errorf("narration prepare: script artifact missing: %w", err)
	}
	return nil
}

// Execute synthesizes narration audio and writes it as the item's
// narration artifact.
func (s *Stage) Execute(ctx context.Context, item *statestore.Item) error {
	script, err := os.ReadFile(item.ScriptPath)
	if err != nil {
		return fmt.Errorf("narration execute: read script: %w", err)
	}

	var result tts.Result
	err = s.resilience.Call(ctx, serviceName, resilience.ClassGeneration, s.maxAttempts,
		item.ItemID, "narration", item.Fingerprint,
		func(ctx context.Context, attempt int, idempotencyKey string) error {
			synthesized, callErr := s.tts.Synthesize(ctx, string(script))
			if callErr != nil {
				return callErr
			}
			result = synthesized
			return nil
		})
	if err != nil {
		return err
	}

	artifact, err := stage.WriteArtifact(s.artifacts, item.ItemID, artifactstore.KindNarration, ".mp3", result.Audio)
	if err != nil {
		return err
	}
	item.NarrationPath = artifact.Path
	return nil
}

// HealthCheck reports whether the backing TTS provider is reachable.
func (s *Stage) HealthCheck(ctx context.Context) stage.Health {
	if err := s.tts.HealthCheck(ctx); err != nil {
		return stage.Unhealthy("narration", err.Error())
	}
	return stage.Healthy("narration")
}
