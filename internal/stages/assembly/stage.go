// Package assembly adapts videoassembly.Client's ffmpeg composition into
// the assembly stage: clips_sourced -> assembled.
package assembly

import (
	"context"
	"fmt"

	"shortfactory/internal/artifactstore"
	"shortfactory/internal/resilience"
	"shortfactory/internal/services/videoassembly"
	"shortfactory/internal/stage"
	"shortfactory/internal/statestore"
)

const serviceName = "ffmpeg-assembly"

// Stage composes narration audio and sourced clips into one video.
type Stage struct {
	ffmpeg      *videoassembly.Client
	artifacts   *artifactstore.Store
	resilience  *resilience.Manager
	maxAttempts int
}

// New constructs the assembly stage adapter.
func New(client *videoassembly.Client, artifacts *artifactstore.Store, res *resilience.Manager, maxAttempts int) *Stage {
	return &Stage{ffmpeg: client, artifacts: artifacts, resilience: res, maxAttempts: maxAttempts}
}

// Prepare validates the item has narration and at least one sourced clip.
func (s *Stage) Prepare(_ context.Context, item *statestore.Item) error {
	if item.NarrationPath == "" {
		return fmt.Errorf("assembly prepare: item %s has no narration artifact", item.ItemID)
	}
	if len(item.StockClipPaths) == 0 {
		return fmt.Errorf("assembly prepare: item %s has no sourced clips", item.ItemID)
	}
	return nil
}

// Execute assembles the final vertical video and writes it as the item's
// assembled video artifact.
func (s *Stage) Execute(ctx context.Context, item *statestore.Item) error {
	handle, err := s.artifacts.Acquire(item.ItemID, artifactstore.KindAssembledVideo, ".mp4")
	if err != nil {
		return fmt.Errorf("assembly execute: acquire artifact: %w", err)
	}

	err = s.resilience.Call(ctx, serviceName, resilience.ClassGeneration, s.maxAttempts,
		item.ItemID, "assembly", item.Fingerprint,
		func(ctx context.Context, attempt int, idempotencyKey string) error {
			return s.ffmpeg.Assemble(ctx, item.NarrationPath, item.StockClipPaths, handle.TempPath())
		})
	if err != nil {
		handle.Abort()
		return err
	}

	artifact, err := handle.FinalizeFromDisk()
	if err != nil {
		return fmt.Errorf("assembly execute: finalize: %w", err)
	}
	item.AssembledVideoPath = artifact.Path
	return nil
}

// HealthCheck reports whether the local ffmpeg binary is invokable.
func (s *Stage) HealthCheck(ctx context.Context) stage.Health {
	if err := s.ffmpeg.HealthCheck(ctx); err != nil {
		return stage.Unhealthy("assembly", err.Error())
	}
	return stage.Healthy("assembly")
}
