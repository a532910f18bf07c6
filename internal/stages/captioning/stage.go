// Package captioning adapts captioning.Client's whisper alignment and
// ffmpeg caption burn-in into the captioning stage: assembled -> captioned.
package captioning

import (
	"context"
	"fmt"
	"os"
	"time"

	"shortfactory/internal/artifactstore"
	"shortfactory/internal/resilience"
	"shortfactory/internal/services"
	svc "shortfactory/internal/services/captioning"
	"shortfactory/internal/stage"
	"shortfactory/internal/statestore"
)

const serviceName = "ffmpeg-captions"

// Stage aligns narration to word-level timestamps and burns captions into
// the assembled video.
type Stage struct {
	captioner   *svc.Client
	artifacts   *artifactstore.Store
	resilience  *resilience.Manager
	maxAttempts int
}

// New constructs the captioning stage adapter.
func New(client *svc.Client, artifacts *artifactstore.Store, res *resilience.Manager, maxAttempts int) *Stage {
	return &Stage{captioner: client, artifacts: artifacts, resilience: res, maxAttempts: maxAttempts}
}

// Prepare validates the item has an assembled video and its source
// narration audio to align against.
func (s *Stage) Prepare(_ context.Context, item *statestore.Item) error {
	if item.AssembledVideoPath == "" {
		return fmt.Errorf("captioning prepare: item %s has no assembled video", item.ItemID)
	}
	if item.NarrationPath == "" {
		return fmt.Errorf("captioning prepare: item %s has no narration audio to align", item.ItemID)
	}
	return nil
}

// Execute aligns captions to the narration track and burns them into the
// item's captioned video artifact.
func (s *Stage) Execute(ctx context.Context, item *statestore.Item) error {
	srtFile, err := os.CreateTemp("", "shortfactory-captions-*.srt")
	if err != nil {
		return fmt.Errorf("captioning execute: create temp subtitle file: %w", err)
	}
	srtPath := srtFile.Name()
	_ = srtFile.Close()
	defer os.Remove(srtPath)

	handle, err := s.artifacts.Acquire(item.ItemID, artifactstore.KindCaptionedVideo, ".mp4")
	if err != nil {
		return fmt.Errorf("captioning execute: acquire artifact: %w", err)
	}

	err = s.resilience.Call(ctx, serviceName, resilience.ClassGeneration, s.maxAttempts,
		item.ItemID, "captioning", item.Fingerprint,
		func(ctx context.Context, attempt int, idempotencyKey string) error {
			if alignErr := s.captioner.Align(ctx, item.NarrationPath, srtPath); alignErr != nil {
				return alignErr
			}
			if validateErr := s.validateAlignment(ctx, item.NarrationPath, srtPath); validateErr != nil {
				return validateErr
			}
			return s.captioner.Burn(ctx, item.AssembledVideoPath, srtPath, handle.TempPath())
		})
	if err != nil {
		handle.Abort()
		return err
	}

	artifact, err := handle.FinalizeFromDisk()
	if err != nil {
		return fmt.Errorf("captioning execute: finalize: %w", err)
	}
	item.CaptionedVideoPath = artifact.Path
	return nil
}

// validateAlignment cross-checks the aligned cue spans against the
// narration track's actual duration before the video is burned, so a
// degenerate or misaligned whisper output fails the stage instead of
// being baked into the final video.
func (s *Stage) validateAlignment(ctx context.Context, narrationPath, srtPath string) error {
	cues, err := svc.ParseSRT(srtPath)
	if err != nil {
		return services.Wrap(services.ErrValidation, "captioning", "validate",
			"failed to parse aligned subtitle track", err)
	}
	narrationSeconds, err := s.captioner.ProbeDuration(ctx, narrationPath)
	if err != nil {
		return services.Wrap(services.ErrValidation, "captioning", "validate",
			"failed to probe narration duration", err)
	}
	if err := svc.ValidateCues(cues, time.Duration(narrationSeconds*float64(time.Second))); err != nil {
		return services.Wrap(services.ErrValidation, "captioning", "validate",
			err.Error(), nil)
	}
	return nil
}

// HealthCheck reports whether the local whisper, ffmpeg and ffprobe
// binaries are invokable.
func (s *Stage) HealthCheck(ctx context.Context) stage.Health {
	if err := s.captioner.HealthCheck(ctx); err != nil {
		return stage.Unhealthy("captioning", err.Error())
	}
	return stage.Healthy("captioning")
}
