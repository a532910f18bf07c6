// Package clipsourcing adapts stockfootage.Client's search into the
// clip-sourcing stage: narrated -> clips_sourced.
package clipsourcing

import (
	"context"
	"fmt"
	"io"
	"net/http"
	"strings"

	"shortfactory/internal/artifactstore"
	"shortfactory/internal/resilience"
	"shortfactory/internal/services"
	"shortfactory/internal/services/stockfootage"
	"shortfactory/internal/stage"
	"shortfactory/internal/statestore"
)

const serviceName = "stockfootage"
const downloadServiceName = "stockfootage-download"

// minClipDurationSeconds and maxClipDurationSeconds bound a candidate
// clip's declared duration; clips outside this range are rejected before
// download rather than after, since the search response already reports
// duration.
const (
	minClipDurationSeconds = 2.0
	maxClipDurationSeconds = 60.0
)

// maxClipBytes caps how much a single clip download may write to disk.
// A provider returning an unexpectedly large file (wrong URL, redirected
// to a full-length video) is rejected instead of silently consuming
// artifact storage.
const maxClipBytes = 200 * 1024 * 1024

// Stage sources stock video clips matching an item's narration topic.
type Stage struct {
	search      *stockfootage.Client
	downloader  *http.Client
	artifacts   *artifactstore.Store
	resilience  *resilience.Manager
	maxAttempts int
}

// New constructs the clip-sourcing stage adapter.
func New(search *stockfootage.Client, artifacts *artifactstore.Store, res *resilience.Manager, maxAttempts int) *Stage {
	timeouts := resilience.TimeoutsFor(resilience.ClassDownload)
	return &Stage{
		search: search,
		downloader: &http.Client{
			Timeout:   timeouts.Overall,
			Transport: resilience.NewTransport(resilience.ClassDownload),
		},
		artifacts:   artifacts,
		resilience:  res,
		maxAttempts: maxAttempts,
	}
}

// Prepare validates the item has narration to source clips around.
func (s *Stage) Prepare(_ context.Context, item *statestore.Item) error {
	if item.NarrationPath == "" {
		return fmt.Errorf("clipsourcing prepare: item %s has no narration artifact", item.ItemID)
	}
	return nil
}

// Execute searches for matching clips and downloads each into the item's
// stock clip artifacts.
func (s *Stage) Execute(ctx context.Context, item *statestore.Item) error {
	var result stage.StockClipSearchResult
	err := s.resilience.Call(ctx, serviceName, resilience.ClassSearch, s.maxAttempts,
		item.ItemID, "clipsourcing", item.Fingerprint,
		func(ctx context.Context, attempt int, idempotencyKey string) error {
			found, callErr := s.search.Search(ctx, searchQuery(item))
			if callErr != nil {
				return callErr
			}
			result = found
			return nil
		})
	if err != nil {
		return err
	}

	candidates := validClips(result.Clips)
	if len(candidates) == 0 {
		return services.Wrap(services.ErrTransient, "clipsourcing", "search",
			"no candidate clips within declared portrait/duration bounds", nil)
	}

	var paths []string
	for _, clip := range candidates {
		path, downloadErr := s.downloadClip(ctx, item, clip)
		if downloadErr != nil {
			return downloadErr
		}
		paths = append(paths, path)
	}
	item.StockClipPaths = paths
	return nil
}

// validClips filters search results down to clips whose provider-reported
// resolution and duration satisfy the declared portrait/duration bounds,
// per the requirement that provider media is validated before it is ever
// promoted to an artifact.
func validClips(clips []stage.StockClip) []stage.StockClip {
	var kept []stage.StockClip
	for _, clip := range clips {
		if err := validateClipMetadata(clip); err != nil {
			continue
		}
		kept = append(kept, clip)
	}
	return kept
}

func validateClipMetadata(clip stage.StockClip) error {
	if clip.DurationSeconds < minClipDurationSeconds || clip.DurationSeconds > maxClipDurationSeconds {
		return services.Wrap(services.ErrValidation, "clipsourcing", "validate",
			fmt.Sprintf("clip duration %.1fs outside allowed range [%.0f, %.0f]s",
				clip.DurationSeconds, minClipDurationSeconds, maxClipDurationSeconds), nil)
	}
	if clip.Width <= 0 || clip.Height <= 0 {
		return services.Wrap(services.ErrValidation, "clipsourcing", "validate",
			"clip is missing resolution metadata", nil)
	}
	if clip.Height < clip.Width {
		return services.Wrap(services.ErrValidation, "clipsourcing", "validate",
			"clip is landscape, portrait orientation required", nil)
	}
	return nil
}

// downloadClip fetches one clip through the Resilient Call Layer's
// download class (retry, circuit breaker, bulkhead, connect/overall
// timeout) and validates the response before promoting it to an
// artifact.
func (s *Stage) downloadClip(ctx context.Context, item *statestore.Item, clip stage.StockClip) (string, error) {
	var artifactPath string
	err := s.resilience.Call(ctx, downloadServiceName, resilience.ClassDownload, s.maxAttempts,
		item.ItemID, "clipsourcing", item.Fingerprint+"/"+clip.ID,
		func(ctx context.Context, attempt int, idempotencyKey string) error {
			path, callErr := s.fetchClip(ctx, item.ItemID, clip)
			if callErr != nil {
				return callErr
			}
			artifactPath = path
			return nil
		})
	if err != nil {
		return "", err
	}
	return artifactPath, nil
}

func (s *Stage) fetchClip(ctx context.Context, itemID string, clip stage.StockClip) (string, error) {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, clip.URL, nil)
	if err != nil {
		return "", fmt.Errorf("clipsourcing download: new request: %w", err)
	}
	resp, err := s.downloader.Do(req)
	if err != nil {
		return "", fmt.Errorf("clipsourcing download: http error: %w", err)
	}
	defer resp.Body.Close()
	if resp.StatusCode >= http.StatusMultipleChoices {
		return "", fmt.Errorf("clipsourcing download: http %d", resp.StatusCode)
	}
	if contentType := resp.Header.Get("Content-Type"); contentType != "" && !strings.HasPrefix(contentType, "video/") {
		return "", services.Wrap(services.ErrValidation, "clipsourcing", "validate",
			fmt.Sprintf("clip response content-type %q is not a video", contentType), nil)
	}

	handle, err := s.artifacts.Acquire(itemID, artifactstore.KindStockClip, ".mp4")
	if err != nil {
		return "", fmt.Errorf("clipsourcing download: acquire artifact: %w", err)
	}
	written, err := io.Copy(handle, io.LimitReader(resp.Body, maxClipBytes+1))
	if err != nil {
		handle.Abort()
		return "", fmt.Errorf("clipsourcing download: write clip: %w", err)
	}
	if written == 0 {
		handle.Abort()
		return "", services.Wrap(services.ErrValidation, "clipsourcing", "validate",
			"downloaded clip is empty", nil)
	}
	if written > maxClipBytes {
		handle.Abort()
		return "", services.Wrap(services.ErrValidation, "clipsourcing", "validate",
			fmt.Sprintf("downloaded clip exceeds %d byte limit", maxClipBytes), nil)
	}
	artifact, err := handle.Finalize()
	if err != nil {
		return "", fmt.Errorf("clipsourcing download: finalize clip: %w", err)
	}
	return artifact.Path, nil
}

func searchQuery(item *statestore.Item) string {
	if item.Title != "" {
		return item.Title
	}
	return item.ConceptText
}

// HealthCheck reports whether the backing stock footage provider is
// reachable.
func (s *Stage) HealthCheck(ctx context.Context) stage.Health {
	if err := s.search.HealthCheck(ctx); err != nil {
		return stage.Unhealthy("clipsourcing", err.Error())
	}
	return stage.Healthy("clipsourcing")
}
