// Package publishing adapts publish.Client's upload into the publishing
// stage: metadata_ready -> published.
package publishing

import (
	"context"
	"fmt"

	"shortfactory/internal/resilience"
	"shortfactory/internal/services/publish"
	"shortfactory/internal/stage"
	"shortfactory/internal/statestore"
)

const serviceName = "youtube"

// Stage uploads an item's finished, captioned video for publication.
type Stage struct {
	publisher   *publish.Client
	resilience  *resilience.Manager
	maxAttempts int
}

// New constructs the publishing stage adapter.
func New(client *publish.Client, res *resilience.Manager, maxAttempts int) *Stage {
	return &Stage{publisher: client, resilience: res, maxAttempts: maxAttempts}
}

// Prepare validates the item has a captioned video and metadata ready to
// publish.
func (s *Stage) Prepare(_ context.Context, item *statestore.Item) error {
	if item.CaptionedVideoPath == "" {
		return fmt.Errorf("publishing prepare: item %s has no captioned video", item.ItemID)
	}
	if item.Title == "" {
		return fmt.Errorf("publishing prepare: item %s has no publish title", item.ItemID)
	}
	return nil
}

// Execute uploads the captioned video and records the published URL.
func (s *Stage) Execute(ctx context.Context, item *statestore.Item) error {
	var result publish.Result
	err := s.resilience.Call(ctx, serviceName, resilience.ClassDownload, s.maxAttempts,
		item.ItemID, "publishing", item.Fingerprint,
		func(ctx context.Context, attempt int, idempotencyKey string) error {
			uploaded, callErr := s.publisher.Upload(ctx, item.CaptionedVideoPath, publish.Metadata{
				Title:       item.Title,
				Description: item.Description,
				Tags:        item.Tags,
			})
			if callErr != nil {
				return callErr
			}
			result = uploaded
			return nil
		})
	if err != nil {
		return err
	}
	item.PublicationURL = result.URL
	return nil
}

// HealthCheck reports whether the backing publish provider is reachable.
func (s *Stage) HealthCheck(ctx context.Context) stage.Health {
	if err := s.publisher.HealthCheck(ctx); err != nil {
		return stage.Unhealthy("publishing", err.Error())
	}
	return stage.Healthy("publishing")
}
