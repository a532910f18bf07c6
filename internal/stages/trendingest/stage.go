// Package trendingest pulls trending social posts and turns qualifying
// ones into content idea candidates. Like ideation, this is an
// orchestrator-scheduled producer rather than a registry-driven stage.
package trendingest

import (
	"context"
	"fmt"

	"shortfactory/internal/resilience"
	"shortfactory/internal/services/trend"
	"shortfactory/internal/stage"
	"shortfactory/internal/statestore"
)

const serviceName = "reddit"

// Stage ingests trending posts as content idea candidates.
type Stage struct {
	trend       *trend.Client
	resilience  *resilience.Manager
	maxAttempts int
	subreddits  []string
}

// New constructs the trend-ingest producer for the given subreddit list.
func New(client *trend.Client, res *resilience.Manager, maxAttempts int, subreddits []string) *Stage {
	return &Stage{trend: client, resilience: res, maxAttempts: maxAttempts, subreddits: subreddits}
}

// Produce returns qualifying trending posts across the configured
// subreddits, not yet persisted as items.
func (s *Stage) Produce(ctx context.Context) ([]trend.Candidate, error) {
	var all []trend.Candidate
	for _, subreddit := range s.subreddits {
		var found []trend.Candidate
		err := s.resilience.Call(ctx, serviceName, resilience.ClassAPI, s.maxAttempts,
			"", "trendingest", subreddit,
			func(ctx context.Context, attempt int, idempotencyKey string) error {
				fetched, callErr := s.trend.FetchTop(ctx, subreddit)
				if callErr != nil {
					return callErr
				}
				found = fetched
				return nil
			})
		if err != nil {
			return all, fmt.Errorf("trendingest produce: subreddit %s: %w", subreddit, err)
		}
		all = append(all, found...)
	}
	return all, nil
}

// NewItem builds an unsaved item draft for a trending candidate.
func NewItem(itemID string, candidate trend.Candidate) *statestore.Item {
	concept := candidate.Title
	if candidate.Body != "" {
		concept = concept + "\n\n" + candidate.Body
	}
	return &statestore.Item{
		ItemID:      itemID,
		Source:      statestore.SourceSocialTrend,
		ConceptText: concept,
		Status:      statestore.StatusPendingApproval,
		Fingerprint: candidate.URL,
	}
}

// HealthCheck reports whether the backing trend source is reachable.
func (s *Stage) HealthCheck(ctx context.Context) stage.Health {
	if err := s.trend.HealthCheck(ctx); err != nil {
		return stage.Unhealthy("trendingest", err.Error())
	}
	return stage.Healthy("trendingest")
}
