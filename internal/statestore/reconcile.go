package statestore

import (
	"context"
	"fmt"
)

// statusRank orders statuses by pipeline progress so reconciliation can
// tell which of two conflicting observations is "more advanced". The
// terminal failed state is treated as maximally advanced: a failure is a
// terminal fact that should not be silently reverted by a stale
// dashboard snapshot. retryable_error is not terminal and ranks low.
var statusRank = map[Status]int{
	StatusPendingApproval: 0,
	StatusApproved:        1,
	StatusScripting:       2,
	StatusScripted:        3,
	StatusNarrating:       4,
	StatusNarrated:        5,
	StatusSourcingClips:   6,
	StatusClipsSourced:    7,
	StatusAssembling:      8,
	StatusAssembled:       9,
	StatusCaptioning:      10,
	StatusCaptioned:       11,
	StatusMetadataPending: 12,
	StatusMetadataReady:   13,
	StatusPublishing:      14,
	StatusPublished:       15,
	StatusRetryableError:  2, // rank as its rollback target; re-queued regardless
	StatusFailed:          16,
}

// DashboardSnapshot is the subset of a dashboard row reconciliation needs.
type DashboardSnapshot struct {
	ItemID string
	Status Status
}

// ArtifactChecker reports whether all artifacts referenced by an item still
// exist on disk. Implementations back onto internal/artifactstore.
type ArtifactChecker func(item *Item) bool

// ReconcileStartup compares every local item against its dashboard
// snapshot (when present) and resolves disagreement: the more-advanced
// side wins if its referenced artifacts exist; otherwise the
// less-advanced side wins and the item is left for re-queueing (any
// in-flight processing status was already normalized by
// ResetStuckProcessing before this runs). It returns the IDs of every item
// whose local and dashboard statuses disagreed and were resolved, whichever
// side won.
func (s *Store) ReconcileStartup(ctx context.Context, snapshots map[string]DashboardSnapshot, artifactsExist ArtifactChecker) ([]string, error) {
	items, err := s.ListAll(ctx)
	if err != nil {
		return nil, fmt.Errorf("reconcile: list items: %w", err)
	}

	var reconciled []string
	for _, item := range items {
		snapshot, ok := snapshots[item.ItemID]
		if !ok || snapshot.Status == item.Status {
			continue
		}

		localRank := statusRank[item.Status]
		dashRank := statusRank[snapshot.Status]

		winner := item.Status
		switch {
		case localRank == dashRank:
			continue
		case localRank > dashRank:
			if artifactsExist == nil || artifactsExist(item) {
				winner = item.Status
			} else {
				winner = snapshot.Status
			}
		default:
			if artifactsExist == nil || artifactsExist(item) {
				winner = snapshot.Status
			} else {
				winner = item.Status
			}
		}

		if winner != item.Status {
			item.Status = winner
			if err := s.Update(ctx, item); err != nil {
				return reconciled, fmt.Errorf("reconcile item %s: %w", item.ItemID, err)
			}
		}
		reconciled = append(reconciled, item.ItemID)
	}
	return reconciled, nil
}
