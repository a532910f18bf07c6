package statestore

import (
	"context"
	"fmt"
	"time"
)

// FailureClass identifies how a stage failure should be handled.
type FailureClass string

const (
	FailureValidation   FailureClass = "validation"
	FailureAuth         FailureClass = "auth"
	FailureClient       FailureClass = "client"
	FailureRateLimited  FailureClass = "rate_limited"
	FailureTimeout      FailureClass = "timeout"
	FailureTransient    FailureClass = "transient"
	FailureCircuitOpen  FailureClass = "circuit_open"
	FailureResource     FailureClass = "resource"
	FailureUnexpected   FailureClass = "unexpected"
)

// nonRetryable failure classes fail the stage immediately with no retry.
var nonRetryable = map[FailureClass]bool{
	FailureValidation: true,
	FailureAuth:       true,
	FailureClient:     true,
}

// RecordStageSuccess advances item to nextStatus, clearing any retry state
// and resetting that stage's attempt counter. Callers must have already
// finalized the stage's artifacts and updated the dashboard row; Update is
// the local-state leg of the three-step commit.
func (s *Store) RecordStageSuccess(ctx context.Context, item *Item, stage string, nextStatus Status) error {
	item.Status = nextStatus
	item.RetryAfter = nil
	item.FailedStage = ""
	item.LastError = nil
	if item.StageAttempts != nil {
		delete(item.StageAttempts, stage)
	}
	return s.Update(ctx, item)
}

// RecordStageFailure classifies a stage failure and applies the transition
// rules: non-retryable classes fail the item immediately; otherwise the
// attempt counter increments and the item either re-enters
// StatusRetryableError with a backoff deadline, or becomes failed(stage)
// once the counter reaches maxAttempts.
func (s *Store) RecordStageFailure(ctx context.Context, item *Item, stage string, class FailureClass, message string, maxAttempts int, backoff time.Duration) error {
	now := time.Now().UTC()
	item.LastError = &StageError{
		Kind:      string(class),
		Message:   message,
		Stage:     stage,
		Timestamp: now,
	}

	if nonRetryable[class] {
		item.Status = StatusFailed
		item.FailedStage = stage
		item.RetryAfter = nil
		return s.Update(ctx, item)
	}

	if item.StageAttempts == nil {
		item.StageAttempts = make(map[string]int)
	}
	item.StageAttempts[stage]++

	if item.StageAttempts[stage] >= maxAttempts {
		item.Status = StatusFailed
		item.FailedStage = stage
		item.RetryAfter = nil
		return s.Update(ctx, item)
	}

	item.Status = StatusRetryableError
	item.FailedStage = stage
	after := now.Add(backoff)
	item.RetryAfter = &after
	return s.Update(ctx, item)
}

// Reset re-enters item at approved, clearing all error and retry state so
// the pipeline re-runs every stage from the start. This is the operator-
// triggered `reset <item_id>` command's effect.
func (s *Store) Reset(ctx context.Context, itemID string) error {
	item, err := s.Get(ctx, itemID)
	if err != nil {
		return err
	}
	item.Status = StatusApproved
	item.FailedStage = ""
	item.RetryAfter = nil
	item.LastError = nil
	item.StageAttempts = nil
	return s.Update(ctx, item)
}

// ResetStuckProcessing rolls every in-flight item back to the state it was
// in before its current stage began, for recovery after an unclean daemon
// shutdown where workers never got to mark a result.
func (s *Store) ResetStuckProcessing(ctx context.Context) (int64, error) {
	var affected int64
	for _, transition := range stageRollbackTransitions {
		res, err := s.execWithRetry(ctx,
			`UPDATE items SET status = ?, last_heartbeat = NULL, updated_at = ? WHERE status = ?`,
			transition.to, time.Now().UTC().Format(time.RFC3339Nano), transition.from)
		if err != nil {
			return affected, fmt.Errorf("reset stuck items from %s: %w", transition.from, err)
		}
		n, err := res.RowsAffected()
		if err != nil {
			return affected, fmt.Errorf("reset stuck items rows affected: %w", err)
		}
		affected += n
	}
	return affected, nil
}

// ReclaimStaleProcessing rolls items back whose heartbeat has not been
// refreshed since cutoff, for recovery from a worker that died without
// crashing the whole process.
func (s *Store) ReclaimStaleProcessing(ctx context.Context, cutoff time.Time) (int64, error) {
	var affected int64
	for _, transition := range stageRollbackTransitions {
		res, err := s.execWithRetry(ctx,
			`UPDATE items SET status = ?, last_heartbeat = NULL, updated_at = ?
             WHERE status = ? AND last_heartbeat IS NOT NULL AND last_heartbeat < ?`,
			transition.to, time.Now().UTC().Format(time.RFC3339Nano), transition.from,
			cutoff.UTC().Format(time.RFC3339Nano))
		if err != nil {
			return affected, fmt.Errorf("reclaim stale items from %s: %w", transition.from, err)
		}
		n, err := res.RowsAffected()
		if err != nil {
			return affected, fmt.Errorf("reclaim stale items rows affected: %w", err)
		}
		affected += n
	}
	return affected, nil
}
