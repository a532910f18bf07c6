package scheduler

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"time"

	"shortfactory/internal/logging"
	"shortfactory/internal/notifications"
	"shortfactory/internal/resilience"
	"shortfactory/internal/services"
	"shortfactory/internal/stagecatalog"
	"shortfactory/internal/stages/approval"
	"shortfactory/internal/statestore"
)

var stageEvents = map[string]notifications.Event{
	"approval":     notifications.EventItemApproved,
	"scripting":    notifications.EventScriptingComplete,
	"narration":    notifications.EventNarrationComplete,
	"clipsourcing": notifications.EventClipsSourced,
	"assembly":     notifications.EventAssemblyComplete,
	"captioning":   notifications.EventCaptioningComplete,
	"metadata":     notifications.EventMetadataReady,
	"publishing":   notifications.EventPublished,
}

func (s *Scheduler) process(ctx context.Context, decl stagecatalog.Declaration, item *statestore.Item) error {
	handler := s.handlers[decl.Name]

	stageCtx := services.WithStage(services.WithItemID(ctx, item.ItemID), decl.Name)
	logger := logging.WithContext(stageCtx, s.logger)

	start := time.Now()

	if err := handler.Prepare(stageCtx, item); err != nil {
		s.recordStageMetric(decl.Name, false, err, time.Since(start))
		return s.fail(stageCtx, logger, decl, item, err)
	}
	if err := handler.Execute(stageCtx, item); err != nil {
		if decl.Name == "approval" && errors.Is(err, approval.ErrPendingApproval) {
			logger.Debug("item still pending operator approval")
			return nil
		}
		s.recordStageMetric(decl.Name, false, err, time.Since(start))
		return s.fail(stageCtx, logger, decl, item, err)
	}
	s.recordStageMetric(decl.Name, true, nil, time.Since(start))
	return s.succeed(stageCtx, logger, decl, item)
}

func (s *Scheduler) recordStageMetric(stageName string, success bool, stageErr error, latency time.Duration) {
	if s.metrics == nil {
		return
	}
	class := ""
	if stageErr != nil {
		class = string(classifyStageError(stageErr))
	}
	s.metrics.RecordStageOutcome(stageName, success, class, latency)
}

func (s *Scheduler) succeed(ctx context.Context, logger *slog.Logger, decl stagecatalog.Declaration, item *statestore.Item) error {
	if err := s.items.RecordStageSuccess(ctx, item, decl.Name, decl.ToStatus); err != nil {
		logger.Error("failed to persist stage success", logging.Error(err))
		return fmt.Errorf("record stage success: %w", err)
	}
	if err := s.syncDashboard(ctx, item, ""); err != nil {
		logger.Warn("failed to sync dashboard row after success", logging.Error(err))
	}
	logger.Info("stage completed",
		logging.String(logging.FieldStage, decl.Name),
		logging.String("next_status", string(item.Status)))

	if event, ok := stageEvents[decl.Name]; ok {
		s.publish(ctx, event, notifications.Payload{
			"conceptText": item.ConceptText,
			"title":       item.Title,
			"url":         item.PublicationURL,
		})
	}
	return nil
}

func (s *Scheduler) fail(ctx context.Context, logger *slog.Logger, decl stagecatalog.Declaration, item *statestore.Item, stageErr error) error {
	class := classifyStageError(stageErr)
	backoff := s.backoffFor(item, decl.Name)

	if err := s.items.RecordStageFailure(ctx, item, decl.Name, class, stageErr.Error(), itemLevelMaxAttempts, backoff); err != nil {
		logger.Error("failed to persist stage failure", logging.Error(err))
		return fmt.Errorf("record stage failure: %w", err)
	}
	if err := s.syncDashboard(ctx, item, stageErr.Error()); err != nil {
		logger.Warn("failed to sync dashboard row after failure", logging.Error(err))
	}

	logger.Warn("stage failed",
		logging.String(logging.FieldStage, decl.Name),
		logging.String("resolved_status", string(item.Status)),
		logging.Error(stageErr))

	switch item.Status {
	case statestore.StatusFailed:
		s.publish(ctx, notifications.EventItemFailed, notifications.Payload{
			"stage": decl.Name,
			"error": stageErr.Error(),
		})
	case statestore.StatusRetryableError:
		s.publish(ctx, notifications.EventStageRetrying, notifications.Payload{
			"stage": decl.Name,
			"error": stageErr.Error(),
		})
	}
	return stageErr
}

func (s *Scheduler) backoffFor(item *statestore.Item, stageName string) time.Duration {
	seconds := s.workflow.ErrorRetryIntervalSeconds
	if seconds <= 0 {
		seconds = 30
	}
	multiplier := item.Attempts(stageName) + 1
	return time.Duration(seconds*multiplier) * time.Second
}

func (s *Scheduler) publish(ctx context.Context, event notifications.Event, payload notifications.Payload) {
	if err := s.notifier.Publish(ctx, event, payload); err != nil {
		s.logger.Debug("notification publish failed", logging.String("event", string(event)), logging.Error(err))
	}
}

// syncDashboard mirrors item's locally-committed state onto its dashboard
// row. errorMessage overrides the error_log column; pass "" to clear it.
func (s *Scheduler) syncDashboard(ctx context.Context, item *statestore.Item, errorMessage string) error {
	fields := map[string]string{
		"status":    item.Status.DashboardStatusLabel(),
		"error_log": errorMessage,
	}
	if item.ScriptPath != "" {
		fields["script_path"] = item.ScriptPath
	}
	if item.NarrationPath != "" {
		fields["audio_file"] = item.NarrationPath
	}
	if video := item.CaptionedVideoPath; video != "" {
		fields["video_file"] = video
	} else if item.AssembledVideoPath != "" {
		fields["video_file"] = item.AssembledVideoPath
	}
	if item.PublicationURL != "" {
		fields["publication_url"] = item.PublicationURL
	}
	return s.dashboard.UpdateFields(ctx, item.ItemID, fields, "")
}

// classifyStageError maps a resilience.CallError's tagged kind onto the
// item state machine's failure taxonomy. Falling through to
// services.ClassifyFailure covers errors a stage returns without routing
// through resilience.Manager.Call, such as its own Prepare precondition
// failures.
func classifyStageError(err error) statestore.FailureClass {
	var callErr *resilience.CallError
	if errors.As(err, &callErr) {
		switch callErr.Kind {
		case resilience.KindValidationError:
			return statestore.FailureValidation
		case resilience.KindAuthError:
			return statestore.FailureAuth
		case resilience.KindClientError:
			return statestore.FailureClient
		case resilience.KindRateLimited:
			return statestore.FailureRateLimited
		case resilience.KindTimeout:
			return statestore.FailureTimeout
		case resilience.KindCircuitOpen:
			return statestore.FailureCircuitOpen
		case resilience.KindTransientUnavailable:
			return statestore.FailureTransient
		default:
			return statestore.FailureUnexpected
		}
	}

	switch services.ClassifyFailure(err) {
	case "validation":
		return statestore.FailureValidation
	case "auth":
		return statestore.FailureAuth
	case "client":
		return statestore.FailureClient
	case "rate_limited":
		return statestore.FailureRateLimited
	case "timeout":
		return statestore.FailureTimeout
	case "circuit_open":
		return statestore.FailureCircuitOpen
	case "resource", "transient":
		return statestore.FailureTransient
	default:
		return statestore.FailureUnexpected
	}
}
