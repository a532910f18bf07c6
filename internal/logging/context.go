package logging

import (
	"context"
	"log/slog"

	"shortfactory/internal/services"
)

const (
	// FieldComponent is the standardized structured logging key for component names.
	FieldComponent = "component"
	// FieldItemID is the standardized structured logging key for pipeline item identifiers.
	FieldItemID = "item_id"
	// FieldStage is the standardized structured logging key for pipeline stage names.
	FieldStage = "stage"
	// FieldLane is the standardized structured logging key for pipeline lane names.
	FieldLane = "lane"
	// FieldCorrelationID is the standardized structured logging key for request correlation identifiers.
	FieldCorrelationID = "correlation_id"
	// FieldAlert flags warnings or anomalies that should stand out in structured logs.
	FieldAlert = "alert"
	// FieldAttempt is the standardized structured logging key for a stage's attempt counter.
	FieldAttempt = "attempt"
	// FieldService is the standardized structured logging key for the external collaborator name.
	FieldService = "service"
	// FieldOperationClass is the standardized structured logging key for the resilient call layer's operation class.
	FieldOperationClass = "operation_class"
	// FieldOutcome is the standardized structured logging key for an external call's outcome (success/failure/retry).
	FieldOutcome = "outcome"
	// FieldLatencyMS is the standardized structured logging key for an external call's latency in milliseconds.
	FieldLatencyMS = "latency_ms"
	// FieldEventType is the standardized structured logging key for a discrete event name.
	FieldEventType = "event_type"
	// FieldDecisionType is the standardized structured logging key for a pipeline decision name.
	FieldDecisionType = "decision_type"
	// FieldProgressStage is the standardized structured logging key for a progress update's stage name.
	FieldProgressStage = "progress_stage"
	// FieldProgressPercent is the standardized structured logging key for a progress update's completion percentage.
	FieldProgressPercent = "progress_percent"
	// FieldProgressMessage is the standardized structured logging key for a progress update's human-readable message.
	FieldProgressMessage = "progress_message"
	// FieldProgressETA is the standardized structured logging key for a progress update's estimated time remaining.
	FieldProgressETA = "progress_eta"
	// FieldErrorCode is the standardized structured logging key for a machine-readable error code.
	FieldErrorCode = "error_code"
	// FieldErrorHint is the standardized structured logging key for a human-readable error hint.
	FieldErrorHint = "error_hint"
	// FieldErrorDetailPath is the standardized structured logging key for a path to extended error details.
	FieldErrorDetailPath = "error_detail_path"
)

// ContextFields extracts standardized slog attributes from the provided context.
func ContextFields(ctx context.Context) []slog.Attr {
	if ctx == nil {
		return nil
	}
	fields := make([]slog.Attr, 0, 3)
	if id, ok := services.ItemIDFromContext(ctx); ok {
		fields = append(fields, slog.String(FieldItemID, id))
	}
	if stage, ok := services.StageFromContext(ctx); ok {
		fields = append(fields, slog.String(FieldStage, stage))
	}
	if lane, ok := services.LaneFromContext(ctx); ok {
		fields = append(fields, slog.String(FieldLane, lane))
	}
	if rid, ok := services.RequestIDFromContext(ctx); ok {
		fields = append(fields, slog.String(FieldCorrelationID, rid))
	}
	return fields
}

// WithContext returns a logger augmented with structured fields derived from the supplied context.
func WithContext(ctx context.Context, logger *slog.Logger) *slog.Logger {
	if logger == nil {
		logger = NewNop()
	}
	fields := ContextFields(ctx)
	if len(fields) == 0 {
		return logger
	}
	return logger.With(attrsToArgs(fields)...)
}
