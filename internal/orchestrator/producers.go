package orchestrator

import (
	"context"
	"fmt"

	"github.com/google/uuid"

	"shortfactory/internal/logging"
	"shortfactory/internal/notifications"
	"shortfactory/internal/services"
	"shortfactory/internal/statestore"
)

// runProducers calls every registered producer once, persisting each
// resulting concept as a new pending-approval item. A producer's own
// resilience.Manager.Call already retries transient failures; a producer
// that still errors here is logged and skipped rather than aborting the
// others, since a bad Reddit fetch should not block ideation.
func (o *Orchestrator) runProducers(ctx context.Context) {
	for _, producer := range o.producers {
		producerCtx := services.WithRequestID(services.WithStage(ctx, producer.Name()), uuid.NewString())
		logger := logging.WithContext(producerCtx, o.logger)

		concepts, err := producer.Produce(producerCtx)
		if err != nil {
			logger.Warn("producer run failed", logging.String("producer", producer.Name()), logging.Error(err))
			o.publish(producerCtx, notifications.EventError, notifications.Payload{
				"context": producer.Name(),
				"error":   err.Error(),
			})
			continue
		}

		created := 0
		for _, concept := range concepts {
			if err := o.createItem(producerCtx, concept); err != nil {
				logger.Warn("failed to persist produced concept",
					logging.String("producer", producer.Name()), logging.Error(err))
				continue
			}
			created++
		}
		logger.Info("producer run complete",
			logging.String("producer", producer.Name()),
			logging.Int("concepts", len(concepts)),
			logging.Int("created", created))
	}
}

// createItem appends a dashboard row (the store of record for item_id
// assignment) and a matching local state row for one produced concept.
func (o *Orchestrator) createItem(ctx context.Context, concept Concept) error {
	fields := map[string]string{
		"source":        string(concept.Source),
		"title_concept": concept.ConceptText,
		"status":        statestore.StatusPendingApproval.DashboardStatusLabel(),
	}
	rowID, err := o.dashboard.AppendItem(ctx, fields)
	if err != nil {
		return fmt.Errorf("append dashboard row: %w", err)
	}

	item := &statestore.Item{
		ItemID:      rowID,
		Source:      concept.Source,
		ConceptText: concept.ConceptText,
		Status:      statestore.StatusPendingApproval,
		Fingerprint: concept.Fingerprint,
	}
	if err := o.items.Create(ctx, item); err != nil {
		return fmt.Errorf("create item %s: %w", rowID, err)
	}
	return nil
}
