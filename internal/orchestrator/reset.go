package orchestrator

import "context"

// Reset re-enters an item at approved, clearing all error and retry
// state. This backs the CLI's `reset <item_id>` command.
func (o *Orchestrator) Reset(ctx context.Context, itemID string) error {
	return o.items.Reset(ctx, itemID)
}
