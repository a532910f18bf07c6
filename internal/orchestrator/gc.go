package orchestrator

import (
	"context"

	"shortfactory/internal/artifactstore"
	"shortfactory/internal/statestore"
)

// RunGC removes artifact directories for items that have been terminal
// (published or failed) for longer than Retention.GraceDays. This backs
// the CLI's `gc` command and is also run at the end of every RunOnce pass.
func (o *Orchestrator) RunGC(ctx context.Context) (int, error) {
	graceDays := o.cfg.Retention.GraceDays
	if graceDays <= 0 {
		graceDays = 7
	}
	return o.artifacts.CollectGarbage(ctx, graceDays, o.terminalItems, o.logger)
}

func (o *Orchestrator) terminalItems(ctx context.Context) ([]artifactstore.TerminalItem, error) {
	var terminals []artifactstore.TerminalItem
	for _, status := range []statestore.Status{statestore.StatusPublished, statestore.StatusFailed} {
		items, err := o.items.ListByStatus(ctx, status)
		if err != nil {
			return nil, err
		}
		for _, item := range items {
			terminals = append(terminals, artifactstore.TerminalItem{ItemID: item.ItemID, TerminalAt: item.UpdatedAt})
		}
	}
	return terminals, nil
}
