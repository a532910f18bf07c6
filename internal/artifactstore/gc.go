package artifactstore

import (
	"context"
	"log/slog"
	"time"
)

// TerminalItem is the minimal view the garbage collector needs of an item:
// enough to decide whether its artifacts are past the retention window.
type TerminalItem struct {
	ItemID     string
	TerminalAt time.Time
}

// TerminalItemsFunc supplies the current set of terminal (published or
// failed) items; the statestore package provides the real implementation.
type TerminalItemsFunc func(ctx context.Context) ([]TerminalItem, error)

// CollectGarbage removes artifact directories for every terminal item whose
// TerminalAt is older than graceDays. It takes each item's lock before
// removing its directories so it cannot race a concurrent reset that
// re-queues the item.
func (s *Store) CollectGarbage(ctx context.Context, graceDays int, terminals TerminalItemsFunc, logger *slog.Logger) (int, error) {
	items, err := terminals(ctx)
	if err != nil {
		return 0, err
	}
	cutoff := s.now().Add(-time.Duration(graceDays) * 24 * time.Hour)

	removed := 0
	for _, item := range items {
		if item.TerminalAt.After(cutoff) {
			continue
		}
		release, lockErr := s.Lock(ctx, item.ItemID)
		if lockErr != nil {
			if logger != nil {
				logger.Warn("gc: failed to acquire item lock", slog.String("item_id", item.ItemID), slog.String("error", lockErr.Error()))
			}
			continue
		}
		err := s.RemoveItem(item.ItemID)
		release()
		if err != nil {
			if logger != nil {
				logger.Warn("gc: failed to remove artifact directories", slog.String("item_id", item.ItemID), slog.String("error", err.Error()))
			}
			continue
		}
		removed++
	}
	return removed, nil
}
