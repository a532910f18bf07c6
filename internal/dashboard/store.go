package dashboard

import (
	"context"
	"errors"
)

// ErrStale is returned by UpdateFields when the row's current status no
// longer matches expectedState: another writer moved the item first.
var ErrStale = errors.New("dashboard row is stale")

// ErrNotFound is returned when an item_id has no matching row.
var ErrNotFound = errors.New("dashboard row not found")

// RowStore is the narrow contract the rest of the system needs from the
// external dashboard. The Dashboard Adapter is the only component that
// holds a RowStore; every other package goes through it.
type RowStore interface {
	ListItems(ctx context.Context, filter Filter) ([]Row, error)
	AppendItem(ctx context.Context, fields map[string]string) (string, error)
	UpdateFields(ctx context.Context, itemID string, fields map[string]string, expectedState string) error
	GetItem(ctx context.Context, itemID string) (Row, error)
}
