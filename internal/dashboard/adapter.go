package dashboard

import (
	"context"
	"fmt"

	"shortfactory/internal/validation"
)

// Adapter is the Dashboard Adapter: the sole entry point the rest of the
// system uses to read or write the external row store. Every field value
// passed to AppendItem or UpdateFields is sanitized through
// internal/validation before it reaches the underlying RowStore.
type Adapter struct {
	store RowStore
}

// New wraps store behind the validating Dashboard Adapter contract.
func New(store RowStore) *Adapter {
	return &Adapter{store: store}
}

func (a *Adapter) ListItems(ctx context.Context, filter Filter) ([]Row, error) {
	return a.store.ListItems(ctx, filter)
}

func (a *Adapter) GetItem(ctx context.Context, itemID string) (Row, error) {
	return a.store.GetItem(ctx, itemID)
}

// AppendItem sanitizes every field value before appending a new row and
// returns the store-assigned item_id.
func (a *Adapter) AppendItem(ctx context.Context, fields map[string]string) (string, error) {
	if err := validateFields(fields); err != nil {
		return "", err
	}
	return a.store.AppendItem(ctx, fields)
}

// UpdateFields sanitizes every field value before applying an
// optimistic-concurrency update keyed on expectedState.
func (a *Adapter) UpdateFields(ctx context.Context, itemID string, fields map[string]string, expectedState string) error {
	if err := validateFields(fields); err != nil {
		return err
	}
	return a.store.UpdateFields(ctx, itemID, fields, expectedState)
}

func validateFields(fields map[string]string) error {
	for key, value := range fields {
		if err := validation.CheckSafe(fmt.Sprintf("dashboard.%s", key), value); err != nil {
			return err
		}
	}
	return nil
}
