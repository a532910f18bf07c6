// Package approval checks the dashboard's operator-facing Status column
// for a pending_approval item and advances it once approved.
package approval

import (
	"context"
	"errors"
	"fmt"

	"shortfactory/internal/dashboard"
	"shortfactory/internal/resilience"
	"shortfactory/internal/stage"
	"shortfactory/internal/statestore"
)

const serviceName = "dashboard"

// ErrPendingApproval indicates the dashboard row has not yet been marked
// Approved by the operator. This is not a stage failure: the scheduler
// should leave the item's status and attempt counters untouched and
// simply reconsider it on the next discovery pass, the way a true/false
// precondition would if Declaration.Precondition could see the dashboard.
var ErrPendingApproval = errors.New("item is still pending operator approval")

// Stage resolves whether an operator has approved an item for production.
type Stage struct {
	dashboard  *dashboard.Adapter
	resilience *resilience.Manager
}

// New constructs the approval stage adapter.
func New(adapter *dashboard.Adapter, res *resilience.Manager) *Stage {
	return &Stage{dashboard: adapter, resilience: res}
}

// Prepare is a no-op: approval has no local artifact prerequisites.
func (s *Stage) Prepare(_ context.Context, _ *statestore.Item) error { return nil }

// Execute reads the dashboard row and returns ErrPendingApproval until the
// operator has set its Status to Approved.
func (s *Stage) Execute(ctx context.Context, item *statestore.Item) error {
	var row dashboard.Row
	err := s.resilience.Call(ctx, serviceName, resilience.ClassAPI, 1,
		item.ItemID, "approval", item.Fingerprint,
		func(ctx context.Context, attempt int, idempotencyKey string) error {
			fetched, callErr := s.dashboard.GetItem(ctx, item.ItemID)
			if callErr != nil {
				return callErr
			}
			row = fetched
			return nil
		})
	if err != nil {
		return err
	}
	if row.Status != statestore.StatusApproved.DashboardStatusLabel() {
		return ErrPendingApproval
	}
	return nil
}

// HealthCheck reports whether the dashboard row store is reachable.
func (s *Stage) HealthCheck(ctx context.Context) stage.Health {
	if _, err := s.dashboard.ListItems(ctx, dashboard.Filter{}); err != nil {
		return stage.Unhealthy("approval", fmt.Sprintf("dashboard unreachable: %v", err))
	}
	return stage.Healthy("approval")
}
