package orchestrator

import (
	"context"
	"errors"
	"fmt"
	"os"
	"time"

	"shortfactory/internal/dashboard"
	"shortfactory/internal/logging"
	"shortfactory/internal/statestore"
)

// Start acquires the single-instance lock and runs startup reconciliation.
// Grounded on five82-spindle's daemon.Daemon.Start, which the same way
// TryLocks before doing any queue work so two daemons never race the same
// state file.
func (o *Orchestrator) Start(ctx context.Context) error {
	o.mu.Lock()
	if o.running {
		o.mu.Unlock()
		return errors.New("orchestrator already running")
	}
	o.mu.Unlock()

	ok, err := o.lock.TryLock()
	if err != nil {
		return fmt.Errorf("acquire orchestrator lock: %w", err)
	}
	if !ok {
		return fmt.Errorf("another shortfactory instance holds the lock at %s", o.lockPath)
	}

	if err := o.reconcileStartup(ctx); err != nil {
		_ = o.lock.Unlock()
		return fmt.Errorf("startup reconciliation: %w", err)
	}

	o.mu.Lock()
	o.running = true
	o.mu.Unlock()
	o.logger.Info("orchestrator started", logging.String("lock", o.lockPath))
	return nil
}

// Stop releases the single-instance lock. It does not cancel any
// in-flight Run/RunOnce call; the caller's context does that.
func (o *Orchestrator) Stop() {
	o.mu.Lock()
	defer o.mu.Unlock()
	if !o.running {
		return
	}
	if err := o.lock.Unlock(); err != nil {
		o.logger.Warn("failed to release orchestrator lock", logging.Error(err))
	}
	o.running = false
	o.logger.Info("orchestrator stopped")
}

// Close stops the orchestrator and releases the underlying state store.
func (o *Orchestrator) Close() error {
	o.Stop()
	return o.items.Close()
}

// reconcileStartup rolls back any item left mid-stage by an unclean
// shutdown, then resolves disagreement between local state and the
// dashboard's last-seen status, per statestore.ReconcileStartup.
func (o *Orchestrator) reconcileStartup(ctx context.Context) error {
	reset, err := o.items.ResetStuckProcessing(ctx)
	if err != nil {
		return fmt.Errorf("reset stuck items: %w", err)
	}
	if reset > 0 {
		o.logger.Info("reset stuck in-flight items", logging.Int64("count", reset))
	}

	rows, err := o.dashboard.ListItems(ctx, dashboard.Filter{})
	if err != nil {
		o.logger.Warn("failed to list dashboard rows for reconciliation", logging.Error(err))
		return nil
	}

	snapshots := make(map[string]statestore.DashboardSnapshot, len(rows))
	for _, row := range rows {
		status, ok := statestore.StatusFromDashboardLabel(row.Status)
		if !ok {
			continue
		}
		snapshots[row.ItemID] = statestore.DashboardSnapshot{ItemID: row.ItemID, Status: status}
	}

	reconciled, err := o.items.ReconcileStartup(ctx, snapshots, o.artifactsExist)
	if err != nil {
		return fmt.Errorf("reconcile startup: %w", err)
	}
	if len(reconciled) > 0 {
		o.logger.Info("reconciled items against dashboard snapshot", logging.Int("count", len(reconciled)))
	}
	return nil
}

// artifactsExist implements statestore.ArtifactChecker by stat-ing every
// path the item references directly; artifact identity is a full path
// (internal/artifactstore already fsyncs and hashes on write), so no
// lookup through the artifact store itself is needed here.
func (o *Orchestrator) artifactsExist(item *statestore.Item) bool {
	for _, path := range item.ReferencedArtifactPaths() {
		if path == "" {
			continue
		}
		if _, err := os.Stat(path); err != nil {
			return false
		}
	}
	return true
}

func reclaimStaleHeartbeats(ctx context.Context, items *statestore.Store, timeout time.Duration) (int64, error) {
	return items.ReclaimStaleProcessing(ctx, time.Now().UTC().Add(-timeout))
}
