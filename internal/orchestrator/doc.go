// Package orchestrator is the supervisor: it owns the single-instance
// lock, runs startup reconciliation, schedules the ideation/trend-ingest
// producers on their own cadence, drives internal/scheduler through its
// once/loop run modes, and publishes aggregate health. It generalizes
// five82-spindle's internal/workflow.Manager and internal/daemon.Daemon
// (Start/Stop lifecycle, single-instance lock, daily schedule) into a
// registry-and-scheduler-driven supervisor for this domain.
package orchestrator
