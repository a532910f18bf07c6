// Package statestore persists per-item pipeline state in SQLite.
//
// Every transition is a three-step commit: artifact finalize (by the
// caller, via internal/artifactstore), local state-file rewrite (this
// package, via an UPDATE inside a transaction), then a dashboard row
// update (internal/dashboard). The per-item advisory lock held by the
// caller for the duration of a stage execution makes all three steps
// appear atomic to any other worker.
//
// On daemon startup, Store.ReconcileStartup compares every item's local
// state against its dashboard row and resolves disagreement in favor of
// whichever side is more advanced, provided its referenced artifacts
// still exist on disk; otherwise the less-advanced side wins and the
// item is re-queued.
package statestore
