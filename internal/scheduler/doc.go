// Package scheduler is the bounded concurrent work queue: it discovers
// items eligible for their next stage per internal/stagecatalog, dispatches
// them onto per-stage worker pools sized from config.StagePool, and commits
// each stage's outcome through the uniform three-step sequence (local state,
// dashboard row, notification) that internal/stages/* deliberately leaves
// out of every thin adapter.
package scheduler
