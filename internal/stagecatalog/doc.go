// Package stagecatalog is the single source of truth for the pipeline's
// workflow graph: a static table of stage declarations naming each
// stage's eligibility status, required artifacts, produced artifacts,
// idempotency seed, retry budget, and resilient-call operation class.
// Given an item's current status, the registry resolves the unique
// next-eligible stage or reports that none applies, the way this
// repository's teacher hard-codes lane order in workflow.Manager but
// generalized here into data per the pipeline's ten-stage graph.
package stagecatalog
