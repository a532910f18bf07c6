// Package metrics is an in-process counter and latency registry for the
// pipeline: per-stage throughput and error-rate-by-class, and per-service
// circuit-breaker state transitions. It exposes a point-in-time Snapshot
// for the status command and structured-log emission rather than a pull or
// push endpoint, since nothing in this system's scope talks to an external
// metrics backend.
package metrics
