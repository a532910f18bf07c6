// Package resilience mediates every outbound call this system makes to an
// external collaborator (LLM providers, TTS, stock-footage search,
// dashboard row store, publishing API). It combines a fixed per-operation
// timeout table, exponential backoff with full jitter, a per-(service,
// operation-class) circuit breaker, and a per-service bulkhead into one
// Call entry point so stage adapters never hand-roll retry loops.
//
// The design is grounded on this repository's own LLM client backoff
// machinery (internal/services/llm) generalized to every operation class,
// and on a Python NetworkResilienceManager/CircuitBreaker pair that this
// system's predecessor used for the same purpose.
package resilience
