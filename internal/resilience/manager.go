package resilience

import (
	"context"
	"fmt"
	"log/slog"
	"sync"
	"time"

	"shortfactory/internal/config"
	"shortfactory/internal/logging"
	"shortfactory/internal/metrics"
)

// Manager mediates every outbound call this system makes: it applies the
// operation class's fixed timeout, retries retryable failures with
// jittered backoff, gates calls through a per-(service, operation-class)
// circuit breaker, and bounds per-service concurrency with a bulkhead.
type Manager struct {
	cfg      config.Resilience
	stateDir string
	logger   *slog.Logger

	mu        sync.Mutex
	breakers  map[string]*breaker
	bulkheads map[string]*bulkhead

	metrics *metrics.Registry
}

// SetMetrics attaches a metrics registry that Call records per-attempt
// outcomes and breaker state observations into. Safe to call at most once
// before the Manager serves any traffic; a nil Manager.metrics (the
// default) makes every recording call a no-op.
func (m *Manager) SetMetrics(r *metrics.Registry) {
	m.metrics = r
}

// NewManager restores any persisted circuit-breaker state from stateDir and
// returns a ready Manager. logger may be nil.
func NewManager(cfg config.Resilience, stateDir string, logger *slog.Logger) (*Manager, error) {
	if logger == nil {
		logger = logging.NewNop()
	}
	m := &Manager{
		cfg:       cfg,
		stateDir:  stateDir,
		logger:    logger,
		breakers:  map[string]*breaker{},
		bulkheads: map[string]*bulkhead{},
	}
	snapshots, err := loadSnapshots(stateDir)
	if err != nil {
		return nil, fmt.Errorf("load circuit breaker state: %w", err)
	}
	now := time.Now()
	for key, snap := range snapshots {
		b := newBreaker(m.breakerConfig())
		b.restore(snap, now)
		m.breakers[key] = b
	}
	return m, nil
}

func (m *Manager) breakerConfig() BreakerConfig {
	return BreakerConfig{
		FailureThreshold: m.cfg.FailureThreshold,
		Window:           time.Duration(m.cfg.WindowSeconds) * time.Second,
		CoolDown:         time.Duration(m.cfg.CoolDownSeconds) * time.Second,
	}
}

func breakerKey(service string, class OperationClass) string {
	return service + "/" + string(class)
}

func (m *Manager) breakerFor(service string, class OperationClass) *breaker {
	key := breakerKey(service, class)
	m.mu.Lock()
	defer m.mu.Unlock()
	b, ok := m.breakers[key]
	if !ok {
		b = newBreaker(m.breakerConfig())
		m.breakers[key] = b
	}
	return b
}

func (m *Manager) bulkheadFor(service string) *bulkhead {
	m.mu.Lock()
	defer m.mu.Unlock()
	b, ok := m.bulkheads[service]
	if !ok {
		b = newBulkhead(
			int64(m.cfg.BulkheadMaxInFlight),
			int64(m.cfg.BulkheadQueueDepth),
			time.Duration(m.cfg.BulkheadQueueTimeoutSeconds)*time.Second,
		)
		m.bulkheads[service] = b
	}
	return b
}

func (m *Manager) persist() {
	m.mu.Lock()
	snapshots := make(map[string]BreakerSnapshot, len(m.breakers))
	for key, b := range m.breakers {
		snapshots[key] = b.snapshot()
	}
	m.mu.Unlock()

	if err := saveSnapshots(m.stateDir, snapshots); err != nil {
		m.logger.Warn("persist circuit breaker state failed", slog.String("error", err.Error()))
	}
}

// Operation is the mediated unit of work. It receives a context already
// scoped to the operation class's overall timeout and the idempotency key
// derived for this logical call; attempt is 1-based.
type Operation func(ctx context.Context, attempt int, idempotencyKey string) error

// Call mediates a single logical operation against service, retrying
// retryable failures up to maxAttempts times. seed feeds IdempotencyKey so
// every attempt of this logical call carries the same key.
func (m *Manager) Call(ctx context.Context, service string, class OperationClass, maxAttempts int, itemID, stage, seed string, op Operation) error {
	if maxAttempts < 1 {
		maxAttempts = 1
	}
	key := IdempotencyKey(itemID, stage, seed)
	timeouts := TimeoutsFor(class)
	cb := m.breakerFor(service, class)
	bh := m.bulkheadFor(service)

	release, err := bh.acquire(ctx)
	if err != nil {
		return newCallError(KindTransientUnavailable, service, class, fmt.Errorf("bulkhead queue wait: %w", err))
	}
	defer release()

	backoff := NewBackoff(int64(len(key)) + time.Now().UnixNano())

	bkey := breakerKey(service, class)

	var lastErr error
	for attempt := 1; attempt <= maxAttempts; attempt++ {
		ok, _ := cb.allow(time.Now())
		m.recordBreakerState(bkey, cb.snapshot().State)
		if !ok {
			lastErr = newCallError(KindCircuitOpen, service, class, errCircuitOpenSentinel)
			break
		}

		attemptCtx, cancel := context.WithTimeout(ctx, timeouts.Overall)
		start := time.Now()
		callErr := op(attemptCtx, attempt, key)
		cancel()
		latency := time.Since(start)

		if callErr == nil {
			cb.recordSuccess()
			m.recordBreakerState(bkey, cb.snapshot().State)
			m.logOutcome(service, class, attempt, latency, "success", nil)
			m.recordCallOutcome(service, true, "", latency)
			m.persist()
			return nil
		}

		kind := classify(callErr)
		cb.recordFailure(time.Now())
		m.recordBreakerState(bkey, cb.snapshot().State)
		m.logOutcome(service, class, attempt, latency, "failure", callErr)
		m.recordCallOutcome(service, false, string(kind), latency)
		lastErr = newCallError(kind, service, class, callErr)

		if !kind.retryable() || attempt >= maxAttempts {
			break
		}
		delay := backoff.NextDelay(attempt)
		if sleepErr := Sleep(ctx, delay); sleepErr != nil {
			lastErr = newCallError(KindTimeout, service, class, sleepErr)
			break
		}
	}

	m.persist()
	return lastErr
}

func (m *Manager) recordBreakerState(key string, state BreakerState) {
	if m.metrics == nil {
		return
	}
	m.metrics.RecordBreakerState(key, string(state))
}

func (m *Manager) recordCallOutcome(service string, success bool, class string, latency time.Duration) {
	if m.metrics == nil {
		return
	}
	m.metrics.RecordStageOutcome(service, success, class, latency)
}

func (m *Manager) logOutcome(service string, class OperationClass, attempt int, latency time.Duration, outcome string, err error) {
	attrs := []any{
		slog.String(logging.FieldService, service),
		slog.String(logging.FieldOperationClass, string(class)),
		slog.Int(logging.FieldAttempt, attempt),
		slog.Int64(logging.FieldLatencyMS, latency.Milliseconds()),
		slog.String(logging.FieldOutcome, outcome),
	}
	if err != nil {
		m.logger.Warn("external call failed", append(attrs, slog.String("error", err.Error()))...)
		return
	}
	m.logger.Debug("external call succeeded", attrs...)
}

// BreakerStates returns a snapshot of every breaker's current state, keyed
// by "service/class", for health reporting.
func (m *Manager) BreakerStates() map[string]BreakerState {
	m.mu.Lock()
	defer m.mu.Unlock()
	out := make(map[string]BreakerState, len(m.breakers))
	for key, b := range m.breakers {
		out[key] = b.snapshot().State
	}
	return out
}
