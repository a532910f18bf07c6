package resilience

import (
	"sync"
	"time"
)

// BreakerState mirrors the three states of the classic circuit breaker
// pattern this package's predecessor implemented in Python.
type BreakerState string

const (
	StateClosed   BreakerState = "closed"
	StateOpen     BreakerState = "open"
	StateHalfOpen BreakerState = "half_open"
)

// BreakerConfig parameterizes one breaker instance.
type BreakerConfig struct {
	FailureThreshold int
	Window           time.Duration
	CoolDown         time.Duration
}

// breaker tracks failures in a trailing window and trips from Closed to
// Open when the failure count reaches the threshold, following the same state names and
// transition rules as the Python CircuitBreaker this is grounded on, but
// counting failures within a sliding window rather than an unbounded
// consecutive-failure counter so an old failure eventually stops counting
// against the service.
type breaker struct {
	mu               sync.Mutex
	cfg              BreakerConfig
	state            BreakerState
	failureTimes     []time.Time
	openedAt         time.Time
	halfOpenInFlight bool
}

func newBreaker(cfg BreakerConfig) *breaker {
	return &breaker{cfg: cfg, state: StateClosed}
}

// allow reports whether a call may proceed, and if so, whether it counts as
// the single half-open probe.
func (b *breaker) allow(now time.Time) (ok bool, isProbe bool) {
	b.mu.Lock()
	defer b.mu.Unlock()

	switch b.state {
	case StateOpen:
		if now.Sub(b.openedAt) < b.cfg.CoolDown {
			return false, false
		}
		b.state = StateHalfOpen
		b.halfOpenInFlight = true
		return true, true
	case StateHalfOpen:
		// Only one probe in flight at a time; concurrent callers are
		// rejected as if the breaker were open rather than piling onto
		// the probe.
		if b.halfOpenInFlight {
			return false, false
		}
		b.halfOpenInFlight = true
		return true, true
	default:
		return true, false
	}
}

func (b *breaker) recordSuccess() {
	b.mu.Lock()
	defer b.mu.Unlock()
	b.failureTimes = nil
	b.halfOpenInFlight = false
	b.state = StateClosed
}

func (b *breaker) recordFailure(now time.Time) {
	b.mu.Lock()
	defer b.mu.Unlock()
	b.halfOpenInFlight = false

	if b.state == StateHalfOpen {
		b.trip(now)
		return
	}

	cutoff := now.Add(-b.cfg.Window)
	kept := b.failureTimes[:0]
	for _, t := range b.failureTimes {
		if t.After(cutoff) {
			kept = append(kept, t)
		}
	}
	kept = append(kept, now)
	b.failureTimes = kept

	if len(b.failureTimes) >= b.cfg.FailureThreshold {
		b.trip(now)
	}
}

func (b *breaker) trip(now time.Time) {
	b.state = StateOpen
	b.openedAt = now
	b.failureTimes = nil
}

func (b *breaker) snapshot() BreakerSnapshot {
	b.mu.Lock()
	defer b.mu.Unlock()
	return BreakerSnapshot{
		State:      b.state,
		OpenedAt:   b.openedAt,
		FailureLen: len(b.failureTimes),
	}
}

func (b *breaker) restore(snap BreakerSnapshot, now time.Time) {
	b.mu.Lock()
	defer b.mu.Unlock()
	b.state = snap.State
	b.openedAt = snap.OpenedAt
	// A restored Open breaker's cool-down clock keeps running against the
	// original openedAt; a restored Half-Open breaker degrades to Open so a
	// crash mid-probe doesn't grant an unbounded free probe on restart.
	if b.state == StateHalfOpen {
		b.state = StateOpen
		b.openedAt = now
	}
}

// BreakerSnapshot is the on-disk representation of one breaker's state.
type BreakerSnapshot struct {
	State      BreakerState `json:"state"`
	OpenedAt   time.Time    `json:"opened_at"`
	FailureLen int          `json:"failure_count"`
}
