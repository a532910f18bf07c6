package resilience

import (
	"testing"
	"time"
)

func TestBreakerTripsAfterThreshold(t *testing.T) {
	b := newBreaker(BreakerConfig{FailureThreshold: 3, Window: time.Minute, CoolDown: time.Second})
	now := time.Now()

	for i := 0; i < 2; i++ {
		ok, _ := b.allow(now)
		if !ok {
			t.Fatalf("expected breaker closed before threshold, iteration %d", i)
		}
		b.recordFailure(now)
	}
	if b.snapshot().State != StateClosed {
		t.Fatalf("expected still closed after 2 failures, got %s", b.snapshot().State)
	}

	ok, _ := b.allow(now)
	if !ok {
		t.Fatal("expected breaker still closed before third failure")
	}
	b.recordFailure(now)
	if b.snapshot().State != StateOpen {
		t.Fatalf("expected open after 3rd failure, got %s", b.snapshot().State)
	}

	ok, _ = b.allow(now)
	if ok {
		t.Fatal("expected breaker to reject calls while open")
	}
}

func TestBreakerHalfOpenRecovery(t *testing.T) {
	b := newBreaker(BreakerConfig{FailureThreshold: 1, Window: time.Minute, CoolDown: 10 * time.Millisecond})
	now := time.Now()
	b.recordFailure(now)
	if b.snapshot().State != StateOpen {
		t.Fatal("expected open after single failure at threshold 1")
	}

	later := now.Add(20 * time.Millisecond)
	ok, isProbe := b.allow(later)
	if !ok || !isProbe {
		t.Fatal("expected a probe to be allowed after cool-down")
	}
	if b.snapshot().State != StateHalfOpen {
		t.Fatalf("expected half-open during probe, got %s", b.snapshot().State)
	}

	b.recordSuccess()
	if b.snapshot().State != StateClosed {
		t.Fatalf("expected closed after successful probe, got %s", b.snapshot().State)
	}
}

func TestBreakerHalfOpenFailureReopens(t *testing.T) {
	b := newBreaker(BreakerConfig{FailureThreshold: 1, Window: time.Minute, CoolDown: 10 * time.Millisecond})
	now := time.Now()
	b.recordFailure(now)

	later := now.Add(20 * time.Millisecond)
	b.allow(later)
	b.recordFailure(later)
	if b.snapshot().State != StateOpen {
		t.Fatalf("expected re-opened after failed probe, got %s", b.snapshot().State)
	}
}

func TestBreakerWindowExpiresOldFailures(t *testing.T) {
	b := newBreaker(BreakerConfig{FailureThreshold: 2, Window: 50 * time.Millisecond, CoolDown: time.Second})
	now := time.Now()
	b.recordFailure(now)

	later := now.Add(100 * time.Millisecond)
	b.recordFailure(later)
	if b.snapshot().State != StateClosed {
		t.Fatalf("expected closed because first failure aged out of window, got %s", b.snapshot().State)
	}
}

func TestRestoreDegradesHalfOpenToOpen(t *testing.T) {
	b := newBreaker(BreakerConfig{FailureThreshold: 1, Window: time.Minute, CoolDown: time.Second})
	now := time.Now()
	b.restore(BreakerSnapshot{State: StateHalfOpen, OpenedAt: now}, now)
	if b.snapshot().State != StateOpen {
		t.Fatalf("expected restored half-open breaker to degrade to open, got %s", b.snapshot().State)
	}
}
