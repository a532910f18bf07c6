package resilience

import (
	"context"
	"errors"
	"os"
	"path/filepath"
	"testing"

	"shortfactory/internal/config"
	"shortfactory/internal/services"
)

func testConfig() config.Resilience {
	return config.Resilience{
		FailureThreshold:            2,
		WindowSeconds:               60,
		CoolDownSeconds:             30,
		BulkheadMaxInFlight:         2,
		BulkheadQueueDepth:          4,
		BulkheadQueueTimeoutSeconds: 5,
	}
}

func TestCallRetriesTransientFailureThenSucceeds(t *testing.T) {
	m, err := NewManager(testConfig(), t.TempDir(), nil)
	if err != nil {
		t.Fatalf("NewManager: %v", err)
	}

	attempts := 0
	callErr := m.Call(context.Background(), "pexels", ClassSearch, 3, "item-1", "sourcing_clips", "seed-1",
		func(ctx context.Context, attempt int, key string) error {
			attempts++
			if key == "" {
				t.Fatal("expected non-empty idempotency key")
			}
			if attempts < 2 {
				return services.Wrap(services.ErrTransient, "clips", "search", "temporary failure", nil)
			}
			return nil
		})
	if callErr != nil {
		t.Fatalf("expected eventual success, got %v", callErr)
	}
	if attempts != 2 {
		t.Fatalf("expected 2 attempts, got %d", attempts)
	}
}

func TestCallDoesNotRetryValidationFailure(t *testing.T) {
	m, err := NewManager(testConfig(), t.TempDir(), nil)
	if err != nil {
		t.Fatalf("NewManager: %v", err)
	}

	attempts := 0
	callErr := m.Call(context.Background(), "dashboard", ClassAPI, 5, "item-1", "metadata", "seed-2",
		func(ctx context.Context, attempt int, key string) error {
			attempts++
			return services.Wrap(services.ErrValidation, "dashboard", "update_fields", "bad field", nil)
		})
	if callErr == nil {
		t.Fatal("expected validation failure to surface")
	}
	if attempts != 1 {
		t.Fatalf("expected exactly 1 attempt for non-retryable failure, got %d", attempts)
	}
	var ce *CallError
	if !errors.As(callErr, &ce) {
		t.Fatalf("expected CallError, got %T", callErr)
	}
	if ce.Kind != KindValidationError {
		t.Fatalf("expected validation kind, got %s", ce.Kind)
	}
}

func TestCallOpensCircuitAfterRepeatedFailures(t *testing.T) {
	m, err := NewManager(testConfig(), t.TempDir(), nil)
	if err != nil {
		t.Fatalf("NewManager: %v", err)
	}

	failing := func(ctx context.Context, attempt int, key string) error {
		return services.Wrap(services.ErrTransient, "elevenlabs", "narrate", "provider down", nil)
	}

	for i := 0; i < 2; i++ {
		_ = m.Call(context.Background(), "elevenlabs", ClassGeneration, 1, "item-1", "narrating", "seed-3", failing)
	}

	callErr := m.Call(context.Background(), "elevenlabs", ClassGeneration, 1, "item-1", "narrating", "seed-4", failing)
	var ce *CallError
	if !errors.As(callErr, &ce) {
		t.Fatalf("expected CallError, got %T", callErr)
	}
	if ce.Kind != KindCircuitOpen {
		t.Fatalf("expected circuit open after threshold failures, got %s", ce.Kind)
	}
}

func TestCircuitBreakerStatePersistsAcrossManagers(t *testing.T) {
	dir := t.TempDir()
	m, err := NewManager(testConfig(), dir, nil)
	if err != nil {
		t.Fatalf("NewManager: %v", err)
	}
	failing := func(ctx context.Context, attempt int, key string) error {
		return services.Wrap(services.ErrTransient, "youtube", "publish", "quota exceeded", nil)
	}
	for i := 0; i < 2; i++ {
		_ = m.Call(context.Background(), "youtube", ClassAPI, 1, "item-1", "publishing", "seed-5", failing)
	}

	states := m.BreakerStates()
	if states[breakerKey("youtube", ClassAPI)] != StateOpen {
		t.Fatalf("expected breaker open before restart, got %v", states)
	}

	restarted, err := NewManager(testConfig(), dir, nil)
	if err != nil {
		t.Fatalf("NewManager (restart): %v", err)
	}
	restartedStates := restarted.BreakerStates()
	if restartedStates[breakerKey("youtube", ClassAPI)] != StateOpen {
		t.Fatalf("expected restored breaker to still be open, got %v", restartedStates)
	}

	if _, statErr := statSnapshotFile(dir); statErr != nil {
		t.Fatalf("expected persisted snapshot file: %v", statErr)
	}
}

func statSnapshotFile(dir string) (bool, error) {
	_, err := os.Stat(filepath.Join(dir, circuitBreakerFile))
	if err != nil {
		return false, err
	}
	return true, nil
}
