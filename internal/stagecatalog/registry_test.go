package stagecatalog

import (
	"testing"

	"shortfactory/internal/config"
	"shortfactory/internal/statestore"
)

func stagePoolFixture() config.StagePool {
	return config.StagePool{
		Scripting:     2,
		Narrating:     2,
		SourcingClips: 2,
		Assembling:    1,
		Captioning:    1,
		Metadata:      2,
		Publishing:    1,
		QueueCapacity: 64,
	}
}

func TestResolveReturnsUniqueStageForEachDrivenStatus(t *testing.T) {
	for _, d := range All() {
		item := &statestore.Item{Status: d.FromStatus}
		got, ok := Resolve(item)
		if !ok {
			t.Fatalf("status %q: expected a stage to resolve", d.FromStatus)
		}
		if got.Name != d.Name {
			t.Fatalf("status %q: expected stage %q, got %q", d.FromStatus, d.Name, got.Name)
		}
	}
}

func TestResolveReturnsFalseForUndrivenStatus(t *testing.T) {
	for _, status := range []statestore.Status{
		statestore.StatusPublished,
		statestore.StatusFailed,
		statestore.StatusRetryableError,
	} {
		item := &statestore.Item{Status: status}
		if _, ok := Resolve(item); ok {
			t.Fatalf("status %q: expected no stage to resolve", status)
		}
	}
}

func TestResolveHonorsPrecondition(t *testing.T) {
	original := byFromStatus[statestore.StatusApproved]
	defer func() { byFromStatus[statestore.StatusApproved] = original }()

	blocked := original
	blocked.Precondition = func(item *statestore.Item) bool { return false }
	byFromStatus[statestore.StatusApproved] = blocked

	if _, ok := Resolve(&statestore.Item{Status: statestore.StatusApproved}); ok {
		t.Fatal("expected precondition to block resolution")
	}
}

func TestLookupFindsEveryRegisteredStageByName(t *testing.T) {
	for _, name := range []string{
		"approval", "scripting", "narration", "clipsourcing",
		"assembly", "captioning", "metadata", "publishing",
	} {
		if _, ok := Lookup(name); !ok {
			t.Fatalf("expected %q to be registered", name)
		}
	}
	if _, ok := Lookup("not_a_stage"); ok {
		t.Fatal("expected unknown stage name to miss")
	}
}

func TestDeclarationSeedDefaultsToFingerprint(t *testing.T) {
	d, ok := Lookup("scripting")
	if !ok {
		t.Fatal("expected scripting to be registered")
	}
	item := &statestore.Item{Fingerprint: "abc123"}
	if got := d.seed(item); got != "abc123" {
		t.Fatalf("expected default seed to be the item fingerprint, got %q", got)
	}
}

func TestAllStagePoolSizesResolveAgainstConfig(t *testing.T) {
	pool := stagePoolFixture()
	for _, d := range All() {
		if d.Name == "approval" {
			if d.PoolSize != nil {
				t.Fatal("approval has no dedicated worker pool and should leave PoolSize nil")
			}
			continue
		}
		if d.PoolSize == nil {
			t.Fatalf("stage %q: expected a PoolSize accessor", d.Name)
		}
		if size := d.PoolSize(pool); size <= 0 {
			t.Fatalf("stage %q: expected a positive pool size, got %d", d.Name, size)
		}
	}
}
