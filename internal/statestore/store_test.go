package statestore

import (
	"context"
	"testing"
	"time"

	"shortfactory/internal/config"
)

func testStore(t *testing.T) *Store {
	t.Helper()
	dir := t.TempDir()
	cfg := &config.Config{Paths: config.Paths{
		ArtifactRoot: dir + "/artifacts",
		StateDir:     dir + "/state",
		LogDir:       dir + "/logs",
	}}
	store, err := Open(cfg)
	if err != nil {
		t.Fatalf("Open: %v", err)
	}
	t.Cleanup(func() { _ = store.Close() })
	return store
}

func TestCreateGetRoundTrip(t *testing.T) {
	store := testStore(t)
	ctx := context.Background()

	item := &Item{
		ItemID:      "item-1",
		Source:      SourceAIIdeation,
		ConceptText: "three morning habits",
		Tags:        []string{"habits", "morning"},
	}
	if err := store.Create(ctx, item); err != nil {
		t.Fatalf("Create: %v", err)
	}
	if item.Status != StatusPendingApproval {
		t.Fatalf("expected default status pending_approval, got %s", item.Status)
	}

	got, err := store.Get(ctx, "item-1")
	if err != nil {
		t.Fatalf("Get: %v", err)
	}
	if got.ConceptText != item.ConceptText {
		t.Fatalf("concept text mismatch: got %q", got.ConceptText)
	}
	if len(got.Tags) != 2 || got.Tags[0] != "habits" {
		t.Fatalf("tags round-trip mismatch: %v", got.Tags)
	}
}

func TestGetMissingReturnsErrNotFound(t *testing.T) {
	store := testStore(t)
	if _, err := store.Get(context.Background(), "nope"); err != ErrNotFound {
		t.Fatalf("expected ErrNotFound, got %v", err)
	}
}

func TestListByStatusOrdersOldestFirst(t *testing.T) {
	store := testStore(t)
	ctx := context.Background()

	for _, id := range []string{"a", "b", "c"} {
		if err := store.Create(ctx, &Item{ItemID: id, Source: SourceAIIdeation, Status: StatusApproved}); err != nil {
			t.Fatalf("Create %s: %v", id, err)
		}
	}

	items, err := store.ListByStatus(ctx, StatusApproved)
	if err != nil {
		t.Fatalf("ListByStatus: %v", err)
	}
	if len(items) != 3 {
		t.Fatalf("expected 3 items, got %d", len(items))
	}
	if items[0].ItemID != "a" || items[2].ItemID != "c" {
		t.Fatalf("expected creation order a,b,c, got %v", []string{items[0].ItemID, items[1].ItemID, items[2].ItemID})
	}
}

func TestRecordStageFailureRetriesUnderMaxAttempts(t *testing.T) {
	store := testStore(t)
	ctx := context.Background()
	item := &Item{ItemID: "item-2", Source: SourceAIIdeation, Status: StatusNarrating}
	if err := store.Create(ctx, item); err != nil {
		t.Fatal(err)
	}

	if err := store.RecordStageFailure(ctx, item, "narrating", FailureTransient, "503", 3, time.Second); err != nil {
		t.Fatalf("RecordStageFailure: %v", err)
	}
	if item.Status != StatusRetryableError {
		t.Fatalf("expected retryable_error, got %s", item.Status)
	}
	if item.StageAttempts["narrating"] != 1 {
		t.Fatalf("expected 1 attempt recorded, got %d", item.StageAttempts["narrating"])
	}
	if item.RetryAfter == nil {
		t.Fatal("expected RetryAfter to be set")
	}
}

func TestRecordStageFailureFailsAfterMaxAttempts(t *testing.T) {
	store := testStore(t)
	ctx := context.Background()
	item := &Item{ItemID: "item-3", Source: SourceAIIdeation, Status: StatusNarrating, StageAttempts: map[string]int{"narrating": 2}}
	if err := store.Create(ctx, item); err != nil {
		t.Fatal(err)
	}

	if err := store.RecordStageFailure(ctx, item, "narrating", FailureTransient, "503", 3, time.Second); err != nil {
		t.Fatalf("RecordStageFailure: %v", err)
	}
	if item.Status != StatusFailed {
		t.Fatalf("expected failed after reaching max attempts, got %s", item.Status)
	}
	if item.FailedStage != "narrating" {
		t.Fatalf("expected failed stage narrating, got %s", item.FailedStage)
	}
}

func TestRecordStageFailureNonRetryableFailsImmediately(t *testing.T) {
	store := testStore(t)
	ctx := context.Background()
	item := &Item{ItemID: "item-4", Source: SourceAIIdeation, Status: StatusScripting}
	if err := store.Create(ctx, item); err != nil {
		t.Fatal(err)
	}

	if err := store.RecordStageFailure(ctx, item, "scripting", FailureValidation, "bad prompt", 3, time.Second); err != nil {
		t.Fatalf("RecordStageFailure: %v", err)
	}
	if item.Status != StatusFailed {
		t.Fatalf("expected immediate failure for validation class, got %s", item.Status)
	}
	if item.StageAttempts["scripting"] != 0 {
		t.Fatalf("expected no attempt increment for non-retryable failure, got %d", item.StageAttempts["scripting"])
	}
}

func TestResetClearsErrorStateBackToApproved(t *testing.T) {
	store := testStore(t)
	ctx := context.Background()
	item := &Item{ItemID: "item-5", Source: SourceAIIdeation, Status: StatusFailed, FailedStage: "narrating"}
	if err := store.Create(ctx, item); err != nil {
		t.Fatal(err)
	}

	if err := store.Reset(ctx, "item-5"); err != nil {
		t.Fatalf("Reset: %v", err)
	}
	got, err := store.Get(ctx, "item-5")
	if err != nil {
		t.Fatal(err)
	}
	if got.Status != StatusApproved || got.FailedStage != "" {
		t.Fatalf("expected reset to approved with no failed stage, got %+v", got)
	}
}

func TestResetStuckProcessingRollsBackInFlightStatuses(t *testing.T) {
	store := testStore(t)
	ctx := context.Background()
	if err := store.Create(ctx, &Item{ItemID: "item-6", Source: SourceAIIdeation, Status: StatusAssembling}); err != nil {
		t.Fatal(err)
	}

	affected, err := store.ResetStuckProcessing(ctx)
	if err != nil {
		t.Fatalf("ResetStuckProcessing: %v", err)
	}
	if affected != 1 {
		t.Fatalf("expected 1 item reset, got %d", affected)
	}
	got, err := store.Get(ctx, "item-6")
	if err != nil {
		t.Fatal(err)
	}
	if got.Status != StatusClipsSourced {
		t.Fatalf("expected rollback to clips_sourced, got %s", got.Status)
	}
}

func TestReconcileStartupPrefersMoreAdvancedSideWhenArtifactsExist(t *testing.T) {
	store := testStore(t)
	ctx := context.Background()
	if err := store.Create(ctx, &Item{ItemID: "item-7", Source: SourceAIIdeation, Status: StatusScripted}); err != nil {
		t.Fatal(err)
	}

	snapshots := map[string]DashboardSnapshot{"item-7": {ItemID: "item-7", Status: StatusApproved}}
	reconciled, err := store.ReconcileStartup(ctx, snapshots, func(item *Item) bool { return true })
	if err != nil {
		t.Fatalf("ReconcileStartup: %v", err)
	}
	if len(reconciled) != 1 {
		t.Fatalf("expected 1 reconciled item, got %v", reconciled)
	}
	got, err := store.Get(ctx, "item-7")
	if err != nil {
		t.Fatal(err)
	}
	if got.Status != StatusScripted {
		t.Fatalf("expected local (more advanced) status to win, got %s", got.Status)
	}
}

func TestReconcileStartupFallsBackWhenArtifactsMissing(t *testing.T) {
	store := testStore(t)
	ctx := context.Background()
	if err := store.Create(ctx, &Item{ItemID: "item-8", Source: SourceAIIdeation, Status: StatusScripted}); err != nil {
		t.Fatal(err)
	}

	snapshots := map[string]DashboardSnapshot{"item-8": {ItemID: "item-8", Status: StatusApproved}}
	reconciled, err := store.ReconcileStartup(ctx, snapshots, func(item *Item) bool { return false })
	if err != nil {
		t.Fatalf("ReconcileStartup: %v", err)
	}
	if len(reconciled) != 1 {
		t.Fatalf("expected 1 reconciled item, got %v", reconciled)
	}
	got, err := store.Get(ctx, "item-8")
	if err != nil {
		t.Fatal(err)
	}
	if got.Status != StatusApproved {
		t.Fatalf("expected less-advanced status to win when artifacts missing, got %s", got.Status)
	}
}

func TestItemReferencedArtifactPathsIncludesStockClips(t *testing.T) {
	item := Item{
		ScriptPath:     "/root/artifacts/script/item-1/a.txt",
		StockClipPaths: []string{"/a.mp4", "/b.mp4"},
	}
	paths := item.ReferencedArtifactPaths()
	if len(paths) != 7 {
		t.Fatalf("expected 5 fixed fields + 2 stock clips, got %d: %v", len(paths), paths)
	}
}
