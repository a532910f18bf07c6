package artifactstore

import (
	"context"
	"os"
	"path/filepath"
	"testing"
	"time"
)

func TestAcquireFinalizeRenamesIntoPlace(t *testing.T) {
	store, err := Open(t.TempDir())
	if err != nil {
		t.Fatalf("Open: %v", err)
	}

	h, err := store.Acquire("item-1", KindScript, ".txt")
	if err != nil {
		t.Fatalf("Acquire: %v", err)
	}
	if _, err := h.Write([]byte("script body")); err != nil {
		t.Fatalf("Write: %v", err)
	}
	artifact, err := h.Finalize()
	if err != nil {
		t.Fatalf("Finalize: %v", err)
	}

	if _, err := os.Stat(artifact.Path); err != nil {
		t.Fatalf("expected finalized file at %s: %v", artifact.Path, err)
	}
	if filepath.Dir(artifact.Path) != store.itemDir(KindScript, "item-1") {
		t.Fatalf("unexpected artifact directory: %s", artifact.Path)
	}
	if artifact.SizeBytes != int64(len("script body")) {
		t.Fatalf("expected size %d, got %d", len("script body"), artifact.SizeBytes)
	}
	if artifact.SHA256Hex == "" {
		t.Fatal("expected a content hash")
	}

	entries, err := os.ReadDir(filepath.Dir(artifact.Path))
	if err != nil {
		t.Fatal(err)
	}
	for _, e := range entries {
		if isTempName(e.Name()) {
			t.Fatalf("temp file leaked into final directory: %s", e.Name())
		}
	}
}

func TestAbortLeavesNoFinalFile(t *testing.T) {
	store, err := Open(t.TempDir())
	if err != nil {
		t.Fatalf("Open: %v", err)
	}
	h, err := store.Acquire("item-2", KindNarration, ".mp3")
	if err != nil {
		t.Fatalf("Acquire: %v", err)
	}
	if _, err := h.Write([]byte("audio bytes")); err != nil {
		t.Fatal(err)
	}
	h.Abort()

	exists, err := store.Exists("item-2", KindNarration)
	if err != nil {
		t.Fatal(err)
	}
	if exists {
		t.Fatal("expected no finalized artifact after Abort")
	}

	entries, _ := os.ReadDir(store.itemDir(KindNarration, "item-2"))
	if len(entries) != 0 {
		t.Fatalf("expected abort to remove the temp file, found %d entries", len(entries))
	}
}

func TestListOrdersOldestFirstAndIgnoresTemp(t *testing.T) {
	tick := time.Unix(1_700_000_000, 0)
	store, err := Open(t.TempDir(), WithClock(func() time.Time {
		tick = tick.Add(time.Second)
		return tick
	}))
	if err != nil {
		t.Fatalf("Open: %v", err)
	}

	for i := 0; i < 3; i++ {
		h, err := store.Acquire("item-3", KindStockClip, ".mp4")
		if err != nil {
			t.Fatal(err)
		}
		if _, err := h.Write([]byte{byte(i)}); err != nil {
			t.Fatal(err)
		}
		if _, err := h.Finalize(); err != nil {
			t.Fatal(err)
		}
	}

	artifacts, err := store.List("item-3", KindStockClip)
	if err != nil {
		t.Fatal(err)
	}
	if len(artifacts) != 3 {
		t.Fatalf("expected 3 artifacts, got %d", len(artifacts))
	}
	for i := 1; i < len(artifacts); i++ {
		if artifacts[i].CreatedAt.Before(artifacts[i-1].CreatedAt) {
			t.Fatalf("artifacts not ordered oldest-first: %v", artifacts)
		}
	}
}

func TestLockSerializesConcurrentAcquire(t *testing.T) {
	store, err := Open(t.TempDir())
	if err != nil {
		t.Fatalf("Open: %v", err)
	}

	release, err := store.Lock(context.Background(), "item-4")
	if err != nil {
		t.Fatalf("Lock: %v", err)
	}

	unlocked := make(chan struct{})
	go func() {
		r2, err := store.Lock(context.Background(), "item-4")
		if err != nil {
			t.Errorf("second Lock: %v", err)
			return
		}
		r2()
		close(unlocked)
	}()

	select {
	case <-unlocked:
		t.Fatal("second Lock acquired before first was released")
	case <-time.After(30 * time.Millisecond):
	}

	release()
	select {
	case <-unlocked:
	case <-time.After(time.Second):
		t.Fatal("second Lock never acquired after release")
	}
}

func TestCollectGarbageRemovesOnlyPastGraceWindow(t *testing.T) {
	now := time.Now()
	store, err := Open(t.TempDir(), WithClock(func() time.Time { return now }))
	if err != nil {
		t.Fatalf("Open: %v", err)
	}

	h, err := store.Acquire("old-item", KindMetadataJSON, ".json")
	if err != nil {
		t.Fatal(err)
	}
	if _, err := h.Write([]byte(`{"title":"x"}`)); err != nil {
		t.Fatal(err)
	}
	if _, err := h.Finalize(); err != nil {
		t.Fatal(err)
	}

	h2, err := store.Acquire("recent-item", KindMetadataJSON, ".json")
	if err != nil {
		t.Fatal(err)
	}
	if _, err := h2.Write([]byte(`{"title":"y"}`)); err != nil {
		t.Fatal(err)
	}
	if _, err := h2.Finalize(); err != nil {
		t.Fatal(err)
	}

	terminals := func(ctx context.Context) ([]TerminalItem, error) {
		return []TerminalItem{
			{ItemID: "old-item", TerminalAt: now.Add(-10 * 24 * time.Hour)},
			{ItemID: "recent-item", TerminalAt: now.Add(-1 * time.Hour)},
		}, nil
	}

	removed, err := store.CollectGarbage(context.Background(), 7, terminals, nil)
	if err != nil {
		t.Fatalf("CollectGarbage: %v", err)
	}
	if removed != 1 {
		t.Fatalf("expected 1 item removed, got %d", removed)
	}

	if exists, _ := store.Exists("old-item", KindMetadataJSON); exists {
		t.Fatal("expected old-item artifacts removed")
	}
	if exists, _ := store.Exists("recent-item", KindMetadataJSON); !exists {
		t.Fatal("expected recent-item artifacts to survive gc")
	}
}
