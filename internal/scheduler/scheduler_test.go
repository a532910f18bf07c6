package scheduler

import (
	"context"
	"errors"
	"testing"

	"shortfactory/internal/artifactstore"
	"shortfactory/internal/config"
	"shortfactory/internal/dashboard"
	"shortfactory/internal/resilience"
	"shortfactory/internal/services"
	"shortfactory/internal/stage"
	"shortfactory/internal/stagecatalog"
	"shortfactory/internal/statestore"
)

// fakeHandler drives a stage's outcome deterministically for tests,
// standing in for a real internal/stages/* adapter.
type fakeHandler struct {
	name    string
	execErr error
}

func (h *fakeHandler) Prepare(context.Context, *statestore.Item) error { return nil }

func (h *fakeHandler) Execute(_ context.Context, item *statestore.Item) error {
	if h.execErr != nil {
		return h.execErr
	}
	item.ScriptPath = "/artifacts/script/" + item.ItemID + "/out.txt"
	return nil
}

func (h *fakeHandler) HealthCheck(context.Context) stage.Health { return stage.Healthy(h.name) }

func allHandlers(override map[string]stage.Handler) map[string]stage.Handler {
	handlers := make(map[string]stage.Handler, len(stagecatalog.All()))
	for _, decl := range stagecatalog.All() {
		handlers[decl.Name] = &fakeHandler{name: decl.Name}
	}
	for name, h := range override {
		handlers[name] = h
	}
	return handlers
}

func testScheduler(t *testing.T, handlers map[string]stage.Handler) (*Scheduler, *statestore.Store, *dashboard.Adapter) {
	t.Helper()
	dir := t.TempDir()
	cfg := &config.Config{Paths: config.Paths{
		ArtifactRoot: dir + "/artifacts",
		StateDir:     dir + "/state",
		LogDir:       dir + "/logs",
	}}
	items, err := statestore.Open(cfg)
	if err != nil {
		t.Fatalf("Open statestore: %v", err)
	}
	t.Cleanup(func() { _ = items.Close() })

	artifacts, err := artifactstore.Open(cfg.Paths.ArtifactRoot)
	if err != nil {
		t.Fatalf("Open artifactstore: %v", err)
	}

	res, err := resilience.NewManager(config.Resilience{
		FailureThreshold: 5, WindowSeconds: 60, CoolDownSeconds: 30,
		BulkheadMaxInFlight: 4, BulkheadQueueDepth: 4, BulkheadQueueTimeoutSeconds: 5,
	}, dir+"/resilience", nil)
	if err != nil {
		t.Fatalf("NewManager: %v", err)
	}

	dashAdapter := dashboard.New(dashboard.NewMemoryStore())

	sched := New(items, dashAdapter, artifacts, res, nil, nil, allHandlers(handlers),
		config.StagePool{Scripting: 2, Narrating: 2, SourcingClips: 2, Assembling: 1, Captioning: 1, Metadata: 2, Publishing: 1},
		config.Workflow{DiscoveryIntervalSeconds: 1, ErrorRetryIntervalSeconds: 5, DrainDeadlineSeconds: 5})
	return sched, items, dashAdapter
}

func TestRunOnceAdvancesItemOnStageSuccess(t *testing.T) {
	sched, items, dash := testScheduler(t, nil)
	ctx := context.Background()

	id, err := dash.AppendItem(ctx, map[string]string{"status": "Approved", "title_concept": "concept"})
	if err != nil {
		t.Fatalf("AppendItem: %v", err)
	}
	item := &statestore.Item{ItemID: id, ConceptText: "concept", Status: statestore.StatusApproved, Fingerprint: "fp"}
	if err := items.Create(ctx, item); err != nil {
		t.Fatalf("Create: %v", err)
	}

	if err := sched.RunOnce(ctx); err != nil {
		t.Fatalf("RunOnce: %v", err)
	}

	got, err := items.Get(ctx, id)
	if err != nil {
		t.Fatalf("Get: %v", err)
	}
	if got.Status != statestore.StatusScripted {
		t.Fatalf("expected item to advance to scripted, got %s", got.Status)
	}
	if got.ScriptPath == "" {
		t.Fatal("expected ScriptPath to be set by the fake handler")
	}

	row, err := dash.GetItem(ctx, id)
	if err != nil {
		t.Fatalf("GetItem: %v", err)
	}
	if row.Status != "In Progress" {
		t.Fatalf("expected dashboard row to read In Progress, got %q", row.Status)
	}
	if row.ScriptPath != got.ScriptPath {
		t.Fatalf("expected dashboard script_path to mirror the item, got %q", row.ScriptPath)
	}
}

func TestRunOnceFailsItemImmediatelyOnValidationError(t *testing.T) {
	failing := services.Wrap(services.ErrValidation, "scripting", "generate", "bad concept", nil)
	sched, items, dash := testScheduler(t, map[string]stage.Handler{
		"scripting": &fakeHandler{name: "scripting", execErr: failing},
	})
	ctx := context.Background()

	id, err := dash.AppendItem(ctx, map[string]string{"status": "Approved"})
	if err != nil {
		t.Fatalf("AppendItem: %v", err)
	}
	item := &statestore.Item{ItemID: id, ConceptText: "concept", Status: statestore.StatusApproved, Fingerprint: "fp2"}
	if err := items.Create(ctx, item); err != nil {
		t.Fatalf("Create: %v", err)
	}

	if err := sched.RunOnce(ctx); err != nil {
		t.Fatalf("RunOnce: %v", err)
	}

	got, err := items.Get(ctx, id)
	if err != nil {
		t.Fatalf("Get: %v", err)
	}
	if got.Status != statestore.StatusFailed {
		t.Fatalf("expected a validation failure to fail the item immediately, got %s", got.Status)
	}
	if got.LastError == nil || got.LastError.Kind != string(statestore.FailureValidation) {
		t.Fatalf("expected a recorded validation failure, got %+v", got.LastError)
	}
}

func TestClassifyStageErrorMapsCircuitOpenCallError(t *testing.T) {
	callErr := &resilience.CallError{Kind: resilience.KindCircuitOpen, Service: "llm", Class: resilience.ClassGeneration, Err: errors.New("open")}
	if got := classifyStageError(callErr); got != statestore.FailureCircuitOpen {
		t.Fatalf("expected FailureCircuitOpen, got %s", got)
	}
}

func TestTryClaimRejectsDuplicateInFlightItem(t *testing.T) {
	sched, _, _ := testScheduler(t, nil)
	if !sched.tryClaim("busy") {
		t.Fatal("expected first claim to succeed")
	}
	if sched.tryClaim("busy") {
		t.Fatal("expected a second claim of the same item to be rejected while in flight")
	}
	sched.release("busy")
	if !sched.tryClaim("busy") {
		t.Fatal("expected claim to succeed again after release")
	}
}
