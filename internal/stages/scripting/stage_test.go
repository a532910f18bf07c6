package scripting

import (
	"context"
	"net/http"
	"net/http/httptest"
	"os"
	"testing"

	"shortfactory/internal/artifactstore"
	"shortfactory/internal/config"
	"shortfactory/internal/resilience"
	"shortfactory/internal/services/llm"
	"shortfactory/internal/statestore"
)

func testStage(t *testing.T, handler http.HandlerFunc) (*Stage, *statestore.Item) {
	t.Helper()
	server := httptest.NewServer(handler)
	t.Cleanup(server.Close)

	client := llm.NewClient(llm.Config{APIKey: "key", BaseURL: server.URL, Model: "test-model"})
	store, err := artifactstore.Open(t.TempDir())
	if err != nil {
		t.Fatal(err)
	}
	res, err := resilience.NewManager(config.Resilience{
		FailureThreshold: 5, WindowSeconds: 60, CoolDownSeconds: 30,
		BulkheadMaxInFlight: 4, BulkheadQueueDepth: 4, BulkheadQueueTimeoutSeconds: 5,
	}, t.TempDir(), nil)
	if err != nil {
		t.Fatal(err)
	}
	item := &statestore.Item{ItemID: "I1", ConceptText: "a concept", Fingerprint: "fp1"}
	return New(client, store, res, 2), item
}

func TestExecuteWritesScriptArtifactAndSetsPath(t *testing.T) {
	stage, item := testStage(t, func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Content-Type", "application/json")
		_, _ = w.Write([]byte(`{"choices":[{"message":{"content":"{\"script\":\"Hello world\",\"word_count\":2}"}}]}`))
	})

	if err := stage.Prepare(context.Background(), item); err != nil {
		t.Fatalf("Prepare: %v", err)
	}
	if err := stage.Execute(context.Background(), item); err != nil {
		t.Fatalf("Execute: %v", err)
	}
	if item.ScriptPath == "" {
		t.Fatal("expected ScriptPath to be set")
	}
	content, err := os.ReadFile(item.ScriptPath)
	if err != nil {
		t.Fatal(err)
	}
	if string(content) != "Hello world" {
		t.Fatalf("unexpected script content: %q", content)
	}
}

func TestPrepareRejectsItemWithoutConcept(t *testing.T) {
	stage, item := testStage(t, func(http.ResponseWriter, *http.Request) {})
	item.ConceptText = ""
	if err := stage.Prepare(context.Background(), item); err == nil {
		t.Fatal("expected an error for a missing concept")
	}
}
