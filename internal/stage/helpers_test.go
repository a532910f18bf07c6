package stage

import (
	"testing"
)

func TestParseStockClipSearchResult_Valid(t *testing.T) {
	raw := `{"query":"morning routine","clips":[{"id":"c1","url":"https://example/c1.mp4","duration_seconds":21.5,"width":1080,"height":1920}]}`
	result, err := ParseStockClipSearchResult(raw)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if result.Query != "morning routine" {
		t.Fatalf("unexpected query: %q", result.Query)
	}
	if len(result.Clips) != 1 || result.Clips[0].ID != "c1" {
		t.Fatalf("unexpected clips: %+v", result.Clips)
	}
}

func TestParseStockClipSearchResult_Empty(t *testing.T) {
	result, err := ParseStockClipSearchResult("")
	if err != nil {
		t.Fatalf("unexpected error for empty input: %v", err)
	}
	if len(result.Clips) != 0 {
		t.Fatalf("expected no clips for empty input")
	}
}

func TestParseStockClipSearchResult_Invalid(t *testing.T) {
	_, err := ParseStockClipSearchResult("{invalid json")
	if err == nil {
		t.Fatal("expected error for invalid JSON")
	}
}
