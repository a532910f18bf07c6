package captioning

import (
	"os"
	"testing"
	"time"
)

func writeTempSRT(t *testing.T, contents string) string {
	t.Helper()
	file, err := os.CreateTemp(t.TempDir(), "cues-*.srt")
	if err != nil {
		t.Fatalf("create temp srt: %v", err)
	}
	defer file.Close()
	if _, err := file.WriteString(contents); err != nil {
		t.Fatalf("write temp srt: %v", err)
	}
	return file.Name()
}

func TestParseSRT_Valid(t *testing.T) {
	path := writeTempSRT(t, "1\n00:00:00,000 --> 00:00:02,500\nHello there\n\n2\n00:00:02,500 --> 00:00:05,000\nWorld\n\n")
	cues, err := ParseSRT(path)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if len(cues) != 2 {
		t.Fatalf("expected 2 cues, got %d", len(cues))
	}
	if cues[0].Start != 0 || cues[0].End != 2500*time.Millisecond {
		t.Fatalf("unexpected first cue span: %+v", cues[0])
	}
	if cues[1].Start != 2500*time.Millisecond || cues[1].End != 5*time.Second {
		t.Fatalf("unexpected second cue span: %+v", cues[1])
	}
}

func TestParseSRT_MalformedTiming(t *testing.T) {
	path := writeTempSRT(t, "1\nnot a timing line --> also not one\nHello\n\n")
	if _, err := ParseSRT(path); err == nil {
		t.Fatal("expected error for malformed timing line")
	}
}

func TestValidateCues_RejectsEmpty(t *testing.T) {
	if err := ValidateCues(nil, 10*time.Second); err == nil {
		t.Fatal("expected error for no cues")
	}
}

func TestValidateCues_RejectsZeroLengthSpan(t *testing.T) {
	cues := []Cue{{Index: 1, Start: 2 * time.Second, End: 2 * time.Second}}
	if err := ValidateCues(cues, 10*time.Second); err == nil {
		t.Fatal("expected error for zero-length cue span")
	}
}

func TestValidateCues_RejectsInvertedSpan(t *testing.T) {
	cues := []Cue{{Index: 1, Start: 3 * time.Second, End: 2 * time.Second}}
	if err := ValidateCues(cues, 10*time.Second); err == nil {
		t.Fatal("expected error for inverted cue span")
	}
}

func TestValidateCues_RejectsOutOfOrderStart(t *testing.T) {
	cues := []Cue{
		{Index: 1, Start: 5 * time.Second, End: 6 * time.Second},
		{Index: 2, Start: 1 * time.Second, End: 2 * time.Second},
	}
	if err := ValidateCues(cues, 10*time.Second); err == nil {
		t.Fatal("expected error for out-of-order cue start")
	}
}

func TestValidateCues_RejectsPastNarrationDuration(t *testing.T) {
	cues := []Cue{{Index: 1, Start: 1 * time.Second, End: 20 * time.Second}}
	if err := ValidateCues(cues, 5*time.Second); err == nil {
		t.Fatal("expected error for cue ending past narration duration")
	}
}

func TestValidateCues_AcceptsWithinTolerance(t *testing.T) {
	cues := []Cue{
		{Index: 1, Start: 0, End: 2 * time.Second},
		{Index: 2, Start: 2 * time.Second, End: 5200 * time.Millisecond},
	}
	if err := ValidateCues(cues, 5*time.Second); err != nil {
		t.Fatalf("unexpected error within tolerance: %v", err)
	}
}
