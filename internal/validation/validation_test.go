package validation_test

import (
	"os"
	"path/filepath"
	"testing"

	"shortfactory/internal/validation"
)

func TestCheckSafeRejectsDangerousPatterns(t *testing.T) {
	cases := []string{
		"<script>alert(1)</script>",
		"javascript:alert(1)",
		"../../etc/passwd",
		"eval(something)",
	}
	for _, value := range cases {
		if err := validation.CheckSafe("concept_text", value); err == nil {
			t.Fatalf("expected rejection for %q", value)
		}
	}
}

func TestCheckSafeAllowsOrdinaryText(t *testing.T) {
	if err := validation.CheckSafe("concept_text", "Three morning habits that changed my life"); err != nil {
		t.Fatalf("unexpected rejection: %v", err)
	}
}

func TestSafeIntBounds(t *testing.T) {
	if v, ok := validation.SafeInt("5", 1, 10, 0); !ok || v != 5 {
		t.Fatalf("expected 5, got %d %v", v, ok)
	}
	if v, ok := validation.SafeInt("50", 1, 10, -1); ok || v != -1 {
		t.Fatalf("expected fallback for out-of-range, got %d %v", v, ok)
	}
	if v, ok := validation.SafeInt("abc", 1, 10, -1); ok || v != -1 {
		t.Fatalf("expected fallback for unparseable, got %d %v", v, ok)
	}
}

func TestSafeBool(t *testing.T) {
	if !validation.SafeBool("yes", false) {
		t.Fatal("expected true for yes")
	}
	if validation.SafeBool("nope", true) != true {
		t.Fatal("expected fallback for unrecognized value")
	}
}

func TestSafePathUnderRejectsEscape(t *testing.T) {
	root := t.TempDir()
	if _, err := validation.SafePathUnder(root, "../outside"); err == nil {
		t.Fatal("expected rejection for path escaping root")
	}
	resolved, err := validation.SafePathUnder(root, "artifacts/item-1/script.txt")
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if resolved == "" {
		t.Fatal("expected resolved path")
	}
}

func TestSafePathUnderRejectsSymlinkEscape(t *testing.T) {
	root := t.TempDir()
	outside := t.TempDir()
	outsideFile := filepath.Join(outside, "secret.txt")
	if err := os.WriteFile(outsideFile, []byte("secret"), 0o600); err != nil {
		t.Fatalf("write outside file: %v", err)
	}

	linkDir := filepath.Join(root, "escape")
	if err := os.Symlink(outside, linkDir); err != nil {
		t.Skipf("symlink unsupported in this environment: %v", err)
	}

	if _, err := validation.SafePathUnder(root, "escape/secret.txt"); err == nil {
		t.Fatal("expected rejection for path escaping root via symlink")
	}
}
