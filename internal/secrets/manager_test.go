package secrets

import (
	"os"
	"path/filepath"
	"testing"
)

func TestReadTokenReturnsTrimmedContent(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, "token")
	if err := os.WriteFile(path, []byte("abc123\n"), 0o600); err != nil {
		t.Fatal(err)
	}
	m := NewManager(dir, nil)
	token, err := m.ReadToken("token")
	if err != nil {
		t.Fatalf("ReadToken: %v", err)
	}
	if token != "abc123" {
		t.Fatalf("expected trimmed token, got %q", token)
	}
}

func TestReadFileRejectsGroupReadablePermissions(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, "token")
	if err := os.WriteFile(path, []byte("abc123"), 0o640); err != nil {
		t.Fatal(err)
	}
	m := NewManager(dir, nil)
	if _, err := m.ReadFile("token"); err == nil {
		t.Fatal("expected an error for a group-readable credential file")
	}
}

func TestReadFileMissingReturnsError(t *testing.T) {
	m := NewManager(t.TempDir(), nil)
	if _, err := m.ReadFile("missing"); err == nil {
		t.Fatal("expected an error for a missing credential file")
	}
}
