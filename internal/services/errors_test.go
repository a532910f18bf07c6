package services_test

import (
	"errors"
	"strings"
	"testing"

	"shortfactory/internal/services"
)

func TestWrapIncludesContext(t *testing.T) {
	base := errors.New("boom")
	err := services.Wrap(services.ErrExternalTool, "encoding", "mux", "failed", base)
	if err == nil {
		t.Fatal("expected error")
	}
	if !errors.Is(err, services.ErrExternalTool) {
		t.Fatalf("expected marker to be retained, got %v", err)
	}
	if !errors.Is(err, base) {
		t.Fatalf("expected wrapped error to contain base error, got %v", err)
	}
	msg := err.Error()
	for _, fragment := range []string{"encoding", "mux", "failed"} {
		if !strings.Contains(msg, fragment) {
			t.Fatalf("expected %q in error string %q", fragment, msg)
		}
	}
}

func TestClassifyFailureMapping(t *testing.T) {
	validationErr := services.Wrap(services.ErrValidation, "scripting", "prepare", "invalid", nil)
	if class := services.ClassifyFailure(validationErr); class != "validation" {
		t.Fatalf("expected validation class, got %s", class)
	}

	transientErr := services.Wrap(services.ErrTransient, "narration", "copy", "copy failed", errors.New("io"))
	if class := services.ClassifyFailure(transientErr); class != "transient" {
		t.Fatalf("expected transient class, got %s", class)
	}

	authErr := services.Wrap(services.ErrAuth, "publishing", "upload", "unauthorized", nil)
	if class := services.ClassifyFailure(authErr); class != "auth" {
		t.Fatalf("expected auth class, got %s", class)
	}

	if class := services.ClassifyFailure(errors.New("plain error")); class != "unexpected" {
		t.Fatalf("expected unexpected class for unrecognized error, got %s", class)
	}
}
