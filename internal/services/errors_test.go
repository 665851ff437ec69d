package services_test

import (
	"errors"
	"strings"
	"testing"

	"vidtext/internal/services"
)

func TestWrapIncludesContext(t *testing.T) {
	base := errors.New("boom")
	err := services.Wrap(services.ErrExternalTool, "audio", "extract", "failed", base)
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
	for _, fragment := range []string{"audio", "extract", "failed"} {
		if !strings.Contains(msg, fragment) {
			t.Fatalf("expected %q in error string %q", fragment, msg)
		}
	}
}

func TestWrapDefaultsMarker(t *testing.T) {
	err := services.Wrap(nil, "persist", "write", "disk full", nil)
	if !errors.Is(err, services.ErrTransient) {
		t.Fatalf("expected transient marker for nil marker, got %v", err)
	}
}

func TestExitCodeMapping(t *testing.T) {
	validationErr := services.Wrap(services.ErrValidation, "process", "prepare", "invalid input", nil)
	if code := services.ExitCode(validationErr); code != 2 {
		t.Fatalf("expected usage exit code for validation error, got %d", code)
	}

	toolErr := services.Wrap(services.ErrExternalTool, "audio", "extract", "ffmpeg failed", errors.New("exit status 1"))
	if code := services.ExitCode(toolErr); code != 1 {
		t.Fatalf("expected runtime exit code for tool error, got %d", code)
	}

	if code := services.ExitCode(nil); code != 0 {
		t.Fatalf("expected zero exit code for nil error, got %d", code)
	}
}
