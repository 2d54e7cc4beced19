package services_test

import (
	"errors"
	"strings"
	"testing"

	"modelbridge/internal/services"
)

func TestWrapIncludesContext(t *testing.T) {
	base := errors.New("boom")
	err := services.Wrap(services.ErrExport, "blender", "export", "failed", base)
	if err == nil {
		t.Fatal("expected error")
	}
	if !errors.Is(err, services.ErrExport) {
		t.Fatalf("expected marker to be retained, got %v", err)
	}
	if !errors.Is(err, base) {
		t.Fatalf("expected wrapped error to contain base error, got %v", err)
	}
	msg := err.Error()
	for _, fragment := range []string{"blender", "export", "failed"} {
		if !strings.Contains(msg, fragment) {
			t.Fatalf("expected %q in error string %q", fragment, msg)
		}
	}
}

func TestWrapWithoutDetail(t *testing.T) {
	err := services.Wrap(nil, "", "", "", nil)
	if !errors.Is(err, services.ErrExport) {
		t.Fatalf("expected default marker, got %v", err)
	}
	if !strings.Contains(err.Error(), "application failure") {
		t.Fatalf("expected fallback detail, got %q", err.Error())
	}
}

func TestKindMapping(t *testing.T) {
	tests := []struct {
		err  error
		want string
	}{
		{nil, "ok"},
		{services.Wrap(services.ErrStart, "assimp", "start", "", nil), "start_failure"},
		{services.Wrap(services.ErrOpen, "assimp", "open", "", nil), "open_failure"},
		{services.Wrap(services.ErrExport, "assimp", "export", "", nil), "export_failure"},
		{services.Wrap(services.ErrMissingArtifact, "assimp", "verify", "", nil), "missing_artifact"},
		{services.Wrap(services.ErrNoReader, "", "lookup", "", nil), "no_reader"},
		{services.Wrap(services.ErrRead, "", "read", "", nil), "read_failure"},
		{services.Wrap(services.ErrExport, "assimp", "export", "", services.ErrTimeout), "timeout"},
		{errors.New("other"), "error"},
	}
	for _, tc := range tests {
		if got := services.Kind(tc.err); got != tc.want {
			t.Fatalf("Kind(%v) = %q, want %q", tc.err, got, tc.want)
		}
	}
}
