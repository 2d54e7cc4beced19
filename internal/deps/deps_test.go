package deps

import (
	"errors"
	"os"
	"path/filepath"
	"testing"
)

func TestCheckBinaries(t *testing.T) {
	binDir := t.TempDir()
	present := filepath.Join(binDir, "present")
	if err := os.WriteFile(present, []byte("#!/bin/sh\nexit 0\n"), 0o755); err != nil {
		t.Fatalf("write stub: %v", err)
	}

	results := CheckBinaries([]Requirement{
		{Name: "Present", Command: present},
		{Name: "Missing", Command: "clearly-not-present-binary"},
		{Name: "Blank", Command: "  ", Optional: true},
	})
	if len(results) != 3 {
		t.Fatalf("expected 3 results, got %d", len(results))
	}
	if got := results[0]; !got.Available || got.Path != present || got.Detail != "" {
		t.Fatalf("unexpected status for present binary: %#v", got)
	}
	if got := results[1]; got.Available || got.Detail == "" || got.Command != "clearly-not-present-binary" {
		t.Fatalf("unexpected status for missing binary: %#v", got)
	}
	if got := results[2]; got.Available || got.Detail != "command not configured" || !got.Optional {
		t.Fatalf("unexpected status for blank command: %#v", got)
	}
}

func TestCheckBinariesSearchesPath(t *testing.T) {
	binDir := t.TempDir()
	if err := os.WriteFile(filepath.Join(binDir, "fake-exporter"), []byte("#!/bin/sh\nexit 0\n"), 0o755); err != nil {
		t.Fatalf("write stub: %v", err)
	}
	t.Setenv("PATH", binDir)

	results := CheckBinaries([]Requirement{{Name: "exporter", Command: "fake-exporter"}})
	if !results[0].Available {
		t.Fatalf("expected PATH lookup to succeed, got %q", results[0].Detail)
	}
}

func TestCheckUsesInjectedLookup(t *testing.T) {
	lookups := map[string]string{"assimp": "/opt/assimp/bin/assimp"}
	lookPath := func(name string) (string, error) {
		if path, ok := lookups[name]; ok {
			return path, nil
		}
		return "", errors.New("not found")
	}

	results := Check([]Requirement{
		{Name: "assimp", Command: " assimp "},
		{Name: "blender", Command: "blender", Description: " exports fbx "},
	}, lookPath)
	if results[0].Path != "/opt/assimp/bin/assimp" || results[0].Command != "assimp" {
		t.Fatalf("unexpected assimp status: %#v", results[0])
	}
	if results[1].Available || results[1].Description != "exports fbx" {
		t.Fatalf("unexpected blender status: %#v", results[1])
	}
}
