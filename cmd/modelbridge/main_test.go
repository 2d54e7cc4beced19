package main

import (
	"encoding/json"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"modelbridge/internal/conversion"
)

func TestConvertFallsBackToWorkingApp(t *testing.T) {
	env := setupCLITestEnv(t)
	source := env.source(t, "bracket.iges")

	out, _, err := runCLI(t, []string{"convert", source}, env.configPath)
	if err != nil {
		t.Fatalf("convert: %v", err)
	}
	requireContains(t, out, "Converted "+source+" via Copier (STL)")
	requireContains(t, out, "3 vertices")
	requireContains(t, out, "["+source+"]")

	entries, err := os.ReadDir(env.scratchDir)
	if err != nil {
		t.Fatalf("read scratch: %v", err)
	}
	if len(entries) != 0 {
		t.Fatalf("scratch directory should be empty, found %d entries", len(entries))
	}
}

func TestConvertJSONReportsAttempts(t *testing.T) {
	env := setupCLITestEnv(t)
	source := env.source(t, "bracket.step")

	out, _, err := runCLI(t, []string{"convert", "--json", "--metrics", source}, env.configPath)
	if err != nil {
		t.Fatalf("convert: %v", err)
	}
	var report convertReport
	if err := json.Unmarshal([]byte(out), &report); err != nil {
		t.Fatalf("decode json: %v\n%s", err, out)
	}
	if len(report.Results) != 1 {
		t.Fatalf("results = %+v", report.Results)
	}
	res := report.Results[0]
	if res.Reason != conversion.ReasonConverted || res.App != "copier" || res.Format != "stl" {
		t.Fatalf("unexpected result %+v", res)
	}
	if len(res.Attempts) != 1 || res.Attempts[0].App != "broken" || res.Attempts[0].Kind != "export_failure" {
		t.Fatalf("attempts = %+v", res.Attempts)
	}
	if len(res.Nodes) != 1 || res.Nodes[0].SourceFile != source {
		t.Fatalf("nodes = %+v", res.Nodes)
	}
	if len(report.Metrics) == 0 {
		t.Fatal("expected metrics in report")
	}
}

func TestConvertReportsExhaustion(t *testing.T) {
	env := setupCLITestEnv(t)
	source := env.source(t, "rig.fbx")

	out, _, err := runCLI(t, []string{"convert", source}, env.configPath)
	if err == nil {
		t.Fatal("expected error when the file cannot be opened")
	}
	requireContains(t, out, "Could not open "+source+": every application and format failed")
	requireContains(t, out, "broken (STL): export_failure at export")
}

func TestConvertUnsupportedExtension(t *testing.T) {
	env := setupCLITestEnv(t)
	source := env.source(t, "scan.ply")

	out, _, err := runCLI(t, []string{"convert", source}, env.configPath)
	if err == nil {
		t.Fatal("expected error for unsupported extension")
	}
	requireContains(t, out, "no reader handles")
}

func TestAppsListsInstallation(t *testing.T) {
	env := setupCLITestEnv(t)

	out, _, err := runCLI(t, []string{"apps", "--json"}, env.configPath)
	if err != nil {
		t.Fatalf("apps: %v", err)
	}
	var rows []appRow
	if err := json.Unmarshal([]byte(out), &rows); err != nil {
		t.Fatalf("decode json: %v", err)
	}
	if len(rows) != 2 || !rows[0].Installed || !rows[1].Installed {
		t.Fatalf("rows = %+v", rows)
	}

	out, _, err = runCLI(t, []string{"apps"}, env.configPath)
	if err != nil {
		t.Fatalf("apps: %v", err)
	}
	requireContains(t, out, "Copier")
	requireContains(t, out, "INSTALLED")
}

func TestFormatsListsReadersAndHostFormats(t *testing.T) {
	env := setupCLITestEnv(t)

	out, _, err := runCLI(t, []string{"formats"}, env.configPath)
	if err != nil {
		t.Fatalf("formats: %v", err)
	}
	requireContains(t, out, "iges, step")
	requireContains(t, out, "Broken → Copier")
	requireContains(t, out, "gltf")
}

func TestCheckPasses(t *testing.T) {
	env := setupCLITestEnv(t)

	out, _, err := runCLI(t, []string{"check"}, env.configPath)
	if err != nil {
		t.Fatalf("check: %v\n%s", err, out)
	}
	requireContains(t, out, "Scratch directory:")
	requireContains(t, out, "App copier:")
	requireContains(t, out, "[OK]")
}

func TestConfigInitAndValidate(t *testing.T) {
	env := setupCLITestEnv(t)

	out, _, err := runCLI(t, []string{"config", "validate"}, env.configPath)
	if err != nil {
		t.Fatalf("config validate: %v", err)
	}
	requireContains(t, out, "Configuration valid")
	requireContains(t, out, "Apps: 2, readers: 2")

	target := filepath.Join(t.TempDir(), "config.toml")
	out, _, err = runCLI(t, []string{"config", "init", "--path", target}, "")
	if err != nil {
		t.Fatalf("config init: %v", err)
	}
	requireContains(t, out, "Wrote sample configuration")
	if _, err := os.Stat(target); err != nil {
		t.Fatalf("expected config file at %s: %v", target, err)
	}

	_, _, err = runCLI(t, []string{"config", "init", "--path", target}, "")
	if err == nil || !strings.Contains(err.Error(), "already exists") {
		t.Fatalf("expected overwrite guard, got %v", err)
	}

	out, _, err = runCLI(t, []string{"config", "validate"}, target)
	if err != nil {
		t.Fatalf("validate sample: %v", err)
	}
	requireContains(t, out, "Configuration valid")
}

func TestDisplayName(t *testing.T) {
	tests := map[string]string{
		"freecad":    "Freecad",
		"open_scad":  "Open Scad",
		"":           "",
		"  blender ": "Blender",
	}
	for in, want := range tests {
		if got := displayName(in); got != want {
			t.Fatalf("displayName(%q) = %q, want %q", in, got, want)
		}
	}
}
