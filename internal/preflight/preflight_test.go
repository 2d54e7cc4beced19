package preflight

import (
	"context"
	"os"
	"path/filepath"
	"testing"

	"modelbridge/internal/config"
	"modelbridge/internal/testsupport"
)

func TestCheckDirectoryAccess_OK(t *testing.T) {
	dir := t.TempDir()
	result := CheckDirectoryAccess("test", dir)
	if !result.Passed {
		t.Fatalf("expected pass for temp dir, got: %s", result.Detail)
	}
}

func TestCheckDirectoryAccess_NotExist(t *testing.T) {
	result := CheckDirectoryAccess("test", filepath.Join(t.TempDir(), "nope"))
	if result.Passed {
		t.Fatal("expected failure for missing dir")
	}
	if result.Detail == "" {
		t.Fatal("expected non-empty detail")
	}
}

func TestCheckDirectoryAccess_NotDir(t *testing.T) {
	f := filepath.Join(t.TempDir(), "file.txt")
	if err := os.WriteFile(f, []byte("x"), 0o644); err != nil {
		t.Fatal(err)
	}
	result := CheckDirectoryAccess("test", f)
	if result.Passed {
		t.Fatal("expected failure for file path")
	}
}

func TestCheckLockFile(t *testing.T) {
	if CheckLockFile("").Passed {
		t.Fatal("expected failure for empty lock path")
	}
	if !CheckLockFile(filepath.Join(t.TempDir(), "conversion.lock")).Passed {
		t.Fatal("expected pass for writable lock dir")
	}
	if CheckLockFile(filepath.Join(t.TempDir(), "missing", "conversion.lock")).Passed {
		t.Fatal("expected failure for missing lock dir")
	}
}

func TestCheckHostReaders(t *testing.T) {
	if CheckHostReaders(nil).Passed {
		t.Fatal("expected failure without host readers")
	}
	if got := CheckHostReaders([]string{"stl", "glb"}); !got.Passed || got.Detail != "stl, glb" {
		t.Fatalf("unexpected result %+v", got)
	}
}

func TestCheckProbe(t *testing.T) {
	dir := t.TempDir()
	ok := testsupport.WriteScript(t, filepath.Join(dir, "ok-app"), `echo "exporter 5.2"`)
	bad := testsupport.WriteScript(t, filepath.Join(dir, "bad-app"), "exit 4")

	if got := CheckProbe(context.Background(), config.App{Name: "ok", Command: ok, ProbeArgs: []string{"--version"}}); !got.Passed || got.Detail != "exporter 5.2" {
		t.Fatalf("unexpected probe result %+v", got)
	}
	if got := CheckProbe(context.Background(), config.App{Name: "bad", Command: bad, ProbeArgs: []string{"--version"}}); got.Passed {
		t.Fatalf("expected probe failure, got %+v", got)
	}
	if got := CheckProbe(context.Background(), config.App{Name: "none", Command: bad}); !got.Passed {
		t.Fatalf("app without probe should pass, got %+v", got)
	}
}

func TestRunAll_NilConfig(t *testing.T) {
	if results := RunAll(context.Background(), nil, Options{}); results != nil {
		t.Fatalf("expected nil results, got %v", results)
	}
}

func TestRunAll_ReportsAppsAndProbes(t *testing.T) {
	present := testsupport.WriteScript(t, filepath.Join(t.TempDir(), "present"), "echo ready")
	cfg := testsupport.NewConfig(t, testsupport.WithApps(
		config.App{Name: "present", Command: present, ProbeArgs: []string{"-v"}},
		config.App{Name: "absent", Command: "clearly-not-present-binary"},
	))
	cfg.Conversion.CrossProcessLock = true
	if err := cfg.EnsureDirectories(); err != nil {
		t.Fatalf("EnsureDirectories: %v", err)
	}

	results := RunAll(context.Background(), cfg, Options{Probe: true, HostFormats: []string{"stl"}})
	byName := make(map[string]Result, len(results))
	for _, r := range results {
		byName[r.Name] = r
	}
	for _, name := range []string{"Scratch directory", "Lock file", "Host readers", "App present", "Probe present"} {
		if !byName[name].Passed {
			t.Fatalf("%s should pass, got %+v", name, byName[name])
		}
	}
	if byName["App absent"].Passed {
		t.Fatal("missing app should fail")
	}
	if _, ok := byName["Probe absent"]; ok {
		t.Fatal("missing app must not be probed")
	}
	if byName["App present"].Detail != present {
		t.Fatalf("expected resolved path, got %q", byName["App present"].Detail)
	}
}
