package config_test

import (
	"os"
	"path/filepath"
	"strings"
	"testing"

	"modelbridge/internal/config"
)

func TestLoadDefaultConfigExpandsPaths(t *testing.T) {
	tempHome := t.TempDir()
	t.Setenv("HOME", tempHome)
	scratch := filepath.Join(tempHome, "scratch")
	t.Setenv("MODELBRIDGE_SCRATCH_DIR", scratch)
	t.Chdir(t.TempDir())

	cfg, resolved, exists, err := config.Load("")
	if err != nil {
		t.Fatalf("Load returned error: %v", err)
	}
	if resolved == "" {
		t.Fatal("expected resolved path")
	}
	if exists {
		t.Fatal("expected config file to be absent in temp HOME")
	}
	if cfg.Paths.ScratchDir != scratch {
		t.Fatalf("unexpected scratch dir: got %q want %q", cfg.Paths.ScratchDir, scratch)
	}
	wantLogs := filepath.Join(tempHome, ".local", "share", "modelbridge", "logs")
	if cfg.Paths.LogDir != wantLogs {
		t.Fatalf("unexpected log dir: got %q want %q", cfg.Paths.LogDir, wantLogs)
	}
	if cfg.Conversion.CallTimeout != config.Default().Conversion.CallTimeout {
		t.Fatalf("unexpected call timeout: %d", cfg.Conversion.CallTimeout)
	}
	if cfg.Conversion.CrossProcessLock {
		t.Fatal("expected cross-process lock disabled by default")
	}
	if len(cfg.Apps) != 3 || len(cfg.Readers) != 2 {
		t.Fatalf("expected default apps and readers, got %d apps %d readers", len(cfg.Apps), len(cfg.Readers))
	}
	if cfg.Logging.Format != "console" || cfg.Logging.Level != "info" {
		t.Fatalf("unexpected logging defaults: %+v", cfg.Logging)
	}
}

func TestLoadScratchFallsBackToTempDir(t *testing.T) {
	t.Setenv("HOME", t.TempDir())
	t.Setenv("MODELBRIDGE_SCRATCH_DIR", "")
	cfg, _, _, err := config.Load(filepath.Join(t.TempDir(), "missing.toml"))
	if err != nil {
		t.Fatalf("Load returned error: %v", err)
	}
	want, _ := filepath.Abs(filepath.Clean(os.TempDir()))
	if cfg.Paths.ScratchDir != want {
		t.Fatalf("scratch dir = %q, want %q", cfg.Paths.ScratchDir, want)
	}
}

func TestLoadCustomConfigNormalizesApps(t *testing.T) {
	t.Setenv("HOME", t.TempDir())
	path := filepath.Join(t.TempDir(), "config.toml")
	content := `
[paths]
scratch_dir = "` + filepath.ToSlash(t.TempDir()) + `"

[conversion]
call_timeout = 5
cross_process_lock = true

[logging]
format = "JSON"
level = "Debug"

[host]
disabled_readers = [".GLB", "glb", "stl"]

[[apps]]
name = " Converter "
command = "conv"
export_args = ["{source}", "{target}"]
source_formats = [".IGES", "igs"]
formats = { ".STL" = "", glb = "glb2" }

[[readers]]
name = "Parts"
extensions = [".IGES", "IGS"]
apps = ["CONVERTER"]
preferred_formats = ["STL", ".stl", "glb"]
`
	if err := os.WriteFile(path, []byte(content), 0o644); err != nil {
		t.Fatalf("write config: %v", err)
	}

	cfg, resolved, exists, err := config.Load(path)
	if err != nil {
		t.Fatalf("Load returned error: %v", err)
	}
	if !exists || resolved != path {
		t.Fatalf("expected config at %s to be used, got %s (exists=%v)", path, resolved, exists)
	}
	if len(cfg.Apps) != 1 {
		t.Fatalf("expected configured apps to replace defaults, got %d", len(cfg.Apps))
	}
	app := cfg.Apps[0]
	if app.Name != "converter" {
		t.Fatalf("unexpected app name %q", app.Name)
	}
	if got := strings.Join(app.SourceFormats, ","); got != "iges,igs" {
		t.Fatalf("unexpected source formats %q", got)
	}
	if app.Formats["stl"] != "stl" || app.Formats["glb"] != "glb2" {
		t.Fatalf("unexpected format tokens %#v", app.Formats)
	}
	reader := cfg.Readers[0]
	if reader.Name != "parts" || reader.Apps[0] != "converter" {
		t.Fatalf("unexpected reader %+v", reader)
	}
	if got := strings.Join(reader.PreferredFormats, ","); got != "stl,glb" {
		t.Fatalf("unexpected preferred formats %q", got)
	}
	if got := strings.Join(cfg.Host.DisabledReaders, ","); got != "glb,stl" {
		t.Fatalf("unexpected disabled readers %q", got)
	}
	if cfg.Logging.Format != "json" || cfg.Logging.Level != "debug" {
		t.Fatalf("unexpected logging %+v", cfg.Logging)
	}
	if !cfg.Conversion.CrossProcessLock || cfg.Conversion.CallTimeout != 5 {
		t.Fatalf("unexpected conversion %+v", cfg.Conversion)
	}
}

func TestSampleConfigLoads(t *testing.T) {
	t.Setenv("HOME", t.TempDir())
	path := filepath.Join(t.TempDir(), "nested", "config.toml")
	if err := config.CreateSample(path); err != nil {
		t.Fatalf("CreateSample: %v", err)
	}
	cfg, _, exists, err := config.Load(path)
	if err != nil {
		t.Fatalf("Load sample: %v", err)
	}
	if !exists {
		t.Fatal("expected sample file to exist")
	}
	def := config.Default()
	if len(cfg.Apps) != len(def.Apps) || len(cfg.Readers) != len(def.Readers) {
		t.Fatalf("sample config diverges from defaults: %d apps %d readers", len(cfg.Apps), len(cfg.Readers))
	}
	for _, want := range def.Apps {
		got, ok := cfg.App(want.Name)
		if !ok {
			t.Fatalf("sample config missing app %q", want.Name)
		}
		if got.Command != want.Command {
			t.Fatalf("app %s command = %q, want %q", want.Name, got.Command, want.Command)
		}
		if strings.Join(got.ExportArgs, "\x00") != strings.Join(want.ExportArgs, "\x00") {
			t.Fatalf("app %s export args differ from defaults", want.Name)
		}
	}
}

func TestValidateRejectsBadConfig(t *testing.T) {
	tests := []struct {
		name   string
		mutate func(*config.Config)
		want   string
	}{
		{"log format", func(c *config.Config) { c.Logging.Format = "xml" }, "logging.format"},
		{"log level", func(c *config.Config) { c.Logging.Level = "trace" }, "logging.level"},
		{"timeout", func(c *config.Config) { c.Conversion.CallTimeout = -1 }, "call_timeout"},
		{"slot timeout", func(c *config.Config) { c.Conversion.SlotTimeout = -1 }, "slot_timeout"},
		{"lock file", func(c *config.Config) {
			c.Conversion.CrossProcessLock = true
			c.Conversion.LockFile = ""
		}, "lock_file"},
		{"app command", func(c *config.Config) { c.Apps[0].Command = "" }, "command"},
		{"app target", func(c *config.Config) { c.Apps[2].ExportArgs = []string{"{source}"} }, "{target}"},
		{"app formats", func(c *config.Config) { c.Apps[2].Formats = nil }, "formats"},
		{"duplicate app", func(c *config.Config) { c.Apps[1].Name = c.Apps[0].Name }, "duplicate app"},
		{"unknown app", func(c *config.Config) { c.Readers[0].Apps = []string{"nope"} }, "unknown app"},
		{"no apps", func(c *config.Config) { c.Readers[0].Apps = nil }, "apps must not be empty"},
		{"no extensions", func(c *config.Config) { c.Readers[0].Extensions = nil }, "extensions"},
		{"shared extension", func(c *config.Config) { c.Readers[1].Extensions = []string{"iges"} }, "already claimed"},
		{"duplicate reader", func(c *config.Config) { c.Readers[1].Name = c.Readers[0].Name }, "duplicate reader"},
	}
	for _, tc := range tests {
		t.Run(tc.name, func(t *testing.T) {
			cfg := config.Default()
			tc.mutate(&cfg)
			err := cfg.Validate()
			if err == nil {
				t.Fatal("expected validation error")
			}
			if !strings.Contains(err.Error(), tc.want) {
				t.Fatalf("expected %q in error %q", tc.want, err.Error())
			}
		})
	}
}

func TestDefaultValidates(t *testing.T) {
	cfg := config.Default()
	if err := cfg.Validate(); err != nil {
		t.Fatalf("default config invalid: %v", err)
	}
}

func TestEnsureDirectories(t *testing.T) {
	base := t.TempDir()
	cfg := config.Default()
	cfg.Paths.ScratchDir = filepath.Join(base, "scratch")
	cfg.Paths.LogDir = filepath.Join(base, "logs")
	cfg.Conversion.CrossProcessLock = true
	cfg.Conversion.LockFile = filepath.Join(base, "locks", "conversion.lock")

	if err := cfg.EnsureDirectories(); err != nil {
		t.Fatalf("EnsureDirectories: %v", err)
	}
	for _, dir := range []string{cfg.Paths.ScratchDir, cfg.Paths.LogDir, filepath.Dir(cfg.Conversion.LockFile)} {
		if info, err := os.Stat(dir); err != nil || !info.IsDir() {
			t.Fatalf("expected directory %s: %v", dir, err)
		}
	}
}

func TestLoadRejectsUnknownKeys(t *testing.T) {
	t.Setenv("HOME", t.TempDir())
	path := filepath.Join(t.TempDir(), "config.toml")
	content := `
[[apps]]
name = "assimp"
command = "assimp"
export_arg = ["export", "{source}", "{target}"]
`
	if err := os.WriteFile(path, []byte(content), 0o644); err != nil {
		t.Fatalf("write config: %v", err)
	}
	_, _, _, err := config.Load(path)
	if err == nil || !strings.Contains(err.Error(), "export_arg") {
		t.Fatalf("expected unknown key error naming export_arg, got %v", err)
	}
}

func TestExpandPath(t *testing.T) {
	home := t.TempDir()
	t.Setenv("HOME", home)
	got, err := config.ExpandPath("~/models/../scratch")
	if err != nil {
		t.Fatalf("ExpandPath: %v", err)
	}
	if want := filepath.Join(home, "scratch"); got != want {
		t.Fatalf("ExpandPath = %q, want %q", got, want)
	}
	if got, _ := config.ExpandPath(""); got != "" {
		t.Fatalf("expected empty path unchanged, got %q", got)
	}
}
