package main

import (
	"bytes"
	"fmt"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"modelbridge/internal/testsupport"
)

type cliTestEnv struct {
	baseDir    string
	configPath string
	scratchDir string
	sourceDir  string
}

// setupCLITestEnv writes a config with two stub exporters: "broken" always
// fails and "copier" copies a prepared STL fixture to its target.
func setupCLITestEnv(t *testing.T) *cliTestEnv {
	t.Helper()

	base := t.TempDir()
	homeDir := filepath.Join(base, "home")
	if err := os.MkdirAll(homeDir, 0o755); err != nil {
		t.Fatalf("mkdir home: %v", err)
	}
	t.Setenv("HOME", homeDir)

	binDir := filepath.Join(base, "bin")
	sourceDir := filepath.Join(base, "models")
	scratchDir := filepath.Join(base, "scratch")
	logDir := filepath.Join(base, "logs")

	fixture := filepath.Join(base, "fixture.stl")
	testsupport.WriteSTL(t, fixture, 1)

	copier := testsupport.WriteScript(t, filepath.Join(binDir, "copier"), fmt.Sprintf("cp %q \"$1\"", fixture))
	broken := testsupport.WriteScript(t, filepath.Join(binDir, "broken"), "echo 'cannot export' >&2\nexit 1")

	configPath := filepath.Join(base, "modelbridge.toml")
	content := fmt.Sprintf(`[paths]
scratch_dir = %q
log_dir = %q

[logging]
level = "error"

[[apps]]
name = "broken"
command = %q
export_args = ["{target}"]
[apps.formats]
stl = "stl"

[[apps]]
name = "copier"
command = %q
export_args = ["{target}", "{token}"]
[apps.formats]
stl = "binary"

[[readers]]
name = "cad"
extensions = ["iges", "step"]
apps = ["broken", "copier"]
preferred_formats = ["stl"]

[[readers]]
name = "dcc"
extensions = ["fbx"]
apps = ["broken"]
`, scratchDir, logDir, broken, copier)
	if err := os.WriteFile(configPath, []byte(content), 0o644); err != nil {
		t.Fatalf("write config: %v", err)
	}

	return &cliTestEnv{
		baseDir:    base,
		configPath: configPath,
		scratchDir: scratchDir,
		sourceDir:  sourceDir,
	}
}

func (e *cliTestEnv) source(t *testing.T, name string) string {
	t.Helper()
	return testsupport.WriteFile(t, filepath.Join(e.sourceDir, name), "foreign")
}

func runCLI(t *testing.T, args []string, configPath string) (string, string, error) {
	t.Helper()
	cmd := newRootCommand()
	var stdout, stderr bytes.Buffer
	cmd.SetOut(&stdout)
	cmd.SetErr(&stderr)
	var flags []string
	if configPath != "" {
		flags = append(flags, "--config", configPath)
	}
	cmd.SetArgs(append(flags, args...))
	err := cmd.Execute()
	return stdout.String(), stderr.String(), err
}

func requireContains(t *testing.T, output, substr string) {
	t.Helper()
	if !strings.Contains(output, substr) {
		t.Fatalf("expected %q to contain %q", output, substr)
	}
}
