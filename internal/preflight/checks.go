package preflight

import (
	"context"
	"errors"
	"fmt"
	"os"
	"os/exec"
	"path/filepath"
	"strings"
	"time"

	"golang.org/x/sys/unix"

	"modelbridge/internal/config"
	"modelbridge/internal/deps"
)

const probeTimeout = 30 * time.Second

// CheckDirectoryAccess verifies that the directory exists and is readable/writable.
func CheckDirectoryAccess(name, path string) Result {
	info, err := os.Stat(path)
	if err != nil {
		if os.IsNotExist(err) {
			return Result{Name: name, Detail: fmt.Sprintf("%s (error: does not exist)", path)}
		}
		return Result{Name: name, Detail: fmt.Sprintf("%s (error: stat: %v)", path, err)}
	}
	if !info.IsDir() {
		return Result{Name: name, Detail: fmt.Sprintf("%s (error: is not a directory)", path)}
	}
	if err := unix.Access(path, unix.R_OK|unix.W_OK|unix.X_OK); err != nil {
		return Result{Name: name, Detail: fmt.Sprintf("%s (error: insufficient permissions: %v)", path, err)}
	}
	return Result{Name: name, Passed: true, Detail: fmt.Sprintf("%s (read/write ok)", path)}
}

// CheckLockFile verifies the cross-process lock file can be created.
func CheckLockFile(path string) Result {
	const name = "Lock file"
	if strings.TrimSpace(path) == "" {
		return Result{Name: name, Detail: "lock_file not configured"}
	}
	dir := CheckDirectoryAccess(name, filepath.Dir(path))
	if !dir.Passed {
		return dir
	}
	return Result{Name: name, Passed: true, Detail: path}
}

// CheckHostReaders verifies at least one intermediate format can be read.
func CheckHostReaders(formats []string) Result {
	const name = "Host readers"
	if len(formats) == 0 {
		return Result{Name: name, Detail: "no host reader enabled; every conversion will be skipped"}
	}
	return Result{Name: name, Passed: true, Detail: strings.Join(formats, ", ")}
}

// CheckApps reports which configured applications are installed.
func CheckApps(cfg *config.Config) []deps.Status {
	if cfg == nil {
		return nil
	}
	requirements := make([]deps.Requirement, 0, len(cfg.Apps))
	for _, app := range cfg.Apps {
		requirements = append(requirements, deps.Requirement{
			Name:        app.Name,
			Command:     app.Command,
			Description: describeApp(app),
			Optional:    true,
		})
	}
	return deps.CheckBinaries(requirements)
}

// CheckProbe runs the app's probe command and reports whether it exits cleanly.
func CheckProbe(ctx context.Context, app config.App) Result {
	name := "Probe " + app.Name
	if len(app.ProbeArgs) == 0 {
		return Result{Name: name, Passed: true, Detail: "no probe configured"}
	}

	checkCtx, cancel := context.WithTimeout(ctx, probeTimeout)
	defer cancel()

	cmd := exec.CommandContext(checkCtx, app.Command, app.ProbeArgs...) //nolint:gosec
	output, err := cmd.CombinedOutput()
	if err != nil {
		if errors.Is(checkCtx.Err(), context.DeadlineExceeded) {
			return Result{Name: name, Detail: "probe timed out (application unresponsive)"}
		}
		return Result{Name: name, Detail: fmt.Sprintf("probe failed (%v)", err)}
	}
	line := firstLine(string(output))
	if line == "" {
		line = "ok"
	}
	return Result{Name: name, Passed: true, Detail: line}
}

func describeApp(app config.App) string {
	if len(app.SourceFormats) == 0 {
		return "exports any source format"
	}
	return "exports " + strings.Join(app.SourceFormats, ", ")
}

func firstLine(text string) string {
	for _, line := range strings.Split(text, "\n") {
		if line = strings.TrimSpace(line); line != "" {
			return line
		}
	}
	return ""
}
