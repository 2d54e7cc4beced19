package preflight

import (
	"context"

	"modelbridge/internal/config"
)

// Result reports the outcome of a single preflight check.
type Result struct {
	Name   string `json:"name"`
	Passed bool   `json:"passed"`
	Detail string `json:"detail"`
}

// Options tunes RunAll.
type Options struct {
	// Probe runs each installed app's probe command.
	Probe bool
	// HostFormats are the intermediate formats with an enabled host reader.
	HostFormats []string
}

// RunAll executes all applicable preflight checks for the given config.
func RunAll(ctx context.Context, cfg *config.Config, opts Options) []Result {
	if cfg == nil {
		return nil
	}

	var results []Result

	// Scratch directory (always checked)
	results = append(results, CheckDirectoryAccess("Scratch directory", cfg.Paths.ScratchDir))

	// Lock file directory (when cross-process locking is on)
	if cfg.Conversion.CrossProcessLock {
		results = append(results, CheckLockFile(cfg.Conversion.LockFile))
	}

	results = append(results, CheckHostReaders(opts.HostFormats))

	for _, status := range CheckApps(cfg) {
		result := Result{Name: "App " + status.Name, Passed: status.Available, Detail: status.Detail}
		if status.Available {
			result.Detail = status.Path
		}
		results = append(results, result)
		if opts.Probe && status.Available {
			if app, ok := cfg.App(status.Name); ok && len(app.ProbeArgs) > 0 {
				results = append(results, CheckProbe(ctx, app))
			}
		}
	}

	return results
}
