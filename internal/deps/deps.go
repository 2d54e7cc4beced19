package deps

import (
	"fmt"
	"os/exec"
	"strings"
)

// Requirement names an external binary and the configured command used to run it.
type Requirement struct {
	Name        string
	Command     string
	Description string
	// Optional requirements are reported but never block a run.
	Optional bool
}

// Status is a Requirement plus the outcome of resolving its command.
type Status struct {
	Requirement
	Available bool
	// Path is the resolved binary location when Available.
	Path   string
	Detail string
}

// LookPathFunc resolves a command name to an executable path.
type LookPathFunc func(string) (string, error)

// CheckBinaries resolves every requirement on PATH.
func CheckBinaries(requirements []Requirement) []Status {
	return Check(requirements, exec.LookPath)
}

// Check resolves every requirement with lookPath, preserving input order.
func Check(requirements []Requirement, lookPath LookPathFunc) []Status {
	results := make([]Status, len(requirements))
	for i, req := range requirements {
		req.Command = strings.TrimSpace(req.Command)
		req.Description = strings.TrimSpace(req.Description)
		results[i] = resolve(req, lookPath)
	}
	return results
}

func resolve(req Requirement, lookPath LookPathFunc) Status {
	status := Status{Requirement: req}
	if req.Command == "" {
		status.Detail = "command not configured"
		return status
	}
	path, err := lookPath(req.Command)
	if err != nil {
		status.Detail = fmt.Sprintf("binary %q not found", req.Command)
		return status
	}
	status.Available = true
	status.Path = path
	return status
}
