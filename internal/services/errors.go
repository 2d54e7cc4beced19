package services

import (
	"errors"
	"fmt"
	"strings"
)

// Failure kinds raised while driving an external application. Every kind is
// recoverable at the orchestration level: the current candidate is abandoned
// and the next one is tried.
var (
	ErrStart           = errors.New("start failure")
	ErrOpen            = errors.New("open failure")
	ErrExport          = errors.New("export failure")
	ErrMissingArtifact = errors.New("missing artifact")
	ErrNoReader        = errors.New("no reader")
	ErrRead            = errors.New("read failure")
	ErrConfiguration   = errors.New("configuration error")
	ErrTimeout         = errors.New("timeout")
)

// Wrap builds an error message that includes application context while tagging
// it with the provided marker for later classification. The marker should be
// one of the exported sentinel errors above.
func Wrap(marker error, app, operation, message string, err error) error {
	detail := buildDetail(app, operation, message)
	if marker == nil {
		marker = ErrExport
	}
	if err != nil {
		return fmt.Errorf("%w: %s: %w", marker, detail, err)
	}
	return fmt.Errorf("%w: %s", marker, detail)
}

// Kind returns a stable label for the failure kind carried by err. It is used
// as the outcome label in logs and metrics.
func Kind(err error) string {
	switch {
	case err == nil:
		return "ok"
	case errors.Is(err, ErrTimeout):
		return "timeout"
	case errors.Is(err, ErrStart):
		return "start_failure"
	case errors.Is(err, ErrOpen):
		return "open_failure"
	case errors.Is(err, ErrExport):
		return "export_failure"
	case errors.Is(err, ErrMissingArtifact):
		return "missing_artifact"
	case errors.Is(err, ErrNoReader):
		return "no_reader"
	case errors.Is(err, ErrRead):
		return "read_failure"
	case errors.Is(err, ErrConfiguration):
		return "configuration_error"
	default:
		return "error"
	}
}

func buildDetail(app, operation, message string) string {
	parts := make([]string, 0, 3)
	if app = strings.TrimSpace(app); app != "" {
		parts = append(parts, app)
	}
	if operation = strings.TrimSpace(operation); operation != "" {
		parts = append(parts, operation)
	}
	if message = strings.TrimSpace(message); message != "" {
		parts = append(parts, message)
	}
	if len(parts) == 0 {
		return "application failure"
	}
	return strings.Join(parts, ": ")
}
