package conversion

import "modelbridge/internal/meshio"

// Reason explains how a conversion ended.
type Reason string

const (
	ReasonConverted Reason = "converted"
	// ReasonNoApps means the reader variant has no candidate application.
	ReasonNoApps Reason = "no_apps"
	// ReasonNoReader means no host reader is available for any intermediate
	// format, so no application was started.
	ReasonNoReader Reason = "no_reader"
	// ReasonExhausted means every (application, format) attempt failed.
	ReasonExhausted Reason = "exhausted"
)

// Attempt records one failed candidate. Format is empty when the application
// failed before any export.
type Attempt struct {
	App    string `json:"app"`
	Format string `json:"format,omitempty"`
	Stage  string `json:"stage"`
	Kind   string `json:"kind"`
	Error  string `json:"error"`
}

// Result is the outcome of Convert. The embedded meshio.Result is empty
// unless Reason is ReasonConverted.
type Result struct {
	meshio.Result

	RequestID string    `json:"request_id"`
	Reader    string    `json:"reader"`
	App       string    `json:"app,omitempty"`
	Format    string    `json:"format,omitempty"`
	Reason    Reason    `json:"reason"`
	Attempts  []Attempt `json:"attempts,omitempty"`
}

// Converted reports whether nodes were produced.
func (r Result) Converted() bool {
	return r.Reason == ReasonConverted && !r.Empty()
}
