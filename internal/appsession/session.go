package appsession

import (
	"context"
	"errors"
	"fmt"
)

// ErrNotImplemented marks a capability a variant does not provide.
var ErrNotImplemented = errors.New("capability not implemented")

// Request tracks one in-flight conversion. It is owned by a single
// orchestrator call and never shared.
type Request struct {
	ID           string
	SourcePath   string
	SourceFormat string
	// Formats is the ordered candidate intermediate format sequence.
	Formats []string
	// Format is the intermediate format currently attempted.
	Format string
	// App is the application currently driven.
	App string
	// TempPath is the scratch file of the current attempt, if any.
	TempPath string
	// Handle is opaque application state; only the owning session reads it.
	Handle any
}

// Session drives one external application.
type Session interface {
	Name() string
	Prepare(ctx context.Context) error
	Start(ctx context.Context, req *Request) error
	OpenSource(ctx context.Context, req *Request) (*Request, error)
	Export(ctx context.Context, req *Request, format, target string) error
	CloseSource(ctx context.Context, req *Request) error
	Stop(ctx context.Context, req *Request) error
	Cleanup(ctx context.Context) error
}

// Unimplemented can be embedded by variants; every method reports
// ErrNotImplemented.
type Unimplemented struct{}

func notImplemented(op string) error {
	return fmt.Errorf("%s: %w", op, ErrNotImplemented)
}

func (Unimplemented) Prepare(context.Context) error { return notImplemented("prepare") }

func (Unimplemented) Start(context.Context, *Request) error { return notImplemented("start") }

func (Unimplemented) OpenSource(_ context.Context, req *Request) (*Request, error) {
	return req, notImplemented("open source")
}

func (Unimplemented) Export(context.Context, *Request, string, string) error {
	return notImplemented("export")
}

func (Unimplemented) CloseSource(context.Context, *Request) error {
	return notImplemented("close source")
}

func (Unimplemented) Stop(context.Context, *Request) error { return notImplemented("stop") }

func (Unimplemented) Cleanup(context.Context) error { return notImplemented("cleanup") }
