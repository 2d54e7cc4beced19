package cliapp

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"os"
	"os/exec"
	"slices"
	"strings"

	"modelbridge/internal/appsession"
	"modelbridge/internal/config"
	"modelbridge/internal/logging"
	"modelbridge/internal/services"
)

const outputTailLines = 5

// Option configures a Session.
type Option func(*Session)

// WithExecutor injects a custom executor (primarily for tests).
func WithExecutor(exec Executor) Option {
	return func(s *Session) {
		if exec != nil {
			s.exec = exec
		}
	}
}

// WithLookPath replaces binary resolution (primarily for tests).
func WithLookPath(lookPath func(string) (string, error)) Option {
	return func(s *Session) {
		if lookPath != nil {
			s.lookPath = lookPath
		}
	}
}

// WithLogger sets the logger used for application output.
func WithLogger(logger *slog.Logger) Option {
	return func(s *Session) {
		s.logger = logger
	}
}

// Session drives one command-line exporter.
type Session struct {
	app      config.App
	exec     Executor
	lookPath func(string) (string, error)
	logger   *slog.Logger

	binary string
}

var _ appsession.Session = (*Session)(nil)

// handle is the per-request state stashed in Request.Handle.
type handle struct {
	binary string
	source string
}

// New constructs a session for app.
func New(app config.App, opts ...Option) (*Session, error) {
	if strings.TrimSpace(app.Name) == "" {
		return nil, errors.New("app name required")
	}
	if strings.TrimSpace(app.Command) == "" {
		return nil, fmt.Errorf("app %s: command required", app.Name)
	}
	s := &Session{
		app:      app,
		exec:     commandExecutor{},
		lookPath: exec.LookPath,
	}
	for _, opt := range opts {
		opt(s)
	}
	s.logger = logging.NewComponentLogger(s.logger, "cliapp").With(logging.String(logging.FieldApp, app.Name))
	return s, nil
}

func (s *Session) Name() string { return s.app.Name }

// Supports reports whether the app declares an export token for format.
func (s *Session) Supports(format string) bool {
	_, ok := s.app.Formats[format]
	return ok
}

// Prepare resolves the application binary.
func (s *Session) Prepare(ctx context.Context) error {
	binary, err := s.lookPath(s.app.Command)
	if err != nil {
		return services.Wrap(services.ErrStart, s.app.Name, "prepare", fmt.Sprintf("binary %q not found", s.app.Command), err)
	}
	s.binary = binary
	return nil
}

// Start probes the application when a probe command is configured and
// attaches a fresh handle to the request.
func (s *Session) Start(ctx context.Context, req *appsession.Request) error {
	if s.binary == "" {
		return services.Wrap(services.ErrStart, s.app.Name, "start", "session not prepared", nil)
	}
	if len(s.app.ProbeArgs) > 0 {
		args := expandArgs(s.app.ProbeArgs, placeholders{source: req.SourcePath})
		tail := newOutputTail(outputTailLines)
		if err := s.exec.Run(ctx, s.binary, args, tail.add); err != nil {
			return services.Wrap(services.ErrStart, s.app.Name, "probe", tail.String(), classify(ctx, err))
		}
	}
	req.Handle = &handle{binary: s.binary}
	return nil
}

// OpenSource validates the foreign file and records it on the handle.
func (s *Session) OpenSource(ctx context.Context, req *appsession.Request) (*appsession.Request, error) {
	h, ok := req.Handle.(*handle)
	if !ok || h == nil {
		return req, services.Wrap(services.ErrOpen, s.app.Name, "open", "session not started", nil)
	}
	if len(s.app.SourceFormats) > 0 && !slices.Contains(s.app.SourceFormats, req.SourceFormat) {
		return req, services.Wrap(services.ErrOpen, s.app.Name, "open", fmt.Sprintf("source format %q not supported", req.SourceFormat), nil)
	}
	info, err := os.Stat(req.SourcePath)
	if err != nil {
		return req, services.Wrap(services.ErrOpen, s.app.Name, "open", "inspect source", err)
	}
	if !info.Mode().IsRegular() {
		return req, services.Wrap(services.ErrOpen, s.app.Name, "open", fmt.Sprintf("%s is not a regular file", req.SourcePath), nil)
	}
	h.source = req.SourcePath
	return req, nil
}

// Export runs the app's export command writing target in format.
func (s *Session) Export(ctx context.Context, req *appsession.Request, format, target string) error {
	h, ok := req.Handle.(*handle)
	if !ok || h == nil || h.source == "" {
		return services.Wrap(services.ErrExport, s.app.Name, "export", "no source open", nil)
	}
	token, ok := s.app.Formats[format]
	if !ok {
		return services.Wrap(services.ErrExport, s.app.Name, "export", fmt.Sprintf("format %q not supported", format), nil)
	}
	args := expandArgs(s.app.ExportArgs, placeholders{
		source: h.source,
		target: target,
		format: format,
		token:  token,
	})
	tail := newOutputTail(outputTailLines)
	err := s.exec.Run(ctx, h.binary, args, func(line string) {
		tail.add(line)
		s.logger.Debug("app output", logging.String("line", line))
	})
	if err != nil {
		return services.Wrap(services.ErrExport, s.app.Name, "export", tail.String(), classify(ctx, err))
	}
	return nil
}

// CloseSource forgets the open document. Safe on sessions that never opened one.
func (s *Session) CloseSource(ctx context.Context, req *appsession.Request) error {
	if h, ok := req.Handle.(*handle); ok && h != nil {
		h.source = ""
	}
	return nil
}

// Stop detaches the request from the application.
func (s *Session) Stop(ctx context.Context, req *appsession.Request) error {
	req.Handle = nil
	return nil
}

// Cleanup drops the resolved binary so the next conversion resolves it again.
func (s *Session) Cleanup(ctx context.Context) error {
	s.binary = ""
	return nil
}

func classify(ctx context.Context, err error) error {
	if errors.Is(ctx.Err(), context.DeadlineExceeded) {
		return fmt.Errorf("%w: %w", services.ErrTimeout, err)
	}
	return err
}

type placeholders struct {
	source string
	target string
	format string
	token  string
}

func expandArgs(args []string, p placeholders) []string {
	replacer := strings.NewReplacer(
		"{source}", p.source,
		"{target}", p.target,
		"{format}", p.format,
		"{token}", p.token,
	)
	out := make([]string, len(args))
	for i, arg := range args {
		out[i] = replacer.Replace(arg)
	}
	return out
}

type outputTail struct {
	limit int
	lines []string
}

func newOutputTail(limit int) *outputTail {
	return &outputTail{limit: limit}
}

func (t *outputTail) add(line string) {
	line = strings.TrimSpace(line)
	if line == "" {
		return
	}
	t.lines = append(t.lines, line)
	if len(t.lines) > t.limit {
		t.lines = t.lines[len(t.lines)-t.limit:]
	}
}

func (t *outputTail) String() string {
	return strings.Join(t.lines, " | ")
}
