package conversion

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"os"
	"time"

	"github.com/google/uuid"

	"modelbridge/internal/appsession"
	"modelbridge/internal/formats"
	"modelbridge/internal/logging"
	"modelbridge/internal/meshio"
	"modelbridge/internal/metrics"
	"modelbridge/internal/services"
)

// Slot serializes conversions across orchestrators.
type Slot interface {
	Acquire(ctx context.Context) (release func(), err error)
}

// Allocator hands out scratch paths for intermediate artifacts.
type Allocator interface {
	Allocate(format string) (string, error)
	Release(path string) error
}

// ReaderRegistry resolves host readers for intermediate artifacts.
type ReaderRegistry interface {
	AvailableFormats() []string
	ReaderForFile(path string) (meshio.Reader, bool)
}

// FormatSupporter is implemented by sessions that know up front which
// intermediate formats they can export. Unsupported formats are skipped
// without counting as a failed attempt.
type FormatSupporter interface {
	Supports(format string) bool
}

// Options configures an Orchestrator.
type Options struct {
	// Reader names the reader variant; used in logs and metrics.
	Reader string
	// Sessions are the candidate applications in priority order.
	Sessions         []appsession.Session
	PreferredFormats []string
	Registry         ReaderRegistry
	Allocator        Allocator
	Slot             Slot
	Assembler        Assembler
	Metrics          *metrics.Collector
	// CallTimeout bounds every external call. Zero disables the bound.
	CallTimeout time.Duration
	// SlotTimeout bounds the wait for the slot. Zero waits until ctx ends.
	SlotTimeout time.Duration
	Logger      *slog.Logger
}

// Orchestrator converts foreign files for one reader variant.
type Orchestrator struct {
	reader      string
	sessions    []appsession.Session
	preferred   []string
	registry    ReaderRegistry
	allocator   Allocator
	slot        Slot
	assembler   Assembler
	metrics     *metrics.Collector
	callTimeout time.Duration
	slotTimeout time.Duration
	logger      *slog.Logger
}

// New validates opts and returns an orchestrator.
func New(opts Options) (*Orchestrator, error) {
	switch {
	case opts.Registry == nil:
		return nil, errors.New("conversion: reader registry required")
	case opts.Allocator == nil:
		return nil, errors.New("conversion: temp file allocator required")
	case opts.Slot == nil:
		return nil, errors.New("conversion: conversion slot required")
	case opts.CallTimeout < 0:
		return nil, errors.New("conversion: call timeout must be >= 0")
	case opts.SlotTimeout < 0:
		return nil, errors.New("conversion: slot timeout must be >= 0")
	}
	for i, session := range opts.Sessions {
		if session == nil {
			return nil, fmt.Errorf("conversion: session %d is nil", i)
		}
	}
	logger := logging.NewComponentLogger(opts.Logger, "conversion")
	if opts.Reader != "" {
		logger = logger.With(logging.String("reader", opts.Reader))
	}
	assembler := opts.Assembler
	if assembler.Logger == nil {
		assembler.Logger = logger
	}
	return &Orchestrator{
		reader:      opts.Reader,
		sessions:    append([]appsession.Session(nil), opts.Sessions...),
		preferred:   formats.NormalizeAll(opts.PreferredFormats),
		registry:    opts.Registry,
		allocator:   opts.Allocator,
		slot:        opts.Slot,
		assembler:   assembler,
		metrics:     opts.Metrics,
		callTimeout: opts.CallTimeout,
		slotTimeout: opts.SlotTimeout,
		logger:      logger,
	}, nil
}

// Reader returns the reader variant name.
func (o *Orchestrator) Reader() string { return o.reader }

// Apps returns the candidate application names in priority order.
func (o *Orchestrator) Apps() []string {
	names := make([]string, len(o.sessions))
	for i, session := range o.sessions {
		names[i] = session.Name()
	}
	return names
}

// Convert converts sourcePath. A conversion that produces nothing returns an
// empty Result and a nil error; Result.Reason says why. The error is non-nil
// only when the slot cannot be acquired, the caller's context ends between
// attempts, or a session variant lacks a capability.
func (o *Orchestrator) Convert(ctx context.Context, sourcePath string) (Result, error) {
	started := time.Now()
	req := &appsession.Request{
		ID:           uuid.NewString(),
		SourcePath:   sourcePath,
		SourceFormat: formats.FromPath(sourcePath),
	}
	ctx = services.WithRequestID(ctx, req.ID)
	logger := logging.WithContext(ctx, o.logger)
	res := Result{RequestID: req.ID, Reader: o.reader}

	logger.Info("conversion started",
		logging.String(logging.FieldEventType, "conversion_start"),
		logging.String("source", sourcePath),
		logging.String("source_format", req.SourceFormat),
	)

	waitStarted := time.Now()
	release, err := o.acquire(ctx)
	if err != nil {
		o.metrics.ObserveConversion(o.reader, metrics.OutcomeError, time.Since(started))
		logger.Error("conversion slot unavailable", logging.Error(err))
		return res, fmt.Errorf("convert %s: %w", sourcePath, err)
	}
	defer release()
	o.metrics.ObserveSlotWait(time.Since(waitStarted))

	err = o.run(ctx, req, &res, logger)
	release()

	if err != nil {
		o.metrics.ObserveConversion(o.reader, metrics.OutcomeError, time.Since(started))
		return res, err
	}
	if res.Reason != ReasonConverted {
		o.metrics.ObserveConversion(o.reader, string(res.Reason), time.Since(started))
		return res, nil
	}

	res.Result = o.assembler.Assemble(ctx, res.Result, sourcePath)
	o.metrics.ObserveConversion(o.reader, metrics.OutcomeConverted, time.Since(started))
	logger.Info("conversion completed",
		logging.String(logging.FieldEventType, "conversion_complete"),
		logging.String(logging.FieldApp, res.App),
		logging.String(logging.FieldFormat, res.Format),
		logging.Int("nodes", len(res.All())),
		logging.Duration("elapsed", time.Since(started)),
	)
	return res, nil
}

func (o *Orchestrator) acquire(ctx context.Context) (func(), error) {
	if o.slotTimeout <= 0 {
		return o.slot.Acquire(ctx)
	}
	waitCtx, cancel := context.WithTimeout(ctx, o.slotTimeout)
	defer cancel()
	release, err := o.slot.Acquire(waitCtx)
	if err != nil && errors.Is(waitCtx.Err(), context.DeadlineExceeded) && ctx.Err() == nil {
		err = fmt.Errorf("%w: %w", services.ErrTimeout, err)
	}
	return release, err
}

func (o *Orchestrator) run(ctx context.Context, req *appsession.Request, res *Result, logger *slog.Logger) error {
	if len(o.sessions) == 0 {
		logging.WarnWithContext(logger, "no candidate application for reader", "no_apps",
			logging.String(logging.FieldErrorHint, "add an app to this reader in the config"),
			logging.String(logging.FieldImpact, "file cannot be opened"),
		)
		res.Reason = ReasonNoApps
		return nil
	}

	sequence := formats.Sequence(o.preferred, o.registry.AvailableFormats())
	if len(sequence) == 0 {
		logging.WarnWithContext(logger, "no reader available for any intermediate format", "no_reader",
			logging.Alert("no_reader"),
			logging.String(logging.FieldErrorHint, "enable at least one host reader (stl, glb, gltf)"),
			logging.String(logging.FieldImpact, "file cannot be opened"),
		)
		res.Reason = ReasonNoReader
		return nil
	}
	req.Formats = sequence

	for _, session := range o.sessions {
		if err := ctx.Err(); err != nil {
			return fmt.Errorf("convert %s: %w", req.SourcePath, err)
		}
		converted, err := o.tryApp(ctx, session, req, res)
		if err != nil {
			return err
		}
		if converted {
			res.Reason = ReasonConverted
			return nil
		}
	}

	logging.WarnWithContext(logger, "every conversion candidate failed", "conversion_exhausted",
		logging.Int("attempts", len(res.Attempts)),
		logging.String(logging.FieldErrorHint, "inspect the attempt warnings above for each application"),
		logging.String(logging.FieldImpact, "file cannot be opened"),
	)
	res.Reason = ReasonExhausted
	return nil
}

// tryApp drives one application through every candidate format. Teardown runs
// once Prepare has been called, whatever happens afterwards.
func (o *Orchestrator) tryApp(ctx context.Context, session appsession.Session, req *appsession.Request, res *Result) (converted bool, err error) {
	name := session.Name()
	req.App = name
	ctx = services.WithApp(ctx, name)
	logger := logging.WithContext(ctx, o.logger)

	active := req
	defer func() {
		if teardownErr := o.teardown(ctx, session, active, logger); err == nil {
			err = teardownErr
		}
		req.App = ""
	}()

	logger.Debug("preparing application")
	if err := o.call(ctx, session.Prepare); err != nil {
		return false, o.failed(logger, res, name, "", "prepare", ensureKind(err, services.ErrStart, name, "prepare"))
	}
	if err := o.call(ctx, func(c context.Context) error { return session.Start(c, active) }); err != nil {
		return false, o.failed(logger, res, name, "", "start", ensureKind(err, services.ErrStart, name, "start"))
	}
	if err := o.call(ctx, func(c context.Context) error {
		opened, err := session.OpenSource(c, active)
		if opened != nil {
			active = opened
		}
		return err
	}); err != nil {
		return false, o.failed(logger, res, name, "", "open", ensureKind(err, services.ErrOpen, name, "open"))
	}

	supporter, _ := session.(FormatSupporter)
	for _, format := range req.Formats {
		if supporter != nil && !supporter.Supports(format) {
			logger.Debug("application cannot export format; skipping", logging.String(logging.FieldFormat, format))
			continue
		}
		out, stage, err := o.tryFormat(ctx, session, active, format)
		if err != nil {
			fctx := services.WithFormat(ctx, format)
			if failErr := o.failed(logging.WithContext(fctx, o.logger), res, name, format, stage, err); failErr != nil {
				return false, failErr
			}
			continue
		}
		o.metrics.ObserveAttempt(name, format, services.Kind(nil))
		res.Result = out
		res.App = name
		res.Format = format
		return true, nil
	}
	return false, nil
}

func (o *Orchestrator) tryFormat(ctx context.Context, session appsession.Session, req *appsession.Request, format string) (meshio.Result, string, error) {
	name := session.Name()
	ctx = services.WithFormat(ctx, format)
	logger := logging.WithContext(ctx, o.logger)

	target, err := o.allocator.Allocate(format)
	if err != nil {
		return meshio.Result{}, "allocate", services.Wrap(services.ErrConfiguration, name, "allocate", "scratch file", err)
	}
	req.Format = format
	req.TempPath = target
	defer func() {
		req.Format = ""
		req.TempPath = ""
		if err := o.allocator.Release(target); err != nil {
			logging.WarnWithContext(logger, "temporary artifact not removed", "temp_release_failed",
				logging.String("path", target),
				logging.Error(err),
				logging.String(logging.FieldErrorHint, "remove the file from the scratch directory manually"),
				logging.String(logging.FieldImpact, "scratch directory keeps a stale file"),
			)
		}
	}()

	logger.Debug("exporting intermediate artifact", logging.String("target", target))
	if err := o.call(ctx, func(c context.Context) error { return session.Export(c, req, format, target) }); err != nil {
		return meshio.Result{}, "export", ensureKind(err, services.ErrExport, name, "export")
	}

	if info, err := os.Stat(target); err != nil {
		return meshio.Result{}, "verify", services.Wrap(services.ErrMissingArtifact, name, "verify", fmt.Sprintf("export reported success but %s is missing", target), err)
	} else if !info.Mode().IsRegular() {
		return meshio.Result{}, "verify", services.Wrap(services.ErrMissingArtifact, name, "verify", fmt.Sprintf("export left %s but it is not a regular file", target), nil)
	}

	reader, ok := o.registry.ReaderForFile(target)
	if !ok {
		return meshio.Result{}, "lookup", services.Wrap(services.ErrNoReader, name, "lookup", fmt.Sprintf("no host reader for %s", format), nil)
	}

	var out meshio.Result
	err = o.call(ctx, func(c context.Context) error {
		var readErr error
		out, readErr = reader.Read(c, target)
		return readErr
	})
	if err != nil {
		return meshio.Result{}, "read", ensureKind(err, services.ErrRead, name, "read "+reader.ID())
	}
	if out.Empty() {
		return meshio.Result{}, "read", services.Wrap(services.ErrRead, name, "read "+reader.ID(), "reader produced no nodes", nil)
	}
	return out, "", nil
}

type teardownStep struct {
	name string
	run  func(context.Context) error
}

// teardown runs CloseSource, Stop and Cleanup in order. A failing step is
// logged and does not skip the next. The returned error is non-nil only for
// a missing capability.
func (o *Orchestrator) teardown(ctx context.Context, session appsession.Session, req *appsession.Request, logger *slog.Logger) error {
	ctx = context.WithoutCancel(ctx)
	steps := []teardownStep{
		{name: "close_source", run: func(c context.Context) error { return session.CloseSource(c, req) }},
		{name: "stop", run: func(c context.Context) error { return session.Stop(c, req) }},
		{name: "cleanup", run: session.Cleanup},
	}
	var fatal error
	for _, step := range steps {
		err := o.call(ctx, step.run)
		if err == nil {
			continue
		}
		if errors.Is(err, appsession.ErrNotImplemented) {
			logger.Error("application session capability missing",
				logging.String("stage", step.name),
				logging.Error(err),
			)
			if fatal == nil {
				fatal = fmt.Errorf("%s %s: %w", session.Name(), step.name, err)
			}
			continue
		}
		logging.WarnWithContext(logger, "application teardown step failed", "teardown_failed",
			logging.String("stage", step.name),
			logging.Error(err),
			logging.String(logging.FieldErrorHint, "check that the application exited"),
			logging.String(logging.FieldImpact, "application may keep running"),
		)
	}
	return fatal
}

// failed records a recoverable attempt failure. A missing capability is
// returned as an error instead.
func (o *Orchestrator) failed(logger *slog.Logger, res *Result, app, format, stage string, err error) error {
	if errors.Is(err, appsession.ErrNotImplemented) {
		logger.Error("application session capability missing",
			logging.String("stage", stage),
			logging.Error(err),
		)
		return fmt.Errorf("%s %s: %w", app, stage, err)
	}
	kind := services.Kind(err)
	o.metrics.ObserveAttempt(app, format, kind)
	res.Attempts = append(res.Attempts, Attempt{
		App:    app,
		Format: format,
		Stage:  stage,
		Kind:   kind,
		Error:  err.Error(),
	})
	impact := "next format will be tried"
	if format == "" {
		impact = "application abandoned; next application will be tried"
	}
	logging.WarnWithContext(logger, "conversion attempt failed", "attempt_failed",
		logging.String("stage", stage),
		logging.String("kind", kind),
		logging.Error(err),
		logging.String(logging.FieldErrorHint, hintFor(kind)),
		logging.String(logging.FieldImpact, impact),
	)
	return nil
}

// call runs fn under the per-call timeout.
func (o *Orchestrator) call(ctx context.Context, fn func(context.Context) error) error {
	if o.callTimeout <= 0 {
		return fn(ctx)
	}
	callCtx, cancel := context.WithTimeout(ctx, o.callTimeout)
	defer cancel()
	err := fn(callCtx)
	if err != nil && errors.Is(callCtx.Err(), context.DeadlineExceeded) && !errors.Is(err, services.ErrTimeout) {
		err = fmt.Errorf("%w: %w", services.ErrTimeout, err)
	}
	return err
}

// ensureKind tags err with marker unless it already carries a failure kind.
func ensureKind(err, marker error, app, operation string) error {
	if err == nil || errors.Is(err, appsession.ErrNotImplemented) || services.Kind(err) != "error" {
		return err
	}
	return services.Wrap(marker, app, operation, "", err)
}

func hintFor(kind string) string {
	switch kind {
	case "start_failure":
		return "check the app command and probe_args in the config"
	case "open_failure":
		return "check the source file and the app's source_formats"
	case "export_failure":
		return "check export_args and the app's formats table"
	case "missing_artifact":
		return "the app exited cleanly without writing the target; check its output"
	case "no_reader":
		return "enable a host reader for this format"
	case "read_failure":
		return "the exported file is unreadable; try another format"
	case "timeout":
		return "raise conversion.call_timeout or check the app is responsive"
	case "configuration_error":
		return "check the scratch directory is writable"
	default:
		return "check logs for details"
	}
}
