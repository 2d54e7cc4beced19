package bridge

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"slices"
	"sort"
	"time"

	"modelbridge/internal/appsession"
	"modelbridge/internal/appsession/cliapp"
	"modelbridge/internal/config"
	"modelbridge/internal/conversion"
	"modelbridge/internal/formats"
	"modelbridge/internal/logging"
	"modelbridge/internal/meshio"
	"modelbridge/internal/metrics"
	"modelbridge/internal/slot"
	"modelbridge/internal/tempfile"
)

// ErrUnsupportedFormat is returned when no reader variant claims a file.
var ErrUnsupportedFormat = errors.New("unsupported source format")

// SessionFactory builds the session driving one configured application.
type SessionFactory func(app config.App, logger *slog.Logger) (appsession.Session, error)

// Option configures a Service.
type Option func(*Service)

// WithLogger sets the base logger.
func WithLogger(logger *slog.Logger) Option {
	return func(s *Service) {
		s.logger = logger
	}
}

// WithRegistry replaces the default host reader registry.
func WithRegistry(registry *meshio.Registry) Option {
	return func(s *Service) {
		if registry != nil {
			s.registry = registry
		}
	}
}

// WithSessionFactory replaces the command-line session factory.
func WithSessionFactory(factory SessionFactory) Option {
	return func(s *Service) {
		if factory != nil {
			s.newSession = factory
		}
	}
}

// WithMetrics sets the metrics collector. Without it the service creates its own.
func WithMetrics(collector *metrics.Collector) Option {
	return func(s *Service) {
		s.metrics = collector
	}
}

// WithPostProcessor installs a hook run on every converted node set.
func WithPostProcessor(post conversion.PostProcessor) Option {
	return func(s *Service) {
		s.post = post
	}
}

// AppInfo describes a configured application.
type AppInfo struct {
	Name          string   `json:"name"`
	Command       string   `json:"command"`
	Formats       []string `json:"formats"`
	SourceFormats []string `json:"source_formats,omitempty"`
}

// ReaderInfo describes a reader variant and its resolved candidate apps.
type ReaderInfo struct {
	Name             string   `json:"name"`
	Extensions       []string `json:"extensions"`
	Apps             []string `json:"apps"`
	PreferredFormats []string `json:"preferred_formats,omitempty"`
}

type variant struct {
	info         ReaderInfo
	orchestrator *conversion.Orchestrator
}

// Service routes conversions to reader variants.
type Service struct {
	cfg        *config.Config
	logger     *slog.Logger
	registry   *meshio.Registry
	metrics    *metrics.Collector
	post       conversion.PostProcessor
	newSession SessionFactory

	slot      *slot.Slot
	allocator *tempfile.Allocator
	variants  []*variant
	byExt     map[string]*variant
}

// New wires the engine described by cfg.
func New(cfg *config.Config, opts ...Option) (*Service, error) {
	if cfg == nil {
		return nil, errors.New("bridge: config required")
	}
	s := &Service{
		cfg:        cfg,
		registry:   meshio.NewDefaultRegistry(),
		newSession: defaultSessionFactory,
		byExt:      make(map[string]*variant),
	}
	for _, opt := range opts {
		opt(s)
	}
	s.logger = logging.NewComponentLogger(s.logger, "bridge")
	if s.metrics == nil {
		s.metrics = metrics.New()
	}
	for _, format := range cfg.Host.DisabledReaders {
		s.registry.Disable(format)
	}

	allocator, err := tempfile.New(cfg.Paths.ScratchDir)
	if err != nil {
		return nil, fmt.Errorf("bridge: scratch directory: %w", err)
	}
	s.allocator = allocator

	slotOpts := slot.Options{Logger: s.logger}
	if cfg.Conversion.CrossProcessLock {
		slotOpts.LockPath = cfg.Conversion.LockFile
	}
	s.slot = slot.New(slotOpts)

	sessions := make(map[string]appsession.Session, len(cfg.Apps))
	for _, app := range cfg.Apps {
		session, err := s.newSession(app, s.logger)
		if err != nil {
			_ = s.slot.Close()
			return nil, fmt.Errorf("bridge: app %s: %w", app.Name, err)
		}
		sessions[app.Name] = session
	}

	for _, reader := range cfg.Readers {
		v, err := s.buildVariant(reader, sessions)
		if err != nil {
			_ = s.slot.Close()
			return nil, err
		}
		s.variants = append(s.variants, v)
		for _, ext := range v.info.Extensions {
			if _, taken := s.byExt[ext]; taken {
				_ = s.slot.Close()
				return nil, fmt.Errorf("bridge: extension %q claimed by more than one reader", ext)
			}
			s.byExt[ext] = v
		}
	}
	s.logger.Debug("bridge ready",
		logging.Int("apps", len(sessions)),
		logging.Int("readers", len(s.variants)),
		logging.String("scratch_dir", allocator.Dir()),
		logging.Strings("host_formats", s.registry.AvailableFormats()),
	)
	return s, nil
}

func defaultSessionFactory(app config.App, logger *slog.Logger) (appsession.Session, error) {
	return cliapp.New(app, cliapp.WithLogger(logger))
}

func (s *Service) buildVariant(reader config.Reader, sessions map[string]appsession.Session) (*variant, error) {
	candidates := make([]appsession.Session, 0, len(reader.Apps))
	names := make([]string, 0, len(reader.Apps))
	for _, name := range reader.Apps {
		session, ok := sessions[name]
		if !ok {
			logging.WarnWithContext(s.logger, "reader lists an unknown app", "config_unknown_app",
				logging.String("reader", reader.Name),
				logging.String(logging.FieldApp, name),
				logging.String(logging.FieldErrorHint, "add the app to [[apps]] or remove it from the reader"),
				logging.String(logging.FieldImpact, "app skipped for this reader"),
			)
			continue
		}
		candidates = append(candidates, session)
		names = append(names, name)
	}

	orchestrator, err := conversion.New(conversion.Options{
		Reader:           reader.Name,
		Sessions:         candidates,
		PreferredFormats: reader.PreferredFormats,
		Registry:         s.registry,
		Allocator:        s.allocator,
		Slot:             s.slot,
		Assembler:        conversion.Assembler{PostProcess: s.post},
		Metrics:          s.metrics,
		CallTimeout:      time.Duration(s.cfg.Conversion.CallTimeout) * time.Second,
		SlotTimeout:      time.Duration(s.cfg.Conversion.SlotTimeout) * time.Second,
		Logger:           s.logger,
	})
	if err != nil {
		return nil, fmt.Errorf("bridge: reader %s: %w", reader.Name, err)
	}
	return &variant{
		info: ReaderInfo{
			Name:             reader.Name,
			Extensions:       formats.NormalizeAll(reader.Extensions),
			Apps:             names,
			PreferredFormats: formats.NormalizeAll(reader.PreferredFormats),
		},
		orchestrator: orchestrator,
	}, nil
}

// Convert converts path with the reader variant claiming its extension.
func (s *Service) Convert(ctx context.Context, path string) (conversion.Result, error) {
	ext := formats.FromPath(path)
	v, ok := s.byExt[ext]
	if !ok {
		return conversion.Result{}, fmt.Errorf("%w: %q (%s)", ErrUnsupportedFormat, ext, path)
	}
	return v.orchestrator.Convert(ctx, path)
}

// Supports reports whether some reader variant claims path.
func (s *Service) Supports(path string) bool {
	_, ok := s.byExt[formats.FromPath(path)]
	return ok
}

// Apps lists the configured applications in declaration order.
func (s *Service) Apps() []AppInfo {
	infos := make([]AppInfo, 0, len(s.cfg.Apps))
	for _, app := range s.cfg.Apps {
		tokens := make([]string, 0, len(app.Formats))
		for format := range app.Formats {
			tokens = append(tokens, format)
		}
		sort.Strings(tokens)
		infos = append(infos, AppInfo{
			Name:          app.Name,
			Command:       app.Command,
			Formats:       tokens,
			SourceFormats: slices.Clone(app.SourceFormats),
		})
	}
	return infos
}

// Readers lists the reader variants in declaration order.
func (s *Service) Readers() []ReaderInfo {
	infos := make([]ReaderInfo, 0, len(s.variants))
	for _, v := range s.variants {
		info := v.info
		info.Extensions = slices.Clone(info.Extensions)
		info.Apps = slices.Clone(info.Apps)
		info.PreferredFormats = slices.Clone(info.PreferredFormats)
		infos = append(infos, info)
	}
	return infos
}

// HostFormats lists the intermediate formats the host registry knows.
func (s *Service) HostFormats() []meshio.FormatInfo {
	return s.registry.Formats()
}

// Metrics returns the shared collector.
func (s *Service) Metrics() *metrics.Collector {
	return s.metrics
}

// ScratchDir returns the resolved scratch directory.
func (s *Service) ScratchDir() string {
	return s.allocator.Dir()
}

// Close shuts the conversion slot. In-flight conversions finish normally.
func (s *Service) Close() error {
	return s.slot.Close()
}
