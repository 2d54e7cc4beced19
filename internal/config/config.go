package config

import (
	_ "embed"
	"errors"
	"fmt"
	"io/fs"
	"os"
	"path/filepath"
	"slices"
	"strings"

	"github.com/pelletier/go-toml/v2"
)

//go:embed sample_config.toml
var sampleConfig string

// Paths contains directory configuration.
type Paths struct {
	ScratchDir string `toml:"scratch_dir"`
	LogDir     string `toml:"log_dir"`
}

// Conversion contains the engine knobs shared by every reader.
type Conversion struct {
	// LockFile is the flock target used when CrossProcessLock is enabled.
	LockFile         string `toml:"lock_file"`
	CrossProcessLock bool   `toml:"cross_process_lock"`
	// CallTimeout bounds each external application call, in seconds. Zero disables the bound.
	CallTimeout int `toml:"call_timeout"`
	// SlotTimeout bounds the wait for the conversion slot, in seconds. Zero waits indefinitely.
	SlotTimeout int `toml:"slot_timeout"`
}

// Host contains host reader registry settings.
type Host struct {
	DisabledReaders []string `toml:"disabled_readers"`
}

// App describes one external application able to export foreign files.
//
// ExportArgs and ProbeArgs accept the placeholders {source}, {target},
// {format} and {token}; {token} expands to the entry of Formats for the
// intermediate format being attempted.
type App struct {
	Name          string            `toml:"name"`
	Command       string            `toml:"command"`
	ProbeArgs     []string          `toml:"probe_args"`
	ExportArgs    []string          `toml:"export_args"`
	SourceFormats []string          `toml:"source_formats"`
	Formats       map[string]string `toml:"formats"`
}

// Reader describes one foreign-format reader variant: which extensions it
// claims, which applications it tries (in order), and which intermediate
// formats it prefers.
type Reader struct {
	Name             string   `toml:"name"`
	Extensions       []string `toml:"extensions"`
	Apps             []string `toml:"apps"`
	PreferredFormats []string `toml:"preferred_formats"`
}

// Logging contains configuration for log output.
type Logging struct {
	Format string `toml:"format"`
	Level  string `toml:"level"`
}

// Config encapsulates all configuration values for modelbridge.
//
// Configuration sections by subsystem:
//   - Paths: scratch and log directories
//   - Conversion: slot locking and external call bounds
//   - Host: host reader registry toggles
//   - Logging: log format and level
//   - Apps: external applications available for export
//   - Readers: foreign-format reader variants
type Config struct {
	Paths      Paths      `toml:"paths"`
	Conversion Conversion `toml:"conversion"`
	Host       Host       `toml:"host"`
	Logging    Logging    `toml:"logging"`
	Apps       []App      `toml:"apps"`
	Readers    []Reader   `toml:"readers"`
}

// DefaultConfigPath returns the absolute path to the default configuration file location.
func DefaultConfigPath() (string, error) {
	return ExpandPath("~/.config/modelbridge/config.toml")
}

// Load locates, parses, normalizes and validates a configuration file.
//
// An explicit path that does not exist yields the defaults with exists=false.
// Without a path, the user config and then ./modelbridge.toml are tried.
// Unknown keys are rejected so a misspelled [[apps]] field fails loudly
// instead of silently disabling an exporter.
func Load(path string) (cfg *Config, resolved string, exists bool, err error) {
	resolved, exists, err = locate(path)
	if err != nil {
		return nil, "", false, err
	}

	loaded := Default()
	if exists {
		if err := decodeFile(resolved, &loaded); err != nil {
			return nil, "", false, err
		}
	}
	if err := loaded.normalize(); err != nil {
		return nil, "", false, err
	}
	if err := loaded.Validate(); err != nil {
		return nil, "", false, err
	}
	return &loaded, resolved, exists, nil
}

func decodeFile(path string, cfg *Config) error {
	file, err := os.Open(path)
	if err != nil {
		return fmt.Errorf("open config: %w", err)
	}
	defer file.Close()

	// Array tables replace the defaults wholesale; normalize restores them when absent.
	cfg.Apps = nil
	cfg.Readers = nil

	decoder := toml.NewDecoder(file).DisallowUnknownFields()
	if err := decoder.Decode(cfg); err != nil {
		var strict *toml.StrictMissingError
		if errors.As(err, &strict) {
			return fmt.Errorf("parse config %s: unknown keys:\n%s", path, strict.String())
		}
		return fmt.Errorf("parse config %s: %w", path, err)
	}
	return nil
}

func locate(path string) (string, bool, error) {
	var candidates []string
	if strings.TrimSpace(path) != "" {
		candidates = []string{path}
	} else {
		defaultPath, err := DefaultConfigPath()
		if err != nil {
			return "", false, err
		}
		candidates = []string{defaultPath, "modelbridge.toml"}
	}

	for _, candidate := range candidates {
		expanded, err := ExpandPath(candidate)
		if err != nil {
			return "", false, err
		}
		info, err := os.Stat(expanded)
		switch {
		case err == nil && !info.IsDir():
			return expanded, true, nil
		case err != nil && !errors.Is(err, fs.ErrNotExist):
			return "", false, fmt.Errorf("stat config: %w", err)
		}
	}

	fallback, err := ExpandPath(candidates[0])
	return fallback, false, err
}

// EnsureDirectories creates the scratch and log directories plus the parent of
// the lock file.
func (c *Config) EnsureDirectories() error {
	dirs := []string{c.Paths.ScratchDir, c.Paths.LogDir}
	if c.Conversion.CrossProcessLock && c.Conversion.LockFile != "" {
		dirs = append(dirs, filepath.Dir(c.Conversion.LockFile))
	}
	for _, dir := range dirs {
		if strings.TrimSpace(dir) == "" {
			continue
		}
		if err := os.MkdirAll(dir, 0o755); err != nil {
			return fmt.Errorf("create directory %q: %w", dir, err)
		}
	}
	return nil
}

// App returns the application entry with the given name.
func (c *Config) App(name string) (App, bool) {
	name = strings.ToLower(strings.TrimSpace(name))
	i := slices.IndexFunc(c.Apps, func(app App) bool { return app.Name == name })
	if i < 0 {
		return App{}, false
	}
	return c.Apps[i], true
}

// ExpandPath resolves a leading "~" to the home directory and returns the
// cleaned absolute path. The empty string is returned unchanged.
func ExpandPath(value string) (string, error) {
	if value == "" {
		return "", nil
	}
	if value == "~" || strings.HasPrefix(value, "~/") || strings.HasPrefix(value, `~\`) {
		home, err := os.UserHomeDir()
		if err != nil {
			return "", fmt.Errorf("resolve home directory: %w", err)
		}
		value = filepath.Join(home, value[1:])
	}
	absolute, err := filepath.Abs(value)
	if err != nil {
		return "", fmt.Errorf("resolve absolute path for %q: %w", value, err)
	}
	return absolute, nil
}

// CreateSample writes the embedded sample configuration to path.
func CreateSample(path string) error {
	if err := os.MkdirAll(filepath.Dir(path), 0o755); err != nil {
		return fmt.Errorf("create config directory: %w", err)
	}
	if err := os.WriteFile(path, []byte(sampleConfig), 0o644); err != nil {
		return fmt.Errorf("write sample config: %w", err)
	}
	return nil
}
