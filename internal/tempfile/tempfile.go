// Package tempfile allocates uniquely named scratch files for intermediate
// exports and removes them again.
package tempfile

import (
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"github.com/google/uuid"

	"modelbridge/internal/formats"
)

// Option configures an Allocator.
type Option func(*Allocator)

// WithPathResolver replaces the platform long-path service (primarily for tests).
func WithPathResolver(resolve func(string) (string, error)) Option {
	return func(a *Allocator) {
		if resolve != nil {
			a.resolve = resolve
		}
	}
}

// WithNameSource replaces the random token generator (primarily for tests).
func WithNameSource(next func() string) Option {
	return func(a *Allocator) {
		if next != nil {
			a.next = next
		}
	}
}

// Allocator hands out scratch paths inside one directory.
type Allocator struct {
	dir     string
	resolve func(string) (string, error)
	next    func() string
}

// New constructs an allocator rooted at dir. An empty dir selects the system
// temporary directory. The directory is created if missing and resolved to its
// canonical long form.
func New(dir string, opts ...Option) (*Allocator, error) {
	a := &Allocator{
		resolve: LongPath,
		next:    uuid.NewString,
	}
	for _, opt := range opts {
		opt(a)
	}
	dir = strings.TrimSpace(dir)
	if dir == "" {
		dir = os.TempDir()
	}
	if err := os.MkdirAll(dir, 0o755); err != nil {
		return nil, fmt.Errorf("create scratch directory: %w", err)
	}
	resolved, err := a.resolve(dir)
	if err != nil {
		return nil, fmt.Errorf("resolve scratch directory %q: %w", dir, err)
	}
	a.dir = resolved
	return a, nil
}

// Dir returns the resolved scratch directory.
func (a *Allocator) Dir() string {
	return a.dir
}

// Allocate returns a fresh path named <token>.<FORMAT>. The file is not created.
func (a *Allocator) Allocate(format string) (string, error) {
	format = formats.Normalize(format)
	if format == "" {
		return "", errors.New("allocate temporary file: format required")
	}
	token := a.next()
	if token == "" {
		return "", errors.New("allocate temporary file: empty name token")
	}
	return filepath.Join(a.dir, token+"."+strings.ToUpper(format)), nil
}

// Release deletes the file at path. Missing files are not an error.
func (a *Allocator) Release(path string) error {
	if strings.TrimSpace(path) == "" {
		return nil
	}
	if err := os.Remove(path); err != nil && !errors.Is(err, os.ErrNotExist) {
		return fmt.Errorf("remove temporary file: %w", err)
	}
	return nil
}
