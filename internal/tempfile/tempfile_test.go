package tempfile

import (
	"errors"
	"os"
	"path/filepath"
	"strings"
	"testing"
)

func TestAllocateUsesUniqueUppercaseNames(t *testing.T) {
	a, err := New(t.TempDir())
	if err != nil {
		t.Fatalf("New: %v", err)
	}
	seen := make(map[string]struct{})
	for i := 0; i < 64; i++ {
		path, err := a.Allocate(".stl")
		if err != nil {
			t.Fatalf("Allocate: %v", err)
		}
		if filepath.Dir(path) != a.Dir() {
			t.Fatalf("path %q not in scratch dir %q", path, a.Dir())
		}
		if !strings.HasSuffix(path, ".STL") {
			t.Fatalf("expected upper-case extension, got %q", path)
		}
		if _, dup := seen[path]; dup {
			t.Fatalf("duplicate path %q", path)
		}
		seen[path] = struct{}{}
	}
}

func TestAllocateRequiresFormat(t *testing.T) {
	a, err := New(t.TempDir())
	if err != nil {
		t.Fatalf("New: %v", err)
	}
	if _, err := a.Allocate(" "); err == nil {
		t.Fatal("expected error for empty format")
	}
	a.next = func() string { return "" }
	if _, err := a.Allocate("stl"); err == nil {
		t.Fatal("expected error for empty token")
	}
}

func TestReleaseIsIdempotent(t *testing.T) {
	a, err := New(t.TempDir(), WithNameSource(func() string { return "fixed" }))
	if err != nil {
		t.Fatalf("New: %v", err)
	}
	path, err := a.Allocate("glb")
	if err != nil {
		t.Fatalf("Allocate: %v", err)
	}
	if filepath.Base(path) != "fixed.GLB" {
		t.Fatalf("unexpected name %q", filepath.Base(path))
	}
	if err := os.WriteFile(path, []byte("x"), 0o644); err != nil {
		t.Fatalf("write: %v", err)
	}
	for i := 0; i < 2; i++ {
		if err := a.Release(path); err != nil {
			t.Fatalf("Release #%d: %v", i+1, err)
		}
	}
	if _, err := os.Stat(path); !errors.Is(err, os.ErrNotExist) {
		t.Fatalf("expected file removed, stat err=%v", err)
	}
	if err := a.Release(""); err != nil {
		t.Fatalf("Release(\"\"): %v", err)
	}
}

func TestNewResolvesScratchDirectory(t *testing.T) {
	base := t.TempDir()
	short := filepath.Join(base, "SCRATC~1")
	long := filepath.Join(base, "scratch-long-name")
	var asked string
	a, err := New(short, WithPathResolver(func(p string) (string, error) {
		asked = p
		return long, nil
	}))
	if err != nil {
		t.Fatalf("New: %v", err)
	}
	if asked != short {
		t.Fatalf("resolver called with %q, want %q", asked, short)
	}
	if a.Dir() != long {
		t.Fatalf("Dir() = %q, want %q", a.Dir(), long)
	}
	path, _ := a.Allocate("stl")
	if !strings.HasPrefix(path, long) {
		t.Fatalf("allocated path %q not under resolved dir", path)
	}
}

func TestNewPropagatesResolverError(t *testing.T) {
	_, err := New(t.TempDir(), WithPathResolver(func(string) (string, error) {
		return "", errors.New("boom")
	}))
	if err == nil {
		t.Fatal("expected resolver error")
	}
}

func TestNewCreatesMissingDirectory(t *testing.T) {
	dir := filepath.Join(t.TempDir(), "a", "b")
	if _, err := New(dir); err != nil {
		t.Fatalf("New: %v", err)
	}
	if info, err := os.Stat(dir); err != nil || !info.IsDir() {
		t.Fatalf("expected scratch dir created: %v", err)
	}
}
