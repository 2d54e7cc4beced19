package meshio

import (
	"context"
	"fmt"
	"sync"

	"modelbridge/internal/formats"
	"modelbridge/internal/scene"
)

// Result is what a reader produced: a single node, a list of nodes (container
// formats that carry several objects), or nothing.
type Result struct {
	Node  *scene.Node
	Nodes []*scene.Node
}

// Empty reports whether the result carries no node at all.
func (r Result) Empty() bool {
	return r.Node == nil && len(r.Nodes) == 0
}

// IsList reports whether the reader produced a list of nodes.
func (r Result) IsList() bool {
	return r.Node == nil && len(r.Nodes) > 0
}

// All returns every node of the result as a slice.
func (r Result) All() []*scene.Node {
	if r.Node != nil {
		return []*scene.Node{r.Node}
	}
	return r.Nodes
}

// Reader parses one intermediate format.
type Reader interface {
	ID() string
	Read(ctx context.Context, path string) (Result, error)
}

// FormatInfo describes a registered format for listings.
type FormatInfo struct {
	Format    string
	ReaderID  string
	Available bool
}

// Registry maps formats to readers. It is safe for concurrent use.
type Registry struct {
	mu       sync.RWMutex
	order    []string
	readers  map[string]Reader
	disabled map[string]struct{}
}

// NewRegistry returns an empty registry.
func NewRegistry() *Registry {
	return &Registry{
		readers:  make(map[string]Reader),
		disabled: make(map[string]struct{}),
	}
}

// NewDefaultRegistry returns a registry with the built-in STL and glTF readers.
func NewDefaultRegistry() *Registry {
	r := NewRegistry()
	_ = r.Register("stl", STLReader{})
	_ = r.Register("glb", GLTFReader{})
	_ = r.Register("gltf", GLTFReader{})
	return r
}

// Register adds a reader for format. Registration order is the discovery order.
func (r *Registry) Register(format string, reader Reader) error {
	format = formats.Normalize(format)
	if format == "" {
		return fmt.Errorf("register reader: format required")
	}
	if reader == nil {
		return fmt.Errorf("register reader for %s: reader required", format)
	}
	r.mu.Lock()
	defer r.mu.Unlock()
	if _, ok := r.readers[format]; ok {
		return fmt.Errorf("register reader for %s: already registered", format)
	}
	r.readers[format] = reader
	r.order = append(r.order, format)
	return nil
}

// Disable marks the reader for format unusable without removing it.
func (r *Registry) Disable(format string) {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.disabled[formats.Normalize(format)] = struct{}{}
}

// Enable reverses Disable.
func (r *Registry) Enable(format string) {
	r.mu.Lock()
	defer r.mu.Unlock()
	delete(r.disabled, formats.Normalize(format))
}

// IsReaderAvailable reports whether format has a registered, enabled reader.
func (r *Registry) IsReaderAvailable(format string) bool {
	r.mu.RLock()
	defer r.mu.RUnlock()
	return r.availableLocked(formats.Normalize(format))
}

// ReaderForFile returns the reader for the file's extension, if usable.
func (r *Registry) ReaderForFile(path string) (Reader, bool) {
	format := formats.FromPath(path)
	r.mu.RLock()
	defer r.mu.RUnlock()
	if !r.availableLocked(format) {
		return nil, false
	}
	return r.readers[format], true
}

// AvailableFormats returns the usable formats in discovery order.
func (r *Registry) AvailableFormats() []string {
	r.mu.RLock()
	defer r.mu.RUnlock()
	out := make([]string, 0, len(r.order))
	for _, format := range r.order {
		if r.availableLocked(format) {
			out = append(out, format)
		}
	}
	return out
}

// Formats lists every registered format with its availability.
func (r *Registry) Formats() []FormatInfo {
	r.mu.RLock()
	defer r.mu.RUnlock()
	out := make([]FormatInfo, 0, len(r.order))
	for _, format := range r.order {
		out = append(out, FormatInfo{
			Format:    format,
			ReaderID:  r.readers[format].ID(),
			Available: r.availableLocked(format),
		})
	}
	return out
}

func (r *Registry) availableLocked(format string) bool {
	if format == "" {
		return false
	}
	if _, ok := r.readers[format]; !ok {
		return false
	}
	_, off := r.disabled[format]
	return !off
}
