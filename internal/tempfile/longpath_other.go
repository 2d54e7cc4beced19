//go:build !windows

package tempfile

import "path/filepath"

// LongPath returns path unchanged apart from cleaning; only Windows has
// legacy short (8.3) path forms to expand.
func LongPath(path string) (string, error) {
	return filepath.Clean(path), nil
}
