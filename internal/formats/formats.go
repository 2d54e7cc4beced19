// Package formats normalizes file-format identifiers and orders the
// intermediate formats a conversion tries.
package formats

import (
	"path/filepath"
	"strings"
)

// Normalize lower-cases a format identifier and strips a leading dot, so
// ".STL", "stl" and " Stl " compare equal.
func Normalize(format string) string {
	return strings.TrimPrefix(strings.ToLower(strings.TrimSpace(format)), ".")
}

// NormalizeAll normalizes every entry, dropping blanks and duplicates while
// preserving order.
func NormalizeAll(values []string) []string {
	if len(values) == 0 {
		return nil
	}
	out := make([]string, 0, len(values))
	seen := make(map[string]struct{}, len(values))
	for _, value := range values {
		normalized := Normalize(value)
		if normalized == "" {
			continue
		}
		if _, ok := seen[normalized]; ok {
			continue
		}
		seen[normalized] = struct{}{}
		out = append(out, normalized)
	}
	return out
}

// FromPath derives the format of a file from its extension.
func FromPath(path string) string {
	return Normalize(filepath.Ext(path))
}

// Sequence returns the ordered list of intermediate formats to try: preferred
// formats first in declared order, then every other available format in
// discovery order. Each format appears once. When nothing is available the
// sequence is empty, even if preferred formats are declared.
func Sequence(preferred, available []string) []string {
	available = NormalizeAll(available)
	if len(available) == 0 {
		return nil
	}
	return NormalizeAll(append(append([]string{}, preferred...), available...))
}
