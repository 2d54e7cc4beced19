package testsupport

import (
	"encoding/binary"
	"math"
	"os"
	"path/filepath"
	"testing"
)

// WriteSTL writes a binary STL holding the given number of triangles. Each
// triangle is the unit right triangle in the XY plane, so a file with n
// triangles yields 3n vertices.
func WriteSTL(t testing.TB, path string, triangles int) {
	t.Helper()

	if err := WriteSTLFile(path, triangles); err != nil {
		t.Fatalf("write stl %s: %v", path, err)
	}
}

// WriteSTLFile is WriteSTL for callers without a testing.TB, such as fake
// exporters running inside the code under test.
func WriteSTLFile(path string, triangles int) error {
	if triangles < 1 {
		triangles = 1
	}
	if err := os.MkdirAll(filepath.Dir(path), 0o755); err != nil {
		return err
	}
	const facetSize = 50
	buf := make([]byte, 84+facetSize*triangles)
	binary.LittleEndian.PutUint32(buf[80:], uint32(triangles))
	facet := []float32{0, 0, 1, 0, 0, 0, 1, 0, 0, 0, 1, 0}
	for i := 0; i < triangles; i++ {
		offset := 84 + i*facetSize
		for j, v := range facet {
			binary.LittleEndian.PutUint32(buf[offset+j*4:], math.Float32bits(v))
		}
	}
	return os.WriteFile(path, buf, 0o644)
}

// WriteScript writes an executable shell script with the given body.
func WriteScript(t testing.TB, path, body string) string {
	t.Helper()

	if err := os.MkdirAll(filepath.Dir(path), 0o755); err != nil {
		t.Fatalf("mkdir for %s: %v", path, err)
	}
	if err := os.WriteFile(path, []byte("#!/bin/sh\n"+body+"\n"), 0o755); err != nil {
		t.Fatalf("write script %s: %v", path, err)
	}
	return path
}

// WriteFile fills the target path with content, creating parent directories.
func WriteFile(t testing.TB, path, content string) string {
	t.Helper()

	if err := os.MkdirAll(filepath.Dir(path), 0o755); err != nil {
		t.Fatalf("mkdir for %s: %v", path, err)
	}
	if err := os.WriteFile(path, []byte(content), 0o644); err != nil {
		t.Fatalf("write %s: %v", path, err)
	}
	return path
}
