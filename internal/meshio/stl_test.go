package meshio

import (
	"bytes"
	"context"
	"encoding/binary"
	"math"
	"os"
	"path/filepath"
	"testing"
)

func writeBinarySTL(t *testing.T, path string, triangles [][3][3]float32) {
	t.Helper()
	var buf bytes.Buffer
	buf.Write(make([]byte, 80))
	_ = binary.Write(&buf, binary.LittleEndian, uint32(len(triangles)))
	for _, tri := range triangles {
		for i := 0; i < 3; i++ {
			_ = binary.Write(&buf, binary.LittleEndian, float32(0))
		}
		for _, v := range tri {
			for _, c := range v {
				_ = binary.Write(&buf, binary.LittleEndian, math.Float32bits(c))
			}
		}
		_ = binary.Write(&buf, binary.LittleEndian, uint16(0))
	}
	if err := os.WriteFile(path, buf.Bytes(), 0o644); err != nil {
		t.Fatalf("write stl: %v", err)
	}
}

func TestSTLReaderReadsBinary(t *testing.T) {
	path := filepath.Join(t.TempDir(), "bracket.STL")
	writeBinarySTL(t, path, [][3][3]float32{
		{{0, 0, 0}, {1, 0, 0}, {0, 1, 0}},
		{{1, 0, 0}, {1, 1, 0}, {0, 1, 0}},
	})

	res, err := STLReader{}.Read(context.Background(), path)
	if err != nil {
		t.Fatalf("Read: %v", err)
	}
	if res.IsList() || res.Node == nil {
		t.Fatalf("expected single node, got %+v", res)
	}
	if res.Node.Mesh.VertexCount() != 6 {
		t.Fatalf("expected 6 vertices, got %d", res.Node.Mesh.VertexCount())
	}
	if res.Node.SourceFile() != path {
		t.Fatalf("expected mesh file name %q, got %q", path, res.Node.SourceFile())
	}
	if res.Node.Mesh.Positions[4] != [3]float32{1, 1, 0} {
		t.Fatalf("unexpected vertex %v", res.Node.Mesh.Positions[4])
	}
}

func TestSTLReaderRejectsGarbage(t *testing.T) {
	path := filepath.Join(t.TempDir(), "broken.stl")
	if err := os.WriteFile(path, []byte("nope"), 0o644); err != nil {
		t.Fatalf("write: %v", err)
	}
	if _, err := (STLReader{}).Read(context.Background(), path); err == nil {
		t.Fatal("expected error for truncated file")
	}
}

func TestSTLReaderHonoursCancelledContext(t *testing.T) {
	ctx, cancel := context.WithCancel(context.Background())
	cancel()
	if _, err := (STLReader{}).Read(ctx, "/does/not/matter.stl"); err == nil {
		t.Fatal("expected context error")
	}
}
