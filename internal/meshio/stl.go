package meshio

import (
	"context"
	"fmt"
	"path/filepath"
	"strings"

	"github.com/hschendel/stl"

	"modelbridge/internal/scene"
)

// STLReader reads binary and ASCII STL files into a single node.
type STLReader struct{}

func (STLReader) ID() string { return "stl" }

func (STLReader) Read(ctx context.Context, path string) (Result, error) {
	if err := ctx.Err(); err != nil {
		return Result{}, err
	}
	solid, err := stl.ReadFile(path)
	if err != nil {
		return Result{}, fmt.Errorf("read stl %s: %w", filepath.Base(path), err)
	}
	positions := make([][3]float32, 0, len(solid.Triangles)*3)
	for _, triangle := range solid.Triangles {
		for _, vertex := range triangle.Vertices {
			positions = append(positions, [3]float32(vertex))
		}
	}
	name := strings.TrimSpace(solid.Name)
	if name == "" {
		name = strings.TrimSuffix(filepath.Base(path), filepath.Ext(path))
	}
	return Result{Node: &scene.Node{
		Name: name,
		Mesh: &scene.MeshData{FileName: path, Positions: positions},
	}}, nil
}
