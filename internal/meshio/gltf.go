package meshio

import (
	"context"
	"fmt"
	"path/filepath"

	"github.com/qmuntal/gltf"
	"github.com/qmuntal/gltf/modeler"

	"modelbridge/internal/scene"
)

// GLTFReader reads glTF and GLB documents. Every root node of the default
// scene becomes one entry of a node list, keeping the document's own naming.
// Meshes carry no file name: the document is usually a scratch file that is
// gone once the read returns.
type GLTFReader struct{}

func (GLTFReader) ID() string { return "gltf" }

func (GLTFReader) Read(ctx context.Context, path string) (Result, error) {
	if err := ctx.Err(); err != nil {
		return Result{}, err
	}
	doc, err := gltf.Open(path)
	if err != nil {
		return Result{}, fmt.Errorf("read gltf %s: %w", filepath.Base(path), err)
	}
	if len(doc.Scenes) == 0 {
		return Result{}, fmt.Errorf("read gltf %s: document has no scenes", filepath.Base(path))
	}
	sceneIdx := 0
	if doc.Scene != nil {
		sceneIdx = int(*doc.Scene)
	}
	if sceneIdx < 0 || sceneIdx >= len(doc.Scenes) {
		return Result{}, fmt.Errorf("read gltf %s: default scene %d out of range", filepath.Base(path), sceneIdx)
	}

	b := gltfBuilder{doc: doc, visited: make(map[int]bool)}
	var nodes []*scene.Node
	for _, idx := range doc.Scenes[sceneIdx].Nodes {
		node, err := b.node(int(idx))
		if err != nil {
			return Result{}, fmt.Errorf("read gltf %s: %w", filepath.Base(path), err)
		}
		nodes = append(nodes, node)
	}
	if len(nodes) == 0 {
		return Result{}, fmt.Errorf("read gltf %s: default scene is empty", filepath.Base(path))
	}
	return Result{Nodes: nodes}, nil
}

type gltfBuilder struct {
	doc     *gltf.Document
	visited map[int]bool
}

func (b *gltfBuilder) node(idx int) (*scene.Node, error) {
	if idx < 0 || idx >= len(b.doc.Nodes) {
		return nil, fmt.Errorf("node %d out of range", idx)
	}
	if b.visited[idx] {
		return nil, fmt.Errorf("node %d referenced twice", idx)
	}
	b.visited[idx] = true

	src := b.doc.Nodes[idx]
	out := &scene.Node{Name: src.Name}
	if src.Mesh != nil {
		mesh, name, err := b.mesh(int(*src.Mesh))
		if err != nil {
			return nil, err
		}
		out.Mesh = mesh
		if out.Name == "" {
			out.Name = name
		}
	}
	if out.Name == "" {
		out.Name = fmt.Sprintf("node_%d", idx)
	}
	for _, child := range src.Children {
		node, err := b.node(int(child))
		if err != nil {
			return nil, err
		}
		out.Children = append(out.Children, node)
	}
	return out, nil
}

func (b *gltfBuilder) mesh(idx int) (*scene.MeshData, string, error) {
	if idx < 0 || idx >= len(b.doc.Meshes) {
		return nil, "", fmt.Errorf("mesh %d out of range", idx)
	}
	src := b.doc.Meshes[idx]
	data := &scene.MeshData{}
	for _, prim := range src.Primitives {
		accIdx, ok := prim.Attributes["POSITION"]
		if !ok {
			continue
		}
		if int(accIdx) >= len(b.doc.Accessors) {
			return nil, "", fmt.Errorf("mesh %d: position accessor %d out of range", idx, accIdx)
		}
		positions, err := modeler.ReadPosition(b.doc, b.doc.Accessors[accIdx], nil)
		if err != nil {
			return nil, "", fmt.Errorf("mesh %d positions: %w", idx, err)
		}
		data.Positions = append(data.Positions, positions...)
	}
	return data, src.Name, nil
}
