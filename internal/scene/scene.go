// Package scene holds the minimal scene graph handed back to the host.
package scene

// MeshData is the geometry attached to a node. FileName records where the
// geometry was loaded from; hosts use it to reload or label the mesh.
type MeshData struct {
	FileName  string
	Positions [][3]float32
}

// WithFileName returns a copy of m recording a different source file. Mesh
// data is shared between readers and nodes, so it is never mutated in place.
func (m *MeshData) WithFileName(name string) *MeshData {
	if m == nil {
		return &MeshData{FileName: name}
	}
	clone := *m
	clone.FileName = name
	return &clone
}

// VertexCount returns the number of positions in the mesh.
func (m *MeshData) VertexCount() int {
	if m == nil {
		return 0
	}
	return len(m.Positions)
}

// Node is one entry of the scene graph.
type Node struct {
	Name     string
	Mesh     *MeshData
	Children []*Node
}

// SourceFile returns the file name recorded on the node's mesh.
func (n *Node) SourceFile() string {
	if n == nil || n.Mesh == nil {
		return ""
	}
	return n.Mesh.FileName
}
