package conversion

import (
	"context"
	"log/slog"

	"modelbridge/internal/logging"
	"modelbridge/internal/meshio"
	"modelbridge/internal/scene"
)

// PostProcessor transforms the assembled node set before it is handed back.
type PostProcessor interface {
	PostProcess(ctx context.Context, nodes []*scene.Node) []*scene.Node
}

// PostProcessFunc adapts a function to PostProcessor.
type PostProcessFunc func(ctx context.Context, nodes []*scene.Node) []*scene.Node

func (f PostProcessFunc) PostProcess(ctx context.Context, nodes []*scene.Node) []*scene.Node {
	return f(ctx, nodes)
}

// Identity returns nodes unchanged.
var Identity PostProcessFunc = func(_ context.Context, nodes []*scene.Node) []*scene.Node {
	return nodes
}

// Assembler shapes a reader result for the host.
type Assembler struct {
	PostProcess PostProcessor
	Logger      *slog.Logger
}

// Assemble attributes a single node to sourcePath, the file the user opened,
// and runs post-processing. A single node is post-processed as a one-element
// list but returned as the original node; lists are returned as processed.
func (a Assembler) Assemble(ctx context.Context, out meshio.Result, sourcePath string) meshio.Result {
	post := a.PostProcess
	if post == nil {
		post = Identity
	}
	switch {
	case out.Node != nil:
		node := out.Node
		if a.Logger != nil {
			a.Logger.Debug("rewriting node origin",
				logging.String("from", node.SourceFile()),
				logging.String("to", sourcePath),
			)
		}
		node.Mesh = node.Mesh.WithFileName(sourcePath)
		post.PostProcess(ctx, []*scene.Node{node})
		return meshio.Result{Node: node}
	case len(out.Nodes) > 0:
		return meshio.Result{Nodes: post.PostProcess(ctx, out.Nodes)}
	default:
		return out
	}
}
