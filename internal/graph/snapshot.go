package graph

import (
	"context"

	"github.com/vk/stepflow/internal/ctxlog"
	"github.com/vk/stepflow/internal/node"
)

// Snapshot is an immutable copy of a graph in its persisted layout.
type Snapshot struct {
	Nodes []node.Node `json:"nodes" yaml:"nodes"`
	Edges []node.Edge `json:"edges" yaml:"edges"`
}

// Snapshot returns a deep copy of the graph's nodes and edges.
func (g *Graph) Snapshot() Snapshot {
	return Snapshot{
		Nodes: g.Nodes(),
		Edges: g.Edges(),
	}
}

// Clone returns a deep copy of the snapshot.
func (s Snapshot) Clone() Snapshot {
	return Snapshot{
		Nodes: append([]node.Node{}, s.Nodes...),
		Edges: append([]node.Edge{}, s.Edges...),
	}
}

// FromSnapshot rebuilds a Graph from a snapshot. Statuses are restored
// verbatim; editing flags are forced off. Duplicate node ids and edges with
// a missing endpoint or a duplicate id are dropped with a warning.
func FromSnapshot(ctx context.Context, s Snapshot) *Graph {
	logger := ctxlog.FromContext(ctx)
	g := New()
	for _, n := range s.Nodes {
		n.Editing = false
		if !g.AddNode(n) {
			logger.Warn("Dropping duplicate node from snapshot.", "node_id", n.ID)
		}
	}
	for _, e := range s.Edges {
		if !g.AddEdge(e) {
			logger.Warn("Dropping invalid edge from snapshot.", "edge_id", e.ID, "source", e.Source, "target", e.Target)
		}
	}
	logger.Debug("Graph restored from snapshot.", "nodes", g.Len(), "edges", g.EdgeCount())
	return g
}
