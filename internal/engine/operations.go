package engine

import (
	"context"
	"fmt"
	"strings"

	"github.com/vk/stepflow/internal/ctxlog"
	"github.com/vk/stepflow/internal/graph"
	"github.com/vk/stepflow/internal/node"
	"github.com/vk/stepflow/internal/nodeid"
)

// AddNode creates a node and returns its id. The first node of an empty graph
// starts Active, every later node starts Locked. A blank label defaults to
// the node id.
func (e *Engine) AddNode(ctx context.Context, g *graph.Graph, label string) string {
	logger := ctxlog.FromContext(ctx)

	id := g.NextID()
	status := node.Locked
	if g.Len() == 0 {
		status = node.Active
	}
	if strings.TrimSpace(label) == "" {
		label = id
	}
	g.AddNode(node.Node{ID: id, Label: label, Status: status})

	logger.Debug("Node added.", "node_id", id, "label", label, "status", status.String())
	return id
}

// RemoveNode deletes a node and its edges, then restarts the workflow from
// its roots. It reports false and changes nothing for unknown ids.
func (e *Engine) RemoveNode(ctx context.Context, g *graph.Graph, id string) (Result, bool) {
	logger := ctxlog.FromContext(ctx)

	removedEdges, ok := g.RemoveNode(id)
	if !ok {
		logger.Debug("RemoveNode ignored, unknown node.", "node_id", id)
		return Result{Converged: true}, false
	}
	logger.Debug("Node removed.", "node_id", id, "edges_removed", removedEdges)

	return e.RecomputeRoots(ctx, g), true
}

// Connect adds an edge making target depend on source and returns its id.
// No status is re-evaluated; the edge takes effect on the next completion
// change. Unknown endpoints are a no-op returning an empty id. Self loops and
// edges closing a cycle are rejected with ErrCycle.
func (e *Engine) Connect(ctx context.Context, g *graph.Graph, source, target string) (string, error) {
	logger := ctxlog.FromContext(ctx)

	if !g.Has(source) || !g.Has(target) {
		logger.Debug("Connect ignored, unknown endpoint.", "source", source, "target", target)
		return "", nil
	}
	if g.Reachable(target, source) {
		return "", fmt.Errorf("connect %s -> %s: %w", source, target, ErrCycle)
	}

	id := nodeid.EdgeID(source, target, g.HasEdgeID)
	g.AddEdge(node.Edge{ID: id, Source: source, Target: target})

	logger.Debug("Edge added.", "edge_id", id, "source", source, "target", target)
	return id, nil
}

// Disconnect removes a single edge. Like Connect it does not re-evaluate
// statuses. It reports false for unknown edge ids.
func (e *Engine) Disconnect(ctx context.Context, g *graph.Graph, edgeID string) bool {
	logger := ctxlog.FromContext(ctx)

	if !g.RemoveEdge(edgeID) {
		logger.Debug("Disconnect ignored, unknown edge.", "edge_id", edgeID)
		return false
	}
	logger.Debug("Edge removed.", "edge_id", edgeID)
	return true
}

// UpdateLabel stores the final text of a label edit and ends the edit. Blank
// text is replaced by the placeholder label.
func (e *Engine) UpdateLabel(ctx context.Context, g *graph.Graph, id, text string) bool {
	logger := ctxlog.FromContext(ctx)

	if strings.TrimSpace(text) == "" {
		text = e.placeholder
	}
	if !g.SetLabel(id, text) {
		logger.Debug("UpdateLabel ignored, unknown node.", "node_id", id)
		return false
	}
	g.SetEditing(id, false)

	logger.Debug("Label updated.", "node_id", id, "label", text)
	return true
}

// BeginEdit marks a node's label as being edited.
func (e *Engine) BeginEdit(ctx context.Context, g *graph.Graph, id string) bool {
	if !g.SetEditing(id, true) {
		ctxlog.FromContext(ctx).Debug("BeginEdit ignored, unknown node.", "node_id", id)
		return false
	}
	return true
}

// Reset removes every node and edge and restarts id allocation.
func (e *Engine) Reset(ctx context.Context, g *graph.Graph) {
	ctxlog.FromContext(ctx).Debug("Graph reset.", "nodes", g.Len(), "edges", g.EdgeCount())
	g.Clear()
}
