package engine

import (
	"context"

	"github.com/vk/stepflow/internal/ctxlog"
	"github.com/vk/stepflow/internal/graph"
	"github.com/vk/stepflow/internal/node"
)

// ToggleComplete flips a node between Active and Completed and propagates
// the change. It reports false and changes nothing when the node is unknown
// or Locked.
func (e *Engine) ToggleComplete(ctx context.Context, g *graph.Graph, id string) (Result, bool) {
	logger := ctxlog.FromContext(ctx)
	res := Result{Converged: true}

	current, ok := g.Status(id)
	if !ok {
		logger.Debug("ToggleComplete ignored, unknown node.", "node_id", id)
		return res, false
	}
	if current == node.Locked {
		logger.Debug("ToggleComplete ignored, node is locked.", "node_id", id)
		return res, false
	}

	next := node.Completed
	if current == node.Completed {
		next = node.Active
	}
	g.SetStatus(id, next)
	res.record(id, current, next)
	logger.Debug("Completion toggled.", "node_id", id, "from", current.String(), "to", next.String())

	res.merge(e.Relax(ctx, g))

	if next == node.Active {
		res.merge(e.cascade(ctx, g, id))
		res.merge(e.Relax(ctx, g))
	}
	return res, true
}

// Relax activates every edge target whose predecessors are all Completed,
// scanning all edges until a full pass changes nothing. The scan is capped at
// the node count plus one passes.
func (e *Engine) Relax(ctx context.Context, g *graph.Graph) Result {
	logger := ctxlog.FromContext(ctx)
	res := Result{}

	limit := g.Len() + 1
	for pass := 1; pass <= limit; pass++ {
		res.Passes = pass
		changed := false
		for _, edge := range g.Edges() {
			if !activatable(g, edge.Target) {
				continue
			}
			prev, _ := g.SetStatus(edge.Target, node.Active)
			res.record(edge.Target, prev, node.Active)
			changed = true
		}
		if !changed {
			res.Converged = true
			logger.Debug("Relaxation converged.", "passes", pass, "activated", len(res.Transitions))
			return res
		}
	}

	logger.Warn("Relaxation hit its pass limit without converging.", "limit", limit, "nodes", g.Len())
	return res
}

// activatable reports whether id is Locked and every predecessor is
// Completed. Nodes without predecessors are never activated by relaxation.
func activatable(g *graph.Graph, id string) bool {
	status, ok := g.Status(id)
	if !ok || status != node.Locked {
		return false
	}
	preds := g.Predecessors(id)
	if len(preds) == 0 {
		return false
	}
	for _, p := range preds {
		if s, _ := g.Status(p); s != node.Completed {
			return false
		}
	}
	return true
}

// cascade locks every node downstream of id. The walk is breadth-first over
// an explicit queue, so graph depth never grows the call stack.
func (e *Engine) cascade(ctx context.Context, g *graph.Graph, id string) Result {
	logger := ctxlog.FromContext(ctx)
	res := Result{Converged: true}

	downstream := g.Descendants(id)
	for _, d := range downstream {
		prev, _ := g.SetStatus(d, node.Locked)
		if prev != node.Locked {
			res.record(d, prev, node.Locked)
		}
	}

	logger.Debug("Cascade finished.", "origin", id, "reached", len(downstream), "locked", len(res.Transitions))
	return res
}

// RecomputeRoots restarts the workflow from its roots: nodes without
// incoming edges become Active, all others become Locked.
func (e *Engine) RecomputeRoots(ctx context.Context, g *graph.Graph) Result {
	logger := ctxlog.FromContext(ctx)
	res := Result{Converged: true}

	roots := 0
	for _, id := range g.NodeIDs() {
		want := node.Locked
		if !g.HasIncomingEdge(id) {
			want = node.Active
			roots++
		}
		prev, _ := g.SetStatus(id, want)
		if prev != want {
			res.record(id, prev, want)
		}
	}

	logger.Debug("Roots recomputed.", "roots", roots, "changed", len(res.Transitions))
	return res
}
