package engine

import (
	"context"
	"fmt"
	"strings"

	"github.com/vk/stepflow/internal/config"
	"github.com/vk/stepflow/internal/ctxlog"
	"github.com/vk/stepflow/internal/graph"
	"github.com/vk/stepflow/internal/node"
)

// Build constructs a fresh graph from a workflow definition. Nodes are
// created in definition order, edges come from each step's DependsOn list,
// and statuses are initialized from the resulting roots.
func (e *Engine) Build(ctx context.Context, def *config.Definition) (*graph.Graph, error) {
	logger := ctxlog.FromContext(ctx)
	logger.Debug("Build: Starting graph construction.", "steps", len(def.Steps))

	g := graph.New()
	ids := make(map[string]string, len(def.Steps))

	// First pass: one node per step.
	for _, s := range def.Steps {
		if strings.TrimSpace(s.Name) == "" {
			return nil, fmt.Errorf("step declared in %s has an empty name", sourceOf(s))
		}
		if _, exists := ids[s.Name]; exists {
			return nil, fmt.Errorf("duplicate step %q declared in %s", s.Name, sourceOf(s))
		}
		id := g.NextID()
		label := s.Label
		if strings.TrimSpace(label) == "" {
			label = id
		}
		g.AddNode(node.Node{ID: id, Label: label, Status: node.Locked})
		ids[s.Name] = id
	}
	logger.Debug("Build: Node creation complete.", "node_count", g.Len())

	// Second pass: link dependencies.
	for _, s := range def.Steps {
		for _, dep := range s.DependsOn {
			source, ok := ids[dep]
			if !ok {
				return nil, fmt.Errorf("step %q depends on unknown step %q", s.Name, dep)
			}
			if _, err := e.Connect(ctx, g, source, ids[s.Name]); err != nil {
				return nil, fmt.Errorf("step %q: %w", s.Name, err)
			}
		}
	}
	logger.Debug("Build: Node linking complete.", "edge_count", g.EdgeCount())

	e.RecomputeRoots(ctx, g)
	logger.Debug("Build: Graph construction successful.")
	return g, nil
}

func sourceOf(s *config.StepDefinition) string {
	if s.Source == "" {
		return "<definition>"
	}
	return s.Source
}
