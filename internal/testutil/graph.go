package testutil

import (
	"testing"

	"github.com/stretchr/testify/require"

	"github.com/vk/stepflow/internal/graph"
	"github.com/vk/stepflow/internal/node"
)

// BuildGraph creates a graph directly through the store, bypassing engine
// rules. Every node starts Locked; edge ids are "e<source>-<target>".
func BuildGraph(t *testing.T, ids []string, edges ...[2]string) *graph.Graph {
	t.Helper()
	g := graph.New()
	for _, id := range ids {
		require.True(t, g.AddNode(node.Node{ID: id, Label: id, Status: node.Locked}), "duplicate node %s", id)
	}
	for _, e := range edges {
		edge := node.Edge{ID: "e" + e[0] + "-" + e[1], Source: e[0], Target: e[1]}
		require.True(t, g.AddEdge(edge), "invalid edge %s", edge.ID)
	}
	return g
}

// Statuses returns every node's status keyed by id.
func Statuses(g *graph.Graph) map[string]node.Status {
	out := make(map[string]node.Status, g.Len())
	for _, n := range g.Nodes() {
		out[n.ID] = n.Status
	}
	return out
}

// RequireStatuses fails the test unless every listed node has the wanted
// status. Nodes not listed are not checked.
func RequireStatuses(t *testing.T, g *graph.Graph, want map[string]node.Status) {
	t.Helper()
	got := Statuses(g)
	for id, status := range want {
		actual, ok := got[id]
		require.True(t, ok, "node %s missing", id)
		require.Equal(t, status, actual, "status of node %s", id)
	}
}
