package graph

import (
	"slices"

	"github.com/vk/stepflow/internal/node"
	"github.com/vk/stepflow/internal/nodeid"
)

// Graph holds the nodes and edges of one workflow.
type Graph struct {
	// nodes stores all nodes, keyed by id.
	nodes map[string]*node.Node
	// order records node ids in insertion order.
	order []string
	// edges holds all edges in connection order.
	edges []node.Edge
	// ids allocates node ids.
	ids nodeid.Sequence
}

// New creates and returns an initialized, empty Graph.
func New() *Graph {
	return &Graph{
		nodes: make(map[string]*node.Node),
	}
}

// Len returns the number of nodes.
func (g *Graph) Len() int {
	return len(g.order)
}

// EdgeCount returns the number of edges.
func (g *Graph) EdgeCount() int {
	return len(g.edges)
}

// NextID allocates a fresh node id. Ids are never handed out twice by the
// same graph, even after the node holding them is removed.
func (g *Graph) NextID() string {
	for {
		id := g.ids.Next()
		if _, exists := g.nodes[id]; !exists {
			return id
		}
	}
}

// AddNode inserts n. It reports false and changes nothing if a node with the
// same id already exists.
func (g *Graph) AddNode(n node.Node) bool {
	if _, exists := g.nodes[n.ID]; exists {
		return false
	}
	g.ids.Observe(n.ID)
	stored := n
	g.nodes[n.ID] = &stored
	g.order = append(g.order, n.ID)
	return true
}

// Node returns a copy of the node with the given id.
func (g *Graph) Node(id string) (node.Node, bool) {
	n, ok := g.nodes[id]
	if !ok {
		return node.Node{}, false
	}
	return *n, true
}

// Has reports whether a node with the given id exists.
func (g *Graph) Has(id string) bool {
	_, ok := g.nodes[id]
	return ok
}

// Status returns the status of a node. Unknown ids report Locked and false.
func (g *Graph) Status(id string) (node.Status, bool) {
	n, ok := g.nodes[id]
	if !ok {
		return node.Locked, false
	}
	return n.Status, true
}

// Nodes returns copies of all nodes in insertion order.
func (g *Graph) Nodes() []node.Node {
	out := make([]node.Node, 0, len(g.order))
	for _, id := range g.order {
		out = append(out, *g.nodes[id])
	}
	return out
}

// NodeIDs returns all node ids in insertion order.
func (g *Graph) NodeIDs() []string {
	return slices.Clone(g.order)
}

// Edges returns a copy of all edges in connection order.
func (g *Graph) Edges() []node.Edge {
	return append([]node.Edge{}, g.edges...)
}

// Edge returns the edge with the given id.
func (g *Graph) Edge(id string) (node.Edge, bool) {
	for _, e := range g.edges {
		if e.ID == id {
			return e, true
		}
	}
	return node.Edge{}, false
}

// SetStatus updates a node's status and returns the previous one. It
// reports false for unknown ids.
func (g *Graph) SetStatus(id string, status node.Status) (node.Status, bool) {
	n, ok := g.nodes[id]
	if !ok {
		return node.Locked, false
	}
	prev := n.Status
	n.Status = status
	return prev, true
}

// SetLabel updates a node's label. It reports false for unknown ids.
func (g *Graph) SetLabel(id, label string) bool {
	n, ok := g.nodes[id]
	if !ok {
		return false
	}
	n.Label = label
	return true
}

// SetEditing updates a node's transient editing flag. It reports false for
// unknown ids.
func (g *Graph) SetEditing(id string, editing bool) bool {
	n, ok := g.nodes[id]
	if !ok {
		return false
	}
	n.Editing = editing
	return true
}

// RemoveNode deletes a node and every edge touching it. It returns the
// number of edges removed alongside the node, and false if the id is unknown.
func (g *Graph) RemoveNode(id string) (int, bool) {
	if _, ok := g.nodes[id]; !ok {
		return 0, false
	}
	delete(g.nodes, id)
	g.order = slices.DeleteFunc(g.order, func(other string) bool { return other == id })

	before := len(g.edges)
	g.edges = slices.DeleteFunc(g.edges, func(e node.Edge) bool { return e.Touches(id) })
	return before - len(g.edges), true
}

// AddEdge appends an edge. Both endpoints must exist and the edge id must be
// unused; otherwise it reports false and changes nothing.
func (g *Graph) AddEdge(e node.Edge) bool {
	if !g.Has(e.Source) || !g.Has(e.Target) {
		return false
	}
	if _, exists := g.Edge(e.ID); exists {
		return false
	}
	g.edges = append(g.edges, e)
	return true
}

// HasEdgeID reports whether an edge with the given id exists.
func (g *Graph) HasEdgeID(id string) bool {
	_, ok := g.Edge(id)
	return ok
}

// RemoveEdge deletes the edge with the given id. It reports false if no such
// edge exists.
func (g *Graph) RemoveEdge(id string) bool {
	before := len(g.edges)
	g.edges = slices.DeleteFunc(g.edges, func(e node.Edge) bool { return e.ID == id })
	return len(g.edges) != before
}

// Clear removes every node and edge and restarts the id sequence.
func (g *Graph) Clear() {
	g.nodes = make(map[string]*node.Node)
	g.order = nil
	g.edges = nil
	g.ids.Reset()
}

// Clone returns a deep copy of the graph, including its id sequence.
func (g *Graph) Clone() *Graph {
	out := &Graph{
		nodes: make(map[string]*node.Node, len(g.nodes)),
		order: slices.Clone(g.order),
		edges: slices.Clone(g.edges),
		ids:   g.ids,
	}
	for id, n := range g.nodes {
		copied := *n
		out.nodes[id] = &copied
	}
	return out
}
