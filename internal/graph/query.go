package graph

// Successors returns the targets of every edge leaving id, in edge order.
// Parallel edges yield repeated entries. Unknown ids yield an empty slice.
func (g *Graph) Successors(id string) []string {
	out := []string{}
	for _, e := range g.edges {
		if e.Source == id {
			out = append(out, e.Target)
		}
	}
	return out
}

// Predecessors returns the sources of every edge entering id, in edge order.
// Parallel edges yield repeated entries. Unknown ids yield an empty slice.
func (g *Graph) Predecessors(id string) []string {
	out := []string{}
	for _, e := range g.edges {
		if e.Target == id {
			out = append(out, e.Source)
		}
	}
	return out
}

// HasIncomingEdge reports whether any edge targets id.
func (g *Graph) HasIncomingEdge(id string) bool {
	for _, e := range g.edges {
		if e.Target == id {
			return true
		}
	}
	return false
}

// Roots returns, in insertion order, every node without an incoming edge.
func (g *Graph) Roots() []string {
	incoming := make(map[string]bool, len(g.edges))
	for _, e := range g.edges {
		incoming[e.Target] = true
	}
	out := []string{}
	for _, id := range g.order {
		if !incoming[id] {
			out = append(out, id)
		}
	}
	return out
}

// Descendants returns every node reachable from id by following edges
// forward, in breadth-first order. id itself is excluded even when a cycle
// leads back to it.
func (g *Graph) Descendants(id string) []string {
	visited := map[string]bool{id: true}
	queue := []string{id}
	out := []string{}
	for len(queue) > 0 {
		current := queue[0]
		queue = queue[1:]
		for _, next := range g.Successors(current) {
			if visited[next] {
				continue
			}
			visited[next] = true
			out = append(out, next)
			queue = append(queue, next)
		}
	}
	return out
}

// Reachable reports whether to can be reached from from by following edges
// forward. A node always reaches itself.
func (g *Graph) Reachable(from, to string) bool {
	if from == to {
		return true
	}
	for _, id := range g.Descendants(from) {
		if id == to {
			return true
		}
	}
	return false
}
