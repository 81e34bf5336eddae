// Package graph is the canonical store of a workflow: its nodes, its
// dependency edges and their attributes.
//
// # Why Graph Package Exists
//
// The graph package isolates **structure** from **behavior**. It knows how to
// add and remove nodes and edges, how to answer structural questions
// (successors, predecessors, reachability) and how to take snapshots for
// persistence. It does not know what a status transition means; the
// propagation rules live in the engine package, which is the only writer.
//
// # Ownership
//
// A Graph is a plain value owned by exactly one caller. It is not safe for
// concurrent use; sessions serialize access behind their own mutex. Each
// workflow gets its own Graph, so independent workflows never share state.
//
// # Ordering
//
// Nodes keep insertion order and edges keep connection order. Every query
// that returns a sequence is deterministic for a given history of mutations.
//
// # Snapshots
//
// Snapshot returns a deep copy in the persisted layout. FromSnapshot rebuilds
// a Graph from one, dropping edges that reference unknown nodes and clearing
// the transient editing flag.
package graph
