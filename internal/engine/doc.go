// Package engine implements the dependency-propagation rules of a workflow.
//
// # Responsibilities
//
// The engine is the only component that changes node statuses. It exposes
// the structural commands (AddNode, RemoveNode, Connect, Disconnect,
// UpdateLabel, BeginEdit, Reset) and the completion command ToggleComplete,
// which drives two propagation passes:
//
//   - **Relaxation:** for every edge, the target becomes Active once all of
//     its predecessors are Completed. The scan repeats until a full pass
//     changes nothing, bounded by the node count plus one.
//   - **Cascade:** revoking a completion locks every node reachable
//     downstream of the revoked step, walked with an explicit worklist.
//
// RemoveNode does not repair statuses incrementally. It restarts the
// workflow from its new roots: nodes without incoming edges become Active,
// every other node becomes Locked.
//
// # Explicit Graph Ownership
//
// Every operation receives the *graph.Graph it works on. The engine holds no
// workflow state of its own, so one Engine can serve any number of
// independent graphs. Callers that share a graph between goroutines must
// serialize calls themselves; see the localsession package.
//
// # Failure Model
//
// Operations on unknown ids and ToggleComplete on a Locked node are silent
// no-ops reported through a boolean. The only error the engine returns from
// a command is ErrCycle, when Connect would make a step its own
// prerequisite.
package engine
