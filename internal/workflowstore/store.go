// Package workflowstore defines the persistence contract for workflow
// graphs, together with the JSON codec every backend shares.
//
// # Why Workflow Store Exists
//
// The engine only requires round-trip fidelity of nodes, edges and statuses.
// Durability, format and location are backend concerns. This package pins
// down the contract so that sessions can be tested against the in-memory
// backend and run against a file, Redis or PostgreSQL backend unchanged.
//
// # Record Layout
//
// A workflow is persisted as a single record keyed by its workflow id:
//
//	{
//	  "nodes": [ { "id": "1", "label": "Plan", "status": "active" } ],
//	  "edges": [ { "id": "e1-2", "source": "1", "target": "2" } ]
//	}
//
// # Lifecycle
//
//  1. **Load** once when a session opens. No record means an empty graph.
//  2. **Save** after every mutating operation, with an immutable snapshot.
//  3. **Delete** on reset, so a later load behaves like a fresh workflow.
package workflowstore

import (
	"context"
	"errors"

	"github.com/vk/stepflow/internal/graph"
)

// ErrUnknownDriver is returned when a configuration names a storage driver
// that has no backend.
var ErrUnknownDriver = errors.New("unknown storage driver")

// Store is the interface for persisting workflow graphs.
//
// Implementations receive snapshots they must not retain by reference if
// they intend to mutate them; the session never mutates a snapshot after
// handing it over.
type Store interface {
	// Load returns the persisted snapshot for workflowID. It returns nil and
	// no error when no record exists.
	Load(ctx context.Context, workflowID string) (*graph.Snapshot, error)

	// Save replaces the record for workflowID with snap.
	Save(ctx context.Context, workflowID string, snap graph.Snapshot) error

	// Delete removes the record for workflowID. Deleting a missing record is
	// not an error.
	Delete(ctx context.Context, workflowID string) error

	// Close releases connections or handles held by the backend.
	Close() error
}
