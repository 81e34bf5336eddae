// Package session defines the core interfaces for opening and driving a
// workflow session. A session owns exactly one workflow graph and is the
// single entry point the presentation layer talks to.
package session

import (
	"context"

	"github.com/vk/stepflow/internal/config"
	"github.com/vk/stepflow/internal/engine"
	"github.com/vk/stepflow/internal/graph"
)

// Outcome describes what a session command did.
type Outcome struct {
	// Applied is false when the command was a no-op: unknown ids or a
	// toggle on a locked node.
	Applied bool
	// ID is the id created by AddNode or Connect.
	ID string
	// Result lists the status transitions caused by the command.
	Result engine.Result
}

// SessionFactory creates workflow sessions. Different implementations can
// back sessions with different stores.
type SessionFactory interface {
	NewSession(ctx context.Context, workflowID string) (Session, error)
}

// Session is a single workflow being worked on.
//
// Every mutating command persists the updated graph once the initial Load
// has succeeded. Commands issued before that, or after a failed Load, only
// change the in-memory graph.
type Session interface {
	WorkflowID() string

	// Load restores the persisted graph. No record yields an empty graph.
	// On failure the session keeps an empty graph and stays unsaved.
	Load(ctx context.Context) error

	AddNode(ctx context.Context, label string) (Outcome, error)
	RemoveNode(ctx context.Context, id string) (Outcome, error)
	Connect(ctx context.Context, source, target string) (Outcome, error)
	Disconnect(ctx context.Context, edgeID string) (Outcome, error)
	UpdateLabel(ctx context.Context, id, text string) (Outcome, error)
	BeginEdit(ctx context.Context, id string) (Outcome, error)
	ToggleComplete(ctx context.Context, id string) (Outcome, error)

	// Reset clears the graph and deletes the persisted record.
	Reset(ctx context.Context) error

	// Import replaces the graph with one built from a definition.
	Import(ctx context.Context, def *config.Definition) (Outcome, error)

	// Snapshot returns an immutable copy of the current graph.
	Snapshot() graph.Snapshot

	// Close releases resources held by the session.
	Close(ctx context.Context) error
}
