// Package inmemorystore provides an ephemeral, thread-safe, in-memory
// implementation of the workflowstore.Store interface.
package inmemorystore
