package inmemorystore

import (
	"context"
	"sync"
	"sync/atomic"

	"github.com/vk/stepflow/internal/graph"
	"github.com/vk/stepflow/internal/workflowstore"
)

// Store is an in-memory implementation of workflowstore.Store using
// sync.Map for concurrent access without global lock contention.
//
// Records are kept in their encoded form, so a caller mutating a snapshot
// after Save can never reach the stored copy, and every Load goes through
// the same codec as the durable backends.
type Store struct {
	records sync.Map // Key: workflow id, Value: []byte (encoded record)
	saves   atomic.Int64
}

// New creates a new, empty in-memory workflow store.
func New() *Store {
	return &Store{}
}

// Load returns the stored snapshot for workflowID, or nil if none exists.
func (s *Store) Load(ctx context.Context, workflowID string) (*graph.Snapshot, error) {
	raw, ok := s.records.Load(workflowID)
	if !ok {
		return nil, nil // If not found, there is no record.
	}
	return workflowstore.Decode(raw.([]byte))
}

// Save replaces the record for workflowID.
func (s *Store) Save(ctx context.Context, workflowID string, snap graph.Snapshot) error {
	data, err := workflowstore.Encode(snap)
	if err != nil {
		return err
	}
	s.records.Store(workflowID, data)
	s.saves.Add(1)
	return nil
}

// Delete removes the record for workflowID.
func (s *Store) Delete(ctx context.Context, workflowID string) error {
	s.records.Delete(workflowID)
	return nil
}

// Close is a no-op.
func (s *Store) Close() error {
	return nil
}

// Raw returns the encoded record for workflowID. It is meant for tests.
func (s *Store) Raw(workflowID string) ([]byte, bool) {
	raw, ok := s.records.Load(workflowID)
	if !ok {
		return nil, false
	}
	return raw.([]byte), true
}

// Put stores an already encoded record, bypassing the codec. It is meant for
// tests that need malformed or hand-written records.
func (s *Store) Put(workflowID string, data []byte) {
	s.records.Store(workflowID, data)
}

// SaveCount returns how many times Save succeeded.
func (s *Store) SaveCount() int64 {
	return s.saves.Load()
}
