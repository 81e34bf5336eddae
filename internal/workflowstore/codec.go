package workflowstore

import (
	"encoding/json"
	"fmt"

	"github.com/vk/stepflow/internal/graph"
	"github.com/vk/stepflow/internal/node"
)

// Encode serializes a snapshot into the persisted JSON record.
func Encode(snap graph.Snapshot) ([]byte, error) {
	if snap.Nodes == nil {
		snap.Nodes = []node.Node{}
	}
	if snap.Edges == nil {
		snap.Edges = []node.Edge{}
	}
	data, err := json.Marshal(snap)
	if err != nil {
		return nil, fmt.Errorf("encode workflow record: %w", err)
	}
	return data, nil
}

// Decode parses a persisted JSON record. Editing flags are forced off;
// statuses are restored verbatim.
func Decode(data []byte) (*graph.Snapshot, error) {
	var snap graph.Snapshot
	if err := json.Unmarshal(data, &snap); err != nil {
		return nil, fmt.Errorf("decode workflow record: %w", err)
	}
	if snap.Nodes == nil {
		snap.Nodes = []node.Node{}
	}
	if snap.Edges == nil {
		snap.Edges = []node.Edge{}
	}
	for i := range snap.Nodes {
		snap.Nodes[i].Editing = false
	}
	return &snap, nil
}
