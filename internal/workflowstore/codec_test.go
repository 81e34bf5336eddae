package workflowstore

import (
	"testing"

	"github.com/google/go-cmp/cmp"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/vk/stepflow/internal/graph"
	"github.com/vk/stepflow/internal/node"
)

func TestEncodeDecode(t *testing.T) {
	snap := graph.Snapshot{
		Nodes: []node.Node{
			{ID: "1", Label: "Plan", Status: node.Completed},
			{ID: "2", Label: "Build", Status: node.Active, Editing: true},
		},
		Edges: []node.Edge{{ID: "e1-2", Source: "1", Target: "2"}},
	}

	data, err := Encode(snap)
	require.NoError(t, err)
	assert.JSONEq(t, `{
		"nodes": [
			{"id": "1", "label": "Plan", "status": "completed"},
			{"id": "2", "label": "Build", "status": "active", "editing": true}
		],
		"edges": [{"id": "e1-2", "source": "1", "target": "2"}]
	}`, string(data))

	decoded, err := Decode(data)
	require.NoError(t, err)

	want := snap.Clone()
	want.Nodes[1].Editing = false
	if diff := cmp.Diff(want, *decoded); diff != "" {
		t.Errorf("decoded snapshot mismatch (-want +got):\n%s", diff)
	}
}

func TestEncode_EmptySnapshot(t *testing.T) {
	data, err := Encode(graph.Snapshot{})
	require.NoError(t, err)
	assert.JSONEq(t, `{"nodes": [], "edges": []}`, string(data))
}

func TestDecode_Errors(t *testing.T) {
	_, err := Decode([]byte(`{"nodes": [{"id": "1", "status": "paused"}]}`))
	assert.ErrorContains(t, err, "unknown node status")

	_, err = Decode([]byte(`not json`))
	assert.ErrorContains(t, err, "decode workflow record")
}

func TestDecode_MissingCollections(t *testing.T) {
	snap, err := Decode([]byte(`{}`))
	require.NoError(t, err)
	assert.NotNil(t, snap.Nodes)
	assert.NotNil(t, snap.Edges)
}
