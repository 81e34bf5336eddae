package node

import (
	"encoding/json"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestParseStatus(t *testing.T) {
	testCases := []struct {
		raw       string
		expected  Status
		expectErr bool
	}{
		{raw: "locked", expected: Locked},
		{raw: "Active", expected: Active},
		{raw: " completed ", expected: Completed},
		{raw: "done", expectErr: true},
		{raw: "", expectErr: true},
	}

	for _, tc := range testCases {
		t.Run(tc.raw, func(t *testing.T) {
			s, err := ParseStatus(tc.raw)
			if tc.expectErr {
				assert.Error(t, err)
				return
			}
			require.NoError(t, err)
			assert.Equal(t, tc.expected, s)
		})
	}
}

func TestStatus_JSON(t *testing.T) {
	n := Node{ID: "1", Label: "Design", Status: Completed}
	raw, err := json.Marshal(n)
	require.NoError(t, err)
	assert.JSONEq(t, `{"id":"1","label":"Design","status":"completed"}`, string(raw))

	var decoded Node
	require.NoError(t, json.Unmarshal(raw, &decoded))
	assert.Equal(t, n, decoded)

	err = json.Unmarshal([]byte(`{"id":"1","status":"finished"}`), &decoded)
	assert.ErrorContains(t, err, "unknown node status")
}

func TestStatus_StringUnknown(t *testing.T) {
	assert.Equal(t, "status(7)", Status(7).String())
	_, err := Status(7).MarshalText()
	assert.Error(t, err)
}

func TestEdge_Touches(t *testing.T) {
	e := Edge{ID: "e1-2", Source: "1", Target: "2"}
	assert.True(t, e.Touches("1"))
	assert.True(t, e.Touches("2"))
	assert.False(t, e.Touches("3"))
}
