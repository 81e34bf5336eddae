package nodeid

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestSequence_Next(t *testing.T) {
	var s Sequence
	assert.Equal(t, "1", s.Peek())
	assert.Equal(t, "1", s.Next())
	assert.Equal(t, "2", s.Next())
	assert.Equal(t, "3", s.Peek())
}

func TestSequence_Observe(t *testing.T) {
	testCases := []struct {
		name     string
		observed []string
		expected string
	}{
		{name: "empty", expected: "1"},
		{name: "numeric ids", observed: []string{"1", "4", "2"}, expected: "5"},
		{name: "non-numeric ids are ignored", observed: []string{"abc", "3", "e1-2"}, expected: "4"},
		{name: "zero and negative are ignored", observed: []string{"0", "-5"}, expected: "1"},
	}

	for _, tc := range testCases {
		t.Run(tc.name, func(t *testing.T) {
			var s Sequence
			for _, id := range tc.observed {
				s.Observe(id)
			}
			assert.Equal(t, tc.expected, s.Next())
		})
	}
}

func TestSequence_Reset(t *testing.T) {
	var s Sequence
	s.Next()
	s.Next()
	s.Reset()
	assert.Equal(t, "1", s.Next())
}

func TestEdgeID(t *testing.T) {
	used := map[string]bool{}
	taken := func(id string) bool { return used[id] }

	first := EdgeID("1", "2", taken)
	assert.Equal(t, "e1-2", first)
	used[first] = true

	second := EdgeID("1", "2", taken)
	assert.Equal(t, "e1-2-2", second)
	used[second] = true

	assert.Equal(t, "e1-2-3", EdgeID("1", "2", taken))
	assert.Equal(t, "e2-3", EdgeID("2", "3", nil))
}
