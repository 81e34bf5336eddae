package engine

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/vk/stepflow/internal/config"
	"github.com/vk/stepflow/internal/node"
	"github.com/vk/stepflow/internal/testutil"
)

func TestBuild(t *testing.T) {
	e := New()
	ctx := context.Background()

	def := &config.Definition{Steps: []*config.StepDefinition{
		{Name: "research", Label: "Research"},
		{Name: "design", Label: "Design", DependsOn: []string{"research"}},
		{Name: "notes"},
		{Name: "build", Label: "Build", DependsOn: []string{"design", "notes"}},
	}}

	g, err := e.Build(ctx, def)
	require.NoError(t, err)

	assert.Equal(t, map[string]node.Status{
		"1": node.Active,
		"2": node.Locked,
		"3": node.Active,
		"4": node.Locked,
	}, testutil.Statuses(g))
	assert.Equal(t, []string{"2", "3"}, g.Predecessors("4"))

	n, _ := g.Node("3")
	assert.Equal(t, "3", n.Label, "blank labels default to the id")
}

func TestBuild_Errors(t *testing.T) {
	e := New()
	ctx := context.Background()

	testCases := []struct {
		name        string
		steps       []*config.StepDefinition
		errContains string
		errIs       error
	}{
		{
			name:        "empty name",
			steps:       []*config.StepDefinition{{Name: " ", Source: "a.hcl"}},
			errContains: "empty name",
		},
		{
			name:        "duplicate step",
			steps:       []*config.StepDefinition{{Name: "a"}, {Name: "a", Source: "b.hcl"}},
			errContains: `duplicate step "a" declared in b.hcl`,
		},
		{
			name:        "unknown dependency",
			steps:       []*config.StepDefinition{{Name: "a", DependsOn: []string{"ghost"}}},
			errContains: `depends on unknown step "ghost"`,
		},
		{
			name: "cycle",
			steps: []*config.StepDefinition{
				{Name: "a", DependsOn: []string{"b"}},
				{Name: "b", DependsOn: []string{"a"}},
			},
			errIs: ErrCycle,
		},
		{
			name:  "self dependency",
			steps: []*config.StepDefinition{{Name: "a", DependsOn: []string{"a"}}},
			errIs: ErrCycle,
		},
	}

	for _, tc := range testCases {
		t.Run(tc.name, func(t *testing.T) {
			_, err := e.Build(ctx, &config.Definition{Steps: tc.steps})
			require.Error(t, err)
			if tc.errContains != "" {
				assert.ErrorContains(t, err, tc.errContains)
			}
			if tc.errIs != nil {
				assert.ErrorIs(t, err, tc.errIs)
			}
		})
	}
}
