package engine

import (
	"github.com/vk/stepflow/internal/node"
)

// DefaultPlaceholderLabel replaces blank labels passed to UpdateLabel.
const DefaultPlaceholderLabel = "Untitled step"

// Engine applies workflow commands to a graph.
type Engine struct {
	placeholder string
}

// Option configures an Engine.
type Option func(*Engine)

// WithPlaceholderLabel overrides the label stored when UpdateLabel receives
// blank text.
func WithPlaceholderLabel(label string) Option {
	return func(e *Engine) {
		if label != "" {
			e.placeholder = label
		}
	}
}

// New creates an Engine.
func New(opts ...Option) *Engine {
	e := &Engine{placeholder: DefaultPlaceholderLabel}
	for _, opt := range opts {
		opt(e)
	}
	return e
}

// Transition records a single status change made by the engine.
type Transition struct {
	NodeID string
	From   node.Status
	To     node.Status
}

// Result describes the effect of a command on node statuses.
type Result struct {
	// Transitions lists every status change in the order it happened.
	Transitions []Transition
	// Passes is the number of relaxation passes that ran.
	Passes int
	// Converged is false if any relaxation hit its pass limit.
	Converged bool
}

// Changed reports whether any node changed status.
func (r Result) Changed() bool {
	return len(r.Transitions) > 0
}

// Final returns the last status each transitioned node ended up with.
func (r Result) Final() map[string]node.Status {
	out := make(map[string]node.Status, len(r.Transitions))
	for _, t := range r.Transitions {
		out[t.NodeID] = t.To
	}
	return out
}

func (r *Result) record(id string, from, to node.Status) {
	r.Transitions = append(r.Transitions, Transition{NodeID: id, From: from, To: to})
}

func (r *Result) merge(other Result) {
	r.Transitions = append(r.Transitions, other.Transitions...)
	r.Passes += other.Passes
	r.Converged = r.Converged && other.Converged
}
