// Package node defines the vertex and edge value types of a workflow graph,
// together with the three-state status every step moves through.
package node

import (
	"fmt"
	"strings"
)

// Status represents where a step stands in the workflow.
type Status int

const (
	// Locked indicates at least one prerequisite is not completed yet. Locked
	// steps are not actionable.
	Locked Status = iota
	// Active indicates the step can be worked on but is not completed.
	Active
	// Completed indicates the step is finished. Completion may be revoked.
	Completed
)

var statusNames = map[Status]string{
	Locked:    "locked",
	Active:    "active",
	Completed: "completed",
}

// String returns the lower-case name of the status.
func (s Status) String() string {
	if name, ok := statusNames[s]; ok {
		return name
	}
	return fmt.Sprintf("status(%d)", int(s))
}

// ParseStatus converts a status name back into a Status. Matching is
// case-insensitive.
func ParseStatus(raw string) (Status, error) {
	needle := strings.ToLower(strings.TrimSpace(raw))
	for s, name := range statusNames {
		if name == needle {
			return s, nil
		}
	}
	return Locked, fmt.Errorf("unknown node status %q", raw)
}

// MarshalText implements encoding.TextMarshaler.
func (s Status) MarshalText() ([]byte, error) {
	if _, ok := statusNames[s]; !ok {
		return nil, fmt.Errorf("cannot marshal unknown node status %d", int(s))
	}
	return []byte(s.String()), nil
}

// UnmarshalText implements encoding.TextUnmarshaler.
func (s *Status) UnmarshalText(text []byte) error {
	parsed, err := ParseStatus(string(text))
	if err != nil {
		return err
	}
	*s = parsed
	return nil
}

// Node is a single step of the workflow.
type Node struct {
	// ID is assigned at creation and never changes.
	ID string `json:"id" yaml:"id"`
	// Label is the user-visible text of the step.
	Label string `json:"label" yaml:"label"`
	// Status is the propagation state of the step.
	Status Status `json:"status" yaml:"status"`
	// Editing is true while the presentation layer has the label open for
	// editing. It never survives a reload.
	Editing bool `json:"editing,omitempty" yaml:"editing,omitempty"`
}

// Edge is a directed dependency: Target depends on Source.
type Edge struct {
	ID     string `json:"id" yaml:"id"`
	Source string `json:"source" yaml:"source"`
	Target string `json:"target" yaml:"target"`
}

// Touches reports whether the edge has the given node as either endpoint.
func (e Edge) Touches(id string) bool {
	return e.Source == id || e.Target == id
}
