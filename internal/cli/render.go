package cli

import (
	"bytes"
	"encoding/json"
	"fmt"
	"io"
	"strconv"
	"text/tabwriter"

	"gopkg.in/yaml.v3"

	"github.com/vk/stepflow/internal/graph"
	"github.com/vk/stepflow/internal/node"
	"github.com/vk/stepflow/internal/workflowstore"
)

type exporter func(w io.Writer, workflowID string, snap graph.Snapshot) error

var exporters = map[string]exporter{
	"json": exportJSON,
	"yaml": exportYAML,
	"dot":  exportDOT,
}

// renderTable prints nodes and edges as aligned columns.
func renderTable(w io.Writer, snap graph.Snapshot) error {
	if len(snap.Nodes) == 0 {
		_, err := fmt.Fprintln(w, "no steps")
		return err
	}

	tw := tabwriter.NewWriter(w, 0, 4, 2, ' ', 0)
	fmt.Fprintln(tw, "ID\tSTATUS\tLABEL")
	for _, n := range snap.Nodes {
		label := n.Label
		if n.Editing {
			label += " (editing)"
		}
		fmt.Fprintf(tw, "%s\t%s\t%s\n", n.ID, n.Status, label)
	}
	if len(snap.Edges) > 0 {
		fmt.Fprintln(tw, "\nEDGE\tFROM\tTO")
		for _, e := range snap.Edges {
			fmt.Fprintf(tw, "%s\t%s\t%s\n", e.ID, e.Source, e.Target)
		}
	}
	return tw.Flush()
}

// exportJSON writes the persisted record layout, indented.
func exportJSON(w io.Writer, _ string, snap graph.Snapshot) error {
	data, err := workflowstore.Encode(snap)
	if err != nil {
		return err
	}
	var buf bytes.Buffer
	if err := json.Indent(&buf, data, "", "  "); err != nil {
		return err
	}
	buf.WriteByte('\n')
	_, err = buf.WriteTo(w)
	return err
}

func exportYAML(w io.Writer, _ string, snap graph.Snapshot) error {
	enc := yaml.NewEncoder(w)
	enc.SetIndent(2)
	if err := enc.Encode(snap.Clone()); err != nil {
		return fmt.Errorf("failed to encode yaml: %w", err)
	}
	return enc.Close()
}

var dotFill = map[node.Status]string{
	node.Locked:    "lightgrey",
	node.Active:    "lightblue",
	node.Completed: "palegreen",
}

// exportDOT writes a Graphviz digraph, one edge per dependency link.
func exportDOT(w io.Writer, workflowID string, snap graph.Snapshot) error {
	var buf bytes.Buffer
	fmt.Fprintf(&buf, "digraph %s {\n", strconv.Quote(workflowID))
	buf.WriteString("  node [shape=box, style=filled];\n")
	for _, n := range snap.Nodes {
		fmt.Fprintf(&buf, "  %s [label=%s, fillcolor=%s];\n",
			strconv.Quote(n.ID), strconv.Quote(n.Label), dotFill[n.Status])
	}
	for _, e := range snap.Edges {
		fmt.Fprintf(&buf, "  %s -> %s [id=%s];\n",
			strconv.Quote(e.Source), strconv.Quote(e.Target), strconv.Quote(e.ID))
	}
	buf.WriteString("}\n")
	_, err := buf.WriteTo(w)
	return err
}
