package cli

import (
	"fmt"
	"io"
	"strings"

	"github.com/spf13/cobra"

	"github.com/vk/stepflow/internal/engine"
	"github.com/vk/stepflow/internal/hcl"
	"github.com/vk/stepflow/internal/session"
)

func printTransitions(w io.Writer, res engine.Result) {
	for _, t := range res.Transitions {
		fmt.Fprintf(w, "  %s: %s -> %s\n", t.NodeID, t.From, t.To)
	}
	if !res.Converged {
		fmt.Fprintln(w, "  warning: status propagation did not converge")
	}
}

// report prints the outcome of a command, then passes err through so a
// save failure still shows what changed in memory.
func report(cmd *cobra.Command, out session.Outcome, err error, applied, noop string) error {
	w := cmd.OutOrStdout()
	if out.Applied {
		fmt.Fprintln(w, applied)
		printTransitions(w, out.Result)
	} else if err == nil {
		fmt.Fprintln(w, noop)
	}
	return err
}

func newAddCommand(rt *runtime) *cobra.Command {
	return &cobra.Command{
		Use:         "add [LABEL...]",
		Short:       "Add a step",
		Long:        `Add a step. The first step of an empty workflow starts active, later steps start locked.`,
		Annotations: sessionCommand,
		RunE: func(cmd *cobra.Command, args []string) error {
			out, err := rt.session.AddNode(cmd.Context(), strings.Join(args, " "))
			return report(cmd, out, err, "added node "+out.ID, "")
		},
	}
}

func newRemoveCommand(rt *runtime) *cobra.Command {
	return &cobra.Command{
		Use:         "rm ID",
		Aliases:     []string{"remove"},
		Short:       "Remove a step and its links",
		Annotations: sessionCommand,
		Args:        usageArgs(cobra.ExactArgs(1)),
		RunE: func(cmd *cobra.Command, args []string) error {
			out, err := rt.session.RemoveNode(cmd.Context(), args[0])
			return report(cmd, out, err, "removed node "+args[0], "no node "+args[0])
		},
	}
}

func newConnectCommand(rt *runtime) *cobra.Command {
	return &cobra.Command{
		Use:         "connect SOURCE TARGET",
		Short:       "Make TARGET depend on SOURCE",
		Annotations: sessionCommand,
		Args:        usageArgs(cobra.ExactArgs(2)),
		RunE: func(cmd *cobra.Command, args []string) error {
			out, err := rt.session.Connect(cmd.Context(), args[0], args[1])
			return report(cmd, out, err,
				fmt.Sprintf("connected %s -> %s as %s", args[0], args[1], out.ID),
				"nothing connected: unknown node")
		},
	}
}

func newDisconnectCommand(rt *runtime) *cobra.Command {
	return &cobra.Command{
		Use:         "disconnect EDGE_ID",
		Short:       "Remove a dependency link",
		Annotations: sessionCommand,
		Args:        usageArgs(cobra.ExactArgs(1)),
		RunE: func(cmd *cobra.Command, args []string) error {
			out, err := rt.session.Disconnect(cmd.Context(), args[0])
			return report(cmd, out, err, "removed edge "+args[0], "no edge "+args[0])
		},
	}
}

func newLabelCommand(rt *runtime) *cobra.Command {
	return &cobra.Command{
		Use:         "label ID TEXT...",
		Short:       "Set the label of a step",
		Annotations: sessionCommand,
		Args:        usageArgs(cobra.MinimumNArgs(1)),
		RunE: func(cmd *cobra.Command, args []string) error {
			out, err := rt.session.UpdateLabel(cmd.Context(), args[0], strings.Join(args[1:], " "))
			return report(cmd, out, err, "labeled node "+args[0], "no node "+args[0])
		},
	}
}

func newEditCommand(rt *runtime) *cobra.Command {
	return &cobra.Command{
		Use:         "edit ID",
		Short:       "Mark a step's label as being edited",
		Annotations: sessionCommand,
		Args:        usageArgs(cobra.ExactArgs(1)),
		RunE: func(cmd *cobra.Command, args []string) error {
			out, err := rt.session.BeginEdit(cmd.Context(), args[0])
			return report(cmd, out, err, "editing node "+args[0], "no node "+args[0])
		},
	}
}

func newToggleCommand(rt *runtime) *cobra.Command {
	return &cobra.Command{
		Use:         "toggle ID",
		Short:       "Complete an active step, or reopen a completed one",
		Annotations: sessionCommand,
		Args:        usageArgs(cobra.ExactArgs(1)),
		RunE: func(cmd *cobra.Command, args []string) error {
			out, err := rt.session.ToggleComplete(cmd.Context(), args[0])
			return report(cmd, out, err, "toggled node "+args[0], "node "+args[0]+" is locked or unknown")
		},
	}
}

func newResetCommand(rt *runtime) *cobra.Command {
	return &cobra.Command{
		Use:         "reset",
		Short:       "Delete every step and the stored workflow",
		Annotations: sessionCommand,
		Args:        usageArgs(cobra.NoArgs),
		RunE: func(cmd *cobra.Command, args []string) error {
			if err := rt.session.Reset(cmd.Context()); err != nil {
				return err
			}
			fmt.Fprintln(cmd.OutOrStdout(), "workflow reset")
			return nil
		},
	}
}

func newShowCommand(rt *runtime) *cobra.Command {
	return &cobra.Command{
		Use:         "show",
		Aliases:     []string{"ls"},
		Short:       "Print steps and links",
		Annotations: sessionCommand,
		Args:        usageArgs(cobra.NoArgs),
		RunE: func(cmd *cobra.Command, args []string) error {
			return renderTable(cmd.OutOrStdout(), rt.session.Snapshot())
		},
	}
}

func newExportCommand(rt *runtime) *cobra.Command {
	var format string
	cmd := &cobra.Command{
		Use:         "export",
		Short:       "Write the workflow as JSON, YAML or Graphviz DOT",
		Annotations: sessionCommand,
		Args:        usageArgs(cobra.NoArgs),
		PreRunE: func(cmd *cobra.Command, args []string) error {
			if _, ok := exporters[format]; !ok {
				return usageError(fmt.Errorf("invalid format %q: must be 'json', 'yaml' or 'dot'", format))
			}
			return nil
		},
		RunE: func(cmd *cobra.Command, args []string) error {
			return exporters[format](cmd.OutOrStdout(), rt.session.WorkflowID(), rt.session.Snapshot())
		},
	}
	cmd.Flags().StringVarP(&format, "format", "f", "json", "Output format. Options: 'json', 'yaml', 'dot'.")
	return cmd
}

func newImportCommand(rt *runtime) *cobra.Command {
	return &cobra.Command{
		Use:   "import PATH...",
		Short: "Replace the workflow with one defined in HCL files",
		Long: `Replace the workflow with the steps declared in HCL files. Each PATH
is a file or a directory searched recursively for .hcl files:

  step "build" {
    label      = "Build"
    depends_on = ["fetch"]
  }`,
		Annotations: sessionCommand,
		Args:        usageArgs(cobra.MinimumNArgs(1)),
		RunE: func(cmd *cobra.Command, args []string) error {
			ctx := cmd.Context()
			def, err := hcl.NewLoader().LoadDefinition(ctx, args...)
			if err != nil {
				return err
			}
			out, err := rt.session.Import(ctx, def)
			if out.Applied {
				fmt.Fprintf(cmd.OutOrStdout(), "imported %d steps\n", len(def.Steps))
			}
			return err
		},
	}
}
