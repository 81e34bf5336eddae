package cli

import (
	"bufio"
	"errors"
	"fmt"
	"strings"

	"github.com/spf13/cobra"
)

const shellPrompt = "stepflow> "

func newShellCommand(rt *runtime) *cobra.Command {
	return &cobra.Command{
		Use:   "shell",
		Short: "Run commands interactively against one open workflow",
		Long: `Run commands interactively. Every line is one stepflow command without
the global flags, for example "toggle 1". Global flags such as --workflow are
rejected inside the shell because the session is already open. Type "exit" or
press Ctrl-D to quit.
With --healthcheck-port set, /health and /metrics are served while the shell runs.`,
		Annotations: sessionCommand,
		Args:        usageArgs(cobra.NoArgs),
		RunE:        rt.runShell,
	}
}

func (rt *runtime) runShell(cmd *cobra.Command, _ []string) error {
	if rt.inShell {
		return usageError(errors.New("already in a shell"))
	}
	ctx := cmd.Context()
	out := cmd.OutOrStdout()
	errW := cmd.ErrOrStderr()

	addr, err := rt.app.StartHealthCheckServer(ctx)
	if err != nil {
		return err
	}
	if addr != "" {
		fmt.Fprintf(errW, "serving /health and /metrics on %s\n", addr)
	}

	rt.inShell = true
	defer func() { rt.inShell = false }()

	fmt.Fprintf(out, "stepflow shell on workflow %q. Type 'help' for commands, 'exit' to quit.\n", rt.session.WorkflowID())
	scanner := bufio.NewScanner(cmd.InOrStdin())
	for {
		fmt.Fprint(out, shellPrompt)
		if !scanner.Scan() {
			break
		}
		line := strings.TrimSpace(scanner.Text())
		switch line {
		case "":
			continue
		case "exit", "quit":
			return nil
		}

		sub := newRootCommand(rt)
		sub.SetArgs(strings.Fields(line))
		sub.SetIn(cmd.InOrStdin())
		sub.SetOut(out)
		sub.SetErr(errW)
		if err := sub.ExecuteContext(ctx); err != nil {
			fmt.Fprintf(errW, "error: %v\n", err)
		}
		if ctx.Err() != nil {
			fmt.Fprintln(out)
			return nil
		}
	}
	fmt.Fprintln(out)
	return scanner.Err()
}
