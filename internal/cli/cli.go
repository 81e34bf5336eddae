package cli

import (
	"context"
	"errors"
	"fmt"
	"io"

	"github.com/spf13/cobra"

	"github.com/vk/stepflow/internal/app"
	"github.com/vk/stepflow/internal/config"
	"github.com/vk/stepflow/internal/hcl"
	"github.com/vk/stepflow/internal/localsession"
)

// ExitError is a custom error type that includes a specific exit code.
type ExitError struct {
	Code    int
	Message string
}

// Error implements the error interface for ExitError.
func (e *ExitError) Error() string {
	return e.Message
}

// usageError marks err as a usage problem, exit code 2.
func usageError(err error) error {
	var exitErr *ExitError
	if errors.As(err, &exitErr) {
		return err
	}
	return &ExitError{Code: 2, Message: err.Error()}
}

// usageArgs turns positional argument errors into usage errors.
func usageArgs(fn cobra.PositionalArgs) cobra.PositionalArgs {
	return func(cmd *cobra.Command, args []string) error {
		if err := fn(cmd, args); err != nil {
			return usageError(err)
		}
		return nil
	}
}

// annotationSession marks commands that operate on the workflow session.
const annotationSession = "stepflow/session"

var sessionCommand = map[string]string{annotationSession: "true"}

// options holds the global flag values.
type options struct {
	configPath      string
	workflow        string
	storage         string
	storagePath     string
	redisAddr       string
	postgresDSN     string
	logLevel        string
	logFormat       string
	healthcheckPort int
}

// globalFlags lists the persistent flags. They pick the workflow and store,
// so they only apply when a session is opened.
var globalFlags = []string{
	"config",
	"workflow",
	"storage",
	"storage-path",
	"redis-addr",
	"postgres-dsn",
	"log-level",
	"log-format",
	"healthcheck-port",
}

// runtime is the state shared by every command of one invocation.
type runtime struct {
	opts options
	errW io.Writer

	app     *app.App
	session *localsession.Session
	// inShell is set while the shell is dispatching lines.
	inShell bool
}

// Execute runs the stepflow command line with args. Output goes to outW,
// diagnostics and logs to errW.
func Execute(ctx context.Context, args []string, in io.Reader, outW, errW io.Writer) error {
	rt := &runtime{errW: errW}
	root := newRootCommand(rt)
	root.SetArgs(args)
	root.SetIn(in)
	root.SetOut(outW)
	root.SetErr(errW)

	err := root.ExecuteContext(ctx)
	if rt.app != nil {
		if closeErr := rt.app.Close(ctx); closeErr != nil && err == nil {
			err = closeErr
		}
	}
	return err
}

func newRootCommand(rt *runtime) *cobra.Command {
	root := &cobra.Command{
		Use:   "stepflow",
		Short: "stepflow - dependency-driven workflow checklists",
		Long: `stepflow tracks a workflow as a graph of steps. A step becomes
active once every step it depends on is completed; un-completing a step
locks everything downstream of it again.`,
		Args:              usageArgs(cobra.NoArgs),
		SilenceUsage:      true,
		SilenceErrors:     true,
		PersistentPreRunE: rt.open,
		RunE: func(cmd *cobra.Command, args []string) error {
			return cmd.Help()
		},
	}
	root.CompletionOptions.DisableDefaultCmd = true
	root.SetFlagErrorFunc(func(_ *cobra.Command, err error) error {
		return usageError(err)
	})

	flags := root.PersistentFlags()
	flags.StringVar(&rt.opts.configPath, "config", "", "Path to an HCL settings file.")
	flags.StringVarP(&rt.opts.workflow, "workflow", "w", config.DefaultWorkflowID, "Workflow id to operate on.")
	flags.StringVar(&rt.opts.storage, "storage", config.DriverFile, "Storage driver. Options: 'memory', 'file', 'redis', 'postgres'.")
	flags.StringVar(&rt.opts.storagePath, "storage-path", "", "Directory for the file storage driver. Defaults to ~/.stepflow.")
	flags.StringVar(&rt.opts.redisAddr, "redis-addr", "", "Address of the redis server for the redis driver.")
	flags.StringVar(&rt.opts.postgresDSN, "postgres-dsn", "", "Connection string for the postgres driver.")
	flags.StringVar(&rt.opts.logLevel, "log-level", "warn", "Set the logging level. Options: 'debug', 'info', 'warn', 'error'.")
	flags.StringVar(&rt.opts.logFormat, "log-format", "text", "Log output format. Options: 'text' or 'json'.")
	flags.IntVar(&rt.opts.healthcheckPort, "healthcheck-port", 0, "Port for the HTTP health check and metrics server in shell mode. 0 is disabled.")

	root.AddCommand(
		newAddCommand(rt),
		newRemoveCommand(rt),
		newConnectCommand(rt),
		newDisconnectCommand(rt),
		newLabelCommand(rt),
		newEditCommand(rt),
		newToggleCommand(rt),
		newResetCommand(rt),
		newShowCommand(rt),
		newExportCommand(rt),
		newImportCommand(rt),
		newShellCommand(rt),
	)
	return root
}

// open builds the app and loads the session before a session command runs.
// Inside the shell the session is already open and shared.
func (rt *runtime) open(cmd *cobra.Command, _ []string) error {
	if rt.inShell {
		for _, name := range globalFlags {
			if cmd.Flags().Changed(name) {
				return usageError(fmt.Errorf("global flag --%s is not accepted inside the shell", name))
			}
		}
	}
	if rt.session != nil || cmd.Annotations[annotationSession] == "" {
		return nil
	}
	ctx := cmd.Context()

	cfg, err := rt.buildConfig(ctx, cmd)
	if err != nil {
		return err
	}
	a, err := app.NewApp(ctx, rt.errW, cfg)
	if err != nil {
		return err
	}
	rt.app = a
	ctx = a.Context(ctx)
	cmd.SetContext(ctx)

	s, err := a.OpenSession(ctx)
	if s == nil {
		return err
	}
	rt.session = s
	if err != nil {
		if cmd.Name() != "shell" {
			return err
		}
		fmt.Fprintf(cmd.ErrOrStderr(), "warning: %v; changes will not be saved\n", err)
	}
	return nil
}

// buildConfig layers defaults, the settings file and explicitly set flags,
// in that order of precedence.
func (rt *runtime) buildConfig(ctx context.Context, cmd *cobra.Command) (*app.Config, error) {
	cfg := app.DefaultConfig()
	if rt.opts.configPath != "" {
		model, err := hcl.NewLoader().LoadSettings(ctx, rt.opts.configPath)
		if err != nil {
			return nil, err
		}
		cfg = cfg.WithSettings(model)
	}

	flags := cmd.Flags()
	if flags.Changed("workflow") {
		cfg.WorkflowID = rt.opts.workflow
	}
	if flags.Changed("storage") && rt.opts.storage != cfg.Storage.Driver {
		cfg.Storage = config.Storage{Driver: rt.opts.storage}
		if rt.opts.storage == config.DriverFile {
			cfg.Storage.Path = app.DefaultConfig().Storage.Path
		}
	}
	if flags.Changed("storage-path") {
		cfg.Storage.Path = rt.opts.storagePath
	}
	if flags.Changed("redis-addr") {
		cfg.Storage.Address = rt.opts.redisAddr
	}
	if flags.Changed("postgres-dsn") {
		cfg.Storage.DSN = rt.opts.postgresDSN
	}
	if flags.Changed("log-level") {
		cfg.LogLevel = rt.opts.logLevel
	}
	if flags.Changed("log-format") {
		cfg.LogFormat = rt.opts.logFormat
	}
	if flags.Changed("healthcheck-port") {
		cfg.HealthcheckPort = rt.opts.healthcheckPort
	}

	validated, err := app.NewConfig(cfg)
	if err != nil {
		return nil, usageError(err)
	}
	return validated, nil
}
