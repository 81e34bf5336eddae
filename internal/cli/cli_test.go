package cli

import (
	"bytes"
	"context"
	"errors"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"gopkg.in/yaml.v3"

	"github.com/vk/stepflow/internal/engine"
	"github.com/vk/stepflow/internal/graph"
	"github.com/vk/stepflow/internal/node"
)

type result struct {
	out    string
	errOut string
	err    error
}

func execute(t *testing.T, stdin string, args ...string) result {
	t.Helper()
	var out, errOut bytes.Buffer
	err := Execute(context.Background(), args, strings.NewReader(stdin), &out, &errOut)
	return result{out: out.String(), errOut: errOut.String(), err: err}
}

// fileCLI runs one-shot commands against a file store in dir, so state
// carries over between invocations like it does for a user.
func fileCLI(t *testing.T, dir string) func(args ...string) result {
	return func(args ...string) result {
		t.Helper()
		full := append([]string{"--storage=file", "--storage-path=" + dir}, args...)
		return execute(t, "", full...)
	}
}

func requireExitCode(t *testing.T, err error, code int) {
	t.Helper()
	var exitErr *ExitError
	require.True(t, errors.As(err, &exitErr), "expected ExitError, got %v", err)
	assert.Equal(t, code, exitErr.Code)
}

func TestCLI_ChainScenario(t *testing.T) {
	run := fileCLI(t, t.TempDir())

	r := run("add", "Write", "draft")
	require.NoError(t, r.err)
	assert.Equal(t, "added node 1\n", r.out)
	require.NoError(t, run("add", "Review").err)
	require.NoError(t, run("add", "Publish").err)

	r = run("connect", "1", "2")
	require.NoError(t, r.err)
	assert.Equal(t, "connected 1 -> 2 as e1-2\n", r.out)
	require.NoError(t, run("connect", "2", "3").err)

	r = run("toggle", "1")
	require.NoError(t, r.err)
	assert.Contains(t, r.out, "1: active -> completed")
	assert.Contains(t, r.out, "2: locked -> active")

	r = run("toggle", "3")
	require.NoError(t, r.err)
	assert.Equal(t, "node 3 is locked or unknown\n", r.out)

	r = run("toggle", "1")
	require.NoError(t, r.err)
	assert.Contains(t, r.out, "1: completed -> active")
	assert.Contains(t, r.out, "2: active -> locked")

	r = run("show")
	require.NoError(t, r.err)
	lines := strings.Split(strings.TrimSpace(r.out), "\n")
	require.Len(t, lines, 8)
	assert.Equal(t, []string{"ID", "STATUS", "LABEL"}, strings.Fields(lines[0]))
	assert.Equal(t, []string{"1", "active", "Write", "draft"}, strings.Fields(lines[1]))
	assert.Equal(t, []string{"2", "locked", "Review"}, strings.Fields(lines[2]))
	assert.Equal(t, []string{"e2-3", "2", "3"}, strings.Fields(lines[7]))
}

func TestCLI_NoOpsAndCycles(t *testing.T) {
	run := fileCLI(t, t.TempDir())
	require.NoError(t, run("add").err)
	require.NoError(t, run("add").err)
	require.NoError(t, run("connect", "1", "2").err)

	r := run("connect", "2", "1")
	require.Error(t, r.err)
	assert.ErrorIs(t, r.err, engine.ErrCycle)

	r = run("connect", "1", "9")
	require.NoError(t, r.err)
	assert.Equal(t, "nothing connected: unknown node\n", r.out)

	r = run("rm", "9")
	require.NoError(t, r.err)
	assert.Equal(t, "no node 9\n", r.out)

	r = run("disconnect", "e1-2")
	require.NoError(t, r.err)
	assert.Equal(t, "removed edge e1-2\n", r.out)
}

func TestCLI_LabelEditAndRemove(t *testing.T) {
	run := fileCLI(t, t.TempDir())
	require.NoError(t, run("add", "A").err)
	require.NoError(t, run("add", "B").err)

	r := run("edit", "2")
	require.NoError(t, r.err)
	assert.Equal(t, "editing node 2\n", r.out)
	assert.NotContains(t, run("show").out, "(editing)", "editing never survives a reload")

	require.NoError(t, run("label", "2", "Ship", "it").err)
	r = run("show")
	assert.Contains(t, r.out, "Ship it")
	assert.NotContains(t, r.out, "(editing)")

	r = run("rm", "1")
	require.NoError(t, r.err)
	assert.Contains(t, r.out, "removed node 1")
	assert.Contains(t, r.out, "2: locked -> active")
}

func TestCLI_Reset(t *testing.T) {
	dir := t.TempDir()
	run := fileCLI(t, dir)
	require.NoError(t, run("add", "A").err)
	require.FileExists(t, filepath.Join(dir, "default.json"))

	r := run("reset")
	require.NoError(t, r.err)
	assert.Equal(t, "workflow reset\n", r.out)
	assert.NoFileExists(t, filepath.Join(dir, "default.json"))

	assert.Equal(t, "no steps\n", run("show").out)
}

func TestCLI_WorkflowsAreIsolated(t *testing.T) {
	dir := t.TempDir()
	run := fileCLI(t, dir)
	require.NoError(t, run("--workflow=alpha", "add", "alpha-step").err)
	require.NoError(t, run("-w", "beta", "add", "beta-step").err)

	out := run("--workflow=alpha", "show").out
	assert.Contains(t, out, "alpha-step")
	assert.NotContains(t, out, "beta-step")
	assert.NotContains(t, run("--workflow=beta", "show").out, "alpha-step")
	assert.FileExists(t, filepath.Join(dir, "beta.json"))
}

func TestCLI_Export(t *testing.T) {
	run := fileCLI(t, t.TempDir())
	require.NoError(t, run("add", "Plan").err)
	require.NoError(t, run("add", "Do").err)
	require.NoError(t, run("connect", "1", "2").err)

	t.Run("json", func(t *testing.T) {
		r := run("export")
		require.NoError(t, r.err)
		assert.JSONEq(t, `{
			"nodes": [
				{"id": "1", "label": "Plan", "status": "active"},
				{"id": "2", "label": "Do", "status": "locked"}
			],
			"edges": [{"id": "e1-2", "source": "1", "target": "2"}]
		}`, r.out)
	})

	t.Run("yaml", func(t *testing.T) {
		r := run("export", "--format", "yaml")
		require.NoError(t, r.err)
		var snap graph.Snapshot
		require.NoError(t, yaml.Unmarshal([]byte(r.out), &snap))
		require.Len(t, snap.Nodes, 2)
		assert.Equal(t, node.Active, snap.Nodes[0].Status)
		assert.Equal(t, "e1-2", snap.Edges[0].ID)
	})

	t.Run("dot", func(t *testing.T) {
		r := run("export", "-f", "dot")
		require.NoError(t, r.err)
		assert.True(t, strings.HasPrefix(r.out, `digraph "default" {`))
		assert.Contains(t, r.out, `"1" [label="Plan", fillcolor=lightblue];`)
		assert.Contains(t, r.out, `"1" -> "2" [id="e1-2"];`)
	})

	t.Run("unknown format", func(t *testing.T) {
		requireExitCode(t, run("export", "--format", "xml").err, 2)
	})
}

func TestCLI_Import(t *testing.T) {
	dir := t.TempDir()
	defs := filepath.Join(dir, "defs")
	require.NoError(t, os.MkdirAll(defs, 0o755))
	require.NoError(t, os.WriteFile(filepath.Join(defs, "release.hcl"), []byte(`
step "fetch" {
  label = "Fetch"
}
step "build" {
  label      = "Build"
  depends_on = ["fetch"]
}
`), 0o644))

	run := fileCLI(t, filepath.Join(dir, "data"))
	require.NoError(t, run("add", "old").err)

	r := run("import", defs)
	require.NoError(t, r.err)
	assert.Equal(t, "imported 2 steps\n", r.out)

	r = run("show")
	assert.Contains(t, r.out, "Fetch")
	assert.NotContains(t, r.out, "old")

	r = run("import", filepath.Join(dir, "missing"))
	require.Error(t, r.err)
}

func TestCLI_UsageErrors(t *testing.T) {
	run := fileCLI(t, t.TempDir())
	testCases := []struct {
		name string
		args []string
	}{
		{name: "unknown command", args: []string{"frobnicate"}},
		{name: "unknown flag", args: []string{"show", "--nope"}},
		{name: "missing argument", args: []string{"rm"}},
		{name: "too many arguments", args: []string{"connect", "1", "2", "3"}},
		{name: "bad log level", args: []string{"--log-level=trace", "show"}},
		{name: "unknown driver", args: []string{"--storage=tape", "show"}},
	}
	for _, tc := range testCases {
		t.Run(tc.name, func(t *testing.T) {
			requireExitCode(t, run(tc.args...).err, 2)
		})
	}
}

func TestCLI_HelpNeedsNoStore(t *testing.T) {
	r := execute(t, "", "--storage=redis", "--help")
	require.NoError(t, r.err)
	assert.Contains(t, r.out, "Available Commands")
	assert.Contains(t, r.out, "toggle")
}

func TestCLI_ConfigFilePrecedence(t *testing.T) {
	dir := t.TempDir()
	t.Setenv("STEPFLOW_TEST_DATA", filepath.Join(dir, "data"))
	settings := filepath.Join(dir, "stepflow.hcl")
	require.NoError(t, os.WriteFile(settings, []byte(`
workflow_id = "from-file"
storage {
  driver = "file"
  path   = "${env.STEPFLOW_TEST_DATA}"
}
`), 0o644))

	require.NoError(t, execute(t, "", "--config", settings, "add", "A").err)
	assert.FileExists(t, filepath.Join(dir, "data", "from-file.json"))

	require.NoError(t, execute(t, "", "--config", settings, "--workflow=from-flag", "add", "B").err)
	assert.FileExists(t, filepath.Join(dir, "data", "from-flag.json"))

	r := execute(t, "", "--config", filepath.Join(dir, "missing.hcl"), "show")
	require.Error(t, r.err)
}

func TestCLI_Shell(t *testing.T) {
	script := strings.Join([]string{
		"add Plan",
		"add Do",
		"",
		"connect 1 2",
		"toggle 1",
		"edit 2",
		"show",
		"shell",
		"--workflow beta show",
		"bogus",
		"exit",
		"add never",
	}, "\n")

	r := execute(t, script, "--storage=memory", "shell")
	require.NoError(t, r.err)

	assert.Contains(t, r.out, `stepflow shell on workflow "default"`)
	assert.Contains(t, r.out, "added node 1")
	assert.Contains(t, r.out, "added node 2")
	assert.Contains(t, r.out, "2: locked -> active")
	assert.Contains(t, r.out, "Do (editing)")
	assert.Contains(t, r.out, shellPrompt)
	assert.NotContains(t, r.out, "never")
	assert.Contains(t, r.errOut, "already in a shell")
	assert.Contains(t, r.errOut, `global flag --workflow is not accepted inside the shell`)
	assert.Contains(t, r.errOut, `unknown command "bogus"`)
}

func TestCLI_ShellEndsOnEOF(t *testing.T) {
	r := execute(t, "add A", "--storage=memory", "shell")
	require.NoError(t, r.err)
	assert.Contains(t, r.out, "added node 1")
}

func TestCLI_ShellContinuesAfterLoadFailure(t *testing.T) {
	dir := t.TempDir()
	require.NoError(t, os.WriteFile(filepath.Join(dir, "default.json"), []byte("{broken"), 0o644))

	r := execute(t, "add A\nexit\n", "--storage=file", "--storage-path="+dir, "shell")
	require.NoError(t, r.err)
	assert.Contains(t, r.errOut, "changes will not be saved")
	assert.Contains(t, r.out, "added node 1")

	data, err := os.ReadFile(filepath.Join(dir, "default.json"))
	require.NoError(t, err)
	assert.Equal(t, "{broken", string(data))

	r = execute(t, "", "--storage=file", "--storage-path="+dir, "show")
	require.Error(t, r.err, "one-shot commands refuse to run on a failed load")
}
