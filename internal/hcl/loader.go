package hcl

import (
	"context"
	"fmt"
	"os"

	"github.com/hashicorp/hcl/v2/gohcl"
	"github.com/hashicorp/hcl/v2/hclparse"

	"github.com/vk/stepflow/internal/config"
	"github.com/vk/stepflow/internal/ctxlog"
	"github.com/vk/stepflow/internal/fsutil"
)

// Loader is the HCL-specific implementation of the config.Loader interface.
type Loader struct {
	environ func() []string
}

var _ config.Loader = (*Loader)(nil)

// Option configures a Loader.
type Option func(*Loader)

// WithEnviron replaces os.Environ as the source of the `env` object.
func WithEnviron(environ func() []string) Option {
	return func(l *Loader) { l.environ = environ }
}

// NewLoader creates a new HCL configuration loader.
func NewLoader(opts ...Option) *Loader {
	l := &Loader{environ: os.Environ}
	for _, opt := range opts {
		opt(l)
	}
	return l
}

// LoadSettings parses the settings file at path into a config.Model.
// Attributes that are not present stay at their zero value.
func (l *Loader) LoadSettings(ctx context.Context, path string) (*config.Model, error) {
	logger := ctxlog.FromContext(ctx)
	logger.Debug("Loading settings file.", "path", path)

	parser := hclparse.NewParser()
	file, diags := parser.ParseHCLFile(path)
	if diags.HasErrors() {
		return nil, fmt.Errorf("failed to parse settings file %s: %w", path, diags)
	}

	var root settingsFile
	diags = gohcl.DecodeBody(file.Body, newEvalContext(l.environ()), &root)
	if diags.HasErrors() {
		return nil, fmt.Errorf("failed to decode settings file %s: %w", path, diags)
	}

	model := &config.Model{
		WorkflowID:      root.WorkflowID,
		HealthcheckPort: root.HealthcheckPort,
	}
	if root.Log != nil {
		model.Log = config.Log{Level: root.Log.Level, Format: root.Log.Format}
	}
	if s := root.Storage; s != nil {
		model.Storage = config.Storage{
			Driver:    s.Driver,
			Path:      s.Path,
			Address:   s.Address,
			Password:  s.Password,
			DB:        s.DB,
			KeyPrefix: s.KeyPrefix,
			DSN:       s.DSN,
			Table:     s.Table,
		}
	}

	logger.Debug("Settings file loaded.", "workflow", model.WorkflowID, "driver", model.Storage.Driver)
	return model, nil
}

// LoadDefinition parses every .hcl file under paths and returns their steps
// in discovery order. Files within a directory are visited lexically.
func (l *Loader) LoadDefinition(ctx context.Context, paths ...string) (*config.Definition, error) {
	logger := ctxlog.FromContext(ctx)
	logger.Debug("HCL definition loader started.", "path_count", len(paths))

	files, err := fsutil.CollectFiles(paths, ".hcl")
	if err != nil {
		return nil, err
	}
	if len(files) == 0 {
		return nil, fmt.Errorf("no .hcl files found in %v", paths)
	}
	logger.Debug("Discovered HCL files.", "count", len(files))

	parser := hclparse.NewParser()
	evalCtx := newEvalContext(l.environ())
	def := &config.Definition{}

	for _, path := range files {
		file, diags := parser.ParseHCLFile(path)
		if diags.HasErrors() {
			return nil, fmt.Errorf("failed to parse HCL file %s: %w", path, diags)
		}

		var root definitionFile
		diags = gohcl.DecodeBody(file.Body, evalCtx, &root)
		if diags.HasErrors() {
			return nil, fmt.Errorf("failed to decode HCL file %s: %w", path, diags)
		}

		for _, s := range root.Steps {
			def.Steps = append(def.Steps, &config.StepDefinition{
				Name:      s.Name,
				Label:     s.Label,
				DependsOn: s.DependsOn,
				Source:    path,
			})
		}
	}

	logger.Debug("HCL definition loading complete.", "steps", len(def.Steps))
	return def, nil
}
