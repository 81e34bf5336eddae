// Package localsession implements session.Session for a single process: one
// mutex serializes every command, so no two propagation passes ever overlap.
package localsession

import (
	"context"
	"errors"
	"fmt"
	"sync"

	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/codes"
	"go.opentelemetry.io/otel/trace"

	"github.com/vk/stepflow/internal/config"
	"github.com/vk/stepflow/internal/ctxlog"
	"github.com/vk/stepflow/internal/engine"
	"github.com/vk/stepflow/internal/graph"
	"github.com/vk/stepflow/internal/metrics"
	"github.com/vk/stepflow/internal/session"
	"github.com/vk/stepflow/internal/workflowstore"
)

const tracerName = "github.com/vk/stepflow/internal/localsession"

// Factory creates local sessions that share one store, engine, metrics set
// and tracer.
type Factory struct {
	store   workflowstore.Store
	engine  *engine.Engine
	metrics *metrics.Metrics
	tracer  trace.Tracer
}

// Option configures a Factory.
type Option func(*Factory)

// WithEngine overrides the default engine.
func WithEngine(e *engine.Engine) Option {
	return func(f *Factory) { f.engine = e }
}

// WithMetrics records session activity into m.
func WithMetrics(m *metrics.Metrics) Option {
	return func(f *Factory) { f.metrics = m }
}

// WithTracer overrides the tracer taken from the global provider.
func WithTracer(t trace.Tracer) Option {
	return func(f *Factory) { f.tracer = t }
}

// NewFactory creates a session factory backed by store.
func NewFactory(store workflowstore.Store, opts ...Option) *Factory {
	f := &Factory{
		store:  store,
		engine: engine.New(),
		tracer: otel.Tracer(tracerName),
	}
	for _, opt := range opts {
		opt(f)
	}
	return f
}

// NewSession creates a session for workflowID. The session is not loaded.
func (f *Factory) NewSession(ctx context.Context, workflowID string) (session.Session, error) {
	return f.Open(ctx, workflowID)
}

// Open is NewSession returning the concrete type.
func (f *Factory) Open(ctx context.Context, workflowID string) (*Session, error) {
	if workflowID == "" {
		return nil, errors.New("workflow id must not be empty")
	}
	ctxlog.FromContext(ctx).Debug("Session created.", "workflow", workflowID)
	return &Session{
		id:      workflowID,
		store:   f.store,
		engine:  f.engine,
		metrics: f.metrics,
		tracer:  f.tracer,
		graph:   graph.New(),
	}, nil
}

// Session is the local implementation of session.Session.
type Session struct {
	mu sync.Mutex

	id      string
	store   workflowstore.Store
	engine  *engine.Engine
	metrics *metrics.Metrics
	tracer  trace.Tracer

	graph *graph.Graph
	// loaded gates saves: nothing is persisted until Load succeeded, so an
	// empty startup graph can never overwrite a stored workflow.
	loaded bool
}

var _ session.Session = (*Session)(nil)

// WorkflowID returns the id the session persists under.
func (s *Session) WorkflowID() string {
	return s.id
}

// Loaded reports whether saves are enabled.
func (s *Session) Loaded() bool {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.loaded
}

// Snapshot returns an immutable copy of the current graph.
func (s *Session) Snapshot() graph.Snapshot {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.graph.Snapshot()
}

// Close logs the end of the session. The store belongs to the factory and
// stays open.
func (s *Session) Close(ctx context.Context) error {
	ctxlog.FromContext(ctx).Debug("Session closed.", "workflow", s.id)
	return nil
}

// Load restores the persisted graph.
func (s *Session) Load(ctx context.Context) (err error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	ctx, span := s.start(ctx, "load")
	defer func() { s.end(span, "load", session.Outcome{Applied: err == nil}, err) }()
	logger := ctxlog.FromContext(ctx)

	snap, err := s.store.Load(ctx, s.id)
	if err != nil {
		s.graph = graph.New()
		s.loaded = false
		s.observePersistenceError("load")
		logger.Warn("Failed to load workflow, continuing with an empty graph.", "error", err)
		return fmt.Errorf("load workflow %q: %w", s.id, err)
	}

	if snap == nil {
		logger.Debug("No persisted workflow, starting empty.")
		s.graph = graph.New()
	} else {
		s.graph = graph.FromSnapshot(ctx, *snap)
	}
	s.loaded = true
	s.observeSize()
	logger.Info("Workflow loaded.", "nodes", s.graph.Len(), "edges", s.graph.EdgeCount())
	return nil
}

// AddNode creates a node.
func (s *Session) AddNode(ctx context.Context, label string) (session.Outcome, error) {
	return s.mutate(ctx, "add_node", func(ctx context.Context) (session.Outcome, error) {
		id := s.engine.AddNode(ctx, s.graph, label)
		return session.Outcome{Applied: true, ID: id, Result: engine.Result{Converged: true}}, nil
	}, attribute.String("node.label", label))
}

// RemoveNode deletes a node and restarts the workflow from its roots.
func (s *Session) RemoveNode(ctx context.Context, id string) (session.Outcome, error) {
	return s.mutate(ctx, "remove_node", func(ctx context.Context) (session.Outcome, error) {
		res, ok := s.engine.RemoveNode(ctx, s.graph, id)
		return session.Outcome{Applied: ok, Result: res}, nil
	}, attribute.String("node.id", id))
}

// Connect adds a dependency edge.
func (s *Session) Connect(ctx context.Context, source, target string) (session.Outcome, error) {
	return s.mutate(ctx, "connect", func(ctx context.Context) (session.Outcome, error) {
		edgeID, err := s.engine.Connect(ctx, s.graph, source, target)
		if err != nil {
			return session.Outcome{}, err
		}
		return session.Outcome{Applied: edgeID != "", ID: edgeID, Result: engine.Result{Converged: true}}, nil
	}, attribute.String("edge.source", source), attribute.String("edge.target", target))
}

// Disconnect removes a dependency edge.
func (s *Session) Disconnect(ctx context.Context, edgeID string) (session.Outcome, error) {
	return s.mutate(ctx, "disconnect", func(ctx context.Context) (session.Outcome, error) {
		ok := s.engine.Disconnect(ctx, s.graph, edgeID)
		return session.Outcome{Applied: ok, Result: engine.Result{Converged: true}}, nil
	}, attribute.String("edge.id", edgeID))
}

// UpdateLabel stores a node's label.
func (s *Session) UpdateLabel(ctx context.Context, id, text string) (session.Outcome, error) {
	return s.mutate(ctx, "update_label", func(ctx context.Context) (session.Outcome, error) {
		ok := s.engine.UpdateLabel(ctx, s.graph, id, text)
		return session.Outcome{Applied: ok, Result: engine.Result{Converged: true}}, nil
	}, attribute.String("node.id", id))
}

// BeginEdit marks a node's label as being edited.
func (s *Session) BeginEdit(ctx context.Context, id string) (session.Outcome, error) {
	return s.mutate(ctx, "begin_edit", func(ctx context.Context) (session.Outcome, error) {
		ok := s.engine.BeginEdit(ctx, s.graph, id)
		return session.Outcome{Applied: ok, Result: engine.Result{Converged: true}}, nil
	}, attribute.String("node.id", id))
}

// ToggleComplete flips a node's completion and propagates the change.
func (s *Session) ToggleComplete(ctx context.Context, id string) (session.Outcome, error) {
	return s.mutate(ctx, "toggle_complete", func(ctx context.Context) (session.Outcome, error) {
		res, ok := s.engine.ToggleComplete(ctx, s.graph, id)
		if ok && s.metrics != nil {
			s.metrics.RelaxationPasses.Observe(float64(res.Passes))
		}
		return session.Outcome{Applied: ok, Result: res}, nil
	}, attribute.String("node.id", id))
}

// Import replaces the graph with one built from def.
func (s *Session) Import(ctx context.Context, def *config.Definition) (session.Outcome, error) {
	if def == nil {
		return session.Outcome{}, errors.New("import: nil definition")
	}
	return s.mutate(ctx, "import", func(ctx context.Context) (session.Outcome, error) {
		g, err := s.engine.Build(ctx, def)
		if err != nil {
			return session.Outcome{}, err
		}
		s.graph = g
		return session.Outcome{Applied: true, Result: engine.Result{Converged: true}}, nil
	}, attribute.Int("definition.steps", len(def.Steps)))
}

// Reset clears the graph and deletes the persisted record instead of saving
// an empty one. A fresh load afterwards behaves like a new workflow.
func (s *Session) Reset(ctx context.Context) (err error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	ctx, span := s.start(ctx, "reset")
	defer func() { s.end(span, "reset", session.Outcome{Applied: err == nil}, err) }()

	s.engine.Reset(ctx, s.graph)
	s.observeSize()
	if err := s.store.Delete(ctx, s.id); err != nil {
		s.observePersistenceError("delete")
		return fmt.Errorf("reset workflow %q: %w", s.id, err)
	}
	s.loaded = true
	ctxlog.FromContext(ctx).Info("Workflow reset.")
	return nil
}

// mutate runs op under the session lock, then persists the graph when op
// changed something and saves are enabled.
func (s *Session) mutate(
	ctx context.Context,
	name string,
	op func(ctx context.Context) (session.Outcome, error),
	attrs ...attribute.KeyValue,
) (out session.Outcome, err error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	ctx, span := s.start(ctx, name, attrs...)
	defer func() { s.end(span, name, out, err) }()
	logger := ctxlog.FromContext(ctx)

	out, err = op(ctx)
	if err != nil {
		logger.Debug("Operation rejected.", "operation", name, "error", err)
		return out, err
	}
	for _, t := range out.Result.Transitions {
		logger.Debug("Status transition.", "node_id", t.NodeID, "from", t.From.String(), "to", t.To.String())
		if s.metrics != nil {
			s.metrics.ObserveTransition(t.From.String(), t.To.String())
		}
	}
	s.observeSize()

	if !out.Applied {
		return out, nil
	}
	if !s.loaded {
		logger.Debug("Skipping save, workflow not loaded.", "operation", name)
		return out, nil
	}
	if err := s.store.Save(ctx, s.id, s.graph.Snapshot()); err != nil {
		s.observePersistenceError("save")
		logger.Error("Failed to save workflow.", "operation", name, "error", err)
		return out, fmt.Errorf("save workflow %q: %w", s.id, err)
	}
	return out, nil
}

func (s *Session) start(ctx context.Context, name string, attrs ...attribute.KeyValue) (context.Context, trace.Span) {
	logger := ctxlog.FromContext(ctx).With("workflow", s.id)
	ctx = ctxlog.WithLogger(ctx, logger)
	attrs = append(attrs, attribute.String("workflow.id", s.id))
	return s.tracer.Start(ctx, "session."+name, trace.WithAttributes(attrs...))
}

func (s *Session) end(span trace.Span, name string, out session.Outcome, err error) {
	result := metrics.ResultOK
	switch {
	case err != nil:
		result = metrics.ResultError
		span.RecordError(err)
		span.SetStatus(codes.Error, err.Error())
	case !out.Applied:
		result = metrics.ResultNoop
	}
	span.SetAttributes(
		attribute.Bool("applied", out.Applied),
		attribute.Int("transitions", len(out.Result.Transitions)),
	)
	span.End()
	if s.metrics != nil {
		s.metrics.ObserveOperation(name, result)
	}
}

func (s *Session) observeSize() {
	if s.metrics != nil {
		s.metrics.ObserveSize(s.id, s.graph.Len(), s.graph.EdgeCount())
	}
}

func (s *Session) observePersistenceError(call string) {
	if s.metrics != nil {
		s.metrics.PersistenceErrors.WithLabelValues(call).Inc()
	}
}
