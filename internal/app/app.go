package app

import (
	"context"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"net/http"

	"github.com/google/uuid"

	"github.com/vk/stepflow/internal/ctxlog"
	"github.com/vk/stepflow/internal/localsession"
	"github.com/vk/stepflow/internal/metrics"
	"github.com/vk/stepflow/internal/workflowstore"
)

// App encapsulates the application's dependencies, configuration, and lifecycle.
type App struct {
	logger    *slog.Logger
	config    *Config
	sessionID string

	store   workflowstore.Store
	metrics *metrics.Metrics
	factory *localsession.Factory

	httpServer *http.Server
}

// NewApp is the constructor for the main application. It builds an isolated
// logger, tags it with a fresh process session id and connects the store.
// Logs are written to logW.
func NewApp(ctx context.Context, logW io.Writer, cfg *Config) (*App, error) {
	sessionID := uuid.NewString()
	logger := newLogger(cfg.LogLevel, cfg.LogFormat, logW).With("session_id", sessionID)
	ctx = ctxlog.WithLogger(ctx, logger)
	logger.Debug("Logger configured successfully.")

	store, err := openStore(ctx, cfg.Storage)
	if err != nil {
		return nil, fmt.Errorf("failed to open %s store: %w", cfg.Storage.Driver, err)
	}
	return newApp(logger, cfg, sessionID, store), nil
}

// NewAppWithStore is NewApp over an already opened store.
func NewAppWithStore(logW io.Writer, cfg *Config, store workflowstore.Store) *App {
	sessionID := uuid.NewString()
	logger := newLogger(cfg.LogLevel, cfg.LogFormat, logW).With("session_id", sessionID)
	return newApp(logger, cfg, sessionID, store)
}

func newApp(logger *slog.Logger, cfg *Config, sessionID string, store workflowstore.Store) *App {
	m := metrics.New()
	app := &App{
		logger:    logger,
		config:    cfg,
		sessionID: sessionID,
		store:     store,
		metrics:   m,
		factory:   localsession.NewFactory(store, localsession.WithMetrics(m)),
	}
	logger.Debug("App initialized.", "workflow", cfg.WorkflowID, "driver", cfg.Storage.Driver)
	return app
}

// Context returns ctx carrying the app logger.
func (app *App) Context(ctx context.Context) context.Context {
	return ctxlog.WithLogger(ctx, app.logger)
}

// Config returns the validated configuration.
func (app *App) Config() *Config {
	return app.config
}

// SessionID returns the id attached to every log line of this process.
func (app *App) SessionID() string {
	return app.sessionID
}

// Metrics returns the app's collectors.
func (app *App) Metrics() *metrics.Metrics {
	return app.metrics
}

// OpenSession creates the session for the configured workflow and loads it.
// A load error is returned together with the usable, unsaved session so the
// caller can decide whether to continue.
func (app *App) OpenSession(ctx context.Context) (*localsession.Session, error) {
	ctx = app.Context(ctx)
	s, err := app.factory.Open(ctx, app.config.WorkflowID)
	if err != nil {
		return nil, err
	}
	if err := s.Load(ctx); err != nil {
		return s, err
	}
	return s, nil
}

// Close stops the HTTP server, if running, and closes the store.
func (app *App) Close(ctx context.Context) error {
	ctx = app.Context(ctx)
	serverErr := app.closeHealthCheckServer(ctx)
	storeErr := app.store.Close()
	if storeErr != nil {
		storeErr = fmt.Errorf("failed to close store: %w", storeErr)
	}
	app.logger.Debug("App closed.")
	return errors.Join(serverErr, storeErr)
}
