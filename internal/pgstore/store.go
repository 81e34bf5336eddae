// Package pgstore persists workflow records in PostgreSQL as JSONB rows keyed
// by workflow id.
package pgstore

import (
	"context"
	"errors"
	"fmt"
	"regexp"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"
	"github.com/vk/stepflow/internal/ctxlog"
	"github.com/vk/stepflow/internal/graph"
	"github.com/vk/stepflow/internal/workflowstore"
)

// DefaultTable is the table used when none is configured.
const DefaultTable = "stepflow_workflows"

var tableNameRegex = regexp.MustCompile(`^[a-zA-Z_][a-zA-Z0-9_]*$`)

// Store is a PostgreSQL-backed implementation of workflowstore.Store.
type Store struct {
	pool  *pgxpool.Pool
	table string
}

// NewPool creates a new PostgreSQL connection pool.
func NewPool(ctx context.Context, connStr string) (*pgxpool.Pool, error) {
	config, err := pgxpool.ParseConfig(connStr)
	if err != nil {
		return nil, fmt.Errorf("parse db config: %w", err)
	}

	pool, err := pgxpool.NewWithConfig(ctx, config)
	if err != nil {
		return nil, fmt.Errorf("create pool: %w", err)
	}

	if err := pool.Ping(ctx); err != nil {
		pool.Close()
		return nil, fmt.Errorf("ping db: %w", err)
	}

	return pool, nil
}

// New connects to the database at dsn and ensures the table exists.
func New(ctx context.Context, dsn, table string) (*Store, error) {
	if dsn == "" {
		return nil, errors.New("pgstore: dsn must not be empty")
	}
	if table == "" {
		table = DefaultTable
	}
	if !tableNameRegex.MatchString(table) {
		return nil, fmt.Errorf("pgstore: invalid table name %q", table)
	}

	pool, err := NewPool(ctx, dsn)
	if err != nil {
		return nil, fmt.Errorf("pgstore: %w", err)
	}
	s := &Store{pool: pool, table: table}
	if err := s.migrate(ctx); err != nil {
		pool.Close()
		return nil, err
	}
	return s, nil
}

func (s *Store) ident() string {
	return pgx.Identifier{s.table}.Sanitize()
}

func (s *Store) migrate(ctx context.Context) error {
	_, err := s.pool.Exec(ctx, fmt.Sprintf(`
		CREATE TABLE IF NOT EXISTS %s (
			id TEXT PRIMARY KEY,
			record JSONB NOT NULL,
			updated_at TIMESTAMPTZ NOT NULL DEFAULT NOW()
		)
	`, s.ident()))
	if err != nil {
		return fmt.Errorf("pgstore: create table %s: %w", s.table, err)
	}
	ctxlog.FromContext(ctx).Debug("Workflow table ready.", "table", s.table)
	return nil
}

// Load reads the record for workflowID. A missing row yields nil.
func (s *Store) Load(ctx context.Context, workflowID string) (*graph.Snapshot, error) {
	var data []byte
	err := s.pool.QueryRow(ctx,
		fmt.Sprintf(`SELECT record FROM %s WHERE id = $1`, s.ident()), workflowID).Scan(&data)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, nil
		}
		return nil, fmt.Errorf("pgstore: select %s: %w", workflowID, err)
	}
	return workflowstore.Decode(data)
}

// Save upserts the record for workflowID.
func (s *Store) Save(ctx context.Context, workflowID string, snap graph.Snapshot) error {
	data, err := workflowstore.Encode(snap)
	if err != nil {
		return err
	}
	_, err = s.pool.Exec(ctx, fmt.Sprintf(`
		INSERT INTO %s (id, record, updated_at) VALUES ($1, $2, NOW())
		ON CONFLICT (id) DO UPDATE SET record = EXCLUDED.record, updated_at = NOW()
	`, s.ident()), workflowID, data)
	if err != nil {
		return fmt.Errorf("pgstore: upsert %s: %w", workflowID, err)
	}
	return nil
}

// Delete removes the row for workflowID. A missing row is not an error.
func (s *Store) Delete(ctx context.Context, workflowID string) error {
	_, err := s.pool.Exec(ctx, fmt.Sprintf(`DELETE FROM %s WHERE id = $1`, s.ident()), workflowID)
	if err != nil {
		return fmt.Errorf("pgstore: delete %s: %w", workflowID, err)
	}
	return nil
}

// Close closes the connection pool.
func (s *Store) Close() error {
	s.pool.Close()
	return nil
}
