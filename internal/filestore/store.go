// Package filestore persists workflow records as JSON files, one file per
// workflow id, inside a single directory.
package filestore

import (
	"context"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"regexp"

	"github.com/vk/stepflow/internal/ctxlog"
	"github.com/vk/stepflow/internal/graph"
	"github.com/vk/stepflow/internal/workflowstore"
)

// workflowIDRegex restricts ids to names that are safe as file names.
var workflowIDRegex = regexp.MustCompile(`^[a-zA-Z0-9_.-]+$`)

// Store is a file-backed implementation of workflowstore.Store.
type Store struct {
	dir string
}

// New creates a store rooted at dir, creating the directory if needed.
func New(dir string) (*Store, error) {
	if dir == "" {
		return nil, errors.New("filestore: directory must not be empty")
	}
	if err := os.MkdirAll(dir, 0o755); err != nil {
		return nil, fmt.Errorf("filestore: create directory %s: %w", dir, err)
	}
	return &Store{dir: dir}, nil
}

// Path returns the file that holds the record for workflowID.
func (s *Store) Path(workflowID string) (string, error) {
	if !workflowIDRegex.MatchString(workflowID) || workflowID == "." || workflowID == ".." {
		return "", fmt.Errorf("filestore: invalid workflow id %q", workflowID)
	}
	return filepath.Join(s.dir, workflowID+".json"), nil
}

// Load reads the record for workflowID. A missing file yields nil.
func (s *Store) Load(ctx context.Context, workflowID string) (*graph.Snapshot, error) {
	path, err := s.Path(workflowID)
	if err != nil {
		return nil, err
	}
	data, err := os.ReadFile(path)
	if err != nil {
		if errors.Is(err, os.ErrNotExist) {
			ctxlog.FromContext(ctx).Debug("No workflow record on disk.", "path", path)
			return nil, nil
		}
		return nil, fmt.Errorf("filestore: read %s: %w", path, err)
	}
	return workflowstore.Decode(data)
}

// Save writes the record to a temporary file and renames it into place, so
// a crash never leaves a half-written record behind.
func (s *Store) Save(ctx context.Context, workflowID string, snap graph.Snapshot) error {
	path, err := s.Path(workflowID)
	if err != nil {
		return err
	}
	data, err := workflowstore.Encode(snap)
	if err != nil {
		return err
	}

	tmp, err := os.CreateTemp(s.dir, workflowID+".*.tmp")
	if err != nil {
		return fmt.Errorf("filestore: create temp file: %w", err)
	}
	tmpName := tmp.Name()
	if _, err := tmp.Write(data); err != nil {
		tmp.Close()
		os.Remove(tmpName)
		return fmt.Errorf("filestore: write %s: %w", tmpName, err)
	}
	if err := tmp.Close(); err != nil {
		os.Remove(tmpName)
		return fmt.Errorf("filestore: close %s: %w", tmpName, err)
	}
	if err := os.Rename(tmpName, path); err != nil {
		os.Remove(tmpName)
		return fmt.Errorf("filestore: rename into %s: %w", path, err)
	}

	ctxlog.FromContext(ctx).Debug("Workflow record written.", "path", path, "bytes", len(data))
	return nil
}

// Delete removes the record file. A missing file is not an error.
func (s *Store) Delete(ctx context.Context, workflowID string) error {
	path, err := s.Path(workflowID)
	if err != nil {
		return err
	}
	if err := os.Remove(path); err != nil && !errors.Is(err, os.ErrNotExist) {
		return fmt.Errorf("filestore: remove %s: %w", path, err)
	}
	return nil
}

// Close is a no-op.
func (s *Store) Close() error {
	return nil
}
