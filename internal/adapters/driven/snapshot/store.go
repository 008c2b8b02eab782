// Package snapshot provides a file-based implementation of the snapshot
// store. Blobs are written with a temp-file-and-rename sequence so readers
// never observe partial writes.
package snapshot

import (
	"context"
	"fmt"
	"os"
	"path/filepath"

	"github.com/archivemed/dedup-cli/internal/core/domain"
	"github.com/archivemed/dedup-cli/internal/core/ports/driven"
)

// Ensure Store implements the interface.
var _ driven.SnapshotStore = (*Store)(nil)

// Store persists snapshot blobs as files in a single directory.
type Store struct {
	dir string
}

// NewStore creates a snapshot store rooted at the given directory.
// If dir is empty, defaults to ~/.meddedup/snapshots.
func NewStore(dir string) (*Store, error) {
	if dir == "" {
		home, err := os.UserHomeDir()
		if err != nil {
			return nil, fmt.Errorf("getting home directory: %w", err)
		}
		dir = filepath.Join(home, ".meddedup", "snapshots")
	}

	if err := os.MkdirAll(dir, 0700); err != nil {
		return nil, fmt.Errorf("creating snapshot directory: %w", err)
	}

	return &Store{dir: dir}, nil
}

// Store atomically replaces the named blob. The temp file is created in
// the target directory so the rename never crosses filesystems.
func (s *Store) Store(ctx context.Context, name string, data []byte) error {
	if err := ctx.Err(); err != nil {
		return err
	}

	tmp, err := os.CreateTemp(s.dir, name+".tmp-*")
	if err != nil {
		return fmt.Errorf("creating temp snapshot: %w", err)
	}
	tmpPath := tmp.Name()

	if _, err := tmp.Write(data); err != nil {
		tmp.Close()
		os.Remove(tmpPath)
		return fmt.Errorf("writing snapshot %s: %w", name, err)
	}
	if err := tmp.Close(); err != nil {
		os.Remove(tmpPath)
		return fmt.Errorf("closing snapshot %s: %w", name, err)
	}

	if err := os.Rename(tmpPath, filepath.Join(s.dir, name)); err != nil {
		os.Remove(tmpPath)
		return fmt.Errorf("replacing snapshot %s: %w", name, err)
	}
	return nil
}

// Load returns the named blob, or domain.ErrNotFound if it is missing.
func (s *Store) Load(ctx context.Context, name string) ([]byte, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}

	data, err := os.ReadFile(filepath.Join(s.dir, name))
	if err != nil {
		if os.IsNotExist(err) {
			return nil, domain.ErrNotFound
		}
		return nil, fmt.Errorf("reading snapshot %s: %w", name, err)
	}
	return data, nil
}

// Path returns the snapshot directory.
func (s *Store) Path() string {
	return s.dir
}
