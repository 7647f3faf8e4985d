package storage

import (
	"fmt"
	"io"
	"os"
	"path/filepath"
)

// Store writes uploaded files to a local media directory. Stored names are
// derived from freshly generated identifiers, so concurrent writers never
// collide on a path.
type Store struct {
	dir string
}

// NewStore creates the media directory if needed and returns a store for it
func NewStore(dir string) (*Store, error) {
	if err := os.MkdirAll(dir, 0o755); err != nil {
		return nil, fmt.Errorf("failed to create media directory: %w", err)
	}
	return &Store{dir: dir}, nil
}

// Path returns the absolute location of a stored file
func (s *Store) Path(filename string) string {
	// Base strips any directory components a caller could sneak in
	return filepath.Join(s.dir, filepath.Base(filename))
}

// Save writes the reader's content under the given name and returns the
// number of bytes written
func (s *Store) Save(filename string, r io.Reader) (int64, error) {
	f, err := os.Create(s.Path(filename))
	if err != nil {
		return 0, fmt.Errorf("failed to create file: %w", err)
	}
	defer f.Close()

	n, err := io.Copy(f, r)
	if err != nil {
		return n, fmt.Errorf("failed to write file: %w", err)
	}
	return n, nil
}

// Open opens a stored file for reading
func (s *Store) Open(filename string) (*os.File, error) {
	return os.Open(s.Path(filename))
}

// Exists reports whether a stored file is present on disk
func (s *Store) Exists(filename string) bool {
	_, err := os.Stat(s.Path(filename))
	return err == nil
}

// Remove deletes a stored file. Callers treat a failure here as a
// diagnostic: the metadata row is removed regardless.
func (s *Store) Remove(filename string) error {
	if err := os.Remove(s.Path(filename)); err != nil {
		return fmt.Errorf("failed to remove file: %w", err)
	}
	return nil
}
