package persist

import (
	"fmt"
	"os"
	"path/filepath"

	"github.com/akmistry/sparsevec/internal/sparsevector"
)

const tempFilePattern = ".temp-*"

// FileStore persists named SparseVector snapshots as files under a
// directory, writing each one atomically via a temp file plus rename so
// a crash mid-write never leaves a half-written snapshot in place.
type FileStore struct {
	dir string
}

// NewFileStore creates dir if necessary and returns a FileStore rooted
// there.
func NewFileStore(dir string) (*FileStore, error) {
	if err := os.MkdirAll(dir, 0755); err != nil {
		return nil, fmt.Errorf("persist.FileStore: error making dir %s: %w", dir, err)
	}
	return &FileStore{dir: dir}, nil
}

func (s *FileStore) path(name string) string {
	return filepath.Join(s.dir, name)
}

// Save encodes v and writes it to name, replacing any existing file of
// that name only once the new content is fully synced to disk.
func (s *FileStore) Save(name string, v *sparsevector.SparseVector[byte]) error {
	data, err := Dump(v)
	if err != nil {
		return err
	}

	f, err := os.CreateTemp(s.dir, tempFilePattern)
	if err != nil {
		return err
	}
	tempPath := f.Name()
	defer os.Remove(tempPath)

	if _, err := f.Write(data); err != nil {
		f.Close()
		return err
	}
	if err := f.Sync(); err != nil {
		f.Close()
		return err
	}
	if err := f.Close(); err != nil {
		return err
	}
	return os.Rename(tempPath, s.path(name))
}

// Load reads and decodes the SparseVector stored under name.
func (s *FileStore) Load(name string) (*sparsevector.SparseVector[byte], error) {
	data, err := os.ReadFile(s.path(name))
	if err != nil {
		return nil, err
	}
	return Load(data)
}

// Remove deletes the snapshot stored under name.
func (s *FileStore) Remove(name string) error {
	return os.Remove(s.path(name))
}
