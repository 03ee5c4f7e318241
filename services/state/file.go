package state

import (
	"errors"
	"fmt"
	"io/fs"
	"os"
	"path/filepath"

	"github.com/vmihailenco/msgpack/v5"
)

// FileStore keeps the count in a single msgpack-encoded file
type FileStore struct {
	dir  string
	name string
}

// NewFileStore creates a store writing to dir/name
func NewFileStore(dir, name string) *FileStore {
	return &FileStore{dir: dir, name: name}
}

// Path returns the location of the state file
func (s *FileStore) Path() string {
	return filepath.Join(s.dir, s.name)
}

// Load reads the saved count
func (s *FileStore) Load() (int, error) {
	data, err := os.ReadFile(s.Path())
	if errors.Is(err, fs.ErrNotExist) {
		return 0, ErrNotFound
	}
	if err != nil {
		return 0, fmt.Errorf("failed to read state file %s: %w", s.Path(), err)
	}

	var count int
	if err := msgpack.Unmarshal(data, &count); err != nil {
		return 0, fmt.Errorf("%w: %s: %v", ErrCorrupt, s.Path(), err)
	}
	if count < 0 {
		return 0, fmt.Errorf("%w: %s: negative count %d", ErrCorrupt, s.Path(), count)
	}
	return count, nil
}

// Save writes count to a temporary file and renames it over the state file
func (s *FileStore) Save(count int) error {
	data, err := msgpack.Marshal(count)
	if err != nil {
		return fmt.Errorf("failed to encode state: %w", err)
	}

	if err := os.MkdirAll(s.dir, 0755); err != nil {
		return fmt.Errorf("failed to create state directory %s: %w", s.dir, err)
	}

	tmp, err := os.CreateTemp(s.dir, s.name+".*.tmp")
	if err != nil {
		return fmt.Errorf("failed to create temporary state file: %w", err)
	}
	tmpName := tmp.Name()
	defer os.Remove(tmpName)

	if _, err := tmp.Write(data); err != nil {
		tmp.Close()
		return fmt.Errorf("failed to write state: %w", err)
	}
	if err := tmp.Sync(); err != nil {
		tmp.Close()
		return fmt.Errorf("failed to sync state: %w", err)
	}
	if err := tmp.Close(); err != nil {
		return fmt.Errorf("failed to close state file: %w", err)
	}

	if err := os.Rename(tmpName, s.Path()); err != nil {
		return fmt.Errorf("failed to replace state file %s: %w", s.Path(), err)
	}
	return nil
}
