package storage

import (
	"fmt"
	"os"
	"path/filepath"

	"github.com/gofrs/flock"
)

const (
	blobFileMode = 0600
	dirMode      = 0700
	lockFile     = ".lock"
)

// FileBackend stores each blob as a file under the vault directory. A file
// lock guards mutations so two processes cannot interleave writes to the
// shared collection.
type FileBackend struct {
	dir  string
	lock *flock.Flock
}

// NewFileBackend creates the vault directory if needed.
func NewFileBackend(dir string) (*FileBackend, error) {
	if err := os.MkdirAll(dir, dirMode); err != nil {
		return nil, fmt.Errorf("failed to create vault directory: %w", err)
	}
	return &FileBackend{
		dir:  dir,
		lock: flock.New(filepath.Join(dir, lockFile)),
	}, nil
}

// Dir returns the vault directory.
func (fb *FileBackend) Dir() string {
	return fb.dir
}

func (fb *FileBackend) path(key string) string {
	return filepath.Join(fb.dir, key+".blob")
}

// Get reads the blob stored under key.
func (fb *FileBackend) Get(key string) ([]byte, error) {
	data, err := os.ReadFile(fb.path(key))
	if err != nil {
		if os.IsNotExist(err) {
			return nil, ErrNotFound
		}
		return nil, fmt.Errorf("failed to read %s: %w", key, err)
	}
	return data, nil
}

// Set writes the blob stored under key.
func (fb *FileBackend) Set(key string, value []byte) error {
	if err := fb.lock.Lock(); err != nil {
		return fmt.Errorf("failed to lock vault directory: %w", err)
	}
	defer fb.lock.Unlock() //nolint:errcheck

	if err := os.WriteFile(fb.path(key), value, blobFileMode); err != nil {
		return fmt.Errorf("failed to write %s: %w", key, err)
	}
	return nil
}

// Delete removes the blob stored under key. Deleting an absent blob is not
// an error.
func (fb *FileBackend) Delete(key string) error {
	if err := fb.lock.Lock(); err != nil {
		return fmt.Errorf("failed to lock vault directory: %w", err)
	}
	defer fb.lock.Unlock() //nolint:errcheck

	if err := os.Remove(fb.path(key)); err != nil && !os.IsNotExist(err) {
		return fmt.Errorf("failed to delete %s: %w", key, err)
	}
	return nil
}

// Clear removes every blob file.
func (fb *FileBackend) Clear() error {
	if err := fb.lock.Lock(); err != nil {
		return fmt.Errorf("failed to lock vault directory: %w", err)
	}
	defer fb.lock.Unlock() //nolint:errcheck

	entries, err := os.ReadDir(fb.dir)
	if err != nil {
		return fmt.Errorf("failed to read vault directory: %w", err)
	}
	for _, entry := range entries {
		if entry.IsDir() || filepath.Ext(entry.Name()) != ".blob" {
			continue
		}
		if err := os.Remove(filepath.Join(fb.dir, entry.Name())); err != nil {
			return fmt.Errorf("failed to delete %s: %w", entry.Name(), err)
		}
	}
	return nil
}
