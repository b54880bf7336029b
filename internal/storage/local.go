package storage

import (
	"fmt"
	"io"
	"os"
	"path/filepath"

	"go-file-manager/internal/domain"
)

// LocalStorage persists blobs as plain files under a base directory.
type LocalStorage struct {
	dir string
}

func NewLocalStorage(dir string) (Storage, error) {
	if err := os.MkdirAll(dir, 0o755); err != nil {
		return nil, fmt.Errorf("failed to create storage directory: %w", err)
	}
	return &LocalStorage{dir: dir}, nil
}

func (s *LocalStorage) Save(key string, reader io.Reader) error {
	f, err := os.Create(filepath.Join(s.dir, filepath.Base(key)))
	if err != nil {
		return fmt.Errorf("failed to create blob file: %w", err)
	}
	defer f.Close()

	if _, err := io.Copy(f, reader); err != nil {
		return fmt.Errorf("failed to write blob file: %w", err)
	}
	return nil
}

func (s *LocalStorage) Open(key string) (io.ReadCloser, error) {
	f, err := os.Open(filepath.Join(s.dir, filepath.Base(key)))
	if err != nil {
		if os.IsNotExist(err) {
			return nil, &domain.NotFoundError{Message: "file not found in storage"}
		}
		return nil, fmt.Errorf("failed to open blob file: %w", err)
	}
	return f, nil
}

func (s *LocalStorage) Delete(key string) error {
	err := os.Remove(filepath.Join(s.dir, filepath.Base(key)))
	if err != nil && !os.IsNotExist(err) {
		return fmt.Errorf("failed to delete blob file: %w", err)
	}
	return nil
}
