package storage

import (
	"fmt"
	"io"
	"path/filepath"
	"regexp"
	"strings"

	"github.com/google/uuid"

	"go-file-manager/internal/config"
)

// Provider represents the type of storage being used
type Provider string

const (
	Local     Provider = "local"
	S3        Provider = "s3"
	SeaweedFS Provider = "seaweedfs"
)

// Storage is the blob store collaborator: bytes in and out by key.
// Failures on Delete are advisory; the database row stays authoritative.
type Storage interface {
	Save(key string, reader io.Reader) error
	Open(key string) (io.ReadCloser, error)
	Delete(key string) error
}

var unsafeKeyChars = regexp.MustCompile(`[^a-zA-Z0-9_.-]`)

// BuildKey derives the blob key for a file: the row id plus a random
// component, keeping the sanitized original name for operators.
func BuildKey(fileID uint, name string) string {
	ext := filepath.Ext(name)
	base := strings.TrimSuffix(filepath.Base(name), ext)
	sanitized := unsafeKeyChars.ReplaceAllString(base, "_")
	return fmt.Sprintf("%d_%s_%s%s", fileID, uuid.New().String()[:8], sanitized, ext)
}

// New creates the storage provider selected by configuration.
func New(cfg *config.Config) (Storage, error) {
	switch Provider(strings.ToLower(cfg.Storage.Provider)) {
	case Local:
		return NewLocalStorage(cfg.Storage.Path)
	case S3:
		return NewS3Storage(cfg.Storage.S3)
	case SeaweedFS:
		return NewSeaweedFSStorage(cfg.Storage.SeaweedFS)
	default:
		return nil, fmt.Errorf("unsupported storage provider: %s", cfg.Storage.Provider)
	}
}
