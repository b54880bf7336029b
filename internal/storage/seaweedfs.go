package storage

import (
	"bytes"
	"fmt"
	"io"
	"net/url"

	"github.com/linxGnu/goseaweedfs"

	"go-file-manager/internal/config"
)

// SeaweedFSStorage implements the Storage interface against a SeaweedFS
// filer, addressing blobs by their key as the filer path.
type SeaweedFSStorage struct {
	client *goseaweedfs.Filer
}

func NewSeaweedFSStorage(cfg config.SeaweedFSConfig) (Storage, error) {
	client, err := goseaweedfs.NewFiler(cfg.FilerURL, nil)
	if err != nil {
		return nil, fmt.Errorf("failed to create SeaweedFS client: %w", err)
	}
	return &SeaweedFSStorage{client: client}, nil
}

func (s *SeaweedFSStorage) Save(key string, reader io.Reader) error {
	// The filer client does not stream uploads.
	data, err := io.ReadAll(reader)
	if err != nil {
		return fmt.Errorf("failed to read blob: %w", err)
	}

	if _, err := s.client.Upload(bytes.NewReader(data), int64(len(data)), key, "default", ""); err != nil {
		return fmt.Errorf("failed to upload blob to SeaweedFS: %w", err)
	}
	return nil
}

func (s *SeaweedFSStorage) Open(key string) (io.ReadCloser, error) {
	data, _, err := s.client.Get(key, url.Values{}, nil)
	if err != nil {
		return nil, fmt.Errorf("failed to download blob from SeaweedFS: %w", err)
	}
	return io.NopCloser(bytes.NewReader(data)), nil
}

func (s *SeaweedFSStorage) Delete(key string) error {
	if err := s.client.Delete(key, url.Values{}); err != nil {
		return fmt.Errorf("failed to delete blob from SeaweedFS: %w", err)
	}
	return nil
}
