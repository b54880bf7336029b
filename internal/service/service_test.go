package service

import (
	"bytes"
	"io"
	"log/slog"
	"testing"

	"github.com/glebarez/sqlite"
	"gorm.io/gorm"
	"gorm.io/gorm/logger"

	"go-file-manager/internal/domain"
	"go-file-manager/internal/models"
)

func newTestDB(t *testing.T) *gorm.DB {
	t.Helper()

	db, err := gorm.Open(sqlite.Open(":memory:"), &gorm.Config{
		Logger: logger.Default.LogMode(logger.Silent),
	})
	if err != nil {
		t.Fatalf("open test database: %v", err)
	}

	sqlDB, err := db.DB()
	if err != nil {
		t.Fatalf("unwrap test database: %v", err)
	}
	// A single connection keeps the in-memory database alive.
	sqlDB.SetMaxOpenConns(1)

	if err := db.Exec("PRAGMA foreign_keys = ON").Error; err != nil {
		t.Fatalf("enable foreign keys: %v", err)
	}

	if err := db.AutoMigrate(&models.Folder{}, &models.File{}, &models.FolderFile{}); err != nil {
		t.Fatalf("migrate test schema: %v", err)
	}
	return db
}

func testLogger() *slog.Logger {
	return slog.New(slog.NewTextHandler(io.Discard, nil))
}

func newFolderService(t *testing.T) *FolderService {
	t.Helper()
	return NewFolderService(newTestDB(t), testLogger())
}

func uintp(v uint) *uint         { return &v }
func strp(v string) *string      { return &v }
func boolp(v bool) *bool         { return &v }
func setID(v *uint) OptionalID   { return OptionalID{Set: true, Value: v} }

// stubStorage is an in-memory blob store with injectable failures.
type stubStorage struct {
	saveErr   error
	deleteErr error
	blobs     map[string][]byte
	deleted   []string
}

func newStubStorage() *stubStorage {
	return &stubStorage{blobs: make(map[string][]byte)}
}

func (s *stubStorage) Save(key string, reader io.Reader) error {
	if s.saveErr != nil {
		return s.saveErr
	}
	data, err := io.ReadAll(reader)
	if err != nil {
		return err
	}
	s.blobs[key] = data
	return nil
}

func (s *stubStorage) Open(key string) (io.ReadCloser, error) {
	data, ok := s.blobs[key]
	if !ok {
		return nil, &domain.NotFoundError{Message: "file not found in storage"}
	}
	return io.NopCloser(bytes.NewReader(data)), nil
}

func (s *stubStorage) Delete(key string) error {
	s.deleted = append(s.deleted, key)
	if s.deleteErr != nil {
		return s.deleteErr
	}
	delete(s.blobs, key)
	return nil
}
