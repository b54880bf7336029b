package service

import (
	"context"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"strings"

	validation "github.com/go-ozzo/ozzo-validation/v4"
	"gorm.io/gorm"

	"go-file-manager/internal/domain"
	"go-file-manager/internal/models"
	"go-file-manager/internal/storage"
)

// FileService manages file rows and their folder memberships, reusing
// the folder tree's path derivation and a file-scoped uniqueness rule.
type FileService struct {
	db      *gorm.DB
	blobs   storage.Storage
	baseURL string
	logger  *slog.Logger
}

func NewFileService(db *gorm.DB, blobs storage.Storage, baseURL string, logger *slog.Logger) *FileService {
	return &FileService{
		db:      db,
		blobs:   blobs,
		baseURL: strings.TrimRight(baseURL, "/"),
		logger:  logger,
	}
}

type CreateFileRequest struct {
	Name     string  `json:"name"`
	FolderID *uint   `json:"folderId"`
	MimeType *string `json:"mimeType"`
	Size     int64   `json:"size"`
}

func (r CreateFileRequest) Validate() error {
	if err := validation.Validate(strings.TrimSpace(r.Name),
		validation.Required.Error("file name is required"),
		validation.Length(1, 255),
		validation.Match(nodeName).Error("file name cannot contain path separators"),
	); err != nil {
		return err
	}
	return validation.Validate(r.Size, validation.Min(0).Error("file size cannot be negative"))
}

// UploadFileRequest carries the multipart upload: metadata plus the
// byte stream handed to the blob store.
type UploadFileRequest struct {
	Name     string
	MimeType *string
	Size     int64
	Content  io.Reader
	FolderID *uint
}

func (r UploadFileRequest) Validate() error {
	return validation.Validate(strings.TrimSpace(r.Name),
		validation.Required.Error("file name is required"),
		validation.Length(1, 255),
		validation.Match(nodeName).Error("file name cannot contain path separators"),
	)
}

type UpdateFileRequest struct {
	Name     *string    `json:"name"`
	FolderID OptionalID `json:"folderId"`
	MimeType *string    `json:"mimeType"`
	Size     *int64     `json:"size"`
}

func (r UpdateFileRequest) Validate() error {
	if r.Name == nil {
		return nil
	}
	return validation.Validate(strings.TrimSpace(*r.Name),
		validation.Required.Error("file name is required"),
		validation.Length(1, 255),
		validation.Match(nodeName).Error("file name cannot contain path separators"),
	)
}

// FindAll returns every file row ordered by path.
func (s *FileService) FindAll(ctx context.Context) ([]models.File, error) {
	var files []models.File
	err := s.db.WithContext(ctx).Order("path ASC").Find(&files).Error
	return files, err
}

// FindByID returns the file row, or nil without an error when missing.
func (s *FileService) FindByID(ctx context.Context, id uint) (*models.File, error) {
	var file models.File
	err := s.db.WithContext(ctx).Take(&file, id).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, nil
	}
	if err != nil {
		return nil, err
	}
	return &file, nil
}

// FindByFolderID lists files in a folder, or root-level files (those
// without a membership row) when folderID is nil. Ordered by name.
func (s *FileService) FindByFolderID(ctx context.Context, folderID *uint) ([]models.FileWithFolder, error) {
	db := s.db.WithContext(ctx)
	var files []models.File
	var err error

	if folderID == nil {
		err = db.Where("id NOT IN (?)", db.Model(&models.FolderFile{}).Select("file_id")).
			Order("name ASC").Find(&files).Error
	} else {
		err = db.Joins("INNER JOIN folder_files ON folder_files.file_id = files.id").
			Where("folder_files.folder_id = ?", *folderID).
			Order("files.name ASC").Find(&files).Error
	}
	if err != nil {
		return nil, err
	}

	results := make([]models.FileWithFolder, 0, len(files))
	for _, file := range files {
		results = append(results, s.withURLs(file, folderID))
	}
	return results, nil
}

// Create inserts a file row (no bytes), then its membership row when a
// folder was given.
func (s *FileService) Create(ctx context.Context, req CreateFileRequest) (*models.FileWithFolder, error) {
	if err := req.Validate(); err != nil {
		return nil, &domain.ValidationError{Message: err.Error()}
	}
	name := strings.TrimSpace(req.Name)

	if err := s.validateTarget(ctx, name, req.FolderID, 0); err != nil {
		return nil, err
	}

	path, err := s.buildPath(ctx, name, req.FolderID)
	if err != nil {
		return nil, err
	}

	file := &models.File{
		Name:     name,
		Path:     path,
		MimeType: req.MimeType,
		Size:     req.Size,
	}
	err = s.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		if err := tx.Create(file).Error; err != nil {
			return err
		}
		if req.FolderID != nil {
			return tx.Create(&models.FolderFile{FileID: file.ID, FolderID: *req.FolderID}).Error
		}
		return nil
	})
	if err != nil {
		return nil, err
	}

	result := s.withURLs(*file, req.FolderID)
	return &result, nil
}

// CreateWithUpload inserts the row, saves the blob, then records the
// storage key and membership. A blob-store failure rolls the row back
// and re-raises, so no orphan row survives a failed upload.
func (s *FileService) CreateWithUpload(ctx context.Context, req UploadFileRequest) (*models.FileWithFolder, error) {
	if err := req.Validate(); err != nil {
		return nil, &domain.ValidationError{Message: err.Error()}
	}
	name := strings.TrimSpace(req.Name)

	if err := s.validateTarget(ctx, name, req.FolderID, 0); err != nil {
		return nil, err
	}

	path, err := s.buildPath(ctx, name, req.FolderID)
	if err != nil {
		return nil, err
	}

	file := &models.File{
		Name:     name,
		Path:     path,
		MimeType: req.MimeType,
		Size:     req.Size,
	}
	var savedKey string
	err = s.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		if err := tx.Create(file).Error; err != nil {
			return err
		}

		key := storage.BuildKey(file.ID, name)
		if err := s.blobs.Save(key, req.Content); err != nil {
			return &domain.StorageError{Op: "save", Err: err}
		}
		savedKey = key

		if err := tx.Model(&models.File{}).Where("id = ?", file.ID).
			Update("storage_path", key).Error; err != nil {
			return err
		}

		if req.FolderID != nil {
			return tx.Create(&models.FolderFile{FileID: file.ID, FolderID: *req.FolderID}).Error
		}
		return nil
	})
	if err != nil {
		// The rollback removed the row; clean up a blob that made it in
		// before a later step failed.
		if savedKey != "" {
			if delErr := s.blobs.Delete(savedKey); delErr != nil {
				s.logger.Warn("failed to clean up blob after aborted upload",
					"key", savedKey, "error", delErr)
			}
		}
		s.logger.Error("upload failed", "name", name, "error", err)
		return nil, err
	}

	fresh, err := s.FindByID(ctx, file.ID)
	if err != nil {
		return nil, err
	}

	s.logger.Info("file uploaded", "id", file.ID, "path", file.Path, "key", savedKey)
	result := s.withURLs(*fresh, req.FolderID)
	return &result, nil
}

// Update renames a file, changes its metadata, or moves it between
// folders. A missing target is reported as a nil result.
func (s *FileService) Update(ctx context.Context, id uint, req UpdateFileRequest) (*models.FileWithFolder, error) {
	if err := req.Validate(); err != nil {
		return nil, &domain.ValidationError{Message: err.Error()}
	}

	existing, err := s.FindByID(ctx, id)
	if err != nil {
		return nil, err
	}
	if existing == nil {
		return nil, nil
	}

	currentFolderID, err := s.folderIDOf(ctx, id)
	if err != nil {
		return nil, err
	}

	finalName := existing.Name
	if req.Name != nil {
		finalName = strings.TrimSpace(*req.Name)
	}
	finalFolder := currentFolderID
	if req.FolderID.Set {
		finalFolder = req.FolderID.Value
	}

	folderChanging := req.FolderID.Set && !uintPtrEqual(req.FolderID.Value, currentFolderID)

	if folderChanging {
		if err := s.validateTarget(ctx, finalName, req.FolderID.Value, id); err != nil {
			return nil, err
		}
	} else if req.Name != nil && finalName != existing.Name {
		// A rename still has to be unique within the current scope.
		exists, err := s.siblingExists(ctx, finalName, currentFolderID, id)
		if err != nil {
			return nil, err
		}
		if exists {
			return nil, s.conflictFor(currentFolderID)
		}
	}

	newPath := existing.Path
	if req.Name != nil || req.FolderID.Set {
		newPath, err = s.buildPath(ctx, finalName, finalFolder)
		if err != nil {
			return nil, err
		}
	}

	updates := map[string]interface{}{}
	if req.Name != nil {
		updates["name"] = finalName
	}
	if req.MimeType != nil {
		updates["mime_type"] = *req.MimeType
	}
	if req.Size != nil {
		updates["size"] = *req.Size
	}
	if newPath != existing.Path {
		updates["path"] = newPath
	}

	if len(updates) == 0 && !folderChanging {
		result := s.withURLs(*existing, currentFolderID)
		return &result, nil
	}

	err = s.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		if len(updates) > 0 {
			if err := tx.Model(&models.File{}).Where("id = ?", id).Updates(updates).Error; err != nil {
				return err
			}
		}
		if folderChanging {
			if err := tx.Where("file_id = ?", id).Delete(&models.FolderFile{}).Error; err != nil {
				return err
			}
			if req.FolderID.Value != nil {
				return tx.Create(&models.FolderFile{FileID: id, FolderID: *req.FolderID.Value}).Error
			}
		}
		return nil
	})
	if err != nil {
		return nil, err
	}

	fresh, err := s.FindByID(ctx, id)
	if err != nil {
		return nil, err
	}

	result := s.withURLs(*fresh, finalFolder)
	return &result, nil
}

// Delete removes the row, then asks the blob store to drop the bytes.
// The database delete is authoritative; blob cleanup failing is only
// logged and never fails the delete.
func (s *FileService) Delete(ctx context.Context, id uint) (bool, error) {
	existing, err := s.FindByID(ctx, id)
	if err != nil {
		return false, err
	}

	result := s.db.WithContext(ctx).Delete(&models.File{}, id)
	if result.Error != nil {
		return false, result.Error
	}

	if result.RowsAffected > 0 && existing != nil && existing.StoragePath != nil {
		if err := s.blobs.Delete(*existing.StoragePath); err != nil {
			s.logger.Warn("failed to delete blob; row removed anyway",
				"file_id", id, "key", *existing.StoragePath, "error", err)
		}
	}
	return result.RowsAffected > 0, nil
}

// OpenBlob streams the stored bytes of a file for preview/download.
func (s *FileService) OpenBlob(file *models.File) (io.ReadCloser, error) {
	if file.StoragePath == nil {
		return nil, &domain.NotFoundError{Message: "file has no stored content"}
	}
	return s.blobs.Open(*file.StoragePath)
}

// FolderIDOf resolves a file's current membership (nil = root).
func (s *FileService) FolderIDOf(ctx context.Context, id uint) (*uint, error) {
	return s.folderIDOf(ctx, id)
}

func (s *FileService) folderIDOf(ctx context.Context, id uint) (*uint, error) {
	var link models.FolderFile
	err := s.db.WithContext(ctx).Where("file_id = ?", id).Take(&link).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, nil
	}
	if err != nil {
		return nil, err
	}
	return &link.FolderID, nil
}

// validateTarget checks that the destination folder exists and that no
// sibling file claims the name there.
func (s *FileService) validateTarget(ctx context.Context, name string, folderID *uint, excludeID uint) error {
	if folderID != nil {
		var folder models.Folder
		err := s.db.WithContext(ctx).Take(&folder, *folderID).Error
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return &domain.NotFoundError{Message: "folder not found"}
		}
		if err != nil {
			return err
		}
	}

	exists, err := s.siblingExists(ctx, name, folderID, excludeID)
	if err != nil {
		return err
	}
	if exists {
		return s.conflictFor(folderID)
	}
	return nil
}

func (s *FileService) conflictFor(folderID *uint) error {
	if folderID == nil {
		return &domain.ConflictError{Message: "a file with this name already exists in the root"}
	}
	return &domain.ConflictError{Message: "a file with this name already exists in the same folder"}
}

// siblingExists checks name uniqueness within a membership scope. Root
// scope means files without a membership row.
func (s *FileService) siblingExists(ctx context.Context, name string, folderID *uint, excludeID uint) (bool, error) {
	db := s.db.WithContext(ctx)
	q := db.Model(&models.File{}).Where("files.name = ?", name)
	if folderID == nil {
		q = q.Where("files.id NOT IN (?)", db.Model(&models.FolderFile{}).Select("file_id"))
	} else {
		q = q.Joins("INNER JOIN folder_files ON folder_files.file_id = files.id").
			Where("folder_files.folder_id = ?", *folderID)
	}
	if excludeID != 0 {
		q = q.Where("files.id <> ?", excludeID)
	}

	var count int64
	if err := q.Count(&count).Error; err != nil {
		return false, err
	}
	return count > 0, nil
}

// buildPath derives the file's materialized path from its membership.
func (s *FileService) buildPath(ctx context.Context, name string, folderID *uint) (string, error) {
	if folderID == nil {
		return "/" + name, nil
	}

	var folder models.Folder
	err := s.db.WithContext(ctx).Take(&folder, *folderID).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return "", &domain.NotFoundError{Message: "folder not found"}
	}
	if err != nil {
		return "", err
	}
	return folder.Path + "/" + name, nil
}

// withURLs annotates a file with preview/download URLs; both are pure
// functions of the id and base URL, nothing is stored.
func (s *FileService) withURLs(file models.File, folderID *uint) models.FileWithFolder {
	return models.FileWithFolder{
		File:        file,
		FolderID:    folderID,
		PreviewURL:  fmt.Sprintf("%s/api/files/%d/preview", s.baseURL, file.ID),
		DownloadURL: fmt.Sprintf("%s/api/files/%d/download", s.baseURL, file.ID),
	}
}
