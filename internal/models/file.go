package models

import (
	"time"
)

// File represents a file row. Folder membership lives in the separate
// folder_files relation; a file without a row there is root-level.
type File struct {
	ID          uint      `json:"id" gorm:"primarykey"`
	Name        string    `json:"name" gorm:"size:255;not null"`
	Path        string    `json:"path" gorm:"size:1024;not null;index"`
	MimeType    *string   `json:"mimeType" gorm:"size:255"`
	Size        int64     `json:"size" gorm:"not null;default:0"`
	StoragePath *string   `json:"storagePath" gorm:"size:1024"`
	CreatedAt   time.Time `json:"createdAt"`
	UpdatedAt   time.Time `json:"updatedAt"`
}

// TableName specifies the table name for the File model
func (File) TableName() string {
	return "files"
}

// FolderFile links a file to at most one folder. FileID is the primary
// key, so a second membership row for the same file cannot exist.
type FolderFile struct {
	FileID   uint `json:"fileId" gorm:"primarykey;autoIncrement:false"`
	FolderID uint `json:"folderId" gorm:"not null;index"`

	File   File   `json:"-" gorm:"foreignKey:FileID;constraint:OnDelete:CASCADE"`
	Folder Folder `json:"-" gorm:"foreignKey:FolderID;constraint:OnDelete:CASCADE"`
}

// TableName specifies the table name for the FolderFile model
func (FolderFile) TableName() string {
	return "folder_files"
}

// FileWithFolder is the API view of a file: the row plus its resolved
// membership and the URLs synthesized from its id.
type FileWithFolder struct {
	File
	FolderID    *uint  `json:"folderId"`
	PreviewURL  string `json:"previewUrl"`
	DownloadURL string `json:"downloadUrl"`
}
