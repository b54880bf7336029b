package migrations

import (
	"gorm.io/gorm"

	"go-file-manager/internal/models"
)

// Migrate creates the schema. The cascade foreign keys declared on the
// models are part of the contract: deleting a folder takes descendant
// folders and file memberships with it at the database level.
func Migrate(db *gorm.DB) error {
	return db.AutoMigrate(
		&models.Folder{},
		&models.File{},
		&models.FolderFile{},
	)
}
