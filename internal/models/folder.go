package models

import (
	"time"
)

// Folder is a node in the folder tree. Path caches the ancestor name
// chain ("/Docs/Reports"); the ParentID chain stays authoritative.
type Folder struct {
	ID         uint      `json:"id" gorm:"primarykey"`
	Name       string    `json:"name" gorm:"size:255;not null"`
	ParentID   *uint     `json:"parentId" gorm:"index"`
	Path       string    `json:"path" gorm:"size:1024;not null;index"`
	IsExpanded bool      `json:"isExpanded" gorm:"not null;default:false"`
	CreatedAt  time.Time `json:"createdAt"`
	UpdatedAt  time.Time `json:"updatedAt"`

	// Deleting a folder cascades to its descendants.
	Parent *Folder `json:"-" gorm:"foreignKey:ParentID;constraint:OnDelete:CASCADE"`
}

// TableName specifies the table name for the Folder model
func (Folder) TableName() string {
	return "folders"
}

// FolderNode is a tree-shaped view of a folder with its direct subtree.
type FolderNode struct {
	Folder
	Children       []FolderNode `json:"children,omitempty"`
	SubfolderCount int64        `json:"subfolderCount"`
}
