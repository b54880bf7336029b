package service

import (
	"context"
	"errors"
	"log/slog"
	"regexp"
	"strings"

	validation "github.com/go-ozzo/ozzo-validation/v4"
	"gorm.io/gorm"

	"go-file-manager/internal/domain"
	"go-file-manager/internal/models"
)

// nodeName rejects path separators; everything else is a legal name.
var nodeName = regexp.MustCompile(`^[^/\\]+$`)

// FolderService maintains the folder tree: materialized paths, sibling
// uniqueness, cycle prevention, and descendant repathing on rename/move.
type FolderService struct {
	db     *gorm.DB
	logger *slog.Logger
}

func NewFolderService(db *gorm.DB, logger *slog.Logger) *FolderService {
	return &FolderService{db: db, logger: logger}
}

type CreateFolderRequest struct {
	Name     string `json:"name"`
	ParentID *uint  `json:"parentId"`
}

func (r CreateFolderRequest) Validate() error {
	return validation.Validate(strings.TrimSpace(r.Name),
		validation.Required.Error("folder name is required"),
		validation.Length(1, 255),
		validation.Match(nodeName).Error("folder name cannot contain path separators"),
	)
}

type UpdateFolderRequest struct {
	Name       *string    `json:"name"`
	ParentID   OptionalID `json:"parentId"`
	IsExpanded *bool      `json:"isExpanded"`
}

func (r UpdateFolderRequest) Validate() error {
	if r.Name == nil {
		return nil
	}
	return validation.Validate(strings.TrimSpace(*r.Name),
		validation.Required.Error("folder name is required"),
		validation.Length(1, 255),
		validation.Match(nodeName).Error("folder name cannot contain path separators"),
	)
}

// FindAll returns every folder ordered by path.
func (s *FolderService) FindAll(ctx context.Context) ([]models.Folder, error) {
	var folders []models.Folder
	err := s.db.WithContext(ctx).Order("path ASC").Find(&folders).Error
	return folders, err
}

// FindByID returns the folder, or nil without an error when it does not
// exist; callers decide what absence means.
func (s *FolderService) FindByID(ctx context.Context, id uint) (*models.Folder, error) {
	var folder models.Folder
	err := s.db.WithContext(ctx).Take(&folder, id).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, nil
	}
	if err != nil {
		return nil, err
	}
	return &folder, nil
}

// FindChildren returns the direct children of parentID (nil = roots),
// ordered by name.
func (s *FolderService) FindChildren(ctx context.Context, parentID *uint) ([]models.Folder, error) {
	var folders []models.Folder
	q := s.db.WithContext(ctx)
	if parentID == nil {
		q = q.Where("parent_id IS NULL")
	} else {
		q = q.Where("parent_id = ?", *parentID)
	}
	err := q.Order("name ASC").Find(&folders).Error
	return folders, err
}

func (s *FolderService) FindRoots(ctx context.Context) ([]models.Folder, error) {
	return s.FindChildren(ctx, nil)
}

// CountSubfolders counts direct children only.
func (s *FolderService) CountSubfolders(ctx context.Context, id uint) (int64, error) {
	var count int64
	err := s.db.WithContext(ctx).Model(&models.Folder{}).
		Where("parent_id = ?", id).Count(&count).Error
	return count, err
}

// FindTree materializes the tree from parentID downward, each node
// carrying its subtree and direct subfolder count.
func (s *FolderService) FindTree(ctx context.Context, parentID *uint) ([]models.FolderNode, error) {
	children, err := s.FindChildren(ctx, parentID)
	if err != nil {
		return nil, err
	}

	nodes := make([]models.FolderNode, 0, len(children))
	for _, folder := range children {
		id := folder.ID
		subtree, err := s.FindTree(ctx, &id)
		if err != nil {
			return nil, err
		}

		node := models.FolderNode{Folder: folder, SubfolderCount: int64(len(subtree))}
		if len(subtree) > 0 {
			node.Children = subtree
		}
		nodes = append(nodes, node)
	}
	return nodes, nil
}

// Create inserts a folder after validating parent existence and sibling
// uniqueness within the target scope.
func (s *FolderService) Create(ctx context.Context, req CreateFolderRequest) (*models.Folder, error) {
	if err := req.Validate(); err != nil {
		return nil, &domain.ValidationError{Message: err.Error()}
	}
	name := strings.TrimSpace(req.Name)

	if req.ParentID != nil {
		parent, err := s.FindByID(ctx, *req.ParentID)
		if err != nil {
			return nil, err
		}
		if parent == nil {
			return nil, &domain.NotFoundError{Message: "parent folder not found"}
		}
	}

	exists, err := s.siblingExists(ctx, name, req.ParentID, 0)
	if err != nil {
		return nil, err
	}
	if exists {
		return nil, &domain.ConflictError{Message: "a folder with this name already exists in the same location"}
	}

	path, err := s.buildPath(ctx, name, req.ParentID)
	if err != nil {
		return nil, err
	}

	folder := &models.Folder{
		Name:       name,
		ParentID:   req.ParentID,
		Path:       path,
		IsExpanded: false,
	}
	if err := s.db.WithContext(ctx).Create(folder).Error; err != nil {
		return nil, err
	}

	s.logger.Info("folder created", "id", folder.ID, "path", folder.Path)
	return folder, nil
}

// Update renames, reparents, or toggles a folder. A missing target is
// reported as a nil result. When the persisted path changes, every
// descendant is repathed inside the same transaction.
func (s *FolderService) Update(ctx context.Context, id uint, req UpdateFolderRequest) (*models.Folder, error) {
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

	finalName := existing.Name
	if req.Name != nil {
		finalName = strings.TrimSpace(*req.Name)
	}
	finalParent := existing.ParentID
	if req.ParentID.Set {
		finalParent = req.ParentID.Value
	}

	parentChanging := req.ParentID.Set && !uintPtrEqual(req.ParentID.Value, existing.ParentID)
	nameChanging := req.Name != nil && finalName != existing.Name

	if parentChanging {
		cycle, err := s.createsCycle(ctx, id, req.ParentID.Value)
		if err != nil {
			return nil, err
		}
		if cycle {
			return nil, &domain.ConflictError{Message: "cannot move a folder into itself or its own subtree"}
		}

		exists, err := s.siblingExists(ctx, finalName, finalParent, id)
		if err != nil {
			return nil, err
		}
		if exists {
			return nil, &domain.ConflictError{Message: "a folder with this name already exists in the target location"}
		}
	} else if nameChanging {
		// Renames collide with siblings even when the scope is unchanged.
		exists, err := s.siblingExists(ctx, finalName, finalParent, id)
		if err != nil {
			return nil, err
		}
		if exists {
			return nil, &domain.ConflictError{Message: "a folder with this name already exists in the same location"}
		}
	}

	newPath := existing.Path
	if req.Name != nil || req.ParentID.Set {
		newPath, err = s.buildPath(ctx, finalName, finalParent)
		if err != nil {
			return nil, err
		}
	}

	updates := map[string]interface{}{}
	if req.Name != nil {
		updates["name"] = finalName
	}
	if req.ParentID.Set {
		updates["parent_id"] = req.ParentID.Value
	}
	if req.IsExpanded != nil {
		updates["is_expanded"] = *req.IsExpanded
	}
	if newPath != existing.Path {
		updates["path"] = newPath
	}

	if len(updates) == 0 {
		return existing, nil
	}

	err = s.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		if err := tx.Model(&models.Folder{}).Where("id = ?", id).Updates(updates).Error; err != nil {
			return err
		}
		if newPath != existing.Path {
			return repathDescendants(tx, id, newPath)
		}
		return nil
	})
	if err != nil {
		return nil, err
	}

	if newPath != existing.Path {
		s.logger.Info("folder repathed", "id", id, "old_path", existing.Path, "new_path", newPath)
	}
	return s.FindByID(ctx, id)
}

// ToggleExpanded flips the UI expansion flag on its own; no path work.
func (s *FolderService) ToggleExpanded(ctx context.Context, id uint) (*models.Folder, error) {
	existing, err := s.FindByID(ctx, id)
	if err != nil {
		return nil, err
	}
	if existing == nil {
		return nil, nil
	}

	expanded := !existing.IsExpanded
	return s.Update(ctx, id, UpdateFolderRequest{IsExpanded: &expanded})
}

// Delete removes the folder row. Descendant folders and file
// memberships go with it through the schema's cascade foreign keys.
func (s *FolderService) Delete(ctx context.Context, id uint) (bool, error) {
	result := s.db.WithContext(ctx).Delete(&models.Folder{}, id)
	if result.Error != nil {
		return false, result.Error
	}
	return result.RowsAffected > 0, nil
}

// buildPath derives the materialized path for a name under a parent.
func (s *FolderService) buildPath(ctx context.Context, name string, parentID *uint) (string, error) {
	if parentID == nil {
		return "/" + name, nil
	}

	var parent models.Folder
	err := s.db.WithContext(ctx).Take(&parent, *parentID).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return "", &domain.NotFoundError{Message: "parent folder not found"}
	}
	if err != nil {
		return "", err
	}
	return parent.Path + "/" + name, nil
}

// siblingExists reports whether another folder named name lives under
// parentID (nil = root scope). excludeID skips the folder being updated.
func (s *FolderService) siblingExists(ctx context.Context, name string, parentID *uint, excludeID uint) (bool, error) {
	q := s.db.WithContext(ctx).Model(&models.Folder{}).Where("name = ?", name)
	if parentID == nil {
		q = q.Where("parent_id IS NULL")
	} else {
		q = q.Where("parent_id = ?", *parentID)
	}
	if excludeID != 0 {
		q = q.Where("id <> ?", excludeID)
	}

	var count int64
	if err := q.Count(&count).Error; err != nil {
		return false, err
	}
	return count > 0, nil
}

// createsCycle walks the ancestor chain upward from the proposed parent
// and reports whether folderID is already on it. The walk stops on a
// missing row so a corrupted chain cannot loop forever.
func (s *FolderService) createsCycle(ctx context.Context, folderID uint, newParentID *uint) (bool, error) {
	if newParentID == nil {
		return false, nil
	}

	current := newParentID
	for current != nil {
		if *current == folderID {
			return true, nil
		}

		var folder models.Folder
		err := s.db.WithContext(ctx).Select("parent_id").Take(&folder, *current).Error
		if errors.Is(err, gorm.ErrRecordNotFound) {
			break
		}
		if err != nil {
			return false, err
		}
		current = folder.ParentID
	}
	return false, nil
}

// repathDescendants rewrites the path of every descendant after the
// folder's own path has been persisted as newPath. An explicit worklist
// keeps arbitrarily deep trees off the call stack.
func repathDescendants(tx *gorm.DB, folderID uint, newPath string) error {
	type frame struct {
		id   uint
		path string
	}

	stack := []frame{{folderID, newPath}}
	for len(stack) > 0 {
		cur := stack[len(stack)-1]
		stack = stack[:len(stack)-1]

		var children []models.Folder
		if err := tx.Select("id", "name").Where("parent_id = ?", cur.id).Find(&children).Error; err != nil {
			return err
		}

		for _, child := range children {
			childPath := cur.path + "/" + child.Name
			if err := tx.Model(&models.Folder{}).Where("id = ?", child.ID).
				Update("path", childPath).Error; err != nil {
				return err
			}
			stack = append(stack, frame{child.ID, childPath})
		}
	}
	return nil
}
