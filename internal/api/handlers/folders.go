package handlers

import (
	"net/http"
	"strconv"

	"github.com/gin-gonic/gin"

	"go-file-manager/internal/api/response"
	"go-file-manager/internal/service"
)

// FolderHandler translates folder HTTP requests into service calls.
type FolderHandler struct {
	folders *service.FolderService
	dev     bool
}

func NewFolderHandler(folders *service.FolderService, dev bool) *FolderHandler {
	return &FolderHandler{folders: folders, dev: dev}
}

// List handles listing all folders ordered by path
func (h *FolderHandler) List(c *gin.Context) {
	folders, err := h.folders.FindAll(c.Request.Context())
	if err != nil {
		respondError(c, err, "Failed to retrieve folders", h.dev)
		return
	}
	response.Success(c, http.StatusOK, folders, "Folders retrieved successfully")
}

// Tree handles materializing the folder tree from an optional parent
func (h *FolderHandler) Tree(c *gin.Context) {
	parentID, ok := optionalIDQuery(c, "parentId")
	if !ok {
		response.Error(c, http.StatusBadRequest, "Invalid parent folder ID", "")
		return
	}

	tree, err := h.folders.FindTree(c.Request.Context(), parentID)
	if err != nil {
		respondError(c, err, "Failed to retrieve folder tree", h.dev)
		return
	}
	response.Success(c, http.StatusOK, tree, "Folder tree retrieved successfully")
}

// Roots handles listing root-level folders
func (h *FolderHandler) Roots(c *gin.Context) {
	roots, err := h.folders.FindRoots(c.Request.Context())
	if err != nil {
		respondError(c, err, "Failed to retrieve root folders", h.dev)
		return
	}
	response.Success(c, http.StatusOK, roots, "Root folders retrieved successfully")
}

// Get handles retrieving a single folder
func (h *FolderHandler) Get(c *gin.Context) {
	id, ok := idParam(c)
	if !ok {
		return
	}

	folder, err := h.folders.FindByID(c.Request.Context(), id)
	if err != nil {
		respondError(c, err, "Failed to retrieve folder", h.dev)
		return
	}
	if folder == nil {
		response.Error(c, http.StatusNotFound, "Folder not found", "")
		return
	}
	response.Success(c, http.StatusOK, folder, "Folder retrieved successfully")
}

// Children handles listing a folder's direct children
func (h *FolderHandler) Children(c *gin.Context) {
	id, ok := idParam(c)
	if !ok {
		return
	}

	folder, err := h.folders.FindByID(c.Request.Context(), id)
	if err != nil {
		respondError(c, err, "Failed to retrieve folder children", h.dev)
		return
	}
	if folder == nil {
		response.Error(c, http.StatusNotFound, "Folder not found", "")
		return
	}

	children, err := h.folders.FindChildren(c.Request.Context(), &folder.ID)
	if err != nil {
		respondError(c, err, "Failed to retrieve folder children", h.dev)
		return
	}
	response.Success(c, http.StatusOK, children, "Folder children retrieved successfully")
}

// Create handles folder creation
func (h *FolderHandler) Create(c *gin.Context) {
	var req service.CreateFolderRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		response.Error(c, http.StatusBadRequest, "Invalid request body", "")
		return
	}

	folder, err := h.folders.Create(c.Request.Context(), req)
	if err != nil {
		respondError(c, err, "Failed to create folder", h.dev)
		return
	}
	response.Success(c, http.StatusCreated, folder, "Folder created successfully")
}

// Update handles renaming, reparenting, and expansion toggling
func (h *FolderHandler) Update(c *gin.Context) {
	id, ok := idParam(c)
	if !ok {
		return
	}

	var req service.UpdateFolderRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		response.Error(c, http.StatusBadRequest, "Invalid request body", "")
		return
	}

	folder, err := h.folders.Update(c.Request.Context(), id, req)
	if err != nil {
		respondError(c, err, "Failed to update folder", h.dev)
		return
	}
	if folder == nil {
		response.Error(c, http.StatusNotFound, "Folder not found", "")
		return
	}
	response.Success(c, http.StatusOK, folder, "Folder updated successfully")
}

// Move handles reparenting only; parentId null means move to root
func (h *FolderHandler) Move(c *gin.Context) {
	id, ok := idParam(c)
	if !ok {
		return
	}

	var req struct {
		ParentID service.OptionalID `json:"parentId"`
	}
	if err := c.ShouldBindJSON(&req); err != nil || !req.ParentID.Set {
		response.Error(c, http.StatusBadRequest, "parentId is required (use null for root)", "")
		return
	}

	folder, err := h.folders.Update(c.Request.Context(), id,
		service.UpdateFolderRequest{ParentID: req.ParentID})
	if err != nil {
		respondError(c, err, "Failed to move folder", h.dev)
		return
	}
	if folder == nil {
		response.Error(c, http.StatusNotFound, "Folder not found", "")
		return
	}
	response.Success(c, http.StatusOK, folder, "Folder moved successfully")
}

// ToggleExpand handles flipping the UI expansion flag
func (h *FolderHandler) ToggleExpand(c *gin.Context) {
	id, ok := idParam(c)
	if !ok {
		return
	}

	folder, err := h.folders.ToggleExpanded(c.Request.Context(), id)
	if err != nil {
		respondError(c, err, "Failed to toggle folder expansion", h.dev)
		return
	}
	if folder == nil {
		response.Error(c, http.StatusNotFound, "Folder not found", "")
		return
	}
	response.Success(c, http.StatusOK, folder, "Folder expansion toggled successfully")
}

// Delete handles folder deletion; descendants cascade at the schema level
func (h *FolderHandler) Delete(c *gin.Context) {
	id, ok := idParam(c)
	if !ok {
		return
	}

	deleted, err := h.folders.Delete(c.Request.Context(), id)
	if err != nil {
		respondError(c, err, "Failed to delete folder", h.dev)
		return
	}
	if !deleted {
		response.Error(c, http.StatusNotFound, "Folder not found", "")
		return
	}
	response.Success(c, http.StatusOK, nil, "Folder deleted successfully")
}

// idParam parses the :id path parameter, writing a 400 on failure.
func idParam(c *gin.Context) (uint, bool) {
	id, err := strconv.ParseUint(c.Param("id"), 10, 32)
	if err != nil {
		response.Error(c, http.StatusBadRequest, "Invalid ID", "")
		return 0, false
	}
	return uint(id), true
}

// optionalIDQuery parses an optional numeric query parameter; the
// second return is false when the value is present but malformed.
func optionalIDQuery(c *gin.Context, name string) (*uint, bool) {
	raw := c.Query(name)
	if raw == "" {
		return nil, true
	}
	id, err := strconv.ParseUint(raw, 10, 32)
	if err != nil {
		return nil, false
	}
	val := uint(id)
	return &val, true
}
