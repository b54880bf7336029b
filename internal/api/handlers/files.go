package handlers

import (
	"fmt"
	"net/http"
	"strconv"
	"strings"

	"github.com/gin-gonic/gin"

	"go-file-manager/internal/api/response"
	"go-file-manager/internal/models"
	"go-file-manager/internal/service"
	"go-file-manager/internal/utils"
)

// FileHandler translates file HTTP requests into service calls,
// including the blob-backed preview/download endpoints.
type FileHandler struct {
	files         *service.FileService
	maxUploadSize int64
	dev           bool
}

func NewFileHandler(files *service.FileService, maxUploadSize int64, dev bool) *FileHandler {
	return &FileHandler{files: files, maxUploadSize: maxUploadSize, dev: dev}
}

// List handles listing all files ordered by path
func (h *FileHandler) List(c *gin.Context) {
	files, err := h.files.FindAll(c.Request.Context())
	if err != nil {
		respondError(c, err, "Failed to retrieve files", h.dev)
		return
	}
	response.Success(c, http.StatusOK, files, "Files retrieved successfully")
}

// ListByFolder handles listing files in a folder; the literal "root"
// lists files without a folder membership
func (h *FileHandler) ListByFolder(c *gin.Context) {
	var folderID *uint
	raw := c.Param("folderId")
	if raw != "root" {
		id, err := strconv.ParseUint(raw, 10, 32)
		if err != nil {
			response.Error(c, http.StatusBadRequest, "Invalid folder ID", "")
			return
		}
		val := uint(id)
		folderID = &val
	}

	files, err := h.files.FindByFolderID(c.Request.Context(), folderID)
	if err != nil {
		respondError(c, err, "Failed to retrieve files", h.dev)
		return
	}
	response.Success(c, http.StatusOK, files, "Files retrieved successfully")
}

// Get handles retrieving a single file
func (h *FileHandler) Get(c *gin.Context) {
	file, ok := h.lookup(c)
	if !ok {
		return
	}
	response.Success(c, http.StatusOK, file, "File retrieved successfully")
}

// Create handles metadata-only file creation (no bytes)
func (h *FileHandler) Create(c *gin.Context) {
	var req service.CreateFileRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		response.Error(c, http.StatusBadRequest, "Invalid request body", "")
		return
	}

	file, err := h.files.Create(c.Request.Context(), req)
	if err != nil {
		respondError(c, err, "Failed to create file", h.dev)
		return
	}
	response.Success(c, http.StatusCreated, file, "File created successfully")
}

// Upload handles multipart file upload with an optional folderId field
func (h *FileHandler) Upload(c *gin.Context) {
	header, err := c.FormFile("file")
	if err != nil {
		response.Error(c, http.StatusBadRequest, "No file uploaded", "")
		return
	}
	if h.maxUploadSize > 0 && header.Size > h.maxUploadSize {
		response.Error(c, http.StatusBadRequest, "File too large", "")
		return
	}

	var folderID *uint
	if raw := c.PostForm("folderId"); raw != "" {
		id, err := strconv.ParseUint(raw, 10, 32)
		if err != nil {
			response.Error(c, http.StatusBadRequest, "Invalid folder ID", "")
			return
		}
		val := uint(id)
		folderID = &val
	}

	src, err := header.Open()
	if err != nil {
		respondError(c, err, "Failed to read uploaded file", h.dev)
		return
	}
	defer src.Close()

	var mimeType *string
	if ct := header.Header.Get("Content-Type"); ct != "" {
		mimeType = &ct
	}

	file, err := h.files.CreateWithUpload(c.Request.Context(), service.UploadFileRequest{
		Name:     header.Filename,
		MimeType: mimeType,
		Size:     header.Size,
		Content:  src,
		FolderID: folderID,
	})
	if err != nil {
		respondError(c, err, "Failed to upload file", h.dev)
		return
	}
	response.Success(c, http.StatusCreated, file, "File uploaded successfully")
}

// Update handles renaming, metadata changes, and folder moves
func (h *FileHandler) Update(c *gin.Context) {
	id, ok := idParam(c)
	if !ok {
		return
	}

	var req service.UpdateFileRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		response.Error(c, http.StatusBadRequest, "Invalid request body", "")
		return
	}

	file, err := h.files.Update(c.Request.Context(), id, req)
	if err != nil {
		respondError(c, err, "Failed to update file", h.dev)
		return
	}
	if file == nil {
		response.Error(c, http.StatusNotFound, "File not found", "")
		return
	}
	response.Success(c, http.StatusOK, file, "File updated successfully")
}

// Move handles folder membership changes only; folderId null means root
func (h *FileHandler) Move(c *gin.Context) {
	id, ok := idParam(c)
	if !ok {
		return
	}

	var req struct {
		FolderID service.OptionalID `json:"folderId"`
	}
	if err := c.ShouldBindJSON(&req); err != nil || !req.FolderID.Set {
		response.Error(c, http.StatusBadRequest, "folderId is required (use null for root)", "")
		return
	}

	file, err := h.files.Update(c.Request.Context(), id,
		service.UpdateFileRequest{FolderID: req.FolderID})
	if err != nil {
		respondError(c, err, "Failed to move file", h.dev)
		return
	}
	if file == nil {
		response.Error(c, http.StatusNotFound, "File not found", "")
		return
	}
	response.Success(c, http.StatusOK, file, "File moved successfully")
}

// Preview serves the stored bytes inline so browsers can render them.
// Images can be resized on the fly via width/height/fit query params.
func (h *FileHandler) Preview(c *gin.Context) {
	file, ok := h.lookup(c)
	if !ok {
		return
	}

	blob, err := h.files.OpenBlob(file)
	if err != nil {
		respondError(c, err, "Failed to preview file", h.dev)
		return
	}
	defer blob.Close()

	contentType := mimeOf(file)
	c.Header("Cache-Control", "public, max-age=3600")
	c.Header("ETag", fmt.Sprintf("%q", fmt.Sprintf("%d-%d", file.ID, file.UpdatedAt.UnixMilli())))
	c.Header("Content-Disposition", fmt.Sprintf("inline; filename=%q", file.Name))

	width := utils.ParseIntOption(c.Query("width"))
	height := utils.ParseIntOption(c.Query("height"))
	if strings.HasPrefix(contentType, "image/") && (width > 0 || height > 0) {
		resized, err := utils.ResizeImage(blob, width, height, c.Query("fit"))
		if err != nil {
			respondError(c, err, "Failed to transform image", h.dev)
			return
		}
		c.Data(http.StatusOK, "image/png", resized)
		return
	}

	c.DataFromReader(http.StatusOK, file.Size, contentType, blob, nil)
}

// Download serves the stored bytes as an attachment
func (h *FileHandler) Download(c *gin.Context) {
	file, ok := h.lookup(c)
	if !ok {
		return
	}

	blob, err := h.files.OpenBlob(file)
	if err != nil {
		respondError(c, err, "Failed to download file", h.dev)
		return
	}
	defer blob.Close()

	c.Header("Content-Disposition", fmt.Sprintf("attachment; filename=%q", file.Name))
	c.DataFromReader(http.StatusOK, file.Size, mimeOf(file), blob, nil)
}

// Delete handles file deletion; blob cleanup is best-effort
func (h *FileHandler) Delete(c *gin.Context) {
	id, ok := idParam(c)
	if !ok {
		return
	}

	deleted, err := h.files.Delete(c.Request.Context(), id)
	if err != nil {
		respondError(c, err, "Failed to delete file", h.dev)
		return
	}
	if !deleted {
		response.Error(c, http.StatusNotFound, "File not found", "")
		return
	}
	response.Success(c, http.StatusOK, nil, "File deleted successfully")
}

func (h *FileHandler) lookup(c *gin.Context) (*models.File, bool) {
	id, ok := idParam(c)
	if !ok {
		return nil, false
	}

	file, err := h.files.FindByID(c.Request.Context(), id)
	if err != nil {
		respondError(c, err, "Failed to retrieve file", h.dev)
		return nil, false
	}
	if file == nil {
		response.Error(c, http.StatusNotFound, "File not found", "")
		return nil, false
	}
	return file, true
}

func mimeOf(file *models.File) string {
	if file.MimeType != nil && *file.MimeType != "" {
		return *file.MimeType
	}
	return "application/octet-stream"
}
