package handlers

import (
	"net/http"

	"github.com/gin-gonic/gin"

	"go-file-manager/internal/api/response"
	"go-file-manager/internal/service"
)

// batchRequest describes a batch operation over several files. Move
// uses the folderId field; null moves the files to the root level.
type batchRequest struct {
	Operation string             `json:"operation"`
	FileIDs   []uint             `json:"fileIds"`
	FolderID  service.OptionalID `json:"folderId"`
}

// Batch applies delete or move to a set of files. Items are processed
// independently; one failure does not abort the rest, and the response
// carries a per-item outcome.
func (h *FileHandler) Batch(c *gin.Context) {
	var req batchRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		response.Error(c, http.StatusBadRequest, "Invalid request body", "")
		return
	}
	if len(req.FileIDs) == 0 {
		response.Error(c, http.StatusBadRequest, "No file IDs provided", "")
		return
	}
	if req.Operation != "delete" && req.Operation != "move" {
		response.Error(c, http.StatusBadRequest, "Invalid operation", "supported operations: delete, move")
		return
	}
	if req.Operation == "move" && !req.FolderID.Set {
		response.Error(c, http.StatusBadRequest, "folderId is required for move (use null for root)", "")
		return
	}

	ctx := c.Request.Context()
	results := make([]gin.H, 0, len(req.FileIDs))
	succeeded := 0

	for _, id := range req.FileIDs {
		result := gin.H{"id": id, "success": true}

		switch req.Operation {
		case "delete":
			deleted, err := h.files.Delete(ctx, id)
			if err != nil {
				result["success"] = false
				result["error"] = err.Error()
			} else if !deleted {
				result["success"] = false
				result["error"] = "file not found"
			}
		case "move":
			file, err := h.files.Update(ctx, id, service.UpdateFileRequest{FolderID: req.FolderID})
			if err != nil {
				result["success"] = false
				result["error"] = err.Error()
			} else if file == nil {
				result["success"] = false
				result["error"] = "file not found"
			}
		}

		if result["success"] == true {
			succeeded++
		}
		results = append(results, result)
	}

	response.Success(c, http.StatusOK, gin.H{
		"operation":     req.Operation,
		"total":         len(req.FileIDs),
		"success_count": succeeded,
		"results":       results,
	}, "Batch operation completed")
}
