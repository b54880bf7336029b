package handlers

import (
	"encoding/csv"
	"encoding/json"
	"fmt"
	"net/http"
	"time"

	"github.com/gin-gonic/gin"

	"go-file-manager/internal/api/response"
)

// ExportCSV streams the whole file inventory as a CSV attachment.
func (h *FileHandler) ExportCSV(c *gin.Context) {
	files, err := h.files.FindAll(c.Request.Context())
	if err != nil {
		respondError(c, err, "Failed to export files", h.dev)
		return
	}

	c.Header("Content-Type", "text/csv")
	c.Header("Content-Disposition", "attachment;filename=files_export.csv")

	writer := csv.NewWriter(c.Writer)
	if err := writer.Write([]string{"ID", "Name", "Path", "MimeType", "Size", "Created At", "Updated At"}); err != nil {
		response.Error(c, http.StatusInternalServerError, "Failed to write CSV header", "")
		return
	}

	for _, f := range files {
		mime := ""
		if f.MimeType != nil {
			mime = *f.MimeType
		}
		if err := writer.Write([]string{
			fmt.Sprint(f.ID),
			f.Name,
			f.Path,
			mime,
			fmt.Sprint(f.Size),
			f.CreatedAt.Format(time.RFC3339),
			f.UpdatedAt.Format(time.RFC3339),
		}); err != nil {
			response.Error(c, http.StatusInternalServerError, "Failed to write CSV data", "")
			return
		}
	}

	writer.Flush()
}

// ExportJSON serves the file inventory as a downloadable JSON document.
func (h *FileHandler) ExportJSON(c *gin.Context) {
	files, err := h.files.FindAll(c.Request.Context())
	if err != nil {
		respondError(c, err, "Failed to export files", h.dev)
		return
	}

	c.Header("Content-Disposition", "attachment;filename=files_export.json")

	jsonData, err := json.MarshalIndent(files, "", "  ")
	if err != nil {
		response.Error(c, http.StatusInternalServerError, "Failed to marshal JSON", "")
		return
	}

	c.Data(http.StatusOK, "application/json", jsonData)
}
