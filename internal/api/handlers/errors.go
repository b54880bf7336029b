package handlers

import (
	"errors"
	"log"
	"net/http"

	"github.com/gin-gonic/gin"

	"go-file-manager/internal/api/response"
	"go-file-manager/internal/domain"
)

// respondError maps a service error to the envelope and status code.
// Domain errors carry their own status; anything else is a 500 whose
// detail stays in the logs unless the server runs in development mode.
func respondError(c *gin.Context, err error, message string, dev bool) {
	var httpErr domain.HTTPError
	if errors.As(err, &httpErr) {
		response.Error(c, httpErr.StatusCode(), message, err.Error())
		return
	}

	log.Printf("%s: %v", message, err)
	detail := ""
	if dev {
		detail = err.Error()
	}
	response.Error(c, http.StatusInternalServerError, message, detail)
}
