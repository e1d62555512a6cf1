package controllers

import (
	"net/http"
	"os"
	"path/filepath"
	"strings"

	"github.com/gin-gonic/gin"
	"github.com/yunshui/materials-api/utils"
)

// GetUploadedImage handles GET /api/v1/uploads/:filename - serves locally stored material images
func (h *Handler) GetUploadedImage(c *gin.Context) {
	filename := c.Param("filename")

	if filename == "" {
		respondFailure(c, http.StatusBadRequest, "INVALID_REQUEST", "Filename is required", nil)
		return
	}

	// Security: Prevent directory traversal attacks
	if strings.Contains(filename, "..") || strings.Contains(filename, "/") || strings.Contains(filename, "\\") {
		respondFailure(c, http.StatusBadRequest, "INVALID_FILENAME", "Invalid filename", nil)
		return
	}

	contentType := utils.ImageContentType(filename)
	if contentType == "" {
		respondFailure(c, http.StatusBadRequest, "INVALID_FILE_TYPE", "Only image files are supported", nil)
		return
	}

	filePath := filepath.Join(h.uploadDir, filename)
	if _, err := os.Stat(filePath); os.IsNotExist(err) {
		respondFailure(c, http.StatusNotFound, "FILE_NOT_FOUND", "Image not found", nil)
		return
	}

	c.Header("Content-Type", contentType)
	c.Header("Cache-Control", "public, max-age=86400") // Cache for 24 hours
	c.File(filePath)
}
