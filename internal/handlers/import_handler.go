package handlers

import (
	"net/http"

	"github.com/gin-gonic/gin"

	"github.com/landfolio/cfd-api/internal/services"
)

type ImportHandler struct {
	importService *services.ImportService
}

func NewImportHandler(importService *services.ImportService) *ImportHandler {
	return &ImportHandler{importService: importService}
}

// Create accepts a multipart CSV upload and imports contracts row by row.
// Row failures are returned alongside the successes, never as a rollback.
func (h *ImportHandler) Create(c *gin.Context) {
	fileHeader, err := c.FormFile("file")
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "a csv file upload is required"})
		return
	}

	file, err := fileHeader.Open()
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "cannot open upload: " + err.Error()})
		return
	}
	defer file.Close()

	result, err := h.importService.ImportContracts(c.Request.Context(), file)
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}

	c.JSON(http.StatusOK, result)
}
