package handlers

import (
	"net/http"

	"github.com/gin-gonic/gin"
)

type HealthHandler struct{}

func NewHealthHandler() *HealthHandler {
	return &HealthHandler{}
}

// Show reports service liveness.
func (h *HealthHandler) Show(c *gin.Context) {
	c.JSON(http.StatusOK, gin.H{"status": "ok"})
}
