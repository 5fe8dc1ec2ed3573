package handlers

import (
	"net/http"

	"github.com/gin-gonic/gin"

	"github.com/landfolio/cfd-api/internal/services"
)

type ExceptionHandler struct {
	exceptionService *services.ExceptionService
}

func NewExceptionHandler(exceptionService *services.ExceptionService) *ExceptionHandler {
	return &ExceptionHandler{exceptionService: exceptionService}
}

// Index runs the data-quality sweep over the whole book and returns every
// finding.
func (h *ExceptionHandler) Index(c *gin.Context) {
	exceptions, err := h.exceptionService.ValidateAllContracts(c.Request.Context())
	if err != nil {
		respondServiceError(c, err)
		return
	}

	c.JSON(http.StatusOK, gin.H{
		"exceptions": exceptions,
		"count":      len(exceptions),
	})
}
