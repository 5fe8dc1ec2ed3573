package handlers

import (
	"errors"
	"net/http"

	"github.com/gin-gonic/gin"

	"github.com/landfolio/cfd-api/internal/services"
)

// Handlers holds all handler instances
type Handlers struct {
	Health      *HealthHandler
	Contract    *ContractHandler
	Payment     *PaymentHandler
	Installment *InstallmentHandler
	Import      *ImportHandler
	Exception   *ExceptionHandler
	Report      *ReportHandler
	Audit       *AuditHandler
}

// NewHandlers creates all handler instances
func NewHandlers(svcs *services.Services) *Handlers {
	return &Handlers{
		Health:      NewHealthHandler(),
		Contract:    NewContractHandler(svcs.Contract, svcs.Report),
		Payment:     NewPaymentHandler(svcs.Payment),
		Installment: NewInstallmentHandler(svcs.Installment),
		Import:      NewImportHandler(svcs.Import),
		Exception:   NewExceptionHandler(svcs.Exception),
		Report:      NewReportHandler(svcs.Report, svcs.Export),
		Audit:       NewAuditHandler(svcs.Audit, svcs.Payment),
	}
}

// respondServiceError translates service sentinel errors to the HTTP tiers:
// missing entities are 404, invariant and audit violations are 422,
// duplicates are 409. Anything else is a 500.
func respondServiceError(c *gin.Context, err error) {
	switch {
	case errors.Is(err, services.ErrNotFound):
		c.JSON(http.StatusNotFound, gin.H{"error": err.Error()})
	case errors.Is(err, services.ErrDuplicate):
		c.JSON(http.StatusConflict, gin.H{"error": err.Error()})
	case errors.Is(err, services.ErrValidation),
		errors.Is(err, services.ErrReasonRequired),
		errors.Is(err, services.ErrInvalidState):
		c.JSON(http.StatusUnprocessableEntity, gin.H{"error": err.Error()})
	default:
		c.JSON(http.StatusInternalServerError, gin.H{"error": err.Error()})
	}
}
