package handlers

import (
	"net/http"
	"strconv"

	"github.com/gin-gonic/gin"

	"github.com/landfolio/cfd-api/internal/services"
)

type AuditHandler struct {
	auditService   *services.AuditService
	paymentService *services.PaymentService
}

func NewAuditHandler(auditService *services.AuditService, paymentService *services.PaymentService) *AuditHandler {
	return &AuditHandler{auditService: auditService, paymentService: paymentService}
}

// ListForContract returns the contract's audit trail including entries on its
// payments, newest first.
func (h *AuditHandler) ListForContract(c *gin.Context) {
	contractID, _ := strconv.ParseUint(c.Param("contract_id"), 10, 32)

	payments, err := h.paymentService.FindByContract(c.Request.Context(), uint(contractID))
	if err != nil {
		respondServiceError(c, err)
		return
	}
	paymentIDs := make([]uint, 0, len(payments))
	for _, p := range payments {
		paymentIDs = append(paymentIDs, p.ID)
	}

	entries, err := h.auditService.GetAuditLogForContract(c.Request.Context(), uint(contractID), paymentIDs)
	if err != nil {
		respondServiceError(c, err)
		return
	}

	c.JSON(http.StatusOK, gin.H{"audit_log": entries})
}
