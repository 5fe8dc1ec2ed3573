package handlers

import (
	"net/http"
	"strconv"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/shopspring/decimal"

	"github.com/landfolio/cfd-api/internal/models"
	"github.com/landfolio/cfd-api/internal/services"
)

type InstallmentHandler struct {
	installmentService *services.InstallmentService
}

func NewInstallmentHandler(installmentService *services.InstallmentService) *InstallmentHandler {
	return &InstallmentHandler{installmentService: installmentService}
}

// ListByContract returns the contract's schedule. Overdue statuses are
// refreshed before the read.
func (h *InstallmentHandler) ListByContract(c *gin.Context) {
	contractID, _ := strconv.ParseUint(c.Param("contract_id"), 10, 32)

	installments, err := h.installmentService.FindByContract(c.Request.Context(), uint(contractID))
	if err != nil {
		respondServiceError(c, err)
		return
	}

	responses := make([]models.InstallmentResponse, 0, len(installments))
	for i := range installments {
		responses = append(responses, installments[i].ToResponse())
	}
	c.JSON(http.StatusOK, gin.H{"installments": responses})
}

type markPaidRequest struct {
	PaidDate   string          `json:"paid_date" binding:"required"`
	PaidAmount decimal.Decimal `json:"paid_amount" binding:"required"`
	ReceivedBy string          `json:"received_by"`
	Channel    string          `json:"channel"`
	Memo       *string         `json:"memo"`
}

// MarkPaid records a received payment against a scheduled installment.
func (h *InstallmentHandler) MarkPaid(c *gin.Context) {
	id, _ := strconv.ParseUint(c.Param("installment_id"), 10, 32)

	var req markPaidRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "invalid payload: " + err.Error()})
		return
	}

	paidDate, err := time.Parse("2006-01-02", req.PaidDate)
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "paid_date must be YYYY-MM-DD"})
		return
	}

	installment, err := h.installmentService.MarkAsPaid(c.Request.Context(), uint(id), services.MarkPaidInput{
		PaidDate:   paidDate,
		PaidAmount: req.PaidAmount,
		ReceivedBy: req.ReceivedBy,
		Channel:    req.Channel,
		Memo:       req.Memo,
	})
	if err != nil {
		respondServiceError(c, err)
		return
	}

	c.JSON(http.StatusOK, gin.H{"installment": installment.ToResponse()})
}
