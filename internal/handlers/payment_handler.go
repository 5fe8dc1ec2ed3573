package handlers

import (
	"net/http"
	"strconv"

	"github.com/gin-gonic/gin"

	"github.com/landfolio/cfd-api/internal/models"
	"github.com/landfolio/cfd-api/internal/repository"
	"github.com/landfolio/cfd-api/internal/services"
)

type PaymentHandler struct {
	paymentService *services.PaymentService
}

func NewPaymentHandler(paymentService *services.PaymentService) *PaymentHandler {
	return &PaymentHandler{paymentService: paymentService}
}

// Index returns a paginated payment list with optional filters.
func (h *PaymentHandler) Index(c *gin.Context) {
	query := repository.NewListQuery()
	query.Page, _ = strconv.Atoi(c.DefaultQuery("page", "1"))
	query.PerPage, _ = strconv.Atoi(c.DefaultQuery("per_page", "20"))
	query.SortBy = c.Query("sort_by")
	query.SortDir = c.Query("sort_dir")
	for _, key := range []string{"contract_id", "channel", "start_date", "end_date"} {
		if val := c.Query(key); val != "" {
			query.Filters[key] = val
		}
	}

	payments, total, err := h.paymentService.List(c.Request.Context(), query)
	if err != nil {
		respondServiceError(c, err)
		return
	}

	responses := make([]models.PaymentResponse, 0, len(payments))
	for i := range payments {
		responses = append(responses, payments[i].ToResponse())
	}

	c.JSON(http.StatusOK, gin.H{
		"payments": responses,
		"pagination": gin.H{
			"page":        query.Page,
			"per_page":    query.PerPage,
			"total":       total,
			"total_pages": (total + int64(query.PerPage) - 1) / int64(query.PerPage),
		},
	})
}

// ListByContract returns every payment on one contract.
func (h *PaymentHandler) ListByContract(c *gin.Context) {
	contractID, _ := strconv.ParseUint(c.Param("contract_id"), 10, 32)

	payments, err := h.paymentService.FindByContract(c.Request.Context(), uint(contractID))
	if err != nil {
		respondServiceError(c, err)
		return
	}

	responses := make([]models.PaymentResponse, 0, len(payments))
	for i := range payments {
		responses = append(responses, payments[i].ToResponse())
	}
	c.JSON(http.StatusOK, gin.H{"payments": responses})
}

// Create records a received payment against a contract.
func (h *PaymentHandler) Create(c *gin.Context) {
	contractID, _ := strconv.ParseUint(c.Param("contract_id"), 10, 32)

	var payment models.Payment
	if err := BindNestedOrFlat(c, "payment", &payment); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "invalid payment payload: " + err.Error()})
		return
	}
	payment.ContractID = uint(contractID)

	if err := h.paymentService.Create(c.Request.Context(), &payment); err != nil {
		respondServiceError(c, err)
		return
	}

	c.JSON(http.StatusCreated, gin.H{"payment": payment.ToResponse()})
}

type paymentUpdateRequest struct {
	Payment models.Payment `json:"payment"`
	Actor   string         `json:"actor"`
	Reason  string         `json:"reason"`
}

// Update applies an audited edit to a payment.
func (h *PaymentHandler) Update(c *gin.Context) {
	id, _ := strconv.ParseUint(c.Param("payment_id"), 10, 32)

	var req paymentUpdateRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "invalid update payload: " + err.Error()})
		return
	}
	if req.Reason == "" {
		req.Reason = c.Query("reason")
	}
	req.Payment.ID = uint(id)

	updated, err := h.paymentService.Update(c.Request.Context(), services.PaymentUpdate{
		Payment: &req.Payment,
		Actor:   req.Actor,
		Reason:  req.Reason,
	})
	if err != nil {
		respondServiceError(c, err)
		return
	}

	c.JSON(http.StatusOK, gin.H{"payment": updated.ToResponse()})
}

// Destroy removes a payment row.
func (h *PaymentHandler) Destroy(c *gin.Context) {
	id, _ := strconv.ParseUint(c.Param("payment_id"), 10, 32)

	if err := h.paymentService.Delete(c.Request.Context(), uint(id)); err != nil {
		respondServiceError(c, err)
		return
	}

	c.JSON(http.StatusOK, gin.H{"message": "payment deleted"})
}
