package handlers

import (
	"net/http"
	"strconv"

	"github.com/gin-gonic/gin"

	"github.com/landfolio/cfd-api/internal/models"
	"github.com/landfolio/cfd-api/internal/repository"
	"github.com/landfolio/cfd-api/internal/services"
)

type ContractHandler struct {
	contractService *services.ContractService
	reportService   *services.ReportService
}

func NewContractHandler(contractService *services.ContractService, reportService *services.ReportService) *ContractHandler {
	return &ContractHandler{contractService: contractService, reportService: reportService}
}

// Index returns a paginated contract list with optional filters.
func (h *ContractHandler) Index(c *gin.Context) {
	query := &repository.ContractQuery{ListQuery: repository.NewListQuery()}
	query.Page, _ = strconv.Atoi(c.DefaultQuery("page", "1"))
	query.PerPage, _ = strconv.Atoi(c.DefaultQuery("per_page", "20"))
	query.Search = c.Query("search_term")
	query.Status = c.Query("status")
	query.OriginType = c.Query("origin_type")
	query.SaleType = c.Query("sale_type")
	query.County = c.Query("county")
	query.State = c.Query("state")
	if startDate := c.Query("start_date"); startDate != "" {
		query.Filters["start_date"] = startDate
	}
	if endDate := c.Query("end_date"); endDate != "" {
		query.Filters["end_date"] = endDate
	}

	contracts, total, err := h.contractService.List(c.Request.Context(), query)
	if err != nil {
		respondServiceError(c, err)
		return
	}

	responses := make([]models.ContractResponse, 0, len(contracts))
	for i := range contracts {
		responses = append(responses, contracts[i].ToResponse())
	}

	c.JSON(http.StatusOK, gin.H{
		"contracts": responses,
		"pagination": gin.H{
			"page":        query.Page,
			"per_page":    query.PerPage,
			"total":       total,
			"total_pages": (total + int64(query.PerPage) - 1) / int64(query.PerPage),
		},
	})
}

// Show returns a contract with payments, installments, documents and its
// derived financials.
func (h *ContractHandler) Show(c *gin.Context) {
	id, _ := strconv.ParseUint(c.Param("contract_id"), 10, 32)

	contract, err := h.contractService.FindByIDWithDetails(c.Request.Context(), uint(id))
	if err != nil {
		respondServiceError(c, err)
		return
	}

	financials, err := h.reportService.Financials(c.Request.Context(), contract.ID)
	if err != nil {
		respondServiceError(c, err)
		return
	}

	c.JSON(http.StatusOK, gin.H{
		"contract":   contract.ToResponse(),
		"financials": financials,
	})
}

// Create registers a new contract and generates its installment schedule.
func (h *ContractHandler) Create(c *gin.Context) {
	var contract models.Contract
	if err := BindNestedOrFlat(c, "contract", &contract); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "invalid contract payload: " + err.Error()})
		return
	}

	if err := h.contractService.Create(c.Request.Context(), &contract); err != nil {
		respondServiceError(c, err)
		return
	}

	c.JSON(http.StatusCreated, gin.H{"contract": contract.ToResponse()})
}

type contractUpdateRequest struct {
	Contract models.Contract `json:"contract"`
	Actor    string          `json:"actor"`
	Reason   string          `json:"reason"`
}

// Update applies an audited edit. The reason may come from the body or the
// `reason` query parameter; without one, tracked changes are rejected.
func (h *ContractHandler) Update(c *gin.Context) {
	id, _ := strconv.ParseUint(c.Param("contract_id"), 10, 32)

	var req contractUpdateRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "invalid update payload: " + err.Error()})
		return
	}
	if req.Reason == "" {
		req.Reason = c.Query("reason")
	}
	req.Contract.ID = uint(id)

	updated, err := h.contractService.Update(c.Request.Context(), services.ContractUpdate{
		Contract: &req.Contract,
		Actor:    req.Actor,
		Reason:   req.Reason,
	})
	if err != nil {
		respondServiceError(c, err)
		return
	}

	c.JSON(http.StatusOK, gin.H{"contract": updated.ToResponse()})
}

type statusUpdateRequest struct {
	Event string `json:"event" binding:"required"`
}

// UpdateStatus applies a servicing event (pay_off, default, repossess,
// reinstate) through the state machine.
func (h *ContractHandler) UpdateStatus(c *gin.Context) {
	id, _ := strconv.ParseUint(c.Param("contract_id"), 10, 32)

	var req statusUpdateRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "event is required"})
		return
	}

	updated, err := h.contractService.UpdateStatus(c.Request.Context(), uint(id), req.Event)
	if err != nil {
		respondServiceError(c, err)
		return
	}

	c.JSON(http.StatusOK, gin.H{"contract": updated.ToResponse()})
}

// Destroy removes a contract. Administrative cleanup only.
func (h *ContractHandler) Destroy(c *gin.Context) {
	id, _ := strconv.ParseUint(c.Param("contract_id"), 10, 32)

	if err := h.contractService.Delete(c.Request.Context(), uint(id)); err != nil {
		respondServiceError(c, err)
		return
	}

	c.JSON(http.StatusOK, gin.H{"message": "contract deleted"})
}

// AddDocument registers a document reference on the contract.
func (h *ContractHandler) AddDocument(c *gin.Context) {
	id, _ := strconv.ParseUint(c.Param("contract_id"), 10, 32)

	var doc models.ContractDocument
	if err := BindNestedOrFlat(c, "document", &doc); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "invalid document payload: " + err.Error()})
		return
	}
	doc.ContractID = uint(id)

	if err := h.contractService.AddDocument(c.Request.Context(), &doc); err != nil {
		respondServiceError(c, err)
		return
	}

	c.JSON(http.StatusCreated, gin.H{"document": doc})
}
