package handlers

import (
	"net/http"
	"strconv"
	"time"

	"github.com/gin-gonic/gin"

	"github.com/landfolio/cfd-api/internal/finance"
	"github.com/landfolio/cfd-api/internal/services"
)

type ReportHandler struct {
	reportService *services.ReportService
	exportService *services.ExportService
}

func NewReportHandler(reportService *services.ReportService, exportService *services.ExportService) *ReportHandler {
	return &ReportHandler{reportService: reportService, exportService: exportService}
}

// periodFromQuery reads either ?year= or ?start_date=&end_date=. Defaults to
// the current calendar year.
func periodFromQuery(c *gin.Context) (finance.Period, error) {
	if year := c.Query("year"); year != "" {
		y, err := strconv.Atoi(year)
		if err != nil {
			return finance.Period{}, err
		}
		return finance.YearPeriod(y), nil
	}

	start, end := c.Query("start_date"), c.Query("end_date")
	if start == "" && end == "" {
		return finance.YearPeriod(time.Now().Year()), nil
	}

	var period finance.Period
	var err error
	if start != "" {
		if period.Start, err = time.Parse("2006-01-02", start); err != nil {
			return finance.Period{}, err
		}
	}
	if end != "" {
		if period.End, err = time.Parse("2006-01-02", end); err != nil {
			return finance.Period{}, err
		}
	}
	return period, nil
}

func sendFile(c *gin.Context, data []byte, filename, contentType string) {
	c.Header("Content-Disposition", "attachment; filename="+filename)
	c.Data(http.StatusOK, contentType, data)
}

// TaxSchedule renders the installment-sale schedule for a period as JSON,
// CSV or XLSX.
func (h *ReportHandler) TaxSchedule(c *gin.Context) {
	period, err := periodFromQuery(c)
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "invalid period: " + err.Error()})
		return
	}

	report, err := h.reportService.TaxSchedule(c.Request.Context(), period)
	if err != nil {
		respondServiceError(c, err)
		return
	}

	switch c.DefaultQuery("format", "json") {
	case "csv":
		data, filename, err := h.exportService.TaxScheduleCSV(c.Request.Context(), report)
		if err != nil {
			respondServiceError(c, err)
			return
		}
		sendFile(c, data, filename, "text/csv")
	case "xlsx":
		data, filename, err := h.exportService.TaxScheduleXLSX(c.Request.Context(), report)
		if err != nil {
			respondServiceError(c, err)
			return
		}
		sendFile(c, data, filename, "application/vnd.openxmlformats-officedocument.spreadsheetml.sheet")
	default:
		c.JSON(http.StatusOK, report)
	}
}

// Subledger renders the payment-level detail for a period as JSON, CSV or PDF.
func (h *ReportHandler) Subledger(c *gin.Context) {
	period, err := periodFromQuery(c)
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "invalid period: " + err.Error()})
		return
	}

	report, err := h.reportService.Subledger(c.Request.Context(), period)
	if err != nil {
		respondServiceError(c, err)
		return
	}

	switch c.DefaultQuery("format", "json") {
	case "csv":
		data, filename, err := h.exportService.SubledgerCSV(c.Request.Context(), report)
		if err != nil {
			respondServiceError(c, err)
			return
		}
		sendFile(c, data, filename, "text/csv")
	case "pdf":
		data, filename, err := h.exportService.SubledgerPDF(c.Request.Context(), report)
		if err != nil {
			respondServiceError(c, err)
			return
		}
		sendFile(c, data, filename, "application/pdf")
	default:
		c.JSON(http.StatusOK, report)
	}
}

// CashFlow renders the installment-based collection projection.
func (h *ReportHandler) CashFlow(c *gin.Context) {
	months, _ := strconv.Atoi(c.DefaultQuery("months", "12"))

	report, err := h.reportService.CashFlowProjection(c.Request.Context(), months)
	if err != nil {
		respondServiceError(c, err)
		return
	}

	if c.DefaultQuery("format", "json") == "csv" {
		data, filename, err := h.exportService.CashFlowCSV(c.Request.Context(), report)
		if err != nil {
			respondServiceError(c, err)
			return
		}
		sendFile(c, data, filename, "text/csv")
		return
	}
	c.JSON(http.StatusOK, report)
}

// PreDeedTieOut classifies the book by deed standing at a cutoff date.
func (h *ReportHandler) PreDeedTieOut(c *gin.Context) {
	cutoffStr := c.DefaultQuery("cutoff", time.Now().Format("2006-01-02"))
	cutoff, err := time.Parse("2006-01-02", cutoffStr)
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "cutoff must be YYYY-MM-DD"})
		return
	}

	report, err := h.reportService.PreDeedTieOut(c.Request.Context(), cutoff)
	if err != nil {
		respondServiceError(c, err)
		return
	}

	if c.DefaultQuery("format", "json") == "csv" {
		data, filename, err := h.exportService.TieOutCSV(c.Request.Context(), report)
		if err != nil {
			respondServiceError(c, err)
			return
		}
		sendFile(c, data, filename, "text/csv")
		return
	}
	c.JSON(http.StatusOK, report)
}
