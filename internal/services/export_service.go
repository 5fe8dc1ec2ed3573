package services

import (
	"bytes"
	"context"
	"encoding/csv"
	"fmt"

	"github.com/jung-kurt/gofpdf"
	"github.com/xuri/excelize/v2"
)

// ExportService renders the period reports as downloadable files.
type ExportService struct{}

func NewExportService() *ExportService {
	return &ExportService{}
}

// TaxScheduleCSV renders the tax schedule as CSV.
func (s *ExportService) TaxScheduleCSV(ctx context.Context, report *TaxScheduleReport) ([]byte, string, error) {
	buf := new(bytes.Buffer)
	writer := csv.NewWriter(buf)

	_ = writer.Write([]string{"Installment Sale Tax Schedule",
		report.PeriodStart.Format("2006-01-02") + " to " + report.PeriodEnd.Format("2006-01-02")})
	_ = writer.Write([]string{""})
	_ = writer.Write([]string{"Property", "Buyer", "Origin", "Principal Received", "Effective Down Payment",
		"Gross Profit %", "Gain Recognized", "Late Fees", "Ending Receivable"})

	for _, row := range report.Rows {
		_ = writer.Write([]string{
			row.PropertyID,
			row.BuyerName,
			row.OriginType,
			row.PrincipalReceived.StringFixed(2),
			row.EffectiveDownPayment.StringFixed(2),
			row.GrossProfitPercent.StringFixed(4),
			row.GainRecognized.StringFixed(2),
			row.LateFees.StringFixed(2),
			row.EndingReceivable.StringFixed(2),
		})
	}

	_ = writer.Write([]string{""})
	_ = writer.Write([]string{"Totals", "", "",
		report.TotalPrincipal.StringFixed(2), "", "",
		report.TotalGain.StringFixed(2),
		report.TotalLateFees.StringFixed(2), ""})

	writer.Flush()

	filename := fmt.Sprintf("tax_schedule_%s_%s.csv",
		report.PeriodStart.Format("20060102"), report.PeriodEnd.Format("20060102"))
	return buf.Bytes(), filename, nil
}

// TaxScheduleXLSX renders the tax schedule as a spreadsheet.
func (s *ExportService) TaxScheduleXLSX(ctx context.Context, report *TaxScheduleReport) ([]byte, string, error) {
	f := excelize.NewFile()
	defer f.Close()

	sheet := "Tax Schedule"
	_ = f.SetSheetName("Sheet1", sheet)

	headerStyle, _ := f.NewStyle(&excelize.Style{
		Font: &excelize.Font{Bold: true},
		Fill: excelize.Fill{Type: "pattern", Color: []string{"#E0E0E0"}, Pattern: 1},
	})

	_ = f.SetCellValue(sheet, "A1", "Installment Sale Tax Schedule")
	_ = f.SetCellValue(sheet, "B1", report.PeriodStart.Format("2006-01-02")+" to "+report.PeriodEnd.Format("2006-01-02"))

	headers := []string{"Property", "Buyer", "Origin", "Principal Received", "Effective Down Payment",
		"Gross Profit %", "Gain Recognized", "Late Fees", "Ending Receivable"}
	for i, h := range headers {
		cell, _ := excelize.CoordinatesToCellName(i+1, 3)
		_ = f.SetCellValue(sheet, cell, h)
		_ = f.SetCellStyle(sheet, cell, cell, headerStyle)
	}

	for r, row := range report.Rows {
		values := []interface{}{
			row.PropertyID,
			row.BuyerName,
			row.OriginType,
			row.PrincipalReceived.InexactFloat64(),
			row.EffectiveDownPayment.InexactFloat64(),
			row.GrossProfitPercent.InexactFloat64(),
			row.GainRecognized.InexactFloat64(),
			row.LateFees.InexactFloat64(),
			row.EndingReceivable.InexactFloat64(),
		}
		for c, v := range values {
			cell, _ := excelize.CoordinatesToCellName(c+1, r+4)
			_ = f.SetCellValue(sheet, cell, v)
		}
	}

	totalRow := len(report.Rows) + 5
	_ = f.SetCellValue(sheet, fmt.Sprintf("A%d", totalRow), "Totals")
	_ = f.SetCellValue(sheet, fmt.Sprintf("D%d", totalRow), report.TotalPrincipal.InexactFloat64())
	_ = f.SetCellValue(sheet, fmt.Sprintf("G%d", totalRow), report.TotalGain.InexactFloat64())
	_ = f.SetCellValue(sheet, fmt.Sprintf("H%d", totalRow), report.TotalLateFees.InexactFloat64())

	buf, err := f.WriteToBuffer()
	if err != nil {
		return nil, "", err
	}
	return buf.Bytes(), report.SuggestedFilename, nil
}

// SubledgerCSV renders the subledger as CSV.
func (s *ExportService) SubledgerCSV(ctx context.Context, report *SubledgerReport) ([]byte, string, error) {
	buf := new(bytes.Buffer)
	writer := csv.NewWriter(buf)

	_ = writer.Write([]string{"Receivable Subledger",
		report.PeriodStart.Format("2006-01-02") + " to " + report.PeriodEnd.Format("2006-01-02")})
	_ = writer.Write([]string{""})
	_ = writer.Write([]string{"Date", "Property", "Buyer", "Channel", "Memo",
		"Principal", "Late Fee", "Total", "Running Receivable"})

	for _, row := range report.Rows {
		_ = writer.Write([]string{
			row.PaymentDate.Format("2006-01-02"),
			row.PropertyID,
			row.BuyerName,
			row.Channel,
			row.Memo,
			row.PrincipalAmount.StringFixed(2),
			row.LateFeeAmount.StringFixed(2),
			row.AmountTotal.StringFixed(2),
			row.RunningReceivable.StringFixed(2),
		})
	}
	writer.Flush()

	filename := fmt.Sprintf("subledger_%s_%s.csv",
		report.PeriodStart.Format("20060102"), report.PeriodEnd.Format("20060102"))
	return buf.Bytes(), filename, nil
}

// SubledgerPDF renders the subledger as a printable PDF.
func (s *ExportService) SubledgerPDF(ctx context.Context, report *SubledgerReport) ([]byte, string, error) {
	pdf := gofpdf.New("L", "mm", "A4", "")
	pdf.AddPage()

	pdf.SetFont("Arial", "B", 14)
	pdf.Cell(120, 10, "Receivable Subledger")
	pdf.SetFont("Arial", "", 10)
	pdf.Cell(80, 10, report.PeriodStart.Format("2006-01-02")+" to "+report.PeriodEnd.Format("2006-01-02"))
	pdf.Ln(12)

	widths := []float64{22, 25, 50, 22, 50, 25, 22, 25, 32}
	headers := []string{"Date", "Property", "Buyer", "Channel", "Memo", "Principal", "Late Fee", "Total", "Receivable"}

	pdf.SetFont("Arial", "B", 9)
	for i, h := range headers {
		pdf.CellFormat(widths[i], 7, h, "1", 0, "L", false, 0, "")
	}
	pdf.Ln(-1)

	pdf.SetFont("Arial", "", 8)
	for _, row := range report.Rows {
		memo := row.Memo
		if len(memo) > 34 {
			memo = memo[:34]
		}
		cells := []string{
			row.PaymentDate.Format("2006-01-02"),
			row.PropertyID,
			row.BuyerName,
			row.Channel,
			memo,
			row.PrincipalAmount.StringFixed(2),
			row.LateFeeAmount.StringFixed(2),
			row.AmountTotal.StringFixed(2),
			row.RunningReceivable.StringFixed(2),
		}
		for i, c := range cells {
			pdf.CellFormat(widths[i], 6, c, "1", 0, "L", false, 0, "")
		}
		pdf.Ln(-1)
	}

	buf := new(bytes.Buffer)
	if err := pdf.Output(buf); err != nil {
		return nil, "", err
	}
	return buf.Bytes(), report.SuggestedFilename, nil
}

// CashFlowCSV renders the cash-flow projection as CSV.
func (s *ExportService) CashFlowCSV(ctx context.Context, report *CashFlowReport) ([]byte, string, error) {
	buf := new(bytes.Buffer)
	writer := csv.NewWriter(buf)

	_ = writer.Write([]string{"Cash Flow Projection", fmt.Sprintf("%d months", report.MonthsAhead)})
	_ = writer.Write([]string{""})
	_ = writer.Write([]string{"Month", "Installments Due", "Amount Due"})
	for _, m := range report.Months {
		_ = writer.Write([]string{m.Month, fmt.Sprintf("%d", m.DueCount), m.AmountDue.StringFixed(2)})
	}
	_ = writer.Write([]string{""})
	_ = writer.Write([]string{"Total", "", report.TotalExpected.StringFixed(2)})
	writer.Flush()

	return buf.Bytes(), report.SuggestedFilename, nil
}

// TieOutCSV renders the pre-deed tie-out as CSV.
func (s *ExportService) TieOutCSV(ctx context.Context, report *TieOutReport) ([]byte, string, error) {
	buf := new(bytes.Buffer)
	writer := csv.NewWriter(buf)

	_ = writer.Write([]string{"Pre-Deed Tie-Out", "Cutoff " + report.Cutoff.Format("2006-01-02")})
	_ = writer.Write([]string{""})
	_ = writer.Write([]string{"Property", "Buyer", "Classification", "Deed Status", "Recorded Date", "Receivable"})
	for _, row := range report.Rows {
		recorded := ""
		if row.DeedRecordedDate != nil {
			recorded = row.DeedRecordedDate.Format("2006-01-02")
		}
		_ = writer.Write([]string{
			row.PropertyID,
			row.BuyerName,
			row.Classification,
			row.DeedStatus,
			recorded,
			row.Receivable.StringFixed(2),
		})
	}
	writer.Flush()

	return buf.Bytes(), report.SuggestedFilename, nil
}
