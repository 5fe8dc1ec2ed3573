package services

import (
	"context"
	"encoding/csv"
	"fmt"
	"io"
	"strconv"
	"strings"
	"time"

	"github.com/shopspring/decimal"

	"github.com/landfolio/cfd-api/internal/models"
)

// ImportRowError is one rejected CSV row. Row numbers count from 1 after the
// header line.
type ImportRowError struct {
	Row     int    `json:"row"`
	Message string `json:"message"`
}

// ImportResult reports a batch outcome. Partial success is expected; failed
// rows never roll back imported ones.
type ImportResult struct {
	Imported int              `json:"imported"`
	Errors   []ImportRowError `json:"errors"`
}

// ImportService loads contracts from CSV files. Each row goes through the
// same normalization and validation as direct creation.
type ImportService struct {
	contractSvc *ContractService
}

func NewImportService(contractSvc *ContractService) *ImportService {
	return &ImportService{contractSvc: contractSvc}
}

// ImportContracts reads a headered CSV stream and creates one contract per
// valid row. Column order is free; headers are matched by name.
func (s *ImportService) ImportContracts(ctx context.Context, r io.Reader) (*ImportResult, error) {
	reader := csv.NewReader(r)
	reader.FieldsPerRecord = -1
	reader.TrimLeadingSpace = true

	header, err := reader.Read()
	if err != nil {
		return nil, fmt.Errorf("reading csv header: %w", err)
	}
	cols := make(map[string]int, len(header))
	for i, name := range header {
		cols[strings.ToLower(strings.TrimSpace(name))] = i
	}

	result := &ImportResult{Errors: []ImportRowError{}}
	rowNum := 0
	for {
		record, err := reader.Read()
		if err == io.EOF {
			break
		}
		rowNum++
		if err != nil {
			result.Errors = append(result.Errors, ImportRowError{Row: rowNum, Message: err.Error()})
			continue
		}

		contract, err := parseContractRow(cols, record)
		if err != nil {
			result.Errors = append(result.Errors, ImportRowError{Row: rowNum, Message: err.Error()})
			continue
		}

		if err := s.contractSvc.Create(ctx, contract); err != nil {
			result.Errors = append(result.Errors, ImportRowError{Row: rowNum, Message: err.Error()})
			continue
		}
		result.Imported++
	}

	return result, nil
}

type rowReader struct {
	cols   map[string]int
	record []string
}

func (r rowReader) get(name string) string {
	idx, ok := r.cols[name]
	if !ok || idx >= len(r.record) {
		return ""
	}
	return strings.TrimSpace(r.record[idx])
}

func (r rowReader) decimal(name string) (decimal.Decimal, error) {
	raw := r.get(name)
	if raw == "" {
		return decimal.Zero, nil
	}
	d, err := decimal.NewFromString(raw)
	if err != nil {
		return decimal.Zero, fmt.Errorf("%s: invalid amount %q", name, raw)
	}
	return d, nil
}

func (r rowReader) decimalPtr(name string) (*decimal.Decimal, error) {
	raw := r.get(name)
	if raw == "" {
		return nil, nil
	}
	d, err := decimal.NewFromString(raw)
	if err != nil {
		return nil, fmt.Errorf("%s: invalid amount %q", name, raw)
	}
	return &d, nil
}

func (r rowReader) date(name string) (time.Time, error) {
	raw := r.get(name)
	if raw == "" {
		return time.Time{}, nil
	}
	t, err := time.Parse("2006-01-02", raw)
	if err != nil {
		return time.Time{}, fmt.Errorf("%s: invalid date %q", name, raw)
	}
	return t, nil
}

func (r rowReader) datePtr(name string) (*time.Time, error) {
	t, err := r.date(name)
	if err != nil {
		return nil, err
	}
	if t.IsZero() {
		return nil, nil
	}
	return &t, nil
}

func (r rowReader) intPtr(name string) (*int, error) {
	raw := r.get(name)
	if raw == "" {
		return nil, nil
	}
	n, err := strconv.Atoi(raw)
	if err != nil {
		return nil, fmt.Errorf("%s: invalid integer %q", name, raw)
	}
	return &n, nil
}

func parseContractRow(cols map[string]int, record []string) (*models.Contract, error) {
	row := rowReader{cols: cols, record: record}

	contract := &models.Contract{
		PropertyID: row.get("property_id"),
		BuyerName:  row.get("buyer_name"),
		County:     row.get("county"),
		State:      row.get("state"),
		OriginType: strings.ToLower(row.get("origin_type")),
		SaleType:   strings.ToLower(row.get("sale_type")),
		Status:     strings.ToLower(row.get("status")),
		DeedStatus: strings.ToLower(row.get("deed_status")),
	}

	var err error
	if contract.ContractPrice, err = row.decimal("contract_price"); err != nil {
		return nil, err
	}
	if contract.CostBasis, err = row.decimal("cost_basis"); err != nil {
		return nil, err
	}
	if contract.DownPayment, err = row.decimal("down_payment"); err != nil {
		return nil, err
	}
	if contract.InstallmentAmount, err = row.decimalPtr("installment_amount"); err != nil {
		return nil, err
	}
	if contract.BalloonAmount, err = row.decimalPtr("balloon_amount"); err != nil {
		return nil, err
	}
	if contract.OpeningReceivable, err = row.decimalPtr("opening_receivable"); err != nil {
		return nil, err
	}
	if contract.InstallmentCount, err = row.intPtr("installment_count"); err != nil {
		return nil, err
	}
	if contract.InstallmentsPaidByTransfer, err = row.intPtr("installments_paid_by_transfer"); err != nil {
		return nil, err
	}
	if contract.ContractDate, err = row.date("contract_date"); err != nil {
		return nil, err
	}
	if contract.TransferDate, err = row.datePtr("transfer_date"); err != nil {
		return nil, err
	}
	if contract.CloseDate, err = row.datePtr("close_date"); err != nil {
		return nil, err
	}
	if contract.FirstInstallmentDate, err = row.datePtr("first_installment_date"); err != nil {
		return nil, err
	}
	if contract.BalloonDate, err = row.datePtr("balloon_date"); err != nil {
		return nil, err
	}
	if contract.DeedRecordedDate, err = row.datePtr("deed_recorded_date"); err != nil {
		return nil, err
	}

	if notes := row.get("notes"); notes != "" {
		contract.Notes = &notes
	}

	return contract, nil
}
