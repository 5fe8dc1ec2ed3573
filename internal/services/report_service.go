package services

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/shopspring/decimal"
	"gorm.io/gorm"

	"github.com/landfolio/cfd-api/internal/finance"
	"github.com/landfolio/cfd-api/internal/models"
	"github.com/landfolio/cfd-api/internal/repository"
)

// ReportService composes the period reports. Every report re-derives from raw
// contract and payment rows on each call; figures feed tax filings, so there
// is no cache to go stale.
type ReportService struct {
	contractRepo    repository.ContractRepository
	installmentRepo repository.InstallmentRepository
	scheduleSvc     *ScheduleService
}

func NewReportService(
	contractRepo repository.ContractRepository,
	installmentRepo repository.InstallmentRepository,
	scheduleSvc *ScheduleService,
) *ReportService {
	return &ReportService{
		contractRepo:    contractRepo,
		installmentRepo: installmentRepo,
		scheduleSvc:     scheduleSvc,
	}
}

// TaxScheduleRow is one contract's installment-sale figures for the period.
type TaxScheduleRow struct {
	PropertyID           string          `json:"property_id"`
	BuyerName            string          `json:"buyer_name"`
	OriginType           string          `json:"origin_type"`
	SaleType             string          `json:"sale_type"`
	PrincipalReceived    decimal.Decimal `json:"principal_received"`
	EffectiveDownPayment decimal.Decimal `json:"effective_down_payment"`
	GrossProfitPercent   decimal.Decimal `json:"gross_profit_percent"`
	GainRecognized       decimal.Decimal `json:"gain_recognized"`
	LateFees             decimal.Decimal `json:"late_fees"`
	EndingReceivable     decimal.Decimal `json:"ending_receivable"`
}

// TaxScheduleReport is the per-period installment-sale summary plus totals.
type TaxScheduleReport struct {
	PeriodStart       time.Time        `json:"period_start"`
	PeriodEnd         time.Time        `json:"period_end"`
	Rows              []TaxScheduleRow `json:"rows"`
	TotalPrincipal    decimal.Decimal  `json:"total_principal"`
	TotalGain         decimal.Decimal  `json:"total_gain"`
	TotalLateFees     decimal.Decimal  `json:"total_late_fees"`
	SuggestedFilename string           `json:"suggested_filename"`
}

// TaxSchedule builds the installment-sale schedule for the period. The
// effective down payment comes from the shared reconciliation: a matched
// payment row is already inside the principal sum, a synthetic one is added
// exactly once.
func (s *ReportService) TaxSchedule(ctx context.Context, period finance.Period) (*TaxScheduleReport, error) {
	contracts, err := s.contractRepo.FindAllWithDetails(ctx)
	if err != nil {
		return nil, err
	}

	report := &TaxScheduleReport{
		PeriodStart:    period.Start,
		PeriodEnd:      period.End,
		TotalPrincipal: decimal.Zero,
		TotalGain:      decimal.Zero,
		TotalLateFees:  decimal.Zero,
		SuggestedFilename: fmt.Sprintf("tax_schedule_%s_%s.xlsx",
			period.Start.Format("20060102"), period.End.Format("20060102")),
	}

	for i := range contracts {
		c := &contracts[i]
		if c.IsCash() {
			continue
		}

		inScope := finance.InScopePayments(c, c.Payments)
		var inPeriod []models.Payment
		for _, p := range inScope {
			if period.Contains(p.PaymentDate) {
				inPeriod = append(inPeriod, p)
			}
		}

		dp := finance.ReconcileDownPayment(c, c.Payments, period)
		principal := finance.SumPrincipal(inPeriod)
		if dp.Synthetic {
			principal = principal.Add(dp.Effective)
		}

		if principal.IsZero() && !dp.Effective.IsPositive() {
			continue
		}

		gp := finance.GrossProfitPercent(c.ContractPrice, c.CostBasis)
		row := TaxScheduleRow{
			PropertyID:           c.PropertyID,
			BuyerName:            c.BuyerName,
			OriginType:           c.OriginType,
			SaleType:             c.SaleType,
			PrincipalReceived:    principal,
			EffectiveDownPayment: dp.Effective,
			GrossProfitPercent:   gp.Round(4),
			GainRecognized:       finance.GainRecognized(principal, gp).Round(2),
			LateFees:             finance.SumLateFees(inPeriod),
			EndingReceivable:     endingReceivable(c, inScope, period, dp),
		}
		report.Rows = append(report.Rows, row)

		report.TotalPrincipal = report.TotalPrincipal.Add(row.PrincipalReceived)
		report.TotalGain = report.TotalGain.Add(row.GainRecognized)
		report.TotalLateFees = report.TotalLateFees.Add(row.LateFees)
	}

	return report, nil
}

// endingReceivable is the balance as of the period end: all in-scope payments
// dated on or before the cutoff count, plus a synthetic down payment once.
func endingReceivable(c *models.Contract, inScope []models.Payment, period finance.Period, dp finance.DownPaymentResult) decimal.Decimal {
	var upToEnd []models.Payment
	for _, p := range inScope {
		if period.End.IsZero() || !p.PaymentDate.After(period.End) {
			upToEnd = append(upToEnd, p)
		}
	}
	return finance.ReceivableBalance(c, upToEnd)
}

// SubledgerRow is one payment-level line with the running receivable after it.
type SubledgerRow struct {
	PaymentDate       time.Time       `json:"payment_date"`
	PropertyID        string          `json:"property_id"`
	BuyerName         string          `json:"buyer_name"`
	Channel           string          `json:"channel"`
	Memo              string          `json:"memo"`
	PrincipalAmount   decimal.Decimal `json:"principal_amount"`
	LateFeeAmount     decimal.Decimal `json:"late_fee_amount"`
	AmountTotal       decimal.Decimal `json:"amount_total"`
	RunningReceivable decimal.Decimal `json:"running_receivable"`
}

// SubledgerReport lists every in-scope payment in the window, per contract,
// with a running receivable balance.
type SubledgerReport struct {
	PeriodStart       time.Time      `json:"period_start"`
	PeriodEnd         time.Time      `json:"period_end"`
	Rows              []SubledgerRow `json:"rows"`
	SuggestedFilename string         `json:"suggested_filename"`
}

// Subledger builds the payment-level detail for the period. The running
// balance starts from the receivable just before the window opens.
func (s *ReportService) Subledger(ctx context.Context, period finance.Period) (*SubledgerReport, error) {
	contracts, err := s.contractRepo.FindAllWithDetails(ctx)
	if err != nil {
		return nil, err
	}

	report := &SubledgerReport{
		PeriodStart: period.Start,
		PeriodEnd:   period.End,
		SuggestedFilename: fmt.Sprintf("subledger_%s_%s.pdf",
			period.Start.Format("20060102"), period.End.Format("20060102")),
	}

	for i := range contracts {
		c := &contracts[i]
		if c.IsCash() {
			continue
		}

		inScope := finance.InScopePayments(c, c.Payments)

		var before []models.Payment
		for _, p := range inScope {
			if !period.Start.IsZero() && p.PaymentDate.Before(period.Start) {
				before = append(before, p)
			}
		}
		running := finance.ReceivableBalance(c, before)

		for _, p := range inScope {
			if !period.Contains(p.PaymentDate) {
				continue
			}
			running = running.Sub(p.PrincipalAmount)
			memo := ""
			if p.Memo != nil {
				memo = *p.Memo
			}
			report.Rows = append(report.Rows, SubledgerRow{
				PaymentDate:       p.PaymentDate,
				PropertyID:        c.PropertyID,
				BuyerName:         c.BuyerName,
				Channel:           p.Channel,
				Memo:              memo,
				PrincipalAmount:   p.PrincipalAmount,
				LateFeeAmount:     p.LateFeeAmount,
				AmountTotal:       p.AmountTotal,
				RunningReceivable: running,
			})
		}
	}

	return report, nil
}

// CashFlowMonth aggregates scheduled obligations falling due in one month.
type CashFlowMonth struct {
	Month     string          `json:"month"`
	DueCount  int             `json:"due_count"`
	AmountDue decimal.Decimal `json:"amount_due"`
}

// CashFlowReport projects expected collections from the stored installment
// schedule.
type CashFlowReport struct {
	MonthsAhead       int             `json:"months_ahead"`
	Months            []CashFlowMonth `json:"months"`
	TotalExpected     decimal.Decimal `json:"total_expected"`
	SuggestedFilename string          `json:"suggested_filename"`
}

// CashFlowProjection reads open installments due within the horizon. The
// schedule projection is the single source here; nothing is recomputed from
// contract terms.
func (s *ReportService) CashFlowProjection(ctx context.Context, monthsAhead int) (*CashFlowReport, error) {
	if monthsAhead <= 0 {
		monthsAhead = 12
	}

	now := time.Now()
	if err := s.scheduleSvc.RefreshOverdue(ctx, now); err != nil {
		return nil, err
	}

	start := time.Date(now.Year(), now.Month(), 1, 0, 0, 0, 0, time.UTC)
	end := start.AddDate(0, monthsAhead, 0).AddDate(0, 0, -1)

	installments, err := s.installmentRepo.FindDueInPeriod(ctx, start, end)
	if err != nil {
		return nil, err
	}

	byMonth := make(map[string]*CashFlowMonth)
	var order []string
	total := decimal.Zero

	for _, inst := range installments {
		if !inst.IsOpen() {
			continue
		}
		key := inst.DueDate.Format("2006-01")
		m, ok := byMonth[key]
		if !ok {
			m = &CashFlowMonth{Month: key, AmountDue: decimal.Zero}
			byMonth[key] = m
			order = append(order, key)
		}
		m.DueCount++
		m.AmountDue = m.AmountDue.Add(inst.Amount)
		total = total.Add(inst.Amount)
	}

	report := &CashFlowReport{
		MonthsAhead:       monthsAhead,
		TotalExpected:     total,
		SuggestedFilename: fmt.Sprintf("cash_flow_%s.csv", now.Format("200601")),
	}
	for _, key := range order {
		report.Months = append(report.Months, *byMonth[key])
	}

	return report, nil
}

// Pre-deed tie-out classifications
const (
	TieOutRecorded    = "recorded"
	TieOutPreDeed     = "pre_deed"
	TieOutMissingInfo = "missing_info"
)

// TieOutRow is one contract's deed standing at the cutoff.
type TieOutRow struct {
	PropertyID       string          `json:"property_id"`
	BuyerName        string          `json:"buyer_name"`
	Classification   string          `json:"classification"`
	DeedStatus       string          `json:"deed_status"`
	DeedRecordedDate *time.Time      `json:"deed_recorded_date"`
	Receivable       decimal.Decimal `json:"receivable"`
}

// TieOutReport groups the book by deed standing at a cutoff date.
type TieOutReport struct {
	Cutoff            time.Time   `json:"cutoff"`
	Rows              []TieOutRow `json:"rows"`
	RecordedCount     int         `json:"recorded_count"`
	PreDeedCount      int         `json:"pre_deed_count"`
	MissingInfoCount  int         `json:"missing_info_count"`
	SuggestedFilename string      `json:"suggested_filename"`
}

// PreDeedTieOut classifies every contract against the cutoff: unknown deed
// status is missing info; not recorded is pre-deed; recorded counts only when
// the recording landed on or before the cutoff, otherwise the liability was
// still open as of that date.
func (s *ReportService) PreDeedTieOut(ctx context.Context, cutoff time.Time) (*TieOutReport, error) {
	contracts, err := s.contractRepo.FindAllWithDetails(ctx)
	if err != nil {
		return nil, err
	}

	report := &TieOutReport{
		Cutoff:            cutoff,
		SuggestedFilename: fmt.Sprintf("pre_deed_tie_out_%s.csv", cutoff.Format("20060102")),
	}

	for i := range contracts {
		c := &contracts[i]

		var class string
		switch c.DeedStatus {
		case models.DeedStatusRecorded:
			if c.DeedRecordedDate != nil && !c.DeedRecordedDate.After(cutoff) {
				class = TieOutRecorded
			} else {
				class = TieOutPreDeed
			}
		case models.DeedStatusNotRecorded:
			class = TieOutPreDeed
		default:
			class = TieOutMissingInfo
		}

		switch class {
		case TieOutRecorded:
			report.RecordedCount++
		case TieOutPreDeed:
			report.PreDeedCount++
		default:
			report.MissingInfoCount++
		}

		report.Rows = append(report.Rows, TieOutRow{
			PropertyID:       c.PropertyID,
			BuyerName:        c.BuyerName,
			Classification:   class,
			DeedStatus:       c.DeedStatus,
			DeedRecordedDate: c.DeedRecordedDate,
			Receivable:       finance.ReceivableBalance(c, finance.InScopePayments(c, c.Payments)),
		})
	}

	return report, nil
}

// ContractFinancials is the derived financial picture of one contract.
type ContractFinancials struct {
	GrossProfitPercent decimal.Decimal  `json:"gross_profit_percent"`
	ReceivableBalance  decimal.Decimal  `json:"receivable_balance"`
	PrincipalReceived  decimal.Decimal  `json:"principal_received"`
	GainToDate         decimal.Decimal  `json:"gain_to_date"`
	LateFeesToDate     decimal.Decimal  `json:"late_fees_to_date"`
	ROI                decimal.Decimal  `json:"roi"`
	IRR                *decimal.Decimal `json:"irr"`
}

// Financials derives the full calculation set for one contract.
func (s *ReportService) Financials(ctx context.Context, contractID uint) (*ContractFinancials, error) {
	c, err := s.contractRepo.FindByIDWithDetails(ctx, contractID)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, ErrNotFound
		}
		return nil, err
	}

	inScope := finance.InScopePayments(c, c.Payments)
	gp := finance.GrossProfitPercent(c.ContractPrice, c.CostBasis)
	principal := finance.SumPrincipal(inScope)

	return &ContractFinancials{
		GrossProfitPercent: gp.Round(4),
		ReceivableBalance:  finance.ReceivableBalance(c, c.Payments),
		PrincipalReceived:  principal,
		GainToDate:         finance.GainRecognized(principal, gp).Round(2),
		LateFeesToDate:     finance.SumLateFees(inScope),
		ROI:                finance.ROI(c.ContractPrice, c.CostBasis).Round(2),
		IRR:                finance.IRR(c, c.Payments),
	}, nil
}
