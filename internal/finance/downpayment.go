package finance

import (
	"strings"
	"time"

	"github.com/shopspring/decimal"

	"github.com/landfolio/cfd-api/internal/models"
)

// Period bounds a reporting window. A zero Start or End leaves that side open.
type Period struct {
	Start time.Time
	End   time.Time
}

// YearPeriod returns the calendar-year window for a tax year.
func YearPeriod(year int) Period {
	return Period{
		Start: time.Date(year, time.January, 1, 0, 0, 0, 0, time.UTC),
		End:   time.Date(year, time.December, 31, 0, 0, 0, 0, time.UTC),
	}
}

// Contains reports whether t falls inside the period, bounds inclusive.
func (p Period) Contains(t time.Time) bool {
	if !p.Start.IsZero() && t.Before(p.Start) {
		return false
	}
	if !p.End.IsZero() && t.After(p.End) {
		return false
	}
	return true
}

// DownPaymentResult is the outcome of reconciling a contract's down payment
// for one reporting window.
type DownPaymentResult struct {
	// Effective is the down payment that counts for the period.
	Effective decimal.Decimal
	// PaymentID is set when an explicit down-payment row was found; callers
	// exclude that payment from installment counts to avoid double counting.
	PaymentID *uint
	// Synthetic marks a down payment taken from the contract's stated field
	// rather than a payment row. It must enter period totals exactly once.
	Synthetic bool
}

// ReconcileDownPayment decides whether a contract's stated down payment is
// already represented by a payment row or must be synthesized.
//
// A payment whose memo mentions "down payment" or "entrada" (case-insensitive)
// wins. Otherwise a direct CFD contract whose contract date falls inside the
// period synthesizes its stated down payment. Assumed contracts never
// synthesize: their stated field is record-keeping only, and a candidate is
// only in scope at all when the contract date is on or after the transfer.
//
// Every period-based report must go through this one function so the
// dashboard, tax schedule and subledger agree. The memo match is a known
// fragile heuristic carried over on purpose; see DESIGN.md.
func ReconcileDownPayment(c *models.Contract, payments []models.Payment, period Period) DownPaymentResult {
	for _, p := range InScopePayments(c, payments) {
		if p.Memo == nil {
			continue
		}
		memo := strings.ToLower(*p.Memo)
		if strings.Contains(memo, "down payment") || strings.Contains(memo, "entrada") {
			id := p.ID
			return DownPaymentResult{Effective: p.PrincipalAmount, PaymentID: &id}
		}
	}

	if c.IsDirect() && c.IsCFD() && period.Contains(c.ContractDate) {
		return DownPaymentResult{Effective: c.DownPayment, Synthetic: true}
	}

	// Everything else, assumed contracts included, contributes nothing.
	return DownPaymentResult{Effective: decimal.Zero}
}
