package finance

import (
	"math"
	"time"

	"github.com/shopspring/decimal"

	"github.com/landfolio/cfd-api/internal/models"
)

// IRR root-finder parameters. Newton-Raphson converges in a handful of steps
// on well-behaved streams; bisection over the bounded rate domain picks up the
// rest. Non-convergence yields nil, matching the source API shape.
const (
	irrTolerance = 1e-7
	irrMaxIter   = 200
	irrRateFloor = -0.9999
	irrRateCeil  = 10.0
	daysPerYear  = 365.25
)

type cashFlow struct {
	date   time.Time
	amount float64
}

// IRR solves for the annual discount rate that zeroes the net present value of
// the contract's cash-flow stream: the cost basis out at inception, then the
// down payment and every in-scope receipt at their actual dates. Returns the
// rate as a percentage, or nil when the stream has fewer than two flows, all
// flows share a sign, or the root-finder fails to converge.
func IRR(c *models.Contract, payments []models.Payment) *decimal.Decimal {
	t0 := c.ContractDate
	if c.IsAssumed() && c.TransferDate != nil {
		t0 = *c.TransferDate
	}

	flows := []cashFlow{{date: t0, amount: -c.CostBasis.InexactFloat64()}}

	dp := ReconcileDownPayment(c, payments, Period{})
	if dp.Synthetic && dp.Effective.IsPositive() {
		flows = append(flows, cashFlow{date: c.ContractDate, amount: dp.Effective.InexactFloat64()})
	}

	for _, p := range InScopePayments(c, payments) {
		flows = append(flows, cashFlow{date: p.PaymentDate, amount: p.AmountTotal.InexactFloat64()})
	}

	if len(flows) < 2 || !hasSignChange(flows) {
		return nil
	}

	rate, ok := solveIRR(flows, t0)
	if !ok {
		return nil
	}
	pct := decimal.NewFromFloat(rate * 100).Round(4)
	return &pct
}

func hasSignChange(flows []cashFlow) bool {
	var hasPos, hasNeg bool
	for _, f := range flows {
		if f.amount > 0 {
			hasPos = true
		}
		if f.amount < 0 {
			hasNeg = true
		}
	}
	return hasPos && hasNeg
}

func npv(flows []cashFlow, t0 time.Time, rate float64) (value, derivative float64) {
	for _, f := range flows {
		years := f.date.Sub(t0).Hours() / 24 / daysPerYear
		discount := math.Pow(1+rate, years)
		value += f.amount / discount
		derivative -= years * f.amount / (discount * (1 + rate))
	}
	return value, derivative
}

func solveIRR(flows []cashFlow, t0 time.Time) (float64, bool) {
	// Newton-Raphson from a conventional 10% guess.
	rate := 0.1
	for i := 0; i < irrMaxIter; i++ {
		value, derivative := npv(flows, t0, rate)
		if math.Abs(value) < irrTolerance {
			return rate, true
		}
		if derivative == 0 || math.IsNaN(derivative) {
			break
		}
		next := rate - value/derivative
		if next <= irrRateFloor || next > irrRateCeil || math.IsNaN(next) {
			break
		}
		if math.Abs(next-rate) < irrTolerance {
			return next, true
		}
		rate = next
	}

	// Bisection fallback over the bounded rate domain.
	lo, hi := irrRateFloor, irrRateCeil
	vLo, _ := npv(flows, t0, lo)
	vHi, _ := npv(flows, t0, hi)
	if vLo*vHi > 0 {
		return 0, false
	}
	for i := 0; i < irrMaxIter; i++ {
		mid := (lo + hi) / 2
		vMid, _ := npv(flows, t0, mid)
		if math.Abs(vMid) < irrTolerance || (hi-lo)/2 < irrTolerance {
			return mid, true
		}
		if vLo*vMid < 0 {
			hi = mid
		} else {
			lo = mid
			vLo = vMid
		}
	}
	return 0, false
}
