// Package finance holds the pure installment-sale calculations. Every
// function re-derives from raw contract and payment rows on each call; there
// is deliberately no caching layer because the output feeds tax reporting.
package finance

import (
	"github.com/shopspring/decimal"

	"github.com/landfolio/cfd-api/internal/models"
)

var hundred = decimal.NewFromInt(100)

// GrossProfitPercent returns (price - costBasis) / price * 100, or zero when
// the price is not positive.
func GrossProfitPercent(price, costBasis decimal.Decimal) decimal.Decimal {
	if !price.IsPositive() {
		return decimal.Zero
	}
	return price.Sub(costBasis).Div(price).Mul(hundred)
}

// GainRecognized applies the installment-sale method: each dollar of principal
// collected carries the same profit fraction as the whole contract.
func GainRecognized(principalReceived, grossProfitPercent decimal.Decimal) decimal.Decimal {
	return principalReceived.Mul(grossProfitPercent).Div(hundred)
}

// ROI returns (price - costBasis) / costBasis * 100, or zero when the cost
// basis is not positive.
func ROI(price, costBasis decimal.Decimal) decimal.Decimal {
	if !costBasis.IsPositive() {
		return decimal.Zero
	}
	return price.Sub(costBasis).Div(costBasis).Mul(hundred)
}

// InScopePayments filters a contract's payments down to the ones that count.
// For assumed contracts, payments strictly before the transfer date belong to
// the prior owner and are excluded from every downstream figure: receivable
// balance, gain recognized, and all period aggregates.
func InScopePayments(c *models.Contract, payments []models.Payment) []models.Payment {
	if !c.IsAssumed() || c.TransferDate == nil {
		return payments
	}
	out := make([]models.Payment, 0, len(payments))
	for _, p := range payments {
		if !p.PaymentDate.Before(*c.TransferDate) {
			out = append(out, p)
		}
	}
	return out
}

// SumPrincipal totals the principal portion of the given payments.
func SumPrincipal(payments []models.Payment) decimal.Decimal {
	total := decimal.Zero
	for _, p := range payments {
		total = total.Add(p.PrincipalAmount)
	}
	return total
}

// SumLateFees totals the late fee portion of the given payments.
func SumLateFees(payments []models.Payment) decimal.Decimal {
	total := decimal.Zero
	for _, p := range payments {
		total = total.Add(p.LateFeeAmount)
	}
	return total
}

// ReceivableBalance computes the outstanding financed amount.
//
//	cash:    always zero, no balance is carried
//	assumed: openingReceivable minus principal received on or after transfer
//	direct:  contractPrice minus downPayment minus principal received
func ReceivableBalance(c *models.Contract, payments []models.Payment) decimal.Decimal {
	switch {
	case c.IsCash():
		return decimal.Zero
	case c.IsAssumed():
		opening := decimal.Zero
		if c.OpeningReceivable != nil {
			opening = *c.OpeningReceivable
		}
		return opening.Sub(SumPrincipal(InScopePayments(c, payments)))
	default:
		return c.ContractPrice.Sub(c.DownPayment).Sub(SumPrincipal(payments))
	}
}
