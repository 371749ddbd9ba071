package document

import (
	"github.com/evardgh/apdatebookkeeping-REAL/internal/domain/shared"
	"github.com/shopspring/decimal"
)

var hundred = decimal.NewFromInt(100)

// Totals are the derived amounts of a priced document
type Totals struct {
	Subtotal decimal.Decimal `json:"subtotal"`
	Tax      decimal.Decimal `json:"tax"`
	Total    decimal.Decimal `json:"total"`
}

// ComputeTotals prices a list of lines:
//
//	subtotal = Σ round2(quantity × unit price)
//	total    = round2(subtotal × (1 + taxRate/100))
//
// The result depends only on its inputs and not on line order.
func ComputeTotals(items []LineItem, taxRatePercent decimal.Decimal) Totals {
	subtotal := decimal.Zero
	for _, item := range items {
		subtotal = subtotal.Add(item.Amount())
	}
	subtotal = subtotal.Round(2)
	multiplier := decimal.NewFromInt(1).Add(taxRatePercent.Div(hundred))
	total := subtotal.Mul(multiplier).Round(2)
	return Totals{
		Subtotal: subtotal,
		Tax:      total.Sub(subtotal),
		Total:    total,
	}
}

// ValidateTaxRate checks that a tax rate is a percentage between 0 and 100
func ValidateTaxRate(taxRatePercent decimal.Decimal) error {
	if taxRatePercent.IsNegative() || taxRatePercent.GreaterThan(hundred) {
		return shared.NewValidationError("Tax rate must be between 0 and 100")
	}
	return nil
}
