package tax

import (
	"fmt"
	"math"

	"github.com/taxpilot-ai/taxpilot/internal/common"
	"github.com/taxpilot-ai/taxpilot/internal/model"
)

// Withholding estimates used when the user declares wages without a W-4
// schedule. A real deployment would substitute actual payroll figures.
const (
	FederalWithholdingRate = 0.167
	StateWithholdingRate   = 0.05
)

// Compute runs a progressive marginal tax computation. It is a pure
// function: identical inputs always produce an identical TaxResult.
//
// Taxable income is gross minus deductions, floored at zero. Each bracket
// taxes min(remaining, bracket width) at its marginal rate; rounding to the
// nearest whole dollar happens once at the final total so no per-bracket
// rounding bias accumulates. The refund is withheld minus tax and may be
// negative (amount owed); callers must not clamp it.
func Compute(grossIncome float64, status model.FilingStatus, deductions, withheld float64) (model.TaxResult, error) {
	if grossIncome < 0 {
		return model.TaxResult{}, fmt.Errorf("%w: gross income %.2f is negative", common.ErrInvalidInput, grossIncome)
	}
	if deductions < 0 {
		return model.TaxResult{}, fmt.Errorf("%w: deductions %.2f are negative", common.ErrInvalidInput, deductions)
	}

	taxable := grossIncome - deductions
	if taxable < 0 {
		taxable = 0
	}

	var tax float64
	remaining := taxable
	for _, b := range BracketsFor(status) {
		if remaining <= 0 {
			break
		}
		taxed := remaining
		if width := b.Width(); taxed > width {
			taxed = width
		}
		tax += taxed * b.Rate
		remaining -= taxed
	}

	tax = math.Round(tax)

	var effectiveRate float64
	if grossIncome > 0 {
		effectiveRate = tax / grossIncome
	}

	return model.TaxResult{
		FilingStatus:  status,
		GrossIncome:   grossIncome,
		Deductions:    deductions,
		TaxableIncome: taxable,
		TaxOwed:       tax,
		Withheld:      withheld,
		RefundOrOwed:  withheld - tax,
		EffectiveRate: effectiveRate,
	}, nil
}
