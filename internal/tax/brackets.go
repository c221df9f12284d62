// Package tax implements the 2025 federal bracket table and the progressive
// marginal tax calculator.
package tax

import (
	"math"

	"github.com/taxpilot-ai/taxpilot/internal/model"
)

// Bracket is a contiguous income range taxed at a single marginal rate.
// Lower is inclusive, Upper exclusive; the top bracket's Upper is +Inf.
type Bracket struct {
	Lower float64
	Upper float64
	Rate  float64
}

// Width returns the amount of income the bracket covers.
func (b Bracket) Width() float64 {
	return b.Upper - b.Lower
}

var inf = math.Inf(1)

// brackets2025 holds the 2025 federal marginal brackets per filing status.
// Each sequence is ordered, non-overlapping, and gap-free over [0, +Inf).
var brackets2025 = map[model.FilingStatus][]Bracket{
	model.StatusSingle: {
		{0, 11925, 0.10},
		{11925, 48475, 0.12},
		{48475, 103350, 0.22},
		{103350, 197300, 0.24},
		{197300, 250525, 0.32},
		{250525, 626350, 0.35},
		{626350, inf, 0.37},
	},
	model.StatusMarriedFilingJointly: {
		{0, 23850, 0.10},
		{23850, 96950, 0.12},
		{96950, 206700, 0.22},
		{206700, 394600, 0.24},
		{394600, 501050, 0.32},
		{501050, 751600, 0.35},
		{751600, inf, 0.37},
	},
	model.StatusMarriedFilingSeparately: {
		{0, 11925, 0.10},
		{11925, 48475, 0.12},
		{48475, 103350, 0.22},
		{103350, 197300, 0.24},
		{197300, 250525, 0.32},
		{250525, 375800, 0.35},
		{375800, inf, 0.37},
	},
	model.StatusHeadOfHousehold: {
		{0, 17000, 0.10},
		{17000, 64850, 0.12},
		{64850, 103350, 0.22},
		{103350, 197300, 0.24},
		{197300, 250500, 0.32},
		{250500, 626350, 0.35},
		{626350, inf, 0.37},
	},
	model.StatusQualifyingWidow: {
		{0, 23850, 0.10},
		{23850, 96950, 0.12},
		{96950, 206700, 0.22},
		{206700, 394600, 0.24},
		{394600, 501050, 0.32},
		{501050, 751600, 0.35},
		{751600, inf, 0.37},
	},
}

// standardDeductions2025 holds the 2025 standard deduction per filing status.
var standardDeductions2025 = map[model.FilingStatus]float64{
	model.StatusSingle:                  15000,
	model.StatusMarriedFilingJointly:    30000,
	model.StatusMarriedFilingSeparately: 15000,
	model.StatusHeadOfHousehold:         22500,
	model.StatusQualifyingWidow:         30000,
}

// BracketsFor returns the ordered bracket sequence for a filing status.
// Unknown statuses fall back to single, the most conservative table.
func BracketsFor(status model.FilingStatus) []Bracket {
	if b, ok := brackets2025[status]; ok {
		return b
	}
	return brackets2025[model.StatusSingle]
}

// StandardDeduction returns the standard deduction for a filing status.
// Unknown statuses fall back to single's deduction.
func StandardDeduction(status model.FilingStatus) float64 {
	if d, ok := standardDeductions2025[status]; ok {
		return d
	}
	return standardDeductions2025[model.StatusSingle]
}

// MarginalRate returns the rate of the bracket containing taxableIncome.
func MarginalRate(taxableIncome float64, status model.FilingStatus) float64 {
	for _, b := range BracketsFor(status) {
		if taxableIncome < b.Upper {
			return b.Rate
		}
	}
	return BracketsFor(status)[len(BracketsFor(status))-1].Rate
}
