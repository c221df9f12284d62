package tax

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/taxpilot-ai/taxpilot/internal/common"
	"github.com/taxpilot-ai/taxpilot/internal/model"
)

func TestCompute(t *testing.T) {
	tests := []struct {
		name        string
		status      model.FilingStatus
		gross       float64
		deductions  float64
		withheld    float64
		wantTaxable float64
		wantTax     float64
		wantRefund  float64
		wantErr     error
	}{
		{
			name:        "single filer at 75k with standard deduction",
			status:      model.StatusSingle,
			gross:       75000,
			deductions:  15000,
			withheld:    12525,
			wantTaxable: 60000,
			wantTax:     8114,
			wantRefund:  4411,
		},
		{
			name:        "married filing jointly at 100k",
			status:      model.StatusMarriedFilingJointly,
			gross:       100000,
			deductions:  30000,
			withheld:    16700,
			wantTaxable: 70000,
			wantTax:     7923,
			wantRefund:  8777,
		},
		{
			name:        "head of household at 75k",
			status:      model.StatusHeadOfHousehold,
			gross:       75000,
			deductions:  22500,
			withheld:    12525,
			wantTaxable: 52500,
			wantTax:     5960,
			wantRefund:  6565,
		},
		{
			name:        "taxable income exactly at a bracket boundary",
			status:      model.StatusSingle,
			gross:       26925,
			deductions:  15000,
			withheld:    0,
			wantTaxable: 11925,
			wantTax:     1193,
			wantRefund:  -1193,
		},
		{
			name:        "deductions exceed gross income",
			status:      model.StatusSingle,
			gross:       10000,
			deductions:  15000,
			withheld:    1670,
			wantTaxable: 0,
			wantTax:     0,
			wantRefund:  1670,
		},
		{
			name:        "zero gross income",
			status:      model.StatusSingle,
			gross:       0,
			deductions:  15000,
			withheld:    0,
			wantTaxable: 0,
			wantTax:     0,
			wantRefund:  0,
		},
		{
			name:       "negative gross income rejected",
			status:     model.StatusSingle,
			gross:      -100,
			deductions: 15000,
			wantErr:    common.ErrInvalidInput,
		},
		{
			name:       "negative deductions rejected",
			status:     model.StatusSingle,
			gross:      50000,
			deductions: -1,
			wantErr:    common.ErrInvalidInput,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			result, err := Compute(tt.gross, tt.status, tt.deductions, tt.withheld)
			if tt.wantErr != nil {
				require.ErrorIs(t, err, tt.wantErr)
				return
			}
			require.NoError(t, err)

			assert.Equal(t, tt.status, result.FilingStatus)
			assert.InDelta(t, tt.wantTaxable, result.TaxableIncome, 0.001)
			assert.InDelta(t, tt.wantTax, result.TaxOwed, 0.001)
			assert.InDelta(t, tt.wantRefund, result.RefundOrOwed, 0.001)
			assert.InDelta(t, tt.withheld, result.Withheld, 0.001)
		})
	}
}

func TestComputeDeterministic(t *testing.T) {
	first, err := Compute(123456.78, model.StatusHeadOfHousehold, 22500, 20617)
	require.NoError(t, err)

	for i := 0; i < 10; i++ {
		again, err := Compute(123456.78, model.StatusHeadOfHousehold, 22500, 20617)
		require.NoError(t, err)
		assert.Equal(t, first, again)
	}
}

func TestComputeMonotonicInIncome(t *testing.T) {
	var prev float64
	for gross := 0.0; gross <= 700000; gross += 2500 {
		result, err := Compute(gross, model.StatusSingle, 15000, 0)
		require.NoError(t, err)
		assert.GreaterOrEqual(t, result.TaxOwed, prev, "tax decreased at gross %.0f", gross)
		prev = result.TaxOwed
	}
}

func TestComputeEffectiveRateBelowMarginal(t *testing.T) {
	result, err := Compute(75000, model.StatusSingle, 15000, 0)
	require.NoError(t, err)

	assert.Greater(t, result.EffectiveRate, 0.0)
	assert.Less(t, result.EffectiveRate, MarginalRate(result.TaxableIncome, model.StatusSingle))
}

func TestBracketTablesCoverAllStatuses(t *testing.T) {
	for _, status := range model.AllFilingStatuses {
		brackets := BracketsFor(status)
		require.NotEmpty(t, brackets, "no brackets for %s", status)

		assert.Equal(t, 0.0, brackets[0].Lower)
		for i := 1; i < len(brackets); i++ {
			assert.Equal(t, brackets[i-1].Upper, brackets[i].Lower,
				"gap between brackets %d and %d for %s", i-1, i, status)
			assert.Greater(t, brackets[i].Rate, brackets[i-1].Rate,
				"rates must increase for %s", status)
		}
		assert.True(t, brackets[len(brackets)-1].Upper > 1e12, "top bracket must be unbounded for %s", status)

		assert.Greater(t, StandardDeduction(status), 0.0)
	}
}

func TestUnknownStatusFallsBackToSingle(t *testing.T) {
	unknown := model.FilingStatus("unknown")

	assert.Equal(t, BracketsFor(model.StatusSingle), BracketsFor(unknown))
	assert.Equal(t, StandardDeduction(model.StatusSingle), StandardDeduction(unknown))
}
